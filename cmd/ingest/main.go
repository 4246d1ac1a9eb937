// Command ingest is the fantasy stats ingestion CLI.
//
// Usage:
//
//	fantasy-ingest index ensure
//	fantasy-ingest warm --league 423.l.1 423.p.100 423.p.200
//	fantasy-ingest predict --position QB --season 2025 --stats '{"4":300,"5":2}'
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gridline/fantasy-data/internal/cache"
	"github.com/gridline/fantasy-data/internal/config"
	"github.com/gridline/fantasy-data/internal/db"
	"github.com/gridline/fantasy-data/internal/vector"
	"github.com/gridline/fantasy-data/internal/yahoo"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "fantasy-ingest",
		Short: "Fantasy stats ingestion CLI",
	}

	root.AddCommand(indexCmd())
	root.AddCommand(warmCmd())
	root.AddCommand(predictCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// index command
// --------------------------------------------------------------------------

func indexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the stat vector index",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create the vector index if missing and wait until it is ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(func(ctx context.Context, cfg *config.Config, engine *vector.Engine) error {
				start := time.Now()
				if err := engine.EnsureReady(ctx); err != nil {
					return err
				}
				logger.Info("Vector index ready",
					"backend", cfg.VectorBackend,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// warm command
// --------------------------------------------------------------------------

func warmCmd() *cobra.Command {
	var leagueKey, accessToken string
	cmd := &cobra.Command{
		Use:   "warm [player_key...]",
		Short: "Fetch stats for players and persist their vectors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := accessToken
			if token == "" {
				token = os.Getenv("YAHOO_ACCESS_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("--access-token or YAHOO_ACCESS_TOKEN is required")
			}
			return runWithEngine(func(ctx context.Context, cfg *config.Config, engine *vector.Engine) error {
				client := yahoo.NewClient(config.YahooAPIBase, cfg.ProviderRateLimit, cfg.ProviderTimeout, logger)
				fantasy := yahoo.NewService(client, engine, cache.New(false), logger)

				start := time.Now()
				ok := 0
				for _, playerKey := range args {
					player, err := fantasy.GetPlayerStats(ctx, token, playerKey, leagueKey)
					if err != nil {
						logger.Error("warm failed", "player_key", playerKey, "error", err)
						continue
					}
					ok++
					logger.Info("warmed player", "player_key", playerKey, "name", player.Name.Full,
						"weeks", len(player.Stats.Weekly))
				}
				logger.Info("Warm finished",
					"players", len(args), "succeeded", ok,
					"duration", time.Since(start).Round(time.Second))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&leagueKey, "league", "", "League key for fantasy-point scoring context")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Yahoo OAuth access token")
	return cmd
}

// --------------------------------------------------------------------------
// predict command
// --------------------------------------------------------------------------

func predictCmd() *cobra.Command {
	var position, season, statsJSON string
	var week int
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict fantasy points from a stat line by similarity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats map[string]float64
			if err := json.Unmarshal([]byte(statsJSON), &stats); err != nil {
				return fmt.Errorf("parse --stats: %w", err)
			}
			return runWithEngine(func(ctx context.Context, cfg *config.Config, engine *vector.Engine) error {
				var weekFilter *int
				if week > 0 {
					weekFilter = &week
				}
				prediction, err := engine.Predict(ctx, position, stats, season, weekFilter)
				if err != nil {
					return err
				}
				if prediction == 0 {
					logger.Warn("no similar performances found; prediction is the no-data sentinel")
				}
				fmt.Printf("%.2f\n", prediction)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&position, "position", "", "Player position (QB, RB, WR, ...)")
	cmd.Flags().StringVar(&season, "season", "", "Season year")
	cmd.Flags().StringVar(&statsJSON, "stats", "{}", "Stat map keyed by provider stat ID")
	cmd.Flags().IntVar(&week, "week", 0, "Optional week filter")
	_ = cmd.MarkFlagRequired("position")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithEngine handles config loading, vector backend construction, and
// context cancellation.
func runWithEngine(fn func(ctx context.Context, cfg *config.Config, engine *vector.Engine) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var index vector.Index
	switch cfg.VectorBackend {
	case "postgres":
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		index = vector.NewPostgresIndex(pool, logger)
	default:
		index, err = vector.NewPineconeIndex(cfg.PineconeAPIKey, cfg.VectorIndexName,
			cfg.PineconeCloud, cfg.PineconeRegion, logger)
		if err != nil {
			return fmt.Errorf("create vector index client: %w", err)
		}
	}

	return fn(ctx, cfg, vector.NewEngine(index, logger))
}
