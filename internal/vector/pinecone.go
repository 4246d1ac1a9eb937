package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeIndex stores vectors in a serverless Pinecone index with cosine
// similarity. The index is created on first use if it does not exist.
type PineconeIndex struct {
	client *pinecone.Client
	name   string
	cloud  string
	region string
	logger *slog.Logger

	mu   sync.Mutex
	conn *pinecone.IndexConnection
}

// NewPineconeIndex builds the client but defers index creation and
// connection to EnsureReady.
func NewPineconeIndex(apiKey, name, cloud, region string, logger *slog.Logger) (*PineconeIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}
	return &PineconeIndex{client: client, name: name, cloud: cloud, region: region, logger: logger}, nil
}

// EnsureReady creates the index when missing and polls until it serves.
func (p *PineconeIndex) EnsureReady(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		return nil
	}

	exists, err := p.indexExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		p.logger.Info("creating vector index", "name", p.name)
		dimension := int32(Dimension)
		metric := pinecone.Cosine
		_, err := p.client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
			Name:      p.name,
			Dimension: &dimension,
			Metric:    &metric,
			Cloud:     pinecone.Cloud(p.cloud),
			Region:    p.region,
		})
		if err != nil {
			return fmt.Errorf("create index %s: %w", p.name, err)
		}
	}

	// A freshly created serverless index takes a little while to serve.
	var host string
	wait := backoff.NewExponentialBackOff()
	wait.InitialInterval = 2 * time.Second
	wait.MaxElapsedTime = 2 * time.Minute
	err = backoff.Retry(func() error {
		desc, err := p.client.DescribeIndex(ctx, p.name)
		if err != nil {
			return err
		}
		if !desc.Status.Ready {
			return errors.New("index not ready")
		}
		host = desc.Host
		return nil
	}, backoff.WithContext(wait, ctx))
	if err != nil {
		return fmt.Errorf("index %s failed to become ready: %w", p.name, err)
	}

	conn, err := p.client.Index(pinecone.NewIndexConnParams{Host: host})
	if err != nil {
		return fmt.Errorf("connect to index %s: %w", p.name, err)
	}
	p.conn = conn
	p.logger.Info("vector index ready", "name", p.name)
	return nil
}

func (p *PineconeIndex) indexExists(ctx context.Context) (bool, error) {
	indexes, err := p.client.ListIndexes(ctx)
	if err != nil {
		return false, fmt.Errorf("list indexes: %w", err)
	}
	for _, idx := range indexes {
		if idx.Name == p.name {
			return true, nil
		}
	}
	return false, nil
}

// Upsert writes one vector, overwriting any previous value under its ID.
func (p *PineconeIndex) Upsert(ctx context.Context, rec Record) error {
	meta, err := structpb.NewStruct(map[string]any(rec.Metadata))
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	values := rec.Values
	_, err = p.conn.UpsertVectors(ctx, []*pinecone.Vector{{
		Id:       rec.ID,
		Values:   &values,
		Metadata: meta,
	}})
	if err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	return nil
}

// Query returns the nearest neighbors under the exact-match metadata filter.
func (p *PineconeIndex) Query(ctx context.Context, q Query) ([]Match, error) {
	filter := map[string]any{
		"position": map[string]any{"$eq": q.Position},
		"season":   map[string]any{"$eq": q.Season},
	}
	if q.Week != nil {
		filter["week"] = map[string]any{"$eq": *q.Week}
	}
	metadataFilter, err := structpb.NewStruct(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          q.Values,
		TopK:            uint32(q.TopK),
		MetadataFilter:  metadataFilter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m.Vector == nil {
			continue
		}
		match := Match{ID: m.Vector.Id, Score: m.Score}
		if m.Vector.Metadata != nil {
			match.Metadata = Metadata(m.Vector.Metadata.AsMap())
		}
		matches = append(matches, match)
	}
	return matches, nil
}
