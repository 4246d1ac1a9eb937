package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("YAHOO_CLIENT_ID", "cid")
	t.Setenv("YAHOO_CLIENT_SECRET", "csecret")
	t.Setenv("PINECONE_API_KEY", "pk")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIPort != 8000 {
		t.Errorf("APIPort = %d, want 8000", cfg.APIPort)
	}
	if cfg.VectorBackend != "pinecone" {
		t.Errorf("VectorBackend = %q, want pinecone", cfg.VectorBackend)
	}
	if cfg.VectorIndexName != "fantasy-football-stats" {
		t.Errorf("VectorIndexName = %q", cfg.VectorIndexName)
	}
	if cfg.ProviderTimeout != 15*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.AuthLandingPath != "/fantasy" {
		t.Errorf("AuthLandingPath = %q", cfg.AuthLandingPath)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction = true for default environment")
	}
}

func TestLoad_MissingYahooCredentials(t *testing.T) {
	t.Setenv("YAHOO_CLIENT_ID", "")
	t.Setenv("YAHOO_CLIENT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without Yahoo credentials")
	}
}

func TestLoad_BackendValidation(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		extra   map[string]string
		wantErr bool
	}{
		{"pinecone without key", "pinecone", map[string]string{"PINECONE_API_KEY": ""}, true},
		{"postgres without url", "postgres", map[string]string{"PINECONE_API_KEY": ""}, true},
		{"postgres with url", "postgres", map[string]string{"DATABASE_URL": "postgres://localhost/fantasy"}, false},
		{"unknown backend", "sqlite", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("VECTOR_BACKEND", tt.backend)
			for k, v := range tt.extra {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvList(t *testing.T) {
	t.Setenv("ORIGINS", "http://a.example, http://b.example ,")

	got := envList("ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "http://b.example" {
		t.Errorf("envList = %v", got)
	}

	fallback := []string{"x"}
	if got := envList("ORIGINS_UNSET", fallback); len(got) != 1 || got[0] != "x" {
		t.Errorf("envList fallback = %v", got)
	}
}
