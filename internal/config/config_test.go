package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
agent:
  poll_interval: 30s
  elasticsearch:
    url: "http://localhost:9200"
    timeout: 5s
    auth:
      mode: basic
      username: monitor
      password_env: ES_PASSWORD
  emitter:
    endpoint: "https://backend.example.com/metrics"
    buffer_size: 500
`
	cfg := loadFromString(t, yaml)

	if cfg.Agent.PollInterval != 30*time.Second {
		t.Errorf("poll_interval: got %v", cfg.Agent.PollInterval)
	}
	if cfg.Agent.Elasticsearch.URL != "http://localhost:9200" {
		t.Errorf("elasticsearch.url: got %q", cfg.Agent.Elasticsearch.URL)
	}
	if cfg.Agent.Elasticsearch.Timeout != 5*time.Second {
		t.Errorf("elasticsearch.timeout: got %v", cfg.Agent.Elasticsearch.Timeout)
	}
	if cfg.Agent.Elasticsearch.Auth.Mode != "basic" {
		t.Errorf("auth mode: got %q", cfg.Agent.Elasticsearch.Auth.Mode)
	}
	if cfg.Agent.Emitter.BufferSize != 500 {
		t.Errorf("emitter.buffer_size: got %d", cfg.Agent.Emitter.BufferSize)
	}
}

func TestLoad_Defaults(t *testing.T) {
	yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
`
	cfg := loadFromString(t, yaml)

	if cfg.Agent.PollInterval != DefaultPollInterval {
		t.Errorf("default poll_interval: got %v, want %v", cfg.Agent.PollInterval, DefaultPollInterval)
	}
	if cfg.Agent.Elasticsearch.Timeout != DefaultFetchTimeout {
		t.Errorf("default timeout: got %v, want %v", cfg.Agent.Elasticsearch.Timeout, DefaultFetchTimeout)
	}
	if cfg.Agent.Emitter.BufferSize != DefaultBufferSize {
		t.Errorf("default buffer_size: got %d, want %d", cfg.Agent.Emitter.BufferSize, DefaultBufferSize)
	}
	if cfg.Agent.Emitter.BatchSize != DefaultBatchSize {
		t.Errorf("default batch_size: got %d, want %d", cfg.Agent.Emitter.BatchSize, DefaultBatchSize)
	}
	if cfg.Agent.Export.Listen != DefaultExportListen {
		t.Errorf("default export.listen: got %q, want %q", cfg.Agent.Export.Listen, DefaultExportListen)
	}
}

func TestLoad_MissingURL(t *testing.T) {
	yaml := `
agent:
  poll_interval: 30s
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for missing elasticsearch.url, got nil")
	}
}

func TestLoad_NonPositiveInterval(t *testing.T) {
	yaml := `
agent:
  poll_interval: -5s
  elasticsearch:
    url: "http://localhost:9200"
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for negative poll_interval, got nil")
	}
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
    auth:
      mode: magictoken
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for unknown auth mode, got nil")
	}
}

func TestLoad_ExtraMetrics(t *testing.T) {
	yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
  extra_metrics:
    - name: V1/Custom/SegmentsMemory
      units: bytes
      scope: node
      kind: gauge
      path: indices.segments.memory_in_bytes
    - name: V1/Custom/PercolateTotal
      units: queries
      scope: cluster
      kind: counter
      path: indices.percolate.total
`
	cfg := loadFromString(t, yaml)
	if len(cfg.Agent.ExtraMetrics) != 2 {
		t.Fatalf("extra_metrics: got %d, want 2", len(cfg.Agent.ExtraMetrics))
	}
	em := cfg.Agent.ExtraMetrics[0]
	if em.Scope != "node" || em.Kind != "gauge" || em.Path != "indices.segments.memory_in_bytes" {
		t.Errorf("extra metric 0 parsed wrong: %+v", em)
	}
}

func TestLoad_ExtraMetricBadKind(t *testing.T) {
	yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
  extra_metrics:
    - name: V1/Custom/Bad
      scope: node
      kind: histogram
      path: some.path
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for unknown extra metric kind, got nil")
	}
}

func TestLoad_ExtraMetricBadScope(t *testing.T) {
	yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
  extra_metrics:
    - name: V1/Custom/Bad
      scope: shard
      kind: gauge
      path: some.path
`
	_, err := loadStringErr(t, yaml)
	if err == nil {
		t.Fatal("expected error for unknown extra metric scope, got nil")
	}
}

func TestAuthConfig_Key(t *testing.T) {
	t.Setenv("TEST_API_KEY", "supersecret")
	a := AuthConfig{Mode: "apikey", KeyEnv: "TEST_API_KEY"}
	if got := a.Key(); got != "supersecret" {
		t.Errorf("Key(): got %q, want %q", got, "supersecret")
	}
}

func TestAuthConfig_Key_Empty(t *testing.T) {
	a := AuthConfig{Mode: "apikey"}
	if got := a.Key(); got != "" {
		t.Errorf("Key() with no KeyEnv: got %q, want empty", got)
	}
}

func TestAuthConfig_Password(t *testing.T) {
	t.Setenv("TEST_ES_PASSWORD", "hunter2")
	a := AuthConfig{Mode: "basic", Username: "monitor", PasswordEnv: "TEST_ES_PASSWORD"}
	if got := a.Password(); got != "hunter2" {
		t.Errorf("Password(): got %q", got)
	}
}

func TestLoad_MultipleAuthModes(t *testing.T) {
	tests := []struct {
		name string
		mode string
	}{
		{"apikey", "apikey"},
		{"bearer", "bearer"},
		{"basic", "basic"},
		{"none", "none"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			yaml := `
agent:
  elasticsearch:
    url: "http://localhost:9200"
    auth:
      mode: ` + tc.mode + `
`
			cfg := loadFromString(t, yaml)
			if cfg.Agent.Elasticsearch.Auth.Mode != tc.mode {
				t.Errorf("auth mode: got %q, want %q", cfg.Agent.Elasticsearch.Auth.Mode, tc.mode)
			}
		})
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
