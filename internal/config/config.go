package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval = 60 * time.Second
	DefaultFetchTimeout = 10 * time.Second
	DefaultBufferSize   = 1000
	DefaultBatchSize    = 50
	DefaultExportListen = ":9464"
	DefaultExportTTL    = 5 * time.Minute
)

// Config is the top-level agent configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent settings.
type AgentConfig struct {
	// PollInterval controls how often the cluster is polled. Cycles that
	// overrun the interval cause the next tick to be skipped.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Elasticsearch describes the monitored cluster.
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`

	// Emitter configures delivery of derived metrics to the backend.
	Emitter EmitterConfig `yaml:"emitter"`

	// Export configures the optional Prometheus exposition endpoint.
	Export ExportConfig `yaml:"export"`

	// ExtraMetrics are operator-defined metrics extracted from the raw
	// stats bodies by JSON path, beyond the built-in inventory.
	ExtraMetrics []ExtraMetric `yaml:"extra_metrics"`
}

// ElasticsearchConfig describes how to reach the monitored cluster.
type ElasticsearchConfig struct {
	// URL is the base URL of any cluster member, e.g. http://es1:9200.
	URL string `yaml:"url"`

	// Timeout bounds each stats fetch.
	Timeout time.Duration `yaml:"timeout"`

	// Auth configures how the agent authenticates to the cluster.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS options.
	TLS TLSConfig `yaml:"tls"`
}

// AuthConfig specifies the authentication mode for an HTTP endpoint.
// Secret material is resolved from environment variables, never stored
// in the config file itself.
type AuthConfig struct {
	// Mode is one of: apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// KeyEnv names the environment variable holding the API key.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`

	// Basic auth: Username is stored literally, the password comes from
	// the environment.
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// CAFile is an optional PEM bundle to trust instead of the system pool.
	CAFile string `yaml:"ca_file"`
}

// EmitterConfig configures the HTTP metric emitter.
type EmitterConfig struct {
	// Endpoint is the backend URL metrics are POSTed to. Empty disables
	// the HTTP emitter.
	Endpoint string `yaml:"endpoint"`

	// BufferSize is the maximum number of metrics held in memory when the
	// backend is unreachable. The oldest metric is evicted on overflow.
	BufferSize int `yaml:"buffer_size"`

	// BatchSize is the maximum number of metrics sent per request.
	BatchSize int `yaml:"batch_size"`

	// Auth configures how the agent authenticates to the backend.
	Auth AuthConfig `yaml:"auth"`
}

// ExportConfig configures the Prometheus exposition endpoint.
type ExportConfig struct {
	// Enabled turns the endpoint on.
	Enabled bool `yaml:"enabled"`

	// Listen is the host:port the exposition server binds to.
	Listen string `yaml:"listen"`

	// TTL is how long a metric stays exposed without a fresh value, so
	// series for departed nodes eventually disappear.
	TTL time.Duration `yaml:"ttl"`
}

// ExtraMetric defines one operator-supplied metric extracted from the raw
// stats body by gjson path.
type ExtraMetric struct {
	// Name is the emitted metric path, e.g. "V1/Custom/PendingTasks".
	// Names already emitted by the built-in inventory are rejected at
	// startup to keep every series single-sourced.
	Name string `yaml:"name"`

	// Units is the backend units string.
	Units string `yaml:"units"`

	// Scope is "cluster" (path evaluated against /_cluster/stats) or
	// "node" (path evaluated against each node's /_nodes/stats subtree,
	// metric name suffixed with the node name).
	Scope string `yaml:"scope"`

	// Kind is "gauge" (value passed through) or "counter" (per-second
	// rate derived from successive samples).
	Kind string `yaml:"kind"`

	// Path is the gjson path to the numeric field, e.g.
	// "indices.segments.memory_in_bytes".
	Path string `yaml:"path"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			PollInterval: DefaultPollInterval,
			Elasticsearch: ElasticsearchConfig{
				Timeout: DefaultFetchTimeout,
			},
			Emitter: EmitterConfig{
				BufferSize: DefaultBufferSize,
				BatchSize:  DefaultBatchSize,
			},
			Export: ExportConfig{
				Listen: DefaultExportListen,
				TTL:    DefaultExportTTL,
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	a := &cfg.Agent
	if a.Elasticsearch.URL == "" {
		return fmt.Errorf("agent.elasticsearch.url is required")
	}
	if a.PollInterval <= 0 {
		return fmt.Errorf("agent.poll_interval must be positive")
	}
	if a.Elasticsearch.Timeout <= 0 {
		return fmt.Errorf("agent.elasticsearch.timeout must be positive")
	}
	if a.Emitter.BufferSize <= 0 {
		return fmt.Errorf("agent.emitter.buffer_size must be positive")
	}
	if a.Emitter.BatchSize <= 0 {
		return fmt.Errorf("agent.emitter.batch_size must be positive")
	}
	switch a.Elasticsearch.Auth.Mode {
	case "apikey", "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("agent.elasticsearch.auth: unknown mode %q", a.Elasticsearch.Auth.Mode)
	}
	if a.Export.Enabled && a.Export.Listen == "" {
		return fmt.Errorf("agent.export.listen is required when export is enabled")
	}
	for i, em := range a.ExtraMetrics {
		if em.Name == "" {
			return fmt.Errorf("extra_metrics[%d]: name is required", i)
		}
		if em.Path == "" {
			return fmt.Errorf("extra_metrics[%d] %q: path is required", i, em.Name)
		}
		switch em.Scope {
		case "cluster", "node":
		default:
			return fmt.Errorf("extra_metrics[%d] %q: unknown scope %q", i, em.Name, em.Scope)
		}
		switch em.Kind {
		case "gauge", "counter":
		default:
			return fmt.Errorf("extra_metrics[%d] %q: unknown kind %q", i, em.Name, em.Kind)
		}
	}
	return nil
}
