package elastic

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/elasticwatch/elasticwatch/internal/config"
)

const defaultFetchTimeout = 10 * time.Second

const (
	clusterStatsPath = "/_cluster/stats"
	nodesStatsPath   = "/_nodes/stats"
)

// Client fetches cluster-level and per-node statistics snapshots.
// The HTTP client is built once, with auth and TLS settings from config,
// and reused for every poll cycle.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a Client for the configured cluster.
func NewClient(cfg config.ElasticsearchConfig) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("elastic: parse url %q: %w", cfg.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("elastic: unsupported scheme %q", u.Scheme)
	}

	client, err := buildHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elastic: build http client: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  client,
	}, nil
}

// ClusterStats fetches and decodes /_cluster/stats.
func (c *Client) ClusterStats(ctx context.Context) (*ClusterStats, error) {
	body, err := c.get(ctx, clusterStatsPath)
	if err != nil {
		return nil, err
	}

	var stats ClusterStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, &ParseError{Endpoint: clusterStatsPath, Err: err}
	}
	if stats.ClusterName == "" {
		return nil, &ParseError{Endpoint: clusterStatsPath, Err: fmt.Errorf("missing cluster_name")}
	}
	stats.Raw = body
	return &stats, nil
}

// NodesStats fetches and decodes /_nodes/stats. The raw body is retained on
// the snapshot for path-addressed extra metrics.
func (c *Client) NodesStats(ctx context.Context) (*NodesStats, error) {
	body, err := c.get(ctx, nodesStatsPath)
	if err != nil {
		return nil, err
	}

	var stats NodesStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, &ParseError{Endpoint: nodesStatsPath, Err: err}
	}
	if stats.Nodes == nil {
		return nil, &ParseError{Endpoint: nodesStatsPath, Err: fmt.Errorf("missing nodes object")}
	}
	stats.Raw = body
	return &stats, nil
}

// ClusterName fetches the cluster's human-readable name. Called once at
// startup; the agent caches the result as its identity for its lifetime.
func (c *Client) ClusterName(ctx context.Context) (string, error) {
	stats, err := c.ClusterStats(ctx)
	if err != nil {
		return "", err
	}
	return stats.ClusterName, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Endpoint: path, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	return body, nil
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "ApiKey "+t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the cluster's auth and TLS
// settings with a bounded request timeout.
func buildHTTPClient(cfg config.ElasticsearchConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if cfg.TLS.CAFile != "" {
		caPEM, err := os.ReadFile(cfg.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs found in ca file %q", cfg.TLS.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	transport := &authRoundTripper{
		base: &http.Transport{TLSClientConfig: tlsCfg},
		auth: cfg.Auth,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
