package emitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elasticwatch/elasticwatch/internal/config"
)

func TestHTTP_DeliversBatch(t *testing.T) {
	received := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- p
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	h := NewHTTP(config.EmitterConfig{
		Endpoint:   srv.URL,
		BufferSize: 10,
		BatchSize:  5,
	}, "logging-prod")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.Emit("V1/ClusterStats/Indices/Docs/Count", "documents", 1000)
	h.Emit("V1/QueriesStats/Search", "queries", 42)

	select {
	case p := <-received:
		if p.Component != "logging-prod" {
			t.Errorf("component = %q, want logging-prod", p.Component)
		}
		if p.Agent != agentName {
			t.Errorf("agent = %q, want %q", p.Agent, agentName)
		}
		if len(p.Metrics) == 0 {
			t.Fatal("empty batch delivered")
		}
		if p.Metrics[0].Name != "V1/ClusterStats/Indices/Docs/Count" || p.Metrics[0].Value != 1000 {
			t.Errorf("first metric = %+v", p.Metrics[0])
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered within 5s")
	}
}

func TestHTTP_SetsAPIKeyHeader(t *testing.T) {
	t.Setenv("BACKEND_KEY", "sekret")

	gotKey := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey <- r.Header.Get("X-Api-Key")
	}))
	defer srv.Close()

	h := NewHTTP(config.EmitterConfig{
		Endpoint:   srv.URL,
		BufferSize: 10,
		BatchSize:  5,
		Auth:       config.AuthConfig{Mode: "apikey", KeyEnv: "BACKEND_KEY"},
	}, "c")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.Emit("m", "u", 1)

	select {
	case key := <-gotKey:
		if key != "sekret" {
			t.Errorf("X-Api-Key = %q, want sekret", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no request within 5s")
	}
}

func TestHTTP_BufferFull_EvictsOldest(t *testing.T) {
	// No Run loop: the buffer just fills.
	h := NewHTTP(config.EmitterConfig{Endpoint: "http://unused", BufferSize: 2, BatchSize: 2}, "c")

	h.Emit("first", "u", 1)
	h.Emit("second", "u", 2)
	h.Emit("third", "u", 3) // evicts "first"

	got := []Metric{<-h.buf, <-h.buf}
	if got[0].Name != "second" || got[1].Name != "third" {
		t.Errorf("buffer after eviction = %v, want [second third]", got)
	}
}

func TestBackoff_AdvancesAndResets(t *testing.T) {
	bo := newBackoff()

	first := bo.next()
	// ±25 % jitter around 1s.
	if first < 750*time.Millisecond || first > 1250*time.Millisecond {
		t.Errorf("first backoff = %v, want ~1s", first)
	}

	// Advance far enough to hit the cap.
	for i := 0; i < 10; i++ {
		bo.next()
	}
	if bo.current != backoffMax {
		t.Errorf("backoff cap = %v, want %v", bo.current, backoffMax)
	}

	bo.reset()
	if bo.current != backoffInitial {
		t.Errorf("backoff after reset = %v, want %v", bo.current, backoffInitial)
	}
}
