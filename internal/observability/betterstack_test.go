package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/qchockey/lheqstats/internal/config"
	"github.com/qchockey/lheqstats/internal/platform/logging"
)

type ingestCapture struct {
	mu       sync.Mutex
	requests int
	auth     string
	bodies   []string
}

func (c *ingestCapture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		c.mu.Lock()
		c.requests++
		c.auth = r.Header.Get("Authorization")
		c.bodies = append(c.bodies, string(body))
		c.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	})
}

func (c *ingestCapture) snapshot() (int, string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests, c.auth, append([]string(nil), c.bodies...)
}

func shippingConfig(endpoint string) config.Config {
	return config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelError,
		ServiceName:         "lheqstats",
		AppEnv:              config.EnvDev,
	}
}

func TestInitBetterStackLogger_ShipsErrorLogs(t *testing.T) {
	t.Parallel()

	capture := &ingestCapture{}
	server := httptest.NewServer(capture.handler())
	defer server.Close()

	logger, flush, err := InitBetterStackLogger(shippingConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	logger.ErrorContext(context.Background(), "write snapshot failed", "component", "report")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := flush(ctx); err != nil {
		t.Fatalf("flush logger: %v", err)
	}

	requests, auth, bodies := capture.snapshot()
	if requests == 0 {
		t.Fatalf("expected the ingest endpoint to receive the error log")
	}
	if auth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", auth)
	}
	if !strings.Contains(bodies[len(bodies)-1], "write snapshot failed") {
		t.Fatalf("expected shipped line to carry the log message, got %q", bodies[len(bodies)-1])
	}
}

func TestInitBetterStackLogger_HoldsBackLinesBelowMinLevel(t *testing.T) {
	t.Parallel()

	capture := &ingestCapture{}
	server := httptest.NewServer(capture.handler())
	defer server.Close()

	logger, flush, err := InitBetterStackLogger(shippingConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	logger.InfoContext(context.Background(), "loaded 312 game files")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := flush(ctx); err != nil {
		t.Fatalf("flush logger: %v", err)
	}

	// The enablement line also logs at info, so nothing at all ships.
	if requests, _, _ := capture.snapshot(); requests != 0 {
		t.Fatalf("expected no shipped requests for info logs, got %d", requests)
	}
}

func TestInitBetterStackLogger_DisabledKeepsBaseLogger(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()

	logger, flush, err := InitBetterStackLogger(config.Config{BetterStackEnabled: false}, base)
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected the base logger back when shipping is disabled")
	}
	if err := flush(context.Background()); err != nil {
		t.Fatalf("expected no-op flush, got %v", err)
	}
}

func TestInitBetterStackLogger_RequiresEndpoint(t *testing.T) {
	t.Parallel()

	cfg := shippingConfig("   ")

	if _, _, err := InitBetterStackLogger(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for blank endpoint")
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"in.logs.betterstack.com", "https://in.logs.betterstack.com"},
		{"https://in.logs.betterstack.com", "https://in.logs.betterstack.com"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"  ingest.example.org  ", "https://ingest.example.org"},
	}

	for _, tc := range cases {
		if got := normalizeBetterStackEndpoint(tc.raw); got != tc.want {
			t.Fatalf("normalize %q: got=%q want=%q", tc.raw, got, tc.want)
		}
	}
}
