package assets

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qchockey/lheqstats/internal/platform/logging"
	"github.com/qchockey/lheqstats/internal/platform/resilience"
	"github.com/qchockey/lheqstats/internal/usecase"
)

func newTestClient(maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClientFetchImage_DownloadsImage(t *testing.T) {
	t.Parallel()

	blob := []byte{0x89, 0x50, 0x4e, 0x47}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "image/*" {
			t.Fatalf("unexpected accept header: %s", got)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(blob)
	}))
	defer srv.Close()

	client := newTestClient(0, resilience.CircuitBreakerConfig{Enabled: false})
	data, ext, err := client.FetchImage(context.Background(), srv.URL+"/logos/100")
	if err != nil {
		t.Fatalf("fetch image failed: %v", err)
	}
	if !bytes.Equal(data, blob) {
		t.Fatalf("unexpected image bytes: %v", data)
	}
	if ext != "png" {
		t.Fatalf("unexpected extension: %s", ext)
	}
}

func TestClientFetchImage_ExtensionFallsBackToURLPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	client := newTestClient(0, resilience.CircuitBreakerConfig{Enabled: false})
	_, ext, err := client.FetchImage(context.Background(), srv.URL+"/logos/vikings.SVG")
	if err != nil {
		t.Fatalf("fetch image failed: %v", err)
	}
	if ext != "svg" {
		t.Fatalf("unexpected extension: %s", ext)
	}
}

func TestClientFetchImage_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8})
	}))
	defer srv.Close()

	client := newTestClient(2, resilience.CircuitBreakerConfig{Enabled: false})
	data, ext, err := client.FetchImage(context.Background(), srv.URL+"/logos/200")
	if err != nil {
		t.Fatalf("fetch image failed: %v", err)
	}
	if len(data) != 2 || ext != "jpg" {
		t.Fatalf("unexpected result: data=%v ext=%s", data, ext)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("unexpected request count: got=%d want=2", got)
	}
}

func TestClientFetchImage_DoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(3, resilience.CircuitBreakerConfig{Enabled: false})
	if _, _, err := client.FetchImage(context.Background(), srv.URL+"/logos/404"); err == nil {
		t.Fatalf("expected error for missing logo")
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("404 should not be retried: requests=%d", got)
	}
}

func TestClientFetchImage_RejectsBadURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(0, resilience.CircuitBreakerConfig{Enabled: false})

	if _, _, err := client.FetchImage(context.Background(), "logos/relative.png"); err == nil {
		t.Fatalf("expected error for relative url")
	}
	if _, _, err := client.FetchImage(context.Background(), "ftp://cdn.example.org/logo.png"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}

func TestClientFetchImage_EmptyBodyFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := newTestClient(0, resilience.CircuitBreakerConfig{Enabled: false})
	if _, _, err := client.FetchImage(context.Background(), srv.URL+"/logos/empty"); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestClientFetchImage_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, _, err := client.FetchImage(context.Background(), srv.URL+"/logos/500"); err == nil {
		t.Fatalf("expected error from failing host")
	}

	_, _, err := client.FetchImage(context.Background(), srv.URL+"/logos/500")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open breaker, got %v", err)
	}
}

func TestExtensionFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		contentType string
		rawURL      string
		want        string
	}{
		{"image/png", "https://cdn.example.org/a", "png"},
		{"image/jpeg; charset=binary", "https://cdn.example.org/a", "jpg"},
		{"image/svg+xml", "https://cdn.example.org/a", "svg"},
		{"image/webp", "https://cdn.example.org/a", "webp"},
		{"text/plain", "https://cdn.example.org/logos/team.GIF", "gif"},
		{"", "https://cdn.example.org/logos/team", "png"},
	}
	for _, tc := range cases {
		if got := extensionFor(tc.contentType, tc.rawURL); got != tc.want {
			t.Fatalf("extensionFor(%q, %q): got=%s want=%s", tc.contentType, tc.rawURL, got, tc.want)
		}
	}
}
