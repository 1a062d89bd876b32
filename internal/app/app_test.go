package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/config"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func testConfig(baseURL string) config.Config {
	cfg := config.Defaults()
	cfg.APIBaseURL = baseURL
	cfg.APIKey = "key"
	cfg.APISecret = "secret"
	cfg.MaxRetries = 1
	cfg.PollingInterval = 10 * time.Millisecond
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestNew_RejectsInvalidWebhookURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://127.0.0.1:1")
	cfg.WebhookURL = "ftp://hooks.example"

	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected invalid webhook url to fail")
	}
}

func TestNew_WithoutHTTPAddrHasNoServer(t *testing.T) {
	t.Parallel()

	out, err := New(testConfig("http://127.0.0.1:1"), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if out.server != nil {
		t.Fatalf("expected no http server without APP_HTTP_ADDR")
	}
}

func TestApp_RunPollsUntilCancelled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"success":true,"data":{"match":[]}}`))
	}))
	defer upstream.Close()

	out, err := New(testConfig(upstream.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- out.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("expected repeated polling, got %d calls", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
	if out.Tracker().Running() {
		t.Fatalf("tracker still running after shutdown")
	}
}

func TestUpstreamHTTPClient_IsTraced(t *testing.T) {
	t.Parallel()

	client := upstreamHTTPClient(3 * time.Second)
	if client.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %s", client.Timeout)
	}
	if _, ok := client.Transport.(*otelhttp.Transport); !ok {
		t.Fatalf("expected otelhttp transport, got %T", client.Transport)
	}
}
