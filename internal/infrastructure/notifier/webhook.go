package notifier

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/riskibarqy/livescore-tracker/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ColorGreen  = 0x2ECC71
	ColorYellow = 0xF1C40F
	ColorRed    = 0xE74C3C

	bigSwingDiff = 5
)

var (
	ErrWebhookRateLimited = crerr.New("webhook rate limited")

	errWebhookTransient = crerr.New("webhook transient failure")
)

type WebhookConfig struct {
	URL            string
	Timeout        time.Duration
	HTTPClient     *http.Client
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Embed is a Discord-compatible rich message block.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// WebhookNotifier posts score events as embeds to a Discord-compatible
// webhook.
type WebhookNotifier struct {
	client         *http.Client
	webhookURL     string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookNotifier(cfg WebhookConfig, logger *logging.Logger) (*WebhookNotifier, error) {
	webhookURL, err := validateWebhookURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid NOTIFY_WEBHOOK_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &WebhookNotifier{
		client:         client,
		webhookURL:     webhookURL,
		logger:         logger.Named("webhook"),
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

func (n *WebhookNotifier) Notify(ctx context.Context, event match.ScoreEvent) error {
	return n.SendEmbed(ctx, ScoreEmbed(event))
}

func (n *WebhookNotifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *WebhookNotifier) send(ctx context.Context, payload webhookPayload) error {
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("webhook is temporarily unavailable: %w", err)
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.host", webhookHost(n.webhookURL)),
			attribute.Int("webhook.body_bytes", buf.Len()),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(buf.B))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post webhook host=%s: %v", errWebhookTransient, webhookHost(n.webhookURL), err)
		n.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		n.logger.WarnContext(ctx, "webhook rate limited", "retry_after", resp.Header.Get("Retry-After"))
		callErr := fmt.Errorf("%w: %w", errWebhookTransient, ErrWebhookRateLimited)
		n.recordCircuitResult(callErr)
		return callErr
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		callErr := fmt.Errorf("webhook status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
		if resp.StatusCode >= http.StatusInternalServerError {
			callErr = fmt.Errorf("%w: %w", errWebhookTransient, callErr)
		}
		n.recordCircuitResult(callErr)
		return callErr
	}

	n.recordCircuitResult(nil)
	return nil
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

// ScoreEmbed renders a score event. Larger swings get hotter colors.
func ScoreEmbed(event match.ScoreEvent) Embed {
	color := ColorGreen
	switch {
	case event.Diff >= bigSwingDiff:
		color = ColorRed
	case event.Diff > 2:
		color = ColorYellow
	}

	status := event.Status
	if event.Minute != "" {
		status = fmt.Sprintf("%s (%s')", status, event.Minute)
	}

	embed := Embed{
		Title:       fmt.Sprintf("Score update: %d points scored", event.Diff),
		Description: fmt.Sprintf("%s vs %s", event.Info.Home, event.Info.Away),
		Color:       color,
		Fields: []Field{
			{Name: "Sport", Value: event.Info.Sport, Inline: true},
			{Name: "League", Value: event.Info.League, Inline: true},
			{Name: "Previous Score", Value: event.Previous.String(), Inline: true},
			{Name: "Current Score", Value: event.Current.String(), Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Match ID", Value: event.Identity.String(), Inline: true},
		},
	}
	if !event.At.IsZero() {
		embed.Timestamp = event.At.UTC().Format(time.RFC3339)
	}
	return embed
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse webhook url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("unsupported scheme=%q; expected http or https", parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.New("webhook url has empty host")
	}
	return candidate, nil
}

// webhookHost keeps tokens embedded in the webhook path out of logs.
func webhookHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Host
}
