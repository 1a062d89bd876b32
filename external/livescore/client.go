package livescore

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/riskibarqy/livescore-tracker/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://livescore-api.com/api-client"
	defaultTimeout   = 30 * time.Second
	liveScoresPath   = "/scores/live.json"
	fixturesPath     = "/fixtures/matches.json"
	maxResponseBytes = 6 << 20
)

var (
	// ErrAPIFailure is returned when the API answers with success=false.
	ErrAPIFailure = crerr.New("live score api reported failure")

	errTransient = crerr.New("live score api transient failure")
)

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	APIKey            string
	APISecret         string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerMinute int
	// Sports narrows requests; a single sport is sent as a query filter and
	// scheduled fixtures are fetched once per sport.
	Sports         []string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the live-score-api.com REST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	apiSecret      string
	sports         []string
	retry          resilience.RetryPolicy
	limiter        *rate.Limiter
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("livescore")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		logger.Warn("live score api circuit breaker state changed", "from", from, "to", to)
	}

	sports := make([]string, 0, len(cfg.Sports))
	for _, sport := range cfg.Sports {
		if trimmed := strings.ToLower(strings.TrimSpace(sport)); trimmed != "" {
			sports = append(sports, trimmed)
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		sports:     sports,
		retry: resilience.NormalizeRetryPolicy(resilience.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryDelay,
		}),
		limiter:        limiter,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchLiveMatches returns every match currently in play.
func (c *Client) FetchLiveMatches(ctx context.Context) ([]match.Record, error) {
	query := map[string]string{}
	if len(c.sports) == 1 {
		query["sport"] = c.sports[0]
	}

	envelope, err := c.doJSON(ctx, liveScoresPath, query)
	if err != nil {
		return nil, fmt.Errorf("fetch live matches: %w", err)
	}
	return c.records(ctx, liveScoresPath, envelope), nil
}

// FetchScheduledMatches returns upcoming fixtures, once per configured sport.
func (c *Client) FetchScheduledMatches(ctx context.Context) ([]match.Record, error) {
	if len(c.sports) == 0 {
		envelope, err := c.doJSON(ctx, fixturesPath, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch scheduled matches: %w", err)
		}
		return sortByKickoff(c.records(ctx, fixturesPath, envelope)), nil
	}

	out := make([]match.Record, 0, 32)
	var firstErr error
	for _, sport := range c.sports {
		envelope, err := c.doJSON(ctx, fixturesPath, map[string]string{"sport": sport})
		if err != nil {
			c.logger.WarnContext(ctx, "fetch scheduled matches for sport failed", "sport", sport, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch scheduled matches sport=%s: %w", sport, err)
			}
			continue
		}
		out = append(out, c.records(ctx, fixturesPath, envelope)...)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return sortByKickoff(out), nil
}

// FetchMatchScore returns the live record for one match, or an empty record
// when the match is no longer live.
func (c *Client) FetchMatchScore(ctx context.Context, id match.Identity) (match.Record, error) {
	live, err := c.FetchLiveMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch match score id=%s: %w", id, err)
	}
	for _, record := range live {
		if match.IdentityOf(record) == id {
			return record, nil
		}
	}
	c.logger.DebugContext(ctx, "match not in live feed", "match_id", id)
	return match.Record{}, nil
}

func (c *Client) records(ctx context.Context, path string, envelope apiEnvelope) []match.Record {
	records, ok := envelope.records()
	if !ok {
		c.logger.WarnContext(ctx, "unexpected live score api response shape", "path", path, "data_keys", envelope.dataKeys())
		return []match.Record{}
	}
	return records
}

func sortByKickoff(records []match.Record) []match.Record {
	sort.SliceStable(records, func(i, j int) bool {
		return kickoffKey(records[i]) < kickoffKey(records[j])
	})
	return records
}

func kickoffKey(r match.Record) string {
	date, _ := match.Date(r)
	clock, _ := match.MatchTime(r)
	return date + " " + clock
}
