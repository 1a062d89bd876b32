package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/livescore-tracker/external/livescore"
	"github.com/riskibarqy/livescore-tracker/internal/config"
	"github.com/riskibarqy/livescore-tracker/internal/domain/activity"
	"github.com/riskibarqy/livescore-tracker/internal/domain/matchfilter"
	"github.com/riskibarqy/livescore-tracker/internal/infrastructure/notifier"
	"github.com/riskibarqy/livescore-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/livescore-tracker/internal/interfaces/httpapi"
	"github.com/riskibarqy/livescore-tracker/internal/platform/cache"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/riskibarqy/livescore-tracker/internal/platform/resilience"
	"github.com/riskibarqy/livescore-tracker/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const httpShutdownTimeout = 10 * time.Second

// App owns the tracker loop and the optional status HTTP server.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	tracker *usecase.ScoreTrackerService
	server  *http.Server
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	breaker := resilience.CircuitBreakerConfig{
		Enabled:          cfg.APICircuitEnabled,
		FailureThreshold: cfg.APICircuitFailures,
		OpenTimeout:      cfg.APICircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.APICircuitHalfOpenMax,
		OnStateChange: func(from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "from", string(from), "to", string(to))
		},
	}

	provider := livescore.NewClient(livescore.ClientConfig{
		HTTPClient:        upstreamHTTPClient(cfg.APITimeout),
		BaseURL:           cfg.APIBaseURL,
		APIKey:            cfg.APIKey,
		APISecret:         cfg.APISecret,
		Timeout:           cfg.APITimeout,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		RequestsPerMinute: cfg.APIRequestsPerMinute,
		Sports:            cfg.Sports,
		Logger:            logger,
		CircuitBreaker:    breaker,
	})

	sinks := []usecase.Notifier{notifier.NewLogNotifier(logger)}
	if cfg.WebhookURL != "" {
		webhook, err := notifier.NewWebhookNotifier(notifier.WebhookConfig{
			URL:     cfg.WebhookURL,
			Timeout: cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: cfg.APICircuitFailures,
				OpenTimeout:      cfg.APICircuitOpenTimeout,
				HalfOpenMaxReq:   1,
			},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build webhook notifier: %w", err)
		}
		sinks = append(sinks, webhook)
	}

	filter := matchfilter.New(matchfilter.Config{
		Sports:          cfg.Sports,
		TrackedTeams:    cfg.TrackedTeams,
		TrackedLeagues:  cfg.TrackedLeagues,
		TrackedMatchIDs: cfg.TrackedMatchIDs,
		ExcludeTeams:    cfg.ExcludeTeams,
		ExcludeLeagues:  cfg.ExcludeLeagues,
		TrackAllMatches: cfg.TrackAllMatches,
	}, logger.Named("filter"))

	tracker := usecase.NewScoreTrackerService(usecase.ScoreTrackerConfig{
		NotificationThreshold: cfg.NotificationThreshold,
		PollingInterval:       cfg.PollingInterval,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		CacheExpiry:           cfg.CacheExpiry,
		ShutdownTimeout:       cfg.ShutdownTimeout,
	}, usecase.ScoreTrackerDeps{
		Provider: provider,
		Notifier: notifier.NewMulti(sinks...),
		Filter:   filter,
		Scores:   memory.NewScoreRepository(),
		Activity: activity.NewTracker(),
		Cache:    cache.NewStore(cfg.CacheExpiry),
		Logger:   logger,
	})

	out := &App{cfg: cfg, logger: logger, tracker: tracker}
	if cfg.HTTPAddr != "" {
		handler := httpapi.NewHandler(tracker, logger)
		out.server = &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		}
	}
	return out, nil
}

func upstreamHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func (a *App) Tracker() *usecase.ScoreTrackerService {
	return a.tracker
}

// Run blocks until ctx is cancelled or the HTTP server fails.
func (a *App) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.tracker.Run(groupCtx)
	})

	if a.server != nil {
		group.Go(func() error {
			a.logger.Info("http server starting", "addr", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			if err := a.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("http server shutdown: %w", err)
			}
			a.logger.Info("http server stopped")
			return nil
		})
	}

	err := group.Wait()
	a.logFinalStatistics()
	return err
}

func (a *App) logFinalStatistics() {
	stats, err := a.tracker.Statistics(context.Background())
	if err != nil {
		a.logger.Warn("final statistics unavailable", "error", err)
		return
	}
	for _, item := range stats.TopMatches {
		a.logger.Info("top match",
			"match_id", item.ID,
			"home", item.Info.Home,
			"away", item.Info.Away,
			"score", item.Score.String(),
			"total", item.Total,
		)
	}
	for _, item := range stats.Sports {
		a.logger.Info("sport summary",
			"sport", item.Sport,
			"matches", item.Matches,
			"total_points", item.TotalPoints,
			"average_points", item.AveragePoints,
		)
	}
}
