package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/domain/activity"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/domain/matchfilter"
	"github.com/riskibarqy/livescore-tracker/internal/platform/cache"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

const (
	defaultNotificationThreshold = 2
	defaultPollingInterval       = 10 * time.Second
	defaultMaxConcurrentRequests = 5
	defaultCacheExpiry           = 60 * time.Second
	defaultShutdownTimeout       = 5 * time.Second
)

type ScoreTrackerConfig struct {
	NotificationThreshold int
	PollingInterval       time.Duration
	MaxConcurrentRequests int
	CacheExpiry           time.Duration
	ShutdownTimeout       time.Duration
}

func normalizeScoreTrackerConfig(cfg ScoreTrackerConfig) ScoreTrackerConfig {
	if cfg.NotificationThreshold < 1 {
		cfg.NotificationThreshold = defaultNotificationThreshold
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = defaultPollingInterval
	}
	if cfg.MaxConcurrentRequests < 1 {
		cfg.MaxConcurrentRequests = defaultMaxConcurrentRequests
	}
	if cfg.CacheExpiry <= 0 {
		cfg.CacheExpiry = defaultCacheExpiry
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return cfg
}

// ScoreTrackerDeps groups the collaborators of the tracker. Filter, Scores and
// Provider are required; the rest fall back to in-process defaults.
type ScoreTrackerDeps struct {
	Provider LiveScoreProvider
	Notifier Notifier
	Filter   *matchfilter.Filter
	Scores   match.ScoreRepository
	Activity *activity.Tracker
	Cache    *cache.Store
	Logger   *logging.Logger
	Now      func() time.Time
}

type ProcessOutcome string

const (
	OutcomeRejected  ProcessOutcome = "rejected"
	OutcomeFirstSeen ProcessOutcome = "first_seen"
	OutcomeUnchanged ProcessOutcome = "unchanged"
	OutcomeChanged   ProcessOutcome = "changed"
)

type ProcessResult struct {
	Outcome  ProcessOutcome
	Previous match.Score
	Current  match.Score
	Diff     int
	Notified bool
}

type CycleReport struct {
	Cycle            uint64        `json:"cycle"`
	LiveMatches      int           `json:"live_matches"`
	ScheduledMatches int           `json:"scheduled_matches"`
	Processed        int           `json:"processed"`
	Rejected         int           `json:"rejected"`
	Notifications    int           `json:"notifications"`
	Removed          int           `json:"removed"`
	FetchErrors      int           `json:"fetch_errors"`
	CachedFallbacks  int           `json:"cached_fallbacks"`
	Purged           int           `json:"purged"`
	Duration         time.Duration `json:"duration"`
}

// ScoreTrackerService polls live matches, diffs scores between cycles and
// emits notifications when a match scores at least the threshold.
type ScoreTrackerService struct {
	cfg      ScoreTrackerConfig
	provider LiveScoreProvider
	notifier Notifier
	filter   *matchfilter.Filter
	scores   match.ScoreRepository
	activity *activity.Tracker
	cache    *cache.Store
	logger   *logging.Logger
	now      func() time.Time

	processMu sync.Mutex
	cycle     atomic.Uint64

	summaryMu   sync.RWMutex
	summary     []StatusRow
	lastReport  CycleReport
	lastCycleAt time.Time

	runMu   sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	workers *conc.WaitGroup
}

func NewScoreTrackerService(cfg ScoreTrackerConfig, deps ScoreTrackerDeps) *ScoreTrackerService {
	cfg = normalizeScoreTrackerConfig(cfg)

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	tracker := deps.Activity
	if tracker == nil {
		tracker = activity.NewTrackerWithClock(now)
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewStore(cfg.CacheExpiry)
	}

	return &ScoreTrackerService{
		cfg:      cfg,
		provider: deps.Provider,
		notifier: deps.Notifier,
		filter:   deps.Filter,
		scores:   deps.Scores,
		activity: tracker,
		cache:    store,
		logger:   logger.Named("tracker"),
		now:      now,
	}
}

// Process diffs one record against the last known score, notifies when the
// diff reaches the threshold and always stores the new score.
func (s *ScoreTrackerService) Process(ctx context.Context, id match.Identity, record match.Record) ProcessResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreTrackerService.Process")
	defer span.End()

	s.processMu.Lock()
	defer s.processMu.Unlock()

	if !s.filter.ShouldTrack(record) {
		return ProcessResult{Outcome: OutcomeRejected}
	}

	extraction := match.Extract(record)
	if extraction.Defaulted {
		s.logger.DebugContext(ctx, "score defaulted while extracting",
			"match_id", id,
			"source", extraction.Source,
			"score", extraction.Score.String(),
		)
	}
	current := extraction.Score
	result := ProcessResult{Outcome: OutcomeFirstSeen, Current: current}

	previous, found, err := s.scores.GetByIdentity(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "read last known score failed", "match_id", id, "error", err)
		found = false
	}

	if found {
		result.Previous = previous
		result.Diff = current.Total() - previous.Total()
		result.Outcome = OutcomeUnchanged
		if result.Diff != 0 {
			result.Outcome = OutcomeChanged
			s.logger.InfoContext(ctx, "score changed",
				"match_id", id,
				"previous", previous.String(),
				"current", current.String(),
				"diff", result.Diff,
			)
		}
		if result.Diff >= s.cfg.NotificationThreshold {
			result.Notified = s.notify(ctx, match.ScoreEvent{
				Identity: id,
				Record:   record,
				Info:     s.filter.Describe(id),
				Previous: previous,
				Current:  current,
				Diff:     result.Diff,
				Status:   match.StatusOf(record),
				Minute:   minuteOf(record),
				At:       s.now(),
			})
		}
	} else {
		s.logger.DebugContext(ctx, "first observation of match", "match_id", id, "score", current.String())
	}

	if err := s.scores.Upsert(ctx, id, current); err != nil {
		s.logger.WarnContext(ctx, "store last known score failed", "match_id", id, "error", err)
	}

	if result.Diff > 0 {
		s.activity.RecordScoreChange(id)
	} else {
		s.activity.Observe(id, current)
	}
	return result
}

// RemoveMatch drops every piece of per-match state except the cached display
// info.
func (s *ScoreTrackerService) RemoveMatch(ctx context.Context, id match.Identity) error {
	s.processMu.Lock()
	defer s.processMu.Unlock()

	s.activity.Remove(id)
	s.cache.Delete(ctx, detailCacheKey(id))
	if err := s.scores.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "match removed", "match_id", id)
	return nil
}

// RunCycle performs one polling cycle. Fetch errors are logged and treated as
// an empty result.
func (s *ScoreTrackerService) RunCycle(ctx context.Context) CycleReport {
	ctx, span := usecaseTracer.Start(ctx, "usecase.ScoreTrackerService.RunCycle")
	defer span.End()

	start := s.now()
	report := CycleReport{Cycle: s.cycle.Add(1)}

	live, err := s.provider.FetchLiveMatches(ctx)
	if err != nil {
		report.FetchErrors++
		s.logger.ErrorContext(ctx, "fetch live matches failed", "error", err)
		live = nil
	}
	report.LiveMatches = len(live)
	s.logger.InfoContext(ctx, "live matches fetched", "count", len(live), "cycle", report.Cycle)

	if len(live) == 0 {
		report.ScheduledMatches = s.logScheduled(ctx)
	} else {
		s.processLive(ctx, live, &report)
	}

	rows := s.buildSummary(ctx, live)
	report.Purged = s.cache.PurgeExpired(ctx)
	report.Duration = s.now().Sub(start)

	s.summaryMu.Lock()
	s.summary = rows
	s.lastReport = report
	s.lastCycleAt = start
	s.summaryMu.Unlock()
	return report
}

func (s *ScoreTrackerService) processLive(ctx context.Context, live []match.Record, report *CycleReport) {
	seen := make(map[match.Identity]struct{}, len(live))
	ids := make([]match.Identity, 0, len(live))
	anonymous := make([]match.Record, 0)
	for _, record := range live {
		if !match.HasIdentity(record) {
			anonymous = append(anonymous, record)
			continue
		}
		id := match.IdentityOf(record)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, detail := range s.fetchDetails(ctx, ids) {
		if detail.err != nil {
			report.FetchErrors++
			s.logger.ErrorContext(ctx, "fetch match detail failed", "match_id", detail.id, "error", detail.err)
			continue
		}
		if detail.cached {
			report.CachedFallbacks++
		}
		if len(detail.record) == 0 {
			continue
		}
		s.account(ctx, detail.id, detail.record, report)
	}

	for _, record := range anonymous {
		s.account(ctx, match.UnknownIdentity, record, report)
	}
}

func (s *ScoreTrackerService) account(ctx context.Context, id match.Identity, record match.Record, report *CycleReport) {
	result := s.Process(ctx, id, record)
	if result.Outcome == OutcomeRejected {
		report.Rejected++
		return
	}
	report.Processed++
	if result.Notified {
		report.Notifications++
	}
	if match.IsFinished(match.StatusOf(record)) {
		if err := s.RemoveMatch(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "remove finished match failed", "match_id", id, "error", err)
			return
		}
		report.Removed++
	}
}

func (s *ScoreTrackerService) logScheduled(ctx context.Context) int {
	s.logger.WarnContext(ctx, "no live matches found for tracked sports")

	scheduled, err := s.provider.FetchScheduledMatches(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch scheduled matches failed", "error", err)
		return 0
	}

	count := 0
	for _, record := range scheduled {
		if !s.filter.SportAllowed(record) {
			continue
		}
		count++
		info := match.InfoOf(record)
		date, _ := match.Date(record)
		kickoff, _ := match.MatchTime(record)
		s.logger.InfoContext(ctx, "scheduled match",
			"match_id", match.IdentityOf(record),
			"home", info.Home,
			"away", info.Away,
			"league", info.League,
			"sport", info.Sport,
			"date", date,
			"time", kickoff,
		)
	}
	if count == 0 {
		s.logger.InfoContext(ctx, "no scheduled matches found either, will check again later")
	}
	return count
}

func (s *ScoreTrackerService) notify(ctx context.Context, event match.ScoreEvent) bool {
	if s.notifier == nil {
		return false
	}

	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = s.notifier.Notify(ctx, event)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "notifier panicked",
			"match_id", event.Identity,
			"panic", recovered.Value,
			"stack", string(recovered.Stack),
		)
		return false
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "send score notification failed", "match_id", event.Identity, "error", err)
		return false
	}
	return true
}

// Start launches the polling loop in the background.
func (s *ScoreTrackerService) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running.Load() {
		s.logger.WarnContext(ctx, "score tracker is already running")
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	workers := conc.NewWaitGroup()
	s.running.Store(true)
	s.cancel = cancel
	s.workers = workers

	workers.Go(func() {
		s.loop(runCtx)
	})
	s.logger.InfoContext(ctx, "score tracker started in background",
		"polling_interval", s.cfg.PollingInterval.String(),
		"notification_threshold", s.cfg.NotificationThreshold,
	)
	return nil
}

// Stop signals the loop and waits up to the shutdown timeout for it to exit.
func (s *ScoreTrackerService) Stop() {
	s.runMu.Lock()
	cancel, workers := s.cancel, s.workers
	s.cancel, s.workers = nil, nil
	s.running.Store(false)
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	s.logger.Info("stopping score tracker")
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if recovered := workers.WaitAndRecover(); recovered != nil {
			s.logger.Error("score tracker worker panicked", "panic", recovered.Value)
		}
	}()

	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.logger.Warn("score tracker did not stop in time", "timeout", s.cfg.ShutdownTimeout.String())
	}
	s.logger.Info("score tracker stopped")
}

// Run starts the loop and blocks until ctx is cancelled.
func (s *ScoreTrackerService) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *ScoreTrackerService) Running() bool {
	return s.running.Load()
}

func (s *ScoreTrackerService) loop(ctx context.Context) {
	s.logger.InfoContext(ctx, "starting match tracking")
	for {
		if ctx.Err() != nil || !s.running.Load() {
			return
		}
		s.safeCycle(ctx)

		timer := time.NewTimer(s.cfg.PollingInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *ScoreTrackerService) safeCycle(ctx context.Context) {
	var catcher panics.Catcher
	catcher.Try(func() {
		s.RunCycle(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "error in tracking loop",
			"panic", recovered.Value,
			"stack", string(recovered.Stack),
		)
	}
}

func minuteOf(record match.Record) string {
	minute, _ := match.Minute(record)
	return minute
}
