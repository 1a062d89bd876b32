package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/domain/activity"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/domain/matchfilter"
	"github.com/riskibarqy/livescore-tracker/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/livescore-tracker/internal/mocks/domain/match"
	usecasemock "github.com/riskibarqy/livescore-tracker/internal/mocks/usecase"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type trackerFixture struct {
	service  *ScoreTrackerService
	scores   *memory.ScoreRepository
	provider *usecasemock.LiveScoreProvider
	notifier *usecasemock.Notifier
	clock    *fakeClock
}

func newTrackerFixture(t *testing.T, threshold int, filterCfg matchfilter.Config) trackerFixture {
	t.Helper()

	clock := newFakeClock()
	scores := memory.NewScoreRepository()
	provider := usecasemock.NewLiveScoreProvider(t)
	notifier := usecasemock.NewNotifier(t)
	service := NewScoreTrackerService(ScoreTrackerConfig{
		NotificationThreshold: threshold,
		PollingInterval:       10 * time.Millisecond,
		MaxConcurrentRequests: 2,
		ShutdownTimeout:       time.Second,
	}, ScoreTrackerDeps{
		Provider: provider,
		Notifier: notifier,
		Filter:   matchfilter.New(filterCfg, logging.NewNop()),
		Scores:   scores,
		Logger:   logging.NewNop(),
		Now:      clock.Now,
	})
	return trackerFixture{
		service:  service,
		scores:   scores,
		provider: provider,
		notifier: notifier,
		clock:    clock,
	}
}

func liveRecord(id, score string) match.Record {
	return match.Record{
		"id":          id,
		"home_name":   "Home " + id,
		"away_name":   "Away " + id,
		"league_name": "Premier League",
		"score":       score,
		"status":      "IN PLAY",
	}
}

func storedScore(t *testing.T, repo *memory.ScoreRepository, id match.Identity) match.Score {
	t.Helper()
	score, ok, err := repo.GetByIdentity(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("expected stored score for %s, ok=%v err=%v", id, ok, err)
	}
	return score
}

func TestScoreTrackerService_Process_ThresholdTwoNotifies(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.notifier.
		On("Notify", mock.Anything, mock.MatchedBy(func(event match.ScoreEvent) bool {
			return event.Identity == "42" &&
				event.Diff == 2 &&
				event.Previous == (match.Score{}) &&
				event.Current == (match.Score{Home: 2}) &&
				event.Info.Home == "Home 42"
		})).
		Return(nil).
		Once()

	first := f.service.Process(ctx, "42", liveRecord("42", "0 - 0"))
	if first.Outcome != OutcomeFirstSeen || first.Notified {
		t.Fatalf("unexpected first result %+v", first)
	}

	second := f.service.Process(ctx, "42", liveRecord("42", "2 - 0"))
	if second.Outcome != OutcomeChanged || second.Diff != 2 || !second.Notified {
		t.Fatalf("unexpected second result %+v", second)
	}
	if got := storedScore(t, f.scores, "42"); got != (match.Score{Home: 2}) {
		t.Fatalf("unexpected stored score %+v", got)
	}
}

func TestScoreTrackerService_Process_BelowThresholdUpdatesTable(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 3, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.service.Process(ctx, "42", liveRecord("42", "0 - 0"))
	result := f.service.Process(ctx, "42", liveRecord("42", "2 - 0"))

	if result.Notified || result.Diff != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := storedScore(t, f.scores, "42"); got != (match.Score{Home: 2}) {
		t.Fatalf("unexpected stored score %+v", got)
	}
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestScoreTrackerService_Process_NegativeDiffNeverNotifies(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 1, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.service.Process(ctx, "7", liveRecord("7", "3 - 1"))
	result := f.service.Process(ctx, "7", liveRecord("7", "1 - 1"))

	if result.Diff != -2 || result.Notified || result.Outcome != OutcomeChanged {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := storedScore(t, f.scores, "7"); got != (match.Score{Home: 1, Away: 1}) {
		t.Fatalf("expected correction to be stored, got %+v", got)
	}
}

func TestScoreTrackerService_Process_RejectedLeavesNoState(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{Sports: []string{"basketball"}, TrackAllMatches: true})

	result := f.service.Process(context.Background(), "42", liveRecord("42", "1 - 0"))
	if result.Outcome != OutcomeRejected {
		t.Fatalf("expected rejection, got %+v", result)
	}
	if _, ok, _ := f.scores.GetByIdentity(context.Background(), "42"); ok {
		t.Fatalf("rejected match must not be stored")
	}
}

func TestScoreTrackerService_Process_NotifierFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(n *usecasemock.Notifier)
	}{
		{
			name: "error",
			setup: func(n *usecasemock.Notifier) {
				n.On("Notify", mock.Anything, mock.Anything).Return(errors.New("webhook down")).Once()
			},
		},
		{
			name: "panic",
			setup: func(n *usecasemock.Notifier) {
				n.On("Notify", mock.Anything, mock.Anything).
					Run(func(mock.Arguments) { panic("boom") }).
					Return(nil).
					Once()
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
			tc.setup(f.notifier)
			ctx := context.Background()

			f.service.Process(ctx, "1", liveRecord("1", "0 - 0"))
			result := f.service.Process(ctx, "1", liveRecord("1", "3 - 0"))
			if result.Notified {
				t.Fatalf("failed notification must not be reported as delivered")
			}
			if got := storedScore(t, f.scores, "1"); got != (match.Score{Home: 3}) {
				t.Fatalf("score must be stored despite notifier failure, got %+v", got)
			}
		})
	}
}

func TestScoreTrackerService_Process_RepositoryReadErrorTreatedAsFirstSeen(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewScoreRepository(t)
	service := NewScoreTrackerService(ScoreTrackerConfig{}, ScoreTrackerDeps{
		Filter: matchfilter.New(matchfilter.Config{TrackAllMatches: true}, logging.NewNop()),
		Scores: repo,
		Logger: logging.NewNop(),
	})

	repo.On("GetByIdentity", mock.Anything, match.Identity("9")).
		Return(match.Score{}, false, errors.New("read failed")).
		Once()
	repo.On("Upsert", mock.Anything, match.Identity("9"), match.Score{Home: 1}).
		Return(nil).
		Once()

	result := service.Process(context.Background(), "9", liveRecord("9", "1 - 0"))
	if result.Outcome != OutcomeFirstSeen {
		t.Fatalf("expected first seen outcome, got %+v", result)
	}
}

func TestScoreTrackerService_Process_UpdatesActivity(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 5, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.service.Process(ctx, "1", liveRecord("1", "0 - 0"))
	f.clock.Advance(activity.ColdDuration)

	snapshot, err := f.service.MatchSnapshot(ctx, "1")
	if err != nil {
		t.Fatalf("match snapshot: %v", err)
	}
	if snapshot.Activity != activity.Cold {
		t.Fatalf("expected cold after %s at 0-0, got %s", activity.ColdDuration, snapshot.Activity)
	}

	f.service.Process(ctx, "1", liveRecord("1", "1 - 0"))
	snapshot, err = f.service.MatchSnapshot(ctx, "1")
	if err != nil {
		t.Fatalf("match snapshot: %v", err)
	}
	if snapshot.Activity != activity.Hot || snapshot.Timers.ZeroScoreSince != nil {
		t.Fatalf("expected hot with cleared zero timer, got %+v", snapshot)
	}
}

func TestScoreTrackerService_RunCycle_ProcessesLiveMatches(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	finished := liveRecord("2", "1 - 1")
	finished["status"] = "FT"
	anonymous := match.Record{"home_name": "Nameless", "away_name": "Club", "score": "0 - 0"}
	details := map[match.Identity]match.Record{
		"1": liveRecord("1", "1 - 0"),
		"2": finished,
	}

	f.provider.On("FetchLiveMatches", mock.Anything).
		Return([]match.Record{liveRecord("1", "1 - 0"), finished, liveRecord("1", "1 - 0"), anonymous}, nil).
		Once()
	f.provider.On("FetchMatchScore", mock.Anything, mock.Anything).
		Return(func(_ context.Context, id match.Identity) (match.Record, error) {
			return details[id], nil
		}).
		Times(2)

	report := f.service.RunCycle(ctx)
	if report.LiveMatches != 4 || report.Processed != 3 || report.Removed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, ok, _ := f.scores.GetByIdentity(ctx, "2"); ok {
		t.Fatalf("finished match must be removed")
	}
	storedScore(t, f.scores, "1")
	storedScore(t, f.scores, match.UnknownIdentity)

	summary := f.service.StatusSummary()
	if summary.Cycle != report.Cycle || len(summary.Matches) != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Matches[0].ID != "1" || summary.Matches[1].ID != match.UnknownIdentity {
		t.Fatalf("expected one row per live match without the finished one, got %+v", summary.Matches)
	}
}

func TestScoreTrackerService_RunCycle_FinishedGoallessMatchLeavesNoTimers(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	finished := liveRecord("9", "0 - 0")
	finished["status"] = "FT"
	f.provider.On("FetchLiveMatches", mock.Anything).Return([]match.Record{finished}, nil).Once()
	f.provider.On("FetchMatchScore", mock.Anything, match.Identity("9")).Return(finished, nil).Once()

	report := f.service.RunCycle(ctx)
	if report.Removed != 1 {
		t.Fatalf("expected finished match to be removed, got %+v", report)
	}
	timers := f.service.activity.Timers("9")
	if timers.ZeroScoreSince != nil || timers.LastScoreChange != nil {
		t.Fatalf("expected no activity timers after removal, got %+v", timers)
	}
	if rows := f.service.StatusSummary().Matches; len(rows) != 0 {
		t.Fatalf("expected removed match to be absent from the summary, got %+v", rows)
	}
	if _, ok := f.service.cache.Get(ctx, detailCacheKey("9")); ok {
		t.Fatalf("expected cached detail to be dropped with the match")
	}
}

func TestScoreTrackerService_RunCycle_DetailFetchErrorUsesCachedRecord(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.provider.On("FetchLiveMatches", mock.Anything).
		Return([]match.Record{liveRecord("1", "1 - 0")}, nil).
		Twice()
	f.provider.On("FetchMatchScore", mock.Anything, match.Identity("1")).
		Return(liveRecord("1", "1 - 0"), nil).
		Once()
	f.provider.On("FetchMatchScore", mock.Anything, match.Identity("1")).
		Return(nil, errors.New("timeout")).
		Once()

	f.service.RunCycle(ctx)
	report := f.service.RunCycle(ctx)
	if report.FetchErrors != 0 || report.CachedFallbacks != 1 || report.Processed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := storedScore(t, f.scores, "1"); got != (match.Score{Home: 1}) {
		t.Fatalf("unexpected stored score %+v", got)
	}
	if rows := f.service.StatusSummary().Matches; len(rows) != 1 {
		t.Fatalf("expected the match to stay in the summary, got %+v", rows)
	}
}

func TestScoreTrackerService_RunCycle_SummaryOrderedByActivity(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 5, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	current := map[match.Identity]match.Record{
		"a": liveRecord("a", "0 - 0"),
		"b": liveRecord("b", "1 - 0"),
		"c": liveRecord("c", "0 - 0"),
	}
	f.provider.On("FetchMatchScore", mock.Anything, mock.Anything).
		Return(func(_ context.Context, id match.Identity) (match.Record, error) {
			return current[id], nil
		})
	f.provider.On("FetchLiveMatches", mock.Anything).
		Return(func(context.Context) ([]match.Record, error) {
			return []match.Record{current["c"], current["b"], current["a"]}, nil
		})

	f.service.RunCycle(ctx)
	f.clock.Advance(activity.ColdDuration + 100*time.Second)
	current["a"] = liveRecord("a", "1 - 0")
	f.service.RunCycle(ctx)

	rows := f.service.StatusSummary().Matches
	if len(rows) != 3 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	got := []activity.Label{rows[0].Activity, rows[1].Activity, rows[2].Activity}
	want := []activity.Label{activity.Hot, activity.Ongoing, activity.Cold}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected activity order got=%v want=%v", got, want)
		}
	}
	if rows[0].ID != "a" || rows[2].ID != "c" {
		t.Fatalf("unexpected row order %+v", rows)
	}
}

func TestScoreTrackerService_RunCycle_FallsBackToScheduled(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{Sports: []string{"soccer"}, TrackAllMatches: true})

	f.provider.On("FetchLiveMatches", mock.Anything).Return(nil, errors.New("upstream down")).Once()
	f.provider.On("FetchScheduledMatches", mock.Anything).
		Return([]match.Record{
			{"id": "s1", "sport": "soccer", "date": "2026-03-01", "time": "19:00"},
			{"id": "t1", "sport": "tennis", "date": "2026-03-01", "time": "20:00"},
		}, nil).
		Once()

	report := f.service.RunCycle(context.Background())
	if report.FetchErrors != 1 || report.ScheduledMatches != 1 || report.Processed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(f.service.StatusSummary().Matches) != 0 {
		t.Fatalf("expected empty summary without live matches")
	}
}

func TestScoreTrackerService_RunCycle_DetailFetchErrorSkipsMatch(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})

	f.provider.On("FetchLiveMatches", mock.Anything).
		Return([]match.Record{liveRecord("1", "0 - 0")}, nil).
		Once()
	f.provider.On("FetchMatchScore", mock.Anything, match.Identity("1")).
		Return(nil, errors.New("timeout")).
		Once()

	report := f.service.RunCycle(context.Background())
	if report.FetchErrors != 1 || report.Processed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestScoreTrackerService_Statistics(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 10, matchfilter.Config{TrackAllMatches: true})
	ctx := context.Background()

	f.service.Process(ctx, "1", liveRecord("1", "2 - 1"))
	f.service.Process(ctx, "2", liveRecord("2", "1 - 1"))
	if err := f.scores.Upsert(ctx, "zz", match.Score{Home: 4}); err != nil {
		t.Fatalf("seed score: %v", err)
	}

	stats, err := f.service.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if len(stats.TopMatches) != 3 || stats.TopMatches[0].ID != "zz" || stats.TopMatches[1].ID != "1" {
		t.Fatalf("unexpected top matches %+v", stats.TopMatches)
	}
	if stats.TopMatches[0].Cached || stats.TopMatches[0].Info.Home != "Team zz (H)" {
		t.Fatalf("expected placeholder info, got %+v", stats.TopMatches[0])
	}

	bySport := map[string]SportStat{}
	for _, sport := range stats.Sports {
		bySport[sport.Sport] = sport
	}
	soccer := bySport["Soccer"]
	if soccer.Matches != 2 || soccer.TotalPoints != 5 || soccer.AveragePoints != 2.5 {
		t.Fatalf("unexpected soccer stats %+v", soccer)
	}
	if stats.Sports[0].Sport != "Soccer" {
		t.Fatalf("expected sports sorted by match count, got %+v", stats.Sports)
	}
}

func TestScoreTrackerService_MatchSnapshot_Errors(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})

	if _, err := f.service.MatchSnapshot(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.service.MatchSnapshot(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreTrackerService_StartStop(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	cycled := make(chan struct{}, 1)

	f.provider.On("FetchLiveMatches", mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case cycled <- struct{}{}:
			default:
			}
		}).
		Return(nil, nil).
		Maybe()
	f.provider.On("FetchScheduledMatches", mock.Anything).Return(nil, nil).Maybe()

	ctx := context.Background()
	if err := f.service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.service.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	select {
	case <-cycled:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected at least one cycle")
	}

	f.service.Stop()
	if f.service.Running() {
		t.Fatalf("expected tracker to be stopped")
	}
	f.service.Stop()
}

func TestScoreTrackerService_LoopSurvivesCyclePanic(t *testing.T) {
	t.Parallel()

	f := newTrackerFixture(t, 2, matchfilter.Config{TrackAllMatches: true})
	recovered := make(chan struct{})

	f.provider.On("FetchLiveMatches", mock.Anything).
		Run(func(mock.Arguments) { panic("provider exploded") }).
		Return(nil, nil).
		Once()
	f.provider.On("FetchLiveMatches", mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case <-recovered:
			default:
				close(recovered)
			}
		}).
		Return(nil, nil).
		Maybe()
	f.provider.On("FetchScheduledMatches", mock.Anything).Return(nil, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.service.Run(ctx) }()

	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected loop to continue after a panicking cycle")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
}
