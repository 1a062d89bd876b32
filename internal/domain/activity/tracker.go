package activity

import (
	"sync"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

const (
	HotDuration  = 300 * time.Second
	ColdDuration = 1200 * time.Second
)

// Label is the recent-activity class of a match.
type Label string

const (
	Hot     Label = "H"
	Ongoing Label = "O"
	Cold    Label = "C"
)

func (l Label) Name() string {
	switch l {
	case Hot:
		return "hot"
	case Cold:
		return "cold"
	default:
		return "ongoing"
	}
}

// Rank orders labels for display: hot first, cold last.
func (l Label) Rank() int {
	switch l {
	case Hot:
		return 0
	case Cold:
		return 2
	default:
		return 1
	}
}

// Timers is a point-in-time copy of the timers held for one match.
type Timers struct {
	LastScoreChange *time.Time `json:"last_score_change,omitempty"`
	ZeroScoreSince  *time.Time `json:"zero_score_since,omitempty"`
}

// Tracker keeps the two per-match timers that drive classification.
type Tracker struct {
	mu sync.Mutex

	hotDuration  time.Duration
	coldDuration time.Duration

	lastScoreChange map[match.Identity]time.Time
	zeroScoreSince  map[match.Identity]time.Time
	now             func() time.Time
}

func NewTracker() *Tracker {
	return NewTrackerWithClock(time.Now)
}

// NewTrackerWithClock builds a tracker reading time from now.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		hotDuration:     HotDuration,
		coldDuration:    ColdDuration,
		lastScoreChange: make(map[match.Identity]time.Time),
		zeroScoreSince:  make(map[match.Identity]time.Time),
		now:             now,
	}
}

// RecordScoreChange marks the match as having just scored.
func (t *Tracker) RecordScoreChange(id match.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastScoreChange[id] = t.now()
	delete(t.zeroScoreSince, id)
}

// Observe updates the zero-score timer without producing a label.
func (t *Tracker) Observe(id match.Identity, score match.Score) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.observeLocked(id, score, t.now())
}

// Classify returns the activity label for the match. Hot wins over cold; a
// zero score starts the cold timer on first sight.
func (t *Tracker) Classify(id match.Identity, score match.Score) Label {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if changedAt, ok := t.lastScoreChange[id]; ok && now.Sub(changedAt) < t.hotDuration {
		return Hot
	}

	zeroSince, ok := t.observeLocked(id, score, now)
	if ok && now.Sub(zeroSince) >= t.coldDuration {
		return Cold
	}
	return Ongoing
}

func (t *Tracker) Remove(id match.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.lastScoreChange, id)
	delete(t.zeroScoreSince, id)
}

func (t *Tracker) Timers(id match.Identity) Timers {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out Timers
	if changedAt, ok := t.lastScoreChange[id]; ok {
		out.LastScoreChange = &changedAt
	}
	if zeroSince, ok := t.zeroScoreSince[id]; ok {
		out.ZeroScoreSince = &zeroSince
	}
	return out
}

func (t *Tracker) observeLocked(id match.Identity, score match.Score, now time.Time) (time.Time, bool) {
	if score.Total() != 0 {
		delete(t.zeroScoreSince, id)
		return time.Time{}, false
	}

	zeroSince, ok := t.zeroScoreSince[id]
	if !ok {
		zeroSince = now
		t.zeroScoreSince[id] = zeroSince
	}
	return zeroSince, true
}
