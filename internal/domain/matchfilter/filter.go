package matchfilter

import (
	"strings"
	"sync"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
)

// Reason explains which rule decided a filter outcome.
type Reason string

const (
	ReasonSportNotTracked Reason = "sport_not_tracked"
	ReasonExplicitID      Reason = "explicit_match_id"
	ReasonExcluded        Reason = "excluded"
	ReasonTrackAll        Reason = "track_all_matches"
	ReasonIncluded        Reason = "included_team_or_league"
	ReasonNotIncluded     Reason = "not_included"
)

type Decision struct {
	Track  bool
	Reason Reason
}

// Config holds the user-supplied tracking preferences. An empty Sports list
// means every sport is allowed.
type Config struct {
	Sports          []string
	TrackedTeams    []string
	TrackedLeagues  []string
	TrackedMatchIDs []string
	ExcludeTeams    []string
	ExcludeLeagues  []string
	TrackAllMatches bool
}

// Filter decides which live matches are tracked and caches the display info of
// every accepted match. Cached info is never refreshed.
type Filter struct {
	sports         map[string]struct{}
	trackedTeams   []string
	trackedLeagues []string
	trackedIDs     map[match.Identity]struct{}
	excludeTeams   []string
	excludeLeagues []string
	trackAll       bool
	logger         *logging.Logger

	mu     sync.RWMutex
	info   map[match.Identity]match.Info
	logged map[match.Identity]struct{}
}

func New(cfg Config, logger *logging.Logger) *Filter {
	if logger == nil {
		logger = logging.Default()
	}

	var sports map[string]struct{}
	for _, sport := range cfg.Sports {
		normalized := match.NormalizeSport(sport)
		if normalized == "" {
			continue
		}
		if sports == nil {
			sports = make(map[string]struct{}, len(cfg.Sports))
		}
		sports[normalized] = struct{}{}
	}

	trackedIDs := make(map[match.Identity]struct{}, len(cfg.TrackedMatchIDs))
	for _, id := range cfg.TrackedMatchIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			trackedIDs[match.Identity(trimmed)] = struct{}{}
		}
	}

	return &Filter{
		sports:         sports,
		trackedTeams:   lowerAll(cfg.TrackedTeams),
		trackedLeagues: lowerAll(cfg.TrackedLeagues),
		trackedIDs:     trackedIDs,
		excludeTeams:   lowerAll(cfg.ExcludeTeams),
		excludeLeagues: lowerAll(cfg.ExcludeLeagues),
		trackAll:       cfg.TrackAllMatches,
		logger:         logger,
		info:           make(map[match.Identity]match.Info),
		logged:         make(map[match.Identity]struct{}),
	}
}

func (f *Filter) ShouldTrack(r match.Record) bool {
	return f.Decide(r).Track
}

// Decide applies the tracking rules in order; the first rule that matches wins.
func (f *Filter) Decide(r match.Record) Decision {
	id := match.IdentityOf(r)
	decision := f.evaluate(id, r)
	if decision.Track {
		f.remember(id, r)
	}
	f.logOnce(id, r, decision)
	return decision
}

// SportAllowed reports whether the record's derived sport passes the allow-list.
func (f *Filter) SportAllowed(r match.Record) bool {
	if len(f.sports) == 0 {
		return true
	}
	sport, ok := match.Sport(r)
	if !ok {
		return false
	}
	_, allowed := f.sports[match.NormalizeSport(sport)]
	return allowed
}

// Info returns the info cached when the match was first accepted.
func (f *Filter) Info(id match.Identity) (match.Info, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info, ok := f.info[id]
	return info, ok
}

// Describe returns cached info or the placeholder used for unseen matches.
func (f *Filter) Describe(id match.Identity) match.Info {
	if info, ok := f.Info(id); ok {
		return info
	}
	return match.Placeholder(id)
}

func (f *Filter) evaluate(id match.Identity, r match.Record) Decision {
	if !f.SportAllowed(r) {
		return Decision{Track: false, Reason: ReasonSportNotTracked}
	}
	if _, ok := f.trackedIDs[id]; ok {
		return Decision{Track: true, Reason: ReasonExplicitID}
	}

	home, _ := match.HomeTeam(r)
	away, _ := match.AwayTeam(r)
	league, _ := match.League(r)
	home = strings.ToLower(home)
	away = strings.ToLower(away)
	league = strings.ToLower(league)

	if teamMatches(f.excludeTeams, home, away) || containsAny(league, f.excludeLeagues) {
		return Decision{Track: false, Reason: ReasonExcluded}
	}
	if f.trackAll {
		return Decision{Track: true, Reason: ReasonTrackAll}
	}
	if teamMatches(f.trackedTeams, home, away) || containsAny(league, f.trackedLeagues) {
		return Decision{Track: true, Reason: ReasonIncluded}
	}
	return Decision{Track: false, Reason: ReasonNotIncluded}
}

func (f *Filter) remember(id match.Identity, r match.Record) {
	f.mu.RLock()
	_, ok := f.info[id]
	f.mu.RUnlock()
	if ok {
		return
	}

	info := match.InfoOf(r)
	f.mu.Lock()
	if _, ok := f.info[id]; !ok {
		f.info[id] = info
	}
	f.mu.Unlock()
}

func (f *Filter) logOnce(id match.Identity, r match.Record, decision Decision) {
	f.mu.Lock()
	_, seen := f.logged[id]
	if !seen {
		f.logged[id] = struct{}{}
	}
	f.mu.Unlock()
	if seen {
		return
	}

	info := match.InfoOf(r)
	f.logger.Debug("match filter decision",
		"match_id", id,
		"home", info.Home,
		"away", info.Away,
		"league", info.League,
		"sport", info.Sport,
		"tracked", decision.Track,
		"reason", decision.Reason,
	)
}

func teamMatches(needles []string, home, away string) bool {
	return containsAny(home, needles) || containsAny(away, needles)
}

func containsAny(haystack string, needles []string) bool {
	if haystack == "" {
		return false
	}
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.ToLower(strings.TrimSpace(value)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
