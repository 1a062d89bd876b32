package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/domain/activity"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

const topMatchesLimit = 10

// StatusRow is one tracked live match as shown in the status summary.
type StatusRow struct {
	ID       match.Identity `json:"id"`
	Home     string         `json:"home"`
	Away     string         `json:"away"`
	Sport    string         `json:"sport"`
	League   string         `json:"league"`
	Score    match.Score    `json:"score"`
	Status   string         `json:"status"`
	Minute   string         `json:"minute,omitempty"`
	Activity activity.Label `json:"activity"`
}

type StatusSummary struct {
	Cycle     uint64      `json:"cycle"`
	UpdatedAt time.Time   `json:"updated_at"`
	Matches   []StatusRow `json:"matches"`
}

type MatchStat struct {
	ID     match.Identity `json:"id"`
	Info   match.Info     `json:"info"`
	Score  match.Score    `json:"score"`
	Total  int            `json:"total"`
	Cached bool           `json:"cached"`
}

type SportStat struct {
	Sport         string  `json:"sport"`
	Matches       int     `json:"matches"`
	TotalPoints   int     `json:"total_points"`
	AveragePoints float64 `json:"average_points"`
}

type Statistics struct {
	TopMatches []MatchStat `json:"top_matches"`
	Sports     []SportStat `json:"sports"`
}

type MatchSnapshot struct {
	ID       match.Identity  `json:"id"`
	Info     match.Info      `json:"info"`
	Score    match.Score     `json:"score"`
	Activity activity.Label  `json:"activity"`
	Timers   activity.Timers `json:"timers"`
}

func (s *ScoreTrackerService) buildSummary(ctx context.Context, live []match.Record) []StatusRow {
	rows := make([]StatusRow, 0, len(live))
	seen := make(map[match.Identity]struct{}, len(live))
	for _, record := range live {
		id := match.IdentityOf(record)
		if match.HasIdentity(record) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		// Finished matches were removed this cycle; classifying them would
		// start fresh timers.
		if match.IsFinished(match.StatusOf(record)) {
			continue
		}
		if !s.filter.ShouldTrack(record) {
			s.logger.DebugContext(ctx, "excluding match from status summary", "match_id", id)
			continue
		}

		info := match.InfoOf(record)
		score := match.ExtractScore(record)
		rows = append(rows, StatusRow{
			ID:       id,
			Home:     info.Home,
			Away:     info.Away,
			Sport:    info.Sport,
			League:   info.League,
			Score:    score,
			Status:   match.StatusOf(record),
			Minute:   minuteOf(record),
			Activity: s.activity.Classify(id, score),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Activity.Rank() < rows[j].Activity.Rank()
	})
	if len(rows) > 0 {
		s.logger.InfoContext(ctx, "live match status summary",
			"tracked", len(rows),
			"hot", countLabel(rows, activity.Hot),
			"ongoing", countLabel(rows, activity.Ongoing),
			"cold", countLabel(rows, activity.Cold),
		)
	}
	return rows
}

// StatusSummary returns the rows built by the last completed cycle.
func (s *ScoreTrackerService) StatusSummary() StatusSummary {
	s.summaryMu.RLock()
	defer s.summaryMu.RUnlock()

	rows := make([]StatusRow, len(s.summary))
	copy(rows, s.summary)
	return StatusSummary{
		Cycle:     s.lastReport.Cycle,
		UpdatedAt: s.lastCycleAt,
		Matches:   rows,
	}
}

func (s *ScoreTrackerService) LastReport() CycleReport {
	s.summaryMu.RLock()
	defer s.summaryMu.RUnlock()
	return s.lastReport
}

// Statistics ranks known matches by total points and aggregates per sport.
func (s *ScoreTrackerService) Statistics(ctx context.Context) (Statistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreTrackerService.Statistics")
	defer span.End()

	scores, err := s.scores.List(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("list last known scores: %w", err)
	}

	stats := make([]MatchStat, 0, len(scores))
	for id, score := range scores {
		info, cached := s.filter.Info(id)
		if !cached {
			info = match.Placeholder(id)
		}
		stats = append(stats, MatchStat{
			ID:     id,
			Info:   info,
			Score:  score,
			Total:  score.Total(),
			Cached: cached,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].ID < stats[j].ID
	})

	bySport := make(map[string]*SportStat)
	for _, stat := range stats {
		entry, ok := bySport[stat.Info.Sport]
		if !ok {
			entry = &SportStat{Sport: stat.Info.Sport}
			bySport[stat.Info.Sport] = entry
		}
		entry.Matches++
		entry.TotalPoints += stat.Total
	}
	sports := make([]SportStat, 0, len(bySport))
	for _, entry := range bySport {
		entry.AveragePoints = math.Round(float64(entry.TotalPoints)/float64(entry.Matches)*10) / 10
		sports = append(sports, *entry)
	}
	sort.Slice(sports, func(i, j int) bool {
		if sports[i].Matches != sports[j].Matches {
			return sports[i].Matches > sports[j].Matches
		}
		return sports[i].Sport < sports[j].Sport
	})

	top := stats
	if len(top) > topMatchesLimit {
		top = top[:topMatchesLimit]
	}
	return Statistics{TopMatches: top, Sports: sports}, nil
}

// MatchSnapshot returns the tracked state of one match.
func (s *ScoreTrackerService) MatchSnapshot(ctx context.Context, id match.Identity) (MatchSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreTrackerService.MatchSnapshot")
	defer span.End()

	if id == "" {
		return MatchSnapshot{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	score, ok, err := s.scores.GetByIdentity(ctx, id)
	if err != nil {
		return MatchSnapshot{}, fmt.Errorf("get last known score id=%s: %w", id, err)
	}
	if !ok {
		return MatchSnapshot{}, fmt.Errorf("%w: match id=%s", ErrNotFound, id)
	}

	return MatchSnapshot{
		ID:       id,
		Info:     s.filter.Describe(id),
		Score:    score,
		Activity: s.activity.Classify(id, score),
		Timers:   s.activity.Timers(id),
	}, nil
}

func countLabel(rows []StatusRow, label activity.Label) int {
	count := 0
	for _, row := range rows {
		if row.Activity == label {
			count++
		}
	}
	return count
}
