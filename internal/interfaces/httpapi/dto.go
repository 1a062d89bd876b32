package httpapi

import (
	"time"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/usecase"
)

type healthDTO struct {
	Status    string `json:"status"`
	Running   bool   `json:"running"`
	LastCycle uint64 `json:"lastCycle"`
}

type listDTO[T any] struct {
	Cycle     uint64 `json:"cycle"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Items     []T    `json:"items"`
}

type scoreDTO struct {
	Home  int    `json:"home"`
	Away  int    `json:"away"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

type statusRowDTO struct {
	ID       string   `json:"id"`
	Home     string   `json:"home"`
	Away     string   `json:"away"`
	Sport    string   `json:"sport"`
	League   string   `json:"league"`
	Score    scoreDTO `json:"score"`
	Status   string   `json:"status"`
	Minute   string   `json:"minute,omitempty"`
	Activity string   `json:"activity"`
}

type snapshotDTO struct {
	ID              string   `json:"id"`
	Home            string   `json:"home"`
	Away            string   `json:"away"`
	Sport           string   `json:"sport"`
	League          string   `json:"league"`
	Score           scoreDTO `json:"score"`
	Activity        string   `json:"activity"`
	LastScoreChange string   `json:"lastScoreChange,omitempty"`
	ZeroScoreSince  string   `json:"zeroScoreSince,omitempty"`
}

type matchStatDTO struct {
	ID     string   `json:"id"`
	Home   string   `json:"home"`
	Away   string   `json:"away"`
	Sport  string   `json:"sport"`
	League string   `json:"league"`
	Score  scoreDTO `json:"score"`
}

type sportStatDTO struct {
	Sport         string  `json:"sport"`
	Matches       int     `json:"matches"`
	TotalPoints   int     `json:"totalPoints"`
	AveragePoints float64 `json:"averagePoints"`
}

type statisticsDTO struct {
	TopMatches []matchStatDTO `json:"topMatches"`
	Sports     []sportStatDTO `json:"sports"`
}

func toScoreDTO(score match.Score) scoreDTO {
	return scoreDTO{Home: score.Home, Away: score.Away, Total: score.Total(), Text: score.String()}
}

func toStatusRowDTO(row usecase.StatusRow) statusRowDTO {
	return statusRowDTO{
		ID:       row.ID.String(),
		Home:     row.Home,
		Away:     row.Away,
		Sport:    row.Sport,
		League:   row.League,
		Score:    toScoreDTO(row.Score),
		Status:   row.Status,
		Minute:   row.Minute,
		Activity: string(row.Activity),
	}
}

func toSnapshotDTO(snapshot usecase.MatchSnapshot) snapshotDTO {
	out := snapshotDTO{
		ID:       snapshot.ID.String(),
		Home:     snapshot.Info.Home,
		Away:     snapshot.Info.Away,
		Sport:    snapshot.Info.Sport,
		League:   snapshot.Info.League,
		Score:    toScoreDTO(snapshot.Score),
		Activity: string(snapshot.Activity),
	}
	if snapshot.Timers.LastScoreChange != nil {
		out.LastScoreChange = formatTime(*snapshot.Timers.LastScoreChange)
	}
	if snapshot.Timers.ZeroScoreSince != nil {
		out.ZeroScoreSince = formatTime(*snapshot.Timers.ZeroScoreSince)
	}
	return out
}

func toStatisticsDTO(stats usecase.Statistics) statisticsDTO {
	out := statisticsDTO{
		TopMatches: make([]matchStatDTO, 0, len(stats.TopMatches)),
		Sports:     make([]sportStatDTO, 0, len(stats.Sports)),
	}
	for _, item := range stats.TopMatches {
		out.TopMatches = append(out.TopMatches, matchStatDTO{
			ID:     item.ID.String(),
			Home:   item.Info.Home,
			Away:   item.Info.Away,
			Sport:  item.Info.Sport,
			League: item.Info.League,
			Score:  toScoreDTO(item.Score),
		})
	}
	for _, item := range stats.Sports {
		out.Sports = append(out.Sports, sportStatDTO{
			Sport:         item.Sport,
			Matches:       item.Matches,
			TotalPoints:   item.TotalPoints,
			AveragePoints: item.AveragePoints,
		})
	}
	return out
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
