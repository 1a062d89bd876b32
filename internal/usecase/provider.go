package usecase

import (
	"context"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
)

// LiveScoreProvider is the upstream source of raw match records.
type LiveScoreProvider interface {
	FetchLiveMatches(ctx context.Context) ([]match.Record, error)
	FetchScheduledMatches(ctx context.Context) ([]match.Record, error)
	// FetchMatchScore returns an empty record when the match is not live.
	FetchMatchScore(ctx context.Context, id match.Identity) (match.Record, error)
}

// Notifier delivers score events. Delivery is at most once.
type Notifier interface {
	Notify(ctx context.Context, event match.ScoreEvent) error
}
