package notifier

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/usecase"
)

// Multi fans an event out to every sink. All sinks are attempted; their
// failures are combined.
type Multi []usecase.Notifier

func NewMulti(sinks ...usecase.Notifier) Multi {
	out := make(Multi, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

func (m Multi) Notify(ctx context.Context, event match.ScoreEvent) error {
	var combined error
	for _, sink := range m {
		if err := sink.Notify(ctx, event); err != nil {
			combined = crerr.CombineErrors(combined, err)
		}
	}
	return combined
}
