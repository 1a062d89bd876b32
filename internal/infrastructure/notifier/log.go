package notifier

import (
	"context"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
)

// LogNotifier writes score events to the structured log.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, event match.ScoreEvent) error {
	n.logger.InfoContext(ctx, "score update",
		"match_id", event.Identity,
		"points_scored", event.Diff,
		"sport", event.Info.Sport,
		"league", event.Info.League,
		"match", event.Info.Home+" vs "+event.Info.Away,
		"previous_score", event.Previous.String(),
		"current_score", event.Current.String(),
		"status", event.Status,
		"minute", event.Minute,
	)
	return nil
}
