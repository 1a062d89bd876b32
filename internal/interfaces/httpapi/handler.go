package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/livescore-tracker/internal/domain/match"
	"github.com/riskibarqy/livescore-tracker/internal/platform/logging"
	"github.com/riskibarqy/livescore-tracker/internal/usecase"
)

// TrackerReader is the read side of the score tracker served over HTTP.
type TrackerReader interface {
	Running() bool
	LastReport() usecase.CycleReport
	StatusSummary() usecase.StatusSummary
	Statistics(ctx context.Context) (usecase.Statistics, error)
	MatchSnapshot(ctx context.Context, id match.Identity) (usecase.MatchSnapshot, error)
}

type Handler struct {
	tracker TrackerReader
	logger  *logging.Logger
}

func NewHandler(tracker TrackerReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		tracker: tracker,
		logger:  logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	report := h.tracker.LastReport()
	writeSuccess(ctx, w, http.StatusOK, healthDTO{
		Status:    "ok",
		Running:   h.tracker.Running(),
		LastCycle: report.Cycle,
	})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	summary := h.tracker.StatusSummary()
	items := make([]statusRowDTO, 0, len(summary.Matches))
	for _, row := range summary.Matches {
		items = append(items, toStatusRowDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, listDTO[statusRowDTO]{
		Cycle:     summary.Cycle,
		UpdatedAt: formatTime(summary.UpdatedAt),
		Items:     items,
	})
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("matchID"))
	if id == "" {
		writeError(ctx, w, fmt.Errorf("%w: matchID is required", usecase.ErrInvalidInput))
		return
	}

	snapshot, err := h.tracker.MatchSnapshot(ctx, match.Identity(id))
	if err != nil {
		h.logger.WarnContext(ctx, "get match snapshot failed", "match_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toSnapshotDTO(snapshot))
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatistics")
	defer span.End()

	stats, err := h.tracker.Statistics(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get statistics failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toStatisticsDTO(stats))
}
