package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/volley-sync/internal/domain/executionlog"
	"github.com/riskibarqy/volley-sync/internal/platform/logging"
	"github.com/riskibarqy/volley-sync/internal/usecase"
)

// RunService is the slice of the orchestrator the ops API drives.
type RunService interface {
	Start(ctx context.Context, timeout time.Duration) error
	ListRuns(ctx context.Context, limit int) ([]executionlog.ExecutionLog, error)
	Running() bool
}

type Handler struct {
	runs       RunService
	runTimeout time.Duration
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(runs RunService, runTimeout time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		runs:       runs,
		runTimeout: runTimeout,
		logger:     logger,
		validator:  validator.New(),
	}
}

type listRunsQuery struct {
	Limit int `validate:"gte=0,lte=200"`
}

type executionLogDTO struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"startTime"`
	DurationSeconds int       `json:"durationSeconds"`
	Status          string    `json:"status"`
	Changes         string    `json:"changes,omitempty"`
}

type runStateDTO struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, runStateDTO{Status: "ok", Running: h.runs.Running()})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "ListRuns")
	defer span.End()

	var query listRunsQuery
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		query.Limit = limit
	}
	if err := h.validator.StructCtx(ctx, query); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: limit must be between 0 and 200", usecase.ErrInvalidInput))
		return
	}

	items, err := h.runs.ListRuns(ctx, query.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list runs failed", "limit", query.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]executionLogDTO, 0, len(items))
	for _, item := range items {
		out = append(out, executionLogDTO{
			ID:              item.ID,
			StartTime:       item.StartTime,
			DurationSeconds: item.Duration,
			Status:          item.Status,
			Changes:         item.Changes,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// TriggerRun starts a pass in the background and answers 202 without waiting for it.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := handlerSpan(r, "TriggerRun")
	defer span.End()

	if err := h.runs.Start(ctx, h.runTimeout); err != nil {
		h.logger.WarnContext(ctx, "trigger run rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "scrape run triggered", "timeout", h.runTimeout.String())
	writeSuccess(ctx, w, http.StatusAccepted, runStateDTO{Status: "started", Running: true})
}
