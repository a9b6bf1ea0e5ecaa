package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/game-lobby/internal/domain/liveevent"
	"github.com/riskibarqy/game-lobby/internal/platform/broadcast"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

type Handler struct {
	joinService        *usecase.JoinService
	competitionService *usecase.CompetitionService
	broadcaster        *broadcast.Broadcaster[liveevent.Event]
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	joinService *usecase.JoinService,
	competitionService *usecase.CompetitionService,
	broadcaster *broadcast.Broadcaster[liveevent.Event],
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		joinService:        joinService,
		competitionService: competitionService,
		broadcaster:        broadcaster,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
