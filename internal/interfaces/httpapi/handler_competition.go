package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/game-lobby/internal/domain/competition"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCompetition")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createCompetitionRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.competitionService.Create(ctx, usecase.CreateCompetitionInput{
		Name:        req.Name,
		OwnerUserID: principal.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create competition failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, competitionToDTO(created))
}

func (h *Handler) StartCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartCompetition")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pin := strings.TrimSpace(r.PathValue("pin"))
	updated, err := h.competitionService.Start(ctx, pin, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "start competition failed", "pin", pin, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(updated))
}

func (h *Handler) FinishCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinishCompetition")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pin := strings.TrimSpace(r.PathValue("pin"))
	updated, err := h.competitionService.Finish(ctx, pin, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "finish competition failed", "pin", pin, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(updated))
}

func (h *Handler) CheckPin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckPin")
	defer span.End()

	pin := strings.TrimSpace(r.URL.Query().Get("pin"))
	result, err := h.joinService.CheckPin(ctx, pin)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkPinDTO{
		Exists:   result.Exists,
		Joinable: result.Joinable,
	})
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pin := strings.TrimSpace(r.PathValue("pin"))
	teams, err := h.competitionService.ListTeams(ctx, pin, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "pin", pin, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type createCompetitionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type competitionDTO struct {
	ID        string `json:"id"`
	Pin       string `json:"pin"`
	Name      string `json:"name"`
	State     string `json:"state"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type checkPinDTO struct {
	Exists   bool `json:"exists"`
	Joinable bool `json:"joinable"`
}

func competitionToDTO(v competition.Competition) competitionDTO {
	return competitionDTO{
		ID:        v.ID,
		Pin:       v.Pin,
		Name:      v.Name,
		State:     string(v.State),
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
