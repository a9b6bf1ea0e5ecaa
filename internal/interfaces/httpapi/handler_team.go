package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/game-lobby/internal/domain/team"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

func (h *Handler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	pin := strings.TrimSpace(r.PathValue("pin"))
	var req joinTeamRequest
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

	created, err := h.joinService.JoinTeam(ctx, usecase.JoinTeamInput{
		Pin:           pin,
		CaptainUserID: principal.UserID,
		TeamName:      req.TeamName,
		Members:       req.Members,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join team failed", "pin", pin, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(created))
}

type joinTeamRequest struct {
	TeamName string   `json:"teamName" validate:"required,max=100"`
	Members  []string `json:"members" validate:"max=20,dive,required"`
}

type teamDTO struct {
	ID            string   `json:"id"`
	CompetitionID string   `json:"competitionId"`
	Name          string   `json:"name"`
	CaptainUserID string   `json:"captainUserId"`
	Members       []string `json:"members"`
	CreatedAt     string   `json:"createdAt"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		Name:          v.Name,
		CaptainUserID: v.CaptainUserID,
		Members:       append([]string(nil), v.Members...),
		CreatedAt:     v.CreatedAt.UTC().Format(time.RFC3339),
	}
}
