package httpapi

import (
	"net/http"

	"github.com/riskibarqy/game-lobby/internal/domain/user"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions/check_pin", handler.CheckPin)
	mux.HandleFunc("GET /v1/competitions/{pin}/events", handler.StreamEvents)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/competitions", RequireAuth(verifier, RequireRole(user.RoleOrganizer, http.HandlerFunc(handler.CreateCompetition))))
	mux.Handle("POST /v1/competitions/{pin}/start", RequireAuth(verifier, RequireRole(user.RoleOrganizer, http.HandlerFunc(handler.StartCompetition))))
	mux.Handle("POST /v1/competitions/{pin}/finish", RequireAuth(verifier, RequireRole(user.RoleOrganizer, http.HandlerFunc(handler.FinishCompetition))))
	mux.Handle("GET /v1/competitions/{pin}/teams", RequireAuth(verifier, RequireRole(user.RoleOrganizer, http.HandlerFunc(handler.ListTeams))))
	mux.Handle("POST /v1/competitions/{pin}/teams", RequireAuth(verifier, http.HandlerFunc(handler.JoinTeam)))
}
