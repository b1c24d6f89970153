package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/hub"
	"github.com/jmorgan84/golf-draft-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, leagues LeagueStore, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Post("/leagues", CreateLeague(leagues, log))
	r.Get("/leagues", ListLeagues(leagues, log))
	r.Get("/leagues/{id}", GetLeague(leagues, log))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
