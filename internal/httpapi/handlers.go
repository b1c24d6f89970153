package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/store"
)

// LeagueStore is the persistence surface the HTTP handlers use.
type LeagueStore interface {
	CreateLeague(teamNames []string) (uint, engine.Snapshot, error)
	LoadLeague(id uint) (engine.Snapshot, bool, error)
	ExportAll() ([]store.Export, error)
}

type createLeagueRequest struct {
	TeamNames []string `json:"team_names"`
}

type leagueResponse struct {
	ID uint `json:"id"`
	engine.Snapshot
}

type leagueSummary struct {
	ID            uint     `json:"id"`
	TeamNames     []string `json:"teamNames"`
	IsDrafting    bool     `json:"isDrafting"`
	DraftComplete bool     `json:"draftComplete"`
}

func CreateLeague(leagues LeagueStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLeagueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.TeamNames) < 2 {
			http.Error(w, "need at least two team names", http.StatusBadRequest)
			return
		}
		for _, name := range req.TeamNames {
			if strings.TrimSpace(name) == "" {
				http.Error(w, "team names must not be empty", http.StatusBadRequest)
				return
			}
		}

		id, snap, err := leagues.CreateLeague(req.TeamNames)
		if err != nil {
			log.Error("create league failed", zap.Error(err))
			http.Error(w, "failed to create league", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, leagueResponse{ID: id, Snapshot: snap})
	}
}

func GetLeague(leagues LeagueStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad league id", http.StatusBadRequest)
			return
		}

		snap, found, err := leagues.LoadLeague(uint(id))
		if err != nil {
			log.Error("load league failed", zap.Uint64("league", id), zap.Error(err))
			http.Error(w, "failed to load league", http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, "league not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, leagueResponse{ID: uint(id), Snapshot: snap})
	}
}

func ListLeagues(leagues LeagueStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exports, err := leagues.ExportAll()
		if err != nil {
			log.Error("list leagues failed", zap.Error(err))
			http.Error(w, "failed to list leagues", http.StatusInternalServerError)
			return
		}

		summaries := make([]leagueSummary, 0, len(exports))
		for _, ex := range exports {
			summaries = append(summaries, leagueSummary{
				ID:            ex.ID,
				TeamNames:     ex.State.TeamNames,
				IsDrafting:    ex.State.IsDrafting,
				DraftComplete: ex.State.DraftComplete,
			})
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
