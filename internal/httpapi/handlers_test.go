package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/store"
)

type fakeLeagueStore struct {
	nextID  uint
	records map[uint]engine.Snapshot
}

func newFakeLeagueStore() *fakeLeagueStore {
	return &fakeLeagueStore{records: map[uint]engine.Snapshot{}}
}

func (f *fakeLeagueStore) CreateLeague(teamNames []string) (uint, engine.Snapshot, error) {
	f.nextID++
	snap := engine.NewState(teamNames).Snapshot()
	f.records[f.nextID] = snap
	return f.nextID, snap, nil
}

func (f *fakeLeagueStore) LoadLeague(id uint) (engine.Snapshot, bool, error) {
	snap, ok := f.records[id]
	return snap, ok, nil
}

func (f *fakeLeagueStore) ExportAll() ([]store.Export, error) {
	exports := make([]store.Export, 0, len(f.records))
	for id := uint(1); id <= f.nextID; id++ {
		if snap, ok := f.records[id]; ok {
			exports = append(exports, store.Export{ID: id, State: snap})
		}
	}
	return exports, nil
}

func testRouter(leagues LeagueStore) http.Handler {
	log := zap.NewNop()
	r := chi.NewRouter()
	r.Post("/leagues", CreateLeague(leagues, log))
	r.Get("/leagues", ListLeagues(leagues, log))
	r.Get("/leagues/{id}", GetLeague(leagues, log))
	r.Get("/healthz", Healthz)
	return r
}

func TestCreateLeague(t *testing.T) {
	r := testRouter(newFakeLeagueStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leagues",
		strings.NewReader(`{"team_names":["Fore Horsemen","Sandbaggers"]}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp leagueResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, []string{"Fore Horsemen", "Sandbaggers"}, resp.TeamNames)
	assert.False(t, resp.IsDrafting)
	assert.Len(t, resp.Teams, 2)
}

func TestCreateLeagueIDsIncrease(t *testing.T) {
	r := testRouter(newFakeLeagueStore())

	var last uint
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leagues",
			strings.NewReader(`{"team_names":["A","B"]}`)))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp leagueResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Greater(t, resp.ID, last)
		last = resp.ID
	}
}

func TestCreateLeagueValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"one team", `{"team_names":["Solo"]}`},
		{"empty name", `{"team_names":["A","  "]}`},
		{"no names", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testRouter(newFakeLeagueStore())
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leagues", strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetLeague(t *testing.T) {
	leagues := newFakeLeagueStore()
	id, _, err := leagues.CreateLeague([]string{"A", "B"})
	require.NoError(t, err)
	r := testRouter(leagues)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leagues/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leagueResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, id, resp.ID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leagues/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leagues/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListLeagues(t *testing.T) {
	leagues := newFakeLeagueStore()
	_, _, err := leagues.CreateLeague([]string{"A", "B"})
	require.NoError(t, err)
	_, _, err = leagues.CreateLeague([]string{"C", "D", "E"})
	require.NoError(t, err)
	r := testRouter(leagues)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leagues", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []leagueSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, []string{"C", "D", "E"}, resp[1].TeamNames)
}

func TestHealthz(t *testing.T) {
	r := testRouter(newFakeLeagueStore())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
