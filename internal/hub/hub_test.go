package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/lobby"
)

type memStore struct {
	mu      sync.Mutex
	records map[uint]engine.Snapshot
}

func newMemStore() *memStore {
	return &memStore{records: map[uint]engine.Snapshot{}}
}

func (m *memStore) LoadLeague(id uint) (engine.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.records[id]
	return snap, ok, nil
}

func (m *memStore) SaveLeague(id uint, snap engine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = snap
	return nil
}

func TestHub_Ensure_Get_SamePointer(t *testing.T) {
	store := newMemStore()
	store.records[7] = engine.NewState([]string{"A", "B"}).Snapshot()

	h := NewHub(context.Background(), store, lobby.Deps{})
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- EnsureLobby{LeagueID: 7, Reply: reply}
	lb1 := <-reply

	h.Inbox() <- GetLobby{LeagueID: 7, Reply: reply}
	lb2 := <-reply

	if lb1 == nil || lb2 == nil || lb1 != lb2 {
		t.Fatalf("expected same lobby pointer")
	}
}

func TestHub_EnsureUnknownLeagueIsNil(t *testing.T) {
	h := NewHub(context.Background(), newMemStore(), lobby.Deps{})
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- EnsureLobby{LeagueID: 99, Reply: reply}
	if lb := <-reply; lb != nil {
		t.Fatalf("unknown league must not create a lobby")
	}
}

func TestHub_EnsureLoadsPersistedRecord(t *testing.T) {
	store := newMemStore()
	seeded := engine.NewState([]string{"A", "B"}).Seed([]engine.Player{
		{ID: "1", Name: "One", WorldRank: 1},
		{ID: "2", Name: "Two", WorldRank: 2},
	})
	store.records[3] = seeded.Snapshot()

	h := NewHub(context.Background(), store, lobby.Deps{})
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- EnsureLobby{LeagueID: 3, Reply: reply}
	lb := <-reply
	if lb == nil {
		t.Fatalf("expected lobby for persisted league")
	}

	viewReply := make(chan lobby.View, 1)
	lb.Inbox() <- lobby.GetState{Reply: viewReply}
	select {
	case v := <-viewReply:
		if len(v.State.Available) != 2 {
			t.Fatalf("persisted pool not restored: %d players", len(v.State.Available))
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for lobby view")
	}
}

func TestHub_ReleaseSessionFansOut(t *testing.T) {
	store := newMemStore()
	store.records[1] = engine.NewState([]string{"A", "B"}).Snapshot()
	store.records[2] = engine.NewState([]string{"C", "D"}).Snapshot()

	h := NewHub(context.Background(), store, lobby.Deps{})
	reply := make(chan *lobby.Lobby, 1)

	var lobbies []*lobby.Lobby
	for _, id := range []uint{1, 2} {
		h.Inbox() <- EnsureLobby{LeagueID: id, Reply: reply}
		lb := <-reply
		lb.Inbox() <- lobby.FromClient{SessionID: "s", Cmd: engine.Command{Type: engine.CmdClaimSlot, Slot: 0}}
		lobbies = append(lobbies, lb)
	}

	h.Inbox() <- ReleaseSession{SessionID: "s"}
	// Round-trip through the hub so the leave messages are already
	// queued on every lobby inbox before we ask for state.
	h.Inbox() <- GetLobby{LeagueID: 1, Reply: reply}
	<-reply

	for i, lb := range lobbies {
		viewReply := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetState{Reply: viewReply}
		select {
		case v := <-viewReply:
			if _, owned := v.State.Owners[0]; owned {
				t.Fatalf("lobby %d: slot still owned after session release", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for lobby %d view", i)
		}
	}
}
