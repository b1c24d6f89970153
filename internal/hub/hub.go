package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/lobby"
)

// Store is the persistence slice the hub needs to attach a lobby to
// an existing league record.
type Store interface {
	lobby.Store
	LoadLeague(id uint) (engine.Snapshot, bool, error)
}

type HubMsg interface{ isHubMsg() }

// EnsureLobby attaches a coordinator to the league, loading its
// persisted record on first attach. Reply receives nil when the
// league does not exist.
type EnsureLobby struct {
	LeagueID uint
	Reply    chan *lobby.Lobby
}

type GetLobby struct {
	LeagueID uint
	Reply    chan *lobby.Lobby
}

type RemoveLobby struct {
	LeagueID uint
}

// ReleaseSession fans a disconnect out to every lobby; release is
// idempotent, so lobbies the session never touched are unaffected.
type ReleaseSession struct {
	SessionID string
}

type ShutdownHub struct{}

func (EnsureLobby) isHubMsg()    {}
func (GetLobby) isHubMsg()       {}
func (RemoveLobby) isHubMsg()    {}
func (ReleaseSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()    {}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[uint]*lobby.Lobby
	store   Store
	deps    lobby.Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, store Store, deps lobby.Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Store == nil {
		deps.Store = store
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[uint]*lobby.Lobby),
		store:   store,
		deps:    deps,
		log:     deps.Log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureLobby:
				msg.Reply <- h.ensure(msg.LeagueID)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.LeagueID] // May be nil

			case RemoveLobby:
				if lb := h.lobbies[msg.LeagueID]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
				}
				delete(h.lobbies, msg.LeagueID)

			case ReleaseSession:
				for _, lb := range h.lobbies {
					lb.Inbox() <- lobby.Leave{SessionID: msg.SessionID}
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(leagueID uint) *lobby.Lobby {
	if lb := h.lobbies[leagueID]; lb != nil {
		return lb
	}

	snap, found, err := h.store.LoadLeague(leagueID)
	if err != nil {
		h.log.Error("league load failed", zap.Uint("league", leagueID), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	lb := lobby.NewLobby(h.ctx, leagueID, engine.FromSnapshot(snap), h.deps)
	h.lobbies[leagueID] = lb
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.lobbies)
	h.cancel()
}
