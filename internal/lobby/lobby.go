package lobby

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
)

const seedTimeout = 10 * time.Second

// Store is the slice of the persistence adapter the coordinator
// needs: whole-record league writes.
type Store interface {
	SaveLeague(id uint, snap engine.Snapshot) error
}

// PlayerSource produces the draftable pool. Implementations fail open
// (fallback list) so seeding never blocks a join or start.
type PlayerSource interface {
	FetchPlayers(ctx context.Context) []engine.Player
}

// Syncer is kicked after every durable write; the backup mirror
// coalesces kicks under its own rate limit.
type Syncer interface {
	Kick()
}

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	SessionID string
	Cmd       engine.Command
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	SessionID string
	Outbox    chan Update // where this session receives updates
}

func (Join) isLobbyMsg() {}

type Leave struct{ SessionID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

const (
	KindState       = "state"
	KindSlotClaimed = "slot_claimed"
	KindDenied      = "denied"
)

// Update is what sessions receive. Every kind carries the full
// snapshot so a session that missed intermediate picks self-heals on
// the next message.
type Update struct {
	Kind    string
	Version int
	Slot    int
	Reason  string
	State   *engine.Snapshot
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

// Deps are the coordinator's external collaborators.
type Deps struct {
	Store  Store
	Pool   PlayerSource
	Log    *zap.Logger
	Syncer Syncer
}

// Lobby is the per-league draft coordinator: a single goroutine owns
// the league state, so commands for one league apply one at a time in
// arrival order while other leagues run independently.
type Lobby struct {
	inbox    chan Msg
	leagueID uint
	state    engine.State
	version  int
	clients  map[string]chan Update
	deps     Deps
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewLobby(parent context.Context, leagueID uint, initial engine.State, deps Deps) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	l := &Lobby{
		inbox:    make(chan Msg, 64),
		leagueID: leagueID,
		state:    initial,
		version:  0,
		clients:  make(map[string]chan Update),
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)

			case Leave:
				l.handleLeave(msg)

			case FromClient:
				l.handleCommand(msg)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) {
	l.seedIfNeeded()

	if old, ok := l.clients[msg.SessionID]; ok && old != msg.Outbox {
		close(old)
	}
	l.clients[msg.SessionID] = msg.Outbox

	// Current snapshot goes to the joining session only.
	snap := l.state.Snapshot()
	l.send(msg.SessionID, Update{Kind: KindState, Version: l.version, State: &snap})
}

func (l *Lobby) handleLeave(msg Leave) {
	if ch, ok := l.clients[msg.SessionID]; ok {
		close(ch)
		delete(l.clients, msg.SessionID)
	}

	// Release is idempotent and silent; ownership of a completed
	// draft stays frozen inside the engine.
	_, _, newState, err := engine.Apply(l.state, engine.Command{
		Type:      engine.CmdRelease,
		SessionID: msg.SessionID,
	})
	if err == nil {
		l.state = newState
	}
}

func (l *Lobby) handleCommand(msg FromClient) {
	cmd := msg.Cmd
	cmd.SessionID = msg.SessionID

	if cmd.Type == engine.CmdStart {
		l.seedIfNeeded()
	}

	events, scope, newState, err := engine.Apply(l.state, cmd)
	if err != nil {
		// Silent rejection; the sender alone gets a denial notice.
		snap := l.state.Snapshot()
		l.send(msg.SessionID, Update{Kind: KindDenied, Version: l.version, Reason: err.Error(), State: &snap})
		return
	}
	if scope == engine.ScopeNone && len(events) == 0 {
		return
	}

	l.state = newState
	l.version++

	if scope == engine.ScopeAll {
		l.persist()
	}

	snap := l.state.Snapshot()
	switch scope {
	case engine.ScopeAll:
		l.broadcast(Update{Kind: KindState, Version: l.version, State: &snap})
	case engine.ScopeSender:
		update := Update{Kind: KindState, Version: l.version, State: &snap}
		if engine.ContainsEvent(events, engine.EvtSlotClaimed) {
			update.Kind = KindSlotClaimed
			update.Slot = cmd.Slot
		}
		l.send(msg.SessionID, update)
	}
}

func (l *Lobby) seedIfNeeded() {
	if l.state.Seeded() || l.deps.Pool == nil {
		return
	}
	ctx, cancel := context.WithTimeout(l.ctx, seedTimeout)
	defer cancel()
	l.state = l.state.Seed(l.deps.Pool.FetchPlayers(ctx))
}

// persist writes the whole record. A failure is soft: the in-memory
// state stays authoritative and the next successful write carries it
// forward.
func (l *Lobby) persist() {
	if l.deps.Store == nil {
		return
	}
	if err := l.deps.Store.SaveLeague(l.leagueID, l.state.Snapshot()); err != nil {
		l.deps.Log.Warn("league persist failed, retrying on next write",
			zap.Uint("league", l.leagueID), zap.Error(err))
		return
	}
	if l.deps.Syncer != nil {
		l.deps.Syncer.Kick()
	}
}

func (l *Lobby) send(sessionID string, update Update) {
	ch, ok := l.clients[sessionID]
	if !ok {
		return
	}
	select {
	case ch <- update:
	default:
		// Slow or full - drop them.
		close(ch)
		delete(l.clients, sessionID)
	}
}

func (l *Lobby) broadcast(update Update) {
	for id, ch := range l.clients {
		select {
		case ch <- update:
			// ok
		default:
			close(ch)
			delete(l.clients, id)
		}
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch)
		delete(l.clients, id)
	}
	l.cancel()
}
