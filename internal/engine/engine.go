package engine

import "errors"

var ErrSlotTaken = errors.New("slot claimed by another session")
var ErrSlotOutOfRange = errors.New("slot out of range")
var ErrNotSlotOwner = errors.New("session does not own slot")
var ErrNotDrafting = errors.New("draft not in progress")
var ErrAlreadyDrafting = errors.New("draft already in progress")
var ErrDraftComplete = errors.New("draft already complete")
var ErrPlayerUnavailable = errors.New("player not available")
var ErrRosterFull = errors.New("roster already full")
var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdClaimSlot CommandType = "ClaimSlot"
	CmdStart     CommandType = "Start"
	CmdReset     CommandType = "Reset"
	CmdPick      CommandType = "Pick"
	CmdRelease   CommandType = "Release"
)

type Command struct {
	Type      CommandType
	SessionID string
	Slot      int
	PlayerID  string // canonical form, see CanonicalID
}

type EventType string

const (
	EvtSlotClaimed   EventType = "SlotClaimed"
	EvtSlotReleased  EventType = "SlotReleased"
	EvtDraftStarted  EventType = "DraftStarted"
	EvtDraftReset    EventType = "DraftReset"
	EvtPlayerDrafted EventType = "PlayerDrafted"
	EvtTurnAdvanced  EventType = "TurnAdvanced"
	EvtDraftDone     EventType = "DraftCompleted"
)

type Event struct {
	Type      EventType
	Slot      int
	SessionID string
	PlayerID  string
}

// Scope says who should see the state resulting from a command: only
// the originating session, or every session watching the league. The
// state machine decides; the transport just routes.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeSender
	ScopeAll
)

// Apply validates one command against the current state and returns
// the events, the broadcast scope, and the new state. On error the
// input state is returned unchanged; callers treat errors as silent
// rejections and may surface a denial to the sender.
func Apply(s State, cmd Command) ([]Event, Scope, State, error) {
	switch cmd.Type {
	case CmdClaimSlot:
		return applyClaim(s, cmd)
	case CmdStart:
		return applyStart(s)
	case CmdReset:
		return applyReset(s)
	case CmdPick:
		return applyPick(s, cmd)
	case CmdRelease:
		return applyRelease(s, cmd)
	default:
		return nil, ScopeNone, s, ErrUnsupportedCommand
	}
}

func applyClaim(s State, cmd Command) ([]Event, Scope, State, error) {
	if s.DraftComplete {
		return nil, ScopeNone, s, ErrDraftComplete
	}
	if cmd.Slot < 0 || cmd.Slot >= len(s.Teams) {
		return nil, ScopeNone, s, ErrSlotOutOfRange
	}
	if owner, ok := s.Owners[cmd.Slot]; ok && owner != cmd.SessionID {
		return nil, ScopeNone, s, ErrSlotTaken
	}

	newState := s
	newState.Owners = cloneOwners(s.Owners)
	newState.Owners[cmd.Slot] = cmd.SessionID

	events := []Event{{Type: EvtSlotClaimed, Slot: cmd.Slot, SessionID: cmd.SessionID}}
	// Claims are acknowledged to the claimant only; everyone else
	// learns of the owner when a pick lands.
	return events, ScopeSender, newState, nil
}

func applyStart(s State) ([]Event, Scope, State, error) {
	if s.IsDrafting {
		return nil, ScopeNone, s, ErrAlreadyDrafting
	}

	newState := wipeRosters(s)
	newState.IsDrafting = true
	newState.DraftComplete = false
	newState.CurrentTeamIndex = 0
	newState.SnakeDirection = 1

	return []Event{{Type: EvtDraftStarted}}, ScopeAll, newState, nil
}

func applyReset(s State) ([]Event, Scope, State, error) {
	newState := wipeRosters(s)
	newState.IsDrafting = false
	newState.DraftComplete = false
	newState.CurrentTeamIndex = 0
	newState.SnakeDirection = 1

	return []Event{{Type: EvtDraftReset}}, ScopeAll, newState, nil
}

// wipeRosters discards any partial draft: every drafted player goes
// back into the pool, every team empties, all ownership clears.
func wipeRosters(s State) State {
	newState := s
	newState.Available = make(map[string]Player, len(s.Available)+s.TotalDrafted())
	for id, p := range s.Available {
		newState.Available[id] = p
	}
	newState.Teams = make([][]Player, len(s.Teams))
	for i, team := range s.Teams {
		for _, p := range team {
			newState.Available[p.ID] = p
		}
		newState.Teams[i] = []Player{}
	}
	newState.Owners = map[int]string{}
	return newState
}

func applyPick(s State, cmd Command) ([]Event, Scope, State, error) {
	if !s.IsDrafting {
		return nil, ScopeNone, s, ErrNotDrafting
	}
	if s.DraftComplete {
		return nil, ScopeNone, s, ErrDraftComplete
	}
	if cmd.Slot < 0 || cmd.Slot >= len(s.Teams) {
		return nil, ScopeNone, s, ErrSlotOutOfRange
	}
	if cmd.SessionID == "" || s.Owners[cmd.Slot] != cmd.SessionID {
		return nil, ScopeNone, s, ErrNotSlotOwner
	}
	player, ok := s.Available[cmd.PlayerID]
	if !ok {
		return nil, ScopeNone, s, ErrPlayerUnavailable
	}
	if len(s.Teams[cmd.Slot]) >= RosterSize {
		return nil, ScopeNone, s, ErrRosterFull
	}

	newState := s
	newState.Teams = make([][]Player, len(s.Teams))
	for i, team := range s.Teams {
		newState.Teams[i] = append([]Player{}, team...)
	}
	newState.Teams[cmd.Slot] = append(newState.Teams[cmd.Slot], player)

	newState.Available = make(map[string]Player, len(s.Available))
	for id, p := range s.Available {
		newState.Available[id] = p
	}
	delete(newState.Available, cmd.PlayerID)

	newState.CurrentTeamIndex, newState.SnakeDirection =
		NextTurn(s.CurrentTeamIndex, s.SnakeDirection, len(s.Teams))

	events := []Event{
		{Type: EvtPlayerDrafted, Slot: cmd.Slot, SessionID: cmd.SessionID, PlayerID: cmd.PlayerID},
		{Type: EvtTurnAdvanced},
	}

	if newState.allRostersFull() {
		newState.DraftComplete = true
		newState.IsDrafting = false
		events = append(events, Event{Type: EvtDraftDone})
	}

	return events, ScopeAll, newState, nil
}

func applyRelease(s State, cmd Command) ([]Event, Scope, State, error) {
	// Ownership of a finished draft's rosters is not revocable.
	if s.DraftComplete {
		return nil, ScopeNone, s, nil
	}

	var events []Event
	for slot, owner := range s.Owners {
		if owner == cmd.SessionID {
			events = append(events, Event{Type: EvtSlotReleased, Slot: slot, SessionID: cmd.SessionID})
		}
	}
	if len(events) == 0 {
		return nil, ScopeNone, s, nil
	}

	newState := s
	newState.Owners = cloneOwners(s.Owners)
	for _, ev := range events {
		delete(newState.Owners, ev.Slot)
	}
	return events, ScopeNone, newState, nil
}

func cloneOwners(owners map[int]string) map[int]string {
	out := make(map[int]string, len(owners))
	for slot, session := range owners {
		out[slot] = session
	}
	return out
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
