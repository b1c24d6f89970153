package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RosterSize is the number of players every team drafts before the
// draft is complete.
const RosterSize = 6

// Player is a draftable pool entry. The rank fields are for display
// and sorting only; engine decisions never read them.
type Player struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	WorldRank int     `json:"worldRank"`
	AvgPoints float64 `json:"avgPoints"`
}

// State is the full draft state of one league. Owners is transient
// session bookkeeping and is excluded from Snapshot (never persisted,
// never broadcast).
type State struct {
	TeamNames        []string
	Teams            [][]Player
	Available        map[string]Player
	CurrentTeamIndex int
	SnakeDirection   int
	IsDrafting       bool
	DraftComplete    bool
	Owners           map[int]string
}

// NewState returns the empty, not-yet-seeded state for a league with
// the given team labels.
func NewState(teamNames []string) State {
	teams := make([][]Player, len(teamNames))
	for i := range teams {
		teams[i] = []Player{}
	}
	return State{
		TeamNames:      append([]string(nil), teamNames...),
		Teams:          teams,
		Available:      map[string]Player{},
		SnakeDirection: 1,
		Owners:         map[int]string{},
	}
}

// Seeded reports whether the player pool has ever been populated.
// A mid-draft state with an exhausted pool still counts as seeded.
func (s State) Seeded() bool {
	return len(s.Available) > 0 || s.TotalDrafted() > 0
}

// Seed replaces the available pool. Player ids are canonicalized so
// later pick lookups compare equal regardless of the feed's id type.
func (s State) Seed(players []Player) State {
	next := s
	next.Available = make(map[string]Player, len(players))
	for _, p := range players {
		p.ID = CanonicalID(p.ID)
		next.Available[p.ID] = p
	}
	return next
}

func (s State) TotalDrafted() int {
	n := 0
	for _, team := range s.Teams {
		n += len(team)
	}
	return n
}

func (s State) allRostersFull() bool {
	for _, team := range s.Teams {
		if len(team) < RosterSize {
			return false
		}
	}
	return len(s.Teams) > 0
}

// CanonicalID reduces the mixed id representations seen at transport
// boundaries (42, "42", 42.0) to a single comparable string form.
func CanonicalID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		trimmed := strings.TrimSpace(id)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return formatNumericID(f)
		}
		return trimmed
	case json.Number:
		return CanonicalID(id.String())
	case float64:
		return formatNumericID(id)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

func formatNumericID(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Snapshot is the wire and persistence shape of a draft: everything a
// client needs to render the league, minus session ownership.
type Snapshot struct {
	TeamNames        []string   `json:"teamNames"`
	Teams            [][]Player `json:"teams"`
	AvailablePlayers []Player   `json:"availablePlayers"`
	CurrentTeamIndex int        `json:"currentTeamIndex"`
	SnakeDirection   int        `json:"snakeDirection"`
	IsDrafting       bool       `json:"isDrafting"`
	DraftComplete    bool       `json:"draftComplete"`
}

// Snapshot renders the state for broadcast or persistence. The pool is
// sorted by world rank (id tiebreak) so iteration order is stable for
// display even though Available is a map.
func (s State) Snapshot() Snapshot {
	teams := make([][]Player, len(s.Teams))
	for i, team := range s.Teams {
		teams[i] = append([]Player{}, team...)
	}

	pool := make([]Player, 0, len(s.Available))
	for _, p := range s.Available {
		pool = append(pool, p)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].WorldRank != pool[j].WorldRank {
			return pool[i].WorldRank < pool[j].WorldRank
		}
		return pool[i].ID < pool[j].ID
	})

	return Snapshot{
		TeamNames:        append([]string(nil), s.TeamNames...),
		Teams:            teams,
		AvailablePlayers: pool,
		CurrentTeamIndex: s.CurrentTeamIndex,
		SnakeDirection:   s.SnakeDirection,
		IsDrafting:       s.IsDrafting,
		DraftComplete:    s.DraftComplete,
	}
}

// FromSnapshot rebuilds runtime state from a persisted record.
// Ownership is transient and always starts empty.
func FromSnapshot(snap Snapshot) State {
	s := NewState(snap.TeamNames)
	for i, team := range snap.Teams {
		if i < len(s.Teams) {
			s.Teams[i] = append([]Player{}, team...)
		}
	}
	s.Available = make(map[string]Player, len(snap.AvailablePlayers))
	for _, p := range snap.AvailablePlayers {
		p.ID = CanonicalID(p.ID)
		s.Available[p.ID] = p
	}
	s.CurrentTeamIndex = snap.CurrentTeamIndex
	s.SnakeDirection = snap.SnakeDirection
	if s.SnakeDirection == 0 {
		s.SnakeDirection = 1
	}
	s.IsDrafting = snap.IsDrafting
	s.DraftComplete = snap.DraftComplete
	return s
}
