package types

import (
	"encoding/json"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
)

// ClientMessage is what a session sends over the websocket. PlayerID
// stays raw JSON because clients send both numeric and string ids;
// the engine canonicalizes before comparison.
type ClientMessage struct {
	Type     string          `json:"type"`
	Slot     int             `json:"slot,omitempty"`
	PlayerID json.RawMessage `json:"player_id,omitempty"`
}

type ServerMessage struct {
	Type    string           `json:"type"` // "state" | "slot_claimed" | "denied" | "error"
	Version int              `json:"version,omitempty"`
	Slot    *int             `json:"slot,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	State   *engine.Snapshot `json:"state,omitempty"`
	Error   string           `json:"error,omitempty"`
}
