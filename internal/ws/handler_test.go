package ws

import (
	"encoding/json"
	"testing"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/types"
)

func TestToEngineCommand(t *testing.T) {
	cases := []struct {
		name   string
		msg    types.ClientMessage
		want   engine.Command
		wantOK bool
	}{
		{
			name:   "claim slot",
			msg:    types.ClientMessage{Type: "claim_slot", Slot: 2},
			want:   engine.Command{Type: engine.CmdClaimSlot, Slot: 2},
			wantOK: true,
		},
		{
			name:   "start",
			msg:    types.ClientMessage{Type: "start"},
			want:   engine.Command{Type: engine.CmdStart},
			wantOK: true,
		},
		{
			name:   "pick with numeric id",
			msg:    types.ClientMessage{Type: "pick", Slot: 1, PlayerID: json.RawMessage(`42`)},
			want:   engine.Command{Type: engine.CmdPick, Slot: 1, PlayerID: "42"},
			wantOK: true,
		},
		{
			name:   "pick with string id",
			msg:    types.ClientMessage{Type: "pick", Slot: 1, PlayerID: json.RawMessage(`"42"`)},
			want:   engine.Command{Type: engine.CmdPick, Slot: 1, PlayerID: "42"},
			wantOK: true,
		},
		{
			name:   "pick with float id",
			msg:    types.ClientMessage{Type: "pick", Slot: 1, PlayerID: json.RawMessage(`42.0`)},
			want:   engine.Command{Type: engine.CmdPick, Slot: 1, PlayerID: "42"},
			wantOK: true,
		},
		{
			name: "unknown type",
			msg:  types.ClientMessage{Type: "hover"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := toEngineCommand(tc.msg)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && cmd != tc.want {
				t.Fatalf("got %+v, want %+v", cmd, tc.want)
			}
		})
	}
}

func TestRandIDLengthAndCharset(t *testing.T) {
	id := randID(8)
	if len(id) != 8 {
		t.Fatalf("len = %d, want 8", len(id))
	}
	if id == randID(8) {
		t.Fatalf("two generated ids should not collide")
	}
}
