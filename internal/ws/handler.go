package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/jmorgan84/golf-draft-backend/internal/engine"
	"github.com/jmorgan84/golf-draft-backend/internal/hub"
	"github.com/jmorgan84/golf-draft-backend/internal/lobby"
	"github.com/jmorgan84/golf-draft-backend/internal/types"
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		leagueID, err := strconv.ParseUint(r.URL.Query().Get("league"), 10, 64)
		if err != nil {
			http.Error(w, "missing or bad league id", http.StatusBadRequest)
			return
		}

		// Reconnecting clients pass their previous session id so an
		// idempotent re-claim restores their slot.
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			sessionID = randID(8)
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{LeagueID: uint(leagueID), Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "league not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Update, 8)
		lb.Inbox() <- lobby.Join{SessionID: sessionID, Outbox: out}
		// Disconnect is a command like any other: every lobby this
		// session touched releases its slots.
		defer func() { h.Inbox() <- hub.ReleaseSession{SessionID: sessionID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for update := range out {
				payload, err := json.Marshal(toServerMessage(update))
				if err != nil {
					log.Error("encode update", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Clean close or drop; either way the deferred
				// release runs.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"bad json"}`))
				continue
			}

			if cm.Type == "join" {
				// Idempotent: re-registers the session and resends
				// the current snapshot to it.
				lb.Inbox() <- lobby.Join{SessionID: sessionID, Outbox: out}
				continue
			}
			if cm.Type == "leave" {
				// Treated as a disconnect; the deferred release
				// frees the session's slots.
				return
			}

			cmd, ok := toEngineCommand(cm)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"unknown type"}`))
				continue
			}

			lb.Inbox() <- lobby.FromClient{SessionID: sessionID, Cmd: cmd}
		}
	}
}

func toEngineCommand(m types.ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case "claim_slot":
		return engine.Command{Type: engine.CmdClaimSlot, Slot: m.Slot}, true
	case "start":
		return engine.Command{Type: engine.CmdStart}, true
	case "reset":
		return engine.Command{Type: engine.CmdReset}, true
	case "pick":
		return engine.Command{Type: engine.CmdPick, Slot: m.Slot, PlayerID: canonicalRawID(m.PlayerID)}, true
	default:
		return engine.Command{}, false
	}
}

// canonicalRawID accepts the id however the client encoded it; 42,
// "42" and 42.0 all canonicalize to "42".
func canonicalRawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return engine.CanonicalID(v)
}

func toServerMessage(update lobby.Update) types.ServerMessage {
	msg := types.ServerMessage{
		Type:    update.Kind,
		Version: update.Version,
		Reason:  update.Reason,
		State:   update.State,
	}
	if update.Kind == lobby.KindSlotClaimed {
		slot := update.Slot
		msg.Slot = &slot
	}
	return msg
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
