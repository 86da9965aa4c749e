package handler

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// StreamProgress upgrades to WebSocket and relays the session's generation
// progress. The feed replays past events, so connecting after generation
// started still delivers every step; the socket closes after the final
// done or failed event.
func (h *Handler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.Logger.Printf("session %s: websocket accept: %v", sess.ID, err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	events, cancel := sess.Progress().Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "generation finished")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				h.Logger.Printf("session %s: progress write: %v", sess.ID, err)
				return
			}
		}
	}
}
