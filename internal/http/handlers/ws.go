package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitroom/internal/ws"
)

// ServeWS upgrades the connection and hands it to the room's websocket
// session. An unknown room is reported over the socket so browser clients
// can show the "expired or missing" state, then the socket is closed.
func (a *App) ServeWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rm, ok := a.Rooms.Get(id)

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Log.Debug().Err(err).Str("room", id).Msg("websocket upgrade failed")
		return
	}
	if !ok {
		_ = conn.WriteJSON(ws.ErrorMessage{Type: "error", Code: ws.CodeRoomNotFound})
		_ = conn.Close()
		return
	}

	ws.Serve(conn, rm, a.wsConfig, a.Log.With().Str("room", id).Logger())
}
