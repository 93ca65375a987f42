package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"splitroom/internal/infra"
	"splitroom/internal/room"
	"splitroom/internal/ws"
)

type App struct {
	Rooms *room.Registry
	Log   zerolog.Logger

	wsConfig ws.Config
	upgrader websocket.Upgrader
}

func NewApp(rooms *room.Registry, log zerolog.Logger, cfg *infra.Config) *App {
	return &App{
		Rooms: rooms,
		Log:   log,
		wsConfig: ws.Config{
			WriteTimeout:    cfg.WSWriteTimeout,
			PongTimeout:     cfg.WSPongTimeout,
			MaxMessageBytes: cfg.WSMaxMessageBytes,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func originChecker(allowed []string) func(*http.Request) bool {
	allow := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
		allow[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		if wildcard {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allow[origin]
		return ok
	}
}
