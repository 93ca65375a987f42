package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitroom/internal/domain"
	"splitroom/internal/normalize"
	"splitroom/internal/room"
)

const maxSessionBodyBytes = 1 << 20

type createSessionResponse struct {
	ID string `json:"id"`
}

type snapshotResponse struct {
	ID      string         `json:"id"`
	Receipt domain.Receipt `json:"receipt"`
	room.State
}

// CreateSession accepts the parsing service's raw receipt JSON, normalizes
// it and opens a room for it. Normalization never fails, so any
// syntactically valid payload yields a room.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	var parsed normalize.ParsedReceipt
	body := http.MaxBytesReader(w, r.Body, maxSessionBodyBytes)
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid_payload"})
		return
	}

	receipt := normalize.Receipt(parsed)
	rm := a.Rooms.Create(receipt)
	a.Log.Info().
		Str("room", rm.ID()).
		Int("items", len(receipt.Items)).
		Float64("total", receipt.Total).
		Msg("session created")
	a.json(w, http.StatusCreated, createSessionResponse{ID: rm.ID()})
}

// GetSession serves the current room snapshot to non-realtime clients, the
// same shape a websocket join delivers minus the subscription.
func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	rm, ok := a.Rooms.Get(chi.URLParam(r, "id"))
	if !ok {
		a.json(w, http.StatusNotFound, map[string]string{"error": "room_not_found"})
		return
	}
	a.json(w, http.StatusOK, snapshotResponse{
		ID:      rm.ID(),
		Receipt: rm.Receipt(),
		State:   rm.Snapshot(),
	})
}
