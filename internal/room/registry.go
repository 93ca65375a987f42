package room

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"splitroom/internal/domain"
)

const roomIDLength = 6

// Registry is the arena of live rooms, keyed by their opaque short token.
// Rooms are in-memory only and die with the process; that is deliberate
// scope, not an oversight.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create binds an already-normalized receipt to a fresh room token and
// starts the room's mailbox goroutine.
func (r *Registry) Create(receipt domain.Receipt) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newRoomID()
	for {
		if _, taken := r.rooms[id]; !taken {
			break
		}
		id = newRoomID()
	}
	rm := newRoom(id, receipt)
	r.rooms[id] = rm
	return rm
}

// Get looks up a live room. The second return is false for unknown or
// expired ids (any id from before the last restart).
func (r *Registry) Get(id string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[strings.ToUpper(strings.TrimSpace(id))]
	return rm, ok
}

// Len reports how many rooms are currently live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// newRoomID returns a short link-friendly token like "9F3A2C".
func newRoomID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:roomIDLength]
}
