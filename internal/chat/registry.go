package chat

import (
	"slices"
	"sync"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
)

// Registry tracks live connections per room in registration order.
// It is safe for concurrent use; readers get copies, never the live slice.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string][]Subscriber
	metrics *metrics.MetricsManager
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(m *metrics.MetricsManager) *Registry {
	return &Registry{
		rooms:   make(map[string][]Subscriber),
		metrics: m,
	}
}

// Connect appends sub to the room, creating the room entry on first use.
func (r *Registry) Connect(roomID string, sub Subscriber) {
	r.mu.Lock()
	r.rooms[roomID] = append(r.rooms[roomID], sub)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ChatSubscribers.Inc()
	}
}

// Disconnect removes sub from the room. Removing an unknown handle is a no-op
// and reports false.
func (r *Registry) Disconnect(roomID string, sub Subscriber) bool {
	r.mu.Lock()
	subs := r.rooms[roomID]
	i := slices.Index(subs, sub)
	if i < 0 {
		r.mu.Unlock()
		return false
	}
	subs = slices.Delete(subs, i, i+1)
	if len(subs) == 0 {
		delete(r.rooms, roomID)
	} else {
		r.rooms[roomID] = subs
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.ChatSubscribers.Dec()
	}
	return true
}

// Subscribers returns a snapshot of the room's connections in registration order.
func (r *Registry) Subscribers(roomID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rooms[roomID])
}

func (r *Registry) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Rooms returns the number of rooms with at least one connection.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
