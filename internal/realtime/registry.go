package realtime

import "sync"

// Registry maps product ids to the set of sessions currently viewing them.
// Membership sets are owned exclusively by the registry and never escape it;
// the viewer count is always the cardinality of the live set, never a
// separately maintained counter that could drift.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

// Join adds sessionID to productID's room, reporting whether membership
// changed. Joining a room the session is already in is a no-op.
func (r *Registry) Join(productID, sessionID string) bool {
	if productID == "" || sessionID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[productID]
	if !ok {
		room = make(map[string]struct{})
		r.rooms[productID] = room
	}
	if _, member := room[sessionID]; member {
		return false
	}
	room[sessionID] = struct{}{}
	return true
}

// Leave removes sessionID from productID's room, reporting whether membership
// changed. A room whose last member leaves is dropped immediately.
func (r *Registry) Leave(productID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[productID]
	if !ok {
		return false
	}
	if _, member := room[sessionID]; !member {
		return false
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, productID)
	}
	return true
}

// Members returns a copy of the session ids currently in productID's room
func (r *Registry) Members(productID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[productID]
	if len(room) == 0 {
		return nil
	}
	members := make([]string, 0, len(room))
	for id := range room {
		members = append(members, id)
	}
	return members
}

// Count returns the number of sessions in productID's room, derived from the
// membership set.
func (r *Registry) Count(productID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[productID])
}

// Rooms returns the number of rooms with at least one member
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
