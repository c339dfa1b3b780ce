package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"example/storefront/internal/logger"

	"github.com/google/uuid"
)

// ErrHubClosed is returned by Connect after the hub has shut down
var ErrHubClosed = errors.New("realtime hub closed")

const catalogLookupTimeout = 5 * time.Second

// CatalogLookup fetches the persisted stock quantity for a product. It is the
// only blocking call the hub makes and always runs outside the hub lock.
type CatalogLookup interface {
	ProductStock(ctx context.Context, productID string) (int, error)
}

// Sender delivers messages to one connected session. Send must not block:
// implementations drop messages they cannot buffer, since fan-out is
// best-effort.
type Sender interface {
	Send(msg ServerMessage)
	Close()
}

type sessionState int

const (
	stateConnected sessionState = iota // no room memberships
	stateActive                        // at least one room membership
	stateClosed                        // torn down, terminal
)

// session tracks one live connection and the rooms it occupies. The rooms set
// here is the session's own weak view used for teardown; the registry holds
// the authoritative membership.
type session struct {
	id    string
	out   Sender
	state sessionState
	rooms map[string]struct{}
}

// Hub coordinates the real-time layer: it owns every session, the room
// registry and the stock overlay, and serializes all mutations and broadcasts
// under one lock so events apply in arrival order. For a single room that
// gives viewers causally ordered counts; no cross-room ordering is promised.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
	registry *Registry
	overlay  *StockOverlay
	catalog  CatalogLookup
	closed   bool
}

// NewHub creates a hub that seeds unreported stock values from catalog
func NewHub(catalog CatalogLookup) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		registry: NewRegistry(),
		overlay:  NewStockOverlay(),
		catalog:  catalog,
	}
}

// Connect registers a new session and returns its id
func (h *Hub) Connect(out Sender) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", ErrHubClosed
	}

	id := uuid.NewString()
	h.sessions[id] = &session{
		id:    id,
		out:   out,
		state: stateConnected,
		rooms: make(map[string]struct{}),
	}
	return id, nil
}

// Join subscribes the session to productID's room, broadcasts the new viewer
// count to the whole room and answers the session with the current stock
// value. An empty productID or an unknown session is a silent no-op, as is a
// duplicate join.
func (h *Hub) Join(sessionID, productID string) {
	if productID == "" {
		return
	}

	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if !ok || s.state == stateClosed {
		h.mu.Unlock()
		return
	}
	if !h.registry.Join(productID, sessionID) {
		// Already a member, nothing changed
		h.mu.Unlock()
		return
	}
	s.rooms[productID] = struct{}{}
	s.state = stateActive

	h.broadcastCountLocked(productID)

	if stock, found := h.overlay.Get(productID); found {
		s.out.Send(stockUpdateMessage(productID, stock))
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	// No overlay value yet: seed it from the catalog. This lookup is the only
	// suspension point in the hub; the registry stays usable while it runs.
	go h.seedStock(sessionID, productID)
}

// Leave unsubscribes the session from productID's room and broadcasts the new
// count to the remaining members. Leaving a room the session is not in is a
// silent no-op.
func (h *Hub) Leave(sessionID, productID string) {
	if productID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok || s.state == stateClosed {
		return
	}
	h.leaveLocked(s, productID)
}

// Report stores an advisory stock value for productID (last-write-wins) and
// fans it out to every member of the product's room, including the reporter
// if it is a member. Negative or empty input is ignored.
func (h *Hub) Report(productID string, availableStock int) {
	if productID == "" || availableStock < 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.overlay.Set(productID, availableStock)

	msg := stockUpdateMessage(productID, availableStock)
	for _, id := range h.registry.Members(productID) {
		if s, ok := h.sessions[id]; ok {
			s.out.Send(msg)
		}
	}
}

// Disconnect tears the session down: a leave is synthesized for every room it
// still occupies, each with its recount broadcast, and the session record is
// destroyed. Teardown runs exactly once even if the disconnect is signaled
// multiple times.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok || s.state == stateClosed {
		return
	}
	s.state = stateClosed

	for productID := range s.rooms {
		if h.registry.Leave(productID, sessionID) {
			h.broadcastCountLocked(productID)
		}
	}
	s.rooms = nil
	delete(h.sessions, sessionID)
	s.out.Close()

	logger.Log.Debugw("Session disconnected", "session_id", sessionID)
}

// Shutdown disconnects every session and refuses new connections
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}

// Sessions returns the number of live sessions
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// ViewerCount returns the current derived viewer count for productID
func (h *Hub) ViewerCount(productID string) int {
	return h.registry.Count(productID)
}

// broadcastCountLocked sends the room's post-change viewer count to every
// current member. Callers must hold h.mu, which is what guarantees the count
// reflects the state after the triggering join or leave.
func (h *Hub) broadcastCountLocked(productID string) {
	count := h.registry.Count(productID)
	msg := viewerCountMessage(productID, count)
	for _, id := range h.registry.Members(productID) {
		if s, ok := h.sessions[id]; ok {
			s.out.Send(msg)
		}
	}
}

// leaveLocked applies a leave and its recount broadcast. Callers must hold h.mu.
func (h *Hub) leaveLocked(s *session, productID string) {
	if !h.registry.Leave(productID, s.id) {
		return
	}
	delete(s.rooms, productID)
	if len(s.rooms) == 0 && s.state == stateActive {
		s.state = stateConnected
	}
	h.broadcastCountLocked(productID)
}

// seedStock resolves the initial stock for a product nobody had reported on
// yet and answers the joining session. If the session was torn down or left
// the room while the lookup was in flight, the answer is discarded.
func (h *Hub) seedStock(sessionID, productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), catalogLookupTimeout)
	defer cancel()

	stock, err := h.catalog.ProductStock(ctx, productID)
	if err != nil {
		logger.Log.Warnw("Catalog stock lookup failed, treating stock as unknown",
			"product_id", productID, "error", err)
		stock = 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// A client report may have arrived while the lookup was pending; the
	// reported value wins and the session already saw its broadcast.
	current := h.overlay.Seed(productID, stock)

	s, ok := h.sessions[sessionID]
	if !ok || s.state == stateClosed {
		return
	}
	if _, member := s.rooms[productID]; !member {
		return
	}
	s.out.Send(stockUpdateMessage(productID, current))
}
