package realtime

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"example/storefront/internal/logger"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to WebSocket sessions on the hub
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	allowedOrigins map[string]bool
}

// NewHandler creates a WebSocket handler. With no allowed origins configured,
// same-host and localhost clients are accepted.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	h := &Handler{
		hub:            hub,
		allowedOrigins: make(map[string]bool),
	}
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			h.allowedOrigins[trimmed] = true
		}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeWS handles incoming WebSocket connections
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorw("WebSocket upgrade error", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	client := newClient(conn)
	sessionID, err := h.hub.Connect(client)
	if err != nil {
		client.Close()
		return
	}

	logger.Log.Infow("Client connected", "session_id", sessionID, "remote_addr", r.RemoteAddr)
	h.readLoop(conn, sessionID, r.RemoteAddr)
	logger.Log.Infow("Client disconnected", "session_id", sessionID, "remote_addr", r.RemoteAddr)
}

func (h *Handler) readLoop(conn *websocket.Conn, sessionID, remoteAddr string) {
	defer h.hub.Disconnect(sessionID)

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warnw("WebSocket error", "error", err, "remote_addr", remoteAddr)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(p, &msg); err != nil {
			logger.Log.Debugw("Invalid message format", "remote_addr", remoteAddr, "error", err)
			continue
		}

		switch msg.Event {
		case EventJoinRoom:
			h.hub.Join(sessionID, msg.ProductID)
		case EventLeaveRoom:
			h.hub.Leave(sessionID, msg.ProductID)
		case EventReportStock:
			if msg.AvailableStock == nil {
				continue
			}
			h.hub.Report(msg.ProductID, *msg.AvailableStock)
		default:
			logger.Log.Debugw("Unknown event", "event", msg.Event, "remote_addr", remoteAddr)
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(h.allowedOrigins) > 0 {
		return h.allowedOrigins[origin]
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := parsed.Host
	if host == r.Host {
		return true
	}
	if host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return true
	}
	if host == "127.0.0.1" || strings.HasPrefix(host, "127.0.0.1:") {
		return true
	}
	return false
}
