// Package realtime pushes live location events to connected recipients over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 1024
	sendBuffer     = 64
	recentEvents   = 1024
)

// Hub tracks open streams per user. A user may hold several streams at once.
// An event reaching the hub both locally and through the push relay is delivered once.
type Hub struct {
	mu       sync.RWMutex
	streams  map[uuid.UUID]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger

	seenMu sync.Mutex
	seen   map[string]struct{}
	ring   []string
	next   int
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		streams: make(map[uuid.UUID]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Streams are opened only after token authentication, so any origin may upgrade.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		seen:   make(map[string]struct{}, recentEvents),
		ring:   make([]string, recentEvents),
	}
}

// NewLocationNotifier exposes the hub as the notifier port.
func NewLocationNotifier(h *Hub) service.LocationNotifier {
	return h
}

// Serve upgrades the request and streams events for userID until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "websocket upgrade failed")
	}

	c := newClient(h, userID, conn)
	h.join(c)
	go c.writePump()
	go c.readPump()

	return nil
}

// NotifyLiveLocation sends the event to every recipient and to the owner's other streams.
func (h *Hub) NotifyLiveLocation(ctx context.Context, event *service.LiveLocationEvent) {
	if !h.firstSighting(event.EventID) {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Error("Failed to encode live location event",
			slog.Any("error", err),
		)

		return
	}

	targets := make([]uuid.UUID, 0, len(event.Recipients)+1)
	for _, raw := range append([]string{event.UserID}, event.Recipients...) {
		if id, err := uuid.Parse(raw); err == nil {
			targets = append(targets, id)
		}
	}

	for _, c := range h.clientsFor(targets) {
		c.enqueue(payload)
	}
}

// firstSighting records eventID and reports whether it was new. Only the most recent
// recentEvents ids are remembered. Events without an id are always delivered.
func (h *Hub) firstSighting(eventID string) bool {
	if eventID == "" {
		return true
	}

	h.seenMu.Lock()
	defer h.seenMu.Unlock()

	if _, ok := h.seen[eventID]; ok {
		return false
	}
	if old := h.ring[h.next]; old != "" {
		delete(h.seen, old)
	}
	h.ring[h.next] = eventID
	h.seen[eventID] = struct{}{}
	h.next = (h.next + 1) % len(h.ring)

	return true
}

// Connections returns the number of open streams for a user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.streams[userID])
}

func (h *Hub) clientsFor(userIDs []uuid.UUID) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*client
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for c := range h.streams[id] {
			out = append(out, c)
		}
	}

	return out
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.streams[c.userID] == nil {
		h.streams[c.userID] = make(map[*client]struct{})
	}
	h.streams[c.userID][c] = struct{}{}
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set := h.streams[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.streams, c.userID)
		}
	}
}
