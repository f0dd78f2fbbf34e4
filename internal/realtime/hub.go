package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecolearn/ecolearn-api/internal/models"
)

// Event is one realtime message for a single recipient. An empty RecipientID
// broadcasts to every connected client.
type Event struct {
	RecipientID  string               `json:"recipient_id,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Client is one open SSE stream.
type Client struct {
	ID       string
	UserID   string
	Outbound chan Event
	done     chan struct{}
}

// Hub fans events out to connected clients keyed by user id.
type Hub struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	clients map[string]map[*Client]bool
}

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*Client]bool),
	}
}

// Register creates and tracks a client stream for the user.
func (h *Hub) Register(userID string) *Client {
	client := &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[userID] = set
	}
	set[client] = true
	h.mu.Unlock()

	h.logger.Debug("sse client connected", zap.String("client_id", client.ID), zap.String("user_id", userID))
	return client
}

// Unregister removes the client and closes its channels.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if set, ok := h.clients[client.UserID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()

	close(client.done)
	h.logger.Debug("sse client disconnected", zap.String("client_id", client.ID))
}

// Dispatch routes an event to its recipient's open streams, or to everyone
// when no recipient is set. Slow clients drop the event instead of blocking.
func (h *Hub) Dispatch(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(c *Client) {
		select {
		case c.Outbound <- event:
		default:
			h.logger.Warn("dropping sse event, outbound buffer full", zap.String("client_id", c.ID))
		}
	}

	if event.RecipientID == "" {
		for _, set := range h.clients {
			for c := range set {
				deliver(c)
			}
		}
		return
	}
	for c := range h.clients[event.RecipientID] {
		deliver(c)
	}
}

// Serve streams events to the client until the request context ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-client.Outbound:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("failed to marshal sse event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
