package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sendBuffer = 64

type Client struct {
	ID        string
	ProfileID uuid.UUID
	Send      chan []byte
}

func NewClient(profileID uuid.UUID) *Client {
	return &Client{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Send:      make(chan []byte, sendBuffer),
	}
}

// Hub tracks open websocket clients by profile. Run owns registration;
// sends only take the read lock.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
}

// RegisterClient adds client to the hub. It returns false once Run has
// stopped; the client is then never served.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient removes client. After Run has stopped it is a no-op,
// since Run already closed every Send channel.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// SendToProfile delivers payload to every connection of the profile.
// A full buffer drops the message for that connection.
func (h *Hub) SendToProfile(profileID uuid.UUID, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients {
		if client.ProfileID != profileID {
			continue
		}
		select {
		case client.Send <- payload:
			delivered++
		default:
			h.log.Warn("send buffer full, dropping", zap.String("client_id", client.ID))
		}
	}
	return delivered
}

func (h *Hub) Connected(profileID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, client := range h.clients {
		if client.ProfileID == profileID {
			n++
		}
	}
	return n
}

// Run serves registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.log.Debug("client registered", zap.String("client_id", client.ID), zap.Stringer("profile_id", client.ProfileID))

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
			}
			h.mu.Unlock()
			h.log.Debug("client unregistered", zap.String("client_id", client.ID))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			close(h.done)
			return
		}
	}
}
