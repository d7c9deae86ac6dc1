package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const clientBuffer = 64

// Message tells clients which cached queries are stale. Clients re-fetch; no data is pushed.
type Message struct {
	Type      string     `json:"type"`
	QueryKeys []string   `json:"queryKeys,omitempty"`
	GroupID   *uuid.UUID `json:"groupId,omitempty"`
}

const (
	TypeConnected  = "connected"
	TypeInvalidate = "invalidate"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

func NewClient(userId uuid.UUID) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userId,
		Send:   make(chan []byte, clientBuffer),
	}
}

type userMessage struct {
	userIds []uuid.UUID
	data    []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *userMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and deliveries until ctx is done. All client channels are closed on return.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) deliver(msg *userMessage) {
	recipients := make(map[uuid.UUID]bool, len(msg.userIds))
	for _, id := range msg.userIds {
		recipients[id] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !recipients[client.UserID] {
			continue
		}
		select {
		case client.Send <- msg.data:
		default:
			// a later invalidation supersedes the dropped one
			log.Debugf("live client %s buffer full, dropping message", client.ID)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUsers queues msg for every connected client of the given users.
func (h *Hub) SendToUsers(userIds []uuid.UUID, msg Message) {
	if len(userIds) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("could not encode live message: %v", err)
		return
	}
	select {
	case h.broadcast <- &userMessage{userIds: userIds, data: data}:
	default:
		log.Warn("live broadcast queue full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
