package live

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const clientBufferSize = 64

// Message is the frame pushed to live clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type Client struct {
	ID       string
	UserID   string
	Messages chan Message
}

// Hub fans every message out to all connected clients. Clients filter by themselves.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

var GlobalHub = NewHub()

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	logrus.Infof("live client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Messages)
		delete(h.clients, clientID)
		logrus.Infof("live client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast never blocks, a client with a full buffer misses the message.
func (h *Hub) Broadcast(m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Messages <- m:
		default:
			logrus.Warnf("live client %s buffer full, skipping message", client.ID)
		}
	}
}
