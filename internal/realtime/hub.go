// Package realtime pushes new support messages to the websocket clients
// watching a conversation.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is one broadcast frame.
type Event struct {
	Type           string      `json:"type"`
	ConversationID uint        `json:"conversationId"`
	Data           interface{} `json:"data"`
}

const (
	EventMessage      = "message"
	EventConversation = "conversation"
	EventTyping       = "typing"
)

// Hub tracks the clients subscribed to each conversation.
type Hub struct {
	clients    map[uint]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[c.conversationID]; !ok {
				h.clients[c.conversationID] = make(map[*Client]bool)
			}
			h.clients[c.conversationID][c] = true
			h.mu.Unlock()
			logrus.WithField("conversation_id", c.conversationID).Info("support client registered")

		case c := <-h.unregister:
			h.remove(c)

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				logrus.WithError(err).Warn("failed to marshal support event")
				continue
			}
			h.mu.Lock()
			for c := range h.clients[ev.ConversationID] {
				select {
				case c.send <- data:
				default:
					// slow consumer
					h.dropLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

func (h *Hub) dropLocked(c *Client) {
	clients, ok := h.clients[c.conversationID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.conversationID)
	}
	logrus.WithField("conversation_id", c.conversationID).Info("support client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for c := range clients {
			h.dropLocked(c)
		}
	}
}

// Publish queues an event without blocking the caller.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		logrus.WithField("conversation_id", ev.ConversationID).Warn("support broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of clients watching a conversation.
func (h *Hub) ClientCount(conversationID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[conversationID])
}
