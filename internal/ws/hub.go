package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/events"
)

var ErrHubClosed = errors.New("websocket hub closed")

// Message is what dashboards receive over the socket.
type Message struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// topicMessage routes a message to one topic room.
type topicMessage struct {
	Topic   string
	Message Message
}

// Hub keeps the connected dashboards grouped by topic and fans events out
// to them. It implements events.Publisher so services publish to it the
// same way they publish to a broker.
type Hub struct {
	// Registered clients by topic
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *topicMessage
	done       chan struct{}
	closeOnce  sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Call it as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.topic] == nil {
				h.rooms[client.topic] = make(map[*Client]bool)
			}
			h.rooms[client.topic][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case tm := <-h.broadcast:
			message, err := json.Marshal(tm.Message)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[tm.Topic] {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it
					h.remove(client)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.topic]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.topic)
	}
}

// Publish queues e for the clients subscribed to its topic.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	tm := &topicMessage{
		Topic:   enum.TopicForEvent(e.Type),
		Message: Message{Type: e.Type, Key: e.Key, Payload: e.Payload},
	}
	select {
	case h.broadcast <- tm:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

// ClientCount returns how many clients are subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}
