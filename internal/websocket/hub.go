// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Message kinds pushed to browsers.
const (
	KindRefresh = "refresh"
	KindAlert   = "alert"
)

// Message is the envelope every live event is wrapped in.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			slog.Info("websocket client registered", "client", client.ID, "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				slog.Info("websocket client unregistered", "client", client.ID)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Assume client is blocked or gone, unregister
					slog.Warn("websocket client send buffer full, removing", "client", client.ID)
					close(client.Send)
					delete(h.clients, client)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// RegisterClient hands a new client to the hub.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Broadcast queues a message for every client. It drops the message rather
// than block when the queue is full.
func (h *Hub) Broadcast(kind string, payload any) {
	messageBytes, err := json.Marshal(Message{Type: kind, Payload: payload})
	if err != nil {
		slog.Error("marshalling broadcast", "type", kind, "error", err)
		return
	}
	select {
	case h.broadcast <- messageBytes:
	default:
		slog.Warn("broadcast queue full, dropping message", "type", kind)
	}
}

// BroadcastAlert sends an alert message to all clients
func (h *Hub) BroadcastAlert(alert any) {
	h.Broadcast(KindAlert, alert)
}

// BroadcastRefresh tells clients to reload the view for the given key.
func (h *Hub) BroadcastRefresh(payload any) {
	h.Broadcast(KindRefresh, payload)
}
