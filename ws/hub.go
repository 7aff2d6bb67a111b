// Package ws pushes dashboard changes to connected screens.
//
// Hub bertanggung jawab untuk:
//   - menyimpan koneksi client,
//   - menerima event dari service,
//   - melakukan broadcast event ke seluruh client yang terhubung.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-dashboard/internal/announcement"
)

// Event types sent to clients.
const (
	EventState        = "state"
	EventAnnouncement = "announcement"
	EventConsultation = "consultation"
)

// Event is one message on the socket.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Client mewakili koneksi WebSocket.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), Conn: conn, Send: make(chan []byte, 256)}
}

// Hub mengelola semua koneksi client. Only Run touches Clients.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	done   chan struct{}
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws").Logger(),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.Clients {
				close(client.Send)
				delete(h.Clients, client)
			}
			return
		case client := <-h.Register:
			h.Clients[client] = true
			h.logger.Debug().Str("client_id", client.ID).Int("clients", len(h.Clients)).Msg("client registered")
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				h.logger.Debug().Str("client_id", client.ID).Int("clients", len(h.Clients)).Msg("client unregistered")
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					// slow client
					close(client.Send)
					delete(h.Clients, client)
					h.logger.Warn().Str("client_id", client.ID).Msg("client dropped")
				}
			}
		}
	}
}

// Publish encodes an event and queues it for broadcast. It never blocks;
// when the broadcast queue is full the event is dropped.
func (h *Hub) Publish(eventType string, payload interface{}) {
	msg, err := Encode(eventType, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", eventType).Msg("error encoding event")
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.logger.Warn().Str("type", eventType).Msg("broadcast queue full, event dropped")
	}
}

func (h *Hub) register(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Announced forwards announcements so screens can show the called number.
func (h *Hub) Announced(a announcement.Announcement) {
	h.Publish(EventAnnouncement, a)
}

func Encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now()})
}
