package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to connected list screens.
const (
	EventRecordUpdated  = "record.updated"
	EventRecordDeleted  = "record.deleted"
	EventSessionStarted = "session.started"
	EventSessionEnded   = "session.ended"
)

// Event represents a roster change message sent to websocket clients
type Event struct {
	Type      string   `json:"type"`
	RecordID  uint     `json:"record_id,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is a simple global pubsub for websocket clients
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]bool
	register    chan *subscriber
	unregister  chan *subscriber
	broadcast   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]bool),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			h.mu.Unlock()
		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.RLock()
			for sub := range h.subscribers {
				select {
				case sub.send <- message:
				default:
					close(sub.send)
					delete(h.subscribers, sub)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast fans the event out to every subscriber. Events are dropped
// rather than blocking a mutation when the channel is saturated.
func (h *Hub) Broadcast(eventType string, recordID uint, fields []string) {
	event := Event{
		Type:      eventType,
		RecordID:  recordID,
		Fields:    fields,
		Timestamp: time.Now().Unix(),
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("realtime: failed to marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- encoded:
	default:
		log.Printf("realtime: dropping event, broadcast channel full")
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers a subscriber
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: websocket upgrade error: %v", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, 256)}
	h.register <- sub

	// writer
	go func() {
		for msg := range sub.send {
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		sub.conn.Close()
	}()

	// reader (just consume pings/close)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister <- sub
}
