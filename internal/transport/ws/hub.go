package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgMentorMessage MessageType = "mentor_message"
	MsgUserMessage   MessageType = "user_message"
	MsgError         MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for tutor chat sessions
type Hub struct {
	// Chat session -> open connections (a learner may have several tabs)
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection bound to a chat session
type Connection struct {
	SessionID string
	UserID    string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to deliver to a chat session
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]bool)
			}
			h.conns[conn.SessionID][conn] = true
			h.mu.Unlock()
			log.Printf("User %s connected to chat %s", conn.UserID, conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if sessionConns, ok := h.conns[conn.SessionID]; ok {
				if sessionConns[conn] {
					delete(sessionConns, conn)
					close(conn.Send)
					if len(sessionConns) == 0 {
						delete(h.conns, conn.SessionID)
					}
					log.Printf("User %s disconnected from chat %s", conn.UserID, conn.SessionID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SendToChat delivers a message to every connection on a chat session
// (implements service.Broadcaster)
func (h *Hub) SendToChat(sessionID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
