package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Event types pushed to the intake client
const (
	MsgPointsAwarded        MessageType = "points_awarded"
	MsgComboExpired         MessageType = "combo_expired"
	MsgEncouragement        MessageType = "encouragement"
	MsgEncouragementDismiss MessageType = "encouragement_dismissed"
	MsgMilestone            MessageType = "milestone"
	MsgMilestoneDismissed   MessageType = "milestone_dismissed"
	MsgSyncStatus           MessageType = "sync_status"
	MsgIntakeCompleted      MessageType = "intake_completed"
	MsgError                MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for intake sessions. A client may have
// the same intake open in more than one tab; every connection for the pair
// receives every event.
type Hub struct {
	// sessionKey -> connections
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection for one open intake tab
type Connection struct {
	ClientID        string
	QuestionnaireID string
	Send            chan []byte
	Hub             *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ClientID        string
	QuestionnaireID string
	Disconnect      bool
	Message         *Message
}

func sessionKey(clientID, questionnaireID string) string {
	return clientID + "/" + questionnaireID
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
			key := sessionKey(conn.ClientID, conn.QuestionnaireID)
			h.mu.Lock()
			if h.conns[key] == nil {
				h.conns[key] = make(map[*Connection]bool)
			}
			h.conns[key][conn] = true
			h.mu.Unlock()
			log.Printf("Client %s connected to intake %s", conn.ClientID, conn.QuestionnaireID)

		case conn := <-h.unregister:
			key := sessionKey(conn.ClientID, conn.QuestionnaireID)
			h.mu.Lock()
			if conns, ok := h.conns[key]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.conns, key)
					}
					log.Printf("Client %s disconnected from intake %s", conn.ClientID, conn.QuestionnaireID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			key := sessionKey(msg.ClientID, msg.QuestionnaireID)
			h.mu.RLock()
			conns := h.conns[key]
			if msg.Disconnect {
				for conn := range conns {
					close(conn.Send)
				}
			} else {
				data, _ := json.Marshal(msg.Message)
				for conn := range conns {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			}
			h.mu.RUnlock()
			if msg.Disconnect {
				h.mu.Lock()
				delete(h.conns, key)
				h.mu.Unlock()
			}
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

// BroadcastToClient sends a message to every open tab of one intake
// (implements service.Broadcaster)
func (h *Hub) BroadcastToClient(clientID, questionnaireID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		ClientID:        clientID,
		QuestionnaireID: questionnaireID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectClient drops every connection of one intake (implements
// service.Broadcaster)
func (h *Hub) DisconnectClient(clientID, questionnaireID string) {
	h.broadcast <- &BroadcastMessage{
		ClientID:        clientID,
		QuestionnaireID: questionnaireID,
		Disconnect:      true,
	}
}
