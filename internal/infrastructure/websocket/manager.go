package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager manages all active WebSocket connections. Delivery is
// best-effort: the REST API is the source of truth for chat state.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				log.Printf("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if _, ok := m.clients[client.UserID]; ok {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				m.mutex.Unlock()
				log.Printf("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// SendToUser sends a message to a specific user if connected.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		// Slow consumer; drop rather than block the caller.
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		// Inbound frames are ignored; messages are posted over REST.
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error: %v", err)
			return
		}
	}
}
