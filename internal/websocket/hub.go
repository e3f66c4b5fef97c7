// Package websocket pushes sync-progress events to connected dashboard
// clients, fanned out per user.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The HTTP API is open CORS; the socket follows suit.
		return true
	},
}

// Message is the wire envelope for every event pushed to a client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one connected dashboard tab.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub maintains the set of active clients and routes events to them.
type Hub struct {
	clients    map[*Client]bool
	userMap    map[string][]*Client
	broadcast  chan *broadcastMessage
	register   chan *Client
	unregister chan *Client
	log        zerolog.Logger
	mu         sync.RWMutex
}

type broadcastMessage struct {
	target  string // "all" or "user:<id>"
	msgType string
	payload interface{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		userMap:    make(map[string][]*Client),
		broadcast:  make(chan *broadcastMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With().Str("component", "websocket").Logger(),
	}
}

// Run is the hub main loop. Call it once, in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.userID != "" {
				h.userMap[client.userID] = append(h.userMap[client.userID], client)
			}
			h.mu.Unlock()
			h.log.Debug().Str("user_id", client.userID).Msg("Client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if clients, ok := h.userMap[client.userID]; ok {
					for i, c := range clients {
						if c == client {
							h.userMap[client.userID] = append(clients[:i], clients[i+1:]...)
							break
						}
					}
					if len(h.userMap[client.userID]) == 0 {
						delete(h.userMap, client.userID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debug().Str("user_id", client.userID).Msg("Client disconnected")

		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

func (h *Hub) handleBroadcast(msg *broadcastMessage) {
	data, err := json.Marshal(Message{Type: msg.msgType, Payload: msg.payload})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	switch {
	case msg.target == "all":
		for client := range h.clients {
			select {
			case client.send <- data:
			default:
			}
		}
	case len(msg.target) > 5 && msg.target[:5] == "user:":
		for _, client := range h.userMap[msg.target[5:]] {
			select {
			case client.send <- data:
			default:
			}
		}
	}
}

// BroadcastToAll sends an event to every connected client.
func (h *Hub) BroadcastToAll(msgType string, payload interface{}) {
	h.broadcast <- &broadcastMessage{target: "all", msgType: msgType, payload: payload}
}

// BroadcastToUser sends an event to every connection the user has open.
func (h *Hub) BroadcastToUser(userID, msgType string, payload interface{}) {
	h.broadcast <- &broadcastMessage{target: "user:" + userID, msgType: msgType, payload: payload}
}

// OnlineUsers returns the IDs of users with at least one open socket.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.userMap))
	for userID := range h.userMap {
		users = append(users, userID)
	}
	return users
}

// ServeWs upgrades an already-authenticated request. The caller has
// resolved the session, so the hub only needs the user ID.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Clients only listen; inbound frames just keep the connection alive.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("WebSocket read error")
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
