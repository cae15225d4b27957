package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/zenboard/board"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024 * 1024 // 1MB
)

// Message types exchanged over the socket.
const (
	MessageBoard  = "board"
	MessageAction = "action"
	MessageError  = "error"
	MessagePing   = "ping"
	MessagePong   = "pong"
)

// Client represents a connected WebSocket client
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// WebSocketMessage is the standard message format for WebSocket communication
type WebSocketMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ActionFunc applies an action received from a client. A non-nil error is
// reported back to that client only.
type ActionFunc func(data json.RawMessage) error

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := sonic.ConfigStd.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshalling WebSocket message: %v", err)
			continue
		}

		switch wsMessage.Type {
		case MessagePing:
			// Reply with a pong directly to this client only
			c.reply(MessagePong, map[string]string{"timestamp": time.Now().Format(time.RFC3339)})
		case MessageAction:
			if c.Hub.onAction == nil {
				c.reply(MessageError, map[string]string{"error": "actions are not accepted on this socket"})
				continue
			}
			// The resulting board is broadcast by the store subscription.
			if err := c.Hub.onAction(wsMessage.Data); err != nil {
				c.reply(MessageError, map[string]string{"error": err.Error()})
			}
		default:
			log.WithField("type", wsMessage.Type).Debug("ignoring WebSocket message")
		}
	}
}

func (c *Client) reply(msgType string, data any) {
	c.Hub.Send(c, msgType, data)
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// envelope is one queued message; a nil client means every client.
type envelope struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts board updates to
// them
type Hub struct {
	clients    map[*Client]bool
	outbox     chan envelope
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
	onAction   ActionFunc
}

// NewHub creates a new hub instance. onAction may be nil, in which case
// clients can only listen.
func NewHub(onAction ActionFunc) *Hub {
	return &Hub{
		outbox:     make(chan envelope, 32),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		onAction:   onAction,
	}
}

// Register adds a client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
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

// Broadcast sends a message to every connected client
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := encodeMessage(msgType, data)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}
	select {
	case h.outbox <- envelope{payload: payload}:
	case <-h.done:
	}
}

// Send delivers a message to one client. The hub owns client.Send, so this
// is the only safe way to write to it from outside Run. Messages queued by
// Send and Broadcast reach a client in the order they were queued.
func (h *Hub) Send(client *Client, msgType string, data any) {
	payload, err := encodeMessage(msgType, data)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}
	select {
	case h.outbox <- envelope{client: client, payload: payload}:
	case <-h.done:
	}
}

// Follow broadcasts the board after every action applied to store and
// returns a function that stops following.
func (h *Hub) Follow(store *board.Store) func() {
	return store.Subscribe(func(ev board.Event) {
		h.Broadcast(MessageBoard, ev.Views)
	})
}

// Run starts the hub's main loop and returns when ctx is done. It must be
// called once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			log.WithField("clients", len(h.clients)).Info("WebSocket client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.WithField("clients", len(h.clients)).Info("WebSocket client disconnected")
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case m := <-h.outbox:
			if m.client != nil {
				if h.clients[m.client] {
					select {
					case m.client.Send <- m.payload:
					default:
						log.Warn("WebSocket client send buffer full, dropping reply")
					}
				}
				continue
			}
			for client := range h.clients {
				select {
				case client.Send <- m.payload:
					// Message sent successfully
				default:
					// Client's send buffer is full, assume disconnected
					log.Warn("Client send buffer full, removing client")
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func encodeMessage(msgType string, data any) ([]byte, error) {
	raw, err := sonic.ConfigStd.Marshal(data)
	if err != nil {
		return nil, err
	}
	return sonic.ConfigStd.Marshal(WebSocketMessage{Type: msgType, Data: raw})
}
