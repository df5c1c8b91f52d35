package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"linkup/metrics"
	"linkup/middleware"
	"linkup/models"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client is one websocket connection of a user
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID int64
	hub    *Hub
}

// Hub maintains the set of active clients. A user may hold several
// connections; every one of them receives the user's pushes.
type Hub struct {
	clients    map[int64]map[*Client]struct{} // userID -> connections
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastPayload
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	log        *zap.Logger
}

// BroadcastPayload is a frame for every connection of UserID, or only for
// Client when it is set
type BroadcastPayload struct {
	UserID  int64
	Client  *Client
	Message []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastPayload, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes hub events until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			conns := h.clients[client.UserID]
			if conns == nil {
				conns = make(map[*Client]struct{})
				h.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			h.mutex.Unlock()
			metrics.DevserverClients.Inc()
			h.log.Info("ws_client_connected", zap.Int64("user_id", client.UserID))

		case client := <-h.unregister:
			if h.remove(client) {
				h.log.Info("ws_client_disconnected", zap.Int64("user_id", client.UserID))
			}

		case payload := <-h.broadcast:
			h.deliver(payload)

		case <-h.done:
			h.mutex.Lock()
			for _, conns := range h.clients {
				for c := range conns {
					close(c.Send)
					metrics.DevserverClients.Dec()
				}
			}
			h.clients = make(map[int64]map[*Client]struct{})
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) deliver(p BroadcastPayload) {
	var targets []*Client
	h.mutex.RLock()
	if p.Client != nil {
		if _, ok := h.clients[p.Client.UserID][p.Client]; ok {
			targets = append(targets, p.Client)
		}
	} else {
		for c := range h.clients[p.UserID] {
			targets = append(targets, c)
		}
	}
	h.mutex.RUnlock()

	for _, c := range targets {
		select {
		case c.Send <- p.Message:
		default:
			h.log.Warn("ws_client_slow", zap.Int64("user_id", c.UserID))
			h.remove(c)
		}
	}
}

// remove must only run on the hub goroutine
func (h *Hub) remove(c *Client) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, ok := h.clients[c.UserID]
	if !ok {
		return false
	}
	if _, ok := conns[c]; !ok {
		return false
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	metrics.DevserverClients.Dec()
	return true
}

// IsUserOnline checks if a user has at least one connection
func (h *Hub) IsUserOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID]) > 0
}

// SendToUser pushes v to every connection of a user
func (h *Hub) SendToUser(userID int64, v any) {
	h.enqueue(BroadcastPayload{UserID: userID}, v)
}

func (h *Hub) reply(c *Client, v any) {
	h.enqueue(BroadcastPayload{Client: c}, v)
}

func (h *Hub) enqueue(p BroadcastPayload, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("ws_marshal_failed", zap.Error(err))
		return
	}
	p.Message = data

	select {
	case h.broadcast <- p:
	case <-h.done:
	}
}

// HandleChatSocket upgrades /ws/chat/{username}/ for the authenticated
// user. The path must name the token's owner.
func (s *Server) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if mux.Vars(r)["username"] != user.Username {
		writeError(w, http.StatusForbidden, "Token does not belong to this user")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws_upgrade_failed", zap.Error(err))
		return
	}

	client := &Client{
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: user.ID,
		hub:    s.hub,
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump(s.log)
}

// readPump answers keep-alive probes. Clients send nothing else.
func (c *Client) readPump(log *zap.Logger) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("ws_read_failed", zap.Int64("user_id", c.UserID), zap.Error(err))
			}
			return
		}

		var frame models.ControlFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			c.hub.reply(c, models.ControlFrame{Type: "error", Message: "Invalid frame"})
			continue
		}

		switch frame.Type {
		case "ping":
			c.hub.reply(c, models.ControlFrame{Type: "pong"})
		default:
			c.hub.reply(c, models.ControlFrame{Type: "error", Message: "Unsupported frame type"})
		}
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
