package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames.
	maxMessageSize = 512

	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

// Hub fans game events out to the websocket clients watching each game.
type Hub struct {
	logger *slog.Logger

	mu    sync.Mutex
	games map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "websocket-hub"),
		games:  make(map[string]map[*client]struct{}),
	}
}

// ServeWS upgrades the request and subscribes the connection to gameID.
func (that *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("websocket upgrade failed", "game_id", gameID, "error", err)
		return
	}

	c := &client{
		hub:    that,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		gameID: gameID,
	}

	that.register(c)

	go c.writePump()
	go c.readPump()
}

// Publish sends event to every watcher of gameID. Watchers whose buffer is full are dropped.
func (that *Hub) Publish(gameID string, event entity.GameEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		that.logger.Error("failed to marshal event", "game_id", gameID, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.games[gameID] {
		select {
		case c.send <- data:
		default:
			that.logger.Warn("dropping slow watcher", "game_id", gameID)
			that.removeLocked(c)
		}
	}
}

// Watchers returns the number of clients subscribed to gameID.
func (that *Hub) Watchers(gameID string) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.games[gameID])
}

// CloseGame disconnects every watcher of gameID.
func (that *Hub) CloseGame(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.games[gameID] {
		that.removeLocked(c)
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.games[c.gameID] == nil {
		that.games[c.gameID] = make(map[*client]struct{})
	}
	that.games[c.gameID][c] = struct{}{}

	that.logger.Debug("watcher registered", "game_id", c.gameID, "watchers", len(that.games[c.gameID]))
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(c)
}

// removeLocked - caller holds that.mu. Closing send makes the write pump hang up.
func (that *Hub) removeLocked(c *client) {
	clients, ok := that.games[c.gameID]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.games, c.gameID)
	}
}

// readPump - watchers never send data; reading keeps pongs flowing and notices disconnects.
func (that *client) readPump() {
	defer func() {
		that.hub.unregister(that)
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := that.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				that.hub.logger.Warn("websocket read failed", "game_id", that.gameID, "error", err)
			}

			return
		}
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
