package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"hobbyhub/internal/middleware"
	"hobbyhub/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// SocketObserver is told when sockets open and close.
type SocketObserver interface {
	SocketOpened()
	SocketClosed()
}

// wsClient implements realtime.Client by wrapping a websocket connection.
// gorilla connections allow one concurrent writer, hence the mutex.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait))
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// mobile clients send no Origin; CORS is handled at the gin level
		return true
	},
}

// WebSocketHandler upgrades GET /api/ws and registers the socket with the hub.
// It requires JWTAuthMiddleware to have set the user ID.
func WebSocketHandler(hub *realtime.Hub, observer SocketObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)
		if userID == "" {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, "User not authorized")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &wsClient{conn: conn}
		hub.Register(userID, client)
		if observer != nil {
			observer.SocketOpened()
		}

		pingTicker := time.NewTicker(wsPingPeriod)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-pingTicker.C:
					if err := client.ping(); err != nil {
						// reader loop exits on the next read error
						return
					}
				}
			}
		}()
		defer func() {
			close(done)
			pingTicker.Stop()
			hub.Unregister(userID, client)
			client.Close()
			if observer != nil {
				observer.SocketClosed()
			}
		}()

		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
