package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait = 10 * time.Second
	// Client pings are expected at least this often; otherwise the read
	// pump unblocks and the connection is torn down.
	pongWait = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The endpoint sits behind the same token auth as the REST routes, so
	// any origin may open a socket once authenticated.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the wire shape of a pushed event.
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// wsConn adapts a websocket to the Conn interface. gorilla allows only one
// concurrent writer, so Send serializes through a mutex.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) Send(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(envelope{Type: event, Payload: payload})
}

// WSHandler upgrades an authenticated request to a websocket session and
// keeps it registered until the peer disconnects.
type WSHandler struct {
	registry *Registry
}

func NewWSHandler(registry *Registry) *WSHandler {
	return &WSHandler{registry: registry}
}

func (h *WSHandler) Serve(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	conn := &wsConn{ws: ws}
	h.registry.Register(uid, conn)
	defer func() {
		h.registry.Unregister(uid, conn)
		_ = ws.Close()
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	ws.SetPingHandler(func(data string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	// Read pump: clients do not send application data over this socket;
	// reading only detects close/crash so the registry entry can be dropped.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return nil
		}
	}
}
