package notify

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxInboundMessageSize = 512

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cookie auth happens before the upgrade; cross-origin policy is
	// enforced by the CORS middleware on the rest of the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection of one driver.
type Client struct {
	hub      *Hub
	driverID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
}

// Serve upgrades the request and starts the read/write pumps. The caller
// must have authenticated the driver already.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, driverID uuid.UUID) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:      h,
		driverID: driverID,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBufferSize),
	}
	h.register(client)

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump discards inbound frames; the channel is push-only. It exists to
// process pongs and to notice the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	pongWait := c.hub.cfg.PongWait
	c.conn.SetReadLimit(maxInboundMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("driver websocket read failed", "driver_id", c.driverID, "error", err.Error())
			}
			return
		}
	}
}

func (c *Client) writePump() {
	writeWait := c.hub.cfg.WriteWait
	pingPeriod := c.hub.cfg.PongWait * 9 / 10

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
