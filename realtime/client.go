// realtime/client.go
package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe-arena/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendBufferSize = 16
)

// wsClient pumps frames between one websocket and a match.
type wsClient struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newWSClient(conn *websocket.Conn, userID string) *wsClient {
	return &wsClient{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send queues a frame without blocking. It reports false when the buffer is
// full or the client is closed.
func (c *wsClient) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *wsClient) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("[SOCKET] ⚠️ Write to %s failed: %v", c.userID, err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// readPump decodes inbound envelopes until the socket fails. Frames that do
// not decode are logged and skipped.
func (c *wsClient) readPump(onMessage func(models.Envelope)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[SOCKET] ⚠️ Read from %s failed: %v", c.userID, err)
			}
			return
		}
		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("[SOCKET] ⚠️ Malformed frame from %s: %v", c.userID, err)
			continue
		}
		onMessage(env)
	}
}
