package websocket

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Connection is the outbound side of one websocket client. It implements
// vss.Emitter: events are queued and written by a single writer goroutine,
// so Emit never blocks the session that produced them.
type Connection struct {
	ID          string
	UserID      string
	ConnectedAt time.Time

	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	sent      atomic.Int64
	slow      atomic.Bool
	logger    *Logger.Logger
}

var _ vss.Emitter = (*Connection)(nil)

func newConnection(id, userID string, conn *websocket.Conn, queue int, logger *Logger.Logger) *Connection {
	if queue <= 0 {
		queue = 64
	}
	c := &Connection{
		ID:          id,
		UserID:      userID,
		ConnectedAt: time.Now(),
		conn:        conn,
		send:        make(chan []byte, queue),
		done:        make(chan struct{}),
		logger:      logger,
	}
	go c.writePump()
	return c
}

// Emit queues e for delivery. A client that cannot keep up with its queue is
// disconnected rather than allowed to stall the session.
func (c *Connection) Emit(e vss.Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		c.logger.Errorf("connection %s: encode %s event: %v", c.ID, e.Type, err)
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- raw:
	default:
		c.slow.Store(true)
		c.logger.Warnf("connection %s: outbound queue full, dropping slow client", c.ID)
		c.Close()
	}
}

// Close stops the writer. Queued events are flushed before the close frame.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the connection starts shutting down.
func (c *Connection) Done() <-chan struct{} { return c.done }

func (c *Connection) Sent() int64 { return c.sent.Load() }

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Debugf("connection %s: write failed: %v", c.ID, err)
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			if !c.slow.Load() {
				c.flush()
			}
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Connection) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		return err
	}
	if messageType == websocket.TextMessage {
		c.sent.Add(1)
	}
	return nil
}
