// Package websocket serves the raw JSON envelope protocol: every frame is an
// object with a "type" field, inbound and outbound.
package websocket

import (
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/logger"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = time.Minute
	pingInterval = 30 * time.Second
	maxFrameSize = 64 * 1024
	outboxSize   = 256
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrOutboxFull = errors.New("outbox full")
)

// Dispatcher receives the traffic of every connection.
type Dispatcher interface {
	Connect(conn core.Conn, identity string)
	Handle(conn core.Conn, msg messages.Inbound)
	Disconnect(conn core.Conn)
}

// Conn is one upgraded client. Sends are queued on a bounded outbox drained
// by the write pump.
type Conn struct {
	id     string
	socket *websocket.Conn
	outbox chan []byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newConn(socket *websocket.Conn) *Conn {
	return &Conn{
		id:     uuid.NewString(),
		socket: socket,
		outbox: make(chan []byte, outboxSize),
		done:   make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }

// Send frames payload as {"type": event, ...payload}. A full outbox drops the
// frame.
func (c *Conn) Send(event string, payload gin.H) error {
	frame := make(gin.H, len(payload)+1)
	for k, v := range payload {
		frame[k] = v
	}
	frame["type"] = event
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.outbox <- data:
		return nil
	default:
		return ErrOutboxFull
	}
}

func (c *Conn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.socket.SetWriteDeadline(time.Now().Add(writeWait))
		c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.socket.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debugf("[WS] Write to %s failed: %v", c.id, err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.drain()
			return
		}
	}
}

// drain flushes frames queued before Close, such as a final rejection.
func (c *Conn) drain() {
	for {
		select {
		case data := <-c.outbox:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) readPump(d Dispatcher) {
	defer func() {
		c.Close()
		d.Disconnect(c)
	}()

	c.socket.SetReadLimit(maxFrameSize)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warningf("[WS] Read from %s failed: %v", c.id, err)
			}
			return
		}
		c.socket.SetReadDeadline(time.Now().Add(pongWait))

		msg, err := messages.Decode(data)
		if err != nil {
			core.Reject(c, "invalid_envelope", err.Error())
			continue
		}
		d.Handle(c, msg)
	}
}

// Handler upgrades the request and serves the connection until it closes.
// The identity may be announced with the userId query parameter.
func Handler(d Dispatcher, origins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(origins),
	}

	return func(ctx *gin.Context) {
		socket, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			logger.Warningf("[WS] Upgrade failed from %s: %v", ctx.ClientIP(), err)
			return
		}

		conn := newConn(socket)
		logger.Infof("[WS] %s connected from %s", conn.id, ctx.ClientIP())
		go conn.writePump()
		d.Connect(conn, ctx.Query("userId"))
		conn.readPump(d)
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
