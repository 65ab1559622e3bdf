// Package coretest provides a recording core.Conn for room tests.
package coretest

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
)

type Sent struct {
	Event   string
	Payload gin.H
}

type Conn struct {
	id string

	mu     sync.Mutex
	alive  bool
	closed bool
	sent   []Sent
}

func NewConn(id string) *Conn {
	return &Conn{id: id, alive: true}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Send(event string, payload gin.H) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return errors.New("connection closed")
	}
	c.sent = append(c.sent, Sent{Event: event, Payload: payload})
	return nil
}

func (c *Conn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
	c.closed = true
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) SetAlive(alive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = alive
}

func (c *Conn) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Events lists the event names received, in order.
func (c *Conn) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, s := range c.sent {
		out = append(out, s.Event)
	}
	return out
}

// Last returns the payload of the most recent event with that name.
func (c *Conn) Last(event string) (gin.H, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Event == event {
			return c.sent[i].Payload, true
		}
	}
	return nil, false
}

// All returns every payload received for an event name.
func (c *Conn) All(event string) []gin.H {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []gin.H
	for _, s := range c.sent {
		if s.Event == event {
			out = append(out, s.Payload)
		}
	}
	return out
}

func (c *Conn) Count(event string) int {
	return len(c.All(event))
}

func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
}
