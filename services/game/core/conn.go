package core

import (
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

// Conn is the transport-agnostic handle a room uses to reach one member.
// Implementations must not block in Send.
type Conn interface {
	ID() string
	Send(event string, payload gin.H) error
	Alive() bool
	Close()
}

// Deliver sends to conn when it is still connected. Delivery failures are
// logged and dropped so a broadcast never aborts half way.
func Deliver(conn Conn, event string, payload gin.H) bool {
	if conn == nil || !conn.Alive() {
		return false
	}
	if err := conn.Send(event, payload); err != nil {
		logger.Warningf("[SEND-ERROR] %s to %s: %v", event, conn.ID(), err)
		return false
	}
	return true
}

// Reject answers the single offending sender with a typed error.
func Reject(conn Conn, code, message string) {
	Deliver(conn, "error", gin.H{"error": message, "code": code})
}
