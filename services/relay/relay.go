// Package relay delivers direct chat between identities, holding messages in
// a per-recipient Redis queue while the recipient is offline.
package relay

import (
	game_constants "Wordspy/constants/game"
	redis_models "Wordspy/models/redis"
	"Wordspy/services/game/core"
	"Wordspy/utils/clock"
	"Wordspy/utils/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	EventDirectMessage = "direct_message"
	EventMessageStatus = "direct_message_status"
)

// Queue is the durable store keyed by recipient identity.
type Queue interface {
	PushOfflineMessage(userID string, msg redis_models.ChatMessage) error
	GetOfflineMessages(userID string) ([]redis_models.ChatMessage, error)
	TrimOfflineMessages(userID string, count int) error
	ExpireOfflineMessages(userID string, ttl time.Duration) error
}

// Sender reaches an identity's live connection, if any.
type Sender interface {
	Send(identity, event string, payload gin.H) bool
}

type Relay struct {
	queue  Queue
	online Sender
	clock  clock.Clock
	ttl    time.Duration
}

func New(queue Queue, online Sender, clk clock.Clock) *Relay {
	if clk == nil {
		clk = clock.Real()
	}
	return &Relay{
		queue:  queue,
		online: online,
		clock:  clk,
		ttl:    game_constants.OfflineMessageTTL,
	}
}

// SendDirect delivers message from one identity to another. The sender gets a
// status telling whether it was delivered live or queued.
func (r *Relay) SendDirect(conn core.Conn, from, to, message string) {
	if to == "" || message == "" {
		core.Reject(conn, "invalid_message", "Direct messages need a recipient and a text")
		return
	}

	msg := redis_models.ChatMessage{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Message:   message,
		Timestamp: r.clock.Now().UTC(),
	}

	delivered := r.online.Send(to, EventDirectMessage, payloadOf(msg, false))
	queued := false
	if !delivered {
		queued = r.store(msg)
	}

	core.Deliver(conn, EventMessageStatus, gin.H{
		"id":        msg.ID,
		"to":        to,
		"delivered": delivered,
		"queued":    queued,
	})
}

func (r *Relay) store(msg redis_models.ChatMessage) bool {
	if r.queue == nil {
		return false
	}
	if err := r.queue.PushOfflineMessage(msg.To, msg); err != nil {
		logger.Warningf("[RELAY] Error queueing message for %s: %v", msg.To, err)
		return false
	}
	if err := r.queue.ExpireOfflineMessages(msg.To, r.ttl); err != nil {
		logger.Warningf("[RELAY] Error setting expiry on queue of %s: %v", msg.To, err)
	}
	logger.Debugf("[RELAY] Queued message %s for offline user %s", msg.ID, msg.To)
	return true
}

// Flush hands every queued message to identity's new connection. The delivered
// messages leave the queue only once all of them went through; anything pushed
// while flushing stays for the next bind.
func (r *Relay) Flush(identity string, conn core.Conn) {
	if r.queue == nil {
		return
	}
	pending, err := r.queue.GetOfflineMessages(identity)
	if err != nil {
		logger.Warningf("[RELAY] Error reading queue of %s: %v", identity, err)
		return
	}
	if len(pending) == 0 {
		return
	}

	for _, msg := range pending {
		if !core.Deliver(conn, EventDirectMessage, payloadOf(msg, true)) {
			logger.Warningf("[RELAY] Flush to %s interrupted, keeping queue", identity)
			return
		}
	}
	if err := r.queue.TrimOfflineMessages(identity, len(pending)); err != nil {
		logger.Warningf("[RELAY] Error clearing queue of %s: %v", identity, err)
		return
	}
	logger.Infof("[RELAY] Delivered %d queued messages to %s", len(pending), identity)
}

func payloadOf(msg redis_models.ChatMessage, offline bool) gin.H {
	return gin.H{
		"id":        msg.ID,
		"from":      msg.From,
		"message":   msg.Message,
		"timestamp": msg.Timestamp.UnixMilli(),
		"offline":   offline,
	}
}
