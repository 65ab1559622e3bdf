// Package gateway is the dispatch layer between the transports and the game
// services. It binds identities, rate limits each connection and routes every
// inbound envelope to the relay, the social store or the room directory.
package gateway

import (
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/services/registry"
	"Wordspy/services/relay"
	"Wordspy/services/social"
	"Wordspy/utils/logger"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	EventFriendRequest         = "friend_request"
	EventFriendRequestSent     = "friend_request_sent"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventRoomInvite            = "room_invite"
)

// Rooms is the part of the room directory the gateway drives.
type Rooms interface {
	Route(conn core.Conn, msg messages.Inbound)
	Disconnect(conn core.Conn)
	Info(roomID string) (core.Summary, bool)
}

type Options struct {
	Registry *registry.Registry
	Rooms    Rooms
	Relay    *relay.Relay
	// Social may be nil when no database is configured.
	Social social.Store

	MessageRate  float64
	MessageBurst int
}

type handler func(g *Gateway, conn core.Conn, identity string, msg messages.Inbound)

var relayHandlers = map[string]handler{
	messages.DirectMessage:       (*Gateway).directMessage,
	messages.SendFriendRequest:   (*Gateway).sendFriendRequest,
	messages.AcceptFriendRequest: (*Gateway).acceptFriendRequest,
	messages.InviteToRoom:        (*Gateway).inviteToRoom,
}

type Gateway struct {
	registry *registry.Registry
	rooms    Rooms
	relay    *relay.Relay
	social   social.Store

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(opts Options) *Gateway {
	if opts.MessageRate <= 0 {
		opts.MessageRate = 20
	}
	if opts.MessageBurst < 1 {
		opts.MessageBurst = 40
	}
	g := &Gateway{
		registry: opts.Registry,
		rooms:    opts.Rooms,
		relay:    opts.Relay,
		social:   opts.Social,
		limit:    rate.Limit(opts.MessageRate),
		burst:    opts.MessageBurst,
		limiters: make(map[string]*rate.Limiter),
	}
	g.registry.SetOnBind(g.onBind)
	return g
}

// Connect binds an identity announced by the transport handshake.
func (g *Gateway) Connect(conn core.Conn, identity string) {
	if identity == "" {
		return
	}
	g.registry.Bind(identity, conn)
}

// Handle processes one inbound envelope from conn.
func (g *Gateway) Handle(conn core.Conn, msg messages.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			logger.Criticalf("[GATEWAY-PANIC] Recovered while handling %s from %s: %v", msg.Type, conn.ID(), r)
			core.Reject(conn, "internal_error", "Internal server error")
		}
	}()

	if !g.allow(conn) {
		logger.Debugf("[GATEWAY] Rate limited %s on %s", msg.Type, conn.ID())
		core.Deliver(conn, messages.EventRateLimited, gin.H{"type": msg.Type})
		return
	}

	identity, bound := g.registry.IdentityOf(conn)
	if !bound && msg.UserID != "" {
		g.registry.Bind(msg.UserID, conn)
		identity = msg.UserID
	}
	// the bound identity wins over whatever the envelope claims
	if identity != "" {
		msg.UserID = identity
		if msg.Payload != nil {
			msg.Payload["userId"] = identity
		}
	}

	if h, ok := relayHandlers[msg.Type]; ok {
		if identity == "" {
			core.Reject(conn, "missing_user", "userId is required")
			return
		}
		h(g, conn, identity, msg)
		return
	}
	g.rooms.Route(conn, msg)
}

// Disconnect routes a closed connection through every room it sat in and
// releases its identity.
func (g *Gateway) Disconnect(conn core.Conn) {
	g.rooms.Disconnect(conn)
	g.registry.Unbind(conn)

	g.mu.Lock()
	delete(g.limiters, conn.ID())
	g.mu.Unlock()
}

func (g *Gateway) allow(conn core.Conn) bool {
	g.mu.Lock()
	limiter, ok := g.limiters[conn.ID()]
	if !ok {
		limiter = rate.NewLimiter(g.limit, g.burst)
		g.limiters[conn.ID()] = limiter
	}
	g.mu.Unlock()
	return limiter.Allow()
}

func (g *Gateway) onBind(identity string, conn core.Conn) {
	if g.relay != nil {
		g.relay.Flush(identity, conn)
	}
	if g.social != nil {
		if _, err := g.social.EnsureProfile(identity, ""); err != nil {
			logger.Warningf("[SOCIAL] Error ensuring profile of %s: %v", identity, err)
		}
	}
}

func (g *Gateway) directMessage(conn core.Conn, identity string, msg messages.Inbound) {
	if g.relay == nil {
		core.Reject(conn, "relay_unavailable", "Direct messages are not available")
		return
	}
	g.relay.SendDirect(conn, identity, msg.To, msg.Message)
}

func (g *Gateway) sendFriendRequest(conn core.Conn, identity string, msg messages.Inbound) {
	if !g.socialReady(conn, msg) {
		return
	}
	if err := g.social.SendRequest(identity, msg.To); err != nil {
		g.socialError(conn, err)
		return
	}

	logger.Infof("[FRIENDS] %s sent a friend request to %s", identity, msg.To)
	g.registry.Send(msg.To, EventFriendRequest, gin.H{"from": identity})
	core.Deliver(conn, EventFriendRequestSent, gin.H{"to": msg.To})
}

// acceptFriendRequest accepts the request msg.To sent to identity.
func (g *Gateway) acceptFriendRequest(conn core.Conn, identity string, msg messages.Inbound) {
	if !g.socialReady(conn, msg) {
		return
	}
	if err := g.social.AcceptRequest(identity, msg.To); err != nil {
		g.socialError(conn, err)
		return
	}

	logger.Infof("[FRIENDS] %s and %s are now friends", identity, msg.To)
	g.registry.Send(msg.To, EventFriendRequestAccepted, gin.H{"userId": identity})
	core.Deliver(conn, EventFriendRequestAccepted, gin.H{"userId": msg.To})
}

func (g *Gateway) inviteToRoom(conn core.Conn, identity string, msg messages.Inbound) {
	if msg.To == "" || msg.RoomID == "" {
		core.Reject(conn, "invalid_invite", "Invites need a recipient and a room")
		return
	}
	summary, ok := g.rooms.Info(msg.RoomID)
	if !ok {
		core.Deliver(conn, messages.EventRoomNotFound, gin.H{"roomId": msg.RoomID})
		return
	}

	invite := gin.H{"from": identity, "roomId": summary.RoomID, "gameMode": summary.Mode}
	if !g.registry.Send(msg.To, EventRoomInvite, invite) {
		core.Reject(conn, "user_offline", msg.To+" is not connected")
		return
	}
	logger.Debugf("[INVITE] %s invited %s to %s", identity, msg.To, summary.RoomID)
}

func (g *Gateway) socialReady(conn core.Conn, msg messages.Inbound) bool {
	if g.social == nil {
		core.Reject(conn, "social_unavailable", "Friends are not available")
		return false
	}
	if msg.To == "" {
		core.Reject(conn, "missing_recipient", "to is required")
		return false
	}
	return true
}

func (g *Gateway) socialError(conn core.Conn, err error) {
	switch {
	case errors.Is(err, social.ErrSelf):
		core.Reject(conn, "invalid_friend_request", err.Error())
	case errors.Is(err, social.ErrAlreadyFriends):
		core.Reject(conn, "already_friends", err.Error())
	case errors.Is(err, social.ErrNoRequest):
		core.Reject(conn, "no_friend_request", err.Error())
	default:
		logger.Criticalf("[SOCIAL-ERROR] %v", err)
		core.Reject(conn, "internal_error", "Internal server error")
	}
}
