// Package registry maps user identities to their live connection and fans out
// presence transitions to every other connected identity.
package registry

import (
	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
	redis_models "Wordspy/models/redis"
	"Wordspy/services/game/core"
	"Wordspy/utils/clock"
	"Wordspy/utils/logger"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// PresenceStore persists presence snapshots. Failures are logged only.
type PresenceStore interface {
	SavePresence(presence *redis_models.PlayerPresence, ttl time.Duration) error
	GetPresence(userID string) (*redis_models.PlayerPresence, error)
}

type Options struct {
	Store PresenceStore
	Clock clock.Clock
	// OnBind runs after a connection becomes the live one for an identity,
	// outside the registry lock.
	OnBind func(identity string, conn core.Conn)
}

type Registry struct {
	mu     sync.RWMutex
	conns  map[string]core.Conn // identity -> live connection
	owners map[string]string    // connection id -> identity
	store  PresenceStore
	clock  clock.Clock
	onBind func(identity string, conn core.Conn)
}

func New(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Registry{
		conns:  make(map[string]core.Conn),
		owners: make(map[string]string),
		store:  opts.Store,
		clock:  opts.Clock,
		onBind: opts.OnBind,
	}
}

// SetOnBind replaces the bind hook. Used when the hook owner is built after the registry.
func (r *Registry) SetOnBind(fn func(identity string, conn core.Conn)) {
	r.mu.Lock()
	r.onBind = fn
	r.mu.Unlock()
}

// Bind makes conn the live connection of identity. Binding the same pair again
// is a no-op. A different previous connection is evicted and told so.
func (r *Registry) Bind(identity string, conn core.Conn) {
	if identity == "" || conn == nil {
		return
	}

	r.mu.Lock()
	current, exists := r.conns[identity]
	if exists && current.ID() == conn.ID() {
		r.mu.Unlock()
		return
	}
	if previous, owned := r.owners[conn.ID()]; owned && previous != identity {
		// the connection switched identity, the old one goes offline
		delete(r.conns, previous)
		defer r.announce(previous, redis_models.StatusOffline, "")
	}
	if exists {
		delete(r.owners, current.ID())
	}
	r.conns[identity] = conn
	r.owners[conn.ID()] = identity
	onBind := r.onBind
	r.mu.Unlock()

	if exists {
		logger.Infof("[REGISTRY] %s reconnected, replacing connection %s", identity, current.ID())
		core.Deliver(current, messages.EventSessionReplaced, gin.H{"userId": identity})
	} else {
		logger.Infof("[REGISTRY] %s connected on %s", identity, conn.ID())
	}

	r.announce(identity, redis_models.StatusOnline, conn.ID())
	if onBind != nil {
		onBind(identity, conn)
	}
}

// Unbind drops the mapping owned by conn. It returns the identity it belonged
// to, or "" when conn had been replaced or was never bound.
func (r *Registry) Unbind(conn core.Conn) string {
	if conn == nil {
		return ""
	}

	r.mu.Lock()
	identity, owned := r.owners[conn.ID()]
	if !owned {
		r.mu.Unlock()
		return ""
	}
	delete(r.owners, conn.ID())
	if current, ok := r.conns[identity]; ok && current.ID() == conn.ID() {
		delete(r.conns, identity)
	}
	r.mu.Unlock()

	logger.Infof("[REGISTRY] %s disconnected", identity)
	r.announce(identity, redis_models.StatusOffline, "")
	return identity
}

func (r *Registry) Lookup(identity string) (core.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[identity]
	if !ok || !conn.Alive() {
		return nil, false
	}
	return conn, true
}

// IdentityOf returns the identity currently bound to conn.
func (r *Registry) IdentityOf(conn core.Conn) (string, bool) {
	if conn == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.owners[conn.ID()]
	return identity, ok
}

// Send delivers a private event to identity when it is connected.
func (r *Registry) Send(identity, event string, payload gin.H) bool {
	conn, ok := r.Lookup(identity)
	if !ok {
		return false
	}
	return core.Deliver(conn, event, payload)
}

// Online lists the connected identities in sorted order.
func (r *Registry) Online() []string {
	r.mu.RLock()
	online := make([]string, 0, len(r.conns))
	for identity := range r.conns {
		online = append(online, identity)
	}
	r.mu.RUnlock()
	sort.Strings(online)
	return online
}

// Presence reports the status of identity. Connected identities are online;
// otherwise the persisted snapshot supplies the last seen time.
func (r *Registry) Presence(identity string) redis_models.PlayerPresence {
	if conn, ok := r.Lookup(identity); ok {
		return redis_models.PlayerPresence{
			UserID:   identity,
			Status:   redis_models.StatusOnline,
			LastSeen: r.clock.Now().Unix(),
			ConnID:   conn.ID(),
		}
	}
	offline := redis_models.PlayerPresence{UserID: identity, Status: redis_models.StatusOffline}
	if r.store == nil {
		return offline
	}
	stored, err := r.store.GetPresence(identity)
	if err != nil {
		logger.Warningf("[PRESENCE] Error reading presence of %s: %v", identity, err)
		return offline
	}
	if stored != nil {
		offline.LastSeen = stored.LastSeen
	}
	return offline
}

// announce tells every other connected identity about a status change and
// persists the snapshot.
func (r *Registry) announce(identity string, status redis_models.PlayerStatus, connID string) {
	r.mu.RLock()
	targets := make([]core.Conn, 0, len(r.conns))
	for other, conn := range r.conns {
		if other != identity {
			targets = append(targets, conn)
		}
	}
	r.mu.RUnlock()

	payload := gin.H{"userId": identity, "status": string(status)}
	for _, conn := range targets {
		core.Deliver(conn, messages.EventPresence, payload)
	}

	if r.store == nil {
		return
	}
	snapshot := &redis_models.PlayerPresence{
		UserID:   identity,
		Status:   status,
		LastSeen: r.clock.Now().Unix(),
		ConnID:   connID,
	}
	if err := r.store.SavePresence(snapshot, game_constants.PresenceTTL); err != nil {
		logger.Warningf("[PRESENCE] Error saving presence of %s: %v", identity, err)
	}
}
