// Package directory owns every live room, keyed by room id, and routes
// inbound messages to the room that owns them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"Wordspy/models/messages"
	"Wordspy/services/events"
	"Wordspy/services/game/core"
	"Wordspy/services/game/skribble"
	"Wordspy/services/game/spy"
	"Wordspy/utils/clock"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Kind string

const (
	KindSpy      Kind = spy.Mode
	KindSkribble Kind = skribble.Mode
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrWrongKind    = errors.New("room is of another game mode")
)

// Entry is one directory slot. Exactly the field matching Kind is set.
type Entry struct {
	Kind     Kind
	Spy      *spy.Room
	Skribble *skribble.Room
}

type room interface {
	HandleMessage(conn core.Conn, msg messages.Inbound)
	HandleDisconnect(conn core.Conn) bool
	Summary() core.Summary
}

func (e Entry) room() room {
	switch e.Kind {
	case KindSpy:
		return e.Spy
	case KindSkribble:
		return e.Skribble
	}
	panic(fmt.Sprintf("directory entry with unknown kind %q", e.Kind))
}

func (e Entry) same(other Entry) bool {
	return e.Kind == other.Kind && e.Spy == other.Spy && e.Skribble == other.Skribble
}

// routes maps every room-bound message type to the kind that handles it.
var routes = buildRoutes()

func buildRoutes() map[string]Kind {
	out := make(map[string]Kind)
	for _, t := range spy.Handles() {
		out[t] = KindSpy
	}
	for _, t := range skribble.Handles() {
		out[t] = KindSkribble
	}
	return out
}

// Validate checks that every type of the closed enumerations has exactly the
// handler of its own kind registered.
func Validate() error {
	for _, t := range messages.SpyTypes() {
		if routes[t] != KindSpy {
			return fmt.Errorf("spy message %s has no spy handler", t)
		}
	}
	for _, t := range messages.SkribbleTypes() {
		if routes[t] != KindSkribble {
			return fmt.Errorf("skribble message %s has no skribble handler", t)
		}
	}
	if want := len(messages.SpyTypes()) + len(messages.SkribbleTypes()); len(routes) != want {
		return fmt.Errorf("%d room handlers registered for %d known message types", len(routes), want)
	}
	return nil
}

type Options struct {
	Clock     clock.Clock
	Pick      func(n int) int
	Publisher events.Publisher
	NewID     func() string
}

type Directory struct {
	mu    sync.RWMutex
	rooms map[string]Entry

	clock     clock.Clock
	pick      func(n int) int
	publisher events.Publisher
	newID     func() string
}

func New(opts Options) *Directory {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop{}
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString()[:8] }
	}
	return &Directory{
		rooms:     make(map[string]Entry),
		clock:     opts.Clock,
		pick:      opts.Pick,
		publisher: opts.Publisher,
		newID:     opts.NewID,
	}
}

// Route hands an inbound message to the room it addresses, creating the room
// for create messages.
func (d *Directory) Route(conn core.Conn, msg messages.Inbound) {
	switch msg.Type {
	case messages.CreateRoom:
		d.create(conn, msg, KindSpy)
		return
	case messages.CreateSkribbleRoom:
		d.create(conn, msg, KindSkribble)
		return
	}

	kind, ok := routes[msg.Type]
	if !ok {
		core.Reject(conn, "unknown_type", "Unknown message type: "+msg.Type)
		return
	}
	entry, ok := d.lookup(msg.RoomID)
	if !ok || entry.Kind != kind {
		notFound(conn, kind, msg.RoomID)
		return
	}
	entry.room().HandleMessage(conn, msg)
}

func (d *Directory) create(conn core.Conn, msg messages.Inbound, kind Kind) {
	if msg.UserID == "" {
		core.Reject(conn, "missing_user", "userId is required to create a room")
		return
	}
	roomID := msg.RoomID
	if roomID == "" {
		roomID = d.newID()
	}

	d.mu.Lock()
	if _, exists := d.rooms[roomID]; exists {
		d.mu.Unlock()
		if kind == KindSpy {
			core.Deliver(conn, "room_exists", gin.H{"roomId": roomID})
		} else {
			core.Deliver(conn, "ROOM_EXISTS", gin.H{"roomId": roomID})
		}
		return
	}

	var entry Entry
	onEmpty := func(id string) { d.remove(id, entry) }
	switch kind {
	case KindSpy:
		entry = Entry{Kind: KindSpy, Spy: spy.New(roomID, msg.UserID, conn, spy.Options{
			Clock: d.clock, Pick: d.pick, OnEmpty: onEmpty,
		})}
	case KindSkribble:
		host := skribble.Player{UserID: msg.UserID, Name: msg.Username, Avatar: msg.Avatar}
		entry = Entry{Kind: KindSkribble, Skribble: skribble.New(roomID, host, conn, skribble.Options{
			Clock: d.clock, Pick: d.pick, OnEmpty: onEmpty,
		})}
	}
	d.rooms[roomID] = entry
	total := len(d.rooms)
	d.mu.Unlock()

	logger.Infof("[DIRECTORY] %s room %s created (%d live rooms)", kind, roomID, total)
	d.publish(events.RoomEvent{Type: events.RoomCreated, RoomID: roomID, Mode: string(kind), Host: msg.UserID})
}

// remove drops a room that reported itself empty, unless the id already
// belongs to a newer room.
func (d *Directory) remove(roomID string, entry Entry) {
	d.mu.Lock()
	current, ok := d.rooms[roomID]
	if !ok || !current.same(entry) {
		d.mu.Unlock()
		return
	}
	delete(d.rooms, roomID)
	total := len(d.rooms)
	d.mu.Unlock()

	logger.Infof("[DIRECTORY] %s room %s removed (%d live rooms)", entry.Kind, roomID, total)
	d.publish(events.RoomEvent{Type: events.RoomDestroyed, RoomID: roomID, Mode: string(entry.Kind)})
}

// Disconnect routes a dropped connection to every room. Rooms are visited
// outside the directory lock since an emptied room removes itself.
func (d *Directory) Disconnect(conn core.Conn) {
	for _, entry := range d.snapshot() {
		if entry.room().HandleDisconnect(conn) {
			logger.Debugf("[DIRECTORY] Disconnect of %s handled by a %s room", conn.ID(), entry.Kind)
		}
	}
}

// ReserveSeat adds a member to a skribble room ahead of their connection.
func (d *Directory) ReserveSeat(roomID, userID, name, avatar string) error {
	entry, ok := d.lookup(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	if entry.Kind != KindSkribble {
		return ErrWrongKind
	}
	if err := entry.Skribble.ReserveSeat(userID, name, avatar); err != nil {
		if errors.Is(err, skribble.ErrRoomClosed) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}

func (d *Directory) Info(roomID string) (core.Summary, bool) {
	entry, ok := d.lookup(roomID)
	if !ok {
		return core.Summary{}, false
	}
	return entry.room().Summary(), true
}

// List returns the summary of every live room ordered by id.
func (d *Directory) List() []core.Summary {
	entries := d.snapshot()
	out := make([]core.Summary, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.room().Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

func (d *Directory) Has(roomID string) bool {
	_, ok := d.lookup(roomID)
	return ok
}

func (d *Directory) lookup(roomID string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.rooms[roomID]
	return entry, ok
}

func (d *Directory) snapshot() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Entry, 0, len(d.rooms))
	for _, entry := range d.rooms {
		out = append(out, entry)
	}
	return out
}

func (d *Directory) publish(ev events.RoomEvent) {
	ev.At = d.clock.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.publisher.Publish(ctx, ev); err != nil {
		logger.Warningf("[DIRECTORY-ERROR] Failed to publish %s for room %s: %v", ev.Type, ev.RoomID, err)
	}
}

func notFound(conn core.Conn, kind Kind, roomID string) {
	if kind == KindSkribble {
		core.Deliver(conn, "ROOM_NOT_FOUND", gin.H{"roomId": roomID})
		return
	}
	core.Deliver(conn, messages.EventRoomNotFound, gin.H{"roomId": roomID})
}
