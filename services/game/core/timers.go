package core

import (
	"sort"
	"sync"
	"time"

	"Wordspy/utils/clock"
	"Wordspy/utils/logger"
)

// Record is one scheduled event owned by a room.
type Record struct {
	ID     uint64
	RoomID string
	Name   string
	Phase  string
	Epoch  uint64
	FireAt time.Time

	timer clock.Timer
}

// Timers is the set of outstanding scheduled events of one room. Every
// method except fire expects the room lock to be held by the caller; fire
// takes it itself, so a body only runs while its record is still in the set
// and the epoch it was scheduled under is still current.
type Timers struct {
	clock  clock.Clock
	roomID string
	lock   sync.Locker

	seq   uint64
	epoch uint64
	live  map[uint64]*Record
}

func NewTimers(c clock.Clock, roomID string, lock sync.Locker) *Timers {
	return &Timers{
		clock:  c,
		roomID: roomID,
		lock:   lock,
		live:   make(map[uint64]*Record),
	}
}

// After schedules fn to run in d under the room lock.
func (t *Timers) After(name, phase string, d time.Duration, fn func()) uint64 {
	t.seq++
	rec := &Record{
		ID:     t.seq,
		RoomID: t.roomID,
		Name:   name,
		Phase:  phase,
		Epoch:  t.epoch,
		FireAt: t.clock.Now().Add(d),
	}
	t.live[rec.ID] = rec
	rec.timer = t.clock.AfterFunc(d, func() { t.fire(rec, fn) })
	return rec.ID
}

// Cancel drops a single record. Unknown ids are ignored.
func (t *Timers) Cancel(id uint64) {
	rec, ok := t.live[id]
	if !ok {
		return
	}
	rec.timer.Stop()
	delete(t.live, id)
}

// CancelAll drops every record and moves to a new epoch.
func (t *Timers) CancelAll() {
	for id, rec := range t.live {
		rec.timer.Stop()
		delete(t.live, id)
	}
	t.epoch++
}

func (t *Timers) Pending() int {
	return len(t.live)
}

// Records returns the outstanding records ordered by fire time.
func (t *Timers) Records() []Record {
	out := make([]Record, 0, len(t.live))
	for _, rec := range t.live {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

func (t *Timers) fire(rec *Record, fn func()) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if cur, ok := t.live[rec.ID]; !ok || cur != rec || rec.Epoch != t.epoch {
		logger.Debugf("[TIMER] Ignoring stale timeout %s for room %s", rec.Name, t.roomID)
		return
	}
	delete(t.live, rec.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.Criticalf("[TIMER-ERROR] %s in room %s panicked: %v", rec.Name, t.roomID, r)
		}
	}()
	fn()
}
