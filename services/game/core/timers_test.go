package core

import (
	"sync"
	"testing"
	"time"

	"Wordspy/utils/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimers() (*Timers, *clock.Fake, *sync.Mutex) {
	fake := clock.NewFake(time.Unix(0, 0))
	mu := &sync.Mutex{}
	return NewTimers(fake, "room-1", mu), fake, mu
}

func TestTimersFireOnce(t *testing.T) {
	timers, fake, mu := newTestTimers()
	fired := 0

	mu.Lock()
	timers.After("tick", "playing", time.Second, func() { fired++ })
	require.Equal(t, 1, timers.Pending())
	mu.Unlock()

	fake.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, timers.Pending())

	fake.Advance(5 * time.Second)
	assert.Equal(t, 1, fired)
}

func TestTimersCancelAllSkipsBodies(t *testing.T) {
	timers, fake, mu := newTestTimers()
	fired := 0

	mu.Lock()
	timers.After("a", "voting", time.Second, func() { fired++ })
	timers.After("b", "voting", 2*time.Second, func() { fired++ })
	timers.CancelAll()
	mu.Unlock()

	fake.Advance(3 * time.Second)
	assert.Zero(t, fired)
	assert.Zero(t, timers.Pending())
}

func TestTimersStaleEpochIsNoop(t *testing.T) {
	timers, _, mu := newTestTimers()
	fired := false

	mu.Lock()
	timers.After("late", "speaking", time.Second, func() { fired = true })
	rec := timers.live[1]
	// Simulate the clock having already dispatched the callback.
	timers.epoch++
	mu.Unlock()

	timers.fire(rec, func() { fired = true })
	assert.False(t, fired)
}

func TestTimersCancelSingle(t *testing.T) {
	timers, fake, mu := newTestTimers()
	var order []string

	mu.Lock()
	first := timers.After("first", "", time.Second, func() { order = append(order, "first") })
	timers.After("second", "", 2*time.Second, func() { order = append(order, "second") })
	timers.Cancel(first)
	timers.Cancel(999)
	mu.Unlock()

	fake.Advance(2 * time.Second)
	assert.Equal(t, []string{"second"}, order)
}

func TestTimersRecordsOrdered(t *testing.T) {
	timers, _, mu := newTestTimers()

	mu.Lock()
	defer mu.Unlock()
	timers.After("late", "p", 3*time.Second, func() {})
	timers.After("early", "p", time.Second, func() {})

	recs := timers.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "early", recs[0].Name)
	assert.Equal(t, "room-1", recs[0].RoomID)
	assert.Equal(t, "late", recs[1].Name)
}

func TestTimersRecoverPanickingBody(t *testing.T) {
	timers, fake, mu := newTestTimers()

	mu.Lock()
	timers.After("boom", "", time.Second, func() { panic("boom") })
	mu.Unlock()

	assert.NotPanics(t, func() { fake.Advance(time.Second) })
	assert.True(t, mu.TryLock())
	mu.Unlock()
}
