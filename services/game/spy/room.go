// Package spy runs a single room of the Spy social deduction game: one
// member holds a different secret word and the others vote to find them.
package spy

import (
	"math/rand"
	"sync"

	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/clock"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

const Mode = "spy"

type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseCountdown  Phase = "countdown"
	PhaseSpeaking   Phase = "speaking"
	PhaseVoting     Phase = "voting"
	PhaseResolution Phase = "resolution"
)

type Options struct {
	Clock clock.Clock
	// Pick returns a uniform index in [0, n).
	Pick func(n int) int
	// OnEmpty is called, without the room lock, once the last member left.
	OnEmpty func(roomID string)
}

type ChatLine struct {
	UserID string `json:"userId"`
	Chat   string `json:"chat"`
}

type Room struct {
	mu sync.Mutex

	id           string
	host         string
	participants map[string]core.Conn
	playerList   []string
	ready        map[string]bool
	phase        Phase
	closed       bool

	spy          string
	spyWord      string
	civilianWord string
	alive        []string
	votes        map[string]map[string]bool
	chats        []ChatLine
	round        int
	speaker      int

	timers  *core.Timers
	pick    func(n int) int
	onEmpty func(roomID string)
}

// New creates a room with the creator as host and sole member, and
// acknowledges the creation to the creator.
func New(roomID, hostID string, conn core.Conn, opts Options) *Room {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Pick == nil {
		opts.Pick = rand.Intn
	}
	r := &Room{
		id:           roomID,
		host:         hostID,
		participants: map[string]core.Conn{hostID: conn},
		playerList:   []string{hostID},
		ready:        map[string]bool{hostID: false},
		phase:        PhaseLobby,
		votes:        make(map[string]map[string]bool),
		pick:         opts.Pick,
		onEmpty:      opts.OnEmpty,
	}
	r.timers = core.NewTimers(opts.Clock, roomID, &r.mu)

	core.Deliver(conn, "room_created", gin.H{"roomId": roomID, "userId": hostID, "gameMode": Mode})
	core.Deliver(conn, "room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
	logger.Infof("[SPY-ROOM] Room %s created by %s", roomID, hostID)
	return r
}

func (r *Room) ID() string { return r.id }

// HandleMessage dispatches one inbound message through the handler table.
func (r *Room) HandleMessage(conn core.Conn, msg messages.Inbound) {
	h, ok := handlers[msg.Type]
	if !ok {
		core.Reject(conn, "unknown_type", "Unknown message type for a spy room: "+msg.Type)
		return
	}

	open, emptied := r.dispatch(h, conn, msg)
	if !open {
		core.Deliver(conn, messages.EventRoomNotFound, gin.H{"roomId": r.id})
		return
	}
	if emptied && r.onEmpty != nil {
		r.onEmpty(r.id)
	}
}

// dispatch runs h under the room lock. The lock is released even when h panics.
func (r *Room) dispatch(h handlerFunc, conn core.Conn, msg messages.Inbound) (open, emptied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, false
	}
	h(r, conn, msg)
	return true, r.closed
}

// HandleDisconnect treats a dropped connection as a leave of whichever
// identity it is bound to. It reports whether conn belonged to the room.
func (r *Room) HandleDisconnect(conn core.Conn) bool {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	userID := ""
	for id, c := range r.participants {
		if c == conn {
			userID = id
			break
		}
	}
	if userID == "" {
		r.mu.Unlock()
		return false
	}
	logger.Infof("[SPY-DISCONNECT] %s dropped from room %s", userID, r.id)
	r.leave(userID)
	emptied := r.closed
	r.mu.Unlock()

	if emptied && r.onEmpty != nil {
		r.onEmpty(r.id)
	}
	return true
}

func (r *Room) Summary() core.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return core.Summary{
		RoomID:   r.id,
		Mode:     Mode,
		Host:     r.host,
		Players:  r.players(),
		Phase:    string(r.phase),
		Round:    r.round,
		Capacity: game_constants.SpyMaxPlayers,
	}
}

// Members reports the current member count.
func (r *Room) Members() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.playerList)
}

// PendingTimers reports the outstanding scheduled events.
func (r *Room) PendingTimers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timers.Pending()
}

func (r *Room) inGame() bool {
	return r.phase != PhaseLobby
}

func (r *Room) isMember(userID string) bool {
	_, ok := r.ready[userID]
	return ok
}

func (r *Room) isAlive(userID string) bool {
	return indexOf(r.alive, userID) >= 0
}

func (r *Room) connected(userID string) bool {
	conn, ok := r.participants[userID]
	return ok && conn != nil && conn.Alive()
}

func (r *Room) players() []string {
	return append([]string{}, r.playerList...)
}

// publicState is the room view every member may see. The spy identity and
// both secret words are never part of it.
func (r *Room) publicState() gin.H {
	ready := make(map[string]bool, len(r.ready))
	for id, v := range r.ready {
		ready[id] = v
	}
	voting := make(map[string][]string, len(r.votes))
	for candidate, voters := range r.votes {
		list := make([]string, 0, len(voters))
		for _, id := range r.alive {
			if voters[id] {
				list = append(list, id)
			}
		}
		voting[candidate] = list
	}
	return gin.H{
		"roomId":       r.id,
		"host":         r.host,
		"phase":        string(r.phase),
		"gameStarted":  r.inGame(),
		"readyStatus":  ready,
		"alivePlayers": append([]string{}, r.alive...),
		"voting":       voting,
		"chats":        append([]ChatLine{}, r.chats...),
		"round":        r.round,
	}
}

func (r *Room) broadcast(event string, payload gin.H) {
	for _, id := range r.playerList {
		core.Deliver(r.participants[id], event, payload)
	}
}

func (r *Room) broadcastAlive(event string, payload gin.H) {
	for _, id := range r.alive {
		core.Deliver(r.participants[id], event, payload)
	}
}

func (r *Room) broadcastExcept(except, event string, payload gin.H) {
	for _, id := range r.playerList {
		if id != except {
			core.Deliver(r.participants[id], event, payload)
		}
	}
}

func (r *Room) sendTo(userID, event string, payload gin.H) {
	core.Deliver(r.participants[userID], event, payload)
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
