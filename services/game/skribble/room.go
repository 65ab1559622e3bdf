// Package skribble runs a single draw-and-guess room.
package skribble

import (
	"errors"
	"math/rand"
	"sync"

	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/clock"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

const Mode = "skribble"

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseStarting   Phase = "starting"
	PhasePlaying    Phase = "playing"
	PhaseTransition Phase = "transition"
	PhaseGameEnd    Phase = "game_end"
)

// Stage is a step of the staged turn opening while in PhaseStarting.
type Stage string

const (
	StageNone          Stage = ""
	StageAnnounceRound Stage = "announce_round"
	StageRevealWord    Stage = "reveal_word"
	StageStartTimer    Stage = "start_timer"
)

var (
	ErrRoomFull   = errors.New("room is full")
	ErrRoomClosed = errors.New("room is closed")
)

type Player struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	WordGuessed bool   `json:"wordGuessed"`
	Avatar      string `json:"avatar"`
}

type Options struct {
	Clock   clock.Clock
	Pick    func(n int) int
	OnEmpty func(roomID string)
}

type Room struct {
	mu sync.Mutex

	id           string
	host         string
	participants map[string]core.Conn
	players      []*Player
	settings     Settings
	phase        Phase
	stage        Stage
	closed       bool

	round       int
	drawer      int
	drawerLeft  bool
	word        string
	revealed    map[int]bool
	roundScores map[string]int
	elapsed     int

	timers  *core.Timers
	pick    func(n int) int
	onEmpty func(roomID string)
}

// New creates a room with the creator as host and sole member.
func New(roomID string, host Player, conn core.Conn, opts Options) *Room {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Pick == nil {
		opts.Pick = rand.Intn
	}
	host.Score = 0
	host.WordGuessed = false
	r := &Room{
		id:           roomID,
		host:         host.UserID,
		participants: map[string]core.Conn{host.UserID: conn},
		players:      []*Player{&host},
		settings:     DefaultSettings(),
		phase:        PhaseWaiting,
		revealed:     make(map[int]bool),
		roundScores:  make(map[string]int),
		pick:         opts.Pick,
		onEmpty:      opts.OnEmpty,
	}
	r.timers = core.NewTimers(opts.Clock, roomID, &r.mu)

	core.Deliver(conn, "ROOM_CREATED", gin.H{"roomId": roomID, "userId": host.UserID, "gameMode": Mode})
	core.Deliver(conn, "PLAYERS", gin.H{"players": r.scoreCard(), "userId": host.UserID})
	logger.Infof("[SKRIBBLE-ROOM] Room %s created by %s", roomID, host.UserID)
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) HandleMessage(conn core.Conn, msg messages.Inbound) {
	h, ok := handlers[msg.Type]
	if !ok {
		core.Reject(conn, "unknown_type", "Unknown message type for a skribble room: "+msg.Type)
		return
	}

	open, emptied := r.dispatch(h, conn, msg)
	if !open {
		core.Deliver(conn, "ROOM_NOT_FOUND", gin.H{"roomId": r.id})
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

// HandleDisconnect routes a dropped connection through leave. Seats still
// waiting for their first connection are never matched.
func (r *Room) HandleDisconnect(conn core.Conn) bool {
	if conn == nil {
		return false
	}
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
	logger.Infof("[SKRIBBLE-DISCONNECT] %s dropped from room %s", userID, r.id)
	r.leave(userID)
	emptied := r.closed
	r.mu.Unlock()

	if emptied && r.onEmpty != nil {
		r.onEmpty(r.id)
	}
	return true
}

// ReserveSeat adds a member without a connection yet. The member binds one
// later by sending JOIN_SKRIBBLE_ROOM with the same identity.
func (r *Room) ReserveSeat(userID, name, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.indexOf(userID) >= 0 {
		return nil
	}
	if len(r.players) >= game_constants.SkribbleMaxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, &Player{UserID: userID, Name: name, Avatar: avatar})
	r.participants[userID] = nil
	r.broadcast("PLAYERS", gin.H{"players": r.scoreCard(), "userId": userID})
	logger.Infof("[SKRIBBLE-SEAT] Reserved a seat for %s in room %s", userID, r.id)
	return nil
}

func (r *Room) Summary() core.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.UserID)
	}
	return core.Summary{
		RoomID:   r.id,
		Mode:     Mode,
		Host:     r.host,
		Players:  ids,
		Phase:    string(r.phase),
		Round:    r.round,
		Capacity: game_constants.SkribbleMaxPlayers,
	}
}

func (r *Room) Members() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) PendingTimers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timers.Pending()
}

func (r *Room) indexOf(userID string) int {
	for i, p := range r.players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Room) player(userID string) *Player {
	if i := r.indexOf(userID); i >= 0 {
		return r.players[i]
	}
	return nil
}

// turnActive is true while a drawer holds the canvas.
func (r *Room) turnActive() bool {
	return r.phase == PhaseStarting || r.phase == PhasePlaying
}

func (r *Room) inGame() bool {
	return r.turnActive() || r.phase == PhaseTransition
}

func (r *Room) currentDrawer() *Player {
	if r.drawer < 0 || r.drawer >= len(r.players) {
		return nil
	}
	return r.players[r.drawer]
}

func (r *Room) drawerID() string {
	if d := r.currentDrawer(); d != nil {
		return d.UserID
	}
	return ""
}

func (r *Room) drawerName() string {
	if d := r.currentDrawer(); d != nil {
		return d.Name
	}
	return ""
}

// scoreCard copies the member records so payloads never alias room state.
func (r *Room) scoreCard() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	return out
}

func (r *Room) hints() map[int]string {
	out := make(map[int]string, len(r.revealed))
	for i := range r.revealed {
		out[i] = string(r.word[i])
	}
	return out
}

func (r *Room) broadcast(event string, payload gin.H) {
	for _, p := range r.players {
		core.Deliver(r.participants[p.UserID], event, payload)
	}
}

func (r *Room) broadcastExcept(except, event string, payload gin.H) {
	for _, p := range r.players {
		if p.UserID != except {
			core.Deliver(r.participants[p.UserID], event, payload)
		}
	}
}

func (r *Room) sendTo(userID, event string, payload gin.H) {
	core.Deliver(r.participants[userID], event, payload)
}
