package skribble

import (
	"sort"
	"strings"

	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

type handlerFunc func(r *Room, conn core.Conn, msg messages.Inbound)

var handlers = map[string]handlerFunc{
	messages.JoinSkribbleRoom:     (*Room).handleJoin,
	messages.LeaveSkribbleRoom:    (*Room).handleLeave,
	messages.StartSkribbleGame:    (*Room).handleStart,
	messages.SkribbleGameSettings: (*Room).handleSettings,
	messages.SkribbleMessage:      (*Room).handleGuess,
	messages.SkribbleDraw:         (*Room).handleDraw,
	messages.SkribbleClearCanvas:  (*Room).handleDraw,
	messages.SkribbleUndo:         (*Room).handleDraw,
	messages.SkribbleRoundEnd:     (*Room).handleRoundEnd,
}

// Handles lists the message types a skribble room has handlers for.
func Handles() []string {
	out := make([]string, 0, len(handlers))
	for t := range handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Room) handleJoin(conn core.Conn, msg messages.Inbound) {
	if msg.UserID == "" {
		core.Reject(conn, "missing_user", "userId is required to join a room")
		return
	}

	if p := r.player(msg.UserID); p != nil {
		r.participants[p.UserID] = conn
		if msg.Username != "" {
			p.Name = msg.Username
		}
		if msg.Avatar != "" {
			p.Avatar = msg.Avatar
		}
		core.Deliver(conn, "ROOM_STATE", r.stateFor(p.UserID))
		if p.UserID == r.drawerID() && (r.phase == PhasePlaying || r.stage == StageStartTimer) {
			core.Deliver(conn, "WORD", gin.H{"word": r.word, "currentRoundNo": r.round, "currentUser": p.UserID})
		}
		logger.Infof("[SKRIBBLE-JOIN] %s rebound to room %s", p.UserID, r.id)
		return
	}

	if len(r.players) >= game_constants.SkribbleMaxPlayers {
		core.Deliver(conn, "ROOM_FULL", gin.H{"roomId": r.id})
		return
	}

	r.players = append(r.players, &Player{UserID: msg.UserID, Name: msg.Username, Avatar: msg.Avatar})
	r.participants[msg.UserID] = conn
	r.broadcast("PLAYERS", gin.H{"players": r.scoreCard(), "userId": msg.UserID})
	logger.Infof("[SKRIBBLE-JOIN] %s joined room %s (%d/%d)", msg.UserID, r.id, len(r.players), game_constants.SkribbleMaxPlayers)
}

// stateFor is the snapshot a rejoining member receives. The word itself is
// only ever sent to the drawer, separately.
func (r *Room) stateFor(userID string) gin.H {
	state := gin.H{
		"roomId":         r.id,
		"host":           r.host,
		"players":        r.scoreCard(),
		"gameSettings":   r.settings,
		"phase":          string(r.phase),
		"currentRoundNo": r.round,
		"userId":         userID,
	}
	if r.inGame() {
		state["currentUser"] = r.drawerID()
		state["drawerName"] = r.drawerName()
		state["wordLength"] = len(r.word)
		state["time"] = r.elapsed
		state["revealed"] = r.hints()
	}
	return state
}

func (r *Room) handleLeave(conn core.Conn, msg messages.Inbound) {
	if r.indexOf(msg.UserID) < 0 {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	r.leave(msg.UserID)
}

func (r *Room) handleSettings(conn core.Conn, msg messages.Inbound) {
	if msg.UserID != r.host {
		core.Reject(conn, "not_host", "Only the host can change the game settings")
		return
	}
	if r.phase != PhaseWaiting {
		core.Reject(conn, "game_in_progress", "Settings cannot change during a game")
		return
	}
	next := r.settings.Merge(msg.GameSettings)
	if err := next.Validate(); err != nil {
		core.Reject(conn, "invalid_settings", err.Error())
		return
	}
	r.settings = next
	r.broadcastExcept(r.host, "GAME_SETTINGS", gin.H{"gameSettings": r.settings})
}

func (r *Room) handleStart(conn core.Conn, msg messages.Inbound) {
	if msg.UserID != r.host {
		core.Reject(conn, "not_host", "Only the host can start the game")
		return
	}
	if r.phase != PhaseWaiting {
		core.Reject(conn, "game_in_progress", "The game has already started")
		return
	}
	if len(r.players) < game_constants.SkribbleMinPlayers {
		core.Reject(conn, "not_enough_players", "At least two players are needed to start")
		return
	}
	next := r.settings.Merge(msg.GameSettings)
	if err := next.Validate(); err != nil {
		core.Reject(conn, "invalid_settings", err.Error())
		return
	}
	r.settings = next
	r.startGame()
}

func (r *Room) handleGuess(conn core.Conn, msg messages.Inbound) {
	p := r.player(msg.UserID)
	if p == nil {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	text := strings.TrimSpace(msg.Message)
	if text == "" {
		return
	}

	exact := r.word != "" && strings.EqualFold(text, r.word)
	near := r.word != "" && isCloseGuess(text, r.word)
	if r.turnActive() && (p.UserID == r.drawerID() || p.WordGuessed) {
		if exact || near {
			core.Deliver(conn, "CANNOT_GUESS", gin.H{"message": "You cannot guess the word"})
			return
		}
		r.chatLine(p, text)
		return
	}

	if r.phase != PhasePlaying {
		r.chatLine(p, text)
		return
	}

	switch {
	case exact:
		points := pointsFor(r.elapsed, r.settings.TimeSlot)
		p.Score += points
		p.WordGuessed = true
		r.roundScores[p.UserID] = points
		logger.Debugf("[SKRIBBLE-GUESS] %s guessed in room %s at %ds for %d", p.UserID, r.id, r.elapsed, points)
		r.broadcast("WORD_MATCHED", gin.H{
			"userId":  p.UserID,
			"message": p.Name + " guessed the word",
			"points":  points,
			"players": r.scoreCard(),
		})
		if r.allGuessed() {
			r.endTurn(true)
		}
	case near:
		r.broadcast("MESSAGE", gin.H{"userId": p.UserID, "message": p.Name + " : Close guess", "close": true})
	default:
		r.chatLine(p, text)
	}
}

func (r *Room) chatLine(p *Player, text string) {
	r.broadcast("MESSAGE", gin.H{"userId": p.UserID, "message": p.Name + " : " + text, "close": false})
}

// isCloseGuess reports a guess that is the word minus its last character.
func isCloseGuess(guess, word string) bool {
	g, w := strings.ToLower(guess), strings.ToLower(word)
	return len(g) > 0 && len(g) == len(w)-1 && strings.HasPrefix(w, g)
}

func (r *Room) allGuessed() bool {
	drawer := r.drawerID()
	for _, p := range r.players {
		if p.UserID != drawer && !p.WordGuessed {
			return false
		}
	}
	return true
}

// handleDraw relays canvas events verbatim to every other member.
func (r *Room) handleDraw(conn core.Conn, msg messages.Inbound) {
	if r.indexOf(msg.UserID) < 0 {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	if r.turnActive() && msg.UserID != r.drawerID() {
		core.Deliver(conn, "NOT_YOUR_TURN", gin.H{"currentUser": r.drawerID()})
		return
	}
	payload := make(gin.H, len(msg.Payload))
	for k, v := range msg.Payload {
		payload[k] = v
	}
	r.broadcastExcept(msg.UserID, msg.Type, payload)
}

func (r *Room) handleRoundEnd(conn core.Conn, msg messages.Inbound) {
	if msg.UserID != r.host && msg.UserID != r.drawerID() {
		core.Reject(conn, "not_allowed", "Only the host or the drawer can end the turn")
		return
	}
	if r.phase != PhasePlaying {
		core.Reject(conn, "no_active_turn", "There is no turn to end")
		return
	}
	logger.Infof("[SKRIBBLE-ROUND] %s ended the turn in room %s", msg.UserID, r.id)
	r.endTurn(true)
}

func (r *Room) leave(userID string) {
	idx := r.indexOf(userID)
	if idx < 0 {
		return
	}
	wasDrawer := r.inGame() && idx == r.drawer

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.participants, userID)
	delete(r.roundScores, userID)
	logger.Infof("[SKRIBBLE-LEAVE] %s left room %s", userID, r.id)

	if len(r.players) == 0 {
		r.close()
		return
	}

	if r.host == userID {
		r.host = r.players[0].UserID
		r.broadcast("HOST_CHANGED", gin.H{"host": r.host})
	}
	r.broadcast("PLAYERS", gin.H{"players": r.scoreCard(), "userId": userID})

	if !r.inGame() {
		return
	}
	if len(r.players) < game_constants.SkribbleMinPlayers {
		logger.Infof("[SKRIBBLE-END] Room %s dropped below %d players", r.id, game_constants.SkribbleMinPlayers)
		r.endGame()
		return
	}

	switch {
	case idx < r.drawer:
		r.drawer--
	case wasDrawer:
		// The next member slid into the drawer slot; advance must not skip them.
		r.drawerLeft = true
		if r.turnActive() {
			r.endTurn(false)
		}
	case r.phase == PhasePlaying && r.allGuessed():
		r.endTurn(true)
	}
}

func (r *Room) close() {
	r.timers.CancelAll()
	r.resetTurn()
	r.phase = PhaseWaiting
	r.closed = true
	logger.Infof("[SKRIBBLE-ROOM] Room %s is empty, closing", r.id)
}
