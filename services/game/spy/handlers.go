package spy

import (
	"sort"

	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
	"Wordspy/services/game/core"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

type handlerFunc func(r *Room, conn core.Conn, msg messages.Inbound)

var handlers = map[string]handlerFunc{
	messages.JoinRoom:              (*Room).handleJoin,
	messages.Ready:                 (*Room).handleReady,
	messages.NotReady:              (*Room).handleNotReady,
	messages.Vote:                  (*Room).handleVote,
	messages.SendChat:              (*Room).handleChat,
	messages.LeaveRoom:             (*Room).handleLeave,
	messages.SkipSpeakingStatement: (*Room).handleSkip,
}

// Handles lists the message types a spy room has handlers for.
func Handles() []string {
	out := make([]string, 0, len(handlers))
	for t := range handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Room) handleJoin(conn core.Conn, msg messages.Inbound) {
	userID := msg.UserID
	if userID == "" {
		core.Reject(conn, "missing_user", "userId is required to join a room")
		return
	}

	if r.isMember(userID) {
		r.participants[userID] = conn
		core.Deliver(conn, "player_already_in_room", gin.H{
			"roomState":  r.publicState(),
			"playerList": r.players(),
			"gameMode":   Mode,
		})
		logger.Infof("[SPY-JOIN] %s rejoined room %s", userID, r.id)
		return
	}

	if len(r.playerList) >= game_constants.SpyMaxPlayers {
		core.Deliver(conn, "room_full", gin.H{"roomId": r.id})
		return
	}

	r.playerList = append(r.playerList, userID)
	r.participants[userID] = conn
	r.ready[userID] = false

	core.Deliver(conn, "room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
	r.broadcast("playerList", gin.H{"playerList": r.players()})
	logger.Infof("[SPY-JOIN] %s joined room %s (%d/%d)", userID, r.id, len(r.playerList), game_constants.SpyMaxPlayers)
}

func (r *Room) handleReady(conn core.Conn, msg messages.Inbound) {
	r.setReady(conn, msg.UserID, true)
}

func (r *Room) handleNotReady(conn core.Conn, msg messages.Inbound) {
	r.setReady(conn, msg.UserID, false)
}

func (r *Room) setReady(conn core.Conn, userID string, ready bool) {
	if !r.isMember(userID) {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	if r.inGame() {
		core.Reject(conn, "game_in_progress", "The game has already started")
		return
	}

	changed := r.ready[userID] != ready
	r.ready[userID] = ready
	core.Deliver(conn, "room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
	if !changed {
		return
	}
	r.broadcast("ready_status", gin.H{"userId": userID, "ready": ready})

	if ready && r.allReady() {
		r.startGame()
	}
}

func (r *Room) allReady() bool {
	if len(r.playerList) < game_constants.SpyMinPlayers {
		return false
	}
	for _, id := range r.playerList {
		if !r.ready[id] {
			return false
		}
	}
	return true
}

func (r *Room) handleVote(conn core.Conn, msg messages.Inbound) {
	if r.phase != PhaseVoting {
		core.Reject(conn, "voting_not_open", "Voting is not open")
		return
	}
	voter, target := msg.UserID, msg.VotedPlayer
	if !r.isAlive(target) {
		core.Reject(conn, "invalid_vote", "Cannot vote for a player who is not alive")
		return
	}
	if !r.isAlive(voter) {
		core.Reject(conn, "invalid_vote", "You cannot vote as you are not alive")
		return
	}

	for candidate, voters := range r.votes {
		if !voters[voter] {
			continue
		}
		if candidate == target {
			core.Deliver(conn, "room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
			return
		}
		delete(voters, voter)
		if len(voters) == 0 {
			delete(r.votes, candidate)
		}
	}

	if r.votes[target] == nil {
		r.votes[target] = make(map[string]bool)
	}
	r.votes[target][voter] = true
	logger.Debugf("[SPY-VOTE] %s voted %s in room %s", voter, target, r.id)
	r.broadcast("room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
}

func (r *Room) handleChat(conn core.Conn, msg messages.Inbound) {
	if !r.isMember(msg.UserID) {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	if msg.Chat == "" {
		return
	}
	r.chats = append(r.chats, ChatLine{UserID: msg.UserID, Chat: msg.Chat})
	r.broadcastExcept(msg.UserID, "chat", gin.H{"chat": msg.Chat, "userId": msg.UserID})
}

func (r *Room) handleSkip(conn core.Conn, msg messages.Inbound) {
	if r.phase != PhaseSpeaking || r.speaker >= len(r.alive) || r.alive[r.speaker] != msg.UserID {
		core.Reject(conn, "not_current_speaker", "Only the current speaker can skip")
		return
	}
	logger.Debugf("[SPY-SPEAK] %s skipped their statement in room %s", msg.UserID, r.id)
	r.timers.CancelAll()
	r.nextSpeaker()
}

func (r *Room) handleLeave(conn core.Conn, msg messages.Inbound) {
	if !r.isMember(msg.UserID) {
		core.Reject(conn, "not_in_room", "You are not a member of this room")
		return
	}
	r.leave(msg.UserID)
}

// leave removes a member and applies the game consequences of the departure.
func (r *Room) leave(userID string) {
	if !r.isMember(userID) {
		return
	}
	speaking := r.phase == PhaseSpeaking && r.speaker < len(r.alive) && r.alive[r.speaker] == userID

	r.playerList = without(r.playerList, userID)
	delete(r.participants, userID)
	delete(r.ready, userID)
	r.dropVotes(userID)
	logger.Infof("[SPY-LEAVE] %s left room %s", userID, r.id)

	if len(r.playerList) == 0 {
		r.close()
		return
	}

	if r.host == userID {
		r.host = r.playerList[0]
		r.broadcast("host_changed", gin.H{"host": r.host})
	}

	if !r.inGame() {
		r.broadcast("room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
		return
	}

	if userID == r.spy {
		r.endGame("civilians")
		return
	}
	r.broadcast("player_left", gin.H{"playerLeft": userID})
	if speaking {
		r.timers.CancelAll()
		r.nextSpeaker()
	}
}

// dropVotes erases userID both as a candidate and as a voter.
func (r *Room) dropVotes(userID string) {
	delete(r.votes, userID)
	for candidate, voters := range r.votes {
		delete(voters, userID)
		if len(voters) == 0 {
			delete(r.votes, candidate)
		}
	}
}

func (r *Room) close() {
	r.timers.CancelAll()
	r.resetGame()
	r.closed = true
	logger.Infof("[SPY-ROOM] Room %s is empty, closing", r.id)
}
