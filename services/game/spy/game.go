package spy

import (
	"time"

	game_constants "Wordspy/constants/game"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

// schedule runs fn after d unless the room has moved past the phase it was
// scheduled under by then.
func (r *Room) schedule(name string, d time.Duration, fn func()) {
	phase := r.phase
	r.timers.After(name, string(phase), d, func() {
		if r.closed || r.phase != phase {
			logger.Debugf("[SPY-TIMER] Ignoring stale timeout %s in room %s (%s != %s)", name, r.id, r.phase, phase)
			return
		}
		fn()
	})
}

func (r *Room) startGame() {
	r.timers.CancelAll()

	pair := game_constants.SpyWordPairs[r.pick(len(game_constants.SpyWordPairs))]
	r.spy = r.playerList[r.pick(len(r.playerList))]
	r.spyWord = pair.Spy
	r.civilianWord = pair.Civilian
	r.alive = r.players()
	r.votes = make(map[string]map[string]bool)
	r.round = 0
	r.phase = PhaseCountdown

	logger.Infof("[SPY-START] Room %s: game started with %d players", r.id, len(r.playerList))
	r.broadcast("gameStarted", gin.H{"gameStarted": true})
	r.countdown(game_constants.SpyCountdownFrom)
}

func (r *Room) countdown(count int) {
	r.broadcast("countdown", gin.H{"count": count})
	if count > 0 {
		r.schedule("countdown", game_constants.SpyCountdownTick, func() { r.countdown(count - 1) })
		return
	}
	r.revealWords()
}

func (r *Room) revealWords() {
	for _, id := range r.playerList {
		if id == r.spy {
			r.sendTo(id, "spy", gin.H{"word": r.spyWord})
		} else {
			r.sendTo(id, "civilianWord", gin.H{"word": r.civilianWord})
		}
	}
	r.round = 1
	r.broadcast("round_number", gin.H{"round": r.round})
	r.startSpeaking()
}

func (r *Room) startSpeaking() {
	r.timers.CancelAll()
	r.phase = PhaseSpeaking
	r.speaker = -1
	r.nextSpeaker()
}

// nextSpeaker hands the floor to the next connected alive member, or opens
// the vote once everybody has spoken.
func (r *Room) nextSpeaker() {
	for r.speaker++; r.speaker < len(r.alive); r.speaker++ {
		speaker := r.alive[r.speaker]
		if !r.connected(speaker) {
			logger.Debugf("[SPY-SPEAK] Skipping disconnected speaker %s in room %s", speaker, r.id)
			continue
		}
		r.broadcastAlive("speak_statement", gin.H{
			"currentSpeaker": speaker,
			"round":          r.round,
			"duration":       int(game_constants.SpySpeakingDuration / time.Second),
		})
		r.schedule("speaking", game_constants.SpySpeakingDuration, r.nextSpeaker)
		return
	}
	r.startVoting()
}

func (r *Room) startVoting() {
	r.timers.CancelAll()
	r.phase = PhaseVoting
	r.votes = make(map[string]map[string]bool)
	r.broadcastAlive("start_voting", gin.H{
		"round":    r.round,
		"duration": int(game_constants.SpyVotingDuration / time.Second),
	})
	r.schedule("voting", game_constants.SpyVotingDuration, r.resolveVoting)
}

// resolveVoting closes the ballot. A shared maximum or an empty ballot
// eliminates nobody.
func (r *Room) resolveVoting() {
	r.timers.CancelAll()
	r.phase = PhaseResolution
	r.pruneDisconnected()

	results := make(map[string]int, len(r.votes))
	maxVotes := 0
	var leaders []string
	for _, candidate := range r.alive {
		n := len(r.votes[candidate])
		if n == 0 {
			continue
		}
		results[candidate] = n
		switch {
		case n > maxVotes:
			maxVotes = n
			leaders = []string{candidate}
		case n == maxVotes:
			leaders = append(leaders, candidate)
		}
	}

	eliminated := ""
	if len(leaders) == 1 {
		eliminated = leaders[0]
		r.alive = without(r.alive, eliminated)
	}
	logger.Infof("[SPY-VOTE] Room %s round %d: results %v, eliminated %q", r.id, r.round, results, eliminated)

	r.broadcast("end_voting", gin.H{
		"votingResults": results,
		"maxVotes":      maxVotes,
		"eliminated":    eliminated,
	})
	r.schedule("result_display", game_constants.SpyResultDisplay, func() { r.afterResults(eliminated) })
}

func (r *Room) afterResults(eliminated string) {
	r.broadcast("alivePlayers", gin.H{"alivePlayers": append([]string{}, r.alive...)})

	switch {
	case eliminated != "" && eliminated == r.spy, !r.isAlive(r.spy):
		r.endGame("civilians")
	case len(r.alive) <= game_constants.SpyFinalists:
		r.endGame("spy")
	default:
		r.votes = make(map[string]map[string]bool)
		r.round++
		r.broadcast("round_number", gin.H{"round": r.round})
		r.schedule("next_round", game_constants.SpyNextRoundDelay, r.startSpeaking)
	}
}

// pruneDisconnected drops identities without a live connection from the
// alive set and from every ballot.
func (r *Room) pruneDisconnected() {
	alive := make([]string, 0, len(r.alive))
	for _, id := range r.alive {
		if r.connected(id) {
			alive = append(alive, id)
			continue
		}
		r.dropVotes(id)
	}
	r.alive = alive
}

func (r *Room) endGame(winner string) {
	r.timers.CancelAll()
	logger.Infof("[SPY-END] Room %s: %s win, spy was %s", r.id, winner, r.spy)
	r.broadcast("game_ended", gin.H{"winner": winner, "spy": r.spy})
	r.resetGame()
	r.broadcast("room_state", gin.H{"roomState": r.publicState(), "playerList": r.players()})
}

func (r *Room) resetGame() {
	r.phase = PhaseLobby
	r.spy = ""
	r.spyWord = ""
	r.civilianWord = ""
	r.alive = nil
	r.votes = make(map[string]map[string]bool)
	r.round = 0
	r.speaker = 0
	for id := range r.ready {
		r.ready[id] = false
	}
}
