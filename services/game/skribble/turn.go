package skribble

import (
	"time"

	game_constants "Wordspy/constants/game"
	"Wordspy/utils/logger"

	"github.com/gin-gonic/gin"
)

// schedule runs fn after d if the room is still in the phase and stage it
// was scheduled under.
func (r *Room) schedule(name string, d time.Duration, fn func()) {
	phase, stage := r.phase, r.stage
	r.timers.After(name, string(phase), d, func() {
		if r.closed || r.phase != phase || r.stage != stage {
			logger.Debugf("[SKRIBBLE-TIMER] Ignoring stale timeout %s in room %s", name, r.id)
			return
		}
		fn()
	})
}

func (r *Room) startGame() {
	r.timers.CancelAll()
	for _, p := range r.players {
		p.Score = 0
		p.WordGuessed = false
	}
	r.round = 1
	r.drawer = 0
	r.drawerLeft = false

	logger.Infof("[SKRIBBLE-START] Room %s: %d players, %d rounds of %ds (%s)",
		r.id, len(r.players), r.settings.Rounds, r.settings.TimeSlot, r.settings.Difficulty)
	r.broadcast("START_GAME", gin.H{"gameSettings": r.settings, "players": r.scoreCard()})
	r.beginTurn()
}

// beginTurn opens a turn through its named stages. Each stage is only
// reachable from the timer of the previous one.
func (r *Room) beginTurn() {
	r.timers.CancelAll()
	r.resetTurn()

	words := game_constants.SkribbleWords(r.settings.Difficulty)
	r.word = words[r.pick(len(words))]
	r.phase = PhaseStarting
	r.stage = StageAnnounceRound
	r.schedule(string(StageAnnounceRound), game_constants.SkribbleAnnounceDelay, r.announceRound)
}

func (r *Room) announceRound() {
	r.broadcast("ROUND_NUMBER", gin.H{
		"currentRoundNo": r.round,
		"currentUser":    r.drawerID(),
		"drawerName":     r.drawerName(),
	})
	r.stage = StageRevealWord
	r.schedule(string(StageRevealWord), game_constants.SkribbleRevealDelay, r.revealWord)
}

func (r *Room) revealWord() {
	drawer := r.drawerID()
	for _, p := range r.players {
		if p.UserID == drawer {
			r.sendTo(p.UserID, "WORD", gin.H{"word": r.word, "currentRoundNo": r.round, "currentUser": drawer})
			continue
		}
		r.sendTo(p.UserID, "WORD_LENGTH", gin.H{
			"wordLength":     len(r.word),
			"drawerName":     r.drawerName(),
			"currentRoundNo": r.round,
			"currentUser":    drawer,
		})
	}
	r.stage = StageStartTimer
	r.schedule(string(StageStartTimer), game_constants.SkribbleTimerStartDelay, r.startTimer)
}

func (r *Room) startTimer() {
	r.phase = PhasePlaying
	r.stage = StageNone
	r.elapsed = 0
	r.schedule("tick", game_constants.SkribbleTick, r.tick)
}

func (r *Room) tick() {
	r.elapsed++
	payload := gin.H{
		"time":      r.elapsed,
		"remaining": r.settings.TimeSlot - r.elapsed,
	}
	if r.elapsed == r.settings.TimeSlot/2 && len(r.revealed) == 0 {
		if idx, ok := r.revealLetter(); ok {
			payload["reveledIndex"] = idx
			payload["letterReveled"] = string(r.word[idx])
		}
	}
	r.broadcast("SECOND_TIMER", payload)

	if r.elapsed >= r.settings.TimeSlot {
		r.endTurn(true)
		return
	}
	r.schedule("tick", game_constants.SkribbleTick, r.tick)
}

// revealLetter picks one unrevealed, non-space position of the word.
func (r *Room) revealLetter() (int, bool) {
	var candidates []int
	for i := 0; i < len(r.word); i++ {
		if r.word[i] != ' ' && !r.revealed[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	idx := candidates[r.pick(len(candidates))]
	r.revealed[idx] = true
	return idx, true
}

// endTurn stops the turn and starts the transition countdown. The drawer is
// credited the average of this turn's guesser scores unless they left. The
// average truncates toward zero: 200, 40 and 40 credit 93.
func (r *Room) endTurn(scoreDrawer bool) {
	r.timers.CancelAll()

	if d := r.currentDrawer(); scoreDrawer && d != nil {
		total, guessers := 0, 0
		for id, pts := range r.roundScores {
			if id == d.UserID {
				continue
			}
			total += pts
			guessers++
		}
		avg := 0
		if guessers > 0 {
			avg = total / guessers
		}
		d.Score += avg
		r.roundScores[d.UserID] = avg
	}

	roundScore := make(map[string]int, len(r.roundScores))
	for id, pts := range r.roundScores {
		roundScore[id] = pts
	}
	logger.Infof("[SKRIBBLE-ROUND] Room %s turn over (round %d), word was %q", r.id, r.round, r.word)
	r.broadcast("SECOND_TIMER_STOPPED", gin.H{
		"time":       0,
		"roundScore": roundScore,
		"word":       r.word,
		"players":    r.scoreCard(),
	})

	r.phase = PhaseTransition
	r.stage = StageNone
	r.transition(game_constants.SkribbleTransitionFrom)
}

func (r *Room) transition(count int) {
	r.broadcast("TRANSITION_COUNTDOWN", gin.H{"count": count})
	if count > 1 {
		r.schedule("transition", time.Second, func() { r.transition(count - 1) })
		return
	}
	r.schedule("advance", time.Second, r.advance)
}

// advance moves the drawer slot on, wrapping into the next round.
func (r *Room) advance() {
	if r.drawerLeft {
		r.drawerLeft = false
	} else {
		r.drawer++
	}
	if r.drawer >= len(r.players) {
		r.drawer = 0
		r.round++
	}
	if r.round > r.settings.Rounds {
		r.endGame()
		return
	}
	r.beginTurn()
}

func (r *Room) endGame() {
	r.timers.CancelAll()
	r.resetTurn()
	r.round = 0
	r.drawer = 0
	r.drawerLeft = false
	r.phase = PhaseGameEnd
	r.stage = StageNone
	r.schedule("game_over", game_constants.SkribbleGameOverDelay, r.gameOver)
}

func (r *Room) gameOver() {
	logger.Infof("[SKRIBBLE-END] Room %s game over", r.id)
	r.broadcast("GAME_OVER", gin.H{"time": 0, "ScoreCard": r.scoreCard()})
	for _, p := range r.players {
		p.Score = 0
		p.WordGuessed = false
	}
	r.phase = PhaseWaiting
}

func (r *Room) resetTurn() {
	r.word = ""
	r.elapsed = 0
	r.revealed = make(map[int]bool)
	r.roundScores = make(map[string]int)
	for _, p := range r.players {
		p.WordGuessed = false
	}
}
