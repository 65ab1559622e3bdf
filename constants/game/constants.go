package game_constants

import "time"

// Spy
const (
	SpyMaxPlayers       = 6
	SpyMinPlayers       = 3
	SpyCountdownFrom    = 3
	SpyCountdownTick    = time.Second
	SpySpeakingDuration = 15 * time.Second
	SpyVotingDuration   = 15 * time.Second
	SpyResultDisplay    = 4 * time.Second
	SpyNextRoundDelay   = time.Second
	// Alive count at or below which the spy wins.
	SpyFinalists = 2
)

// Skribble
const (
	SkribbleMaxPlayers      = 8
	SkribbleMinPlayers      = 2
	SkribbleDefaultRounds   = 3
	SkribbleDefaultTimeSlot = 80
	SkribbleMinTimeSlot     = 20
	SkribbleMaxTimeSlot     = 240
	SkribbleMaxRounds       = 10
	SkribbleAnnounceDelay   = time.Second
	SkribbleRevealDelay     = time.Second
	SkribbleTimerStartDelay = 3 * time.Second
	SkribbleTick            = time.Second
	SkribbleTransitionFrom  = 4
	SkribbleGameOverDelay   = 2 * time.Second
	SkribbleMaxGuessPoints  = 200
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Offline relay and presence
const (
	OfflineMessageTTL = 24 * time.Hour
	PresenceTTL       = 10 * time.Minute
)
