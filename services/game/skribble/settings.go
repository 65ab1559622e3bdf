package skribble

import (
	"fmt"

	game_constants "Wordspy/constants/game"
	"Wordspy/models/messages"
)

type Settings struct {
	TimeSlot   int    `json:"timeSlot"`
	Rounds     int    `json:"noOfRounds"`
	Difficulty string `json:"difficulty"`
}

func DefaultSettings() Settings {
	return Settings{
		TimeSlot:   game_constants.SkribbleDefaultTimeSlot,
		Rounds:     game_constants.SkribbleDefaultRounds,
		Difficulty: game_constants.DifficultyEasy,
	}
}

// Merge overlays the non-zero fields of an inbound settings block.
func (s Settings) Merge(in *messages.GameSettings) Settings {
	if in == nil {
		return s
	}
	if in.TimeSlot != 0 {
		s.TimeSlot = in.TimeSlot
	}
	if in.Rounds != 0 {
		s.Rounds = in.Rounds
	}
	if in.Difficulty != "" {
		s.Difficulty = in.Difficulty
	}
	return s
}

func (s Settings) Validate() error {
	if s.Rounds < 1 || s.Rounds > game_constants.SkribbleMaxRounds {
		return fmt.Errorf("noOfRounds must be between 1 and %d", game_constants.SkribbleMaxRounds)
	}
	if s.TimeSlot < game_constants.SkribbleMinTimeSlot || s.TimeSlot > game_constants.SkribbleMaxTimeSlot {
		return fmt.Errorf("timeSlot must be between %d and %d seconds",
			game_constants.SkribbleMinTimeSlot, game_constants.SkribbleMaxTimeSlot)
	}
	if !game_constants.IsDifficulty(s.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", s.Difficulty)
	}
	return nil
}

// pointsFor maps how far into the turn a guess landed onto its score:
// 200 in the first fifth of the turn, 40 less for every later fifth, 40 at least.
func pointsFor(elapsed, timeSlot int) int {
	if timeSlot <= 0 {
		return 40
	}
	fifths := elapsed * 5 / timeSlot
	if fifths > 4 {
		fifths = 4
	}
	return game_constants.SkribbleMaxGuessPoints - 40*fifths
}
