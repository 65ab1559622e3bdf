package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	Setup(os.Stdout, false)
}

// Setup configures the global zerolog logger. Verbose enables debug output.
func Setup(out io.Writer, verbose bool) {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func Debugf(format string, args ...any) {
	log.Debug().Msgf(format, args...)
}

func Infof(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func Warningf(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func Criticalf(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

func Fatalf(format string, args ...any) {
	log.Fatal().Msgf(format, args...)
}
