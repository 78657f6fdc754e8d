package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog pipeline.
func Init(level int) {
	// ConsoleWriter gives human-readable, colorized output in development.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	zerolog.SetGlobalLevel(zerolog.Level(level))

	// Include the caller's file and line number.
	log.Logger = log.With().Caller().Logger()
}
