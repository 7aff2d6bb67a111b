package utils

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger, or a console logger in development.
func NewLogger(appEnv string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "poliklinik-dashboard").Logger()
}
