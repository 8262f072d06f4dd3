package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger: human readable outside production, JSON in
// production.
func New(environment string) zerolog.Logger {
	return newWithWriter(environment, os.Stdout)
}

func newWithWriter(environment string, out io.Writer) zerolog.Logger {
	level := zerolog.DebugLevel
	var writer io.Writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	if strings.EqualFold(environment, "production") {
		level = zerolog.InfoLevel
		writer = out
	}
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", "haulops-billing").
		Logger()
}
