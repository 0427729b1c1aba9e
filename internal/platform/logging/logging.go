// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init builds the service logger and installs it as the global logger.
//
// Output is JSON by default; setting LANDGIVER_LOG_PRETTY=true switches to
// the human-readable console writer for local development.
func Init(service string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(os.Getenv("LANDGIVER_LOG_PRETTY"), "true") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat}
	}
	logger := zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return logger
}
