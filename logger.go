package rcv

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
}

// SetLogger configures the global zerolog logger from the configuration,
// setting the level and, if requested, human readable console output.
func SetLogger(conf *Config) {
	zerolog.SetGlobalLevel(conf.GetLogLevel())

	var out io.Writer = os.Stderr
	if conf.Console {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
