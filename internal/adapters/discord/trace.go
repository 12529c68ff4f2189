package discord

import (
	"time"

	"github.com/rs/zerolog"
)

func step(log zerolog.Logger, label string) func() {
	start := time.Now()
	return func() { log.Debug().Dur("took", time.Since(start)).Msgf("[trace] %s", label) }
}
