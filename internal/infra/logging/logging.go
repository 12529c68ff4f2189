package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02 15:04:05.000 MST(-0700)"

// New arma el logger de la app. En una terminal usa el console writer de
// zerolog, si no JSON (journald, Lambda).
func New(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
