package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup initializes the global slog logger using charmbracelet/log as the backend.
// Logs go to stderr so they never mix with reports on stdout. If stderr is a
// terminal, uses colored text format. Otherwise, uses JSON format.
// verbose forces debug level regardless of level.
func Setup(level string, verbose bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, verbose, isTerminal())))
}

// NewHandler builds the charmbracelet/log handler used by Setup.
func NewHandler(w io.Writer, level string, verbose, tty bool) *charmlog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "cleancheck",
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		lvl, err := ParseLevel(level)
		if err != nil {
			lvl = charmlog.InfoLevel
		}
		handler.SetLevel(lvl)
	}

	if !tty {
		handler.SetFormatter(charmlog.JSONFormatter)
	}
	return handler
}

// ParseLevel maps a configured level name to a charmlog level. Only debug,
// info, warn and error are accepted; names are case-insensitive.
func ParseLevel(level string) (charmlog.Level, error) {
	lvl, err := charmlog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == charmlog.FatalLevel {
		return charmlog.InfoLevel, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", level)
	}
	return lvl, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
