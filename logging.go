package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvLogLevel selects the log level when --log-level is not given
	EnvLogLevel = "LOG_LEVEL"
	// envJournalStream is set by systemd when stdout goes to the journal
	envJournalStream = "JOURNAL_STREAM"
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func underJournal() bool {
	return os.Getenv(envJournalStream) != ""
}

// newLogger builds the text logger. The journal stamps every record itself,
// so the time attribute is dropped there.
func newLogger(w io.Writer, level slog.Level, journal bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if journal {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func setupLogging(w io.Writer, levelName string) error {
	level, err := parseLevel(levelName)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(w, level, underJournal()))
	return nil
}
