package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	// Logger receives the diagnostic log: SSH dialing, remote commands,
	// backups and rollbacks. User-facing output goes through the User*
	// functions instead.
	Logger = newLogger(os.Stderr, false, slog.LevelInfo)

	// Verbose is set by Setup when --verbose is given.
	Verbose bool
)

func newLogger(w io.Writer, jsonOutput bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup replaces Logger. Debug records are kept only when verbose is set;
// jsonOutput selects one JSON object per record. A nil w logs to stderr.
func Setup(verbose bool, jsonOutput bool, w io.Writer) {
	Verbose = verbose
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	Logger = newLogger(w, jsonOutput, level)
}

func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }

func Info(msg string, args ...any) { Logger.Info(msg, args...) }

func Warn(msg string, args ...any) { Logger.Warn(msg, args...) }

func Error(msg string, args ...any) { Logger.Error(msg, args...) }

// With returns a logger that adds args to every record.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}

// Secret is a string that logs as a fixed placeholder, for SSH passwords.
type Secret string

const redacted = "[redacted]"

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	if s == "" {
		return slog.StringValue("")
	}
	return slog.StringValue(redacted)
}

func (s Secret) String() string {
	return redacted
}
