package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// User-facing output functions with status prefixes.
// These write to stdout/stderr directly for CLI output,
// separate from the structured debug logging.

var (
	userMu  sync.Mutex
	userOut io.Writer = os.Stdout
	userErr io.Writer = os.Stderr
)

// SetUserOutput redirects user-facing output. Nil writers restore the
// process stdout/stderr.
func SetUserOutput(out, errOut io.Writer) {
	userMu.Lock()
	defer userMu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	userOut, userErr = out, errOut
}

func userPrint(toErr bool, prefix, format string, args ...interface{}) {
	userMu.Lock()
	defer userMu.Unlock()
	w := userOut
	if toErr {
		w = userErr
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// UserInfo prints an info message to stdout.
func UserInfo(format string, args ...interface{}) {
	userPrint(false, "ℹ ", format, args...)
}

// UserSuccess prints a success message to stdout.
func UserSuccess(format string, args ...interface{}) {
	userPrint(false, "✓ ", format, args...)
}

// UserWarning prints a warning message to stderr.
func UserWarning(format string, args ...interface{}) {
	userPrint(true, "⚠ ", format, args...)
}

// UserError prints an error message to stderr.
func UserError(format string, args ...interface{}) {
	userPrint(true, "✗ ", format, args...)
}

// UserDetail prints command output to stderr, indented under the message
// before it. Blank lines are dropped.
func UserDetail(output string) {
	userMu.Lock()
	defer userMu.Unlock()
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintf(userErr, "    %s\n", line)
	}
}
