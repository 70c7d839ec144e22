package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
)

// Exit codes for nginx-route
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidRoute     = 2
	ExitDuplicateRoute   = 3
	ExitNoServerBlock    = 4
	ExitConfigError      = 5
	ExitSSHError         = 6
	ExitRemoteNotFound   = 7
	ExitBackupFailed     = 8
	ExitWriteFailed      = 9
	ExitValidationFailed = 10
)

// CLIError is the base error type for nginx-route
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error joins the message and the cause. A cause that already starts with
// the message is printed alone, so "invalid route" is not repeated.
func (e *CLIError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	cause := e.Cause.Error()
	if strings.HasPrefix(cause, e.Message) {
		return cause
	}
	return fmt.Sprintf("%s: %s", e.Message, cause)
}

func (e *CLIError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *CLIError) ExitCode() int {
	return e.Code
}

// New creates a new CLIError
func New(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a CLIError
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InvalidRoute returns an error for an empty or unusable route
func InvalidRoute(cause error) *CLIError {
	return Wrap(ExitInvalidRoute, "invalid route", cause)
}

// DuplicateRoute returns an error for a route that is already declared
func DuplicateRoute(route string) *CLIError {
	return New(ExitDuplicateRoute, fmt.Sprintf("route already exists in config: %s", route))
}

// NoServerBlock returns an error when no insertion point was found
func NoServerBlock(path string) *CLIError {
	return New(ExitNoServerBlock, fmt.Sprintf("could not find server block closing brace in %s", path))
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *CLIError {
	return Wrap(ExitConfigError, message, cause)
}

// SSHError returns an error for SSH operations
func SSHError(message string, cause error) *CLIError {
	return Wrap(ExitSSHError, message, cause)
}

// RemoteNotFound returns an error when none of the candidate paths exist
func RemoteNotFound(candidates []string) *CLIError {
	return New(ExitRemoteNotFound, fmt.Sprintf("could not find nginx config in %v", candidates))
}

// BackupFailed returns an error for backup failures. The remote is untouched.
func BackupFailed(cause error) *CLIError {
	return Wrap(ExitBackupFailed, "failed to save backup", cause)
}

// BackupNotFound returns an error for an unknown backup id
func BackupNotFound(id string) *CLIError {
	return New(ExitBackupFailed, fmt.Sprintf("backup not found: %s", id))
}

// WriteFailed returns an error for a failed write of the config
func WriteFailed(path string, cause error) *CLIError {
	return Wrap(ExitWriteFailed, fmt.Sprintf("failed to write %s", path), cause)
}

// ValidationFailed returns an error when the remote rejected the new config
func ValidationFailed(command string, cause error) *CLIError {
	return Wrap(ExitValidationFailed, fmt.Sprintf("%s failed, original config restored", command), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *CLIError {
	return New(ExitGeneralError, message)
}

// FromEdit converts a config editor error into a CLIError.
// Errors that are not editor errors are returned unchanged.
func FromEdit(err error, route, path string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, nginxconf.ErrInvalidRoute):
		return InvalidRoute(err)
	case errors.Is(err, nginxconf.ErrDuplicateRoute):
		return DuplicateRoute(route)
	case errors.Is(err, nginxconf.ErrNoServerBlock):
		return NoServerBlock(path)
	}
	return err
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
