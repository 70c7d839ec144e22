// Package errors provides typed errors with exit codes for nginx-route.
//
// # Error Types
//
// CLIError is the base error type that wraps an error with an exit code:
//
//	type CLIError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
// Defined exit codes for different error categories:
//
//	ExitSuccess          = 0   // Success
//	ExitGeneralError     = 1   // General/unknown errors
//	ExitInvalidRoute     = 2   // Empty route
//	ExitDuplicateRoute   = 3   // Route already declared
//	ExitNoServerBlock    = 4   // No closing brace to insert before
//	ExitConfigError      = 5   // Configuration error
//	ExitSSHError         = 6   // SSH connection failed
//	ExitRemoteNotFound   = 7   // No candidate config path exists
//	ExitBackupFailed     = 8   // Local backup could not be saved or read
//	ExitWriteFailed      = 9   // Config write failed
//	ExitValidationFailed = 10  // Test command rejected the new config
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.DuplicateRoute("/api/")
//	errors.RemoteNotFound(candidates)
//	errors.ValidationFailed("nginx -t", err)
//	errors.SSHError("connection failed", err)
//
// Editor errors from the nginxconf package map onto exit codes with FromEdit.
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
