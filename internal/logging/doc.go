// Package logging provides logging utilities for nginx-route.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted status lines for the person running the tool
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by --verbose and --json:
//
//	logging.Debug("resolved remote config", "path", path)
//	logging.Warn("reload skipped", "reason", "no reload_command")
//
// Credentials must be wrapped with Secret before they reach a log call:
//
//	logging.Debug("connecting", "user", user, "password", logging.Secret(pw))
//
// # User Output
//
//	logging.UserInfo("Using %s", path)
//	logging.UserSuccess("Backup saved: %s", backupPath)
//	logging.UserWarning("No reload command configured")
//	logging.UserError("Error: %v", err)
//
// Info and success lines go to stdout, warnings and errors to stderr. Tests
// redirect both with SetUserOutput.
package logging
