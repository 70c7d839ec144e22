// Package tui provides terminal user interface components for nginx-route.
//
// This package uses the Bubble Tea framework for the interactive parts of
// the CLI: asking for a route (and an SSH password when one is needed) and
// picking a backup to restore.
//
// # Route Prompt
//
// The prompt collects the route, optionally a password, and shows the
// location block that will be inserted before asking for confirmation:
//
//	result, err := tui.RunPrompt(tui.PromptOptions{
//	    Editor:      editor,
//	    AskPassword: cfg.NeedsPassword(),
//	})
//	if result.Confirmed {
//	    // result.Route, result.Password
//	}
//
// # Backup Picker
//
// The picker lists backups newest first and returns the selected one:
//
//	result, err := tui.RunPicker(backups)
//	switch result.Action {
//	case tui.ActionRestore:
//	    // Restore result.Backup
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
