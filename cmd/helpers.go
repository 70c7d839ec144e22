package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/app"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/config"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/deploy"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/tui"
)

// paths returns the configured paths.
// This is a helper to reduce repetition in commands.
func paths() *config.Paths {
	return app.Default.Paths
}

// cfg returns the loaded configuration.
func cfg() *config.Config {
	return app.Default.Config
}

// interactive reports whether stdin is a terminal a prompt can use.
var interactive = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openRunner opens the edit target and builds the workflow for it. The
// returned close function must be called when done.
func openRunner(ctx context.Context, file, upstream string) (*deploy.Runner, func(), error) {
	session, err := app.Default.Open(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := session.Close(); err != nil {
			logging.Debug("failed to close session", "error", err)
		}
	}

	runner, err := app.Default.Runner(session, upstream)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return runner, closeFn, nil
}

// noCredentials is returned when a remote command has no way to log in.
func noCredentials() error {
	return errors.ConfigError("no SSH credentials",
		fmt.Errorf("set %s or remote.identity_file", config.EnvPassword))
}

// ensurePassword prompts for the SSH password when the remote target needs
// one. It returns false when the user cancelled.
func ensurePassword(file string) (bool, error) {
	c := cfg()
	if file != "" || !c.NeedsPassword() {
		return true, nil
	}
	if !interactive() {
		return false, noCredentials()
	}

	result, err := tui.RunPrompt(tui.PromptOptions{PasswordOnly: true, Target: c.Remote.Host})
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	if !result.Confirmed {
		return false, nil
	}
	c.Password = result.Password
	return true, nil
}
