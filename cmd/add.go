package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/deploy"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/nginxconf"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/tui"
)

var addCmd = &cobra.Command{
	Use:   "add [route]",
	Short: "Add a proxied location block for a route",
	Long: `Add a location block that proxies a route to the upstream.

The route is prefixed with "/" when needed. Without a route, or when an SSH
password is needed, an interactive prompt asks for them.

Examples:
  nginx-route add /api/
  nginx-route add api --upstream http://127.0.0.1:8080
  nginx-route add /api/ --file ./site.conf --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

var (
	addFile     string
	addDryRun   bool
	addUpstream string
	addNoReload bool
)

func init() {
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Edit a local file instead of the remote config")
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Show the change without writing it")
	addCmd.Flags().StringVar(&addUpstream, "upstream", "", "proxy_pass target (default from config)")
	addCmd.Flags().BoolVar(&addNoReload, "no-reload", false, "Do not run the reload command")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	var route string
	if len(args) > 0 {
		route = args[0]
	}

	c := cfg()
	needPassword := addFile == "" && c.NeedsPassword()

	if route == "" || needPassword {
		if !interactive() {
			if route == "" {
				return errors.InvalidRoute(fmt.Errorf("%w: no route given", nginxconf.ErrInvalidRoute))
			}
			return noCredentials()
		}

		upstream := addUpstream
		if upstream == "" {
			upstream = c.Proxy.Upstream
		}
		result, err := tui.RunPrompt(tui.PromptOptions{
			Editor:      nginxconf.NewEditor(upstream),
			Route:       route,
			AskPassword: needPassword,
			Target:      c.Remote.Host,
		})
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
		if !result.Confirmed {
			logInfo("Cancelled")
			return nil
		}
		route = string(result.Route)
		if needPassword {
			c.Password = result.Password
		}
	}

	runner, closeFn, err := openRunner(cmd.Context(), addFile, addUpstream)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := runner.AddRoute(cmd.Context(), deploy.Request{
		Route:    route,
		Path:     addFile,
		DryRun:   addDryRun,
		NoReload: addNoReload,
	})
	if result == nil && err != nil {
		return err
	}

	if jsonOutput {
		if jerr := printJSON(cmd.OutOrStdout(), result); jerr != nil {
			return jerr
		}
		return err
	}

	if result.DryRun {
		fmt.Fprint(cmd.OutOrStdout(), result.Diff)
		logInfo("Dry run: %s not modified", result.Path)
		return nil
	}

	logInfo("Backup saved: %s", result.Backup.Path)
	logSuccess("Added location %s to %s", result.Route, result.Path)
	if result.Tested {
		logSuccess("Config test passed")
	}
	if err != nil {
		logWarning("Reload failed, the new config is written but not active")
		return err
	}
	if result.Reloaded {
		logSuccess("nginx reloaded")
	}
	return nil
}
