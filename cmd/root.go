package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/app"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/config"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "nginx-route",
	Short: "Add proxied routes to an nginx server block",
	Long: `nginx-route adds a location block to an nginx site config.

The config is edited over SFTP on the configured host (or locally with
--file). Each edit:
  - refuses routes that are already declared
  - inserts the block before the server block's closing brace
  - saves a local backup before anything is written
  - optionally runs a test command and rolls back on failure`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		logging.SetUserOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

		cfg, err := config.Load(configFile)
		if err != nil {
			return errors.ConfigError("failed to load config", err)
		}

		app.SetDefault(app.New(
			app.WithConfig(cfg),
			app.WithPaths(cfg.Paths(configFile)),
		))
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logging.UserError("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs and results in JSON format")
	rootCmd.SilenceErrors = true
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
