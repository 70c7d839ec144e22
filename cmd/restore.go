package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/app"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/deploy"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/tui"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Write a backup back to the config",
	Long: `Write a saved backup back to the config.

The current content is backed up first, so a restore can itself be undone.
Without a backup id an interactive picker lists the available backups.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

var (
	restoreFile     string
	restoreDryRun   bool
	restoreNoReload bool
)

func init() {
	restoreCmd.Flags().StringVarP(&restoreFile, "file", "f", "", "Restore into a local file instead of the remote config")
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Show the change without writing it")
	restoreCmd.Flags().BoolVar(&restoreNoReload, "no-reload", false, "Do not run the reload command")
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		if !interactive() {
			return errors.ValidationError("backup id required")
		}
		backups, err := app.Default.Backups().List("")
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			logInfo("No backups found in %s", app.Default.Backups().Dir())
			return nil
		}
		picked, err := tui.RunPicker(backups)
		if err != nil {
			return fmt.Errorf("picker failed: %w", err)
		}
		if picked.Action != tui.ActionRestore {
			return nil
		}
		id = picked.Backup.ID
	}

	if ok, err := ensurePassword(restoreFile); !ok {
		return err
	}

	runner, closeFn, err := openRunner(cmd.Context(), restoreFile, "")
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := runner.Restore(cmd.Context(), id, deploy.Request{
		Path:     restoreFile,
		DryRun:   restoreDryRun,
		NoReload: restoreNoReload,
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

	if restoreDryRun {
		fmt.Fprint(cmd.OutOrStdout(), result.Diff)
		logInfo("Dry run: %s not modified", result.Path)
		return nil
	}

	logInfo("Previous content saved: %s", result.Backup.Path)
	logSuccess("Restored %s from %s", result.Path, result.Restored.ID)
	if err != nil {
		return err
	}
	if result.Reloaded {
		logSuccess("nginx reloaded")
	}
	return nil
}
