package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/app"
)

var backupsCmd = &cobra.Command{
	Use:   "backups [name]",
	Short: "List local backups, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackups,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	store := app.Default.Backups()
	backups, err := store.List(name)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), backups)
	}

	if len(backups) == 0 {
		logInfo("No backups found in %s", store.Dir())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSIZE")
	fmt.Fprintln(w, "--\t-------\t----")

	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			b.ID, humanize.Time(b.Timestamp), humanize.Bytes(uint64(b.Size)))
	}

	return w.Flush()
}
