package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/app"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display the history of edits",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most this many events (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	events, err := app.Default.History().Last(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(events) == 0 && !jsonOutput {
		logInfo("No history yet")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if jsonOutput {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		subject := e.Target
		if e.Route != "" {
			subject += " " + e.Route
		}
		if e.Backup != "" {
			subject += " [" + e.Backup + "]"
		}
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-8s %s (%s)\n", ts, e.Type, subject, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-8s %s\n", ts, e.Type, subject)
		}
	}

	return nil
}
