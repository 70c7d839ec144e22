package cmd

import (
	"github.com/spf13/cobra"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/deploy"
	"github.com/phannguyenbuu/dinh-tot-dong/internal/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check <route>",
	Short: "Check whether a route is already declared",
	Long: `Check whether the config already has a location for a route.

Exits with status 3 when the route exists, so scripts can test for it.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var checkFile string

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "Check a local file instead of the remote config")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if ok, err := ensurePassword(checkFile); !ok {
		return err
	}

	runner, closeFn, err := openRunner(cmd.Context(), checkFile, "")
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := runner.Check(cmd.Context(), deploy.Request{Route: args[0], Path: checkFile})
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else if result.Exists {
		logWarning("%s is already declared in %s", result.Route, result.Path)
	} else {
		logSuccess("%s is not declared in %s", result.Route, result.Path)
	}

	if result.Exists {
		return errors.DuplicateRoute(string(result.Route))
	}
	return nil
}
