package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finstat/internal/checklog"
	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/model"
)

func newCheckCommand(a *app) *cobra.Command {
	var f runFlags
	var last string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the consistency checks without writing any output",
		Long:  "Run the consistency checks without writing any output.\nWith --last, print the check log of a previous generate run instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if last != "" {
				return printLastChecks(cmd.OutOrStdout(), last)
			}

			_, res, err := a.execute(cmd, &f)
			if err != nil {
				return err
			}
			printChecks(cmd.OutOrStdout(), res.Checks)
			printSummary(cmd.OutOrStdout(), res)
			return checksFailed(res)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&last, "last", "", "output directory of a previous run to print checks.csv from")

	return cmd
}

func printChecks(out io.Writer, results []model.CheckResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "All checks passed.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-5s %s: %s\n", r.Severity, r.Check, r.Message)
	}
}

func printLastChecks(out io.Writer, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, checklog.FileName)); err != nil {
		return fmt.Errorf("no check log in %s: %w", dir, err)
	}
	entries, err := checklog.Read(dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printChecks(out, nil)
		return nil
	}

	results := make([]model.CheckResult, len(entries))
	for i, e := range entries {
		results[i] = e.Result()
	}
	fmt.Fprintf(out, "Run %s at %s\n", entries[0].RunID, entries[0].Timestamp.Format("2006-01-02 15:04:05"))
	printChecks(out, results)
	res := &engine.Result{Checks: results}
	printSummary(out, res)
	return checksFailed(res)
}
