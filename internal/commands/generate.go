package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finstat/internal/checklog"
	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/render"
)

// ReportFile is the Markdown report written next to the statements.
const ReportFile = "report.md"

func newGenerateCommand(a *app) *cobra.Command {
	var f runFlags
	var outDir string
	var markdown bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build BS, IS and CF statements and run the consistency checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, res, err := a.execute(cmd, &f)
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = proj.path(proj.cfg.Output.Dir)
			}
			withReport := proj.cfg.Output.Markdown
			if cmd.Flags().Changed("markdown") {
				withReport = markdown
			}

			meta := render.Meta{
				Project:     proj.cfg.Project.Name,
				Period:      proj.cfg.Project.Period,
				GeneratedAt: time.Now(),
			}
			if err := runGenerate(cmd.OutOrStdout(), res, dir, withReport, meta); err != nil {
				return err
			}
			return checksFailed(res)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&markdown, "markdown", true, "write report.md")

	return cmd
}

// runGenerate writes every output of a run, whatever the check outcome.
func runGenerate(out io.Writer, res *engine.Result, dir string, withReport bool, meta render.Meta) error {
	paths, err := res.Statements.Save(dir)
	if err != nil {
		return fmt.Errorf("writing statements: %w", err)
	}

	logPath, err := checklog.Save(dir, checklog.FromResults(res.RunID, meta.GeneratedAt, res.Checks))
	if err != nil {
		return fmt.Errorf("writing check log: %w", err)
	}
	paths = append(paths, logPath)

	reportPath := filepath.Join(dir, ReportFile)
	if withReport {
		if err := os.WriteFile(reportPath, []byte(render.Markdown(res, meta)), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		paths = append(paths, reportPath)
	} else if err := os.Remove(reportPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale report: %w", err)
	}

	fmt.Fprintf(out, "Run %s (%s mode)\n", res.RunID, res.Mode)
	for _, p := range paths {
		fmt.Fprintf(out, "  wrote %s\n", p)
	}
	printSummary(out, res)
	return nil
}
