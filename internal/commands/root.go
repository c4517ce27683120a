package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finstat/internal/buildinfo"
	"github.com/cleared-dev/finstat/internal/config"
)

// app carries process-level state shared by subcommands.
type app struct {
	env        *config.Env
	log        *slog.Logger
	configPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "finstat",
		Short:   "Financial statements from a trial balance, with consistency checks",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "project config file (default $FINSTAT_CONFIG or finstat.yaml)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newCheckCommand(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	a.env = env
	if a.configPath == "" {
		a.configPath = env.ConfigPath
	}
	a.log = config.NewLogger(cmd.ErrOrStderr(), env)
	return nil
}
