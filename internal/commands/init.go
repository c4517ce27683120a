package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finstat/internal/config"
	"github.com/cleared-dev/finstat/internal/gitops"
	"github.com/cleared-dev/finstat/internal/mapping"
	"github.com/cleared-dev/finstat/internal/model"
)

// MappingTemplate is the mapping sheet written by init.
const MappingTemplate = "Mapping.csv"

func newInitCommand() *cobra.Command {
	var name string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finstat project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if name == "" {
				name = filepath.Base(absDir)
			}

			return runInit(cmd.OutOrStdout(), absDir, name, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "reporting entity name (default: directory name)")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit the new project")

	return cmd
}

func runInit(out io.Writer, dir, name string, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default(name)

	// Create directory structure.
	for _, d := range []string{cfg.Inputs.Dir, cfg.Output.Dir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write finstat.yaml.
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write the mapping template.
	f, err := os.Create(filepath.Join(dir, cfg.Inputs.Dir, MappingTemplate))
	if err != nil {
		return fmt.Errorf("creating mapping template: %w", err)
	}
	if err := mapping.WriteRules(f, templateRules()); err != nil {
		f.Close()
		return fmt.Errorf("writing mapping template: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing mapping template: %w", err)
	}

	// Write .gitignore.
	gitignore := cfg.Output.Dir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if useGit {
		// Initialize git and create initial commit.
		if err := gitops.Init(dir); err != nil {
			return err
		}
		hash, err := gitops.CommitAll(dir, "init: Initialize "+name, gitAuthor(cfg))
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		fmt.Fprintf(out, "Initialized finstat project at %s (%s)\n", dir, hash)
	} else {
		fmt.Fprintf(out, "Initialized finstat project at %s\n", dir)
	}
	fmt.Fprintf(out, "Put the trial balance in %s and edit %s\n",
		filepath.Join(dir, cfg.Inputs.Dir), filepath.Join(cfg.Inputs.Dir, MappingTemplate))
	return nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}

// templateRules is a starting mapping for a small-enterprise chart of
// accounts.
func templateRules() []model.MappingRule {
	debit, credit := decimal.NewFromInt(1), decimal.NewFromInt(-1)
	r := func(st model.Statement, section, line string, sign decimal.Decimal, codes ...string) model.MappingRule {
		return model.MappingRule{Statement: st, Section: section, LineItem: line, Codes: codes, Sign: sign}
	}
	return []model.MappingRule{
		r(model.StatementBS, "资产", "货币资金", debit, "1001", "1002", "1012"),
		r(model.StatementBS, "资产", "应收账款", debit, "1122"),
		r(model.StatementBS, "资产", "存货", debit, "1401-1411"),
		r(model.StatementBS, "资产", "固定资产", debit, "1601", "1602"),
		r(model.StatementBS, "负债", "应付账款", credit, "2202"),
		r(model.StatementBS, "负债", "应交税费", credit, "2221*"),
		r(model.StatementBS, "所有者权益", "实收资本", credit, "4001"),
		r(model.StatementBS, "所有者权益", "未分配利润", credit, "4103", "4104", "6*"),
		r(model.StatementIS, "收入", "营业收入", credit, "6001", "6051"),
		r(model.StatementIS, "费用", "营业成本", debit, "6401", "6402"),
		r(model.StatementIS, "费用", "期间费用", debit, "6601-6603"),
		r(model.StatementCF, "经营活动", "净利润", credit, "6*"),
	}
}
