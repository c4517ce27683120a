package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/finstat/internal/accounts"
	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/classify"
	"github.com/cleared-dev/finstat/internal/config"
	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/mapping"
	"github.com/cleared-dev/finstat/internal/model"
	"github.com/cleared-dev/finstat/internal/workbook"
)

// runFlags are the input and parameter flags shared by generate and check.
type runFlags struct {
	inputDir  string
	tb        string
	mapping   string
	params    string
	heuristic bool
	tolerance string
	cashBegin string
	cashEnd   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.inputDir, "input", "", "input directory of CSV sheets (default from config)")
	fs.StringVar(&f.tb, "tb", "", "trial balance CSV (overrides sheet discovery)")
	fs.StringVar(&f.mapping, "mapping", "", "mapping rules, CSV or YAML")
	fs.StringVar(&f.params, "params", "", "parameter sheet CSV")
	fs.BoolVar(&f.heuristic, "heuristic", false, "ignore any mapping and classify accounts heuristically")
	fs.StringVar(&f.tolerance, "tolerance", "", "check tolerance")
	fs.StringVar(&f.cashBegin, "cash-begin", "", "beginning cash balance")
	fs.StringVar(&f.cashEnd, "cash-end", "", "ending cash balance")
}

func (f *runFlags) overrides() (engine.Params, error) {
	var p engine.Params
	var err error
	if p.Tolerance, err = flagAmount("tolerance", f.tolerance); err != nil {
		return p, err
	}
	if p.CashBegin, err = flagAmount("cash-begin", f.cashBegin); err != nil {
		return p, err
	}
	if p.CashEnd, err = flagAmount("cash-end", f.cashEnd); err != nil {
		return p, err
	}
	return p, nil
}

func flagAmount(name, s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: --%s: invalid number %q", apperrors.ErrSchema, name, s)
	}
	return decimal.NewNullDecimal(d), nil
}

// project is a loaded config plus the directory its relative paths start from.
type project struct {
	cfg  *config.Config
	root string
}

// loadProject reads the config file. A missing file at the default location
// is not an error: the built-in defaults apply relative to the working
// directory.
func (a *app) loadProject(explicit bool) (*project, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, err
		}
		a.log.Debug("no config file, using defaults", "path", a.configPath)
		return &project{cfg: config.Default(""), root: "."}, nil
	}
	return &project{cfg: cfg, root: filepath.Dir(a.configPath)}, nil
}

func (p *project) path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// inputs are the files one run reads.
type inputs struct {
	TrialBalance string
	Mapping      string
	Parameters   string
}

func (p *project) resolveInputs(f *runFlags) (inputs, error) {
	in := inputs{TrialBalance: f.tb, Mapping: f.mapping, Parameters: f.params}
	if in.TrialBalance != "" {
		return in, nil
	}

	dir := f.inputDir
	if dir == "" {
		dir = p.path(p.cfg.Inputs.Dir)
	}
	sheets, err := workbook.Resolve(dir, workbook.Candidates{
		TrialBalance: p.cfg.Inputs.TrialBalance,
		Mapping:      p.cfg.Inputs.Mapping,
		Parameters:   p.cfg.Inputs.Parameters,
	})
	if err != nil {
		return in, err
	}
	in.TrialBalance = sheets.TrialBalance.Path
	if in.Mapping == "" && sheets.Mapping != nil {
		in.Mapping = sheets.Mapping.Path
	}
	if in.Parameters == "" && sheets.Parameters != nil {
		in.Parameters = sheets.Parameters.Path
	}
	return in, nil
}

func loadRules(path string) ([]model.MappingRule, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return mapping.LoadRules(path)
	default:
		return mapping.ReadRulesFile(path)
	}
}

// execute loads every input and runs the engine. Fatal input errors are
// returned before anything is written.
func (a *app) execute(cmd *cobra.Command, f *runFlags) (*project, *engine.Result, error) {
	_, fromEnv := os.LookupEnv(config.EnvPrefix + "_CONFIG")
	proj, err := a.loadProject(cmd.Flags().Changed("config") || fromEnv)
	if err != nil {
		return nil, nil, err
	}

	files, err := proj.resolveInputs(f)
	if err != nil {
		return nil, nil, err
	}
	a.log.Info("inputs resolved", "trial_balance", files.TrialBalance, "mapping", files.Mapping, "parameters", files.Parameters)

	reg, err := accounts.LoadFile(files.TrialBalance)
	if err != nil {
		return nil, nil, err
	}

	var rules []model.MappingRule
	if files.Mapping != "" && !f.heuristic {
		if rules, err = loadRules(files.Mapping); err != nil {
			return nil, nil, err
		}
		if rules == nil {
			rules = []model.MappingRule{}
		}
	}

	params, err := proj.cfg.Params()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if files.Parameters != "" {
		sheet, err := config.ReadParametersFile(files.Parameters)
		if err != nil {
			return nil, nil, err
		}
		params = params.Override(sheet)
	}
	flags, err := f.overrides()
	if err != nil {
		return nil, nil, err
	}
	params = params.Override(flags)

	res, err := engine.Run(engine.Input{
		Registry:   reg,
		Rules:      rules,
		Params:     params,
		Classifier: classify.New(proj.cfg.ClassifierConfig()),
		Sections:   proj.cfg.SectionKeywords(),
		Logger:     a.log,
	})
	if err != nil {
		return nil, nil, err
	}
	return proj, res, nil
}

func checksFailed(res *engine.Result) error {
	if !res.Failed() {
		return nil
	}
	_, errs := res.Counts()
	return fmt.Errorf("%w: %d error(s)", apperrors.ErrChecksFailed, errs)
}
