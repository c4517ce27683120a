package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/classify"
	"github.com/cleared-dev/finstat/internal/engine"
)

// FileName is the default project configuration file.
const FileName = "finstat.yaml"

// Config represents the top-level finstat.yaml configuration.
type Config struct {
	Project    ProjectConfig   `yaml:"project"`
	Checks     ChecksConfig    `yaml:"checks"`
	Inputs     InputsConfig    `yaml:"inputs"`
	Output     OutputConfig    `yaml:"output"`
	Git        GitConfig       `yaml:"git"`
	Sections   engine.Sections `yaml:"sections,omitempty"`
	Classifier classify.Config `yaml:"classifier,omitempty"`
}

// ProjectConfig identifies the reporting entity and period.
type ProjectConfig struct {
	Name   string `yaml:"name"`
	Period string `yaml:"period,omitempty"` // free text, e.g. "2025-12"
}

// ChecksConfig holds check parameters. Amounts are decimal strings.
type ChecksConfig struct {
	Tolerance string `yaml:"tolerance"`
	CashBegin string `yaml:"cash_begin,omitempty"`
	CashEnd   string `yaml:"cash_end,omitempty"`
}

// InputsConfig locates the input sheets. Empty candidate lists use the
// built-in sheet names.
type InputsConfig struct {
	Dir          string   `yaml:"dir"`
	TrialBalance []string `yaml:"trial_balance,omitempty"`
	Mapping      []string `yaml:"mapping,omitempty"`
	Parameters   []string `yaml:"parameters,omitempty"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Markdown bool   `yaml:"markdown"`
}

// GitConfig is the identity used for commits made by `init --git`.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a finstat.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project. The
// classifier and section tables are written out in full so they can be edited.
func Default(projectName string) *Config {
	return &Config{
		Project: ProjectConfig{Name: projectName},
		Checks:  ChecksConfig{Tolerance: "0.01"},
		Inputs:  InputsConfig{Dir: "input"},
		Output: OutputConfig{
			Dir:      "output",
			Markdown: true,
		},
		Git: GitConfig{
			AuthorName:  "finstat",
			AuthorEmail: "finstat@localhost",
		},
		Sections:   engine.DefaultSections(),
		Classifier: classify.DefaultConfig(),
	}
}

// Params returns the check parameters set in the file.
func (c *Config) Params() (engine.Params, error) {
	var p engine.Params
	var err error
	if p.Tolerance, err = parseAmount("tolerance", c.Checks.Tolerance); err != nil {
		return p, err
	}
	if p.CashBegin, err = parseAmount("cash_begin", c.Checks.CashBegin); err != nil {
		return p, err
	}
	if p.CashEnd, err = parseAmount("cash_end", c.Checks.CashEnd); err != nil {
		return p, err
	}
	return p, nil
}

// ClassifierConfig returns the classifier tables with built-in defaults for any
// list left empty.
func (c *Config) ClassifierConfig() classify.Config {
	return c.Classifier.Merge(classify.DefaultConfig())
}

// SectionKeywords returns the section keywords with built-in defaults for any
// list left empty.
func (c *Config) SectionKeywords() engine.Sections {
	return c.Sections.Merge(engine.DefaultSections())
}

func parseAmount(key, s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s: invalid number %q", apperrors.ErrSchema, key, s)
	}
	return decimal.NewNullDecimal(d), nil
}
