package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/codes"
	"github.com/cleared-dev/finstat/internal/model"
	"github.com/cleared-dev/finstat/internal/tabular"
)

// Header aliases for mapping sheets.
var (
	StatementHeaders = []string{"statement", "报表", "报表类型", "表"}
	SectionHeaders   = []string{"section", "板块", "分类", "项目分类", "报表项目分类"}
	LineItemHeaders  = []string{"line_item", "line", "item", "项目", "行项目", "报表项目", "项目名称"}
	CodeHeaders      = []string{"account_code", "account", "code", "科目编码", "科目代码", "科目编号"}
	SignHeaders      = []string{"sign", "符号", "系数", "正负"}
)

var ruleHeader = []string{"statement", "section", "line_item", "account_code", "sign"}

// ReadRules reads a mapping sheet. Rows are kept in file order; blank rows are
// skipped. The sign column is optional and defaults to 1.
func ReadRules(r io.Reader) ([]model.MappingRule, error) {
	t, err := tabular.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("reading mapping CSV: %w", err)
	}

	c := t.Claimer()
	codeIdx := c.Claim(CodeHeaders)
	signIdx := c.Claim(SignHeaders)
	secIdx := c.Claim(SectionHeaders)
	lineIdx := c.Claim(LineItemHeaders)
	stmtIdx := c.Claim(StatementHeaders)
	if stmtIdx < 0 || secIdx < 0 || lineIdx < 0 || codeIdx < 0 {
		return nil, fmt.Errorf("%w: missing required mapping columns", apperrors.ErrMapping)
	}

	var rules []model.MappingRule
	for i, rec := range t.Rows {
		if tabular.BlankRow(rec) {
			continue
		}
		rowNum := i + 2 // 1-based, after the header

		stmtCell := tabular.Cell(rec, stmtIdx)
		rule := model.MappingRule{
			Section:  tabular.Cell(rec, secIdx),
			LineItem: tabular.Cell(rec, lineIdx),
			Sign:     decimal.NewFromInt(1),
		}
		codeCell := tabular.Cell(rec, codeIdx)
		if stmtCell == "" || rule.Section == "" || rule.LineItem == "" || codeCell == "" {
			return nil, fmt.Errorf("%w: row %d missing mapping values", apperrors.ErrMapping, rowNum)
		}
		st, err := model.ParseStatement(stmtCell)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrMapping, rowNum, err)
		}
		rule.Statement = st

		rule.Codes = splitCodes(codeCell)
		if len(rule.Codes) == 0 {
			return nil, fmt.Errorf("%w: row %d has empty account_code", apperrors.ErrMapping, rowNum)
		}
		if sign, ok := tabular.ParseNumber(tabular.Cell(rec, signIdx)); ok {
			rule.Sign = sign
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// WriteRules writes rules as a mapping sheet that ReadRules accepts.
func WriteRules(w io.Writer, rules []model.MappingRule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ruleHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rules {
		rec := []string{
			string(r.Statement),
			r.Section,
			r.LineItem,
			strings.Join(r.Codes, ";"),
			r.Sign.String(),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing rule %s/%s: %w", r.Section, r.LineItem, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadRulesFile reads a mapping CSV file.
func ReadRulesFile(path string) ([]model.MappingRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping: %w", err)
	}
	defer f.Close()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rules, nil
}

type yamlRules struct {
	Rules []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	Statement string    `yaml:"statement"`
	Section   string    `yaml:"section"`
	LineItem  string    `yaml:"line_item"`
	Codes     tokenList `yaml:"codes"`
	Sign      string    `yaml:"sign,omitempty"`
}

// tokenList accepts either a YAML sequence of tokens or a single cell string
// such as "1001;1002".
type tokenList []string

func (l *tokenList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = splitCodes(node.Value)
		return nil
	case yaml.SequenceNode:
		var out []string
		for _, n := range node.Content {
			out = append(out, splitCodes(n.Value)...)
		}
		*l = out
		return nil
	}
	return fmt.Errorf("line %d: codes must be a string or a list", node.Line)
}

// splitCodes splits a code cell and normalizes each token, so "1001;1002.0"
// yields 1001 and 1002.
func splitCodes(cell string) []string {
	toks := codes.SplitTokens(cell)
	for i, tok := range toks {
		toks[i] = tabular.NormalizeCode(tok)
	}
	return toks
}

// LoadRules reads a YAML rule file:
//
//	rules:
//	  - statement: BS
//	    section: Assets
//	    line_item: Cash
//	    codes: ["1001", "1002"]
//	    sign: 1
func LoadRules(path string) ([]model.MappingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping rules: %w", err)
	}

	var doc yamlRules
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", apperrors.ErrMapping, path, err)
	}

	rules := make([]model.MappingRule, 0, len(doc.Rules))
	for i, yr := range doc.Rules {
		rule := model.MappingRule{
			Section:  strings.TrimSpace(yr.Section),
			LineItem: strings.TrimSpace(yr.LineItem),
			Codes:    yr.Codes,
			Sign:     decimal.NewFromInt(1),
		}
		if strings.TrimSpace(yr.Statement) != "" {
			st, err := model.ParseStatement(yr.Statement)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %d: %v", apperrors.ErrMapping, i+1, err)
			}
			rule.Statement = st
		}
		if yr.Sign != "" {
			sign, ok := tabular.ParseNumber(yr.Sign)
			if !ok {
				return nil, fmt.Errorf("%w: rule %d: invalid sign %q", apperrors.ErrMapping, i+1, yr.Sign)
			}
			rule.Sign = sign
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("%w: rule %d: %v", apperrors.ErrMapping, i+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
