package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/model"
	"github.com/cleared-dev/finstat/internal/statements"
)

// headings parses a Markdown document and returns its headings by level.
func headings(t *testing.T, doc string) map[int][]string {
	t.Helper()
	source := []byte(doc)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	out := make(map[int][]string)
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var sb strings.Builder
			for i := 0; i < h.Lines().Len(); i++ {
				line := h.Lines().At(i)
				sb.Write(line.Value(source))
			}
			out[h.Level] = append(out[h.Level], sb.String())
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return out
}

func mappedResult() *engine.Result {
	amt := decimal.RequireFromString
	return &engine.Result{
		RunID:     "run-1",
		Mode:      engine.ModeMapping,
		Tolerance: decimal.RequireFromString("0.01"),
		Statements: statements.Set{
			BS: statements.Statement{Kind: model.StatementBS, Rows: []statements.Row{
				{Section: "Assets", LineItem: "Cash", Amount: amt("1300")},
				{Section: "Assets", LineItem: statements.TotalLabel, Amount: amt("1300")},
			}},
			IS: statements.Statement{Kind: model.StatementIS, Rows: []statements.Row{
				{Section: "Revenue", LineItem: "Sales", Amount: amt("-1200")},
			}},
			CF: statements.Statement{Kind: model.StatementCF},
		},
		Checks: []model.CheckResult{
			{Severity: model.SeverityWarn, Check: model.CheckUnmapped, Message: "Unmapped account_code(s): 9999"},
			{Severity: model.SeverityError, Check: model.CheckBalanceIdentity, Message: "BS not balanced. Difference: 50.00"},
		},
	}
}

func TestMarkdown_Structure(t *testing.T) {
	doc := Markdown(mappedResult(), Meta{Project: "Acme Ltd", Period: "2025-12"})

	h := headings(t, doc)
	assert.Equal(t, []string{"Financial Statements: Acme Ltd"}, h[1])
	assert.Equal(t, []string{
		"Balance Sheet (BS)",
		"Income Statement (IS)",
		"Cash Flow Statement (CF)",
		"Checks",
	}, h[2])
}

func TestMarkdown_Content(t *testing.T) {
	doc := Markdown(mappedResult(), Meta{GeneratedAt: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)})

	assert.Contains(t, doc, "# Financial Statements\n")
	assert.Contains(t, doc, "2026-01-05T09:00:00Z")
	assert.Contains(t, doc, "FAILED (1 errors, 1 warnings)")
	assert.Contains(t, doc, "1300.00")
	assert.Contains(t, doc, "-1200.00")
	assert.Contains(t, doc, "**TOTAL**")
	assert.Contains(t, doc, "**ERROR**")
	assert.Contains(t, doc, "BS not balanced. Difference: 50.00")
	assert.Contains(t, doc, "No rows.")
	assert.NotContains(t, doc, "Unclassified Accounts")
}

func TestMarkdown_Heuristic(t *testing.T) {
	res := &engine.Result{
		RunID:     "run-2",
		Mode:      engine.ModeHeuristic,
		Tolerance: decimal.RequireFromString("0.01"),
		Statements: statements.Set{
			BS:   statements.Statement{Kind: model.StatementBS},
			IS:   statements.Statement{Kind: model.StatementIS},
			CF:   statements.Statement{Kind: model.StatementCF},
			Auto: true,
			Unclassified: []model.Account{
				{Code: "9999", Name: "神秘科目", EndBalance: decimal.NewFromInt(42)},
			},
		},
	}

	doc := Markdown(res, Meta{})
	h := headings(t, doc)
	assert.Contains(t, h[2], "Unclassified Accounts")
	assert.Contains(t, doc, "神秘科目")
	assert.Contains(t, doc, "42.00")
	assert.Contains(t, doc, "All checks passed.")
	assert.Contains(t, doc, "passed (0 errors, 0 warnings)")
}
