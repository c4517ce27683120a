// Package render formats a run as a Markdown report.
package render

import (
	"bytes"
	"fmt"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/cleared-dev/finstat/internal/engine"
	"github.com/cleared-dev/finstat/internal/model"
	"github.com/cleared-dev/finstat/internal/statements"
)

// Meta is the report heading information.
type Meta struct {
	Project     string
	Period      string
	GeneratedAt time.Time
}

var titles = map[model.Statement]string{
	model.StatementBS: "Balance Sheet",
	model.StatementIS: "Income Statement",
	model.StatementCF: "Cash Flow Statement",
}

// Markdown renders the statements, the unclassified accounts (heuristic runs)
// and the check log.
func Markdown(res *engine.Result, meta Meta) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Financial Statements"
	if meta.Project != "" {
		title = fmt.Sprintf("%s: %s", title, meta.Project)
	}
	doc.H1(title)

	warnings, errs := res.Counts()
	status := "passed"
	if errs > 0 {
		status = "FAILED"
	}
	doc.Table(md.TableSet{
		Header: []string{md.Bold("Run"), md.Bold(res.RunID)},
		Rows: [][]string{
			{"Period", orDash(meta.Period)},
			{"Generated", generated(meta.GeneratedAt)},
			{"Mode", string(res.Mode)},
			{"Tolerance", res.Tolerance.StringFixed(2)},
			{"Checks", fmt.Sprintf("%s (%d errors, %d warnings)", status, errs, warnings)},
		},
	})

	for _, st := range res.Statements.Statements() {
		statement(doc, st)
	}

	if res.Statements.Auto {
		doc.H2("Unclassified Accounts")
		if len(res.Statements.Unclassified) == 0 {
			doc.PlainText("None.")
		} else {
			table := md.TableSet{
				Header: []string{"Code", "Name", "Ending Balance"},
			}
			for _, a := range res.Statements.Unclassified {
				table.Rows = append(table.Rows, []string{a.Code, a.Name, a.EndBalance.StringFixed(2)})
			}
			doc.Table(table)
		}
	}

	doc.H2("Checks")
	if len(res.Checks) == 0 {
		doc.PlainText("All checks passed.")
	} else {
		table := md.TableSet{
			Header: []string{"Severity", "Check", "Message"},
		}
		for _, c := range res.Checks {
			sev := string(c.Severity)
			if c.Severity == model.SeverityError {
				sev = md.Bold(sev)
			}
			table.Rows = append(table.Rows, []string{sev, c.Check, c.Message})
		}
		doc.Table(table)
	}

	return doc.String()
}

func statement(doc *md.Markdown, st statements.Statement) {
	doc.H2(fmt.Sprintf("%s (%s)", titles[st.Kind], st.Kind))
	if len(st.Rows) == 0 {
		doc.PlainText("No rows.")
		return
	}
	table := md.TableSet{
		Header: []string{"Section", "Line Item", "Account", "Amount"},
	}
	for _, r := range st.Rows {
		label := r.LineItem
		if r.LineItem == statements.TotalLabel || r.LineItem == statements.NetProfitLabel {
			label = md.Bold(label)
		}
		table.Rows = append(table.Rows, []string{r.Section, label, orDash(r.Code), r.Amount.StringFixed(2)})
	}
	doc.Table(table)
}

func generated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
