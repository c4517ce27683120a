// Package checklog reads and writes the check log of a run (checks.csv).
package checklog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cleared-dev/finstat/internal/model"
)

// Entry is one row in the check log.
type Entry struct {
	RunID     string
	Timestamp time.Time
	Severity  model.Severity
	Check     string
	Message   string
}

// Header is the CSV header for checks.csv.
const Header = "run_id,timestamp,severity,check,message"

// FileName is the check log written into the output directory.
const FileName = "checks.csv"

const (
	numFields    = 5
	colRunID     = 0
	colTimestamp = 1
	colSeverity  = 2
	colCheck     = 3
	colMessage   = 4
)

// FromResults stamps check results with a run ID and time.
func FromResults(runID string, at time.Time, results []model.CheckResult) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, Entry{
			RunID:     runID,
			Timestamp: at,
			Severity:  r.Severity,
			Check:     r.Check,
			Message:   r.Message,
		})
	}
	return entries
}

// Result returns the entry as a check result.
func (e Entry) Result() model.CheckResult {
	return model.CheckResult{Severity: e.Severity, Check: e.Check, Message: e.Message}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colSeverity] = string(e.Severity)
	row[colCheck] = e.Check
	row[colMessage] = e.Message
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	sev := model.Severity(record[colSeverity])
	if sev != model.SeverityWarn && sev != model.SeverityError {
		return Entry{}, fmt.Errorf("unknown severity %q", record[colSeverity])
	}

	return Entry{
		RunID:     record[colRunID],
		Timestamp: ts,
		Severity:  sev,
		Check:     record[colCheck],
		Message:   record[colMessage],
	}, nil
}

// Write writes the header and entries as CSV.
func Write(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes <dir>/checks.csv, replacing any previous log, and returns its
// path. The header is written even when there are no entries.
func Save(dir string, entries []Entry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating check log: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing check log: %w", err)
	}
	return path, nil
}

// Read returns all entries from <dir>/checks.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening check log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading check log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
