package checklog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finstat/internal/model"
)

var testTime = time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)

func testResults() []model.CheckResult {
	return []model.CheckResult{
		{Severity: model.SeverityWarn, Check: model.CheckUnmapped, Message: "Unmapped account_code(s): 9999"},
		{Severity: model.SeverityError, Check: model.CheckBalanceIdentity, Message: "BS not balanced. Difference: 50.00"},
	}
}

func TestFromResults(t *testing.T) {
	entries := FromResults("run-1", testTime, testResults())
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.True(t, testTime.Equal(entries[1].Timestamp))
	assert.Equal(t, testResults()[1], entries[1].Result())
}

func TestSave_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	path, err := Save(dir, FromResults("run-1", testTime, testResults()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.SeverityWarn, entries[0].Severity)
	assert.Equal(t, model.CheckBalanceIdentity, entries[1].Check)
	assert.Equal(t, "BS not balanced. Difference: 50.00", entries[1].Message)
	assert.True(t, testTime.Equal(entries[1].Timestamp))
}

func TestSave_Replaces(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(dir, FromResults("run-1", testTime, testResults()))
	require.NoError(t, err)
	_, err = Save(dir, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestWrite_QuotesMessages(t *testing.T) {
	var buf bytes.Buffer
	e := Entry{RunID: "r", Timestamp: testTime, Severity: model.SeverityError, Check: model.CheckMissingAccounts, Message: "Missing account_code(s): 1001, 1002"}
	require.NoError(t, Write(&buf, []Entry{e}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `r,2025-12-31T18:00:00Z,ERROR,missing_accounts,"Missing account_code(s): 1001, 1002"`, lines[1])
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"field count", []string{"one", "two"}, "expected 5 fields"},
		{"timestamp", []string{"r", "yesterday", "WARN", "c", "m"}, "parsing timestamp"},
		{"severity", []string{"r", "2025-12-31T18:00:00Z", "INFO", "c", "m"}, "unknown severity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
