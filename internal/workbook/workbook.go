// Package workbook locates the input sheets of a run. A workbook is a
// directory of CSV files, one file per sheet, identified by file name.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/finstat/internal/accounts"
	"github.com/cleared-dev/finstat/internal/apperrors"
	"github.com/cleared-dev/finstat/internal/tabular"
)

// FileInfo describes a CSV sheet in the input directory.
type FileInfo struct {
	Name string // file name, e.g. "科目余额表.csv"
	Stem string // name without extension
	Path string
	Size int64
}

// Candidates are the sheet names tried for each input, in order.
type Candidates struct {
	TrialBalance []string
	Mapping      []string
	Parameters   []string
}

// DefaultCandidates returns the built-in sheet names.
func DefaultCandidates() Candidates {
	return Candidates{
		TrialBalance: []string{"TB_Current", "TrialBalance", "Trial Balance", "TB", "科目余额表", "试算平衡表", "余额表", "总账余额表"},
		Mapping:      []string{"Mapping", "科目映射", "报表映射", "报表项目映射", "映射"},
		Parameters:   []string{"Parameters", "参数", "设置"},
	}
}

// Merge returns c with every empty list filled from base.
func (c Candidates) Merge(base Candidates) Candidates {
	if len(c.TrialBalance) == 0 {
		c.TrialBalance = base.TrialBalance
	}
	if len(c.Mapping) == 0 {
		c.Mapping = base.Mapping
	}
	if len(c.Parameters) == 0 {
		c.Parameters = base.Parameters
	}
	return c
}

// Sheets are the files chosen for one run. Mapping and Parameters are nil when
// the workbook has no such sheet.
type Sheets struct {
	TrialBalance FileInfo
	Mapping      *FileInfo
	Parameters   *FileInfo
}

// Scan returns the CSV files in dir, sorted by name.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !strings.EqualFold(ext, ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Stem: strings.TrimSuffix(e.Name(), ext),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Pick returns the first file whose normalized stem equals or contains a
// candidate, trying candidates in order.
func Pick(files []FileInfo, candidates []string) (FileInfo, bool) {
	stems := make([]string, len(files))
	for i, f := range files {
		stems[i] = tabular.NormalizeHeader(f.Stem)
	}
	for _, c := range candidates {
		cand := tabular.NormalizeHeader(c)
		if cand == "" {
			continue
		}
		for i, s := range stems {
			if s == cand || strings.Contains(s, cand) {
				return files[i], true
			}
		}
	}
	return FileInfo{}, false
}

// PickTrialBalance picks the trial-balance sheet by name, then by looking for
// trial-balance headers, and finally falls back to the first file.
func PickTrialBalance(files []FileInfo, candidates []string) (FileInfo, error) {
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("%w: no CSV sheets found", apperrors.ErrSchema)
	}
	if f, ok := Pick(files, candidates); ok {
		return f, nil
	}
	for _, f := range files {
		ok, err := hasTrialBalanceHeaders(f.Path)
		if err != nil {
			return FileInfo{}, err
		}
		if ok {
			return f, nil
		}
	}
	return files[0], nil
}

func hasTrialBalanceHeaders(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := tabular.ReadCSV(f)
	if err != nil {
		// Unreadable sheets are simply not trial balances.
		return false, nil
	}
	return accounts.HasTrialBalanceHeaders(t), nil
}

// Resolve scans dir and chooses the sheets of a run. The mapping and
// parameter sheets are chosen first and are never taken as the trial balance.
func Resolve(dir string, c Candidates) (*Sheets, error) {
	c = c.Merge(DefaultCandidates())
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	var s Sheets
	rest := files
	if f, ok := Pick(files, c.Mapping); ok {
		s.Mapping = &f
		rest = without(rest, f)
	}
	if f, ok := Pick(rest, c.Parameters); ok {
		s.Parameters = &f
		rest = without(rest, f)
	}

	tb, err := PickTrialBalance(rest, c.TrialBalance)
	if err != nil {
		return nil, fmt.Errorf("choosing trial balance in %s: %w", dir, err)
	}
	s.TrialBalance = tb
	return &s, nil
}

func without(files []FileInfo, drop FileInfo) []FileInfo {
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if f.Path != drop.Path {
			out = append(out, f)
		}
	}
	return out
}
