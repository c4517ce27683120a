package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/finstat/internal/commands"
	"github.com/cleared-dev/finstat/internal/config"
	"github.com/cleared-dev/finstat/internal/gitops"
	"github.com/cleared-dev/finstat/internal/mapping"
)

// runFinstat executes the CLI in-process and returns what it printed on
// stdout. Logs go to a separate buffer.
func runFinstat(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInit_CreatesProject(t *testing.T) {
	dir := t.TempDir()
	out, err := runFinstat(t, "init", dir, "--name", "Acme Ltd")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized finstat project")

	for _, d := range []string{"input", "output"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", cfg.Project.Name)
	assert.Equal(t, "0.01", cfg.Checks.Tolerance)

	rules, err := mapping.ReadRulesFile(filepath.Join(dir, "input", commands.MappingTemplate))
	require.NoError(t, err)
	assert.Len(t, rules, 12)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "output/")
	assert.Contains(t, string(data), ".env")
}

func TestInit_DefaultName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "widgets")
	_, err := runFinstat(t, "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "widgets", cfg.Project.Name)
}

func TestInit_RefusesExistingProject(t *testing.T) {
	dir := t.TempDir()
	_, err := runFinstat(t, "init", dir, "--name", "First")
	require.NoError(t, err)

	_, err = runFinstat(t, "init", dir, "--name", "Second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "First", cfg.Project.Name)
}

func TestInit_Git(t *testing.T) {
	if !gitops.Available() {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	out, err := runFinstat(t, "init", dir, "--name", "Test Co", "--git")
	require.NoError(t, err)
	assert.Regexp(t, `Initialized finstat project at .* \([0-9a-f]+\)`, out)
	assert.True(t, gitops.IsRepo(dir))

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	got, err := log.Output()
	require.NoError(t, err)
	assert.Equal(t, "init: Initialize Test Co|finstat <finstat@localhost>\n", string(got))

	tracked := exec.Command("git", "ls-files")
	tracked.Dir = dir
	files, err := tracked.Output()
	require.NoError(t, err)
	assert.Equal(t, ".gitignore\nfinstat.yaml\ninput/Mapping.csv\n", string(files))
}
