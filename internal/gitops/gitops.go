// Package gitops puts a new project's configuration and mapping sheets under
// git.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who makes a commit.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := git(dir, nil, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitAll stages all files and commits them as author, who is also
// recorded as committer. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if _, err := git(dir, nil, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + author.Name,
		"GIT_AUTHOR_EMAIL=" + author.Email,
		"GIT_COMMITTER_NAME=" + author.Name,
		"GIT_COMMITTER_EMAIL=" + author.Email,
	}
	if _, err := git(dir, env, "commit", "--quiet", "-m", message); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := git(dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return out, nil
}

func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
