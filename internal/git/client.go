// Package git shells out to the git binary for marketplace syncing.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitMissing is returned when the git binary is not on PATH.
var ErrGitMissing = errors.New("git is required but was not found on PATH")

// Client abstracts the git operations marketplace syncing needs, so the
// update checker can be tested with a fake.
type Client interface {
	Clone(url, destPath string) error
	Pull(repoPath string) error
	Fetch(repoPath string) error
	GetCurrentCommit(repoPath string) (string, error)
	GetRemoteCommit(repoPath, branch string) (string, error)
	HasUpdates(repoPath string) (bool, error)
	IsGitRepository(path string) bool
}

// DefaultClient shells out to the git binary.
type DefaultClient struct{}

// NewClient returns the shell-out client.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// CheckAvailable verifies the git binary exists. Callers treat failure as a
// hard precondition error, before any mutation happens.
func CheckAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitMissing
	}
	return nil
}

// Clone makes a shallow clone of url at destPath.
func (c *DefaultClient) Clone(url, destPath string) error {
	cmd := exec.Command("git", "clone", "--depth", "1", url, destPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: url, Message: errMsg}
		}
		return fmt.Errorf("git clone failed: %s", errMsg)
	}

	return nil
}

// Pull fast-forwards the checkout; a diverged local branch is an error.
func (c *DefaultClient) Pull(repoPath string) error {
	cmd := exec.Command("git", "-C", repoPath, "pull", "--ff-only")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: repoPath, Message: errMsg}
		}
		return fmt.Errorf("git pull failed: %s", errMsg)
	}

	return nil
}

// Fetch updates remote refs without touching the work tree.
func (c *DefaultClient) Fetch(repoPath string) error {
	cmd := exec.Command("git", "-C", repoPath, "fetch", "--quiet")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if isAuthError(errMsg) {
			return &AuthError{URL: repoPath, Message: errMsg}
		}
		return fmt.Errorf("git fetch failed: %s", errMsg)
	}

	return nil
}

// GetCurrentCommit returns the checkout's HEAD commit SHA.
func (c *DefaultClient) GetCurrentCommit(repoPath string) (string, error) {
	cmd := exec.Command("git", "-C", repoPath, "rev-parse", "HEAD")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// GetRemoteCommit returns the fetched tip of a remote branch, defaulting
// to origin/HEAD.
func (c *DefaultClient) GetRemoteCommit(repoPath, branch string) (string, error) {
	if branch == "" {
		branch = "origin/HEAD"
	} else {
		branch = "origin/" + branch
	}

	cmd := exec.Command("git", "-C", repoPath, "rev-parse", branch)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to get remote commit: %s", stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// HasUpdates fetches and reports whether the checkout differs from its
// remote branch tip.
func (c *DefaultClient) HasUpdates(repoPath string) (bool, error) {
	if err := c.Fetch(repoPath); err != nil {
		return false, err
	}

	branchCmd := exec.Command("git", "-C", repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	var branchOut bytes.Buffer
	branchCmd.Stdout = &branchOut
	if err := branchCmd.Run(); err != nil {
		return false, fmt.Errorf("failed to get current branch: %w", err)
	}
	branch := strings.TrimSpace(branchOut.String())

	localCommit, err := c.GetCurrentCommit(repoPath)
	if err != nil {
		return false, err
	}

	remoteCommit, err := c.GetRemoteCommit(repoPath, branch)
	if err != nil {
		return false, err
	}

	return localCommit != remoteCommit, nil
}

// IsGitRepository reports whether path sits inside a git work tree.
func (c *DefaultClient) IsGitRepository(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--is-inside-work-tree")
	return cmd.Run() == nil
}

// AuthError marks a failure the user has to fix with credentials rather
// than a retry.
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for '%s': %s", e.URL, e.Message)
}

// isAuthError matches stderr patterns git emits on credential and access
// failures.
func isAuthError(msg string) bool {
	authPatterns := []string{
		"Authentication failed",
		"Permission denied",
		"could not read Username",
		"fatal: repository",
		"not found",
		"403",
		"401",
	}

	for _, pattern := range authPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
