package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthError(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"fatal: Authentication failed for 'https://example.com/repo.git'", true},
		{"Permission denied (publickey).", true},
		{"fatal: could not read Username for 'https://github.com'", true},
		{"remote: HTTP Basic: Access denied (403)", true},
		{"fatal: unable to access: Could not resolve host", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isAuthError(tc.msg), tc.msg)
	}
}

func TestAuthErrorMessage(t *testing.T) {
	err := &AuthError{URL: "https://example.com/repo.git", Message: "403"}
	assert.Contains(t, err.Error(), "https://example.com/repo.git")
}

func TestIsGitRepository(t *testing.T) {
	c := NewClient()
	assert.False(t, c.IsGitRepository(t.TempDir()))
}
