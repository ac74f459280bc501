package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	target := filepath.Join(t.TempDir(), "settings.json")

	lock, err := acquireLock(target)
	require.NoError(t, err)
	assert.FileExists(t, target+lockSuffix)

	lock.release()
	assert.NoFileExists(t, target+lockSuffix)
}

func TestAcquireLockBreaksStaleLock(t *testing.T) {
	target := filepath.Join(t.TempDir(), "settings.json")
	stale := target + lockSuffix

	require.NoError(t, os.WriteFile(stale, []byte("12345\n"), 0o644))
	old := time.Now().Add(-lockStaleAge - time.Minute)
	require.NoError(t, os.Chtimes(stale, old, old))

	lock, err := acquireLock(target)
	require.NoError(t, err)
	defer lock.release()
}
