package settings

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	lockSuffix    = ".lock"
	lockPollEvery = 50 * time.Millisecond
	lockTimeout   = 5 * time.Second
	lockStaleAge  = 30 * time.Second
)

// lockfile is an advisory lock guarding the read-merge-write cycle on a
// settings file. Two concurrent installer invocations racing on the same
// file would otherwise lose updates (last writer wins).
type lockfile struct {
	path string
}

// acquireLock takes the advisory lock for target, waiting up to lockTimeout.
// A lock older than lockStaleAge is treated as abandoned by a crashed run
// and broken.
func acquireLock(target string) (*lockfile, error) {
	path := target + lockSuffix
	deadline := time.Now().Add(lockTimeout)

	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(file, "%s\n", strconv.Itoa(os.Getpid()))
			file.Close()
			return &lockfile{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStaleAge {
			os.Remove(path)
			continue
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for lock %s (another install running?)", path)
		}
		time.Sleep(lockPollEvery)
	}
}

// release removes the lock file.
func (l *lockfile) release() {
	os.Remove(l.path)
}
