// Package installer materializes resolved plugin assets into the host
// configuration tree, either as symlinks or as copies.
package installer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugfarm/plugfarm/internal/config"
	"github.com/plugfarm/plugfarm/internal/fsutil"
	"github.com/plugfarm/plugfarm/internal/layout"
	"github.com/plugfarm/plugfarm/internal/logging"
)

// Installer places assets under the host configuration directory.
type Installer struct {
	Mode config.InstallMode
}

// New creates an installer for the given mode.
func New(mode config.InstallMode) *Installer {
	return &Installer{Mode: mode}
}

// InstallAssets installs every resolved asset and returns the destination
// paths created, keyed by category. Re-running over an existing install
// replaces links and overwrites copies; it never errors on pre-existing
// destinations.
func (in *Installer) InstallAssets(assets *layout.Assets) (map[layout.Category][]string, error) {
	log := logging.Get("installer")
	installed := make(map[layout.Category][]string)

	for _, category := range layout.Categories {
		sources := assets.Groups[category]
		if len(sources) == 0 {
			continue
		}

		for _, src := range sources {
			dst := layout.DestFor(category, src)
			if err := config.EnsureDir(filepath.Dir(dst)); err != nil {
				return installed, fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
			}

			if err := in.place(src, dst); err != nil {
				return installed, err
			}

			log.Debug().
				Str("category", string(category)).
				Str("src", src).
				Str("dst", dst).
				Str("mode", string(in.Mode)).
				Msg("installed asset")
			installed[category] = append(installed[category], dst)
		}
	}

	return installed, nil
}

func (in *Installer) place(src, dst string) error {
	if in.Mode == config.ModeCopy {
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", src, err)
		}
		if info.IsDir() {
			// Clear a stale link or previous copy so the tree is fresh
			if fsutil.IsSymlink(dst) {
				if err := os.Remove(dst); err != nil {
					return fmt.Errorf("failed to replace %s: %w", dst, err)
				}
			}
			return fsutil.CopyDir(src, dst)
		}
		return fsutil.CopyFile(src, dst)
	}
	return fsutil.Symlink(src, dst)
}

// RemovePaths deletes installed destinations. Nonexistent paths are
// no-ops, so a partial install can be removed safely. Individual failures
// are collected rather than aborting the sweep.
func RemovePaths(paths []string) []error {
	log := logging.Get("installer")
	var errs []error

	for _, path := range paths {
		if !fsutil.LExists(path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
			continue
		}
		log.Debug().Str("path", path).Msg("removed asset")
	}

	return errs
}

// Drifted reports installed destinations that no longer match their
// recorded source: a missing path, or a symlink now pointing elsewhere.
func Drifted(srcByDst map[string]string) []string {
	var drifted []string
	for dst, src := range srcByDst {
		if !fsutil.LExists(dst) {
			drifted = append(drifted, dst)
			continue
		}
		if fsutil.IsSymlink(dst) {
			target, err := os.Readlink(dst)
			if err != nil || target != src {
				drifted = append(drifted, dst)
			}
		}
	}
	return drifted
}
