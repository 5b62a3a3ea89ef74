package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// purgeConcurrency bounds how many stale directories are removed at once.
const purgeConcurrency = 4

// PurgeStale removes every subdirectory of base whose lock is not held by a
// live process. It returns the number of directories removed. A missing base
// directory is not an error.
func PurgeStale(base string, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", base, err)
	}

	removed := make([]bool, len(entries))
	var g errgroup.Group
	g.SetLimit(purgeConcurrency)

	for idx, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(base, entry.Name())
		g.Go(func() error {
			ok, err := purgeIfUnlocked(dir, log)
			removed[idx] = ok
			return err
		})
	}

	err = g.Wait()
	n := 0
	for _, ok := range removed {
		if ok {
			n++
		}
	}
	return n, err
}

// purgeIfUnlocked removes dir when its lock can be taken without waiting.
func purgeIfUnlocked(dir string, log *slog.Logger) (bool, error) {
	fl := flock.New(LockPath(dir))
	locked, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock for %s: %w", dir, err)
	}
	if !locked {
		return false, nil
	}
	defer func() {
		if closeErr := fl.Close(); closeErr != nil {
			log.Debug("release probe lock", "path", fl.Path(), "error", closeErr)
		}
		_ = os.Remove(LockPath(dir))
	}()

	log.Debug("removing stale data directory", "dir", dir)
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("remove stale %s: %w", dir, err)
	}
	return true, nil
}
