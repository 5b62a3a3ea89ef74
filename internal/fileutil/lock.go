package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between attempts to acquire a
// directory lock held by someone else.
const lockRetryInterval = 50 * time.Millisecond

// lockSuffix is appended to a directory path to form its lock file. The lock
// file lives next to the directory, not inside it, so it exists before the
// directory is created and PurgeStale never sees an unlocked live directory.
const lockSuffix = ".lock"

// DirLock is an exclusive cross-process lock on a data directory.
type DirLock struct {
	dir string
	fl  *flock.Flock
}

// LockPath returns the lock file path guarding dir.
func LockPath(dir string) string {
	return dir + lockSuffix
}

// LockDir acquires the lock for dir and then creates dir. The lock is held
// until Release. It respects context cancellation while waiting.
func LockDir(ctx context.Context, dir string) (*DirLock, error) {
	if err := EnsureDirForFile(dir); err != nil {
		return nil, err
	}

	fl := flock.New(LockPath(dir))
	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", dir, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire lock for %s: %w", dir, ctx.Err())
		}
		return nil, fmt.Errorf("acquire lock for %s: lock not acquired", dir)
	}

	if err := EnsureDir(dir); err != nil {
		_ = fl.Close()
		return nil, err
	}
	return &DirLock{dir: dir, fl: fl}, nil
}

// Dir returns the locked directory.
func (l *DirLock) Dir() string {
	return l.dir
}

// Release unlocks the directory. When remove is true the directory and its
// lock file are deleted as well; data directory names are never reused, so
// deleting the lock file cannot invalidate another holder's lock.
func (l *DirLock) Release(remove bool, log *slog.Logger) error {
	if l == nil || l.fl == nil {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}

	var errs []error
	if err := l.fl.Close(); err != nil {
		errs = append(errs, fmt.Errorf("unlock %s: %w", l.dir, err))
	}
	l.fl = nil

	if remove {
		if err := os.RemoveAll(l.dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", l.dir, err))
		}
		if err := os.Remove(LockPath(l.dir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Debug("remove lock file", "path", LockPath(l.dir), "error", err)
		}
	}
	return errors.Join(errs...)
}
