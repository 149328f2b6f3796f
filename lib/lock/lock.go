// Package lock serializes work across processes sharing one machine.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const retryInterval = 50 * time.Millisecond

// ErrTimeout is returned by WithLock when the lock could not be taken in time.
var ErrTimeout = errors.New("timed out waiting for lock")

// FileLock is a lock backed by exclusively created files in a directory.
type FileLock struct {
	dir    string
	logger *slog.Logger
}

// NewFileLock stores lock files in dir, or a temp directory when dir is empty.
func NewFileLock(dir string, logger *slog.Logger) *FileLock {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "moodpick-locks")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLock{dir: dir, logger: logger}
}

// TryLock attempts to acquire the lock for key until timeout elapses. It
// reports false, with no error, on timeout. Locks older than twice the
// timeout are considered abandoned and removed.
func (fl *FileLock) TryLock(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	lockFile := fl.path(key)

	if err := os.MkdirAll(fl.dir, 0o750); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		// #nosec G304 - lockFile is built by path() from a sanitized key
		file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			if _, err := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid()); err != nil {
				_ = file.Close()
				_ = os.Remove(lockFile)
				return false, fmt.Errorf("failed to write lock file: %w", err)
			}
			if err := file.Close(); err != nil {
				return false, fmt.Errorf("failed to close lock file: %w", err)
			}
			fl.logger.DebugContext(ctx, "Acquired lock", slog.String("key", key))
			return true, nil
		}
		if !os.IsExist(err) {
			return false, fmt.Errorf("failed to create lock file: %w", err)
		}

		if fl.isStale(lockFile, timeout*2) {
			fl.logger.WarnContext(ctx, "Removing stale lock file", slog.String("file", lockFile))
			if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
				fl.logger.ErrorContext(ctx, "Failed to remove stale lock file", slog.String("file", lockFile), slog.Any("error", err))
			}
			continue
		}

		if !time.Now().Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Unlock releases the lock for key. Releasing a lock that is not held is not
// an error.
func (fl *FileLock) Unlock(ctx context.Context, key string) error {
	if err := os.Remove(fl.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	fl.logger.DebugContext(ctx, "Released lock", slog.String("key", key))
	return nil
}

// WithLock runs fn while holding the lock for key.
func (fl *FileLock) WithLock(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	ok, err := fl.TryLock(ctx, key, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTimeout, key)
	}
	defer func() {
		if err := fl.Unlock(ctx, key); err != nil {
			fl.logger.ErrorContext(ctx, "Failed to release lock", slog.String("key", key), slog.Any("error", err))
		}
	}()
	return fn()
}

// path maps a key to a file inside dir; separators are replaced so a key
// can never escape it.
func (fl *FileLock) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(fl.dir, safe+".lock")
}

func (fl *FileLock) isStale(lockFile string, staleAfter time.Duration) bool {
	info, err := os.Stat(lockFile)
	if err != nil {
		return os.IsNotExist(err)
	}
	return time.Since(info.ModTime()) > staleAfter
}
