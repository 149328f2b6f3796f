package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockAndUnlock(t *testing.T) {
	ctx := context.Background()
	fl := NewFileLock(t.TempDir(), nil)

	ok, err := fl.TryLock(ctx, "favorites", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = fl.TryLock(ctx, "favorites", 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire should time out")

	require.NoError(t, fl.Unlock(ctx, "favorites"))
	require.NoError(t, fl.Unlock(ctx, "favorites"))

	ok, err = fl.TryLock(ctx, "favorites", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir, nil)
	stale := filepath.Join(dir, "k.lock")
	require.NoError(t, os.WriteFile(stale, []byte("0\n0\n"), 0o600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	ok, err := fl.TryLock(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryLockHonoursContext(t *testing.T) {
	fl := NewFileLock(t.TempDir(), nil)
	ok, err := fl.TryLock(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = fl.TryLock(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	fl := NewFileLock(t.TempDir(), nil)

	ran := false
	require.NoError(t, fl.WithLock(ctx, "k", time.Second, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	boom := errors.New("boom")
	assert.ErrorIs(t, fl.WithLock(ctx, "k", time.Second, func() error { return boom }), boom)

	held, err := fl.TryLock(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, held)
	err = fl.WithLock(ctx, "k", 50*time.Millisecond, func() error { return nil })
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPathStaysInDir(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir, nil)
	assert.Equal(t, dir, filepath.Dir(fl.path("../../etc/passwd")))
}
