package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "routegrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestWatcherInitialLoad(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, t.TempDir(), "listener:\n  address: \":9090\"\n")

	w, err := NewWatcher(path, nil, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	cfg := w.LastConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, ":9090", cfg.Listener.Address)
}

func TestWatcherReloadOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfigFile(t, dir, "listener:\n  address: \":9090\"\n")

	var reloads atomic.Int32
	w, err := NewWatcher(path, func(*Config) {
		reloads.Add(1)
	}, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	writeConfigFile(t, dir, "listener:\n  address: \":9091\"\n")

	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, ":9091", w.LastConfig().Listener.Address)
}

func TestWatcherRejectsInvalidReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfigFile(t, dir, "listener:\n  address: \":9090\"\n")

	var errs atomic.Int32
	w, err := NewWatcher(path, nil,
		WithDebounceDelay(10*time.Millisecond),
		WithErrorCallback(func(error) { errs.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	writeConfigFile(t, dir, "listener:\n  address: \"\"\n")

	require.Eventually(t, func() bool {
		return errs.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)

	// The invalid document must not replace the last good config.
	assert.Equal(t, ":9090", w.LastConfig().Listener.Address)
}

func TestWatcherStartMissingFile(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)

	err = w.Start(context.Background())
	require.Error(t, err)
}

func TestWatcherStopAfterFailedStart(t *testing.T) {
	t.Parallel()

	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))

	// Stop must not wait for a watch goroutine that never launched.
	done := make(chan error, 1)
	go func() { done <- w.Stop() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after a failed Start")
	}
}

func TestWatcherRestartableAfterFailedStart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "routegrid.yaml")

	w, err := NewWatcher(path, nil, WithDebounceDelay(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.Error(t, w.Start(ctx))

	writeConfigFile(t, dir, "listener:\n  address: \":9090\"\n")

	require.NoError(t, w.Start(ctx))
	defer func() { require.NoError(t, w.Stop()) }()

	require.NotNil(t, w.LastConfig())
}
