package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
)

func TestCommandFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/usr/share/man/man1/rm.1", "rm"},
		{"/usr/share/man/man1/rm.1.gz", "rm"},
		{"/usr/share/man/man8/mount.8", "mount"},
		{"docs/rm.txt", "rm"},
		{"docs/rm.md", "rm"},
		{"docs/rm.man", "rm"},
		{"docs/rm", "rm"},
		{"mkfs.ext4.8", "mkfs.ext4"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, CommandFromPath(tt.path))
		})
	}
}

func TestWatcherEmitsUpdateOnWrite(t *testing.T) {
	dir := t.TempDir()
	c := classifier.New(nil, classifier.Options{})

	w, err := New(c, []string{dir}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(dir, "rm.1")
	require.NoError(t, os.WriteFile(path, []byte("remove files recursively"), 0o600))

	select {
	case update := <-w.Updates():
		assert.Equal(t, "rm", update.Command)
		assert.Equal(t, path, update.Path)
		assert.Equal(t, captypes.RiskLevelCritical, update.Result.RiskLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reclassification update")
	}
}

func TestWatcherStartMissingPath(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	w, err := New(c, []string{filepath.Join(t.TempDir(), "missing")}, time.Second)
	require.NoError(t, err)

	assert.Error(t, w.Start())
	require.NoError(t, w.fsWatcher.Close())
}

func TestWatcherStopClosesUpdates(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	w, err := New(c, []string{t.TempDir()}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())

	_, ok := <-w.Updates()
	assert.False(t, ok, "update channel should be closed after Stop")
}
