package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func resultFor(command string, checksum uint64) captypes.ClassificationResult {
	return captypes.ClassificationResult{
		Command:        command,
		RiskLevel:      captypes.RiskLevelHigh,
		PrivilegeLevel: captypes.PrivilegeUser,
		RiskScore:      0.7,
		Flags:          captypes.FlagDestructive,
		DocChecksum:    checksum,
	}
}

func TestRegisterAndCurrent(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Register(resultFor("rm", 100), []byte{1, 2, 3}, "run-1")
	require.NoError(t, err)
	assert.Positive(t, id)

	entry, err := store.Current("rm")
	require.NoError(t, err)
	assert.Equal(t, "rm", entry.Command)
	assert.Equal(t, captypes.RiskLevelHigh, entry.RiskLevel)
	assert.Equal(t, captypes.PrivilegeUser, entry.PrivilegeLevel)
	assert.InDelta(t, 0.7, entry.RiskScore, 1e-9)
	assert.Equal(t, captypes.FlagDestructive, entry.Flags)
	assert.Equal(t, uint64(100), entry.DocChecksum)
	assert.Equal(t, []byte{1, 2, 3}, entry.Descriptor)
	assert.Equal(t, "run-1", entry.RunID)
	assert.False(t, entry.Superseded)
}

func TestCurrentNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Current("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterSupersedesOnChecksumChange(t *testing.T) {
	store := openTestStore(t)

	firstID, err := store.Register(resultFor("rm", 100), []byte{1}, "run-1")
	require.NoError(t, err)

	secondID, err := store.Register(resultFor("rm", 200), []byte{2}, "run-2")
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	entry, err := store.Current("rm")
	require.NoError(t, err)
	assert.Equal(t, secondID, entry.ID)
	assert.Equal(t, uint64(200), entry.DocChecksum)

	history, err := store.History("rm")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, secondID, history[0].ID)
	assert.False(t, history[0].Superseded)
	assert.Equal(t, firstID, history[1].ID)
	assert.True(t, history[1].Superseded)
}

func TestRegisterSameChecksumUpdatesInPlace(t *testing.T) {
	store := openTestStore(t)

	firstID, err := store.Register(resultFor("rm", 100), []byte{1}, "run-1")
	require.NoError(t, err)

	updated := resultFor("rm", 100)
	updated.RiskScore = 0.8
	secondID, err := store.Register(updated, []byte{9}, "run-2")
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	entry, err := store.Current("rm")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, entry.RiskScore, 1e-9)
	assert.Equal(t, []byte{9}, entry.Descriptor)
	assert.Equal(t, "run-2", entry.RunID)

	history, err := store.History("rm")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCommands(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Register(resultFor("rm", 1), []byte{1}, "run-1")
	require.NoError(t, err)
	_, err = store.Register(resultFor("dd", 2), []byte{2}, "run-1")
	require.NoError(t, err)
	_, err = store.Register(resultFor("ls", 3), []byte{3}, "run-1")
	require.NoError(t, err)

	commands, err := store.Commands()
	require.NoError(t, err)
	assert.Equal(t, []string{"dd", "ls", "rm"}, commands)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "registry.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
