package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

const validOverlay = `
[[profiles]]
commands = ["frobnicate", "defrobnicate"]
factor = "destructive_capability"
contribution = 0.85
confidence = 0.9
rationale = "In-house tool that rewrites production data"

[[profiles]]
commands = ["fetchtool"]
factor = "network_access"
contribution = 0.5
confidence = 0.8
rationale = "Internal download helper"

[[keywords]]
phrase = "drops the database"
factor = "destructive_capability"
contribution = 0.9
confidence = 0.9
rationale = "Documentation states the database is dropped"
`

func TestParseOverlay(t *testing.T) {
	cat, err := parseOverlay(Default(), []byte(validOverlay))
	require.NoError(t, err)

	profile, ok := cat.Profile("frobnicate")
	require.True(t, ok)
	assert.InDelta(t, 0.85, profile.DestructionRisk.Contribution, 1e-9)

	profile, ok = cat.Profile("fetchtool")
	require.True(t, ok)
	assert.InDelta(t, 0.5, profile.NetworkRisk.Contribution, 1e-9)

	// built-in profiles survive the merge
	_, ok = cat.Profile("rm")
	assert.True(t, ok)

	last := cat.Keywords()[len(cat.Keywords())-1]
	assert.Equal(t, "drops the database", last.Phrase)
	assert.Equal(t, captypes.FactorDestructive, last.Factor)
}

func TestParseOverlayBaseNotMutated(t *testing.T) {
	base := Default()
	baseKeywords := len(base.Keywords())

	_, err := parseOverlay(base, []byte(validOverlay))
	require.NoError(t, err)

	assert.Len(t, base.Keywords(), baseKeywords)
	_, ok := base.Profile("frobnicate")
	assert.False(t, ok)
}

func TestParseOverlayErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name: "duplicate command across sections",
			content: `
[[profiles]]
commands = ["dup"]
factor = "destructive_capability"
contribution = 0.5
confidence = 0.5

[[profiles]]
commands = ["dup"]
factor = "network_access"
contribution = 0.5
confidence = 0.5
`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrDuplicateOverlayProfile)
			},
		},
		{
			name: "unknown factor",
			content: `
[[profiles]]
commands = ["x"]
factor = "astrology"
contribution = 0.5
confidence = 0.5
`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, captypes.ErrInvalidFactorType)
			},
		},
		{
			name: "contribution out of range",
			content: `
[[profiles]]
commands = ["x"]
factor = "destructive_capability"
contribution = 1.5
confidence = 0.5
`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrContributionOutOfRange)
			},
		},
		{
			name: "profile without commands",
			content: `
[[profiles]]
factor = "destructive_capability"
contribution = 0.5
confidence = 0.5
`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrProfileWithoutCommands)
			},
		},
		{
			name:    "malformed toml",
			content: `[[profiles`,
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOverlay(Default(), []byte(tt.content))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestLoadOverlayFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.toml")
	require.NoError(t, os.WriteFile(path, []byte(validOverlay), 0o600))

	cat, err := LoadOverlay(Default(), path)
	require.NoError(t, err)
	_, ok := cat.Profile("frobnicate")
	assert.True(t, ok)

	_, err = LoadOverlay(Default(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
