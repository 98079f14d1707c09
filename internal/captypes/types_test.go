package captypes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLevelString(t *testing.T) {
	tests := []struct {
		level    RiskLevel
		expected string
	}{
		{RiskLevelSafe, "safe"},
		{RiskLevelLow, "low_risk"},
		{RiskLevelMedium, "medium_risk"},
		{RiskLevelHigh, "high_risk"},
		{RiskLevelCritical, "critical"},
		{RiskLevel(99), "safe"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, level := range []RiskLevel{RiskLevelSafe, RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical} {
		parsed, err := ParseRiskLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := ParseRiskLevel("extreme")
	assert.ErrorIs(t, err, ErrInvalidRiskLevel)
}

func TestRiskLevelJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(RiskLevelHigh)
	require.NoError(t, err)
	assert.Equal(t, `"high_risk"`, string(data))

	var level RiskLevel
	require.NoError(t, json.Unmarshal(data, &level))
	assert.Equal(t, RiskLevelHigh, level)

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &level))
}

func TestPrivilegeLevelParse(t *testing.T) {
	for _, level := range []PrivilegeLevel{PrivilegeUser, PrivilegeElevated, PrivilegeRoot} {
		parsed, err := ParsePrivilegeLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := ParsePrivilegeLevel("admin")
	assert.ErrorIs(t, err, ErrInvalidPrivilegeLevel)
}

func TestFactorTypeStringAndParse(t *testing.T) {
	for factor, name := range factorNames {
		assert.Equal(t, name, factor.String())
		parsed, err := ParseFactorType(name)
		require.NoError(t, err)
		assert.Equal(t, factor, parsed)
	}

	assert.Equal(t, "unrecognized(99)", FactorType(99).String())
	_, err := ParseFactorType("astrology")
	assert.ErrorIs(t, err, ErrInvalidFactorType)
}

func TestBoundExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, out string)
	}{
		{
			name:  "short text unchanged",
			input: "rm removes files",
			check: func(t *testing.T, out string) {
				assert.Equal(t, "rm removes files", out)
			},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  spaced  ",
			check: func(t *testing.T, out string) {
				assert.Equal(t, "spaced", out)
			},
		},
		{
			name:  "long text truncated with ellipsis",
			input: strings.Repeat("x", 500),
			check: func(t *testing.T, out string) {
				assert.Len(t, out, MaxExcerptLen)
				assert.True(t, strings.HasSuffix(out, "..."))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, BoundExcerpt(tt.input))
		})
	}
}

func TestCapabilityFlags(t *testing.T) {
	flags := FlagDestructive | FlagFileWrite

	assert.True(t, flags.Has(FlagDestructive))
	assert.True(t, flags.Has(FlagFileWrite))
	assert.False(t, flags.Has(FlagNetworkAccess))
	assert.False(t, flags.Has(FlagDestructive|FlagNetworkAccess))

	assert.Equal(t, []string{"destructive", "file_write"}, flags.Names())
	assert.Equal(t, "destructive|file_write", flags.String())
	assert.Equal(t, "none", CapabilityFlags(0).String())
}

func TestEvidenceItemJSONFieldNames(t *testing.T) {
	item := EvidenceItem{
		Factor:           FactorDestructive,
		Excerpt:          "documentation contains 'remove'",
		RiskContribution: 0.7,
		Confidence:       0.8,
		Source:           SourceDestructiveScan,
		Rationale:        "Command can remove files or directories",
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, field := range []string{"factor_type", "evidence_text", "risk_contribution", "confidence", "source", "rationale"} {
		assert.Contains(t, raw, field)
	}
	assert.Equal(t, "destructive_capability", raw["factor_type"])
}
