package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

func sampleResult() captypes.ClassificationResult {
	return captypes.ClassificationResult{
		Command:        "rm",
		RiskLevel:      captypes.RiskLevelCritical,
		PrivilegeLevel: captypes.PrivilegeUser,
		RiskScore:      0.79,
		Flags:          captypes.FlagDestructive | captypes.FlagFileWrite,
		DocChecksum:    0xDEADBEEF12345678,
	}
}

func TestEncodeSizes(t *testing.T) {
	result := sampleResult()

	full, err := Encode(result, PerfHints{}, VariantFull)
	require.NoError(t, err)
	assert.Len(t, full, FullSize)

	lean, err := Encode(result, PerfHints{}, VariantLean)
	require.NoError(t, err)
	assert.Len(t, lean, LeanSize)

	_, err = Encode(result, PerfHints{}, Variant(7))
	assert.ErrorIs(t, err, captypes.ErrMalformedDescriptor)
}

func TestRoundTrip(t *testing.T) {
	hints := PerfHints{LatencyEstimate: 120, MemoryEstimate: 4096, OutputEstimate: 256}

	tests := []struct {
		name    string
		variant Variant
	}{
		{"full", VariantFull},
		{"lean", VariantLean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sampleResult()
			data, err := Encode(result, hints, tt.variant)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, tt.variant, decoded.Variant)
			assert.Equal(t, result.RiskLevel, decoded.RiskLevel)
			assert.Equal(t, result.PrivilegeLevel, decoded.PrivilegeLevel)
			assert.Equal(t, result.Flags, decoded.Flags)
			assert.Equal(t, uint16(result.DocChecksum>>48), decoded.HashPrefix)
			assert.Equal(t, hints.LatencyEstimate, decoded.Hints.LatencyEstimate)
			assert.Equal(t, hints.MemoryEstimate, decoded.Hints.MemoryEstimate)

			if tt.variant == VariantFull {
				assert.Equal(t, hints.OutputEstimate, decoded.Hints.OutputEstimate)
			} else {
				// the lean layout drops the output hint
				assert.Zero(t, decoded.Hints.OutputEstimate)
			}

			// quantized score decodes to within one quantization step
			assert.InDelta(t, result.RiskScore, float64(decoded.RiskByte)/255, 1.0/255+1e-9)
		})
	}
}

func TestRoundTripAllLevels(t *testing.T) {
	for level := captypes.RiskLevelSafe; level <= captypes.RiskLevelCritical; level++ {
		for privilege := captypes.PrivilegeUser; privilege <= captypes.PrivilegeRoot; privilege++ {
			result := sampleResult()
			result.RiskLevel = level
			result.PrivilegeLevel = privilege

			data, err := Encode(result, PerfHints{}, VariantFull)
			require.NoError(t, err)
			decoded, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, level, decoded.RiskLevel)
			assert.Equal(t, privilege, decoded.PrivilegeLevel)
		}
	}
}

func TestDecodeRejectsEveryBitFlip(t *testing.T) {
	data, err := Encode(sampleResult(), PerfHints{LatencyEstimate: 7}, VariantFull)
	require.NoError(t, err)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			corrupted := make([]byte, len(data))
			copy(corrupted, data)
			corrupted[i] ^= 1 << bit

			_, err := Decode(corrupted)
			assert.ErrorIs(t, err, captypes.ErrMalformedDescriptor,
				"flipping byte %d bit %d must be detected", i, bit)
		}
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	valid, err := Encode(sampleResult(), PerfHints{}, VariantFull)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", valid[:FullSize-1]},
		{"oversized", append(append([]byte{}, valid...), 0)},
		{"lean-sized slice of full record", valid[:LeanSize]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, captypes.ErrMalformedDescriptor)
		})
	}
}

func TestDecodeRejectsWrongMagic(t *testing.T) {
	data, err := Encode(sampleResult(), PerfHints{}, VariantFull)
	require.NoError(t, err)
	data[0] = 'X'

	_, err = Decode(data)
	assert.ErrorIs(t, err, captypes.ErrMalformedDescriptor)
}

func TestDecodeRejectsFamilyRecord(t *testing.T) {
	family, err := NewFamily("git", []captypes.ClassificationResult{
		{Command: "git push", RiskLevel: captypes.RiskLevelLow},
	})
	require.NoError(t, err)

	// A family record is 24 bytes but is not a full descriptor.
	_, err = Decode(EncodeFamily(family))
	assert.ErrorIs(t, err, captypes.ErrMalformedDescriptor)
}

func TestQuantizeScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected byte
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{1.5, 255},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, quantizeScore(tt.score), "score %v", tt.score)
	}
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "full", VariantFull.String())
	assert.Equal(t, "lean", VariantLean.String())
	assert.Equal(t, "family", VariantFamily.String())
}
