package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDescriptorHex(t *testing.T) {
	var buf bytes.Buffer
	d := NewDetector(ModeHex)

	require.NoError(t, d.WriteDescriptor(&buf, []byte{0x43, 0x50, 0x44, 0x31}))
	assert.Equal(t, "43504431\n", buf.String())
}

func TestWriteDescriptorRaw(t *testing.T) {
	var buf bytes.Buffer
	d := NewDetector(ModeRaw)

	data := []byte{0x43, 0x50, 0x44, 0x31, 0x00, 0xFF}
	require.NoError(t, d.WriteDescriptor(&buf, data))
	assert.Equal(t, data, buf.Bytes())
}

func TestUseHexForcedModes(t *testing.T) {
	assert.True(t, NewDetector(ModeHex).UseHex())
	assert.False(t, NewDetector(ModeRaw).UseHex())
}

func TestReadDescriptorInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "hex string",
			input:    []byte("43504431"),
			expected: []byte{0x43, 0x50, 0x44, 0x31},
		},
		{
			name:     "hex string with trailing newline",
			input:    []byte("43504431\n"),
			expected: []byte{0x43, 0x50, 0x44, 0x31},
		},
		{
			name:     "uppercase hex",
			input:    []byte("DEADBEEF"),
			expected: []byte{0xDE, 0xAD, 0xBE, 0xEF},
		},
		{
			name:     "raw bytes pass through",
			input:    []byte{0x00, 0x01, 0xFF},
			expected: []byte{0x00, 0x01, 0xFF},
		},
		{
			name:     "odd-length text treated as raw",
			input:    []byte("abc"),
			expected: []byte("abc"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ReadDescriptorInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	data := []byte{0x43, 0x50, 0x44, 0x31, 0x20, 0x04, 0xAB, 0xCD}

	for _, mode := range []OutputMode{ModeHex, ModeRaw} {
		var buf bytes.Buffer
		require.NoError(t, NewDetector(mode).WriteDescriptor(&buf, data))

		out, err := ReadDescriptorInput(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}
