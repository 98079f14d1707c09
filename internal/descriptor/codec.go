// Package descriptor implements the fixed-width binary capability descriptor
// codec and its hierarchical family variant. The wire format is a safety
// contract: fixed length, literal magic marker, and a trailing CRC-32 let a
// consumer make constant-time trust decisions without parsing prose.
package descriptor

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Magic is the literal marker opening every descriptor record.
var Magic = [4]byte{'C', 'P', 'D', '1'}

// FormatGeneration is packed into the high nibble of the composite byte.
// Bumping it invalidates all previously encoded descriptors.
const FormatGeneration = 2

// Variant selects the record layout, declared in the low nibble of the
// composite byte.
type Variant byte

const (
	// VariantFull is the 24-byte record carrying all three performance hints
	VariantFull Variant = iota

	// VariantLean is the 22-byte record omitting the output-size hint
	VariantLean

	// VariantFamily is the 24-byte family record for command families
	VariantFamily
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "full"
	case VariantLean:
		return "lean"
	case VariantFamily:
		return "family"
	default:
		return fmt.Sprintf("variant(%d)", byte(v))
	}
}

// Record sizes per variant.
const (
	FullSize = 24
	LeanSize = 22
)

// Byte offsets shared by the full and lean layouts. The checksum trails the
// record: bytes [20:24) for full, [18:22) for lean.
const (
	offMagic       = 0
	offComposite   = 4
	offLevel       = 5
	offHashPrefix  = 6
	offLatency     = 8
	offMemory      = 10
	offFlags       = 12
	offRiskByte    = 16
	offPrivilege   = 17
	offOutputHint  = 18
	fullPayloadLen = 20
	leanPayloadLen = 18
)

// PerfHints are externally supplied performance estimates carried opaquely in
// the descriptor. Units are defined by the caller, not by this codec.
type PerfHints struct {
	LatencyEstimate uint16
	MemoryEstimate  uint16
	OutputEstimate  uint16 // dropped by the lean variant
}

// Decoded is the result of decoding a descriptor record. The evidence list is
// not recoverable: the binary form is a deliberate lossy compression of the
// full audit trail.
type Decoded struct {
	Variant        Variant
	RiskLevel      captypes.RiskLevel
	PrivilegeLevel captypes.PrivilegeLevel
	Flags          captypes.CapabilityFlags
	RiskByte       byte // risk score quantized to 0-255
	HashPrefix     uint16
	Hints          PerfHints
}

// Encode serializes a classification result into a fixed-width descriptor.
// Encoding is total over well-formed results; only an unknown variant fails.
func Encode(result captypes.ClassificationResult, hints PerfHints, variant Variant) ([]byte, error) {
	var size, payloadLen int
	switch variant {
	case VariantFull:
		size, payloadLen = FullSize, fullPayloadLen
	case VariantLean:
		size, payloadLen = LeanSize, leanPayloadLen
	default:
		return nil, fmt.Errorf("%w: cannot encode variant %s", captypes.ErrMalformedDescriptor, variant)
	}

	buf := make([]byte, size)
	copy(buf[offMagic:], Magic[:])
	buf[offComposite] = composite(variant)
	buf[offLevel] = byte(result.RiskLevel)
	binary.BigEndian.PutUint16(buf[offHashPrefix:], uint16(result.DocChecksum>>48))
	binary.BigEndian.PutUint16(buf[offLatency:], hints.LatencyEstimate)
	binary.BigEndian.PutUint16(buf[offMemory:], hints.MemoryEstimate)
	binary.BigEndian.PutUint32(buf[offFlags:], uint32(result.Flags))
	buf[offRiskByte] = quantizeScore(result.RiskScore)
	buf[offPrivilege] = byte(result.PrivilegeLevel)
	if variant == VariantFull {
		binary.BigEndian.PutUint16(buf[offOutputHint:], hints.OutputEstimate)
	}

	checksum := crc32.ChecksumIEEE(buf[:payloadLen])
	binary.BigEndian.PutUint32(buf[payloadLen:], checksum)
	return buf, nil
}

// Decode validates and unpacks a descriptor record. It fails with
// ErrMalformedDescriptor on any length, magic, variant, or checksum mismatch.
func Decode(data []byte) (Decoded, error) {
	var variant Variant
	var payloadLen int
	switch len(data) {
	case FullSize:
		variant, payloadLen = VariantFull, fullPayloadLen
	case LeanSize:
		variant, payloadLen = VariantLean, leanPayloadLen
	default:
		return Decoded{}, fmt.Errorf("%w: invalid length %d (expected %d or %d)",
			captypes.ErrMalformedDescriptor, len(data), FullSize, LeanSize)
	}

	if [4]byte(data[offMagic:offMagic+4]) != Magic {
		return Decoded{}, fmt.Errorf("%w: bad magic marker", captypes.ErrMalformedDescriptor)
	}
	if data[offComposite] != composite(variant) {
		return Decoded{}, fmt.Errorf("%w: composite byte 0x%02x does not declare %s variant of generation %d",
			captypes.ErrMalformedDescriptor, data[offComposite], variant, FormatGeneration)
	}

	want := binary.BigEndian.Uint32(data[payloadLen:])
	if got := crc32.ChecksumIEEE(data[:payloadLen]); got != want {
		return Decoded{}, fmt.Errorf("%w: checksum mismatch (stored 0x%08x, computed 0x%08x)",
			captypes.ErrMalformedDescriptor, want, got)
	}

	level := captypes.RiskLevel(data[offLevel])
	if !level.Valid() {
		return Decoded{}, fmt.Errorf("%w: risk level byte %d out of range", captypes.ErrMalformedDescriptor, data[offLevel])
	}
	privilege := captypes.PrivilegeLevel(data[offPrivilege])
	if !privilege.Valid() {
		return Decoded{}, fmt.Errorf("%w: privilege byte %d out of range", captypes.ErrMalformedDescriptor, data[offPrivilege])
	}

	decoded := Decoded{
		Variant:        variant,
		RiskLevel:      level,
		PrivilegeLevel: privilege,
		Flags:          captypes.CapabilityFlags(binary.BigEndian.Uint32(data[offFlags:])),
		RiskByte:       data[offRiskByte],
		HashPrefix:     binary.BigEndian.Uint16(data[offHashPrefix:]),
		Hints: PerfHints{
			LatencyEstimate: binary.BigEndian.Uint16(data[offLatency:]),
			MemoryEstimate:  binary.BigEndian.Uint16(data[offMemory:]),
		},
	}
	if variant == VariantFull {
		decoded.Hints.OutputEstimate = binary.BigEndian.Uint16(data[offOutputHint:])
	}
	return decoded, nil
}

// composite packs the format generation and variant into one byte.
func composite(v Variant) byte {
	return byte(FormatGeneration<<4) | byte(v&0x0F)
}

// quantizeScore maps a score in [0,1] onto 0-255.
func quantizeScore(score float64) byte {
	if score <= 0 {
		return 0
	}
	if score >= 1 {
		return 255
	}
	return byte(score*255 + 0.5)
}
