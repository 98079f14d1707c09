package descriptor

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Family construction errors
var (
	// ErrEmptyFamily is returned when a family is built from no subcommands
	ErrEmptyFamily = errors.New("family requires at least one subcommand")

	// ErrForeignSubcommand is returned when a result does not belong to the
	// family's root command
	ErrForeignSubcommand = errors.New("subcommand does not belong to family root")

	// ErrUnknownSubcommand is returned when encoding a delta for a name the
	// family does not contain
	ErrUnknownSubcommand = errors.New("unknown subcommand")
)

// DeltaSize is the fixed length of a subcommand delta record.
const DeltaSize = 8

// Family record byte offsets. The family record reuses the 24-byte envelope
// with the family variant declared in the composite byte.
const (
	offFamilyFloor  = 5
	offFamilyRoot   = 6
	offFamilyCount  = 8
	offFamilyFlags  = 10
	familyCRCOffset = 20
)

// Delta record byte offsets.
const (
	offDeltaName  = 0
	offDeltaFlags = 2
	offDeltaRisk  = 6
)

// subEntry is one subcommand's delta against the family's common flags.
type subEntry struct {
	name       string
	deltaFlags captypes.CapabilityFlags
	riskDelta  byte
}

// Family factors the capability bits common to all subcommands of one root
// command into a single descriptor, leaving per-subcommand XOR deltas.
// A Family owns its entries for its whole lifetime and is immutable after
// construction.
type Family struct {
	root        string
	commonFlags captypes.CapabilityFlags
	riskFloor   captypes.RiskLevel
	subcommands []subEntry
	index       map[string]int
}

// NewFamily builds a family descriptor from per-subcommand classification
// results sharing the given root command name. Each result's command must be
// either the bare subcommand name or "root subcommand".
func NewFamily(root string, results []captypes.ClassificationResult) (*Family, error) {
	if len(results) == 0 {
		return nil, ErrEmptyFamily
	}

	f := &Family{
		root:        root,
		riskFloor:   captypes.RiskLevelCritical,
		subcommands: make([]subEntry, 0, len(results)),
		index:       make(map[string]int, len(results)),
	}

	// Common flags are the intersection across all subcommands.
	common := results[0].Flags
	for _, r := range results[1:] {
		common &= r.Flags
	}
	f.commonFlags = common

	for _, r := range results {
		name, err := subcommandName(root, r.Command)
		if err != nil {
			return nil, err
		}
		if r.RiskLevel < f.riskFloor {
			f.riskFloor = r.RiskLevel
		}
		f.index[name] = len(f.subcommands)
		f.subcommands = append(f.subcommands, subEntry{
			name:       name,
			deltaFlags: common ^ r.Flags,
			riskDelta:  0, // fixed up below once the floor is known
		})
	}
	for i, r := range results {
		f.subcommands[i].riskDelta = byte(r.RiskLevel - f.riskFloor)
	}

	return f, nil
}

func subcommandName(root, command string) (string, error) {
	if rest, ok := strings.CutPrefix(command, root+" "); ok {
		return rest, nil
	}
	if command == "" || command == root {
		return "", fmt.Errorf("%w: %q under root %q", ErrForeignSubcommand, command, root)
	}
	if strings.Contains(command, " ") {
		return "", fmt.Errorf("%w: %q under root %q", ErrForeignSubcommand, command, root)
	}
	return command, nil
}

// Root returns the family's root command name.
func (f *Family) Root() string { return f.root }

// CommonFlags returns the bitwise AND of all subcommand capability flags.
func (f *Family) CommonFlags() captypes.CapabilityFlags { return f.commonFlags }

// RiskFloor returns the minimum risk level across subcommands.
func (f *Family) RiskFloor() captypes.RiskLevel { return f.riskFloor }

// Subcommands returns subcommand names in construction order.
func (f *Family) Subcommands() []string {
	names := make([]string, len(f.subcommands))
	for i, s := range f.subcommands {
		names[i] = s.name
	}
	return names
}

// DeltaFlags returns the XOR delta stored for a subcommand.
func (f *Family) DeltaFlags(name string) (captypes.CapabilityFlags, bool) {
	i, ok := f.index[name]
	if !ok {
		return 0, false
	}
	return f.subcommands[i].deltaFlags, true
}

// SubcommandFlags reconstructs a subcommand's full capability flags.
func (f *Family) SubcommandFlags(name string) (captypes.CapabilityFlags, bool) {
	delta, ok := f.DeltaFlags(name)
	if !ok {
		return 0, false
	}
	return f.commonFlags ^ delta, true
}

// EncodeFamily serializes the family record. It shares the 24-byte envelope
// with the full descriptor: magic marker, composite byte, trailing CRC-32.
func EncodeFamily(f *Family) []byte {
	buf := make([]byte, FullSize)
	copy(buf[offMagic:], Magic[:])
	buf[offComposite] = composite(VariantFamily)
	buf[offFamilyFloor] = byte(f.riskFloor)
	binary.BigEndian.PutUint16(buf[offFamilyRoot:], nameHash16(f.root))
	count := len(f.subcommands)
	if count > 0xFFFF {
		count = 0xFFFF
	}
	binary.BigEndian.PutUint16(buf[offFamilyCount:], uint16(count))
	binary.BigEndian.PutUint32(buf[offFamilyFlags:], uint32(f.commonFlags))
	// bytes [14:20) reserved, zero
	binary.BigEndian.PutUint32(buf[familyCRCOffset:], crc32.ChecksumIEEE(buf[:familyCRCOffset]))
	return buf
}

// EncodeDelta serializes the delta record for one subcommand.
func EncodeDelta(f *Family, name string) ([]byte, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in family %q", ErrUnknownSubcommand, name, f.root)
	}
	sub := f.subcommands[i]

	buf := make([]byte, DeltaSize)
	binary.BigEndian.PutUint16(buf[offDeltaName:], nameHash16(name))
	binary.BigEndian.PutUint32(buf[offDeltaFlags:], uint32(sub.deltaFlags))
	buf[offDeltaRisk] = sub.riskDelta
	return buf, nil
}

// FamilyRecord is a decoded family descriptor.
type FamilyRecord struct {
	RiskFloor      captypes.RiskLevel
	RootHashPrefix uint16
	SubcommandN    uint16
	CommonFlags    captypes.CapabilityFlags
}

// SubcommandRecord is a subcommand reconstructed from a family record plus a
// delta record.
type SubcommandRecord struct {
	NameHashPrefix uint16
	RiskLevel      captypes.RiskLevel
	Flags          captypes.CapabilityFlags
}

// DecodeFamily validates and unpacks a family record.
func DecodeFamily(data []byte) (FamilyRecord, error) {
	if len(data) != FullSize {
		return FamilyRecord{}, fmt.Errorf("%w: invalid family record length %d (expected %d)",
			captypes.ErrMalformedDescriptor, len(data), FullSize)
	}
	if [4]byte(data[offMagic:offMagic+4]) != Magic {
		return FamilyRecord{}, fmt.Errorf("%w: bad magic marker", captypes.ErrMalformedDescriptor)
	}
	if data[offComposite] != composite(VariantFamily) {
		return FamilyRecord{}, fmt.Errorf("%w: composite byte 0x%02x is not a family record",
			captypes.ErrMalformedDescriptor, data[offComposite])
	}
	want := binary.BigEndian.Uint32(data[familyCRCOffset:])
	if got := crc32.ChecksumIEEE(data[:familyCRCOffset]); got != want {
		return FamilyRecord{}, fmt.Errorf("%w: checksum mismatch (stored 0x%08x, computed 0x%08x)",
			captypes.ErrMalformedDescriptor, want, got)
	}

	floor := captypes.RiskLevel(data[offFamilyFloor])
	if !floor.Valid() {
		return FamilyRecord{}, fmt.Errorf("%w: risk floor byte %d out of range",
			captypes.ErrMalformedDescriptor, data[offFamilyFloor])
	}

	return FamilyRecord{
		RiskFloor:      floor,
		RootHashPrefix: binary.BigEndian.Uint16(data[offFamilyRoot:]),
		SubcommandN:    binary.BigEndian.Uint16(data[offFamilyCount:]),
		CommonFlags:    captypes.CapabilityFlags(binary.BigEndian.Uint32(data[offFamilyFlags:])),
	}, nil
}

// DecodeSubcommand reconstructs a subcommand from its family record and delta
// record. Decoding a delta without its family context is undefined and is
// rejected with ErrMissingFamilyContext.
func DecodeSubcommand(family *FamilyRecord, delta []byte) (SubcommandRecord, error) {
	if family == nil {
		return SubcommandRecord{}, fmt.Errorf("%w: delta records cannot be decoded alone", captypes.ErrMissingFamilyContext)
	}
	if len(delta) != DeltaSize {
		return SubcommandRecord{}, fmt.Errorf("%w: invalid delta record length %d (expected %d)",
			captypes.ErrMalformedDescriptor, len(delta), DeltaSize)
	}

	level := family.RiskFloor + captypes.RiskLevel(delta[offDeltaRisk])
	if level > captypes.RiskLevelCritical {
		return SubcommandRecord{}, fmt.Errorf("%w: risk delta %d exceeds level range above floor %s",
			captypes.ErrMalformedDescriptor, delta[offDeltaRisk], family.RiskFloor)
	}

	return SubcommandRecord{
		NameHashPrefix: binary.BigEndian.Uint16(delta[offDeltaName:]),
		RiskLevel:      level,
		Flags:          family.CommonFlags ^ captypes.CapabilityFlags(binary.BigEndian.Uint32(delta[offDeltaFlags:])),
	}, nil
}

// nameHash16 is the 16-bit identifier prefix derived from a name.
func nameHash16(name string) uint16 {
	sum := sha256.Sum256([]byte(name))
	return binary.BigEndian.Uint16(sum[:2])
}
