package captypes

import "strings"

// CapabilityFlags is a 32-bit bitmask where each bit denotes one named
// security-relevant capability. Bit positions are part of the wire format:
// changing them invalidates previously encoded descriptors.
type CapabilityFlags uint32

// Capability flag bit assignments. The encoder, decoder, and report generator
// all share these constants so the round-trip invariant holds.
const (
	// FlagDestructive marks commands able to destroy or remove data
	FlagDestructive CapabilityFlags = 1 << 0

	// FlagNetworkAccess marks commands able to perform network operations
	FlagNetworkAccess CapabilityFlags = 1 << 1

	// FlagFileRead marks commands that read file contents
	FlagFileRead CapabilityFlags = 1 << 2

	// FlagFileWrite marks commands that write or modify files
	FlagFileWrite CapabilityFlags = 1 << 3

	// FlagSystemModification marks commands that modify system state
	FlagSystemModification CapabilityFlags = 1 << 4

	// FlagPrivilegeEscalation marks commands requiring or granting elevated privileges
	FlagPrivilegeEscalation CapabilityFlags = 1 << 5

	// FlagKernelInteraction marks commands interacting with the kernel or devices
	FlagKernelInteraction CapabilityFlags = 1 << 6
)

// flagNames lists every named bit in ascending bit order.
var flagNames = []struct {
	flag CapabilityFlags
	name string
}{
	{FlagDestructive, "destructive"},
	{FlagNetworkAccess, "network_access"},
	{FlagFileRead, "file_read"},
	{FlagFileWrite, "file_write"},
	{FlagSystemModification, "system_modification"},
	{FlagPrivilegeEscalation, "privilege_escalation"},
	{FlagKernelInteraction, "kernel_interaction"},
}

// Has reports whether all bits in mask are set.
func (f CapabilityFlags) Has(mask CapabilityFlags) bool {
	return f&mask == mask
}

// Names returns the names of all set bits in ascending bit order.
func (f CapabilityFlags) Names() []string {
	var names []string
	for _, entry := range flagNames {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return names
}

// String returns a pipe-separated list of set flag names, or "none".
func (f CapabilityFlags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
