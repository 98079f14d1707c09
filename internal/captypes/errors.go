package captypes

import "errors"

// Sentinel errors shared across packages. Binary decode errors are strict
// contracts; text-side conditions (empty documentation, unrecognized
// categories) are deliberately not errors.
var (
	// ErrMalformedDescriptor is returned when descriptor bytes have the wrong
	// length, a bad magic marker, an unknown variant, or a checksum mismatch
	ErrMalformedDescriptor = errors.New("malformed descriptor")

	// ErrMissingFamilyContext is returned when a subcommand delta record is
	// decoded without its family descriptor
	ErrMissingFamilyContext = errors.New("missing family context")

	// ErrInvalidRiskLevel is returned when a risk level string cannot be parsed
	ErrInvalidRiskLevel = errors.New("invalid risk level")

	// ErrInvalidPrivilegeLevel is returned when a privilege level string cannot be parsed
	ErrInvalidPrivilegeLevel = errors.New("invalid privilege level")

	// ErrInvalidFactorType is returned when a factor type string cannot be parsed
	ErrInvalidFactorType = errors.New("invalid factor type")
)
