package catalog

import (
	"errors"
	"fmt"
)

// Validation errors for FactorWeight and NameProfile
var (
	// ErrContributionOutOfRange is returned when a risk contribution is outside [0,1]
	ErrContributionOutOfRange = errors.New("risk contribution must be within [0,1]")

	// ErrConfidenceOutOfRange is returned when a confidence is outside [0,1]
	ErrConfidenceOutOfRange = errors.New("confidence must be within [0,1]")

	// ErrProfileWithoutCommands is returned when a profile definition names no commands
	ErrProfileWithoutCommands = errors.New("profile definition must name at least one command")
)

// FactorWeight is the contribution of one risk factor to a command's profile,
// with the confidence the catalog assigns to the signal and a human-readable
// rationale carried into the audit trail.
type FactorWeight struct {
	Contribution float64
	Confidence   float64
	Rationale    string
}

// Set reports whether the weight carries a non-zero contribution.
func (w FactorWeight) Set() bool {
	return w.Contribution > 0
}

func (w FactorWeight) validate() error {
	if w.Contribution < 0 || w.Contribution > 1 {
		return fmt.Errorf("%w (got %v)", ErrContributionOutOfRange, w.Contribution)
	}
	if w.Confidence < 0 || w.Confidence > 1 {
		return fmt.Errorf("%w (got %v)", ErrConfidenceOutOfRange, w.Confidence)
	}
	return nil
}

// NameProfile defines per-factor risk information for a command name.
// Factors are kept separate so each produces its own evidence item.
type NameProfile struct {
	PrivilegeRisk   FactorWeight // Risk from privilege escalation (sudo, su, doas)
	NetworkRisk     FactorWeight // Risk from network operations
	DestructionRisk FactorWeight // Risk from destructive operations (rm, dd, mkfs)
	FileReadRisk    FactorWeight // Risk from file read operations
	FileWriteRisk   FactorWeight // Risk from file write or modification operations
	SystemModRisk   FactorWeight // Risk from system modifications (systemctl, mount)
	KernelRisk      FactorWeight // Risk from kernel interaction (insmod, modprobe)
}

// Validate ensures every factor weight is within bounds.
func (p NameProfile) Validate() error {
	for _, w := range []FactorWeight{
		p.PrivilegeRisk, p.NetworkRisk, p.DestructionRisk,
		p.FileReadRisk, p.FileWriteRisk, p.SystemModRisk, p.KernelRisk,
	} {
		if err := w.validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProfileDef associates a list of command names with their risk profile
type ProfileDef struct {
	commands []string
	profile  NameProfile
}

// Commands returns a copy of the list of commands for this profile
func (d ProfileDef) Commands() []string {
	if d.commands == nil {
		return nil
	}
	result := make([]string, len(d.commands))
	copy(result, d.commands)
	return result
}

// Profile returns the risk profile
func (d ProfileDef) Profile() NameProfile {
	return d.profile
}

// ProfileBuilder builds a ProfileDef with explicit per-factor risk weights.
type ProfileBuilder struct {
	commands []string
	profile  NameProfile
}

// NewProfile starts a profile definition for the given command names.
func NewProfile(commands ...string) *ProfileBuilder {
	return &ProfileBuilder{commands: commands}
}

// PrivilegeRisk sets the privilege escalation risk factor.
func (b *ProfileBuilder) PrivilegeRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.PrivilegeRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// NetworkRisk sets the network operation risk factor.
func (b *ProfileBuilder) NetworkRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.NetworkRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// DestructionRisk sets the destructive operation risk factor.
func (b *ProfileBuilder) DestructionRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.DestructionRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// FileReadRisk sets the file read risk factor.
func (b *ProfileBuilder) FileReadRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.FileReadRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// FileWriteRisk sets the file write risk factor.
func (b *ProfileBuilder) FileWriteRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.FileWriteRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// SystemModRisk sets the system modification risk factor.
func (b *ProfileBuilder) SystemModRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.SystemModRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// KernelRisk sets the kernel interaction risk factor.
func (b *ProfileBuilder) KernelRisk(contribution, confidence float64, rationale string) *ProfileBuilder {
	b.profile.KernelRisk = FactorWeight{contribution, confidence, rationale}
	return b
}

// Build validates the definition and returns it. Invalid definitions are a
// programming error in the static catalog, so Build panics.
func (b *ProfileBuilder) Build() ProfileDef {
	if len(b.commands) == 0 {
		panic(ErrProfileWithoutCommands)
	}
	if err := b.profile.Validate(); err != nil {
		panic(fmt.Sprintf("invalid profile for %v: %v", b.commands, err))
	}
	return ProfileDef{commands: b.commands, profile: b.profile}
}
