// Package captypes defines the core data structures shared by the classifier,
// the descriptor codec, and the audit report generator. It includes the risk
// and privilege level enums, the evidence factor taxonomy, and the capability
// flag bit assignments.
package captypes

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// RiskLevel represents the overall security risk classification of a command.
type RiskLevel int

const (
	// RiskLevelSafe indicates commands with no identified security risk
	RiskLevelSafe RiskLevel = iota

	// RiskLevelLow indicates commands with minimal security risk
	RiskLevelLow

	// RiskLevelMedium indicates commands with moderate security risk
	RiskLevelMedium

	// RiskLevelHigh indicates commands with high security risk
	RiskLevelHigh

	// RiskLevelCritical indicates commands capable of irreversible system damage
	RiskLevelCritical
)

// Risk level string constants used for string representation and parsing.
const (
	safeRiskLevelString     = "safe"
	lowRiskLevelString      = "low_risk"
	mediumRiskLevelString   = "medium_risk"
	highRiskLevelString     = "high_risk"
	criticalRiskLevelString = "critical"
)

// String returns a string representation of RiskLevel
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelSafe:
		return safeRiskLevelString
	case RiskLevelLow:
		return lowRiskLevelString
	case RiskLevelMedium:
		return mediumRiskLevelString
	case RiskLevelHigh:
		return highRiskLevelString
	case RiskLevelCritical:
		return criticalRiskLevelString
	default:
		return safeRiskLevelString
	}
}

// Valid reports whether the level is one of the five defined values.
func (r RiskLevel) Valid() bool {
	return r >= RiskLevelSafe && r <= RiskLevelCritical
}

// ParseRiskLevel converts a string to RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch s {
	case safeRiskLevelString:
		return RiskLevelSafe, nil
	case lowRiskLevelString:
		return RiskLevelLow, nil
	case mediumRiskLevelString:
		return RiskLevelMedium, nil
	case highRiskLevelString:
		return RiskLevelHigh, nil
	case criticalRiskLevelString:
		return RiskLevelCritical, nil
	default:
		return RiskLevelSafe, fmt.Errorf("%w: %s (supported: safe, low_risk, medium_risk, high_risk, critical)", ErrInvalidRiskLevel, s)
	}
}

// MarshalJSON implements json.Marshaler interface
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler interface
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// PrivilegeLevel represents the execution privilege a command requires.
type PrivilegeLevel int

const (
	// PrivilegeUser indicates ordinary user privileges are sufficient
	PrivilegeUser PrivilegeLevel = iota

	// PrivilegeElevated indicates elevated privileges (sudo or equivalent) are suggested
	PrivilegeElevated

	// PrivilegeRoot indicates the command requires root privileges
	PrivilegeRoot
)

// String returns a string representation of PrivilegeLevel
func (p PrivilegeLevel) String() string {
	switch p {
	case PrivilegeUser:
		return "user"
	case PrivilegeElevated:
		return "elevated"
	case PrivilegeRoot:
		return "root"
	default:
		return "user"
	}
}

// Valid reports whether the level is one of the three defined values.
func (p PrivilegeLevel) Valid() bool {
	return p >= PrivilegeUser && p <= PrivilegeRoot
}

// ParsePrivilegeLevel converts a string to PrivilegeLevel
func ParsePrivilegeLevel(s string) (PrivilegeLevel, error) {
	switch s {
	case "user":
		return PrivilegeUser, nil
	case "elevated":
		return PrivilegeElevated, nil
	case "root":
		return PrivilegeRoot, nil
	default:
		return PrivilegeUser, fmt.Errorf("%w: %s (supported: user, elevated, root)", ErrInvalidPrivilegeLevel, s)
	}
}

// MarshalJSON implements json.Marshaler interface
func (p PrivilegeLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// FactorType identifies the category of textual signal an evidence item was
// produced from. The set is closed: the capability flag mapper matches it
// exhaustively and routes anything else through the unrecognized-category path.
type FactorType int

const (
	// FactorCommandName is a match against the command-name risk profile tables
	FactorCommandName FactorType = iota

	// FactorPrivilege is a privilege requirement indicator in the documentation
	FactorPrivilege

	// FactorDestructive is a destructive-capability signal
	FactorDestructive

	// FactorNetwork is a network operation signal
	FactorNetwork

	// FactorFileRead is a file read capability signal
	FactorFileRead

	// FactorFileWrite is a file write or modification capability signal
	FactorFileWrite

	// FactorSystemModification is a system-level modification signal
	FactorSystemModification

	// FactorKernel is a kernel interaction signal (modules, devices)
	FactorKernel

	// FactorSecurityNote is an explicit security warning in the documentation
	FactorSecurityNote

	// FactorKeyword is a generic risk-indicating keyword match
	FactorKeyword

	// FactorOption is a dangerous command option documented in the text
	FactorOption

	// FactorExample is a dangerous usage example in the documentation
	FactorExample
)

var factorNames = map[FactorType]string{
	FactorCommandName:        "command_name",
	FactorPrivilege:          "privilege_requirement",
	FactorDestructive:        "destructive_capability",
	FactorNetwork:            "network_access",
	FactorFileRead:           "file_read",
	FactorFileWrite:          "file_write",
	FactorSystemModification: "system_modification",
	FactorKernel:             "kernel_interaction",
	FactorSecurityNote:       "security_notes",
	FactorKeyword:            "keyword_analysis",
	FactorOption:             "option_analysis",
	FactorExample:            "example_analysis",
}

// String returns a string representation of FactorType
func (f FactorType) String() string {
	if name, ok := factorNames[f]; ok {
		return name
	}
	return fmt.Sprintf("unrecognized(%d)", int(f))
}

// ParseFactorType converts a string to FactorType
func ParseFactorType(s string) (FactorType, error) {
	for f, name := range factorNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFactorType, s)
}

// MarshalJSON implements json.Marshaler interface
func (f FactorType) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// EvidenceSource identifies where an evidence item came from.
type EvidenceSource string

// Evidence sources emitted by the built-in scanners.
const (
	SourceNameProfiles     EvidenceSource = "command_name_profiles"
	SourcePrivilegeScan    EvidenceSource = "privilege_indicator_scan"
	SourceDestructiveScan  EvidenceSource = "destructive_keyword_scan"
	SourceNetworkScan      EvidenceSource = "network_keyword_scan"
	SourceFileScan         EvidenceSource = "file_operation_scan"
	SourceSystemScan       EvidenceSource = "system_operation_scan"
	SourceSecurityNoteScan EvidenceSource = "security_note_scan"
	SourceKeywordScan      EvidenceSource = "generic_keyword_scan"
	SourceOptionScan       EvidenceSource = "option_scan"
	SourceExampleScan      EvidenceSource = "usage_example_scan"
	SourceDefault          EvidenceSource = "default_classification"
)

// MaxExcerptLen bounds the length of evidence excerpts carried in results and
// audit reports.
const MaxExcerptLen = 120

// BoundExcerpt truncates s to MaxExcerptLen, appending an ellipsis marker when
// truncation occurred.
func BoundExcerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxExcerptLen {
		return s
	}
	return s[:MaxExcerptLen-3] + "..."
}

// EvidenceItem is one detected textual signal contributing to a risk score.
// Items are immutable once created and are collected in discovery order.
type EvidenceItem struct {
	Factor           FactorType     `json:"factor_type"`
	Excerpt          string         `json:"evidence_text"`
	RiskContribution float64        `json:"risk_contribution"`
	Confidence       float64        `json:"confidence"`
	Source           EvidenceSource `json:"source"`
	Rationale        string         `json:"rationale"`
}

// LogValue implements slog.LogValuer for structured logging of evidence.
func (e EvidenceItem) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("factor", e.Factor.String()),
		slog.Float64("risk_contribution", e.RiskContribution),
		slog.Float64("confidence", e.Confidence),
		slog.String("source", string(e.Source)),
	)
}

// ClassificationResult is the complete outcome of one classification run.
// It is created once per run and never mutated afterwards; the doc checksum
// binds it to the exact documentation text consumed.
type ClassificationResult struct {
	Command          string
	RiskLevel        RiskLevel
	PrivilegeLevel   PrivilegeLevel
	RiskScore        float64
	DestructiveScore float64
	Flags            CapabilityFlags
	Evidence         []EvidenceItem
	DocChecksum      uint64
}
