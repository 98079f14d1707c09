// Package classifier implements the evidence-weighted risk classifier. It
// scans a command's documentation text against the static evidence catalog,
// aggregates the detected signals into a bounded risk score, and derives the
// discrete risk level, privilege level, and capability flags.
//
// Classification is a pure function of its inputs and the catalog: no I/O, no
// shared mutable state, safe for concurrent use.
package classifier

import (
	"log/slog"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/catalog"
)

// Version identifies the classifier revision recorded in audit reports.
// Bump it whenever catalog contents or aggregation rules change observable
// classifications.
const Version = "2.0.0"

// OverridePolicy selects how a single dominant evidence item interacts with
// the confidence-weighted average when picking the final risk level.
type OverridePolicy int

const (
	// OverrideDominantEvidence lets any evidence item with confidence above
	// 0.9 and risk contribution above 0.85 force a floor on the final risk
	// level. This preserves the observed behavior where a name match on rm or
	// dd dominates an otherwise medium averaged score.
	OverrideDominantEvidence OverridePolicy = iota

	// OverrideNone classifies purely by the confidence-weighted average.
	OverrideNone
)

// Thresholds for the dominant-evidence override rule.
const (
	overrideConfidenceThreshold   = 0.9
	overrideContributionThreshold = 0.85
)

// Risk score boundaries between adjacent risk levels.
const (
	lowRiskBoundary      = 0.2
	mediumRiskBoundary   = 0.4
	highRiskBoundary     = 0.6
	criticalRiskBoundary = 0.8
)

// Privilege score boundaries.
const (
	rootPrivilegeBoundary     = 0.8
	elevatedPrivilegeBoundary = 0.6
)

// flagInclusionThreshold is the minimum contribution for an evidence item to
// set its category's capability bit.
const flagInclusionThreshold = 0.0

// Options configures a Classifier.
type Options struct {
	// Override selects the score-vs-dominant-evidence policy.
	Override OverridePolicy

	// Logger receives unrecognized-category events from the flag mapper.
	// Defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Classifier turns (command, documentation) pairs into classification results.
// A Classifier is immutable and safe for concurrent use.
type Classifier struct {
	catalog *catalog.Catalog
	opts    Options
}

// New creates a classifier over the given catalog. A nil catalog uses the
// built-in default.
func New(cat *catalog.Catalog, opts Options) *Classifier {
	if cat == nil {
		cat = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Classifier{catalog: cat, opts: opts}
}

// Classify scans the documentation text and produces a complete
// classification result. Empty documentation is not an error: classification
// degrades to the command-name check alone with low confidence.
func (c *Classifier) Classify(command, doc string) captypes.ClassificationResult {
	in := newScanInput(command, doc)

	var evidence []captypes.EvidenceItem
	emit := func(item captypes.EvidenceItem) {
		evidence = append(evidence, item)
	}

	if doc == "" {
		// Degraded mode: only the name-profile source has anything to scan.
		scanNameProfiles(in, c.catalog, emit)
	} else {
		for _, scan := range scanners {
			scan(in, c.catalog, emit)
		}
	}

	score := weightedScore(evidence)
	level := c.riskLevel(score, evidence)

	result := captypes.ClassificationResult{
		Command:          command,
		RiskLevel:        level,
		PrivilegeLevel:   privilegeLevel(evidence),
		RiskScore:        score,
		DestructiveScore: destructiveScore(evidence),
		Evidence:         evidence,
		DocChecksum:      DocChecksum(command, doc),
	}
	result.Flags = MapFlags(evidence, c.opts.Logger)
	return result
}

// weightedScore reduces the evidence list to a confidence-weighted aggregate
// clamped to [0,1]. An empty evidence list scores zero.
func weightedScore(evidence []captypes.EvidenceItem) float64 {
	var weighted, total float64
	for _, e := range evidence {
		weighted += e.RiskContribution * e.Confidence
		total += e.Confidence
	}
	if total == 0 {
		return 0
	}
	score := weighted / total
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// bucketLevel thresholds a score in [0,1] into a discrete risk level.
func bucketLevel(score float64) captypes.RiskLevel {
	switch {
	case score < lowRiskBoundary:
		return captypes.RiskLevelSafe
	case score < mediumRiskBoundary:
		return captypes.RiskLevelLow
	case score < highRiskBoundary:
		return captypes.RiskLevelMedium
	case score < criticalRiskBoundary:
		return captypes.RiskLevelHigh
	default:
		return captypes.RiskLevelCritical
	}
}

// riskLevel applies the configured override policy on top of the score bucket.
func (c *Classifier) riskLevel(score float64, evidence []captypes.EvidenceItem) captypes.RiskLevel {
	level := bucketLevel(score)
	if c.opts.Override != OverrideDominantEvidence {
		return level
	}

	for _, e := range evidence {
		if e.Confidence > overrideConfidenceThreshold && e.RiskContribution > overrideContributionThreshold {
			if floor := bucketLevel(e.RiskContribution); floor > level {
				level = floor
			}
		}
	}
	return level
}

// privilegeLevel derives the privilege requirement from the privilege-factor
// evidence subset alone. Absent such evidence, user privileges are assumed.
func privilegeLevel(evidence []captypes.EvidenceItem) captypes.PrivilegeLevel {
	var maxContribution float64
	for _, e := range evidence {
		if e.Factor == captypes.FactorPrivilege && e.RiskContribution > maxContribution {
			maxContribution = e.RiskContribution
		}
	}
	switch {
	case maxContribution >= rootPrivilegeBoundary:
		return captypes.PrivilegeRoot
	case maxContribution >= elevatedPrivilegeBoundary:
		return captypes.PrivilegeElevated
	default:
		return captypes.PrivilegeUser
	}
}

// destructiveScore is the maximum contribution among destructive evidence,
// zero when none was found.
func destructiveScore(evidence []captypes.EvidenceItem) float64 {
	var max float64
	for _, e := range evidence {
		if e.Factor == captypes.FactorDestructive && e.RiskContribution > max {
			max = e.RiskContribution
		}
	}
	return max
}

// PrivilegeScore exposes the maximum privilege-factor contribution for audit
// reporting. Defaults to 0.1 when no privilege evidence exists, matching the
// default low privilege assumption.
func PrivilegeScore(evidence []captypes.EvidenceItem) float64 {
	found := false
	var max float64
	for _, e := range evidence {
		if e.Factor == captypes.FactorPrivilege {
			found = true
			if e.RiskContribution > max {
				max = e.RiskContribution
			}
		}
	}
	if !found {
		return 0.1
	}
	return max
}
