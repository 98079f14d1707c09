// Package auditreport builds the per-command audit trail emitted after
// classification. A report carries the final levels, the aggregate scores,
// and every evidence item that contributed, so a reviewer can reconstruct
// exactly why a command was classified the way it was.
package auditreport

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
)

// Report is the serializable audit record for one classification run.
type Report struct {
	RunID                   string                  `json:"run_id"`
	Command                 string                  `json:"command"`
	FinalSecurityLevel      captypes.RiskLevel      `json:"final_security_level"`
	FinalPrivilegeLevel     captypes.PrivilegeLevel `json:"final_privilege_level"`
	ClassificationTimestamp string                  `json:"classification_timestamp"`
	ClassifierVersion       string                  `json:"classifier_version"`
	RiskEvidence            []captypes.EvidenceItem `json:"risk_evidence"`
	SecurityScore           float64                 `json:"security_score"`
	PrivilegeScore          float64                 `json:"privilege_score"`
	DestructiveScore        float64                 `json:"destructive_score"`
	SecurityFlags           uint32                  `json:"security_flags"`
	ManPageChecksum         string                  `json:"man_page_checksum"`
	DataSources             []string                `json:"data_sources"`
	Summary                 Summary                 `json:"summary"`
}

// Confidence band boundaries for evidence triage counts.
const (
	highConfidenceFloor   = 0.8
	mediumConfidenceFloor = 0.5
)

// Summary aggregates evidence counts for quick triage without reading the
// full evidence list.
type Summary struct {
	EvidenceCount       int            `json:"evidence_count"`
	HighConfidence      int            `json:"high_confidence"`
	MediumConfidence    int            `json:"medium_confidence"`
	LowConfidence       int            `json:"low_confidence"`
	ConfidenceAggregate float64        `json:"confidence_aggregate"`
	FactorCounts        map[string]int `json:"factor_counts"`
	CapabilityBits      []string       `json:"capability_bits"`
}

// New builds a report from a classification result. The run ID ties together
// all reports produced by one invocation; pass an empty string to have one
// generated.
func New(result captypes.ClassificationResult, runID string, at time.Time) *Report {
	if runID == "" {
		runID = uuid.New().String()
	}

	evidence := result.Evidence
	if evidence == nil {
		evidence = []captypes.EvidenceItem{}
	}

	return &Report{
		RunID:                   runID,
		Command:                 result.Command,
		FinalSecurityLevel:      result.RiskLevel,
		FinalPrivilegeLevel:     result.PrivilegeLevel,
		ClassificationTimestamp: at.UTC().Format(time.RFC3339),
		ClassifierVersion:       classifier.Version,
		RiskEvidence:            evidence,
		SecurityScore:           result.RiskScore,
		PrivilegeScore:          classifier.PrivilegeScore(evidence),
		DestructiveScore:        result.DestructiveScore,
		SecurityFlags:           uint32(result.Flags),
		ManPageChecksum:         fmt.Sprintf("%016x", result.DocChecksum),
		DataSources:             dataSources(evidence),
		Summary:                 summarize(result, evidence),
	}
}

// dataSources returns the distinct evidence sources in first-seen order.
func dataSources(evidence []captypes.EvidenceItem) []string {
	seen := make(map[captypes.EvidenceSource]struct{}, len(evidence))
	sources := make([]string, 0, len(evidence))
	for _, e := range evidence {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		sources = append(sources, string(e.Source))
	}
	return sources
}

func summarize(result captypes.ClassificationResult, evidence []captypes.EvidenceItem) Summary {
	counts := make(map[string]int, len(evidence))
	var high, medium, low int
	var confidenceSum float64
	for _, e := range evidence {
		counts[e.Factor.String()]++
		confidenceSum += e.Confidence
		switch {
		case e.Confidence >= highConfidenceFloor:
			high++
		case e.Confidence >= mediumConfidenceFloor:
			medium++
		default:
			low++
		}
	}

	var aggregate float64
	if len(evidence) > 0 {
		aggregate = confidenceSum / float64(len(evidence))
	}

	bits := result.Flags.Names()
	if bits == nil {
		bits = []string{}
	}

	return Summary{
		EvidenceCount:       len(evidence),
		HighConfidence:      high,
		MediumConfidence:    medium,
		LowConfidence:       low,
		ConfidenceAggregate: aggregate,
		FactorCounts:        counts,
		CapabilityBits:      bits,
	}
}

// MarshalIndent serializes the report as indented JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit report: %w", err)
	}
	return data, nil
}

// Render writes a human-readable rendering of the report, grouping evidence
// by factor in descending contribution order within each group.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Audit report for %q (run %s)\n", r.Command, r.RunID)
	fmt.Fprintf(&b, "  classified at:    %s (classifier %s)\n", r.ClassificationTimestamp, r.ClassifierVersion)
	fmt.Fprintf(&b, "  security level:   %s (score %.3f)\n", r.FinalSecurityLevel, r.SecurityScore)
	fmt.Fprintf(&b, "  privilege level:  %s (score %.3f)\n", r.FinalPrivilegeLevel, r.PrivilegeScore)
	fmt.Fprintf(&b, "  destructive:      %.3f\n", r.DestructiveScore)
	if len(r.Summary.CapabilityBits) > 0 {
		fmt.Fprintf(&b, "  capabilities:     %s\n", strings.Join(r.Summary.CapabilityBits, ", "))
	} else {
		fmt.Fprintf(&b, "  capabilities:     none\n")
	}
	fmt.Fprintf(&b, "  doc checksum:     %s\n", r.ManPageChecksum)

	groups := groupEvidence(r.RiskEvidence)
	fmt.Fprintf(&b, "  evidence (%d items):\n", r.Summary.EvidenceCount)
	for _, g := range groups {
		fmt.Fprintf(&b, "    [%s]\n", g.factor)
		for _, e := range g.items {
			fmt.Fprintf(&b, "      %.2f x %.2f  %s: %q\n", e.RiskContribution, e.Confidence, e.Rationale, e.Excerpt)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type evidenceGroup struct {
	factor string
	items  []captypes.EvidenceItem
}

func groupEvidence(evidence []captypes.EvidenceItem) []evidenceGroup {
	byFactor := make(map[string][]captypes.EvidenceItem)
	order := make([]string, 0)
	for _, e := range evidence {
		name := e.Factor.String()
		if _, ok := byFactor[name]; !ok {
			order = append(order, name)
		}
		byFactor[name] = append(byFactor[name], e)
	}

	groups := make([]evidenceGroup, 0, len(order))
	for _, name := range order {
		items := byFactor[name]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].RiskContribution > items[j].RiskContribution
		})
		groups = append(groups, evidenceGroup{factor: name, items: items})
	}
	return groups
}
