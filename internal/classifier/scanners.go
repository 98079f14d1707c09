package classifier

import (
	"strings"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/catalog"
)

// scanInput carries the pre-lowered documentation text shared by all scanners.
type scanInput struct {
	command  string
	doc      string
	lowerDoc string
	lines    []string
}

func newScanInput(command, doc string) scanInput {
	lower := strings.ToLower(doc)
	return scanInput{
		command:  command,
		doc:      doc,
		lowerDoc: lower,
		lines:    strings.Split(lower, "\n"),
	}
}

// emitFunc receives evidence items in discovery order.
type emitFunc func(captypes.EvidenceItem)

// scanner is one independent pattern source. Scanners never deduplicate
// against each other; overlapping detections contribute independently.
type scanner func(in scanInput, cat *catalog.Catalog, emit emitFunc)

// scanners lists all pattern sources in their fixed execution order.
// Order is part of the determinism contract: evidence sequences compare
// byte-identical across runs.
var scanners = []scanner{
	scanNameProfiles,
	scanPrivilegeIndicators,
	scanFactorKeywords,
	scanSecurityNotes,
	scanGenericKeywords,
	scanOptions,
	scanExamples,
}

// scanNameProfiles checks the command name against the catalog's risk profile
// tables, emitting one evidence item per non-zero risk factor. This scanner is
// the only one that runs on empty documentation.
func scanNameProfiles(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	profile, ok := cat.Profile(in.command)
	if !ok {
		emit(captypes.EvidenceItem{
			Factor:           captypes.FactorCommandName,
			Excerpt:          captypes.BoundExcerpt("command '" + in.command + "' not in known risk pattern databases"),
			RiskContribution: 0.1,
			Confidence:       0.5,
			Source:           captypes.SourceDefault,
			Rationale:        "No specific risk patterns identified for this command name",
		})
		return
	}

	emitWeight := func(factor captypes.FactorType, w catalog.FactorWeight) {
		if !w.Set() {
			return
		}
		emit(captypes.EvidenceItem{
			Factor:           factor,
			Excerpt:          captypes.BoundExcerpt("command '" + in.command + "' matches " + factor.String() + " risk profile"),
			RiskContribution: w.Contribution,
			Confidence:       w.Confidence,
			Source:           captypes.SourceNameProfiles,
			Rationale:        w.Rationale,
		})
	}

	emitWeight(captypes.FactorPrivilege, profile.PrivilegeRisk)
	emitWeight(captypes.FactorNetwork, profile.NetworkRisk)
	emitWeight(captypes.FactorDestructive, profile.DestructionRisk)
	emitWeight(captypes.FactorFileRead, profile.FileReadRisk)
	emitWeight(captypes.FactorFileWrite, profile.FileWriteRisk)
	emitWeight(captypes.FactorSystemModification, profile.SystemModRisk)
	emitWeight(captypes.FactorKernel, profile.KernelRisk)
}

// scanPrivilegeIndicators detects privilege requirement statements.
func scanPrivilegeIndicators(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	for _, entry := range cat.PrivilegePhrases() {
		if strings.Contains(in.lowerDoc, entry.Phrase) {
			emit(captypes.EvidenceItem{
				Factor:           entry.Factor,
				Excerpt:          captypes.BoundExcerpt("documentation contains privilege indicator: '" + entry.Phrase + "'"),
				RiskContribution: entry.Contribution,
				Confidence:       entry.Confidence,
				Source:           captypes.SourcePrivilegeScan,
				Rationale:        entry.Rationale,
			})
		}
	}
}

// scanFactorKeywords runs the factor-specific keyword tables over the text.
func scanFactorKeywords(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	for _, entry := range cat.Keywords() {
		if !strings.Contains(in.lowerDoc, entry.Phrase) {
			continue
		}
		source := sourceForFactor(entry.Factor)
		emit(captypes.EvidenceItem{
			Factor:           entry.Factor,
			Excerpt:          captypes.BoundExcerpt("documentation contains '" + entry.Phrase + "'"),
			RiskContribution: entry.Contribution,
			Confidence:       entry.Confidence,
			Source:           source,
			Rationale:        entry.Rationale,
		})
	}
}

func sourceForFactor(f captypes.FactorType) captypes.EvidenceSource {
	switch f {
	case captypes.FactorDestructive:
		return captypes.SourceDestructiveScan
	case captypes.FactorNetwork:
		return captypes.SourceNetworkScan
	case captypes.FactorFileRead, captypes.FactorFileWrite:
		return captypes.SourceFileScan
	case captypes.FactorSystemModification, captypes.FactorKernel:
		return captypes.SourceSystemScan
	default:
		return captypes.SourceKeywordScan
	}
}

// scanSecurityNotes flags documentation lines carrying explicit warnings. The
// whole line is excerpted so reviewers can see the warning in context.
func scanSecurityNotes(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	for _, line := range in.lines {
		for _, marker := range cat.NoteMarkers() {
			if strings.Contains(line, marker.Marker) {
				emit(captypes.EvidenceItem{
					Factor:           captypes.FactorSecurityNote,
					Excerpt:          captypes.BoundExcerpt(line),
					RiskContribution: marker.Contribution,
					Confidence:       0.95,
					Source:           captypes.SourceSecurityNoteScan,
					Rationale:        "Explicit security warning in documentation",
				})
				// One note per line; the strongest markers are listed first.
				break
			}
		}
	}
}

// scanGenericKeywords runs the weak high-recall keyword list.
func scanGenericKeywords(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	for _, entry := range cat.GenericKeywords() {
		if strings.Contains(in.lowerDoc, entry.Phrase) {
			emit(captypes.EvidenceItem{
				Factor:           entry.Factor,
				Excerpt:          captypes.BoundExcerpt("high-risk keyword found: '" + entry.Phrase + "'"),
				RiskContribution: entry.Contribution,
				Confidence:       entry.Confidence,
				Source:           captypes.SourceKeywordScan,
				Rationale:        entry.Rationale,
			})
		}
	}
}

// scanOptions detects dangerous options documented in the text. Options are
// matched as whole tokens to keep "-r" from matching inside ordinary words.
func scanOptions(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	tokens := tokenSet(in.doc)
	for _, pattern := range cat.OptionPatterns() {
		if _, ok := tokens[pattern.Option]; !ok {
			continue
		}
		emit(captypes.EvidenceItem{
			Factor:           captypes.FactorOption,
			Excerpt:          captypes.BoundExcerpt("dangerous option documented: " + pattern.Option),
			RiskContribution: pattern.Contribution,
			Confidence:       pattern.Confidence,
			Source:           captypes.SourceOptionScan,
			Rationale:        pattern.Rationale,
		})
	}
}

// tokenSet splits documentation into whitespace-and-punctuation separated
// tokens, preserving leading dashes so option flags survive.
func tokenSet(doc string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(doc, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == ';' || r == '(' || r == ')' || r == '[' || r == ']'
	}) {
		set[strings.TrimRight(tok, ".")] = struct{}{}
	}
	return set
}

// scanExamples detects dangerous constructs in usage examples. Example
// patterns match anywhere in the text since man pages rarely delimit their
// EXAMPLES section machine-readably.
func scanExamples(in scanInput, cat *catalog.Catalog, emit emitFunc) {
	for _, pattern := range cat.ExamplePatterns() {
		if !strings.Contains(in.lowerDoc, strings.ToLower(pattern.Pattern)) {
			continue
		}
		emit(captypes.EvidenceItem{
			Factor:           captypes.FactorExample,
			Excerpt:          captypes.BoundExcerpt("dangerous usage pattern: " + pattern.Pattern),
			RiskContribution: pattern.Contribution,
			Confidence:       pattern.Confidence,
			Source:           captypes.SourceExampleScan,
			Rationale:        pattern.Rationale,
		})
	}
}
