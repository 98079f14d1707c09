// Package catalog holds the static evidence catalog: command-name risk
// profiles and the keyword and pattern tables the documentation scanners run
// against. The catalog is immutable after construction and may be shared
// across goroutines without synchronization.
package catalog

import "github.com/capdesc/go-capdesc/internal/captypes"

// KeywordEntry maps one textual trigger to its risk contribution.
type KeywordEntry struct {
	Phrase       string
	Factor       captypes.FactorType
	Contribution float64
	Confidence   float64
	Rationale    string
}

// OptionPattern maps one documented command option to its risk contribution.
type OptionPattern struct {
	Option       string
	Contribution float64
	Confidence   float64
	Rationale    string
}

// SecurityNoteMarker flags a documentation line as an explicit security note.
type SecurityNoteMarker struct {
	Marker       string
	Contribution float64
}

// ExamplePattern flags a dangerous construct inside usage examples.
type ExamplePattern struct {
	Pattern      string
	Contribution float64
	Confidence   float64
	Rationale    string
}

// Catalog is the complete set of pattern databases consulted by the
// classifier. All slices preserve definition order so scans are deterministic.
type Catalog struct {
	profiles         map[string]NameProfile
	keywords         []KeywordEntry
	privilegePhrases []KeywordEntry
	genericKeywords  []KeywordEntry
	optionPatterns   []OptionPattern
	noteMarkers      []SecurityNoteMarker
	examplePatterns  []ExamplePattern
}

// Profile looks up the risk profile registered for a command name.
func (c *Catalog) Profile(command string) (NameProfile, bool) {
	p, ok := c.profiles[command]
	return p, ok
}

// Keywords returns the factor-specific keyword table in definition order.
func (c *Catalog) Keywords() []KeywordEntry { return c.keywords }

// PrivilegePhrases returns the privilege requirement indicator table.
func (c *Catalog) PrivilegePhrases() []KeywordEntry { return c.privilegePhrases }

// GenericKeywords returns the generic risk-keyword table.
func (c *Catalog) GenericKeywords() []KeywordEntry { return c.genericKeywords }

// OptionPatterns returns the dangerous option table.
func (c *Catalog) OptionPatterns() []OptionPattern { return c.optionPatterns }

// NoteMarkers returns the security note marker table.
func (c *Catalog) NoteMarkers() []SecurityNoteMarker { return c.noteMarkers }

// ExamplePatterns returns the dangerous usage example table.
func (c *Catalog) ExamplePatterns() []ExamplePattern { return c.examplePatterns }

// defaultCatalog is built once at process start and never mutated.
var defaultCatalog = buildDefaultCatalog()

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

func buildDefaultCatalog() *Catalog {
	profiles := make(map[string]NameProfile)
	for _, def := range profileDefinitions {
		for _, cmd := range def.Commands() {
			profiles[cmd] = def.Profile()
		}
	}

	return &Catalog{
		profiles:         profiles,
		keywords:         factorKeywords,
		privilegePhrases: privilegeIndicators,
		genericKeywords:  genericRiskKeywords,
		optionPatterns:   dangerousOptionPatterns,
		noteMarkers:      securityNoteMarkers,
		examplePatterns:  dangerousExamplePatterns,
	}
}
