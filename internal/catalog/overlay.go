package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// Error definitions for catalog overlays
var (
	// ErrDuplicateOverlayProfile is returned when an overlay redefines a command
	// already present in another overlay section
	ErrDuplicateOverlayProfile = errors.New("duplicate profile in catalog overlay")
)

// overlayFile is the TOML shape of a catalog overlay.
type overlayFile struct {
	Profiles []overlayProfile `toml:"profiles"`
	Keywords []overlayKeyword `toml:"keywords"`
}

type overlayProfile struct {
	Commands     []string `toml:"commands"`
	Factor       string   `toml:"factor"`
	Contribution float64  `toml:"contribution"`
	Confidence   float64  `toml:"confidence"`
	Rationale    string   `toml:"rationale"`
}

type overlayKeyword struct {
	Phrase       string  `toml:"phrase"`
	Factor       string  `toml:"factor"`
	Contribution float64 `toml:"contribution"`
	Confidence   float64 `toml:"confidence"`
	Rationale    string  `toml:"rationale"`
}

// LoadOverlay parses a TOML overlay file and returns a new catalog extending
// the base with the overlay's profiles and keywords. The base is not mutated.
func LoadOverlay(base *Catalog, path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog overlay: %w", err)
	}
	return parseOverlay(base, content)
}

func parseOverlay(base *Catalog, content []byte) (*Catalog, error) {
	var file overlayFile
	if err := toml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog overlay: %w", err)
	}

	merged := &Catalog{
		profiles:         make(map[string]NameProfile, len(base.profiles)+len(file.Profiles)),
		keywords:         base.keywords,
		privilegePhrases: base.privilegePhrases,
		genericKeywords:  base.genericKeywords,
		optionPatterns:   base.optionPatterns,
		noteMarkers:      base.noteMarkers,
		examplePatterns:  base.examplePatterns,
	}
	for cmd, p := range base.profiles {
		merged.profiles[cmd] = p
	}

	seen := make(map[string]struct{})
	for _, op := range file.Profiles {
		profile, err := buildOverlayProfile(op)
		if err != nil {
			return nil, err
		}
		for _, cmd := range op.Commands {
			if _, dup := seen[cmd]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateOverlayProfile, cmd)
			}
			seen[cmd] = struct{}{}
			// Overlay profiles replace built-in ones for the same command.
			merged.profiles[cmd] = profile
		}
	}

	if len(file.Keywords) > 0 {
		keywords := make([]KeywordEntry, 0, len(base.keywords)+len(file.Keywords))
		keywords = append(keywords, base.keywords...)
		for _, kw := range file.Keywords {
			factor, err := captypes.ParseFactorType(kw.Factor)
			if err != nil {
				return nil, fmt.Errorf("keyword %q: %w", kw.Phrase, err)
			}
			entry := KeywordEntry{
				Phrase:       kw.Phrase,
				Factor:       factor,
				Contribution: kw.Contribution,
				Confidence:   kw.Confidence,
				Rationale:    kw.Rationale,
			}
			if err := (FactorWeight{kw.Contribution, kw.Confidence, kw.Rationale}).validate(); err != nil {
				return nil, fmt.Errorf("keyword %q: %w", kw.Phrase, err)
			}
			keywords = append(keywords, entry)
		}
		merged.keywords = keywords
	}

	return merged, nil
}

func buildOverlayProfile(op overlayProfile) (NameProfile, error) {
	if len(op.Commands) == 0 {
		return NameProfile{}, ErrProfileWithoutCommands
	}
	factor, err := captypes.ParseFactorType(op.Factor)
	if err != nil {
		return NameProfile{}, fmt.Errorf("profile for %v: %w", op.Commands, err)
	}

	weight := FactorWeight{op.Contribution, op.Confidence, op.Rationale}
	if err := weight.validate(); err != nil {
		return NameProfile{}, fmt.Errorf("profile for %v: %w", op.Commands, err)
	}

	var profile NameProfile
	switch factor {
	case captypes.FactorPrivilege:
		profile.PrivilegeRisk = weight
	case captypes.FactorNetwork:
		profile.NetworkRisk = weight
	case captypes.FactorDestructive:
		profile.DestructionRisk = weight
	case captypes.FactorFileRead:
		profile.FileReadRisk = weight
	case captypes.FactorFileWrite:
		profile.FileWriteRisk = weight
	case captypes.FactorSystemModification:
		profile.SystemModRisk = weight
	case captypes.FactorKernel:
		profile.KernelRisk = weight
	default:
		return NameProfile{}, fmt.Errorf("profile for %v: %w: %s", op.Commands, captypes.ErrInvalidFactorType, op.Factor)
	}
	return profile, nil
}
