package classifier

import (
	"log/slog"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

// MapFlags maps evidence categories to capability bits. The factor taxonomy
// is closed and matched exhaustively; any value outside it is logged through
// the unrecognized-category path and its bit is simply not set, so
// classification continues.
//
// A category's bit is set when any evidence item of that category carries a
// risk contribution above the inclusion threshold.
func MapFlags(evidence []captypes.EvidenceItem, logger *slog.Logger) captypes.CapabilityFlags {
	if logger == nil {
		logger = slog.Default()
	}

	var flags captypes.CapabilityFlags
	for _, e := range evidence {
		if e.RiskContribution <= flagInclusionThreshold {
			continue
		}
		switch e.Factor {
		case captypes.FactorDestructive:
			flags |= captypes.FlagDestructive
		case captypes.FactorNetwork:
			flags |= captypes.FlagNetworkAccess
		case captypes.FactorFileRead:
			flags |= captypes.FlagFileRead
		case captypes.FactorFileWrite:
			flags |= captypes.FlagFileWrite
		case captypes.FactorSystemModification:
			flags |= captypes.FlagSystemModification
		case captypes.FactorPrivilege:
			flags |= captypes.FlagPrivilegeEscalation
		case captypes.FactorKernel:
			flags |= captypes.FlagKernelInteraction
		case captypes.FactorCommandName, captypes.FactorSecurityNote,
			captypes.FactorKeyword, captypes.FactorOption, captypes.FactorExample:
			// Score-only factors carry no capability bit of their own.
		default:
			logger.Warn("unrecognized evidence category, capability bit not set",
				slog.Int("factor", int(e.Factor)),
				slog.String("source", string(e.Source)))
		}
	}
	return flags
}
