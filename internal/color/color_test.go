package color

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capdesc/go-capdesc/internal/captypes"
)

func TestNewColor(t *testing.T) {
	c := NewColor("\033[32m")
	assert.Equal(t, "\033[32mhello\033[0m", c("hello"))
}

func TestForRiskLevel(t *testing.T) {
	tests := []struct {
		name  string
		level captypes.RiskLevel
		want  string
	}{
		{"safe is green", captypes.RiskLevelSafe, "\033[32msafe\033[0m"},
		{"low is cyan", captypes.RiskLevelLow, "\033[36mlow_risk\033[0m"},
		{"medium is yellow", captypes.RiskLevelMedium, "\033[33mmedium_risk\033[0m"},
		{"high is red", captypes.RiskLevelHigh, "\033[31mhigh_risk\033[0m"},
		{"critical is bold red", captypes.RiskLevelCritical, "\033[1;31mcritical\033[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForRiskLevel(tt.level)(tt.level.String()))
		})
	}
}

func TestRiskLevelDisabled(t *testing.T) {
	assert.Equal(t, "critical", RiskLevel(captypes.RiskLevelCritical, false))
}

func TestRiskLevelEnabled(t *testing.T) {
	assert.Equal(t, "\033[32msafe\033[0m", RiskLevel(captypes.RiskLevelSafe, true))
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "unchanged", Plain("unchanged"))
}
