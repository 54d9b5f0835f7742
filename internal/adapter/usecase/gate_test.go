package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nexora/internal/core/domain"
)

func TestGateRules(t *testing.T) {
	gate := NewGate(DefaultGateLimits())

	tests := []struct {
		name   string
		action domain.AuthAction
		amount float64
		gated  bool
	}{
		{"small campaign creation is free", domain.ActionCreateCampaign, 150, false},
		{"large campaign creation is gated", domain.ActionCreateCampaign, 250, true},
		{"creation at the free limit is gated", domain.ActionCreateCampaign, 200, true},
		{"deletion is always gated", domain.ActionDeleteCampaign, 1, true},
		{"major increase is always gated", domain.ActionMajorBudgetIncrease, 1, true},
		{"increase above ceiling is gated", domain.ActionBudgetIncrease, 1500, true},
		{"increase below ceiling is free", domain.ActionBudgetIncrease, 500, false},
		{"increase at the ceiling is free", domain.ActionBudgetIncrease, 1000, false},
		{"decrease below ceiling is free", domain.ActionBudgetDecrease, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gate.RequiresApproval(tt.action, decimal.NewFromFloat(tt.amount))
			require.Equal(t, tt.gated, got)
		})
	}
}
