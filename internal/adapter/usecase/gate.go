package usecase

import (
	"github.com/shopspring/decimal"

	"nexora/internal/config/configs"
	"nexora/internal/core/domain"
)

// GateLimits are the static ceilings of the authorization gate.
type GateLimits struct {
	// FreeCampaignBudget: campaign creation below this amount skips the
	// gate entirely.
	FreeCampaignBudget decimal.Decimal
	// MaxSingleTransaction: any amount above this requires a human
	// decision regardless of action.
	MaxSingleTransaction decimal.Decimal
}

// LimitsFromConfig lifts the configured ceilings into the gate's input
// struct.
func LimitsFromConfig(cfg configs.Automation) GateLimits {
	return GateLimits{
		FreeCampaignBudget:   decimal.NewFromFloat(cfg.FreeCampaignBudget),
		MaxSingleTransaction: decimal.NewFromFloat(cfg.MaxSingleTransaction),
	}
}

// DefaultGateLimits returns the product's standard ceilings.
func DefaultGateLimits() GateLimits {
	return GateLimits{
		FreeCampaignBudget:   decimal.NewFromInt(200),
		MaxSingleTransaction: decimal.NewFromInt(1000),
	}
}

// Gate decides whether a proposed spend is auto-approved or needs a human
// decision. It holds no state beyond its limits.
type Gate struct {
	limits GateLimits
}

func NewGate(limits GateLimits) *Gate {
	return &Gate{limits: limits}
}

// RequiresApproval applies the gate rules in order:
//  1. create_campaign below the free budget is auto-approved;
//  2. high-risk actions are always gated;
//  3. amounts above the single-transaction ceiling are gated;
//  4. everything else is auto-approved.
func (g *Gate) RequiresApproval(action domain.AuthAction, amount decimal.Decimal) bool {
	if action == domain.ActionCreateCampaign && amount.LessThan(g.limits.FreeCampaignBudget) {
		return false
	}
	switch action {
	case domain.ActionCreateCampaign, domain.ActionDeleteCampaign, domain.ActionMajorBudgetIncrease:
		return true
	}
	return amount.GreaterThan(g.limits.MaxSingleTransaction)
}
