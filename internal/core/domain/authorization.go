package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthAction names an operation that spends money and therefore passes
// through the authorization gate.
type AuthAction string

const (
	ActionCreateCampaign      AuthAction = "create_campaign"
	ActionDeleteCampaign      AuthAction = "delete_campaign"
	ActionMajorBudgetIncrease AuthAction = "major_budget_increase"
	ActionBudgetIncrease      AuthAction = "budget_increase"
	ActionBudgetDecrease      AuthAction = "budget_decrease"
)

// AuthStatus is the resolution state of a spend authorization request.
// Transitions are monotonic: pending -> approved | rejected |
// auto_approved, and resolved requests never change again.
type AuthStatus string

const (
	AuthPending      AuthStatus = "pending"
	AuthApproved     AuthStatus = "approved"
	AuthRejected     AuthStatus = "rejected"
	AuthAutoApproved AuthStatus = "auto_approved"
)

// Resolved reports whether the request reached a terminal state.
func (s AuthStatus) Resolved() bool {
	return s == AuthApproved || s == AuthRejected || s == AuthAutoApproved
}

// SpendAuthorization records one proposed spend and its decision. Every
// gated or auto-approved action produces exactly one row.
type SpendAuthorization struct {
	ID          string
	CampaignID  *string
	Action      AuthAction
	Amount      decimal.Decimal
	Currency    string
	Status      AuthStatus
	Notes       string
	RequestedBy string
	RequestedAt time.Time
	RespondedAt *time.Time
	ResponseBy  string
}
