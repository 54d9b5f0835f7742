package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
)

// AutomationUseCase exposes the campaign optimization workflow. This is
// the primary port into the application domain.
type AutomationUseCase interface {
	// AutoOptimize scores one campaign and applies (or proposes) budget
	// and status changes. Persistence failures during application are
	// reported inside the result, not returned; an error means the
	// campaign could not be read at all.
	AutoOptimize(ctx context.Context, campaignID string) (*OptimizeResult, error)

	// OptimizeAllActive sweeps every active campaign, isolating
	// per-campaign failures. A second sweep while one is running
	// returns ErrSweepInProgress.
	OptimizeAllActive(ctx context.Context) ([]SweepItem, error)

	// Performance computes the score and derived metrics for a campaign
	// without mutating anything.
	Performance(ctx context.Context, campaignID string) (*PerformanceReport, error)
}

// AuthorizationUseCase manages spend authorization requests: recording,
// instant auto-approval and the human decision channel.
type AuthorizationUseCase interface {
	Request(ctx context.Context, req SpendRequest) (*domain.SpendAuthorization, error)
	Approve(ctx context.Context, authID, responder string) error
	Reject(ctx context.Context, authID, responder, reason string) error
	ListPending(ctx context.Context) ([]domain.SpendAuthorization, error)
	Report(ctx context.Context, days int) (*AutomationReport, error)
}

// CampaignUseCase covers the campaign surface the automation engine
// needs: creation through the gate, lifecycle moves and metric ingest.
type CampaignUseCase interface {
	Create(ctx context.Context, req CreateCampaignRequest) (*CreateCampaignResult, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	ChangeStatus(ctx context.Context, id string, to domain.Status, actor, reason string) error
	IngestSnapshot(ctx context.Context, snap domain.MetricSnapshot) error
}

// SpendRequest describes one proposed spend to be authorized.
type SpendRequest struct {
	Action      domain.AuthAction
	Amount      decimal.Decimal
	CampaignID  *string
	RequestedBy string
	Notes       string
}

// CreateCampaignRequest carries the fields of a new campaign.
type CreateCampaignRequest struct {
	Name        string
	Platform    domain.Platform
	Objective   domain.Objective
	DailyBudget decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   string
}

// CreateCampaignResult returns the stored campaign together with the
// authorization its creation produced. A gated creation leaves the
// campaign in draft until the request is approved.
type CreateCampaignResult struct {
	Campaign      domain.Campaign
	Authorization domain.SpendAuthorization
}

// OptimizeResult reports what one optimization pass decided and did.
type OptimizeResult struct {
	CampaignID      string   `json:"campaign_id"`
	Score           int      `json:"score"`
	ActionsTaken    []string `json:"actions_taken,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	// Failures holds persistence errors caught while applying decisions.
	// They never propagate out of the pass.
	Failures []string `json:"failures,omitempty"`
}

// SweepItem is the per-campaign outcome of a batch sweep.
type SweepItem struct {
	CampaignID string          `json:"campaign_id"`
	Result     *OptimizeResult `json:"result,omitempty"`
	// Failure is set when the campaign could not be optimized at all.
	Failure string `json:"failure,omitempty"`
}

// PerformanceReport is the read-only scoring view of a campaign.
type PerformanceReport struct {
	CampaignID      string   `json:"campaign_id"`
	Score           int      `json:"score"`
	CTR             float64  `json:"ctr"`
	CPC             float64  `json:"cpc"`
	CPA             float64  `json:"cpa"`
	Conversions     int64    `json:"conversions"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// AutomationReport aggregates automation activity over a trailing window.
type AutomationReport struct {
	Since                 time.Time        `json:"since"`
	AuthorizationsByState map[string]int64 `json:"authorizations_by_state"`
	ActionsByName         map[string]int64 `json:"actions_by_name"`
}
