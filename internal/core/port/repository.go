package port

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
)

var (
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrAuthorizationNotFound = errors.New("authorization not found")
	ErrAlreadyResolved       = errors.New("authorization already resolved")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrInvalidCampaign       = errors.New("invalid campaign fields")
	ErrDuplicateSnapshot     = errors.New("snapshot already recorded for this day")
	ErrInvalidSnapshot       = errors.New("invalid snapshot")
	ErrSweepInProgress       = errors.New("sweep already in progress")
)

// CampaignFilter narrows campaign listings.
type CampaignFilter struct {
	Status domain.Status
}

// Repository defines the persistence layer for the automation engine. It
// is an outbound port in hexagonal architecture. Implementations must be
// concurrency-safe; budget and status mutations must be atomic with their
// audit entry.
type Repository interface {
	// CreateCampaign stores a new campaign.
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns a campaign by id, or ErrCampaignNotFound.
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	// ListCampaigns returns campaigns matching the filter, newest first.
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	// ListActiveCampaignIDs returns the ids of all active campaigns.
	ListActiveCampaignIDs(ctx context.Context) ([]string, error)
	// ApplyBudgetChange sets a campaign's daily budget and appends the
	// audit entry in the same transaction.
	ApplyBudgetChange(ctx context.Context, campaignID string, newBudget decimal.Decimal, entry domain.AuditEntry) error
	// ChangeStatus moves a campaign to the given status, validating the
	// transition, and appends the audit entry in the same transaction.
	// Illegal moves return ErrInvalidTransition.
	ChangeStatus(ctx context.Context, campaignID string, to domain.Status, entry domain.AuditEntry) error

	// InsertSnapshot stores one immutable daily snapshot. A second write
	// for the same campaign and day returns ErrDuplicateSnapshot.
	InsertSnapshot(ctx context.Context, snap domain.MetricSnapshot) error
	// ListRecentSnapshots returns up to `days` most recent snapshots for
	// the campaign, newest first.
	ListRecentSnapshots(ctx context.Context, campaignID string, days int) ([]domain.MetricSnapshot, error)

	// CreateAuthorization stores a spend authorization request.
	CreateAuthorization(ctx context.Context, auth *domain.SpendAuthorization) error
	// GetAuthorization returns a request by id, or ErrAuthorizationNotFound.
	GetAuthorization(ctx context.Context, id string) (*domain.SpendAuthorization, error)
	// ResolveAuthorization moves a pending request to a terminal status
	// and appends the audit entry in the same transaction. Resolving a
	// non-pending request returns ErrAlreadyResolved.
	ResolveAuthorization(ctx context.Context, id string, status domain.AuthStatus, responder, notes string, at time.Time, entry domain.AuditEntry) error
	// ListPendingAuthorizations returns pending requests, newest first.
	ListPendingAuthorizations(ctx context.Context) ([]domain.SpendAuthorization, error)
	// HasPendingAuthorization reports whether a pending request already
	// exists for the campaign and action.
	HasPendingAuthorization(ctx context.Context, campaignID string, action domain.AuthAction) (bool, error)

	// AppendAudit writes one append-only audit entry.
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
	// AutomationReport aggregates authorization and audit counts since
	// the given instant.
	AutomationReport(ctx context.Context, since time.Time) (*AutomationReport, error)
}
