package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

// CampaignService covers the campaign surface around the automation
// engine: gated creation, lifecycle moves and metric ingest.
type CampaignService struct {
	repo   port.Repository
	auth   *AuthorizationService
	logger *slog.Logger
	now    func() time.Time
}

func NewCampaignService(repo port.Repository, auth *AuthorizationService, logger *slog.Logger) *CampaignService {
	return &CampaignService{repo: repo, auth: auth, logger: logger, now: time.Now}
}

// Create stores the campaign as draft and runs the creation spend through
// the authorization gate with the daily budget as the amount. An
// auto-approved creation is activated immediately; a gated one stays in
// draft next to its pending request.
func (s *CampaignService) Create(ctx context.Context, req port.CreateCampaignRequest) (*port.CreateCampaignResult, error) {
	now := s.now().UTC()
	campaign := domain.Campaign{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Platform:    req.Platform,
		Status:      domain.StatusDraft,
		Objective:   req.Objective,
		DailyBudget: req.DailyBudget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !campaign.ValidateBasics() {
		return nil, port.ErrInvalidCampaign
	}
	if err := s.repo.CreateCampaign(ctx, &campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	auth, err := s.auth.Request(ctx, port.SpendRequest{
		Action:      domain.ActionCreateCampaign,
		Amount:      req.DailyBudget,
		CampaignID:  &campaign.ID,
		RequestedBy: req.CreatedBy,
		Notes:       "campaign creation",
	})
	if err != nil {
		return nil, err
	}

	if auth.Status == domain.AuthAutoApproved {
		entry := domain.AuditEntry{
			ID:          uuid.NewString(),
			Action:      "campaign_created",
			EntityType:  entityCampaign,
			CampaignID:  &campaign.ID,
			PerformedBy: req.CreatedBy,
			PerformedAt: now,
			Detail:      fmt.Sprintf("daily budget %s, auto-approved", req.DailyBudget.StringFixed(2)),
		}
		if err = s.repo.ChangeStatus(ctx, campaign.ID, domain.StatusActive, entry); err != nil {
			return nil, fmt.Errorf("activate campaign: %w", err)
		}
		campaign.Status = domain.StatusActive
	} else {
		entry := domain.AuditEntry{
			ID:          uuid.NewString(),
			Action:      "campaign_created",
			EntityType:  entityCampaign,
			CampaignID:  &campaign.ID,
			PerformedBy: req.CreatedBy,
			PerformedAt: now,
			Detail:      fmt.Sprintf("daily budget %s, awaiting approval", req.DailyBudget.StringFixed(2)),
		}
		if err = s.repo.AppendAudit(ctx, entry); err != nil {
			return nil, fmt.Errorf("append audit: %w", err)
		}
	}

	s.logger.Info("campaign created",
		slog.String("campaign_id", campaign.ID),
		slog.String("status", string(campaign.Status)),
		slog.String("authorization_status", string(auth.Status)),
	)
	return &port.CreateCampaignResult{Campaign: campaign, Authorization: *auth}, nil
}

// Get returns one campaign by id.
func (s *CampaignService) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.repo.GetCampaign(ctx, id)
}

// List returns campaigns matching the filter, newest first.
func (s *CampaignService) List(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	return s.repo.ListCampaigns(ctx, filter)
}

// ChangeStatus performs a manual lifecycle move (pause, resume, delete,
// activate). The repository validates the transition atomically with the
// audit append.
func (s *CampaignService) ChangeStatus(ctx context.Context, id string, to domain.Status, actor, reason string) error {
	entry := domain.AuditEntry{
		ID:          uuid.NewString(),
		Action:      "campaign_status_changed",
		EntityType:  entityCampaign,
		CampaignID:  &id,
		PerformedBy: actor,
		PerformedAt: s.now().UTC(),
		Detail:      fmt.Sprintf("to %s: %s", to, reason),
	}
	if err := s.repo.ChangeStatus(ctx, id, to, entry); err != nil {
		return err
	}
	s.logger.Info("campaign status changed",
		slog.String("campaign_id", id),
		slog.String("to", string(to)),
		slog.String("actor", actor),
	)
	return nil
}

// IngestSnapshot stores one immutable daily snapshot. Counters and money
// must be non-negative; clicks greater than impressions are tolerated.
func (s *CampaignService) IngestSnapshot(ctx context.Context, snap domain.MetricSnapshot) error {
	if !snap.Valid() {
		return port.ErrInvalidSnapshot
	}
	if _, err := s.repo.GetCampaign(ctx, snap.CampaignID); err != nil {
		return err
	}
	snap.Date = snap.Day()
	return s.repo.InsertSnapshot(ctx, snap)
}
