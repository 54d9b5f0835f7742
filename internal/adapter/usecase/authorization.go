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

const entitySpendAuthorization = "spend_authorization"

// AuthorizationService records spend authorization requests, resolves the
// free ones instantly through the gate and exposes the human decision
// channel for the rest. Gated requests stay pending until an operator
// decides; there is no expiry.
type AuthorizationService struct {
	repo   port.Repository
	gate   *Gate
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthorizationService(repo port.Repository, gate *Gate, logger *slog.Logger) *AuthorizationService {
	return &AuthorizationService{repo: repo, gate: gate, logger: logger, now: time.Now}
}

// Request records the proposed spend. When the gate waves it through the
// request is stored already resolved as auto_approved; otherwise it is
// stored pending until an operator decides.
func (s *AuthorizationService) Request(ctx context.Context, req port.SpendRequest) (*domain.SpendAuthorization, error) {
	now := s.now().UTC()
	auth := &domain.SpendAuthorization{
		ID:          uuid.NewString(),
		CampaignID:  req.CampaignID,
		Action:      req.Action,
		Amount:      req.Amount,
		Currency:    "USD",
		Status:      domain.AuthPending,
		Notes:       req.Notes,
		RequestedBy: req.RequestedBy,
		RequestedAt: now,
	}
	gated := s.gate.RequiresApproval(req.Action, req.Amount)
	if !gated {
		auth.Status = domain.AuthAutoApproved
		auth.RespondedAt = &now
		auth.ResponseBy = "auto"
	}
	if err := s.repo.CreateAuthorization(ctx, auth); err != nil {
		return nil, fmt.Errorf("create authorization: %w", err)
	}

	s.logger.Info("spend authorization recorded",
		slog.String("authorization_id", auth.ID),
		slog.String("action", string(auth.Action)),
		slog.String("amount", auth.Amount.StringFixed(2)),
		slog.String("status", string(auth.Status)),
	)
	return auth, nil
}

// Approve resolves a pending request. Resolving an already decided
// request returns ErrAlreadyResolved; the transition is monotonic.
func (s *AuthorizationService) Approve(ctx context.Context, authID, responder string) error {
	return s.resolve(ctx, authID, domain.AuthApproved, responder, "")
}

// Reject resolves a pending request negatively. The proposed mutation is
// simply never applied; this is a normal outcome, not an error.
func (s *AuthorizationService) Reject(ctx context.Context, authID, responder, reason string) error {
	return s.resolve(ctx, authID, domain.AuthRejected, responder, reason)
}

func (s *AuthorizationService) resolve(ctx context.Context, authID string, status domain.AuthStatus, responder, notes string) error {
	auth, err := s.repo.GetAuthorization(ctx, authID)
	if err != nil {
		return err
	}
	now := s.now().UTC()

	action := "spend_approved"
	if status == domain.AuthRejected {
		action = "spend_rejected"
	}
	entry := domain.AuditEntry{
		ID:          uuid.NewString(),
		Action:      action,
		EntityType:  entitySpendAuthorization,
		CampaignID:  auth.CampaignID,
		PerformedBy: responder,
		PerformedAt: now,
		Detail:      fmt.Sprintf("%s for %s: %s", auth.Action, auth.Amount.StringFixed(2), notes),
	}
	// the repository resolves the request and appends the audit entry in
	// one transaction, so a decided request always has its audit row
	if err = s.repo.ResolveAuthorization(ctx, authID, status, responder, notes, now, entry); err != nil {
		return err
	}

	s.logger.Info("spend authorization resolved",
		slog.String("authorization_id", authID),
		slog.String("status", string(status)),
		slog.String("responder", responder),
	)
	return nil
}

// ListPending returns all undecided requests, newest first.
func (s *AuthorizationService) ListPending(ctx context.Context) ([]domain.SpendAuthorization, error) {
	return s.repo.ListPendingAuthorizations(ctx)
}

// Report aggregates authorization and audit activity over the trailing
// number of days (default 7 when days is not positive).
func (s *AuthorizationService) Report(ctx context.Context, days int) (*port.AutomationReport, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	return s.repo.AutomationReport(ctx, since)
}
