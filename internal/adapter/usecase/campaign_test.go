package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nexora/internal/adapter/memory"
	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

func newCampaignService(store *memory.Store) *CampaignService {
	auth := NewAuthorizationService(store, NewGate(DefaultGateLimits()), testLogger())
	return NewCampaignService(store, auth, testLogger())
}

func createReq(budget int64) port.CreateCampaignRequest {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	return port.CreateCampaignRequest{
		Name:        "spring launch",
		Platform:    domain.PlatformGoogle,
		Objective:   domain.ObjectiveLeads,
		DailyBudget: decimal.NewFromInt(budget),
		StartDate:   now,
		EndDate:     now.AddDate(0, 1, 0),
		CreatedBy:   "alice",
	}
}

func TestCreateSmallCampaignActivates(t *testing.T) {
	store := memory.NewStore()
	svc := newCampaignService(store)

	res, err := svc.Create(context.Background(), createReq(150))
	require.NoError(t, err)

	require.Equal(t, domain.StatusActive, res.Campaign.Status)
	require.Equal(t, domain.AuthAutoApproved, res.Authorization.Status)

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	require.Equal(t, "campaign_created", entries[0].Action)
	require.Contains(t, entries[0].Detail, "auto-approved")
}

func TestCreateLargeCampaignStaysDraft(t *testing.T) {
	store := memory.NewStore()
	svc := newCampaignService(store)

	res, err := svc.Create(context.Background(), createReq(250))
	require.NoError(t, err)

	require.Equal(t, domain.StatusDraft, res.Campaign.Status)
	require.Equal(t, domain.AuthPending, res.Authorization.Status)

	pending, err := store.ListPendingAuthorizations(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, domain.ActionCreateCampaign, pending[0].Action)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc := newCampaignService(memory.NewStore())

	req := createReq(100)
	req.Platform = "myspace"
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, port.ErrInvalidCampaign)

	req = createReq(100)
	req.DailyBudget = decimal.NewFromInt(-1)
	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, port.ErrInvalidCampaign)
}

func TestStatusTransitions(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	svc := newCampaignService(store)
	ctx := context.Background()

	require.NoError(t, svc.ChangeStatus(ctx, "c1", domain.StatusPaused, "alice", "summer break"))
	require.NoError(t, svc.ChangeStatus(ctx, "c1", domain.StatusActive, "alice", "back on"))
	require.NoError(t, svc.ChangeStatus(ctx, "c1", domain.StatusDeleted, "alice", "done"))

	// no resurrection from deleted
	err := svc.ChangeStatus(ctx, "c1", domain.StatusActive, "alice", "undo")
	require.ErrorIs(t, err, port.ErrInvalidTransition)

	err = svc.ChangeStatus(ctx, "missing", domain.StatusPaused, "alice", "")
	require.ErrorIs(t, err, port.ErrCampaignNotFound)
}

func TestIngestSnapshotValidation(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	svc := newCampaignService(store)
	ctx := context.Background()

	good := snap(1, 1000, 50, 2, 30)
	require.NoError(t, svc.IngestSnapshot(ctx, good))

	// immutable: same campaign and day is rejected
	err := svc.IngestSnapshot(ctx, good)
	require.ErrorIs(t, err, port.ErrDuplicateSnapshot)

	bad := snap(2, 1000, -1, 0, 30)
	require.ErrorIs(t, svc.IngestSnapshot(ctx, bad), port.ErrInvalidSnapshot)

	negative := snap(3, 1000, 10, 0, -5)
	require.ErrorIs(t, svc.IngestSnapshot(ctx, negative), port.ErrInvalidSnapshot)

	// clicks above impressions are tolerated
	weird := snap(4, 10, 20, 1, 5)
	require.NoError(t, svc.IngestSnapshot(ctx, weird))

	unknown := snap(5, 1, 1, 1, 1)
	unknown.CampaignID = "missing"
	require.ErrorIs(t, svc.IngestSnapshot(ctx, unknown), port.ErrCampaignNotFound)
}

func TestListCampaignsByStatus(t *testing.T) {
	a := activeCampaign("a", 100)
	b := activeCampaign("b", 100)
	b.Status = domain.StatusPaused
	store := memory.NewStore(a, b)
	svc := newCampaignService(store)

	active, err := svc.List(context.Background(), port.CampaignFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "a", active[0].ID)

	all, err := svc.List(context.Background(), port.CampaignFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
