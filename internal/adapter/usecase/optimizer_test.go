package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nexora/internal/adapter/memory"
	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

func activeCampaign(id string, budget int64) domain.Campaign {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	return domain.Campaign{
		ID:          id,
		Name:        "campaign " + id,
		Platform:    domain.PlatformMeta,
		Status:      domain.StatusActive,
		Objective:   domain.ObjectiveSales,
		DailyBudget: decimal.NewFromInt(budget),
		StartDate:   now.AddDate(0, 0, -10),
		EndDate:     now.AddDate(0, 1, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newOptimizer(store port.Repository) *Optimizer {
	auth := NewAuthorizationService(store, NewGate(DefaultGateLimits()), testLogger())
	return NewOptimizer(store, NewScorer(DefaultScoreThresholds()), auth, DefaultOptimizerSettings(), testLogger())
}

func addSnap(t *testing.T, store *memory.Store, s domain.MetricSnapshot) {
	t.Helper()
	require.NoError(t, store.InsertSnapshot(context.Background(), s))
}

func TestAutoOptimizeIncreasesBudget(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	// CTR 3.0, CPC 0.80, CPA 40 -> score 100
	addSnap(t, store, snap(1, 10000, 300, 6, 240))

	res, err := newOptimizer(store).AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, 100, res.Score)
	require.Empty(t, res.Failures)
	require.Len(t, res.ActionsTaken, 1)
	require.Contains(t, res.ActionsTaken[0], "increased by 20%")

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(120)),
		"budget should be 120, got %s", c.DailyBudget)
	require.Equal(t, domain.StatusActive, c.Status)

	// exactly one audit entry for the applied change
	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	require.Equal(t, "budget_increase", entries[0].Action)
	require.Contains(t, entries[0].Detail, "20%")

	auths := store.Authorizations()
	require.Len(t, auths, 1)
	require.Equal(t, domain.AuthAutoApproved, auths[0].Status)
}

func TestAutoOptimizeDecreasesBudget(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	// CTR 1.5 (+20), CPC 3.0 (+0), CPA 150 (+0) -> score 20: decrease
	// without pausing
	addSnap(t, store, snap(1, 10000, 150, 3, 450))

	res, err := newOptimizer(store).AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, 20, res.Score)
	require.Len(t, res.ActionsTaken, 1)
	require.Contains(t, res.ActionsTaken[0], "decreased by 30%")

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(70)),
		"budget should be 70, got %s", c.DailyBudget)
	require.Equal(t, domain.StatusActive, c.Status)
}

func TestAutoOptimizePauseSupersedesDecrease(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	// CTR 0.5, CPC 3.0, CPA 150 -> score 0: pause wins, budget untouched
	addSnap(t, store, snap(1, 10000, 50, 1, 150))

	res, err := newOptimizer(store).AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, 0, res.Score)
	require.Len(t, res.ActionsTaken, 2)
	require.Contains(t, res.ActionsTaken[0], "superseded by pause")
	require.Contains(t, res.ActionsTaken[1], "campaign paused")

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaused, c.Status)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(100)),
		"budget should stay 100, got %s", c.DailyBudget)

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	require.Equal(t, "campaign_paused", entries[0].Action)
	require.Equal(t, "low performance", entries[0].Detail)
}

func TestAutoOptimizeGatedChangeIsNotApplied(t *testing.T) {
	// +20% of 10000 is 2000, above the 1000 ceiling: the change must be
	// gated and the campaign left untouched.
	store := memory.NewStore(activeCampaign("c1", 10000))
	addSnap(t, store, snap(1, 10000, 300, 6, 240))

	opt := newOptimizer(store)
	res, err := opt.AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)

	require.Len(t, res.ActionsTaken, 1)
	require.Contains(t, res.ActionsTaken[0], "requires approval")

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(10000)))

	pending, err := store.ListPendingAuthorizations(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.True(t, pending[0].Amount.Equal(decimal.NewFromInt(2000)))

	// a second pass without new metrics must not compound the change or
	// record a second request
	res, err = opt.AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, res.ActionsTaken, 1)
	require.Contains(t, res.ActionsTaken[0], "awaiting approval")

	c, err = store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(10000)))

	pending, err = store.ListPendingAuthorizations(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestAutoOptimizeNeutralOnMissingData(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))

	res, err := newOptimizer(store).AutoOptimize(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, 50, res.Score)
	require.Empty(t, res.ActionsTaken)
	require.Equal(t, []string{"insufficient data for analysis"}, res.Recommendations)

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(100)))
	require.Equal(t, domain.StatusActive, c.Status)
}

func TestAutoOptimizeUnknownCampaign(t *testing.T) {
	_, err := newOptimizer(memory.NewStore()).AutoOptimize(context.Background(), "missing")
	require.ErrorIs(t, err, port.ErrCampaignNotFound)
}

// failingMetricsRepo simulates a persistence failure for one campaign's
// metric reads.
type failingMetricsRepo struct {
	*memory.Store
	failID string
}

func (r *failingMetricsRepo) ListRecentSnapshots(ctx context.Context, campaignID string, days int) ([]domain.MetricSnapshot, error) {
	if campaignID == r.failID {
		return nil, errors.New("store unavailable")
	}
	return r.Store.ListRecentSnapshots(ctx, campaignID, days)
}

func TestSweepIsolatesFailures(t *testing.T) {
	store := memory.NewStore(
		activeCampaign("a", 100),
		activeCampaign("b", 100),
	)
	paused := activeCampaign("c", 100)
	paused.Status = domain.StatusPaused
	require.NoError(t, store.CreateCampaign(context.Background(), &paused))
	addSnap(t, store, snap(1, 10000, 300, 6, 240))

	repo := &failingMetricsRepo{Store: store, failID: "b"}
	items, err := newOptimizer(repo).OptimizeAllActive(context.Background())
	require.NoError(t, err)

	// only the two active campaigns are swept; the failure on b does
	// not abort the sweep
	require.Len(t, items, 2)
	byID := map[string]port.SweepItem{}
	for _, item := range items {
		byID[item.CampaignID] = item
	}
	require.Empty(t, byID["a"].Failure)
	require.NotNil(t, byID["a"].Result)
	require.Contains(t, byID["b"].Failure, "store unavailable")
}

// blockingMetricsRepo parks snapshot reads until released, holding a
// sweep in flight.
type blockingMetricsRepo struct {
	*memory.Store
	enterOnce sync.Once
	entered   chan struct{}
	release   chan struct{}
}

func (r *blockingMetricsRepo) ListRecentSnapshots(ctx context.Context, campaignID string, days int) ([]domain.MetricSnapshot, error) {
	r.enterOnce.Do(func() { close(r.entered) })
	<-r.release
	return r.Store.ListRecentSnapshots(ctx, campaignID, days)
}

func TestOverlappingSweepRejected(t *testing.T) {
	repo := &blockingMetricsRepo{
		Store:   memory.NewStore(activeCampaign("c1", 100)),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	opt := newOptimizer(repo)

	done := make(chan error, 1)
	go func() {
		_, err := opt.OptimizeAllActive(context.Background())
		done <- err
	}()
	<-repo.entered

	// second trigger while the first sweep is still running
	_, err := opt.OptimizeAllActive(context.Background())
	require.ErrorIs(t, err, port.ErrSweepInProgress)

	close(repo.release)
	require.NoError(t, <-done)

	// the lock is released: a later sweep runs normally
	items, err := opt.OptimizeAllActive(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestPerformanceReportDoesNotMutate(t *testing.T) {
	store := memory.NewStore(activeCampaign("c1", 100))
	addSnap(t, store, snap(1, 10000, 300, 6, 240))

	report, err := newOptimizer(store).Performance(context.Background(), "c1")
	require.NoError(t, err)

	require.Equal(t, 100, report.Score)
	require.InDelta(t, 3.0, report.CTR, 1e-9)
	require.InDelta(t, 0.8, report.CPC, 1e-9)
	require.InDelta(t, 40.0, report.CPA, 1e-9)

	c, err := store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.True(t, c.DailyBudget.Equal(decimal.NewFromInt(100)))
	require.Empty(t, store.AuditEntries())
}
