package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nexora/internal/config/configs"
	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

const (
	entityCampaign      = "campaign"
	automationActor     = "automation"
	lowPerformanceNote  = "low performance"
	pauseSupersedesNote = "superseded by pause"
)

// OptimizerSettings are the score bands and adjustment percentages of the
// budget adjuster.
type OptimizerSettings struct {
	MetricsWindowDays int
	IncreaseScore     int
	DecreaseScore     int
	PauseScore        int
	IncreasePercent   float64
	DecreasePercent   float64
}

// SettingsFromConfig lifts the configured bands into the optimizer's
// input struct.
func SettingsFromConfig(cfg configs.Automation) OptimizerSettings {
	return OptimizerSettings{
		MetricsWindowDays: cfg.MetricsWindowDays,
		IncreaseScore:     cfg.IncreaseScore,
		DecreaseScore:     cfg.DecreaseScore,
		PauseScore:        cfg.PauseScore,
		IncreasePercent:   cfg.IncreasePercent,
		DecreasePercent:   cfg.DecreasePercent,
	}
}

// DefaultOptimizerSettings returns the product's standard bands.
func DefaultOptimizerSettings() OptimizerSettings {
	return OptimizerSettings{
		MetricsWindowDays: 7,
		IncreaseScore:     80,
		DecreaseScore:     40,
		PauseScore:        20,
		IncreasePercent:   20,
		DecreasePercent:   30,
	}
}

// Optimizer implements the automated campaign optimization workflow:
// score the recent window, adjust the budget through the authorization
// gate, pause hopeless campaigns and audit every decision.
type Optimizer struct {
	repo     port.Repository
	scorer   *Scorer
	auth     *AuthorizationService
	settings OptimizerSettings
	logger   *slog.Logger
	now      func() time.Time

	// sweepMu serializes sweeps; concurrent sweeps over the same
	// campaign set are not a supported scenario.
	sweepMu sync.Mutex
}

func NewOptimizer(repo port.Repository, scorer *Scorer, auth *AuthorizationService, settings OptimizerSettings, logger *slog.Logger) *Optimizer {
	return &Optimizer{
		repo:     repo,
		scorer:   scorer,
		auth:     auth,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// AutoOptimize runs one optimization pass over a single campaign. The
// returned result lists every decision taken; persistence failures while
// applying a decision are captured in the result and never propagate.
// An error is returned only when the campaign or its metrics cannot be
// read at all.
func (o *Optimizer) AutoOptimize(ctx context.Context, campaignID string) (*port.OptimizeResult, error) {
	campaign, err := o.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	snaps, err := o.repo.ListRecentSnapshots(ctx, campaignID, o.settings.MetricsWindowDays)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	score := o.scorer.Score(snaps)
	res := &port.OptimizeResult{
		CampaignID:      campaignID,
		Score:           score.Score,
		Recommendations: score.Recommendations,
	}

	// Pause supersedes any budget decrease: the budget stays untouched
	// and only the status changes.
	pause := score.Score < o.settings.PauseScore && campaign.Status == domain.StatusActive

	switch {
	case score.Score >= o.settings.IncreaseScore:
		o.adjustBudget(ctx, campaign, domain.ActionBudgetIncrease, o.settings.IncreasePercent, res)
	case score.Score < o.settings.DecreaseScore:
		if pause {
			res.ActionsTaken = append(res.ActionsTaken,
				fmt.Sprintf("budget decrease %.0f%% proposed (%s)", o.settings.DecreasePercent, pauseSupersedesNote))
		} else {
			o.adjustBudget(ctx, campaign, domain.ActionBudgetDecrease, o.settings.DecreasePercent, res)
		}
	}

	if pause {
		o.pauseCampaign(ctx, campaign, res)
	}

	o.logger.Info("campaign optimized",
		slog.String("campaign_id", campaignID),
		slog.Int("score", score.Score),
		slog.Int("actions", len(res.ActionsTaken)),
		slog.Int("failures", len(res.Failures)),
	)
	return res, nil
}

// OptimizeAllActive sweeps every active campaign exactly once. Failures
// on one campaign never abort the sweep; they appear as failure strings
// in the per-campaign result list. Overlapping sweeps are rejected with
// ErrSweepInProgress.
func (o *Optimizer) OptimizeAllActive(ctx context.Context) ([]port.SweepItem, error) {
	if !o.sweepMu.TryLock() {
		return nil, port.ErrSweepInProgress
	}
	defer o.sweepMu.Unlock()

	ids, err := o.repo.ListActiveCampaignIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}

	items := make([]port.SweepItem, 0, len(ids))
	for _, id := range ids {
		res, err := o.AutoOptimize(ctx, id)
		item := port.SweepItem{CampaignID: id, Result: res}
		if err != nil {
			item.Failure = err.Error()
		}
		items = append(items, item)
	}

	o.logger.Info("sweep completed", slog.Int("campaigns", len(items)))
	return items, nil
}

// Performance scores a campaign without mutating anything.
func (o *Optimizer) Performance(ctx context.Context, campaignID string) (*port.PerformanceReport, error) {
	if _, err := o.repo.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	snaps, err := o.repo.ListRecentSnapshots(ctx, campaignID, o.settings.MetricsWindowDays)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	score := o.scorer.Score(snaps)
	return &port.PerformanceReport{
		CampaignID:      campaignID,
		Score:           score.Score,
		CTR:             score.CTR,
		CPC:             score.CPC,
		CPA:             score.CPA,
		Conversions:     score.Conversions,
		Recommendations: score.Recommendations,
	}, nil
}

// adjustBudget proposes a percentage change, runs it through the gate and
// applies it only when auto-approved. A gated change leaves the campaign
// untouched with a pending request; if a pending request for the same
// action already exists no second one is recorded, so a blocked change is
// never compounded or double-applied.
func (o *Optimizer) adjustBudget(ctx context.Context, campaign *domain.Campaign, action domain.AuthAction, percent float64, res *port.OptimizeResult) {
	factor := decimal.NewFromFloat(1 + percent/100)
	verb := "increased"
	if action == domain.ActionBudgetDecrease {
		factor = decimal.NewFromFloat(1 - percent/100)
		verb = "decreased"
	}
	newBudget := campaign.DailyBudget.Mul(factor).Round(2)
	delta := newBudget.Sub(campaign.DailyBudget).Abs()

	pending, err := o.repo.HasPendingAuthorization(ctx, campaign.ID, action)
	if err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf("check pending authorization: %v", err))
		return
	}
	if pending {
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("%s of %s still awaiting approval", action, delta.StringFixed(2)))
		return
	}

	auth, err := o.auth.Request(ctx, port.SpendRequest{
		Action:      action,
		Amount:      delta,
		CampaignID:  &campaign.ID,
		RequestedBy: automationActor,
		Notes:       fmt.Sprintf("auto adjustment of %.0f%%", percent),
	})
	if err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf("request authorization: %v", err))
		return
	}

	if auth.Status != domain.AuthAutoApproved {
		entry := o.auditEntry(campaign.ID, string(action)+"_blocked",
			fmt.Sprintf("%s %.0f%% (%s) requires approval", verb, percent, delta.StringFixed(2)))
		if err = o.repo.AppendAudit(ctx, entry); err != nil {
			res.Failures = append(res.Failures, fmt.Sprintf("append audit: %v", err))
		}
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("budget %s %.0f%% requires approval (authorization pending)", verb, percent))
		return
	}

	entry := o.auditEntry(campaign.ID, string(action),
		fmt.Sprintf("%s %.0f%%: %s -> %s", verb, percent, campaign.DailyBudget.StringFixed(2), newBudget.StringFixed(2)))
	if err = o.repo.ApplyBudgetChange(ctx, campaign.ID, newBudget, entry); err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf("apply budget change: %v", err))
		return
	}
	campaign.DailyBudget = newBudget
	res.ActionsTaken = append(res.ActionsTaken,
		fmt.Sprintf("budget %s by %.0f%% to %s", verb, percent, newBudget.StringFixed(2)))
}

func (o *Optimizer) pauseCampaign(ctx context.Context, campaign *domain.Campaign, res *port.OptimizeResult) {
	entry := o.auditEntry(campaign.ID, "campaign_paused", lowPerformanceNote)
	if err := o.repo.ChangeStatus(ctx, campaign.ID, domain.StatusPaused, entry); err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf("pause campaign: %v", err))
		return
	}
	campaign.Status = domain.StatusPaused
	res.ActionsTaken = append(res.ActionsTaken, "campaign paused: "+lowPerformanceNote)
}

func (o *Optimizer) auditEntry(campaignID, action, detail string) domain.AuditEntry {
	return domain.AuditEntry{
		ID:          uuid.NewString(),
		Action:      action,
		EntityType:  entityCampaign,
		CampaignID:  &campaignID,
		PerformedBy: automationActor,
		PerformedAt: o.now().UTC(),
		Detail:      detail,
	}
}
