package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

// Repository implements port.Repository using pgxpool for PostgreSQL.
// Budget and status mutations run in a Serializable transaction that
// locks the campaign row and appends the audit entry atomically.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a new repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateCampaign stores a new campaign row.
func (r *Repository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
    (id, name, platform, status, objective, daily_budget, start_date, end_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.Name, c.Platform, c.Status, c.Objective, c.DailyBudget, c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return port.ErrInvalidCampaign
	}
	return err
}

// GetCampaign returns a campaign by id.
func (r *Repository) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `SELECT id, name, platform, status, objective, daily_budget, start_date, end_date, created_at, updated_at
FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Platform, &c.Status, &c.Objective, &c.DailyBudget, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns campaigns matching the filter, newest first.
func (r *Repository) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	query := `SELECT id, name, platform, status, objective, daily_budget, start_date, end_date, created_at, updated_at
FROM campaigns`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		var c domain.Campaign
		err := row.Scan(&c.ID, &c.Name, &c.Platform, &c.Status, &c.Objective, &c.DailyBudget, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

// ListActiveCampaignIDs returns the ids of all active campaigns.
func (r *Repository) ListActiveCampaignIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM campaigns WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

// ApplyBudgetChange sets the campaign's daily budget and appends the
// audit entry in one transaction, locking the campaign row first.
func (r *Repository) ApplyBudgetChange(ctx context.Context, campaignID string, newBudget decimal.Decimal, entry domain.AuditEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var current decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT daily_budget FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		err = port.ErrCampaignNotFound
		return err
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET daily_budget = $1, updated_at = $2 WHERE id = $3`,
		newBudget, entry.PerformedAt, campaignID)
	if err != nil {
		return err
	}
	err = appendAuditTx(ctx, tx, entry)
	return err
}

// ChangeStatus moves the campaign to the given status after validating
// the transition under a row lock, appending the audit entry atomically.
func (r *Repository) ChangeStatus(ctx context.Context, campaignID string, to domain.Status, entry domain.AuditEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var current domain.Status
	err = tx.QueryRow(ctx, `SELECT status FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		err = port.ErrCampaignNotFound
		return err
	}
	if err != nil {
		return err
	}
	if !current.CanTransitionTo(to) {
		err = port.ErrInvalidTransition
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`,
		to, entry.PerformedAt, campaignID)
	if err != nil {
		return err
	}
	err = appendAuditTx(ctx, tx, entry)
	return err
}

// InsertSnapshot stores one immutable daily snapshot. The primary key on
// (campaign_id, date) makes a second write for the same day fail.
func (r *Repository) InsertSnapshot(ctx context.Context, snap domain.MetricSnapshot) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO campaign_metrics
    (campaign_id, date, impressions, clicks, conversions, spend, revenue)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		snap.CampaignID, snap.Day(), snap.Impressions, snap.Clicks, snap.Conversions, snap.Spend, snap.Revenue)
	if isUniqueViolation(err) {
		return port.ErrDuplicateSnapshot
	}
	return err
}

// ListRecentSnapshots returns up to `days` most recent snapshots for the
// campaign, newest first.
func (r *Repository) ListRecentSnapshots(ctx context.Context, campaignID string, days int) ([]domain.MetricSnapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT campaign_id, date, impressions, clicks, conversions, spend, revenue
FROM campaign_metrics WHERE campaign_id = $1 ORDER BY date DESC LIMIT $2`, campaignID, days)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MetricSnapshot, error) {
		var m domain.MetricSnapshot
		err := row.Scan(&m.CampaignID, &m.Date, &m.Impressions, &m.Clicks, &m.Conversions, &m.Spend, &m.Revenue)
		return m, err
	})
}
