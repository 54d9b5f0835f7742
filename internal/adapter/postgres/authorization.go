package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

// CreateAuthorization stores a spend authorization request row.
func (r *Repository) CreateAuthorization(ctx context.Context, auth *domain.SpendAuthorization) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO spend_authorizations
    (id, campaign_id, action, amount, currency, status, notes, requested_by, requested_at, responded_at, response_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		auth.ID, auth.CampaignID, auth.Action, auth.Amount, auth.Currency, auth.Status,
		auth.Notes, auth.RequestedBy, auth.RequestedAt, auth.RespondedAt, auth.ResponseBy)
	return err
}

// GetAuthorization returns a request by id.
func (r *Repository) GetAuthorization(ctx context.Context, id string) (*domain.SpendAuthorization, error) {
	var a domain.SpendAuthorization
	err := r.pool.QueryRow(ctx, `SELECT id, campaign_id, action, amount, currency, status, notes, requested_by, requested_at, responded_at, response_by
FROM spend_authorizations WHERE id = $1`, id).
		Scan(&a.ID, &a.CampaignID, &a.Action, &a.Amount, &a.Currency, &a.Status, &a.Notes, &a.RequestedBy, &a.RequestedAt, &a.RespondedAt, &a.ResponseBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrAuthorizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ResolveAuthorization moves a pending request to a terminal status and
// appends the audit entry in the same transaction. The WHERE clause on
// status makes the transition monotonic: a resolved row is never touched
// again.
func (r *Repository) ResolveAuthorization(ctx context.Context, id string, status domain.AuthStatus, responder, notes string, at time.Time, entry domain.AuditEntry) error {
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

	tag, err := tx.Exec(ctx, `UPDATE spend_authorizations
SET status = $2, responded_at = $3, response_by = $4, notes = COALESCE(NULLIF($5, ''), notes)
WHERE id = $1 AND status = 'pending'`, id, status, at, responder, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM spend_authorizations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = port.ErrAuthorizationNotFound
			return err
		}
		err = port.ErrAlreadyResolved
		return err
	}
	err = appendAuditTx(ctx, tx, entry)
	return err
}

// ListPendingAuthorizations returns undecided requests, newest first.
func (r *Repository) ListPendingAuthorizations(ctx context.Context) ([]domain.SpendAuthorization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, action, amount, currency, status, notes, requested_by, requested_at, responded_at, response_by
FROM spend_authorizations WHERE status = 'pending' ORDER BY requested_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SpendAuthorization, error) {
		var a domain.SpendAuthorization
		err := row.Scan(&a.ID, &a.CampaignID, &a.Action, &a.Amount, &a.Currency, &a.Status, &a.Notes, &a.RequestedBy, &a.RequestedAt, &a.RespondedAt, &a.ResponseBy)
		return a, err
	})
}

// HasPendingAuthorization reports whether a pending request exists for
// the campaign and action.
func (r *Repository) HasPendingAuthorization(ctx context.Context, campaignID string, action domain.AuthAction) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM spend_authorizations WHERE campaign_id = $1 AND action = $2 AND status = 'pending')`,
		campaignID, action).Scan(&exists)
	return exists, err
}

// AppendAudit writes one append-only audit entry.
func (r *Repository) AppendAudit(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO action_audit
    (id, action, entity_type, campaign_id, performed_by, performed_at, detail)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.Action, entry.EntityType, entry.CampaignID, entry.PerformedBy, entry.PerformedAt, entry.Detail)
	return err
}

func appendAuditTx(ctx context.Context, tx pgx.Tx, entry domain.AuditEntry) error {
	_, err := tx.Exec(ctx, `INSERT INTO action_audit
    (id, action, entity_type, campaign_id, performed_by, performed_at, detail)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.Action, entry.EntityType, entry.CampaignID, entry.PerformedBy, entry.PerformedAt, entry.Detail)
	return err
}

// AutomationReport aggregates authorization and audit counts since the
// given instant.
func (r *Repository) AutomationReport(ctx context.Context, since time.Time) (*port.AutomationReport, error) {
	report := &port.AutomationReport{
		Since:                 since,
		AuthorizationsByState: make(map[string]int64),
		ActionsByName:         make(map[string]int64),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM spend_authorizations
WHERE requested_at >= $1 GROUP BY status`, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var count int64
		if err = rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		report.AuthorizationsByState[status] = count
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT action, count(*) FROM action_audit
WHERE performed_at >= $1 GROUP BY action`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int64
		if err = rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		report.ActionsByName[action] = count
	}
	return report, rows.Err()
}
