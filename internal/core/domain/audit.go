package domain

import "time"

// AuditEntry is one row of the append-only action audit. Entries are
// never updated or deleted.
type AuditEntry struct {
	ID          string
	Action      string
	EntityType  string
	CampaignID  *string
	PerformedBy string
	PerformedAt time.Time
	Detail      string
}
