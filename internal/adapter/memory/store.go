package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nexora/internal/core/domain"
	"nexora/internal/core/port"
)

// Store is a mutex-guarded in-memory implementation of port.Repository.
// It backs the usecase tests and local demos; the production adapter is
// the postgres package.
type Store struct {
	mu sync.RWMutex

	campaigns map[string]domain.Campaign
	snapshots map[string][]domain.MetricSnapshot
	auths     map[string]domain.SpendAuthorization
	audit     []domain.AuditEntry
}

func NewStore(seed ...domain.Campaign) *Store {
	campaigns := make(map[string]domain.Campaign, len(seed))
	for _, c := range seed {
		campaigns[c.ID] = c
	}
	return &Store{
		campaigns: campaigns,
		snapshots: make(map[string][]domain.MetricSnapshot),
		auths:     make(map[string]domain.SpendAuthorization),
	}
}

func (s *Store) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.campaigns[c.ID]; exists {
		return port.ErrInvalidCampaign
	}
	s.campaigns[c.ID] = *c
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.campaigns[id]
	if !exists {
		return nil, port.ErrCampaignNotFound
	}
	return &c, nil
}

func (s *Store) ListCampaigns(_ context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListActiveCampaignIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, c := range s.campaigns {
		if c.Status == domain.StatusActive {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) ApplyBudgetChange(_ context.Context, campaignID string, newBudget decimal.Decimal, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.campaigns[campaignID]
	if !exists {
		return port.ErrCampaignNotFound
	}
	c.DailyBudget = newBudget
	c.UpdatedAt = entry.PerformedAt
	s.campaigns[campaignID] = c
	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) ChangeStatus(_ context.Context, campaignID string, to domain.Status, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.campaigns[campaignID]
	if !exists {
		return port.ErrCampaignNotFound
	}
	if !c.Status.CanTransitionTo(to) {
		return port.ErrInvalidTransition
	}
	c.Status = to
	c.UpdatedAt = entry.PerformedAt
	s.campaigns[campaignID] = c
	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) InsertSnapshot(_ context.Context, snap domain.MetricSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := snap.Day()
	for _, existing := range s.snapshots[snap.CampaignID] {
		if existing.Date.Equal(day) {
			return port.ErrDuplicateSnapshot
		}
	}
	snap.Date = day
	s.snapshots[snap.CampaignID] = append(s.snapshots[snap.CampaignID], snap)
	return nil
}

func (s *Store) ListRecentSnapshots(_ context.Context, campaignID string, days int) ([]domain.MetricSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := append([]domain.MetricSnapshot(nil), s.snapshots[campaignID]...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	if days > 0 && len(items) > days {
		items = items[:days]
	}
	return items, nil
}

func (s *Store) CreateAuthorization(_ context.Context, auth *domain.SpendAuthorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auths[auth.ID] = *auth
	return nil
}

func (s *Store) GetAuthorization(_ context.Context, id string) (*domain.SpendAuthorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.auths[id]
	if !exists {
		return nil, port.ErrAuthorizationNotFound
	}
	return &a, nil
}

func (s *Store) ResolveAuthorization(_ context.Context, id string, status domain.AuthStatus, responder, notes string, at time.Time, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.auths[id]
	if !exists {
		return port.ErrAuthorizationNotFound
	}
	if a.Status != domain.AuthPending {
		return port.ErrAlreadyResolved
	}
	a.Status = status
	a.RespondedAt = &at
	a.ResponseBy = responder
	if notes != "" {
		a.Notes = notes
	}
	s.auths[id] = a
	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) ListPendingAuthorizations(_ context.Context) ([]domain.SpendAuthorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.SpendAuthorization
	for _, a := range s.auths {
		if a.Status == domain.AuthPending {
			items = append(items, a)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RequestedAt.After(items[j].RequestedAt)
	})
	return items, nil
}

func (s *Store) HasPendingAuthorization(_ context.Context, campaignID string, action domain.AuthAction) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.auths {
		if a.Status == domain.AuthPending && a.Action == action &&
			a.CampaignID != nil && *a.CampaignID == campaignID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AppendAudit(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, entry)
	return nil
}

func (s *Store) AutomationReport(_ context.Context, since time.Time) (*port.AutomationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := &port.AutomationReport{
		Since:                 since,
		AuthorizationsByState: make(map[string]int64),
		ActionsByName:         make(map[string]int64),
	}
	for _, a := range s.auths {
		if !a.RequestedAt.Before(since) {
			report.AuthorizationsByState[string(a.Status)]++
		}
	}
	for _, e := range s.audit {
		if !e.PerformedAt.Before(since) {
			report.ActionsByName[e.Action]++
		}
	}
	return report, nil
}

// AuditEntries returns a copy of the audit log, oldest first. Test helper.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.AuditEntry(nil), s.audit...)
}

// Authorizations returns a copy of all authorization rows. Test helper.
func (s *Store) Authorizations() []domain.SpendAuthorization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.SpendAuthorization, 0, len(s.auths))
	for _, a := range s.auths {
		items = append(items, a)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RequestedAt.Before(items[j].RequestedAt)
	})
	return items
}
