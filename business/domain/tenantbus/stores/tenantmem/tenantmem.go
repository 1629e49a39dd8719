// Package tenantmem implements the tenant storer in memory for tests.
package tenantmem

import (
	"context"
	"sync"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
)

type state struct {
	mu      sync.Mutex
	nextID  int64
	tenants []tenantbus.Tenant
}

// Store keeps tenants in memory.
type Store struct {
	st *state
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{st: &state{}}
}

// NewWithTx returns the same store; writes are not transactional.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	return s, nil
}

// Upsert creates the tenant for the user or applies the quota to the
// existing one.
func (s *Store) Upsert(ctx context.Context, userID int64, quota *int) (tenantbus.Tenant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	now := time.Now()

	for i, t := range s.st.tenants {
		if t.UserID == userID {
			if quota != nil {
				t.BranchQuota = *quota
			}
			t.UpdatedAt = now
			s.st.tenants[i] = t
			return t, nil
		}
	}

	t := tenantbus.Tenant{
		UserID:      userID,
		BranchQuota: tenantbus.DefaultBranchQuota,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if quota != nil {
		t.BranchQuota = *quota
	}

	s.st.nextID++
	t.ID = s.st.nextID
	s.st.tenants = append(s.st.tenants, t)

	return t, nil
}

// Update replaces the stored tenant.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for i := range s.st.tenants {
		if s.st.tenants[i].ID == t.ID {
			s.st.tenants[i] = t
		}
	}

	return nil
}

// QueryByID returns the tenant with the id.
func (s *Store) QueryByID(ctx context.Context, tenantID int64) (tenantbus.Tenant, error) {
	return s.find(func(t tenantbus.Tenant) bool { return t.ID == tenantID })
}

// QueryByUserID returns the tenant owned by the user.
func (s *Store) QueryByUserID(ctx context.Context, userID int64) (tenantbus.Tenant, error) {
	return s.find(func(t tenantbus.Tenant) bool { return t.UserID == userID })
}

func (s *Store) find(fn func(tenantbus.Tenant) bool) (tenantbus.Tenant, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for _, t := range s.st.tenants {
		if fn(t) {
			return t, nil
		}
	}

	return tenantbus.Tenant{}, tenantbus.ErrNotFound
}
