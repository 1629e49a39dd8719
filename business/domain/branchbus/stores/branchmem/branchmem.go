// Package branchmem implements the branch storer in memory for tests.
package branchmem

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
)

type state struct {
	mu       sync.Mutex
	nextID   int64
	branches []branchbus.Branch
	requests []branchbus.Request
	locks    map[int64]chan struct{}
}

// Store keeps branches and quota requests in memory.
type Store struct {
	st *state
	tx *Tx
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		st: &state{locks: make(map[int64]chan struct{})},
	}
}

// NewWithTx binds the store to a transaction from Beginner. Transactions
// of other kinds share the store without lock tracking.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (branchbus.Storer, error) {
	mtx, _ := tx.(*Tx)

	return &Store{st: s.st, tx: mtx}, nil
}

// LockTenant blocks until the tenant lock is free or ctx is done, and
// holds it until the bound transaction ends.
func (s *Store) LockTenant(ctx context.Context, tenantID int64) error {
	if s.tx == nil {
		return nil
	}

	s.st.mu.Lock()
	l, exists := s.st.locks[tenantID]
	if !exists {
		l = make(chan struct{}, 1)
		s.st.locks[tenantID] = l
	}
	s.st.mu.Unlock()

	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.tx.onEnd(func() { <-l })

	return nil
}

// Create stores the branch, enforcing the per tenant unique code.
func (s *Store) Create(ctx context.Context, b branchbus.Branch) (int64, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for _, e := range s.st.branches {
		if e.TenantID == b.TenantID && e.Code.Equal(b.Code) {
			return 0, branchbus.ErrUniqueCode
		}
	}

	s.st.nextID++
	b.ID = s.st.nextID
	s.st.branches = append(s.st.branches, b)

	return b.ID, nil
}

// Update replaces the stored branch.
func (s *Store) Update(ctx context.Context, b branchbus.Branch) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for _, e := range s.st.branches {
		if e.ID != b.ID && e.TenantID == b.TenantID && e.Code.Equal(b.Code) {
			return branchbus.ErrUniqueCode
		}
	}

	for i := range s.st.branches {
		if s.st.branches[i].ID == b.ID {
			s.st.branches[i] = b
			return nil
		}
	}

	return nil
}

// Delete removes the branch.
func (s *Store) Delete(ctx context.Context, b branchbus.Branch) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	s.st.branches = slices.DeleteFunc(s.st.branches, func(e branchbus.Branch) bool {
		return e.ID == b.ID
	})

	return nil
}

// Query returns the matching branches newest first. Only the default
// ordering is supported.
func (s *Store) Query(ctx context.Context, filter branchbus.QueryFilter, orderBy order.By, pg page.Page) ([]branchbus.Branch, error) {
	all := s.match(filter)

	start := min(pg.Offset(), len(all))
	end := min(start+pg.RowsPerPage(), len(all))

	return all[start:end], nil
}

// Count returns the number of matching branches.
func (s *Store) Count(ctx context.Context, filter branchbus.QueryFilter) (int, error) {
	return len(s.match(filter)), nil
}

// QueryByID returns the branch with the id.
func (s *Store) QueryByID(ctx context.Context, branchID int64) (branchbus.Branch, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for _, b := range s.st.branches {
		if b.ID == branchID {
			return b, nil
		}
	}

	return branchbus.Branch{}, branchbus.ErrNotFound
}

// CreateRequest stores the quota request.
func (s *Store) CreateRequest(ctx context.Context, r branchbus.Request) (int64, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	s.st.nextID++
	r.ID = s.st.nextID
	s.st.requests = append(s.st.requests, r)

	return r.ID, nil
}

// QueryRequests returns the matching requests newest first.
func (s *Store) QueryRequests(ctx context.Context, filter branchbus.RequestFilter, pg page.Page) ([]branchbus.Request, error) {
	all := s.matchRequests(filter)

	start := min(pg.Offset(), len(all))
	end := min(start+pg.RowsPerPage(), len(all))

	return all[start:end], nil
}

// CountRequests returns the number of matching requests.
func (s *Store) CountRequests(ctx context.Context, filter branchbus.RequestFilter) (int, error) {
	return len(s.matchRequests(filter)), nil
}

// =============================================================================

func (s *Store) match(filter branchbus.QueryFilter) []branchbus.Branch {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	var out []branchbus.Branch
	for _, b := range slices.Backward(s.st.branches) {
		switch {
		case filter.ID != nil && b.ID != *filter.ID:
			continue
		case filter.TenantID != nil && b.TenantID != *filter.TenantID:
			continue
		case filter.Type != nil && !b.Type.Equal(*filter.Type):
			continue
		case filter.Status != nil && !b.Status.Equal(*filter.Status):
			continue
		case filter.Q != nil && !containsFold(*filter.Q, b.Code.String(), b.Name.String()):
			continue
		}
		out = append(out, b)
	}

	return out
}

func (s *Store) matchRequests(filter branchbus.RequestFilter) []branchbus.Request {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	var out []branchbus.Request
	for _, r := range slices.Backward(s.st.requests) {
		switch {
		case filter.TenantID != nil && r.TenantID != *filter.TenantID:
			continue
		case filter.Status != nil && r.Status != *filter.Status:
			continue
		}
		out = append(out, r)
	}

	return out
}

func containsFold(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}

	return false
}
