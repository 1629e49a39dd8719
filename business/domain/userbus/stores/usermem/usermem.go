// Package usermem implements the user storer in memory for tests.
package usermem

import (
	"context"
	"net/mail"
	"slices"
	"strings"
	"sync"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
)

type state struct {
	mu     sync.Mutex
	nextID int64
	users  []userbus.User
}

// Store keeps users in memory with the same unique rules as the users
// table.
type Store struct {
	st *state
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{st: &state{}}
}

// NewWithTx returns the same store; writes are not transactional.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return s, nil
}

// Create stores the user and returns its id.
func (s *Store) Create(ctx context.Context, usr userbus.User) (int64, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if err := s.unique(usr); err != nil {
		return 0, err
	}

	s.st.nextID++
	usr.ID = s.st.nextID
	s.st.users = append(s.st.users, usr)

	return usr.ID, nil
}

// Update replaces the stored user.
func (s *Store) Update(ctx context.Context, usr userbus.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if err := s.unique(usr); err != nil {
		return err
	}

	for i := range s.st.users {
		if s.st.users[i].ID == usr.ID {
			s.st.users[i] = usr
		}
	}

	return nil
}

// UpdateReset copies only the password and reset token fields.
func (s *Store) UpdateReset(ctx context.Context, usr userbus.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for i := range s.st.users {
		if s.st.users[i].ID == usr.ID {
			s.st.users[i].PasswordHash = usr.PasswordHash
			s.st.users[i].ResetTokenHash = usr.ResetTokenHash
			s.st.users[i].ResetExpiresAt = usr.ResetExpiresAt
			s.st.users[i].UpdatedAt = usr.UpdatedAt
		}
	}

	return nil
}

// Delete removes the user.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	s.st.users = slices.DeleteFunc(s.st.users, func(e userbus.User) bool {
		return e.ID == usr.ID
	})

	return nil
}

// Query returns the matching users newest first.
func (s *Store) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, pg page.Page) ([]userbus.User, error) {
	all := s.match(filter)

	start := min(pg.Offset(), len(all))
	end := min(start+pg.RowsPerPage(), len(all))

	return all[start:end], nil
}

// Count returns the number of matching users.
func (s *Store) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return len(s.match(filter)), nil
}

// QueryByID returns the user with the id.
func (s *Store) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	return s.find(func(u userbus.User) bool { return u.ID == userID })
}

// QueryByEmail returns the user with the email.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	return s.find(func(u userbus.User) bool { return u.Email.Address == email.Address })
}

// QueryByResetToken returns the user holding the hashed token.
func (s *Store) QueryByResetToken(ctx context.Context, tokenHash string) (userbus.User, error) {
	return s.find(func(u userbus.User) bool { return tokenHash != "" && u.ResetTokenHash == tokenHash })
}

// =============================================================================

func (s *Store) find(fn func(userbus.User) bool) (userbus.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	for _, u := range s.st.users {
		if fn(u) {
			return u, nil
		}
	}

	return userbus.User{}, userbus.ErrNotFound
}

// unique must be called with the lock held.
func (s *Store) unique(usr userbus.User) error {
	for _, e := range s.st.users {
		if e.ID == usr.ID {
			continue
		}

		switch {
		case e.Email.Address == usr.Email.Address:
			return userbus.ErrUniqueEmail

		case usr.Phone.Valid() && e.Phone.Equal(usr.Phone):
			return userbus.ErrUniquePhone

		case usr.Role.IsBranchScoped() && usr.BranchID != 0 && e.BranchID == usr.BranchID && e.Role.Equal(usr.Role):
			return userbus.ErrUniqueBranchRole
		}
	}

	return nil
}

func (s *Store) match(filter userbus.QueryFilter) []userbus.User {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	var out []userbus.User
	for _, u := range slices.Backward(s.st.users) {
		switch {
		case filter.ID != nil && u.ID != *filter.ID:
			continue
		case filter.TenantID != nil && u.TenantID != *filter.TenantID:
			continue
		case filter.BranchID != nil && u.BranchID != *filter.BranchID:
			continue
		case filter.Role != nil && !u.Role.Equal(*filter.Role):
			continue
		case filter.Status != nil && !u.Status.Equal(*filter.Status):
			continue
		case filter.Q != nil && !matchQ(*filter.Q, u):
			continue
		}
		out = append(out, u)
	}

	return out
}

func matchQ(q string, u userbus.User) bool {
	q = strings.ToLower(q)

	return strings.Contains(strings.ToLower(u.Name.String()), q) ||
		strings.Contains(strings.ToLower(u.Email.Address), q) ||
		strings.Contains(u.Phone.String(), q)
}
