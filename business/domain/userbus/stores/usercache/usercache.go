// Package usercache contains user related CRUD functionality with caching.
package usercache

import (
	"context"
	"net/mail"
	"strconv"
	"sync"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for user data and caching.
type Store struct {
	log    *logger.Logger
	storer userbus.Storer
	cache  *sturdyc.Client[userbus.User]
	gen    *generation
	tx     sqldb.CommitRollbacker
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer userbus.Storer, ttl time.Duration) *Store {
	const capacity = 10000
	const numShards = 10
	const evictionPercentage = 10

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[userbus.User](capacity, numShards, ttl, evictionPercentage),
		gen:    &generation{},
	}
}

// NewWithTx constructs a new Store value replacing the storer with one
// bound to the transaction. Reads through the returned store skip the
// cache, and the entries it writes are evicted again once tx commits.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	storer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &Store{
		log:    s.log,
		storer: storer,
		cache:  s.cache,
		gen:    s.gen,
		tx:     tx,
	}, nil
}

// Create inserts a new user into the database.
func (s *Store) Create(ctx context.Context, usr userbus.User) (int64, error) {
	return s.storer.Create(ctx, usr)
}

// Update replaces a user document in the database.
func (s *Store) Update(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Update(ctx, usr); err != nil {
		return err
	}

	keys := []string{idKey(usr.ID), usr.Email.Address}

	// The email may have changed.
	if old, exists := s.cache.Get(idKey(usr.ID)); exists && old.Email.Address != usr.Email.Address {
		keys = append(keys, old.Email.Address)
	}

	s.evict(keys...)

	return nil
}

// UpdateReset writes the password and reset token of a user.
func (s *Store) UpdateReset(ctx context.Context, usr userbus.User) error {
	if err := s.storer.UpdateReset(ctx, usr); err != nil {
		return err
	}

	s.evict(idKey(usr.ID), usr.Email.Address)

	return nil
}

// Delete removes a user from the database.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Delete(ctx, usr); err != nil {
		return err
	}

	s.evict(idKey(usr.ID), usr.Email.Address)

	return nil
}

// Query retrieves a list of existing users from the database.
func (s *Store) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return s.storer.Query(ctx, filter, orderBy, page)
}

// Count returns the total number of users in the DB.
func (s *Store) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return s.storer.Count(ctx, filter)
}

// QueryByID gets the specified user from the cache or database.
func (s *Store) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	if s.tx != nil {
		return s.storer.QueryByID(ctx, userID)
	}

	if usr, exists := s.cache.Get(idKey(userID)); exists {
		return usr, nil
	}

	gen := s.gen.current()

	usr, err := s.storer.QueryByID(ctx, userID)
	if err != nil {
		return userbus.User{}, err
	}

	s.writeCache(gen, usr)

	return usr, nil
}

// QueryByEmail gets the specified user from the cache or database by email.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	if s.tx != nil {
		return s.storer.QueryByEmail(ctx, email)
	}

	if usr, exists := s.cache.Get(email.Address); exists {
		return usr, nil
	}

	gen := s.gen.current()

	usr, err := s.storer.QueryByEmail(ctx, email)
	if err != nil {
		return userbus.User{}, err
	}

	s.writeCache(gen, usr)

	return usr, nil
}

// QueryByResetToken always reads through to the database.
func (s *Store) QueryByResetToken(ctx context.Context, tokenHash string) (userbus.User, error) {
	return s.storer.QueryByResetToken(ctx, tokenHash)
}

// =============================================================================

// writeCache stores a row read while the generation was gen. A row read
// before an eviction is dropped since it may predate the write.
func (s *Store) writeCache(gen uint64, bus userbus.User) {
	s.gen.mu.Lock()
	defer s.gen.mu.Unlock()

	if s.gen.n != gen {
		return
	}

	s.cache.Set(idKey(bus.ID), bus)
	s.cache.Set(bus.Email.Address, bus)
}

// evict deletes the keys now and, for a store bound to a transaction, once
// more after the transaction commits.
func (s *Store) evict(keys ...string) {
	s.delete(keys)

	if s.tx != nil {
		sqldb.OnCommit(s.tx, func() { s.delete(keys) })
	}
}

func (s *Store) delete(keys []string) {
	s.gen.mu.Lock()
	defer s.gen.mu.Unlock()

	s.gen.n++
	for _, key := range keys {
		s.cache.Delete(key)
	}
}

// generation counts evictions across a store and its transaction bound
// copies.
type generation struct {
	mu sync.Mutex
	n  uint64
}

func (g *generation) current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.n
}

func idKey(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}
