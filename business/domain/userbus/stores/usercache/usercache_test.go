package usercache_test

import (
	"context"
	"io"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/usercache"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/usermem"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog() *logger.Logger {
	return logger.New(io.Discard, logger.LevelInfo, "TEST", func(context.Context) string { return "" })
}

func seed(t *testing.T, mem *usermem.Store) userbus.User {
	t.Helper()

	usr := userbus.User{
		Name:         name.MustParse("Ravi"),
		Email:        mail.Address{Address: "ravi@example.com"},
		PasswordHash: "hash",
		Role:         role.Staff,
		Status:       userstatus.Active,
		TenantID:     3,
		BranchID:     7,
	}

	id, err := mem.Create(context.Background(), usr)
	require.NoError(t, err)
	usr.ID = id

	return usr
}

func Test_UpdateShowsNewRoleAndStatus(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), mem, time.Minute)

	usr := seed(t, mem)

	_, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)

	usr.Role = role.Owner
	usr.Status = userstatus.Inactive
	require.NoError(t, store.Update(ctx, usr))

	got, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, role.Owner, got.Role)
	assert.Equal(t, userstatus.Inactive, got.Status)

	got, err = store.QueryByEmail(ctx, usr.Email)
	require.NoError(t, err)
	assert.Equal(t, userstatus.Inactive, got.Status)
}

func Test_DeletedUserIsGone(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), mem, time.Minute)

	usr := seed(t, mem)

	_, err := store.QueryByEmail(ctx, usr.Email)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, usr))

	_, err = store.QueryByID(ctx, usr.ID)
	assert.ErrorIs(t, err, userbus.ErrNotFound)

	_, err = store.QueryByEmail(ctx, usr.Email)
	assert.ErrorIs(t, err, userbus.ErrNotFound)
}

func Test_EmailChangeEvictsOldEmail(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), mem, time.Minute)

	usr := seed(t, mem)
	old := usr.Email

	_, err := store.QueryByEmail(ctx, old)
	require.NoError(t, err)

	usr.Email = mail.Address{Address: "ravi.k@example.com"}
	require.NoError(t, store.Update(ctx, usr))

	_, err = store.QueryByEmail(ctx, old)
	assert.ErrorIs(t, err, userbus.ErrNotFound)

	got, err := store.QueryByEmail(ctx, usr.Email)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
}

// =============================================================================

// stagedTx applies the writes of a stagedStore only when it commits.
type stagedTx struct {
	mu       sync.Mutex
	pending  []func()
	onCommit []func()
}

func (tx *stagedTx) Commit() error {
	tx.mu.Lock()
	pending, hooks := tx.pending, tx.onCommit
	tx.pending, tx.onCommit = nil, nil
	tx.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	for _, fn := range hooks {
		fn()
	}

	return nil
}

func (tx *stagedTx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.pending, tx.onCommit = nil, nil

	return nil
}

func (tx *stagedTx) OnCommit(fn func()) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.onCommit = append(tx.onCommit, fn)
}

type stagedStore struct {
	*usermem.Store
	tx *stagedTx
}

func (s *stagedStore) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	return &stagedStore{Store: s.Store, tx: tx.(*stagedTx)}, nil
}

func (s *stagedStore) Update(ctx context.Context, usr userbus.User) error {
	if s.tx == nil {
		return s.Store.Update(ctx, usr)
	}

	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	s.tx.pending = append(s.tx.pending, func() { _ = s.Store.Update(ctx, usr) })

	return nil
}

func Test_ReadDuringTransactionDoesNotOutliveCommit(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), &stagedStore{Store: mem}, time.Minute)

	usr := seed(t, mem)

	tx := &stagedTx{}
	txStore, err := store.NewWithTx(tx)
	require.NoError(t, err)

	suspended := usr
	suspended.Status = userstatus.Suspended
	require.NoError(t, txStore.Update(ctx, suspended))

	// A request outside the transaction still sees the committed row and
	// caches it.
	got, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	require.Equal(t, userstatus.Active, got.Status)

	require.NoError(t, tx.Commit())

	got, err = store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, userstatus.Suspended, got.Status)
}

func Test_RolledBackWriteKeepsRow(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), &stagedStore{Store: mem}, time.Minute)

	usr := seed(t, mem)

	tx := &stagedTx{}
	txStore, err := store.NewWithTx(tx)
	require.NoError(t, err)

	demoted := usr
	demoted.Role = role.User
	require.NoError(t, txStore.Update(ctx, demoted))
	require.NoError(t, tx.Rollback())

	got, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, role.Staff, got.Role)
}

// =============================================================================

// pausingStore holds its first QueryByID after reading the row until
// release is closed.
type pausingStore struct {
	*usermem.Store
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *pausingStore) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	usr, err := s.Store.QueryByID(ctx, userID)

	s.once.Do(func() {
		close(s.started)
		<-s.release
	})

	return usr, err
}

func Test_InFlightReadIsNotCachedAfterEviction(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	ps := &pausingStore{Store: mem, started: make(chan struct{}), release: make(chan struct{})}
	store := usercache.NewStore(newLog(), ps, time.Minute)

	usr := seed(t, mem)

	done := make(chan userbus.User)
	go func() {
		got, _ := store.QueryByID(ctx, usr.ID)
		done <- got
	}()

	<-ps.started

	inactive := usr
	inactive.Status = userstatus.Inactive
	require.NoError(t, store.Update(ctx, inactive))

	close(ps.release)
	stale := <-done
	assert.Equal(t, userstatus.Active, stale.Status)

	got, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, userstatus.Inactive, got.Status)
}

func Test_PasswordResetKeepsStoredRole(t *testing.T) {
	ctx := context.Background()
	mem := usermem.NewStore()
	store := usercache.NewStore(newLog(), mem, time.Minute)

	usr := seed(t, mem)

	_, err := store.QueryByEmail(ctx, usr.Email)
	require.NoError(t, err)

	// Written by another instance; this cache still holds the staff row.
	promoted := usr
	promoted.Role = role.Owner
	promoted.Status = userstatus.Inactive
	require.NoError(t, mem.Update(ctx, promoted))

	core := userbus.NewCore(newLog(), store)

	token, err := core.StartPasswordReset(ctx, usr.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := mem.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, role.Owner, got.Role)
	assert.Equal(t, userstatus.Inactive, got.Status)
	assert.Equal(t, userbus.HashResetToken(token), got.ResetTokenHash)

	cached, err := store.QueryByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, role.Owner, cached.Role)
}
