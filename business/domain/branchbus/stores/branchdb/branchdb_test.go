package branchdb_test

import (
	"bytes"
	"context"
	"database/sql/driver"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus/stores/branchdb"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/types/branchcode"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*branchdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	return newStoreLog(t, io.Discard)
}

func newStoreLog(t *testing.T, w io.Writer) (*branchdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.New(w, logger.LevelInfo, "TEST", func(context.Context) string { return "" })

	return branchdb.NewStore(log, sqlx.NewDb(db, "pgx")), mock
}

func Test_CreateDuplicateCode(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO branches").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "branches_owner_id_code_key"})

	_, err := store.Create(context.Background(), branchbus.Branch{
		TenantID: 7,
		Code:     branchcode.MustParse("bdrh"),
		Name:     name.MustParse("Bidar Road"),
		Type:     branchtype.Sales,
		Status:   branchstatus.Active,
	})

	assert.ErrorIs(t, err, branchbus.ErrUniqueCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateDuplicateUnderLegacyIndex(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO branches").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "branches_owner_code_idx"})

	_, err := store.Create(context.Background(), branchbus.Branch{
		TenantID: 7,
		Code:     branchcode.MustParse("bdrh"),
		Name:     name.MustParse("Bidar Road"),
		Type:     branchtype.Sales,
		Status:   branchstatus.Active,
	})

	assert.ErrorIs(t, err, branchbus.ErrUniqueCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreatePrimaryKeyViolation(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO branches").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "branches_pkey"})

	_, err := store.Create(context.Background(), branchbus.Branch{
		TenantID: 7,
		Code:     branchcode.MustParse("bdrh"),
		Name:     name.MustParse("Bidar Road"),
		Type:     branchtype.Sales,
		Status:   branchstatus.Active,
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, branchbus.ErrUniqueCode)
}

func Test_CreateReturnsID(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("INSERT INTO branches").
		WithArgs(int64(7), "BDRH", "Bidar Road", "sales", "active", []byte(`{}`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := store.Create(context.Background(), branchbus.Branch{
		TenantID: 7,
		Code:     branchcode.MustParse("bdrh"),
		Name:     name.MustParse("Bidar Road"),
		Type:     branchtype.Sales,
		Status:   branchstatus.Active,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryScopedAndFiltered(t *testing.T) {
	store, mock := newStore(t)

	const q = "SELECT id, owner_id, code, name, type, status, team, created_at, updated_at FROM branches" +
		" WHERE owner_id = $1 AND status = $2 AND (LOWER(code) LIKE $3 OR LOWER(name) LIKE $4)" +
		" ORDER BY created_at DESC, id DESC OFFSET $5 ROWS FETCH NEXT $6 ROWS ONLY"

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "owner_id", "code", "name", "type", "status", "team", "created_at", "updated_at"}).
		AddRow(int64(3), int64(7), "BDRH", "Bidar Road", "sales & services", nil, []byte(`{"mechanic":"Babu|123"}`), now, nil)

	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs(int64(7), "active", "%bd%", "%bd%", int64(0), int64(100)).
		WillReturnRows(rows)

	tid := int64(7)
	st := branchstatus.Active
	qs := "BD"

	got, err := store.Query(context.Background(), branchbus.QueryFilter{TenantID: &tid, Status: &st, Q: &qs}, branchbus.DefaultOrderBy, page.New(1, 100))
	require.NoError(t, err)
	require.Len(t, got, 1)

	b := got[0]
	assert.Equal(t, int64(3), b.ID)
	assert.Equal(t, int64(7), b.TenantID)
	assert.Equal(t, branchtype.SalesAndServices, b.Type)
	assert.Equal(t, branchstatus.Active, b.Status, "missing status reads as active")
	require.Len(t, b.Team.Mechanics, 1)
	assert.Equal(t, "Babu", b.Team.Mechanics[0].Name)
	assert.True(t, b.UpdatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryByIDNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("FROM branches WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.QueryByID(context.Background(), 99)

	assert.ErrorIs(t, err, branchbus.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_QueryByIDLogsMalformedTeam(t *testing.T) {
	var buf bytes.Buffer
	store, mock := newStoreLog(t, &buf)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "code", "name", "type", "status", "team", "created_at", "updated_at"}).
		AddRow(int64(5), int64(7), "BDRH", "Bidar Road", "sales", "active", []byte(`not json`), time.Now().UTC(), nil)

	mock.ExpectQuery("FROM branches WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnRows(rows)

	b, err := store.QueryByID(context.Background(), 5)
	require.NoError(t, err)

	assert.Empty(t, b.Team.Mechanics)
	assert.Contains(t, buf.String(), "branchdb: decode team")
	assert.Contains(t, buf.String(), `"branch_id":5`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_LockTenant(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(7)).
		WillReturnResult(driver.ResultNoRows)

	require.NoError(t, store.LockTenant(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
