// Package tenantdb contains tenant related CRUD functionality.
package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for tenant database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Upsert inserts the tenant for the user or refreshes the existing one.
func (s *Store) Upsert(ctx context.Context, userID int64, quota *int) (tenantbus.Tenant, error) {
	data := struct {
		UserID      int64         `db:"user_id"`
		MaxBranches sql.NullInt64 `db:"max_branches"`
	}{
		UserID: userID,
	}

	if quota != nil {
		data.MaxBranches = sql.NullInt64{Int64: int64(*quota), Valid: true}
	}

	const q = `
	INSERT INTO owners
		(user_id, max_branches)
	VALUES
		(:user_id, COALESCE(CAST(:max_branches AS INT), 1))
	ON CONFLICT (user_id) DO UPDATE SET
		max_branches = COALESCE(CAST(:max_branches AS INT), owners.max_branches),
		updated_at = now()
	RETURNING
		id, user_id, web_app_url, logo_url, max_branches, created_at, updated_at`

	var dbTen tenantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTen); err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("namedquerystruct: %w", err)
	}

	return toBusTenant(dbTen), nil
}

// Update replaces a tenant document in the database.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	UPDATE
		owners
	SET
		web_app_url = :web_app_url,
		logo_url = :logo_url,
		max_branches = :max_branches,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified tenant from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID int64) (tenantbus.Tenant, error) {
	data := struct {
		ID int64 `db:"id"`
	}{
		ID: tenantID,
	}

	const q = `
	SELECT
		id, user_id, web_app_url, logo_url, max_branches, created_at, updated_at
	FROM
		owners
	WHERE
		id = :id`

	return s.queryOne(ctx, q, data)
}

// QueryByUserID gets the tenant owned by the specified user.
func (s *Store) QueryByUserID(ctx context.Context, userID int64) (tenantbus.Tenant, error) {
	data := struct {
		UserID int64 `db:"user_id"`
	}{
		UserID: userID,
	}

	const q = `
	SELECT
		id, user_id, web_app_url, logo_url, max_branches, created_at, updated_at
	FROM
		owners
	WHERE
		user_id = :user_id`

	return s.queryOne(ctx, q, data)
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (tenantbus.Tenant, error) {
	var dbTen tenantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTen); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenantbus.Tenant{}, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
		}
		return tenantbus.Tenant{}, fmt.Errorf("db: %w", err)
	}

	return toBusTenant(dbTen), nil
}
