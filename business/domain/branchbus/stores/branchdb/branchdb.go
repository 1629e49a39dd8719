// Package branchdb contains branch related CRUD functionality.
package branchdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jmoiron/sqlx"
)

const primaryKey = "branches_pkey"

const selectColumns = `
	SELECT
		id, owner_id, code, name, type, status, team, created_at, updated_at
	FROM
		branches`

// Store manages the set of APIs for branch database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (branchbus.Storer, error) {
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

// LockTenant takes the transaction scoped advisory lock for the tenant. It
// must run inside a transaction; the lock is released on commit or rollback.
func (s *Store) LockTenant(ctx context.Context, tenantID int64) error {
	data := struct {
		OwnerID int64 `db:"owner_id"`
	}{
		OwnerID: tenantID,
	}

	const q = `SELECT pg_advisory_xact_lock(:owner_id)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Create inserts a new branch into the database and returns its id.
func (s *Store) Create(ctx context.Context, b branchbus.Branch) (int64, error) {
	dbBrn, err := toDBBranch(b)
	if err != nil {
		return 0, err
	}

	const q = `
	INSERT INTO branches
		(owner_id, code, name, type, status, team, created_at, updated_at)
	VALUES
		(:owner_id, :code, :name, :type, :status, CAST(:team AS JSONB), :created_at, :updated_at)
	RETURNING
		id`

	var row struct {
		ID int64 `db:"id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, dbBrn, &row); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", uniqueErr(err))
	}

	return row.ID, nil
}

// Update replaces a branch document in the database.
func (s *Store) Update(ctx context.Context, b branchbus.Branch) error {
	dbBrn, err := toDBBranch(b)
	if err != nil {
		return err
	}

	const q = `
	UPDATE
		branches
	SET
		code = :code,
		name = :name,
		type = :type,
		status = :status,
		team = CAST(:team AS JSONB),
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbBrn); err != nil {
		return fmt.Errorf("namedexeccontext: %w", uniqueErr(err))
	}

	return nil
}

// Delete removes a branch from the database.
func (s *Store) Delete(ctx context.Context, b branchbus.Branch) error {
	data := struct {
		ID int64 `db:"id"`
	}{
		ID: b.ID,
	}

	const q = `
	DELETE FROM
		branches
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing branches from the database.
func (s *Store) Query(ctx context.Context, filter branchbus.QueryFilter, orderBy order.By, page page.Page) ([]branchbus.Branch, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	buf := bytes.NewBufferString(selectColumns)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbBrns []branchDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbBrns); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusBranches(ctx, s.log, dbBrns)
}

// Count returns the total number of branches in the DB.
func (s *Store) Count(ctx context.Context, filter branchbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		branches`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified branch from the database.
func (s *Store) QueryByID(ctx context.Context, branchID int64) (branchbus.Branch, error) {
	data := struct {
		ID int64 `db:"id"`
	}{
		ID: branchID,
	}

	q := selectColumns + `
	WHERE
		id = :id`

	var dbBrn branchDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbBrn); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return branchbus.Branch{}, fmt.Errorf("db: %w", branchbus.ErrNotFound)
		}
		return branchbus.Branch{}, fmt.Errorf("db: %w", err)
	}

	return toBusBranch(ctx, s.log, dbBrn)
}

// =============================================================================

// CreateRequest records a quota request and returns its id.
func (s *Store) CreateRequest(ctx context.Context, r branchbus.Request) (int64, error) {
	const q = `
	INSERT INTO branch_requests
		(owner_id, requested_count, requested_reason, status, created_at)
	VALUES
		(:owner_id, :requested_count, :requested_reason, :status, :created_at)
	RETURNING
		id`

	var row struct {
		ID int64 `db:"id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, toDBRequest(r), &row); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return row.ID, nil
}

// QueryRequests retrieves a page of quota requests, newest first.
func (s *Store) QueryRequests(ctx context.Context, filter branchbus.RequestFilter, page page.Page) ([]branchbus.Request, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		id, owner_id, requested_count, requested_reason, status, created_at
	FROM
		branch_requests`

	buf := bytes.NewBufferString(q)
	applyRequestFilter(filter, data, buf)
	buf.WriteString(" ORDER BY created_at DESC, id DESC")
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbReqs []requestDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbReqs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusRequests(dbReqs), nil
}

// CountRequests returns the number of quota requests matching the filter.
func (s *Store) CountRequests(ctx context.Context, filter branchbus.RequestFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		branch_requests`

	buf := bytes.NewBufferString(q)
	applyRequestFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// The tenant code index is the only unique key on branches besides the
// primary key, so any violation that is not the primary key maps to it.
func uniqueErr(err error) error {
	var dupErr sqldb.ErrDBDuplicatedEntry
	if errors.As(err, &dupErr) && dupErr.Constraint != primaryKey {
		return branchbus.ErrUniqueCode
	}

	return err
}
