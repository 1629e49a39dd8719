// Package userdb contains user related CRUD functionality.
package userdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
	"github.com/jcpaschoal/dealerdesk/business/sdk/page"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Names of the unique indexes on the users table.
const (
	uniqueEmail      = "users_email_key"
	uniquePhone      = "users_phone_unique"
	uniqueBranchRole = "users_branch_role_unique"
)

const selectColumns = `
	SELECT
		id, name, email, phone, password, role, status, owner_id, branch_id,
		reset_token, reset_expires_at, created_at, updated_at
	FROM
		users`

// Store manages the set of APIs for user database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
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

// Create inserts a new user into the database and returns its id.
func (s *Store) Create(ctx context.Context, usr userbus.User) (int64, error) {
	const q = `
	INSERT INTO users
		(name, email, phone, password, role, status, owner_id, branch_id, created_at, updated_at)
	VALUES
		(:name, :email, :phone, :password, :role, :status, :owner_id, :branch_id, :created_at, :updated_at)
	RETURNING
		id`

	var row struct {
		ID int64 `db:"id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, toDBUser(usr), &row); err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", uniqueErr(err))
	}

	return row.ID, nil
}

// Update replaces a user document in the database.
func (s *Store) Update(ctx context.Context, usr userbus.User) error {
	const q = `
	UPDATE
		users
	SET
		name = :name,
		email = :email,
		phone = :phone,
		password = :password,
		role = :role,
		status = :status,
		owner_id = :owner_id,
		branch_id = :branch_id,
		reset_token = :reset_token,
		reset_expires_at = :reset_expires_at,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", uniqueErr(err))
	}

	return nil
}

// UpdateReset writes only the password and reset token columns of the user.
func (s *Store) UpdateReset(ctx context.Context, usr userbus.User) error {
	const q = `
	UPDATE
		users
	SET
		password = :password,
		reset_token = :reset_token,
		reset_expires_at = :reset_expires_at,
		updated_at = :updated_at
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a user from the database.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	const q = `
	DELETE FROM
		users
	WHERE
		id = :id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing users from the database.
func (s *Store) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
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

	var dbUsrs []userDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbUsrs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUsers(dbUsrs)
}

// Count returns the total number of users in the DB.
func (s *Store) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		users`

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

// QueryByID gets the specified user from the database.
func (s *Store) QueryByID(ctx context.Context, userID int64) (userbus.User, error) {
	data := struct {
		ID int64 `db:"id"`
	}{
		ID: userID,
	}

	return s.queryOne(ctx, selectColumns+`
	WHERE
		id = :id`, data)
}

// QueryByEmail gets the specified user from the database by email.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	data := struct {
		Email string `db:"email"`
	}{
		Email: email.Address,
	}

	return s.queryOne(ctx, selectColumns+`
	WHERE
		email = :email`, data)
}

// QueryByResetToken gets the user holding the hashed reset token.
func (s *Store) QueryByResetToken(ctx context.Context, tokenHash string) (userbus.User, error) {
	data := struct {
		ResetToken string `db:"reset_token"`
	}{
		ResetToken: tokenHash,
	}

	return s.queryOne(ctx, selectColumns+`
	WHERE
		reset_token = :reset_token
	LIMIT 1`, data)
}

func (s *Store) queryOne(ctx context.Context, q string, data any) (userbus.User, error) {
	var dbUsr userDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbUsr); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return userbus.User{}, fmt.Errorf("db: %w", userbus.ErrNotFound)
		}
		return userbus.User{}, fmt.Errorf("db: %w", err)
	}

	return toBusUser(dbUsr)
}

// uniqueErr maps a violated unique index onto the domain error for it.
func uniqueErr(err error) error {
	var dupErr sqldb.ErrDBDuplicatedEntry
	if !errors.As(err, &dupErr) {
		return err
	}

	switch dupErr.Constraint {
	case uniqueEmail:
		return userbus.ErrUniqueEmail
	case uniquePhone:
		return userbus.ErrUniquePhone
	case uniqueBranchRole:
		return userbus.ErrUniqueBranchRole
	}

	return userbus.ErrUniqueEmail
}
