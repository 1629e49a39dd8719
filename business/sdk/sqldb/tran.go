package sqldb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Beginner represents a value that can begin a transaction.
type Beginner interface {
	Begin(ctx context.Context) (CommitRollbacker, error)
}

// CommitRollbacker represents a value that can commit or rollback a transaction.
type CommitRollbacker interface {
	Commit() error
	Rollback() error
}

// =============================================================================

// DBBeginner implements the Beginner interface.
type DBBeginner struct {
	sqlxDB *sqlx.DB
}

// NewBeginner constructs a value that implements the beginner interface.
func NewBeginner(sqlxDB *sqlx.DB) *DBBeginner {
	return &DBBeginner{
		sqlxDB: sqlxDB,
	}
}

// Begin implements the Beginner interface and returns a concrete value that
// implements the CommitRollbacker interface. The transaction is bound to ctx.
func (db *DBBeginner) Begin(ctx context.Context) (CommitRollbacker, error) {
	tx, err := db.sqlxDB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx}, nil
}

// Tx is a database transaction that runs registered callbacks after a
// successful commit.
type Tx struct {
	*sqlx.Tx

	mu       sync.Mutex
	onCommit []func()
}

// Commit commits the transaction and then runs the OnCommit callbacks.
func (tx *Tx) Commit() error {
	if err := tx.Tx.Commit(); err != nil {
		return err
	}

	tx.mu.Lock()
	fns := tx.onCommit
	tx.onCommit = nil
	tx.mu.Unlock()

	for _, fn := range fns {
		fn()
	}

	return nil
}

// OnCommit registers fn to run once the transaction commits.
func (tx *Tx) OnCommit(fn func()) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.onCommit = append(tx.onCommit, fn)
}

// OnCommit runs fn after tx commits when tx supports commit callbacks, and
// right away otherwise.
func OnCommit(tx CommitRollbacker, fn func()) {
	if c, ok := tx.(interface{ OnCommit(func()) }); ok {
		c.OnCommit(fn)
		return
	}

	fn()
}

// GetExtContext is a helper function that extracts the sqlx value
// from the domain transactor interface for transactional use.
func GetExtContext(tx CommitRollbacker) (sqlx.ExtContext, error) {
	ec, ok := tx.(sqlx.ExtContext)
	if !ok {
		return nil, fmt.Errorf("Transactor(%T) not of a type *sqlx.Tx", tx)
	}

	return ec, nil
}

// compact collapses a multi-line query for logs and span attributes.
func compact(query string) string {
	query = strings.ReplaceAll(query, "\t", "")
	query = strings.ReplaceAll(query, "\n", " ")
	return strings.TrimSpace(query)
}
