package branchmem

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
)

// Beginner hands out in-memory transactions. Writes are applied
// immediately; a transaction only scopes the tenant locks taken under it
// and the callbacks registered with OnCommit.
type Beginner struct{}

// Begin implements sqldb.Beginner.
func (Beginner) Begin(ctx context.Context) (sqldb.CommitRollbacker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{}, nil
}

// Tx releases its tenant locks when it ends.
type Tx struct {
	mu       sync.Mutex
	done     bool
	release  []func()
	onCommit []func()
}

// Commit implements sqldb.CommitRollbacker.
func (tx *Tx) Commit() error {
	fns, err := tx.end()
	if err != nil {
		return err
	}

	for _, fn := range fns {
		fn()
	}

	return nil
}

// Rollback implements sqldb.CommitRollbacker.
func (tx *Tx) Rollback() error {
	_, err := tx.end()
	return err
}

// OnCommit registers fn to run once the transaction commits.
func (tx *Tx) OnCommit(fn func()) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.onCommit = append(tx.onCommit, fn)
}

func (tx *Tx) end() ([]func(), error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return nil, sql.ErrTxDone
	}
	tx.done = true

	for _, fn := range tx.release {
		fn()
	}
	tx.release = nil

	fns := tx.onCommit
	tx.onCommit = nil

	return fns, nil
}

func (tx *Tx) onEnd(fn func()) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.release = append(tx.release, fn)
}
