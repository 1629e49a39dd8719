// Package migrate brings the database schema up to date using the embedded
// goose migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrations embed.FS

// migrationLockID is the advisory lock key shared by every process that runs
// the schema bootstrap.
const migrationLockID = 73_251_004

var (
	once    sync.Once
	onceErr error
)

// Migrate applies every pending migration once per process. Concurrent
// processes are serialized with a session level advisory lock, and every
// statement tolerates objects that already exist.
func Migrate(ctx context.Context, log *logger.Logger, db *sql.DB) error {
	once.Do(func() {
		onceErr = migrate(ctx, log, db)
	})

	return onceErr
}

func migrate(ctx context.Context, log *logger.Logger, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("lock connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}

	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Error(ctx, "migrate: advisory unlock", "err", err)
		}
	}()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("db version: %w", err)
	}

	log.Info(ctx, "migrate", "status", "schema up to date", "version", version)

	return nil
}

// gooseLogger routes goose output through the service logger.
type gooseLogger struct {
	ctx context.Context
	log *logger.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(l.ctx, "goose", "msg", fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(l.ctx, "goose", "msg", fmt.Sprintf(format, v...))
}
