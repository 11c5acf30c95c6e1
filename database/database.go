package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/fullscopemd/storefront/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrDBNotFound  = sql.ErrNoRows
	ErrDBDuplicate = errors.New("duplicate entry")
	ErrDBReference = errors.New("referenced entry does not exist or is still referenced")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError turns constraint violations into the package sentinels.
func mapError(err error) error {
	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		switch pqerr.Code {
		case uniqueViolation:
			return ErrDBDuplicate
		case foreignKeyViolation:
			return ErrDBReference
		}
	}
	return err
}

func Open(cfg config.DB) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var pingError error
	for attempts := 1; ; attempts++ {
		pingError = db.PingContext(ctx)
		if pingError == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var tmp bool
	return db.QueryRowContext(ctx, `SELECT true`).Scan(&tmp)
}

// Migrate applies every pending migration embedded in the binary.
func Migrate(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations source: %w", err)
	}

	drv, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Transaction runs f inside a transaction, committing when f succeeds and
// rolling back otherwise.
func Transaction(ctx context.Context, db *sqlx.DB, f func(sqlx.ExtContext) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := f(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback transaction: %v: %w", rerr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func NamedExecContext(ctx context.Context, db sqlx.ExtContext, query string, data any) (sql.Result, error) {
	res, err := sqlx.NamedExecContext(ctx, db, query, data)
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// NamedQueryRowID runs an INSERT ... RETURNING id statement.
func NamedQueryRowID(ctx context.Context, db sqlx.ExtContext, query string, data any) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, db, query, data)
	if err != nil {
		return 0, mapError(err)
	}
	defer rows.Close()

	// lib/pq may report a constraint violation only once rows are read.
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, mapError(err)
		}
		return 0, ErrDBNotFound
	}

	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// ExecContext runs a plain statement, mapping constraint violations.
func ExecContext(ctx context.Context, db sqlx.ExtContext, query string, args ...any) (sql.Result, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// RowsAffected reports ErrDBNotFound when a statement touched no row.
func RowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDBNotFound
	}
	return nil
}
