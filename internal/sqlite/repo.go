// Package sqlite implements the article store on top of a single SQLite
// database.
//
// Every feed's partition lives in the shared articles table, keyed by feed_id,
// so queries across feeds are plain filtered scans.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"

	"github.com/jdholdren/newsstand/internal/newsstand"
)

// Ensure Repo implements the Repository interface
var _ newsstand.Repository = (*Repo)(nil)

// SQLite result codes, see https://www.sqlite.org/rescode.html
const (
	codeBusy                 = 5
	codeLocked               = 6
	codeConstraintPrimaryKey = 1555
	codeConstraintUnique     = 2067
)

const defaultRetryTimeout = 5 * time.Second

// Config tunes the repo.
type Config struct {
	// How long a write keeps being retried while the database is busy.
	RetryTimeout time.Duration
}

type Repo struct {
	db           *sqlx.DB
	retryTimeout time.Duration
}

func New(db *sqlx.DB, cfg Config) Repo {
	if cfg.RetryTimeout <= 0 {
		cfg.RetryTimeout = defaultRetryTimeout
	}

	return Repo{
		db:           db,
		retryTimeout: cfg.RetryTimeout,
	}
}

// Open connects to the database at path, waiting up to timeout for it to
// become reachable.
//
// Failing to reach it is reported as [newsstand.ErrStorageUnavailable].
func Open(ctx context.Context, path string, timeout time.Duration) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	dbx, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	b := retry.WithMaxDuration(timeout, retry.NewFibonacci(100*time.Millisecond))
	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "database not reachable yet", "error", err)
			return retry.RetryableError(err)
		}

		return nil
	}); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("%w: %s", newsstand.ErrStorageUnavailable, err)
	}

	return dbx, nil
}

// Retries f while SQLite reports the database as busy or locked.
func (r Repo) withRetry(ctx context.Context, f func(ctx context.Context) error) error {
	b := retry.WithMaxDuration(r.retryTimeout, retry.NewFibonacci(10*time.Millisecond))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := f(ctx)
		if isBusy(err) {
			return retry.RetryableError(err)
		}

		return err
	})
}

func sqliteCode(err error) int {
	sqliteErr := &sqlite.Error{}
	if !errors.As(err, &sqliteErr) {
		return 0
	}

	return sqliteErr.Code()
}

func isBusy(err error) bool {
	// The primary code is in the low byte of extended codes.
	switch sqliteCode(err) & 0xff {
	case codeBusy, codeLocked:
		return true
	}

	return false
}

func isConflict(err error) bool {
	switch sqliteCode(err) {
	case codeConstraintPrimaryKey, codeConstraintUnique:
		return true
	}

	return false
}
