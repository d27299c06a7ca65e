// Package sqlstore implements store.Store on SQLite, PostgreSQL and MySQL
// through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MohammadRstm/BookApp/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store provides SQL-backed persistence.
type Store struct {
	db      *sql.DB
	dialect *dialect
	logger  *slog.Logger
}

// Open connects to dsn using the named dialect and applies the schema.
// For SQLite the dsn is a file path; connection pragmas are added to it.
func Open(ctx context.Context, dialectName, dsn string, logger *slog.Logger) (*Store, error) {
	d, err := dialectFor(dialectName)
	if err != nil {
		return nil, err
	}

	db, err := d.connect(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	for _, stmt := range statements(d.schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema: %w", err)
		}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("SQL database opened", "dialect", d.name)

	return &Store{db: db, dialect: d, logger: logger}, nil
}

// Dialect returns the name of the SQL engine in use.
func (s *Store) Dialect() string { return s.dialect.name }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

// mapWriteErr converts driver constraint errors into store sentinels.
func (s *Store) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if s.dialect.isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// requireAffected returns store.ErrNotFound when an update matched no rows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
