package sqlstore

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	_ "modernc.org/sqlite"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

//go:embed schema_mysql.sql
var schemaMySQL string

// Dialect names accepted by Open.
const (
	SQLite   = "sqlite"
	Postgres = "postgres"
	MySQL    = "mysql"
)

// dialect captures the differences between the supported SQL engines.
type dialect struct {
	name   string
	schema string

	// connect opens the pool for dsn.
	connect func(dsn string) (*sql.DB, error)
	// numbered placeholders ($1, $2) instead of ?.
	numbered bool
	// isUniqueViolation reports a unique constraint failure.
	isUniqueViolation func(error) bool
}

func dialectFor(name string) (*dialect, error) {
	switch name {
	case SQLite, "":
		return &dialect{
			name:   SQLite,
			schema: schemaSQLite,
			connect: func(dsn string) (*sql.DB, error) {
				db, err := sql.Open("sqlite", sqliteDSN(dsn))
				if err != nil {
					return nil, err
				}
				db.SetMaxOpenConns(4)
				db.SetMaxIdleConns(2)
				return db, nil
			},
			isUniqueViolation: func(err error) bool {
				return strings.Contains(err.Error(), "UNIQUE constraint failed")
			},
		}, nil

	case Postgres:
		return &dialect{
			name:   Postgres,
			schema: schemaPostgres,
			connect: func(dsn string) (*sql.DB, error) {
				connector, err := pq.NewConnector(dsn)
				if err != nil {
					return nil, err
				}
				return sql.OpenDB(connector), nil
			},
			numbered: true,
			isUniqueViolation: func(err error) bool {
				var pqErr *pq.Error
				return errors.As(err, &pqErr) && pqErr.Code == "23505"
			},
		}, nil

	case MySQL:
		return &dialect{
			name:   MySQL,
			schema: schemaMySQL,
			connect: func(dsn string) (*sql.DB, error) {
				cfg, err := mysql.ParseDSN(dsn)
				if err != nil {
					return nil, err
				}
				// Report matched rows, not changed rows, so an update that
				// rewrites identical values still counts as found.
				cfg.ClientFoundRows = true
				connector, err := mysql.NewConnector(cfg)
				if err != nil {
					return nil, err
				}
				return sql.OpenDB(connector), nil
			},
			isUniqueViolation: func(err error) bool {
				var myErr *mysql.MySQLError
				return errors.As(err, &myErr) && myErr.Number == 1062
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// sqlitePragmas are connection-scoped, so they travel in the DSN and the
// driver applies them to every connection the pool opens.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// sqliteDSN appends the connection pragmas to a database path. Write
// transactions take the lock up front so concurrent writers wait on
// busy_timeout instead of failing on lock upgrade.
func sqliteDSN(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := byte('?')
	if strings.Contains(path, "?") {
		sep = '&'
	}
	for _, p := range sqlitePragmas {
		b.WriteByte(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = '&'
	}
	b.WriteString("&_txlock=immediate")
	return b.String()
}

// rebind rewrites ? placeholders for dialects that number them.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// statements splits an embedded schema into individual statements.
func statements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
