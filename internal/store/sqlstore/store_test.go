package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	return s
}

func TestSQLite_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

// resetTables empties a shared server database between subtests.
func resetTables(t *testing.T, s *Store) {
	t.Helper()
	for _, table := range []string{"reviews", "books", "users"} {
		_, err := s.db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}

func serverConformance(t *testing.T, dialectName, envVar string) {
	dsn := os.Getenv(envVar)
	if dsn == "" {
		t.Skipf("%s not set", envVar)
	}
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(context.Background(), dialectName, dsn, nil)
		require.NoError(t, err)
		resetTables(t, s)
		return s
	})
}

func TestPostgres_Conformance(t *testing.T) {
	serverConformance(t, Postgres, "TEST_POSTGRES_DSN")
}

func TestMySQL_Conformance(t *testing.T) {
	serverConformance(t, MySQL, "TEST_MYSQL_DSN")
}

func TestOpen_SQLitePragmas(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"users", "books", "reviews"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestOpen_SQLitePragmasOnEveryConnection(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	// Hold every pooled connection at once so each one is a distinct
	// driver connection.
	conns := make([]*sql.Conn, 4)
	for i := range conns {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		conns[i] = conn
	}
	for i, conn := range conns {
		var fk, busy int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy))
		assert.Equal(t, 1, fk, "conn %d", i)
		assert.Equal(t, 5000, busy, "conn %d", i)
	}
	for _, conn := range conns {
		require.NoError(t, conn.Close())
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"/data/app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		sqliteDSN("/data/app.db"))
	assert.Equal(t,
		"file:app.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		sqliteDSN("file:app.db?mode=rwc"))
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := Open(context.Background(), SQLite, path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(context.Background(), SQLite, path, nil)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn", nil)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg, err := dialectFor(Postgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite, err := dialectFor(SQLite)
	require.NoError(t, err)
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestStatements(t *testing.T) {
	stmts := statements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a(x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, stmts)
}

func TestCheckConstraint_RejectsOutOfRangeRating(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	_, err := s.db.Exec(`INSERT INTO reviews (id, book_id, user_id, rating, review_text, created_at, updated_at)
		VALUES ('r', 'b', 'u', 9, 'x', '', '')`)
	assert.Error(t, err)
}
