package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/logger"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/store/badgerdb"
	"github.com/MohammadRstm/BookApp/internal/store/mongostore"
	"github.com/MohammadRstm/BookApp/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store selected by the configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st, err := OpenStore(ctx, cfg, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Database.Driver)

	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the backend named by cfg.Database.Driver. Embedded
// drivers keep their files under the data path unless a URL is given.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	db := cfg.Database

	var (
		st  store.Store
		err error
	)
	switch db.Driver {
	case config.DriverSQLite:
		path := db.URL
		if path == "" {
			if err := os.MkdirAll(cfg.App.DataPath, 0o755); err != nil {
				return nil, fmt.Errorf("create data path: %w", err)
			}
			path = filepath.Join(cfg.App.DataPath, "bookapp.db")
		}
		st, err = openSQL(ctx, sqlstore.SQLite, path, logger)

	case config.DriverPostgres:
		st, err = openSQL(ctx, sqlstore.Postgres, db.URL, logger)

	case config.DriverMySQL:
		st, err = openSQL(ctx, sqlstore.MySQL, db.URL, logger)

	case config.DriverBadger:
		dir := db.URL
		if dir == "" {
			dir = filepath.Join(cfg.App.DataPath, "badger")
		}
		var bs *badgerdb.Store
		if bs, err = badgerdb.Open(dir, logger); err == nil {
			st = bs
		}

	case config.DriverMongo:
		var ms *mongostore.Store
		if ms, err = mongostore.Open(ctx, db.URL, db.MongoName, logger); err == nil {
			st = ms
		}

	default:
		return nil, fmt.Errorf("unknown db driver %q", db.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", db.Driver, err)
	}
	return st, nil
}

func openSQL(ctx context.Context, dialect, dsn string, logger *slog.Logger) (store.Store, error) {
	s, err := sqlstore.Open(ctx, dialect, dsn, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
