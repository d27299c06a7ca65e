package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MohammadRstm/BookApp/internal/config"
	"github.com/MohammadRstm/BookApp/internal/di/providers"
	"github.com/MohammadRstm/BookApp/internal/logger"
	"github.com/MohammadRstm/BookApp/internal/search"
	"github.com/MohammadRstm/BookApp/internal/service"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/validation"
)

// globalFlags are forwarded to config.Load so bookctl resolves the store
// exactly like the server does.
type globalFlags struct {
	envFile  string
	dataPath string
	driver   string
	dbURL    string
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Administer a BookApp catalogue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", ".env", "Path to .env file")
	pf.StringVar(&g.dataPath, "data-path", "", "Directory for embedded databases and the search index")
	pf.StringVar(&g.driver, "db-driver", "", "Storage driver (sqlite, postgres, mysql, badger, mongo)")
	pf.StringVar(&g.dbURL, "database-url", "", "Database DSN for postgres, mysql or mongo")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newUserCmd(g),
		newBooksCmd(g),
		newReviewsCmd(g),
		newSearchCmd(g),
	)
	return root
}

func (g *globalFlags) args() []string {
	args := []string{"-env-file=" + g.envFile, "-log-level=" + g.logLevel}
	if g.dataPath != "" {
		args = append(args, "-data-path="+g.dataPath)
	}
	if g.driver != "" {
		args = append(args, "-db-driver="+g.driver)
	}
	if g.dbURL != "" {
		args = append(args, "-database-url="+g.dbURL)
	}
	return args
}

// app holds the services a command runs against.
type app struct {
	cfg     *config.Config
	store   store.Store
	index   *search.Index // nil when search is disabled
	auth    *service.AuthService
	books   *service.BookService
	reviews *service.ReviewService
}

func (a *app) Close() {
	if a.index != nil {
		_ = a.index.Close()
	}
	_ = a.store.Close()
}

// errServerRunning reports that a running server holds the search index.
var errServerRunning = errors.New("search index is in use, stop the server before running search commands")

// open loads the configuration and opens the store and search index. A
// locked index fails the command when needIndex is set; otherwise the
// command runs without search.
func (g *globalFlags) open(ctx context.Context, stderr io.Writer, needIndex bool) (*app, error) {
	cfg, err := config.Load(flag.NewFlagSet("bookctl", flag.ContinueOnError), g.args())
	if err != nil {
		return nil, err
	}

	lg := logger.New(logger.Config{
		Writer: stderr,
		Level:  logger.ParseLevel(cfg.Logger.Level),
	})

	st, err := providers.OpenStore(ctx, cfg, lg.Logger)
	if err != nil {
		return nil, err
	}

	var index *search.Index
	if cfg.Search.Enabled {
		index, err = search.Open(search.Options{DataPath: cfg.App.DataPath, Logger: lg.Logger})
		switch {
		case errors.Is(err, search.ErrIndexLocked) && !needIndex:
			lg.Warn("Search index locked, continuing without it", "error", err)
			index = nil
		case errors.Is(err, search.ErrIndexLocked):
			_ = st.Close()
			return nil, errServerRunning
		case err != nil:
			_ = st.Close()
			return nil, fmt.Errorf("open search index: %w", err)
		}
	}

	v := validation.New()
	return &app{
		cfg:     cfg,
		store:   st,
		index:   index,
		auth:    service.NewAuthService(st, nil, v, lg.Logger),
		books:   service.NewBookService(st, index, v, lg.Logger),
		reviews: service.NewReviewService(st, v, lg.Logger),
	}, nil
}

// run opens the app for the duration of fn.
func (g *globalFlags) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return g.runApp(cmd, false, fn)
}

// runSearch is run for commands that read or rebuild the search index.
func (g *globalFlags) runSearch(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return g.runApp(cmd, true, fn)
}

func (g *globalFlags) runApp(cmd *cobra.Command, needIndex bool, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := g.open(ctx, cmd.ErrOrStderr(), needIndex)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
