package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/jobkeeper/internal/client/config"
	"github.com/dmitrijs2005/jobkeeper/internal/client/feed"
	"github.com/dmitrijs2005/jobkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/jobkeeper/internal/client/models"
	"github.com/dmitrijs2005/jobkeeper/internal/client/search"
	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
	"github.com/dmitrijs2005/jobkeeper/internal/client/store"
	"github.com/dmitrijs2005/jobkeeper/internal/logging"
	"github.com/go-playground/validator/v10"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	metrics     *metrics.Metrics
	closer      io.Closer
	authService services.AuthService
	ledger      *services.Ledger
	feed        feed.Fetcher
	validate    *validator.Validate
	reader      *bufio.Reader
	out         io.Writer

	criteria search.Criteria
	// listing is the last list of jobs printed; commands accept its
	// 1-based positions in place of job ids.
	listing []models.JobSnapshot
	// appListing plays the same role for the applied command.
	appListing []models.Application
}

// NewApp opens the local database and wires the services together.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	st, err := store.Open(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	m := metrics.New()
	a := &App{
		config:      c,
		logger:      logger,
		metrics:     m,
		closer:      st,
		authService: services.NewAuthService(st, logger, m),
		ledger:      services.NewLedger(st, logger, m),
		feed:        feed.NewClient(c.FeedURL, c.FetchTimeout, c.FeedCacheMB, c.FeedCacheTTL, logger, m),
		validate:    newValidator(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
	return a, nil
}

// Run loads local state, restores the previous session, starts the store
// watcher, fetches the feed once and then serves the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.start(ctx)

	if err := a.Fetch(ctx, nil); err != nil {
		printlnFn(userMessage(err))
	}

	printlnFn("Welcome to jobkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// start performs everything Run does before the first prompt.
func (a *App) start(ctx context.Context) {
	a.authService.OnIdentityChange(func(id *models.Identity) {
		if id == nil {
			a.ledger.SetActiveUser("")
			return
		}
		a.ledger.SetActiveUser(id.ID)
	})

	if err := a.ledger.Load(ctx); err != nil {
		a.logger.Warn(ctx, "saved data partially unavailable", "error", err)
	}
	if err := a.authService.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}

	go func() {
		if err := a.ledger.Watch(ctx, a.config.SyncInterval); err != nil {
			a.logger.Error(ctx, "store watcher stopped", "error", err)
		}
	}()
}

// Close releases the database.
func (a *App) Close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Error(context.Background(), "failed to close database", "error", err)
		}
		a.closer = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.CurrentIdentity() != nil
}

func (a *App) status() string {
	if id := a.authService.CurrentIdentity(); id != nil {
		return id.Name
	}
	return "guest"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
