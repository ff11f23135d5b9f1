package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/BharathVasireddy/numericalz-sub006/internal/cli"
	"github.com/BharathVasireddy/numericalz-sub006/internal/config"
	"github.com/BharathVasireddy/numericalz-sub006/internal/db"
	"github.com/BharathVasireddy/numericalz-sub006/internal/notify"
	"github.com/BharathVasireddy/numericalz-sub006/internal/registry"
	"github.com/BharathVasireddy/numericalz-sub006/internal/repository"
	"github.com/BharathVasireddy/numericalz-sub006/internal/service"
	"github.com/BharathVasireddy/numericalz-sub006/internal/workflow"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Stage catalogs are static data; a malformed catalog is a startup
	// failure, never a runtime surprise.
	if err := workflow.ValidateCatalogs(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	clientRepo := repository.NewSQLiteClientRepo(database)
	reviewerRepo := repository.NewSQLiteReviewerRepo(database)
	obligationRepo := repository.NewSQLiteObligationRepo(database)
	historyRepo := repository.NewSQLiteHistoryRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// Registry lookups are optional; with no endpoint configured every
	// scheduler and refresh path falls back to calendar arithmetic.
	var reg registry.Client
	if cfg.RegistryEndpoint != "" {
		reg = registry.NewHTTPClient(registry.HTTPConfig{
			Endpoint: cfg.RegistryEndpoint,
			APIKey:   cfg.RegistryAPIKey,
			Timeout:  cfg.RegistryTimeout,
		})
	}

	notifier := notify.NewLogNotifier(logger)

	app := &cli.App{
		Clients:     service.NewClientService(clientRepo),
		Reviewers:   service.NewReviewerService(reviewerRepo),
		Obligations: service.NewObligationService(clientRepo, obligationRepo, historyRepo, uow, logger),
		Transitions: service.NewTransitionService(uow, notifier, logger),
		DueDates:    service.NewDueDateService(clientRepo, reg, uow, logger),
		Rollover:    service.NewRolloverService(clientRepo, obligationRepo, reg, uow, cfg.CoolingOffMonths, notifier, logger),
		Assignment:  service.NewAssignmentService(clientRepo, reviewerRepo, obligationRepo, uow, cfg.AssignRole, notifier, logger),

		LoopInterval: cfg.SchedulerInterval,
		Out:          os.Stdout,
	}

	// Interrupt cancels the command context so `run loop` exits cleanly
	// between scheduler passes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// newLogger emits human-readable logs on a terminal and JSON everywhere
// else, so `run loop` under a supervisor produces machine-parseable output.
func newLogger(cfg config.Config) *slog.Logger {
	if !cfg.LogJSON && isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}
