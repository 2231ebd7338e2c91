// Package app wires configuration, the local store and the remote storage
// service into a runnable sync loop.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/storagesync/internal/client/config"
	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/client/services"
	"github.com/dmitrijs2005/storagesync/internal/client/storage"
	"github.com/dmitrijs2005/storagesync/internal/logging"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/remote"
)

const profileQueueSize = 256

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	profiles *services.ProfileQueue
	sync     services.StorageSyncService
}

// NewApp opens the local database and selects the remote store: S3 when a
// bucket is configured, otherwise an in-process store.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat)

	local, err := c.LocalIdentifiers()
	if err != nil {
		return nil, err
	}

	var store remote.Store
	if c.UseS3() {
		s3, err := remote.NewS3Store(ctx, c.S3(), logger)
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		store = s3
	} else {
		logger.Warn(ctx, "no bucket configured, using in-memory storage service")
		store = remote.NewMemoryStore()
	}

	return newApp(ctx, c, logger, store, local)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, store remote.Store, local models.LocalIdentifiers) (*App, error) {
	db, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	profiles := services.NewProfileQueue(profileQueueSize, logger)
	svc := services.NewStorageSyncService(db, store, services.Options{
		Local:           local,
		IsPrimaryDevice: c.IsPrimaryDevice,
		Logger:          logger,
		ProfileFetcher:  profiles,
	})

	return &App{config: c, logger: logger, db: db, profiles: profiles, sync: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runOnce performs a single bounded sync pass.
func (app *App) runOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, app.config.SyncTimeout)
	defer cancel()

	report, err := app.sync.Sync(ctx)
	if err != nil {
		return err
	}
	if report.VersionConflict {
		app.logger.Info(ctx, "storage service moved ahead during push, will retry next pass")
	}
	return nil
}

func (app *App) watchProfiles(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-app.profiles.C():
			app.logger.Info(ctx, "profile fetch requested", "service_id", id.String())
		}
	}
}

// Run executes one pass, or keeps running passes on the configured cron
// schedule until a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.watchProfiles(ctx)
	}()
	defer wg.Wait()
	defer cancelFunc()

	if app.config.SyncSchedule == "" {
		return app.runOnce(ctx)
	}

	c := cron.New(
		cron.WithParser(cron.NewParser(cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{ctx: ctx, logger: app.logger})),
		cron.WithLogger(cronLogger{ctx: ctx, logger: app.logger}),
	)
	if _, err := c.AddFunc(app.config.SyncSchedule, func() {
		if err := app.runOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error(ctx, "sync pass failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", app.config.SyncSchedule, err)
	}

	app.logger.Info(ctx, "Starting app...", "schedule", app.config.SyncSchedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	app.logger.Info(context.Background(), "app stopped")

	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}

// cronLogger routes scheduler diagnostics into the application logger.
type cronLogger struct {
	ctx    context.Context
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(l.ctx, "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(l.ctx, "cron: "+msg, append(keysAndValues, "error", err)...)
}
