// Package server wires the application together: configuration, database,
// object store, services, and the HTTP server, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkarpenko/filekeeper/internal/logging"
	"github.com/mkarpenko/filekeeper/internal/server/auth"
	"github.com/mkarpenko/filekeeper/internal/server/config"
	"github.com/mkarpenko/filekeeper/internal/server/httpapi"
	"github.com/mkarpenko/filekeeper/internal/server/repositories/repomanager"
	"github.com/mkarpenko/filekeeper/internal/server/services"
	"github.com/mkarpenko/filekeeper/internal/server/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	codec, err := auth.NewCodec([]byte(cfg.JWTSecretKey), cfg.JWTAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	gate := auth.NewGate(codec, repos.Sessions(db), repos.Users(db))
	authSvc := services.NewAuthService(db, repos, codec, cfg)
	fileSvc := services.NewFileService(db, repos, store, cfg, logger)

	api := httpapi.NewServer(cfg, logger, gate, authSvc, fileSvc, db)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{Addr: cfg.HTTPAddr, Handler: api.Routes()},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives, then
// drains in-flight requests within shutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.HTTPAddr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Join(err, app.db.Close())
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return errors.Join(fmt.Errorf("shutdown error: %w", err), app.db.Close())
	}
	if err := app.db.Close(); err != nil {
		return fmt.Errorf("db close error: %w", err)
	}

	return nil
}
