package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/visit-desk/internal/application"
	"github.com/example/visit-desk/internal/config"
	httptransport "github.com/example/visit-desk/internal/http"
	"github.com/example/visit-desk/internal/logging"
	"github.com/example/visit-desk/internal/metrics"
	"github.com/example/visit-desk/internal/persistence"
	"github.com/example/visit-desk/internal/persistence/memory"
	"github.com/example/visit-desk/internal/persistence/postgres"
	"github.com/example/visit-desk/internal/persistence/redis"
	"github.com/example/visit-desk/internal/persistence/s3"
	"github.com/example/visit-desk/internal/persistence/sqlite"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("visit desk stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	kv, err := openKeyValueStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := kv.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler, err := newHandler(ctx, cfg, kv, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("visit desk API listening", "addr", server.Addr, "store_driver", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown http: %w", err)
		}
		logger.Info("visit desk API stopped")
		return nil
	})
	return g.Wait()
}

// openKeyValueStore connects the backend selected by cfg.StoreDriver.
func openKeyValueStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.KeyValueStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
		status, err := store.SchemaStatus(ctx)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("read sqlite schema status: %w", err)
		}
		logger.InfoContext(ctx, "sqlite schema ready",
			"version", status.CurrentVersion,
			"pending", status.PendingCount,
		)
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case config.DriverRedis:
		store, err := redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	case config.DriverS3:
		store, err := s3.Open(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// newHandler initializes the document store over kv and wires the services,
// metrics and HTTP router.
func newHandler(ctx context.Context, cfg config.Config, kv persistence.KeyValueStore, logger *slog.Logger) (http.Handler, error) {
	location := cfg.ClockLocation
	if location == nil {
		location = time.Local
	}
	now := func() time.Time { return time.Now().In(location) }

	store := persistence.NewStoreWithLogger(kv, uuid.NewString, now, logger)
	if err := store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	codeHash, err := application.HashAccessCode(cfg.GateCode, application.DefaultArgon2idParams)
	if err != nil {
		return nil, fmt.Errorf("hash gate access code: %w", err)
	}

	registry := metrics.New()

	directoryService := application.NewDirectoryServiceWithLogger(store, logger)
	visitService := application.NewVisitServiceWithLogger(store, store, registry, logger)
	chatService := application.NewChatServiceWithLogger(store, registry, logger)
	gateService := application.NewGateServiceWithLogger(store, application.GateConfig{
		Phone:      cfg.GatePhone,
		CodeHash:   codeHash,
		SessionTTL: cfg.SessionTTL,
	}, uuid.NewString, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Directory: httptransport.NewDirectoryHandler(directoryService, logger),
		Requests:  httptransport.NewRequestHandler(visitService, logger),
		Sessions:  httptransport.NewSessionHandler(gateService, logger),
		Chats:     httptransport.NewChatHandler(chatService, logger),
		Validator: gateService,
		Metrics:   registry.Handler(),
		Observer:  registry,
		Logger:    logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	}), nil
}
