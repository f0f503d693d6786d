package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/fourrow-backend/internal/config"
	"github.com/rocketscienceinc/fourrow-backend/internal/repository"
	"github.com/rocketscienceinc/fourrow-backend/internal/repository/storage"
	"github.com/rocketscienceinc/fourrow-backend/internal/usecase"
	"github.com/rocketscienceinc/fourrow-backend/transport/console"
	"github.com/rocketscienceinc/fourrow-backend/transport/rest"
	"github.com/rocketscienceinc/fourrow-backend/transport/websocket"
)

// RunApp - runs the HTTP server until SIGINT/SIGTERM.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := withSignals(ctx, log)
	defer cancel()

	tallyRepo, closeTally, err := NewTallyRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeTally()

	hub := websocket.NewHub(logger)
	gameManager := usecase.NewGameManager(logger, tallyRepo, hub)
	server := rest.New(logger, gameManager, hub)

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "tally_backend", conf.Tally.Backend)

	if err = server.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// RunConsole - plays a hot-seat game on in/out.
func RunConsole(ctx context.Context, logger *slog.Logger, conf *config.Config, in io.Reader, out io.Writer) error {
	log := logger.With("component", "app")

	ctx, cancel := withSignals(ctx, log)
	defer cancel()

	tallyRepo, closeTally, err := NewTallyRepository(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeTally()

	gameManager := usecase.NewGameManager(logger, tallyRepo, nil)

	if err = console.New(logger, gameManager, out).Run(ctx, in); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}

// NewTallyRepository opens the storage selected by tally.backend. The returned func releases it.
func NewTallyRepository(ctx context.Context, logger *slog.Logger, conf *config.Config) (repository.TallyRepository, func(), error) {
	log := logger.With("component", "app")

	switch conf.Tally.Backend {
	case config.BackendRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisConfig{
			Addr:     conf.Redis.GetRedisAddr(),
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewTallyRepository(redisStorage.Connection), func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}, nil

	case config.BackendSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteTallyRepository(sqliteStorage.Connection), func() {
			if err = sqliteStorage.Close(); err != nil {
				log.Error("could not close sqlite storage", "error", err)
			}
		}, nil

	case config.BackendMemory:
		return repository.NewMemoryTallyRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, conf.Tally.Backend)
	}
}

func withSignals(ctx context.Context, log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)

		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
