// Package cli holds the daytrack commands and the initialization they share.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"daytrack/internal/amqp"
	"daytrack/internal/config"
	"daytrack/internal/log"
	"daytrack/internal/storage"
)

// App is the state handed to every command
type App struct {
	Config *config.Config
	Logger *log.Logger
	Out    io.Writer

	// OpenStore opens the configured backend; tests replace it
	OpenStore func(ctx context.Context) (storage.RecordStore, error)
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewApp loads and validates configuration and sets up logging
func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Output = os.Stderr
	logger := log.New(logCfg)
	log.SetDefault(logger)

	app := &App{Config: cfg, Logger: logger, Out: os.Stdout}
	app.OpenStore = app.openConfiguredStore
	return app, nil
}

func (a *App) openConfiguredStore(ctx context.Context) (storage.RecordStore, error) {
	switch a.Config.DataBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(a.Config.SQLiteDBPath, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		a.Logger.InfoContext(ctx, "Initialized SQLite backend",
			log.FieldBackend, a.Config.DataBackend, "path", a.Config.SQLiteDBPath)
		return repo, nil
	default:
		a.Logger.InfoContext(ctx, "Initialized memory backend", log.FieldBackend, a.Config.DataBackend)
		return storage.NewMemoryStore(), nil
	}
}

// ErrEphemeralBackend is returned by one-shot commands run against the
// memory backend, which starts empty on every run.
var ErrEphemeralBackend = errors.New("the memory backend keeps no records between runs; set DATA_BACKEND=sqlite")

// requirePersistentBackend rejects backends whose records cannot outlive
// the process
func (a *App) requirePersistentBackend() error {
	if a.Config.DataBackend == config.BackendMemory {
		return ErrEphemeralBackend
	}
	return nil
}

// openEvents connects the event publisher when AMQP is configured. A
// broker that cannot be reached disables events instead of failing.
func (a *App) openEvents(ctx context.Context) *amqp.Client {
	if !a.Config.EventsEnabled() {
		return nil
	}
	client, err := amqp.NewClient(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue, a.Logger)
	if err != nil {
		a.Logger.WarnContext(ctx, "AMQP unavailable, record events disabled", log.FieldError, err)
		return nil
	}
	a.Logger.InfoContext(ctx, "Connected to AMQP", "exchange", a.Config.AMQPExchange, "queue", a.Config.AMQPQueue)
	return client
}
