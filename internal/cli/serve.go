package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"daytrack/internal/cache"
	"daytrack/internal/core"
	apphttp "daytrack/internal/http"
	"daytrack/internal/log"
	"daytrack/internal/middleware/ratelimit"
	"daytrack/internal/services"
)

const shutdownTimeout = 30 * time.Second

type ServeCmd struct{}

func (c *ServeCmd) Run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx)
	if err != nil {
		return err
	}

	var events services.EventPublisher
	if client := app.openEvents(ctx); client != nil {
		events = client
	}

	summaries := cache.NewLRUCache[core.MonthlySummary](app.Config.SummaryCacheSize, app.Config.SummaryCacheTTL)
	cacheLogger := app.Logger.WithComponent(log.ComponentCache)
	manager := cache.NewManager(func(removed int) {
		cacheLogger.Debug("Cache cleanup completed", "entries_removed", removed)
	})
	manager.Register(summaries)

	svc := services.NewRecordService(store, events, summaries, app.Logger)
	defer func() {
		if err := svc.Close(); err != nil {
			app.Logger.Error("Close failed", log.FieldError, err)
		}
	}()

	var ready apphttp.Pinger
	if p, ok := store.(apphttp.Pinger); ok {
		ready = p
	}
	srv := apphttp.NewServer(":"+app.Config.Port, svc, ready, app.Logger)
	if app.Config.WriteRateLimit > 0 {
		limiter := ratelimit.NewLimiter(app.Config.WriteRateLimit)
		manager.Register(limiter)
		srv.LimitWrites(limiter)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Starting daytrack server",
			log.FieldOperation, log.OpStartup, "port", app.Config.Port, log.FieldBackend, app.Config.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		manager.Run(app.Config.SummaryCacheTTL)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		manager.Stop()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	app.Logger.Info("Server stopped gracefully")
	return nil
}
