// Package server boots the storefront's dependencies and runs the HTTP
// server and queue workers until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// Boot loads config and connects every backing service the app needs. A
// missing cache is survivable: sessions and the category list fall back to
// process memory.
func Boot() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Boot()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("cache unavailable, using memory store", "error", err)
	}
	if err := storage.Connect(); err != nil {
		return err
	}
	if err := queue.Connect(config.Queue()); err != nil {
		return err
	}
	queue.UseDB(database.DB)
	jobs.Register(notification.NewDispatcher(config.Mail()))
	return nil
}

// NewServices builds the application services over db.
func NewServices(db *gorm.DB) routes.Services {
	repo := repositories.New(db)
	promos := services.NewPromoService(repo)
	return routes.Services{
		Catalog:  services.NewCatalogService(repo, storage.Default()),
		Cart:     services.NewCartService(repo, promos),
		Checkout: services.NewCheckoutService(repo, promos, jobs.NewOrderNotifier(config.Mail())),
		Orders:   services.NewOrderService(repo),
	}
}

// Housekeeping registers the periodic maintenance tasks.
func Housekeeping(cart *services.CartService) *schedule.Scheduler {
	idle := config.Session().TTL
	s := schedule.New()
	s.Every(config.CartPruneInterval()).Name("carts:prune").WithoutOverlapping().Run(func(ctx context.Context) error {
		_, err := cart.PruneAbandoned(ctx, idle)
		return err
	})
	return s
}

// Start serves HTTP on APP_PORT with in-process queue workers and the
// housekeeping scheduler, and shuts them down gracefully on SIGINT or SIGTERM.
func Start() error {
	if err := Boot(); err != nil {
		return err
	}
	defer logger.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := NewServices(database.DB)
	workers := queue.StartWorkers(ctx, config.Queue().Workers)
	sched := Housekeeping(svc.Cart)
	sched.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHTTPKernel(svc).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		workers.Wait()
		sched.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	workers.Wait()
	sched.Wait()
	if cerr := queue.Close(); cerr != nil {
		logger.Warn("queue close", "error", cerr)
	}
	return err
}

// Work runs n queue workers without the HTTP server.
func Work(n int) error {
	if err := Boot(); err != nil {
		return err
	}
	defer logger.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, n).Wait()
	logger.Info("queue workers stopped")
	return queue.Close()
}
