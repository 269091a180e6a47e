package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avaldez-dev/storefront-core/api/routes"
	"github.com/avaldez-dev/storefront-core/internal/cart"
	"github.com/avaldez-dev/storefront-core/internal/checkout"
	"github.com/avaldez-dev/storefront-core/internal/identity"
	"github.com/avaldez-dev/storefront-core/internal/localcart"
	"github.com/avaldez-dev/storefront-core/internal/orders"
	"github.com/avaldez-dev/storefront-core/internal/products"
	"github.com/avaldez-dev/storefront-core/pkg/auth/session"
	"github.com/avaldez-dev/storefront-core/pkg/config"
	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/avaldez-dev/storefront-core/pkg/metrics"
	"github.com/avaldez-dev/storefront-core/pkg/migrate"
	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownGrace = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront-core",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := dbpkg.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	localStore, err := localcart.New(cfg.LocalCart, redisClient)
	if err != nil {
		return err
	}

	userRepo, err := identity.NewUserRepository(dbClient)
	if err != nil {
		return err
	}
	productRepo, err := products.NewProductRepository(dbClient)
	if err != nil {
		return err
	}
	remoteCart, err := cart.NewRemoteStore(dbClient)
	if err != nil {
		return err
	}
	orderRepo, err := orders.NewOrderRepository(dbClient)
	if err != nil {
		return err
	}

	productSvc, err := products.NewService(productRepo)
	if err != nil {
		return err
	}
	cartSvc, err := cart.NewService(localStore, remoteCart, productSvc, logg)
	if err != nil {
		return err
	}
	// The cart service listens for sign-ins so the anonymous cart merges
	// into the account cart exactly once per login.
	identitySvc, err := identity.NewService(userRepo, sessions, cfg.JWT, cfg.Password, logg, cartSvc)
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(cartSvc, orderRepo, logg)
	if err != nil {
		return err
	}
	orderSvc, err := orders.NewService(orderRepo)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.New(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessions,
		Registry: registry,
		Metrics:  httpMetrics,
		Identity: identitySvc,
		Products: productSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
