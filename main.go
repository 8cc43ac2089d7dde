package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/storefront/internal/infra/api"
	"example.com/storefront/internal/infra/persistence"
	"example.com/storefront/internal/infra/security"
	httpapi "example.com/storefront/internal/interface/http"
	authuc "example.com/storefront/internal/usecase/auth"
	cartuc "example.com/storefront/internal/usecase/cart"
	categoryuc "example.com/storefront/internal/usecase/category"
	checkoutuc "example.com/storefront/internal/usecase/checkout"
	orderuc "example.com/storefront/internal/usecase/order"
	productuc "example.com/storefront/internal/usecase/product"
	"example.com/storefront/pkg/config"
	"example.com/storefront/pkg/logger"
	"example.com/storefront/pkg/metrics"
	"example.com/storefront/pkg/shutdown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: "storefront",
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "storefront stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := persistence.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close storage", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := api.NewClient(
		api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout},
		api.WithObserver(metrics.NewAPIMetrics(reg)),
		api.WithLogger(log),
	)

	authSvc, err := authuc.NewService(ctx, persistence.NewSessionRepository(store), client, security.TokenInspector{}, log)
	if err != nil {
		return err
	}
	cartSvc, err := cartuc.NewService(ctx, persistence.NewCartRepository(store), log, metrics.NewCartMetrics(reg))
	if err != nil {
		return err
	}
	orderSvc := orderuc.NewService()

	handler := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:     authSvc,
		CartService:     cartSvc,
		ProductService:  productuc.NewService(client, authSvc, log),
		CategoryService: categoryuc.NewService(client, authSvc),
		CheckoutService: checkoutuc.NewService(cartSvc, authSvc, client, orderSvc, log),
		OrderService:    orderSvc,
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSOrigins:     cfg.App.CORSOrigins,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.WithFields(ctx, map[string]any{
			"addr":    cfg.App.Addr(),
			"api":     client.BaseURL(),
			"storage": cfg.Storage.Driver,
		}), "listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
