package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"velora-api/internal/admin"
	"velora-api/internal/auth"
	"velora-api/internal/config"
	"velora-api/internal/db"
	"velora-api/internal/logger"
	"velora-api/internal/metrics"
	"velora-api/internal/middleware"
	"velora-api/internal/order"
	"velora-api/internal/product"
	"velora-api/internal/rest"
	"velora-api/internal/review"
	"velora-api/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Swappable in tests.
var (
	initDBFunc    = db.InitDB
	initRedisFunc = db.NewRedis
	serveFunc     = serve
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	rdb, err := initRedisFunc(ctx, cfg)
	if err != nil {
		logger.L().Warn("redis unavailable, product cache disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	app, err := newServer(ctx, cfg, database, rdb)
	if err != nil {
		return err
	}
	defer app.limiter.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.L().Info("server starting",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
		zap.Bool("strict_transitions", cfg.StrictTransitions),
		zap.Bool("product_cache", rdb != nil),
	)
	return serveFunc(ctx, srv)
}

type server struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

// newServer wires repositories, services and the router, then seeds the
// bootstrap admin.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, rdb *redis.Client) (*server, error) {
	reg := metrics.NewRegistry()
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTTTL)

	userRepo := user.NewRepository(database)
	productRepo := product.NewRepository(database)
	orderRepo := order.NewRepository(database)
	reviewRepo := review.NewRepository(database)

	userSvc := user.NewService(userRepo, tokens, reg)
	productSvc := product.NewService(productRepo, product.NewRedisCache(rdb, cfg.RedisTTL))
	orderSvc := order.NewService(orderRepo, reg, cfg.StrictTransitions)
	reviewSvc := review.NewService(reviewRepo)
	adminSvc := admin.NewService(userRepo, productRepo, orderRepo)

	if _, created, err := userSvc.EnsureAdmin(ctx, user.AdminSeed{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Phone:    cfg.AdminPhone,
	}); err != nil {
		return nil, err
	} else if created {
		logger.L().Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
	}

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	handler := rest.NewRouter(rest.Deps{
		Users:       userSvc,
		Products:    productSvc,
		Orders:      orderSvc,
		Reviews:     reviewSvc,
		Admin:       adminSvc,
		Metrics:     reg,
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Production:  cfg.IsProduction(),
	})

	return &server{handler: handler, limiter: limiter}, nil
}

// serve blocks until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
