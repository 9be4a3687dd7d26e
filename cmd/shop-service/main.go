// @title Taller API
// @version 1.0
// @description Customers, service requests, repairs, item requests and the product catalog.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/MikeMC777/taller-ecom/internal/auth"
	"github.com/MikeMC777/taller-ecom/internal/config"
	"github.com/MikeMC777/taller-ecom/internal/grpcx"
	"github.com/MikeMC777/taller-ecom/internal/logx"
	"github.com/MikeMC777/taller-ecom/internal/shop"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

func main() {
	cfg := config.Load()
	lg, err := logx.New(logx.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: cfg.ServiceName})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	cfg.Log(lg)

	if err := run(cfg, lg); err != nil {
		lg.Fatal("shop-service stopped", zap.Error(err))
	}
}

func openGateway(ctx context.Context, cfg config.Config, m *store.Metrics) (store.Gateway, error) {
	switch cfg.DBDriver {
	case "postgres":
		return store.OpenPostgres(ctx, cfg.PostgresDSN, cfg.DBMaxConns, m)
	case "sqlite":
		return store.OpenSQLite(cfg.SQLitePath, m)
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gw, err := openGateway(ctx, cfg, store.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer gw.Close()
	if err := store.Migrate(ctx, gw); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	svc := shop.NewService(gw, auth.NewBcryptHasher())
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL, cfg.ServiceName)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(routerDeps{svc: svc, tokens: tokens, gw: gw, reg: reg, log: lg, timeout: cfg.RequestTimeout}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv, hs := grpcx.NewServer(grpcx.NewDirectory(svc), lg)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	go grpcx.WatchStore(ctx, hs, gw, 15*time.Second)

	errc := make(chan error, 2)
	go func() {
		lg.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
		errc <- grpcSrv.Serve(lis)
	}()
	go func() {
		lg.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		lg.Error("server error", zap.Error(err))
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcSrv.GracefulStop()
	return httpSrv.Shutdown(shutdownCtx)
}
