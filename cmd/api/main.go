package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/api"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/api/handlers"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/services"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/grpc/healthcheck"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/cache"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/infrastructure/database/repository"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/collector"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/credentials"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/rules"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting posture scan service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisCache.Close()

	repos := repository.NewRepositories(db.Pool())

	// Scan pipeline
	vault := credentials.NewHTTPVault(cfg.Vault, log)
	providerClient := collector.NewClient(cfg.Provider, log)
	coll := collector.New(cfg.Scanner, log)
	registry := rules.NewRegistry()
	log.Info().Int("rules", registry.Count()).Msg("detection rules registered")

	reconciler := services.NewReconciler(repos.Findings, repos.Assets, log)
	controlDriver := services.NewControlStatusDriver(repos.Controls, log)
	riskManager := services.NewRiskManager(repos.Risks, log)
	scanService := services.NewScanService(
		repos.Accounts, vault, providerClient, coll, registry,
		reconciler, controlDriver, riskManager, redisCache, cfg.Scanner, log,
	)
	gapService := services.NewGapService(
		repos.Controls, repos.Policies, repos.Findings,
		redisCache, cfg.GapReport.CacheTTL, log,
	)

	h := handlers.NewHandlers(handlers.Dependencies{
		Scan:   scanService,
		Gap:    gapService,
		Repos:  repos,
		DB:     db,
		Cache:  redisCache,
		Logger: log,
	})

	router := api.NewRouter(*cfg, h, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthcheck.Register(ctx, grpcServer, db, redisCache)

	go func() {
		log.Info().Str("addr", grpcListener.Addr().String()).Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
