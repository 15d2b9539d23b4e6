package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/cloth-store/internal/adapter/handler"
	"github.com/rl1809/cloth-store/internal/adapter/storage"
	"github.com/rl1809/cloth-store/internal/config"
	"github.com/rl1809/cloth-store/internal/core/service"
	"github.com/rl1809/cloth-store/internal/logging"
	"github.com/rl1809/cloth-store/internal/port"
	"github.com/rl1809/cloth-store/internal/worker"
)

const serviceName = "cloth-store"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: serviceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logging.Sync(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		logging.Sync(logger)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg.Log(logger)

	pricing, err := service.ParsePricingMode(cfg.PricingMode)
	if err != nil {
		return err
	}

	store := service.NewStoreService(logger.Named("store"), pricing, cfg.ReceiptQueueSize)
	if cfg.SeedDemo {
		service.SeedDemo(store)
	}
	logger.Info("store ready",
		zap.String("pricing_mode", string(store.PricingMode())),
		zap.Int("items", len(store.Inventory())),
		zap.Int("customers", len(store.Customers())))

	// Idempotency
	var idempotency port.IdempotencyStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		idempotency = storage.NewRedisAdapter(rdb, cfg.IdempotencyTTL)
	} else {
		idempotency = storage.NewMemoryIdempotency(cfg.IdempotencyTTL)
	}

	// Receipt archive
	var archive port.ReceiptArchive
	var db *sql.DB
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping mysql: %w", err)
		}

		runID := uuid.NewString()
		mysqlAdapter := storage.NewMySQLAdapter(db, runID)
		if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("connected to mysql", zap.String("run_id", runID))
		archive = mysqlAdapter
	} else {
		archive = storage.NewLogArchive(logger.Named("archive"))
	}

	pool := worker.NewPool(archive, logger.Named("worker"), 0)
	pool.Start(cfg.ArchiveWorkers, store.Receipts())

	// gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterStoreServer(grpcServer, handler.NewGRPCHandler(store, idempotency, logger.Named("grpc")))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// HTTP server
	httpHandler := handler.NewHTTPHandler(store, idempotency, logger.Named("http"))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(httpHandler, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	// Close receipt queue and wait for workers to drain it
	store.Close()
	pool.Wait()
	logger.Info("workers stopped")

	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	logger.Info("connections closed")

	return nil
}
