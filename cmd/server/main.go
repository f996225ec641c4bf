package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/cocktail-pantry/internal/adapter/handler"
	"github.com/rl1809/cocktail-pantry/internal/adapter/storage"
	"github.com/rl1809/cocktail-pantry/internal/config"
	"github.com/rl1809/cocktail-pantry/internal/core/engine"
	"github.com/rl1809/cocktail-pantry/internal/core/service"
	"github.com/rl1809/cocktail-pantry/internal/scheduler"
	"github.com/rl1809/cocktail-pantry/pkg/logger"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping mysql", zap.Error(err))
	}
	log.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	log.Info("connected to redis")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	if err := mysqlAdapter.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	catalog, err := loadCatalog(ctx, mysqlAdapter, cfg.Engine.UnitsFile)
	if err != nil {
		log.Fatal("failed to load unit catalog", zap.Error(err))
	}
	log.Info("unit catalog loaded", zap.Int("units", len(catalog.Units())))

	eng := engine.New(catalog, engine.Config{
		Tolerance:   cfg.Engine.Tolerance,
		MergePolicy: cfg.Engine.MergePolicy,
	})
	opts := service.Options{
		RejectUnknownUnits: cfg.Engine.RejectUnknownUnits,
		LockTTL:            cfg.Lock.TTL,
		LockWait:           cfg.Lock.Wait,
		CacheTTL:           cfg.Cache.TTL,
	}

	stockService := service.NewStockService(mysqlAdapter, mysqlAdapter, redisAdapter, eng, opts, logger.Named(log, "svc.stock"))
	shoppingService := service.NewShoppingListService(mysqlAdapter, mysqlAdapter, redisAdapter, stockService, eng, opts, logger.Named(log, "svc.shopping"))
	feasibilityService := service.NewFeasibilityService(mysqlAdapter, mysqlAdapter, redisAdapter, eng, opts, logger.Named(log, "svc.feasibility"))

	sweeper := scheduler.NewScheduler(cfg.Sweeper.CronSchedule, map[string]scheduler.Pruner{
		"stock":         stockService,
		"shopping_list": shoppingService,
	}, logger.Named(log, "scheduler"))
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterPantryServer(grpcServer, handler.NewGRPCHandler(
		stockService, shoppingService, feasibilityService, cfg.Engine.DefaultMaxMissing, logger.Named(log, "grpc")))

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.Error(err))
	}

	go func() {
		log.Info("gRPC server listening", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(stockService, shoppingService, feasibilityService, cfg.Engine.DefaultMaxMissing, logger.Named(log, "http"))
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: handler.NewRouter(httpHandler, logger.Named(log, "http")),
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	sweeper.Stop()

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

// loadCatalog layers the built-in units, the units reference table and the
// optional units file, later sources winning per code.
func loadCatalog(ctx context.Context, store *storage.MySQLAdapter, unitsFile string) (*engine.Catalog, error) {
	catalog := engine.DefaultCatalog()

	dbUnits, err := store.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	if catalog, err = catalog.Overlay(dbUnits); err != nil {
		return nil, err
	}

	fileUnits, err := config.LoadUnitsFile(unitsFile)
	if err != nil {
		return nil, err
	}
	return catalog.Overlay(fileUnits)
}
