// cmd/scanner/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/authtoken"
	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/eventbus"
	"github.com/TradingApplication/catalyst-trading-system/internal/middleware"
	"github.com/TradingApplication/catalyst-trading-system/internal/scanner"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

func main() {
	cfg, err := config.Load("config/scanner.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	port, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	publisher := eventbus.NewPublisher(strings.Split(cfg.Kafka.Brokers, ","), "catalyst-scanner", logger)
	defer publisher.Close()

	marketData := scanner.NewMarketDataClient(cfg.Collaborators.MarketData, logger)
	sc := scanner.New(port, marketData, cfg.Scanner, publisher, logger)

	issuer := authtoken.NewIssuer(cfg.JWTSecret, time.Hour)
	hashedKey, err := authtoken.HashServiceKey(cfg.ServiceKey)
	if err != nil {
		logger.Fatal("Failed to hash service key", zap.Error(err))
	}

	router := setupRouter(sc, issuer, hashedKey, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting scanner", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scanner...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Scanner exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.Port, func() error, error) {
	if cfg.Database.Host == "" {
		mem := store.NewMemory()
		return mem, mem.Close, nil
	}

	pg, err := store.OpenPostgres(store.PostgresConfig{
		Host: cfg.Database.Host, Port: cfg.Database.Port, User: cfg.Database.User,
		Password: cfg.Database.Password, DBName: cfg.Database.DBName, SSLMode: cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns, MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	cache := store.OpenRedis(store.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	composite := store.NewComposite(pg, cache)
	return composite, composite.Close, nil
}

func setupRouter(sc *scanner.Scanner, issuer *authtoken.Issuer, hashedServiceKey string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	handler := scanner.NewHandler(sc, logger)
	handler.Register(router.Group("/", middleware.ServiceAuth(issuer, hashedServiceKey, logger)))

	return router
}
