package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	httpAPI "cinevault/internal/api"
	"cinevault/internal/config"
	grpcServer "cinevault/internal/grpc"
	"cinevault/internal/logging"
	"cinevault/internal/service"
	"cinevault/internal/store"
	"cinevault/pkg/auth"
)

// connectToDB инициализирует соединение с базой данных
func connectToDB(dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	logger.Info("Attempting to connect to CineVault database", slog.String("dbURL_used", redact(dbURL)))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

// redact прячет пароль в строке подключения для логов.
func redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}

// openStore выбирает хранилище. Функция закрытия всегда не nil.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store, data will not survive a restart")
		return store.NewMemoryStore(logger), func() {}, nil
	}

	db, err := connectToDB(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		logger.Info("Closing PostgreSQL database connection...")
		if err := db.Close(); err != nil {
			logger.Error("Failed to close PostgreSQL connection", slog.String("error", err.Error()))
		}
	}
	if cfg.Migrate {
		if err := store.Migrate(db, logger); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	st, err := store.NewPostgresStore(db, logger)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Info("PostgreSQL store initialized.")
	return st, closeDB, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("CineVault stopped with error", slog.String("error", err.Error()))
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	st, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	services := service.New(st, auth.NewBcryptHasher(bcrypt.DefaultCost), logger, service.Config{
		BulkDeleteMode: cfg.BulkDeleteMode,
	})

	// --- Настройка и запуск gRPC сервера ---
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on port %s: %w", cfg.GRPCPort, err)
	}
	grpcSrv := grpc.NewServer()
	grpcServer.RegisterCatalogServer(grpcSrv, grpcServer.NewServer(services, logger))
	reflection.Register(grpcSrv)

	go func() {
		logger.Info("gRPC server starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- Настройка и запуск HTTP сервера ---
	router := httpAPI.NewRouter(httpAPI.NewHandler(services, logger, cfg.Env))
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", slog.String("port", cfg.HTTPPort), slog.String("environment", cfg.Env))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("CineVault shutting down...", slog.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		grpcSrv.Stop()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP Server Shutdown Failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP Server gracefully stopped.")
	}

	grpcSrv.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")
	return nil
}
