package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskauth-api/internal/auth"
	"github.com/BuzzLyutic/taskauth-api/internal/config"
	"github.com/BuzzLyutic/taskauth-api/internal/handler"
	"github.com/BuzzLyutic/taskauth-api/internal/repo"
	"github.com/BuzzLyutic/taskauth-api/internal/service"
	"github.com/BuzzLyutic/taskauth-api/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаем логгер
	lg := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	defer lg.Sync()

	// Подключаем хранилище
	store, err := repo.Open(context.Background(), cfg, lg)
	if err != nil {
		lg.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.Close()
	lg.Info("Storage ready", zap.String("driver", cfg.StorageDriver))

	tokens := auth.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	userService := service.NewUserService(store, hasher, tokens, lg)
	taskService := service.NewTaskService(store, lg)

	srv := http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler.NewRouter(userService, taskService, lg, handler.RouterOptions{
			CORSOrigins:  cfg.HTTP.CORSOrigins,
			MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		lg.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	lg.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("Shutdown error", zap.Error(err))
	}
	lg.Info("Server stopped successfully")
}
