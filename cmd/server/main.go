// @title Provider Rating API
// @version 1.0
// @description Рейтинги провайдеров денежных переводов для виджетов (Google и Trustpilot).

// @host localhost:8080
// @BasePath /api
// @schemes http https

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratingserver/internal/config"
	"ratingserver/internal/container"
	"ratingserver/server"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 Запуск Rating Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := server.SetupLogger(cfg.SlogLevel())

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("Ошибка инициализации контейнера: %v", err)
	}

	srv := server.NewServer(cfg, c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("✗ КРИТИЧЕСКАЯ ОШИБКА: Ошибка запуска сервера: %v", err)
		}
		if closeErr := c.Close(); closeErr != nil {
			log.Printf("Ошибка закрытия контейнера: %v", closeErr)
		}
		if err != nil {
			os.Exit(1)
		}
		return
	case <-ctx.Done():
		log.Println("Получен сигнал остановки")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Ошибка graceful shutdown: %v", err)
	}
	log.Println("Сервер остановлен")
}
