package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ratingserver/internal/config"
	"ratingserver/internal/container"
	"ratingserver/server"
)

func main() {
	kind := flag.String("kind", "all", "вид рейтинга: google, trustpilot или all")
	force := flag.Bool("force", false, "обновить все записи независимо от возраста")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	logger := server.SetupLogger(cfg.SlogLevel())

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		log.Fatalf("Ошибка инициализации контейнера: %v", err)
	}

	kinds := container.Kinds
	if *kind != "all" {
		kinds = []string{*kind}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := runBatches(ctx, c, kinds, *force, os.Stdout)
	stop()

	// os.Exit не выполняет defer, поэтому БД закрываем явно
	if err := c.Close(); err != nil {
		log.Printf("⚠ Ошибка закрытия контейнера: %v", err)
	}
	os.Exit(exitCode)
}

// runBatches прогоняет загрузку по видам и возвращает код выхода
func runBatches(ctx context.Context, c *container.Container, kinds []string, force bool, out io.Writer) int {
	exitCode := 0
	for _, k := range kinds {
		driver, err := c.BatchDriver(k)
		if err != nil {
			log.Printf("⚠ Пропуск %s: %v", k, err)
			exitCode = 1
			continue
		}

		report, err := driver.Run(ctx, force)
		if report != nil {
			fmt.Fprintf(out, "%s: stored=%d skipped=%d fallback=%d failed=%d (%v)\n",
				report.Kind, len(report.Stored), len(report.Skipped), len(report.Fallback), len(report.Failed), report.Duration)
			for _, record := range report.Stored {
				fmt.Fprintf(out, "  ✓ %-14s %.1f (%d reviews)\n", record.ProviderKey, record.Value, record.ReviewCount)
			}
			if len(report.Failed) > 0 {
				exitCode = 1
			}
		}
		if err != nil {
			log.Printf("✗ Загрузка %s прервана: %v", k, err)
			return 1
		}
	}
	return exitCode
}
