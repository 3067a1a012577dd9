package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ratingserver/export"
	"ratingserver/internal/config"
	"ratingserver/internal/container"
	"ratingserver/internal/domain/repositories"
	"ratingserver/server"
)

func main() {
	out := flag.String("out", "ratings.xlsx", "путь к выходному xlsx файлу")
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

	kinds, exportErr := exportRatings(context.Background(), c, *out)

	// log.Fatalf не выполняет defer, поэтому БД закрываем до выхода
	if err := c.Close(); err != nil {
		log.Printf("⚠ Ошибка закрытия контейнера: %v", err)
	}
	if exportErr != nil {
		log.Fatalf("Ошибка экспорта: %v", exportErr)
	}

	for kind, records := range kinds {
		log.Printf("✓ %s: %d записей", kind, len(records))
	}
	log.Printf("Экспорт сохранен в %s", *out)
}

// exportRatings выгружает все сохраненные рейтинги в xlsx файл path
func exportRatings(ctx context.Context, c *container.Container, path string) (map[string][]repositories.RatingRecord, error) {
	kinds := make(map[string][]repositories.RatingRecord, len(container.Kinds))
	for _, kind := range container.Kinds {
		records, err := c.Repositories[kind].FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("чтение рейтингов %s: %w", kind, err)
		}
		kinds[kind] = records
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("создание файла %s: %w", path, err)
	}

	if err := export.WriteRatingsXLSX(file, kinds); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("запись файла %s: %w", path, err)
	}
	return kinds, nil
}
