package main

import (
	"fmt"
	"os"
	"sort"

	"ratingserver/internal/config"
	"ratingserver/internal/domain/rating"
)

func main() {
	fmt.Println("=== Проверка конфигурации ===")
	fmt.Println("")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Конфигурация успешно загружена")
	fmt.Println("")

	fmt.Println("Основные настройки:")
	fmt.Printf("  Порт: %s\n", cfg.Port)
	fmt.Printf("  Публичный хост: %s\n", cfg.PublicHost)
	fmt.Printf("  БД рейтингов: %s\n", cfg.DatabasePath)
	fmt.Printf("  Уровень логов: %s\n", cfg.LogLevel)
	if cfg.AdminKey != "" {
		fmt.Printf("  Административный ключ: [установлен]\n")
	} else {
		fmt.Printf("  Административный ключ: [не установлен, изменения запрещены]\n")
	}
	fmt.Println("")

	fmt.Println("Connection Pooling:")
	fmt.Printf("  Max Open Connections: %d\n", cfg.MaxOpenConns)
	fmt.Printf("  Max Idle Connections: %d\n", cfg.MaxIdleConns)
	fmt.Printf("  Connection Max Lifetime: %v\n", cfg.ConnMaxLifetime)
	fmt.Println("")

	fmt.Println("Кэш запросов:")
	fmt.Printf("  TTL: %v\n", cfg.CacheTTL)
	fmt.Printf("  Интервал очистки: %v\n", cfg.CacheCleanupInterval)
	fmt.Println("")

	catalog, err := rating.LoadCatalog(cfg.TablesPath)
	if err != nil {
		fmt.Printf("❌ Ошибка загрузки таблиц: %v\n", err)
		os.Exit(1)
	}
	source := cfg.TablesPath
	if source == "" {
		source = "встроенные"
	}
	fmt.Println("Таблицы рейтингов:")
	fmt.Printf("  Источник: %s\n", source)
	fmt.Printf("  Версия: %s\n", catalog.Version)
	fmt.Printf("  Провайдеров: %d\n", len(catalog.Providers))
	fmt.Printf("  Алиасов: %d\n", catalog.Aliases.Len())
	fmt.Println("")

	if cfg.Enrichment != nil {
		fmt.Println("Enrichment:")
		fmt.Printf("  Fetch Delay: %v\n", cfg.Enrichment.FetchDelay)
		fmt.Printf("  Stale After: %v\n", cfg.Enrichment.StaleAfter)

		names := make([]string, 0, len(cfg.Enrichment.Services))
		for name := range cfg.Enrichment.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			svc := cfg.Enrichment.Services[name]
			keyState := "не требуется"
			if name == config.ServiceGooglePlaces {
				keyState = "не установлен"
				if svc.APIKey != "" {
					keyState = "установлен"
				}
			}
			fmt.Printf("  %s: enabled=%v url=%s timeout=%v key=[%s]\n",
				name, svc.Enabled, svc.BaseURL, svc.Timeout, keyState)
		}
		fmt.Println("")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("⚠️  Предупреждения валидации: %v\n", err)
		fmt.Println("")
	} else {
		fmt.Println("✅ Валидация пройдена успешно")
		fmt.Println("")
	}

	fmt.Println("=== Проверка завершена ===")
}
