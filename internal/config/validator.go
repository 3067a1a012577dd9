package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ratingserver/enrichment"
)

var validLogLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errors = append(errors, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		errors = append(errors, "connection max lifetime must be at least 1 second")
	}

	// Валидация уровня логирования
	if c.LogLevel != "" {
		if _, ok := parseLogLevel(c.LogLevel); !ok {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Валидация кэша
	if c.CacheTTL < time.Second {
		errors = append(errors, "cache TTL must be at least 1 second")
	}
	if c.CacheCleanupInterval < time.Second {
		errors = append(errors, "cache cleanup interval must be at least 1 second")
	}

	if c.Enrichment != nil {
		if err := c.Enrichment.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("enrichment config: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate проверяет корректность конфигурации внешних источников
func (ec *EnrichmentConfig) Validate() error {
	var errors []string

	if ec.FetchDelay < 0 {
		errors = append(errors, "fetch delay cannot be negative")
	}
	if ec.StaleAfter < time.Hour {
		errors = append(errors, "stale horizon must be at least 1 hour")
	}

	for name, service := range ec.Services {
		if service == nil {
			errors = append(errors, fmt.Sprintf("service %s is nil", name))
			continue
		}
		if service.Timeout < time.Second {
			errors = append(errors, fmt.Sprintf("service %s timeout must be at least 1 second", name))
		}
		if service.MaxRequests < 1 {
			errors = append(errors, fmt.Sprintf("service %s max requests must be at least 1", name))
		}
		if service.BaseURL == "" {
			errors = append(errors, fmt.Sprintf("service %s base url is required", name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("enrichment validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SlogLevel возвращает уровень логирования для slog; INFO при пустом значении
func (c *Config) SlogLevel() slog.Level {
	level, ok := parseLogLevel(c.LogLevel)
	if !ok {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(value string) (slog.Level, bool) {
	switch strings.ToUpper(value) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:                 "8080",
		PublicHost:           "localhost:8080",
		DatabasePath:         "ratings.db",
		MaxOpenConns:         10,
		MaxIdleConns:         3,
		ConnMaxLifetime:      5 * time.Minute,
		LogLevel:             "INFO",
		CacheTTL:             5 * time.Minute,
		CacheCleanupInterval: 10 * time.Minute,
		Enrichment:           GetDefaultEnrichmentConfig(),
	}
}

// GetDefaultEnrichmentConfig возвращает конфигурацию внешних источников по умолчанию
func GetDefaultEnrichmentConfig() *EnrichmentConfig {
	return &EnrichmentConfig{
		FetchDelay: enrichment.DefaultFetchDelay,
		StaleAfter: enrichment.DefaultStaleAfter,
		Services: map[string]*enrichment.EnricherConfig{
			ServiceGooglePlaces: {
				BaseURL:     enrichment.DefaultPlacesBaseURL,
				Timeout:     10 * time.Second,
				MaxRequests: 60,
				Enabled:     true,
			},
			ServiceTrustpilot: {
				BaseURL:     enrichment.DefaultTrustpilotBaseURL,
				Timeout:     15 * time.Second,
				MaxRequests: 30,
				Enabled:     true,
			},
		},
	}
}
