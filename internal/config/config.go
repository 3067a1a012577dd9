package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ratingserver/enrichment"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port       string `json:"port"`
	PublicHost string `json:"public_host"`

	// База данных рейтингов
	DatabasePath string `json:"database_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Таблицы алиасов и fallback; пустой путь - встроенные
	TablesPath string `json:"tables_path"`

	// Кэш запросов
	CacheTTL             time.Duration `json:"cache_ttl"`
	CacheCleanupInterval time.Duration `json:"cache_cleanup_interval"`

	// Административный ключ; пустой отключает административные операции
	AdminKey string `json:"-"`

	// Внешние источники рейтингов
	Enrichment *EnrichmentConfig `json:"enrichment"`
}

// EnrichmentConfig конфигурация пакетной загрузки рейтингов
type EnrichmentConfig struct {
	FetchDelay time.Duration                         `json:"fetch_delay"`
	StaleAfter time.Duration                         `json:"stale_after"`
	Services   map[string]*enrichment.EnricherConfig `json:"services"`
}

// Имена внешних источников в EnrichmentConfig.Services
const (
	ServiceGooglePlaces = "google_places"
	ServiceTrustpilot   = "trustpilot"
)

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port:       getEnv("SERVER_PORT", "8080"),
		PublicHost: getEnv("PUBLIC_HOST", "localhost:8080"),

		// База данных
		DatabasePath: getEnv("DATABASE_PATH", "ratings.db"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 3),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		// Логирование
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		// Таблицы
		TablesPath: os.Getenv("RATING_TABLES_PATH"),

		// Кэш запросов
		CacheTTL:             getEnvDuration("RATING_CACHE_TTL", 5*time.Minute),
		CacheCleanupInterval: getEnvDuration("RATING_CACHE_CLEANUP", 10*time.Minute),

		AdminKey: os.Getenv("RATINGS_ADMIN_KEY"),

		// Внешние источники
		Enrichment: LoadEnrichmentConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadEnrichmentConfig загружает конфигурацию внешних источников
func LoadEnrichmentConfig() *EnrichmentConfig {
	services := make(map[string]*enrichment.EnricherConfig)

	// Google Places
	services[ServiceGooglePlaces] = &enrichment.EnricherConfig{
		APIKey:      os.Getenv("GOOGLE_PLACES_API_KEY"),
		BaseURL:     getEnv("GOOGLE_PLACES_BASE_URL", enrichment.DefaultPlacesBaseURL),
		Timeout:     getEnvDuration("GOOGLE_PLACES_TIMEOUT", 10*time.Second),
		MaxRequests: getEnvInt("GOOGLE_PLACES_MAX_REQUESTS", 60),
		Enabled:     getEnv("GOOGLE_PLACES_ENABLED", "true") == "true",
	}

	// Trustpilot
	services[ServiceTrustpilot] = &enrichment.EnricherConfig{
		BaseURL:     getEnv("TRUSTPILOT_BASE_URL", enrichment.DefaultTrustpilotBaseURL),
		Timeout:     getEnvDuration("TRUSTPILOT_TIMEOUT", 15*time.Second),
		MaxRequests: getEnvInt("TRUSTPILOT_MAX_REQUESTS", 30),
		Enabled:     getEnv("TRUSTPILOT_ENABLED", "true") == "true",
		UserAgent:   os.Getenv("TRUSTPILOT_USER_AGENT"),
	}

	return &EnrichmentConfig{
		FetchDelay: getEnvDuration("FETCH_DELAY", enrichment.DefaultFetchDelay),
		StaleAfter: getEnvDuration("RATING_STALE_AFTER", enrichment.DefaultStaleAfter),
		Services:   services,
	}
}

// Service возвращает конфигурацию источника или nil
func (ec *EnrichmentConfig) Service(name string) *enrichment.EnricherConfig {
	if ec == nil {
		return nil
	}
	return ec.Services[name]
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
