package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ratingMigrations миграции схемы хранилища рейтингов
var ratingMigrations = []migration{
	{name: "001_create_google_ratings", apply: createRatingTable(TableGoogleRatings)},
	{name: "002_create_trustpilot_ratings", apply: createRatingTable(TableTrustpilotRatings)},
}

// createRatingTable создает таблицу рейтингов одного вида.
// provider_key - первичный ключ: не более одной записи на провайдера.
func createRatingTable(table string) func(ctx context.Context, conn *sql.DB) error {
	return func(ctx context.Context, conn *sql.DB) error {
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				provider_key TEXT PRIMARY KEY,
				value REAL NOT NULL CHECK (value >= 0 AND value <= 5),
				review_count INTEGER NOT NULL DEFAULT 0,
				source TEXT NOT NULL DEFAULT '',
				last_updated TEXT NOT NULL
			)
		`, table)
		if _, err := conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
		return nil
	}
}
