package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованная миграция схемы
type migration struct {
	name  string
	apply func(ctx context.Context, conn *sql.DB) error
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(ctx context.Context, conn *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`, migrationsTableName)

	if _, err := conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(ctx context.Context, conn *sql.DB, name string) (bool, error) {
	var appliedAt string
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := conn.QueryRowContext(ctx, query, name).Scan(&appliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return appliedAt != "", nil
}

// markMigrationApplied сохраняет информацию о примененной миграции.
func markMigrationApplied(ctx context.Context, conn *sql.DB, name string) error {
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := conn.ExecContext(ctx, query, name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}
	return nil
}

// applyMigrations выполняет каждую миграцию только один раз.
func applyMigrations(ctx context.Context, conn *sql.DB, migrations []migration) error {
	if err := ensureMigrationTable(ctx, conn); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, conn, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := m.apply(ctx, conn); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		if err := markMigrationApplied(ctx, conn, m.name); err != nil {
			return err
		}
		log.Printf("[Migrations] %s applied successfully", m.name)
	}
	return nil
}
