package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Таблицы рейтингов
const (
	TableGoogleRatings     = "google_ratings"
	TableTrustpilotRatings = "trustpilot_ratings"
)

// ratingTables отображение вида рейтинга в таблицу
var ratingTables = map[string]string{
	"google":     TableGoogleRatings,
	"trustpilot": TableTrustpilotRatings,
}

// DBConfig конфигурация для подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RatingsDB обертка для работы с хранилищем рейтингов
type RatingsDB struct {
	conn *sql.DB
	path string
}

// RatingRow строка таблицы рейтингов
type RatingRow struct {
	ProviderKey string
	Value       float64
	ReviewCount int
	Source      string
	LastUpdated time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// NewRatingsDB открывает хранилище рейтингов с настройками по умолчанию
func NewRatingsDB(dbPath string) (*RatingsDB, error) {
	return NewRatingsDBWithConfig(dbPath, DBConfig{})
}

// NewRatingsDBWithConfig открывает хранилище рейтингов и применяет миграции
func NewRatingsDBWithConfig(dbPath string, config DBConfig) (*RatingsDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ratings database: %w", err)
	}

	if isInMemoryDB(dbPath) {
		// Каждое новое соединение к :memory: получает пустую БД
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		if config.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(config.MaxOpenConns)
		} else {
			conn.SetMaxOpenConns(10)
		}
		if config.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(config.MaxIdleConns)
		} else {
			conn.SetMaxIdleConns(3)
		}
		if config.ConnMaxLifetime > 0 {
			conn.SetConnMaxLifetime(config.ConnMaxLifetime)
		} else {
			conn.SetConnMaxLifetime(5 * time.Minute)
		}
	}

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ratings database: %w", err)
	}

	if !isInMemoryDB(dbPath) {
		// WAL позволяет читателям не блокироваться на записи батча
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("[RatingsDB] Warning: Failed to enable WAL mode: %v", err)
		}
	}

	if err := applyMigrations(ctx, conn, ratingMigrations); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize ratings schema: %w", err)
	}

	return &RatingsDB{conn: conn, path: dbPath}, nil
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// Close закрывает соединение с БД
func (db *RatingsDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *RatingsDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// GetConnection возвращает указатель на sql.DB для прямого доступа
func (db *RatingsDB) GetConnection() *sql.DB {
	return db.conn
}

// Path путь к файлу БД
func (db *RatingsDB) Path() string {
	return db.path
}

func tableForKind(kind string) (string, error) {
	table, ok := ratingTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown rating kind: %s", kind)
	}
	return table, nil
}

// GetRating возвращает запись по ключу провайдера; (nil, nil) если записи нет
func (db *RatingsDB) GetRating(ctx context.Context, kind, providerKey string) (*RatingRow, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT provider_key, value, review_count, source, last_updated FROM %s WHERE provider_key = ?`, table)
	row := db.conn.QueryRowContext(ctx, query, providerKey)

	result, err := scanRatingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating %s/%s: %w", kind, providerKey, err)
	}
	return result, nil
}

// UpsertRating вставляет запись или полностью заменяет существующую
func (db *RatingsDB) UpsertRating(ctx context.Context, kind string, row RatingRow) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (provider_key, value, review_count, source, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider_key) DO UPDATE SET
			value = excluded.value,
			review_count = excluded.review_count,
			source = excluded.source,
			last_updated = excluded.last_updated
	`, table)

	_, err = db.conn.ExecContext(ctx, query,
		row.ProviderKey,
		row.Value,
		row.ReviewCount,
		row.Source,
		row.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rating %s/%s: %w", kind, row.ProviderKey, err)
	}
	return nil
}

// ListRatings возвращает все записи вида, отсортированные по ключу
func (db *RatingsDB) ListRatings(ctx context.Context, kind string) ([]RatingRow, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT provider_key, value, review_count, source, last_updated FROM %s ORDER BY provider_key`, table)
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ratings: %w", kind, err)
	}
	defer rows.Close()

	var result []RatingRow
	for rows.Next() {
		row, err := scanRatingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s rating: %w", kind, err)
		}
		result = append(result, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s ratings: %w", kind, err)
	}
	return result, nil
}

// DeleteRating удаляет запись; возвращает false, если записи не было
func (db *RatingsDB) DeleteRating(ctx context.Context, kind, providerKey string) (bool, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE provider_key = ?`, table)
	res, err := db.conn.ExecContext(ctx, query, providerKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete rating %s/%s: %w", kind, providerKey, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete rating %s/%s: %w", kind, providerKey, err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRatingRow(scanner rowScanner) (*RatingRow, error) {
	var (
		row         RatingRow
		lastUpdated string
	)
	if err := scanner.Scan(&row.ProviderKey, &row.Value, &row.ReviewCount, &row.Source, &lastUpdated); err != nil {
		return nil, err
	}

	parsed, err := parseTimestamp(lastUpdated)
	if err != nil {
		return nil, err
	}
	row.LastUpdated = parsed
	return &row, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}
