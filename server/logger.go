package server

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"ratingserver/server/middleware"
)

var (
	// Logger глобальный структурированный логгер
	Logger *slog.Logger
)

func init() {
	Logger = NewLogger(os.Stdout, slog.LevelInfo)
}

// NewLogger создает JSON логгер с указанием источника
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true, // Добавляем информацию об источнике (файл, строка)
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetupLogger пересоздает глобальный логгер с заданным уровнем и делает его логгером по умолчанию
func SetupLogger(level slog.Level) *slog.Logger {
	Logger = NewLogger(os.Stdout, level)
	slog.SetDefault(Logger)
	return Logger
}

// LogError логирует ошибку с контекстом из запроса
func LogError(ctx context.Context, err error, msg string, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", middleware.GetRequestID(ctx))
	Logger.Error(msg, attrs...)
}

// LogDuration логирует продолжительность выполнения операции
func LogDuration(ctx context.Context, operation string, duration time.Duration, attrs ...any) {
	attrs = append(attrs, "request_id", middleware.GetRequestID(ctx), "duration_ms", duration.Milliseconds())
	Logger.Info(operation+" completed", attrs...)
}
