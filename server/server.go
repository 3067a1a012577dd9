package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ratingserver/internal/config"
	"ratingserver/internal/container"
	"ratingserver/server/monitoring"
)

// Server HTTP сервер рейтингов
type Server struct {
	config    *config.Config
	container *container.Container
	metrics   *monitoring.MetricsCollector

	httpServer     *http.Server
	httpHandler    http.Handler
	handlerOnce    sync.Once
	handlerInitErr error
}

// NewServer создает сервер поверх инициализированного контейнера
func NewServer(cfg *config.Config, c *container.Container) *Server {
	var dbStats func() sql.DBStats
	if c != nil && c.DB != nil {
		dbStats = c.DB.GetConnection().Stats
	}

	s := &Server{
		config:    cfg,
		container: c,
		metrics:   monitoring.NewMetricsCollector(dbStats),
	}

	// http.Server создается здесь, а не в Start: Shutdown может прийти
	// из другой горутины раньше, чем Start дойдет до ListenAndServe
	port := ""
	if cfg != nil {
		port = cfg.Port
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Metrics возвращает сборщик метрик запросов
func (s *Server) Metrics() *monitoring.MetricsCollector {
	return s.metrics
}

// Container возвращает контейнер зависимостей
func (s *Server) Container() *container.Container {
	return s.container
}
