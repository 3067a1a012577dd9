package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"ratingserver/internal/api/routes"
	"ratingserver/server/handlers"
	"ratingserver/server/middleware"
)

// Start запускает HTTP сервер и фоновую очистку кэшей.
// Блокируется до остановки сервера через Shutdown.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.ensureHTTPHandler(); err != nil {
		return err
	}

	addr := s.httpServer.Addr
	s.container.StartCacheCleanup(ctx)

	log.Printf("Сервер запускается на порту %s", s.config.Port)
	log.Printf("API доступно по адресу: http://localhost%s/api", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		LogError(ctx, err, "HTTP server failed", "addr", addr)
		return fmt.Errorf("не удалось запустить HTTP сервер на %s: %w", addr, err)
	}

	return nil
}

func (s *Server) ensureHTTPHandler() (http.Handler, error) {
	s.handlerOnce.Do(func() {
		s.httpHandler, s.handlerInitErr = s.buildHTTPHandler()
		if s.handlerInitErr != nil {
			log.Printf("[ensureHTTPHandler] ✗ ОШИБКА при создании HTTP handler: %v", s.handlerInitErr)
		}
	})

	if s.handlerInitErr != nil {
		return nil, s.handlerInitErr
	}
	if s.httpHandler == nil {
		return nil, fmt.Errorf("httpHandler is nil")
	}
	return s.httpHandler, nil
}

func (s *Server) buildHTTPHandler() (http.Handler, error) {
	if s.container == nil {
		return nil, fmt.Errorf("container is nil")
	}

	// Можно переопределить через переменную окружения GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(Logger))
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(s.metrics.Middleware())

	handlers.RegisterSwaggerRoutes(router, s.config.PublicHost)

	apiRouter := routes.NewRouter(
		handlers.NewMetricsHandler(s.container.UseCase, s.metrics),
		s.container.Handlers...,
	)
	apiRouter.RegisterAll(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Success:   false,
			Message:   "route not found",
			RequestID: middleware.GetRequestIDFromGin(c),
		})
	})

	return router, nil
}

// ServeHTTP реализует http.Handler для тестов и вспомогательных утилит
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, err := s.ensureHTTPHandler()
	if err != nil {
		http.Error(w, "server is not initialized", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}

// Shutdown останавливает HTTP сервер gracefully и освобождает ресурсы контейнера
func (s *Server) Shutdown(ctx context.Context) error {
	start := time.Now()
	log.Println("Initiating graceful shutdown...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}

	if err := s.container.Close(); err != nil {
		return err
	}

	LogDuration(ctx, "Graceful shutdown", time.Since(start))
	return nil
}
