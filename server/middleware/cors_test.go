package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestGinCORSMiddleware проверяет добавление CORS заголовков
func TestGinCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinCORSMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Admin-Key") {
		t.Errorf("Access-Control-Allow-Headers = %q, should allow X-Admin-Key", got)
	}
}

// TestGinCORSMiddleware_Preflight проверяет обработку preflight запросов
func TestGinCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinCORSMiddleware())
	called := false
	router.OPTIONS("/test", func(c *gin.Context) {
		called = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if called {
		t.Error("Handler should not be called for preflight")
	}
}

// TestGinRequestIDMiddleware проверяет генерацию и проброс request ID
func TestGinRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinRequestIDMiddleware())

	var fromContext string
	router.GET("/test", func(c *gin.Context) {
		fromContext = GetRequestID(c.Request.Context())
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		header := w.Header().Get(RequestIDHeader)
		if header == "" {
			t.Fatal("X-Request-ID header should be set")
		}
		if fromContext != header {
			t.Errorf("context request id = %q, header = %q", fromContext, header)
		}
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "incoming-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "incoming-id" {
			t.Errorf("X-Request-ID = %q, want incoming-id", got)
		}
	})
}

// TestGinRecoveryMiddleware проверяет перехват паники
func TestGinRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinRequestIDMiddleware(), GinRecoveryMiddleware())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("Body = %s, want success=false", w.Body.String())
	}
}
