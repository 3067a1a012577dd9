package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratingserver/internal/config"
	"ratingserver/internal/container"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaults()
	cfg.DatabasePath = ":memory:"
	cfg.AdminKey = "secret"

	c, err := container.NewContainer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	srv := NewServer(cfg, c)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func TestServer_RatingFlow(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ratings/provider-TransferWise", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body, _ := json.Marshal(map[string]interface{}{
		"providerName": "wise",
		"rating":       4.9,
		"authKey":      "secret",
	})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trustpilot/update", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trustpilot/wise", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Value  float64 `json:"value"`
			Source string  `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4.9, resp.Data.Value)
	assert.Equal(t, "store", resp.Data.Source)

	// Google рейтинг не затронут обновлением trustpilot
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ratings/wise", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fallback", resp.Data.Source)
}

func TestServer_HealthAndNoRoute(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/ratings/health", "/api/trustpilot/health"} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown/route/here", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ratings/update", nil)
	req.Header.Set("Origin", "https://widget.example.com")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Key")
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ratings/wise", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.Header.Set("X-Admin-Key", "secret")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	snapshot := srv.Metrics().GetMetrics()
	assert.Equal(t, int64(1), snapshot.HTTP.ByRoute["/api/ratings/:providerName"])
	require.NotNil(t, snapshot.Database)
	assert.GreaterOrEqual(t, snapshot.Database.OpenConnections, 1)
}

func TestServer_ShutdownWhileStarting(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.GetDefaults()
	cfg.DatabasePath = ":memory:"
	cfg.Port = "0"

	c, err := container.NewContainer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	srv := NewServer(cfg, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	// Сигнал сразу после запуска: Start должен завершиться, а не повиснуть в ListenAndServe
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	require.NoError(t, srv.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}
