package routes

import (
	"log"

	"github.com/gin-gonic/gin"

	"ratingserver/internal/api/handlers/rating"
	"ratingserver/internal/domain/repositories"
	"ratingserver/server/handlers"
)

// kindPrefixes путь группы для каждого вида рейтинга
var kindPrefixes = map[string]string{
	repositories.KindGoogle:     "ratings",
	repositories.KindTrustpilot: "trustpilot",
}

// PrefixForKind возвращает путь группы для вида рейтинга
func PrefixForKind(kind string) string {
	if prefix, ok := kindPrefixes[kind]; ok {
		return prefix
	}
	return kind
}

// Router централизует регистрацию маршрутов API
type Router struct {
	ratingHandlers []*rating.Handler
	metricsHandler *handlers.MetricsHandler
}

// NewRouter создает новый роутер
func NewRouter(metricsHandler *handlers.MetricsHandler, ratingHandlers ...*rating.Handler) *Router {
	return &Router{
		ratingHandlers: ratingHandlers,
		metricsHandler: metricsHandler,
	}
}

// RegisterAll регистрирует все маршруты в /api
func (r *Router) RegisterAll(engine *gin.Engine) {
	api := engine.Group("/api")

	for _, h := range r.ratingHandlers {
		prefix := PrefixForKind(h.Kind())
		RegisterRatingRoutes(api, prefix, h)
		log.Printf("[Router] ✓ Rating routes зарегистрированы: /api/%s (%s)", prefix, h.Kind())
	}

	if r.metricsHandler != nil {
		api.GET("/errors/metrics", r.metricsHandler.HandleGetErrorMetrics)
		api.GET("/metrics", r.metricsHandler.HandleGetMetrics)
	}
}
