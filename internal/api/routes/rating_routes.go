package routes

import (
	"github.com/gin-gonic/gin"

	"ratingserver/internal/api/handlers/rating"
)

// RegisterRatingRoutes регистрирует маршруты одного вида рейтингов в группе prefix.
// Статический /health регистрируется рядом с параметром :providerName.
func RegisterRatingRoutes(api *gin.RouterGroup, prefix string, h *rating.Handler) {
	group := api.Group("/" + prefix)

	group.GET("/health", h.HandleHealth)
	group.POST("/update", h.HandleUpdateRating)
	group.GET("", h.HandleListRatings)
	group.GET("/:providerName", h.HandleGetRating)
	group.DELETE("/:providerName", h.HandleDeleteRating)
}
