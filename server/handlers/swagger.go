package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ratingserver/docs"
)

// RegisterSwaggerRoutes регистрирует маршруты Swagger в Gin роутере
func RegisterSwaggerRoutes(router *gin.Engine, host string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
