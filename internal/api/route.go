package api

import (
	"ViewCounter/internal/api/middleware"
	"ViewCounter/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS & Recovery
	r.Use(middleware.TraceMiddleware())
	r.Use(logger.AccessLogger())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	entityGroup := r.Group("/entities/:id")
	{
		entityGroup.GET("/views", group.ViewCounterHandler.GetViews)
		entityGroup.POST("/views", group.ViewCounterHandler.IncrementViews)
		entityGroup.GET("/views/trend", group.ViewCounterHandler.GetViewTrend)
	}

	return r
}
