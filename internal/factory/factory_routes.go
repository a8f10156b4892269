package factory

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, idempotency gin.HandlerFunc) {
	factories := r.Group("/factories")
	factories.Use(auth)
	{
		factories.GET("", handler.GetAll)
		factories.GET("/options", handler.GetOptions)
		factories.GET("/stats", handler.Stats)
		factories.GET("/:id", handler.GetByID)
		factories.POST("", idempotency, handler.Create)
		factories.PUT("/:id", handler.Update)
		factories.PATCH("/:id/toggle", handler.Toggle)
		factories.DELETE("/:id", handler.Delete)
	}
}
