package audit

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, idempotency gin.HandlerFunc) {
	audits := r.Group("/audits")
	audits.Use(auth)
	{
		audits.GET("", handler.GetAll)
		audits.GET("/stats", handler.Stats)
		audits.GET("/:id", handler.GetByID)
		audits.GET("/:id/report", handler.Report)
		audits.POST("", idempotency, handler.Create)
		audits.PUT("/:id", handler.Update)
		audits.DELETE("/:id", handler.Delete)
		audits.POST("/:id/start", handler.Start)
		audits.POST("/:id/complete", handler.Complete)
	}
}
