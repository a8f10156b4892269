package document

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, idempotency gin.HandlerFunc) {
	documents := r.Group("/documents")
	documents.Use(auth)
	{
		documents.GET("", handler.GetAll)
		documents.GET("/stats", handler.Stats)
		documents.GET("/:id", handler.GetByID)
		documents.POST("", idempotency, handler.Create)
		documents.PUT("/:id", handler.Update)
		documents.POST("/:id/publish", handler.Publish)
		documents.POST("/:id/archive", handler.Archive)
		documents.DELETE("/:id", handler.Delete)
		documents.DELETE("/:id/purge", handler.Purge)
	}
}
