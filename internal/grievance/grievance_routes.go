package grievance

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the authenticated routes and the public anonymous
// submission route, which only passes through rateLimit.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth, idempotency, rateLimit gin.HandlerFunc) {
	r.POST("/grievances/anonymous", rateLimit, handler.CreateAnonymous)

	grievances := r.Group("/grievances")
	grievances.Use(auth)
	{
		grievances.GET("", handler.GetAll)
		grievances.GET("/stats", handler.Stats)
		grievances.GET("/:id", handler.GetByID)
		grievances.POST("", idempotency, handler.Create)
		grievances.POST("/:id/assign", handler.Assign)
		grievances.POST("/:id/resolve", handler.Resolve)
		grievances.POST("/:id/close", handler.Close)
		grievances.DELETE("/:id", handler.Delete)
	}
}
