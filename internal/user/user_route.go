package user

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth, idempotency, rateLimit gin.HandlerFunc) {
	users := r.Group("/users")
	users.Use(auth, rateLimit)
	{
		users.GET("", handler.GetAll)
		users.GET("/:id", handler.GetById)
		users.POST("", idempotency, handler.Create)
		users.PATCH("/:id/status", handler.ToggleStatus)
		users.POST("/me/password", handler.ChangePassword)
	}
}
