package auth

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth, loginRateLimit gin.HandlerFunc) {
	g := r.Group("/auth")
	{
		g.POST("/login", loginRateLimit, handler.Login)
		g.POST("/refresh", loginRateLimit, handler.RefreshToken)
		g.POST("/logout", handler.Logout)
		g.GET("/me", auth, handler.Me)
	}
}
