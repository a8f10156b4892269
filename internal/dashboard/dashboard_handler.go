package dashboard

import (
	"net/http"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("dashboard.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Stats(c *gin.Context) {
	resp, err := h.service.GetStats(c.Request.Context(), c.GetString("user_id"), c.Query("factory_id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("dashboard request failed", zap.Int("status", httpErr.Status), zap.String("code", httpErr.Code))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	r.GET("/dashboard/stats", auth, handler.Stats)
}
