package auth

import (
	"net/http"
	"strings"

	autherrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

type Handler struct {
	service       Service
	secureCookies bool
	logger        *zap.Logger
}

func NewHandler(s Service, secureCookies bool, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, secureCookies: secureCookies, logger: l}
}

func isWebClient(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("X-Client-Type"), "web")
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) setCookies(c *gin.Context, pair TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, pair.AccessToken, 15*60, "/", "", h.secureCookies, true)
	c.SetCookie(RefreshCookie, pair.RefreshToken, 3600*24*7, "/", "", h.secureCookies, true)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, apperror.MapValidationError(err))
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if isWebClient(c) {
		h.setCookies(c, pair)
	}
	response.Success(c, http.StatusOK, pair, nil)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var refreshToken string
	if isWebClient(c) {
		refreshToken, _ = c.Cookie(RefreshCookie)
	} else {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeError(c, apperror.MapValidationError(err))
			return
		}
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		h.writeError(c, autherrors.ErrTokenMissing)
		return
	}

	pair, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.logger.Debug("refresh rejected", zap.Error(err))
		h.writeError(c, err)
		return
	}

	if isWebClient(c) {
		h.setCookies(c, pair)
	}
	response.Success(c, http.StatusOK, pair, nil)
}

func (h *Handler) Me(c *gin.Context) {
	resp, err := h.service.GetMe(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", h.secureCookies, true)

	response.Success(c, http.StatusOK, gin.H{"logged_out": true}, nil)
}
