package middleware

import (
	"strings"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth"
	autherrors "github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/auth/errors"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/apperror"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/contextutil"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenParser validates a bearer token and returns the user id it carries.
type TokenParser interface {
	Parse(token, kind string) (string, error)
}

// AuthMiddleware authenticates the caller from the Authorization header or
// the access cookie. Only the user id is trusted from the token; services
// resolve role and scope from the store.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie(auth.AccessCookie); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, autherrors.ErrTokenMissing)
			return
		}

		userID, err := tokens.Parse(tokenString, auth.TokenAccess)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set("user_id", userID)
		ctx := contextutil.WithUserID(c.Request.Context(), userID)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, nil).With(zap.String("user_id", userID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
	c.Abort()
}
