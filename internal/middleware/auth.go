package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/auth"
	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/logger"
	"github.com/oggyb/cinemood/internal/utils/response"
)

const userKey = "current_user"

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, sess *gorm.DB, token string) (*db.User, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the resolved user for CurrentUser. Must run after DBSession.
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, err)
			return
		}

		user, err := authn.Authenticate(c.Request.Context(), Session(c), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, err)
			return
		}

		c.Set(userKey, user)
		ctx := logger.WithContext(c.Request.Context(), logger.FromContext(c.Request.Context()).With("user_id", user.ID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *db.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*db.User); ok {
			return u
		}
	}
	return nil
}
