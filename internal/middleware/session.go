package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/oggyb/cinemood/internal/db"
	"github.com/oggyb/cinemood/internal/utils/response"
)

const sessionKey = "db_session"

// DBSession acquires one database session per request from provider and
// releases it when the handler chain returns, on success and failure alike.
// The request context is replaced by the session's, so statements started
// with c.Request.Context() stop once the session is released.
func DBSession(provider db.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, release, err := provider.Acquire(c.Request.Context())
		if err != nil {
			response.Abort(c, err)
			return
		}
		defer release()

		// repositories run on c.Request.Context()
		c.Request = c.Request.WithContext(sess.Statement.Context)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// Session returns the request-scoped session stored by DBSession.
func Session(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*gorm.DB); ok {
			return sess
		}
	}
	panic("middleware: DBSession is not installed")
}
