package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKeyUserID = "user_id"

// ContextUserIDKey is the gin context key under which RequireSession stores
// the authenticated user id for downstream handlers.
const ContextUserIDKey = "auth.userID"

// RequireSession returns the session gate: it lets a request through only if
// the session carries an authenticated user id, and never mutates session
// state. Unauthenticated requests are rejected with 401 and no body.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// currentUserID reads the authenticated user id from the session. The session
// codec may hand back a widened numeric type, so a few are accepted.
func currentUserID(c *gin.Context) (int64, bool) {
	session := sessions.Default(c)
	switch v := session.Get(sessionKeyUserID).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// requestLogger tags every request with an id and logs one line on completion.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
