package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/milosmac94/finance/data/session"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/utils"
)

type SessionStore interface {
	GetSession(ctx context.Context, token string) (model.Session, error)
}

// Logger mints a request ID, injects it into the request context and logs
// the request boundary with its duration.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rqID := uuid.NewString()
		c.Request = c.Request.WithContext(utils.CtxWithRqID(c.Request.Context(), rqID))

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Int("status", c.Writer.Status()),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)
		}()

		c.Next()
	}
}

// Auth resolves the session token into an authenticated user and puts the
// user ID into the request context. No handler reads ambient login state.
func Auth(sessionStore SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		sess, err := sessionStore.GetSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
				return
			}
			rqID := utils.GetRequestIDFromCtx(c.Request.Context())
			slog.Error("got error from sessionStore.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Request = c.Request.WithContext(utils.CtxWithUserID(c.Request.Context(), sess.UserID))
		c.Set("token", token)

		c.Next()
	}
}

// TokenFromRequest prefers the Authorization header, falling back to the
// session cookie browsers get on login.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	if cookie, err := c.Cookie("session"); err == nil {
		return cookie
	}

	return ""
}
