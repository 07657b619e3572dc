package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/gin-gonic/gin"
)

const requestIDHeader = "X-Request-ID"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Session, error)
}

// RequestLogger tags the request context with a request id and writes one access log line.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.WithRequestID(c.Request.Context(), c.GetHeader(requestIDHeader))
		rqID := utils.GetRequestIDFromCtx(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, rqID)

		start := time.Now()
		c.Next()

		slog.Info(
			"http request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// RequireSession resolves the bearer token to a session and stores it in the request context.
func RequireSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			Error(c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				Error(c, http.StatusUnauthorized, "session expired or revoked", nil)
			} else {
				respondErr(c, err)
			}
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

func sessionFromCtx(c *gin.Context) (model.Session, bool) {
	return utils.GetSessionFromCtx(c.Request.Context())
}
