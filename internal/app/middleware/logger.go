package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// RequestLogger 记录每个请求的访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = applog.L().Error()
		case status >= http.StatusBadRequest:
			event = applog.L().Warn()
		default:
			event = applog.L().Info()
		}
		if accountID, ok := c.Get(ContextAccountID); ok {
			event = event.Interface("account_id", accountID)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery 捕获panic并返回500响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				applog.L().Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.Fail(c, code.ErrUnknown, nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
