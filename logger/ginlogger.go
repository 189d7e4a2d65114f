package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestOptions configures GinLoggerWith.
type RequestOptions struct {
	// Logger defaults to the global logger.
	Logger *zerolog.Logger
	// SkipPaths are not logged when they answer 2xx (health checks, scrapes).
	SkipPaths []string
}

// ErrorLogger answers with the collected gin errors as JSON when the handler
// did not write a response itself.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		c.JSON(http.StatusInternalServerError, c.Errors.JSON())
	}
}

// GinLogger logs every request except health and metrics polling.
func GinLogger() gin.HandlerFunc {
	return GinLoggerWith(RequestOptions{SkipPaths: []string{"/health", "/metrics"}})
}

// GinLoggerWith logs one line per request with the htmx headers and the
// console resource. Request and response bodies are never logged since
// dialog forms carry passwords.
func GinLoggerWith(opt RequestOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		z := opt.Logger
		if z == nil {
			z = GetLogger()
		}
		if z.GetLevel() == zerolog.Disabled {
			c.Next()
			return
		}

		begin := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		if status < 300 && slices.Contains(opt.SkipPaths, c.Request.URL.Path) {
			return
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = z.Error()
		case status >= 400:
			event = z.Warn()
		default:
			event = z.Info()
		}

		event.Str("client_ip", c.ClientIP()).
			Str(StrMethod, c.Request.Method).
			Str("path", path).
			Int("status_code", status).
			Dur("elapsed", time.Since(begin))
		if res := c.Param("resource"); res != "" {
			event.Str(StrResource, res)
		}
		if c.GetHeader("HX-Request") == "true" {
			event.Bool("htmx", true)
		}
		if v := c.GetHeader("HX-Target"); v != "" {
			event.Str("hx_target", v)
		}
		if v := c.Writer.Header().Get("HX-Trigger"); v != "" {
			event.Str("hx_trigger", v)
		}
		if n := c.Writer.Size(); n > 0 {
			event.Int("data_length", n)
		}

		msg := c.Errors.String()
		if msg == "" {
			msg = "Request"
		}
		event.Msg(msg)
	}
}
