package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opensupplyhub/oshub/internal/pkg/logger"
)

// skipLogPaths are probed constantly by infrastructure and would drown
// real traffic in the log.
var skipLogPaths = map[string]bool{
	"/health": true,
	"/ping":   true,
}

// LoggerWith logs one line per completed request through the leveled
// logger. Client errors log at WARN and server errors at ERROR so they
// stand out at the default INFO level.
func LoggerWith(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipLogPaths[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		method := c.Request.Method
		ip := c.ClientIP()

		// userID is set by the Auth middleware for authenticated routes.
		who := c.GetString("userID")
		if who == "" {
			who = "-"
		}

		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		switch {
		case status >= 500:
			l.Error("%s %s %d %s user=%s ip=%s err=%s",
				method, path, status, latency, who, ip, c.Errors.String())
		case status >= 400:
			l.Warn("%s %s %d %s user=%s ip=%s", method, path, status, latency, who, ip)
		default:
			l.Info("%s %s %d %s user=%s ip=%s", method, path, status, latency, who, ip)
		}
	}
}
