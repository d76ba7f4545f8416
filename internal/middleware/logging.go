package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	applog "github.com/yukikurage/stepflow-api/internal/logger"
)

// RequestLogger logs every served request through zap
func RequestLogger(log *applog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		userID, _ := GetUserID(c)
		log.LogHTTPRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			userID,
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000,
		)

		for _, e := range c.Errors {
			log.Errorw("request error", "path", c.Request.URL.Path, "error", e.Err)
		}
	}
}
