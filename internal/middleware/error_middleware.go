package middleware

import (
	"net/http"

	"keepsake/internal/transport/httpdto"
	"keepsake/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers panics into a 500 envelope so one bad request
// never takes the process down.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l.Errorf("panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					httpdto.NewErrorResponse("internal server error", "INTERNAL"))
			}
		}()
		c.Next()
	}
}
