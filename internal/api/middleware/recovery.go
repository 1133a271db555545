package middleware

import (
	"ViewCounter/internal/pkg/response"
	"ViewCounter/internal/service"
	"fmt"
	log "log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// RecoveryMiddleware panic 统一转成 500，不把内部信息返回给调用方
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorContext(c.Request.Context(), "panic recovered",
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				response.Error(c, service.UnExpectedError)
			}
		}()
		c.Next()
	}
}
