package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceMiddleware attaches a request trace ID, honoring one supplied by
// an upstream proxy via X-Trace-ID.
func TraceMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		traceID := ctx.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx.Set("trace_id", traceID)
		ctx.Header("X-Trace-ID", traceID)

		ctx.Next()
	}
}
