package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"prompt-deck-api/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
)

// RequestID 请求 ID 注入中间件
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		ctx := logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// WorkspaceContext 将路由中的工作区 ID 注入日志上下文
func WorkspaceContext(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if wid := c.Param(param); wid != "" {
			ctx := logger.WithContext(c.Request.Context(), logger.WorkspaceIDKey, wid)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
