package router

import (
	"github.com/gin-gonic/gin"

	"prompt-deck-api/internal/interfaces/http/handler"
	"prompt-deck-api/internal/interfaces/http/middleware"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	workspaceHandler *handler.WorkspaceHandler,
	identityHandler *handler.IdentityHandler,
	generateLimit gin.HandlerFunc,
) {
	workspaces := v1.Group("/workspaces")
	{
		workspaces.POST("", workspaceHandler.Create)

		ws := workspaces.Group("/:"+handler.WorkspaceParam, middleware.WorkspaceContext(handler.WorkspaceParam))
		{
			ws.GET("", workspaceHandler.Get)
			ws.DELETE("", workspaceHandler.Close)
			ws.GET("/events", workspaceHandler.Events)

			// 生成与档位
			ws.POST("/generate", generateLimit, workspaceHandler.Generate)
			ws.POST("/unlock", workspaceHandler.Unlock)

			// 查看器导航
			ws.POST("/next", workspaceHandler.Next)
			ws.POST("/prev", workspaceHandler.Prev)
			ws.POST("/fullscreen", workspaceHandler.Fullscreen)
			ws.POST("/exit", workspaceHandler.Exit)

			ws.POST("/export", workspaceHandler.Export)

			// 身份
			ws.POST("/identity/register", identityHandler.Register)
			ws.POST("/identity/login", identityHandler.Login)
			ws.GET("/identity", identityHandler.Current)
			ws.DELETE("/identity", identityHandler.Logout)
		}
	}
}
