// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"prompt-deck-api/internal/application/workspace"
	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/interfaces/http/dto"
	"prompt-deck-api/pkg/logger"
)

// WorkspaceParam 路由中的工作区 ID 参数
const WorkspaceParam = "wid"

// WorkspaceHandler 工作区处理器
type WorkspaceHandler struct {
	registry *workspace.Registry
}

// NewWorkspaceHandler 创建工作区处理器
func NewWorkspaceHandler(registry *workspace.Registry) *WorkspaceHandler {
	return &WorkspaceHandler{registry: registry}
}

// lookupWorkspace 按路由参数查找工作区，失败时已写入响应
func lookupWorkspace(c *gin.Context, registry *workspace.Registry) (*workspace.Workspace, bool) {
	ws, err := registry.Get(c.Param(WorkspaceParam))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ws, true
}

func toWorkspaceResponse(ws *workspace.Workspace) *dto.WorkspaceResponse {
	return &dto.WorkspaceResponse{
		ID:           ws.ID,
		CreatedAt:    ws.CreatedAt,
		Unlocked:     ws.Gate().Unlocked(),
		SlideCeiling: ws.Gate().Ceiling(),
		HasIdentity:  ws.Identity() != nil,
		State:        dto.ToViewerStateDTO(ws.State()),
	}
}

// Create 创建工作区
// @Summary 创建工作区
// @Tags Workspaces
// @Produce json
// @Success 201 {object} dto.Response[dto.WorkspaceResponse]
// @Router /v1/workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	ws, err := h.registry.Create()
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "workspace created", "workspace_id", ws.ID)
	dto.Created(c, toWorkspaceResponse(ws))
}

// Get 获取工作区与查看器状态
// @Summary 获取工作区
// @Tags Workspaces
// @Produce json
// @Param wid path string true "工作区 ID"
// @Success 200 {object} dto.Response[dto.WorkspaceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid} [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	dto.Success(c, toWorkspaceResponse(ws))
}

// Close 关闭工作区，取消进行中的生成
// @Summary 关闭工作区
// @Tags Workspaces
// @Param wid path string true "工作区 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid} [delete]
func (h *WorkspaceHandler) Close(c *gin.Context) {
	if err := h.registry.Close(c.Param(WorkspaceParam)); err != nil {
		respondError(c, err)
		return
	}
	dto.NoContent(c)
}

// Generate 启动幻灯片生成
// @Summary 启动生成
// @Description 异步生成，进度通过 events 推送
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param wid path string true "工作区 ID"
// @Param body body dto.GenerateRequest true "主题与页数"
// @Success 202 {object} dto.Response[dto.GenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid}/generate [post]
func (h *WorkspaceHandler) Generate(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	gen, err := ws.Generate(req.ToDeckRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "deck generation started",
		"workspace_id", ws.ID,
		"generation", gen,
		"slide_count", req.SlideCount,
	)
	dto.Accepted(c, &dto.GenerateResponse{
		Generation: gen,
		State:      dto.ToViewerStateDTO(ws.State()),
	})
}

// Unlock 解锁 20 页档位
// @Summary 解锁高页数档位
// @Tags Workspaces
// @Produce json
// @Param wid path string true "工作区 ID"
// @Success 200 {object} dto.Response[dto.UnlockResponse]
// @Router /v1/workspaces/{wid}/unlock [post]
func (h *WorkspaceHandler) Unlock(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	ws.Unlock()
	dto.Success(c, &dto.UnlockResponse{
		Unlocked:     true,
		SlideCeiling: ws.Gate().Ceiling(),
	})
}

// Next 下一页
func (h *WorkspaceHandler) Next(c *gin.Context) {
	h.navigate(c, (*workspace.Workspace).Next)
}

// Prev 上一页
func (h *WorkspaceHandler) Prev(c *gin.Context) {
	h.navigate(c, (*workspace.Workspace).Prev)
}

// Fullscreen 切换全屏
func (h *WorkspaceHandler) Fullscreen(c *gin.Context) {
	h.navigate(c, (*workspace.Workspace).ToggleFullscreen)
}

// Exit 退出查看
func (h *WorkspaceHandler) Exit(c *gin.Context) {
	h.navigate(c, (*workspace.Workspace).Exit)
}

func (h *WorkspaceHandler) navigate(c *gin.Context, op func(*workspace.Workspace) (entity.ViewerState, error)) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	state, err := op(ws)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, dto.ToViewerStateDTO(state))
}

// Export 导出可打印文档
// @Summary 导出幻灯片
// @Description 需要已建立身份；否则返回 401 并记录挂起的导出
// @Tags Workspaces
// @Produce html
// @Param wid path string true "工作区 ID"
// @Success 200 {string} string "HTML 文档"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid}/export [post]
func (h *WorkspaceHandler) Export(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	doc, err := ws.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("X-Deck-Pages", strconv.Itoa(doc.Pages))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Events 以 SSE 推送查看器状态
// @Summary 订阅状态
// @Tags Workspaces
// @Produce text/event-stream
// @Param wid path string true "工作区 ID"
// @Success 200 "SSE stream"
// @Router /v1/workspaces/{wid}/events [get]
func (h *WorkspaceHandler) Events(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	states, cancel := ws.Subscribe(16)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case s, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", dto.ToViewerStateDTO(s))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
