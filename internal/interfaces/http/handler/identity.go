package handler

import (
	"github.com/gin-gonic/gin"

	"prompt-deck-api/internal/application/identity"
	"prompt-deck-api/internal/application/workspace"
	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/interfaces/http/dto"
	"prompt-deck-api/pkg/logger"
)

// IdentityHandler 身份处理器
type IdentityHandler struct {
	registry *workspace.Registry
	service  *identity.Service
}

// NewIdentityHandler 创建身份处理器
func NewIdentityHandler(registry *workspace.Registry, service *identity.Service) *IdentityHandler {
	return &IdentityHandler{registry: registry, service: service}
}

// Register 登记身份，不会自动登录
// @Summary 登记身份
// @Tags Identity
// @Accept json
// @Produce json
// @Param wid path string true "工作区 ID"
// @Param body body dto.RegisterRequest true "登记信息"
// @Success 201 {object} dto.Response[dto.IdentityDTO]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid}/identity/register [post]
func (h *IdentityHandler) Register(c *gin.Context) {
	if _, ok := lookupWorkspace(c, h.registry); !ok {
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	id, err := h.service.Register(c.Request.Context(), req.Username, req.Password, req.DOB)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, dto.ToIdentityDTO(id))
}

// Login 校验身份并建立会话
// @Summary 登录
// @Tags Identity
// @Accept json
// @Produce json
// @Param wid path string true "工作区 ID"
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.LoginResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid}/identity/login [post]
func (h *IdentityHandler) Login(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	id, resumable, err := ws.Login(c.Request.Context(), h.service, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "identity session established",
		"workspace_id", ws.ID,
		"address", id.Address,
	)
	dto.Success(c, &dto.LoginResponse{
		Identity:        dto.ToIdentityDTO(id),
		ExportResumable: resumable,
	})
}

// Current 当前会话身份
// @Summary 当前身份
// @Tags Identity
// @Produce json
// @Param wid path string true "工作区 ID"
// @Success 200 {object} dto.Response[dto.IdentityDTO]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/workspaces/{wid}/identity [get]
func (h *IdentityHandler) Current(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	id := ws.Identity()
	if id == nil {
		respondError(c, entity.ErrIdentityRequired)
		return
	}
	dto.Success(c, dto.ToIdentityDTO(id))
}

// Logout 结束会话，查看器回到 landing
// @Summary 登出
// @Tags Identity
// @Produce json
// @Param wid path string true "工作区 ID"
// @Success 200 {object} dto.Response[dto.LogoutResponse]
// @Router /v1/workspaces/{wid}/identity [delete]
func (h *IdentityHandler) Logout(c *gin.Context) {
	ws, ok := lookupWorkspace(c, h.registry)
	if !ok {
		return
	}
	terminated := ws.Logout()
	dto.Success(c, &dto.LogoutResponse{
		Terminated: terminated,
		State:      dto.ToViewerStateDTO(ws.State()),
	})
}
