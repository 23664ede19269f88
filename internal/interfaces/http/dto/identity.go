package dto

import (
	"time"

	"prompt-deck-api/internal/domain/entity"
)

// RegisterRequest 登记请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	DOB      string `json:"dob" binding:"required"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// IdentityDTO 身份
type IdentityDTO struct {
	Username     string    `json:"username"`
	Address      string    `json:"address"`
	DOB          string    `json:"dob"`
	RegisteredAt time.Time `json:"registered_at"`
}

// LoginResponse 登录结果
type LoginResponse struct {
	Identity        *IdentityDTO `json:"identity"`
	ExportResumable bool         `json:"export_resumable"`
}

// LogoutResponse 登出结果
type LogoutResponse struct {
	Terminated bool            `json:"terminated"`
	State      *ViewerStateDTO `json:"state"`
}

// ToIdentityDTO 转换身份，不含密码散列
func ToIdentityDTO(id *entity.Identity) *IdentityDTO {
	if id == nil {
		return nil
	}
	return &IdentityDTO{
		Username:     id.Username,
		Address:      id.Address,
		DOB:          id.DOB,
		RegisteredAt: id.RegisteredAt,
	}
}
