// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"prompt-deck-api/internal/domain/entity"
)

// IdentityRepository 身份登记表接口
// 用户名已规范化；重复登记返回 entity.ErrDuplicateUsername，未找到返回 entity.ErrIdentityNotFound
type IdentityRepository interface {
	// Create 登记新身份，用户名唯一
	Create(ctx context.Context, identity *entity.Identity) error

	// GetByUsername 根据规范化用户名获取身份
	GetByUsername(ctx context.Context, username string) (*entity.Identity, error)

	// Ping 检查后端可用性
	Ping(ctx context.Context) error
}
