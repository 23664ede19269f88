package entity

import "errors"

// 领域错误，调用方通过 errors.Is 判断
var (
	// ErrInvalidRequest 请求参数不合法（空主题、页数越界、缺少字段）
	ErrInvalidRequest = errors.New("invalid request")

	// ErrContentGeneration 结构化内容生成失败（传输失败、无法解析、页数不符）
	ErrContentGeneration = errors.New("content generation failed")

	// ErrGenerationCancelled 生成过程被取消
	ErrGenerationCancelled = errors.New("generation cancelled")

	// ErrGenerationInFlight 同一工作区已有生成在进行
	ErrGenerationInFlight = errors.New("generation already in flight")

	// ErrInvalidTransition 当前阶段不允许该操作
	ErrInvalidTransition = errors.New("invalid viewer transition")

	// ErrDuplicateUsername 用户名已被登记
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrInvalidCredentials 用户名或密码不匹配
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIdentityNotFound 登记表中不存在该身份
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityRequired 操作需要先建立身份
	ErrIdentityRequired = errors.New("identity required")

	// ErrUnlockRequired 请求页数超过免费档位
	ErrUnlockRequired = errors.New("slide count requires unlock")

	// ErrWorkspaceNotFound 工作区不存在或已过期
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrWorkspaceLimit 工作区数量已达上限
	ErrWorkspaceLimit = errors.New("workspace limit reached")
)
