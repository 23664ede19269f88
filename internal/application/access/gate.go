// Package access 控制页数档位与导出的准入
package access

import (
	"sync"

	"prompt-deck-api/internal/domain/entity"
)

// Decision 准入结果
type Decision string

const (
	Allowed          Decision = "allowed"
	RequiresUnlock   Decision = "requires_unlock"
	RequiresIdentity Decision = "requires_identity"
	OutOfRange       Decision = "out_of_range"
)

// SessionReader 读取当前会话身份
type SessionReader interface {
	Current() *entity.Identity
}

// Gate 单个工作区的准入控制
type Gate struct {
	freeMax int
	max     int
	session SessionReader

	mu             sync.Mutex
	unlocked       bool
	deferredExport bool
}

// NewGate 创建准入控制
// freeMax 为免费档上限，max 为解锁后的上限
func NewGate(freeMax, max int, session SessionReader) *Gate {
	return &Gate{freeMax: freeMax, max: max, session: session}
}

// CanRequestSlideCount 判断是否允许请求 n 页
// 超过 max 的请求交由请求校验处理，这里返回 OutOfRange
func (g *Gate) CanRequestSlideCount(n int) Decision {
	if n > g.max {
		return OutOfRange
	}
	if n <= g.freeMax {
		return Allowed
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unlocked {
		return Allowed
	}
	return RequiresUnlock
}

// Unlock 解锁高页数档位
func (g *Gate) Unlock() {
	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
}

// Unlocked 是否已解锁
func (g *Gate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// Ceiling 当前可请求的最大页数
func (g *Gate) Ceiling() int {
	if g.Unlocked() {
		return g.max
	}
	return g.freeMax
}

// CanExportDeck 导出需要已建立身份
func (g *Gate) CanExportDeck() Decision {
	if g.session != nil && g.session.Current() != nil {
		return Allowed
	}
	return RequiresIdentity
}

// DeferExport 记录一次因缺少身份而挂起的导出
func (g *Gate) DeferExport() {
	g.mu.Lock()
	g.deferredExport = true
	g.mu.Unlock()
}

// TakeDeferredExport 取出并清除挂起的导出
func (g *Gate) TakeDeferredExport() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	pending := g.deferredExport
	g.deferredExport = false
	return pending
}
