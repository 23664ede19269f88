package identity

import (
	"sync"

	"prompt-deck-api/internal/domain/entity"
)

// Session 单个工作区的会话上下文
type Session struct {
	mu       sync.RWMutex
	identity *entity.Identity
}

// NewSession 创建空会话
func NewSession() *Session {
	return &Session{}
}

// Establish 建立会话，覆盖已有身份
func (s *Session) Establish(id *entity.Identity) {
	s.mu.Lock()
	s.identity = id.Clone()
	s.mu.Unlock()
}

// Current 返回当前身份副本，未建立时返回 nil
func (s *Session) Current() *entity.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

// Terminate 结束会话，返回之前是否存在身份
func (s *Session) Terminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	had := s.identity != nil
	s.identity = nil
	return had
}
