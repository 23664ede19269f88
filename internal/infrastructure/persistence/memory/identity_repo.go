// Package memory 提供进程内的仓储实现
package memory

import (
	"context"
	"sync"

	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/domain/repository"
)

// IdentityRepository 进程内身份登记表，重启即丢失
type IdentityRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.Identity
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)

// NewIdentityRepository 创建进程内身份登记表
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{records: make(map[string]*entity.Identity)}
}

func (r *IdentityRepository) Create(_ context.Context, identity *entity.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[identity.Username]; ok {
		return entity.ErrDuplicateUsername
	}
	r.records[identity.Username] = identity.Clone()
	return nil
}

func (r *IdentityRepository) GetByUsername(_ context.Context, username string) (*entity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.records[username]
	if !ok {
		return nil, entity.ErrIdentityNotFound
	}
	return id.Clone(), nil
}

func (r *IdentityRepository) Ping(context.Context) error {
	return nil
}
