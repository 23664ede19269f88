package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"prompt-deck-api/internal/application/deck"
	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/pkg/logger"
	"prompt-deck-api/pkg/metrics"
)

// Deps 创建工作区所需的依赖
type Deps struct {
	Generator     DeckGenerator
	Limits        deck.Limits
	FreeMaxSlides int
}

// Options 注册表配置
type Options struct {
	IdleTTL         time.Duration
	JanitorInterval time.Duration
	// MaxWorkspaces 为 0 表示不限制
	MaxWorkspaces int
}

// Registry 工作区注册表
type Registry struct {
	deps    Deps
	opts    Options
	baseCtx context.Context
	now     func() time.Time

	mu    sync.RWMutex
	items map[string]*Workspace
}

// NewRegistry 创建注册表
// baseCtx 取消时所有后台生成随之取消
func NewRegistry(baseCtx context.Context, deps Deps, opts Options) *Registry {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Registry{
		deps:    deps,
		opts:    opts,
		baseCtx: baseCtx,
		now:     time.Now,
		items:   make(map[string]*Workspace),
	}
}

// Create 创建工作区
func (r *Registry) Create() (*Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.MaxWorkspaces > 0 && len(r.items) >= r.opts.MaxWorkspaces {
		return nil, entity.ErrWorkspaceLimit
	}
	ws := newWorkspace(uuid.NewString(), r.deps, r.baseCtx, r.now)
	r.items[ws.ID] = ws
	metrics.ActiveWorkspaces.Set(float64(len(r.items)))
	return ws, nil
}

// Get 获取工作区
func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.RLock()
	ws, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, entity.ErrWorkspaceNotFound
	}
	ws.touch()
	return ws, nil
}

// Close 关闭工作区并取消进行中的生成
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	ws, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	metrics.ActiveWorkspaces.Set(float64(len(r.items)))
	r.mu.Unlock()

	if !ok {
		return entity.ErrWorkspaceNotFound
	}
	ws.Close()
	return nil
}

// Len 当前工作区数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Sweep 关闭空闲超过 IdleTTL 的工作区，返回关闭数量
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	deadline := r.now().Add(-r.opts.IdleTTL)

	r.mu.RLock()
	var expired []string
	for id, ws := range r.items {
		if last, idle := ws.idleSince(); idle && last.Before(deadline) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if r.Close(id) == nil {
			closed++
		}
	}
	return closed
}

// Run 周期性清理空闲工作区，直到 ctx 结束
func (r *Registry) Run(ctx context.Context) {
	interval := r.opts.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Info(ctx, "idle workspaces closed", "count", n, "remaining", r.Len())
			}
		}
	}
}

// Shutdown 关闭全部工作区并等待后台生成退出
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	metrics.ActiveWorkspaces.Set(0)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, ws := range items {
			ws.Close()
		}
		for _, ws := range items {
			ws.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
