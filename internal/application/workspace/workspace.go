// Package workspace 管理每个 UI 客户端独占的工作区
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"prompt-deck-api/internal/application/access"
	"prompt-deck-api/internal/application/deck"
	"prompt-deck-api/internal/application/export"
	"prompt-deck-api/internal/application/identity"
	"prompt-deck-api/internal/application/viewer"
	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/pkg/logger"
)

// DeckGenerator 执行一次完整的幻灯片生成
type DeckGenerator interface {
	Generate(ctx context.Context, req entity.DeckRequest, hooks deck.Hooks) (*entity.Deck, error)
}

// Authenticator 校验身份
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*entity.Identity, error)
}

// Workspace 一个 UI 客户端的全部会话状态
// 持有唯一的查看器状态机、会话上下文与准入控制
type Workspace struct {
	ID        string
	CreatedAt time.Time

	viewer  *viewer.StateMachine
	session *identity.Session
	gate    *access.Gate

	generator DeckGenerator
	limits    deck.Limits
	baseCtx   context.Context
	now       func() time.Time

	// mu 保护会话变更、导出快照与生成句柄
	mu         sync.Mutex
	cancel     context.CancelFunc
	lastActive time.Time
	closed     bool
	wg         sync.WaitGroup
}

func newWorkspace(id string, deps Deps, baseCtx context.Context, now func() time.Time) *Workspace {
	session := identity.NewSession()
	ts := now()
	return &Workspace{
		ID:         id,
		CreatedAt:  ts,
		viewer:     viewer.NewStateMachine(),
		session:    session,
		gate:       access.NewGate(deps.FreeMaxSlides, deps.Limits.MaxSlides, session),
		generator:  deps.Generator,
		limits:     deps.Limits,
		baseCtx:    baseCtx,
		now:        now,
		lastActive: ts,
	}
}

// State 查看器状态快照
func (w *Workspace) State() entity.ViewerState {
	return w.viewer.Snapshot()
}

// Subscribe 订阅查看器状态
func (w *Workspace) Subscribe(buf int) (<-chan entity.ViewerState, func()) {
	return w.viewer.Subscribe(buf)
}

// Gate 准入控制
func (w *Workspace) Gate() *access.Gate {
	return w.gate
}

// Generate 校验档位后启动后台生成，立即返回生成代号
func (w *Workspace) Generate(req entity.DeckRequest) (uint64, error) {
	req = req.Normalize()
	if err := req.Validate(w.limits.MinSlides, w.limits.MaxSlides); err != nil {
		return 0, err
	}
	if w.gate.CanRequestSlideCount(req.SlideCount) != access.Allowed {
		return 0, fmt.Errorf("%w: %d slides, ceiling is %d", entity.ErrUnlockRequired, req.SlideCount, w.gate.Ceiling())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, entity.ErrWorkspaceNotFound
	}

	gen, err := w.viewer.Start(req.Topic)
	if err != nil {
		return 0, err
	}
	w.lastActive = w.now()

	ctx, cancel := context.WithCancel(w.baseCtx)
	ctx = logger.WithContext(ctx, logger.WorkspaceIDKey, w.ID)
	ctx = logger.WithContext(ctx, logger.GenerationIDKey, strconv.FormatUint(gen, 10))
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx, cancel, gen, req)
	return gen, nil
}

func (w *Workspace) run(ctx context.Context, cancel context.CancelFunc, gen uint64, req entity.DeckRequest) {
	defer w.wg.Done()
	defer cancel()

	hooks := deck.Hooks{
		Progress: func(msg string) { w.viewer.Progress(gen, msg) },
	}

	d, err := w.generator.Generate(ctx, req, hooks)
	switch {
	case err == nil:
		if !w.viewer.Succeed(gen, d) {
			logger.Info(ctx, "stale generation result dropped")
		}
	case errors.Is(err, entity.ErrGenerationCancelled):
		w.viewer.Fail(gen, entity.FailureCancelled)
	default:
		logger.Warn(ctx, "deck generation failed", "error", err.Error())
		w.viewer.Fail(gen, entity.FailureContentGeneration)
	}

	w.mu.Lock()
	w.lastActive = w.now()
	w.mu.Unlock()
}

// Next 下一页
func (w *Workspace) Next() (entity.ViewerState, error) {
	w.touch()
	return w.viewer.Next()
}

// Prev 上一页
func (w *Workspace) Prev() (entity.ViewerState, error) {
	w.touch()
	return w.viewer.Prev()
}

// ToggleFullscreen 切换全屏
func (w *Workspace) ToggleFullscreen() (entity.ViewerState, error) {
	w.touch()
	return w.viewer.ToggleFullscreen()
}

// Exit 退出查看，回到 landing
func (w *Workspace) Exit() (entity.ViewerState, error) {
	w.touch()
	return w.viewer.Exit()
}

// Unlock 解锁高页数档位
func (w *Workspace) Unlock() {
	w.touch()
	w.gate.Unlock()
}

// Identity 当前会话身份
func (w *Workspace) Identity() *entity.Identity {
	return w.session.Current()
}

// Login 校验身份并建立会话
// exportResumable 表示此前有因缺少身份而挂起的导出
func (w *Workspace) Login(ctx context.Context, auth Authenticator, username, password string) (id *entity.Identity, exportResumable bool, err error) {
	id, err = auth.Authenticate(ctx, username, password)
	if err != nil {
		return nil, false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Establish(id)
	w.lastActive = w.now()
	return id, w.gate.TakeDeferredExport(), nil
}

// Logout 结束会话，取消进行中的生成并回到 landing
func (w *Workspace) Logout() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	had := w.session.Terminate()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.viewer.Reset()
	w.lastActive = w.now()
	return had
}

// Export 在同一把锁下读取幻灯片与身份并渲染
// 未建立身份时记录挂起的导出并返回 entity.ErrIdentityRequired
func (w *Workspace) Export() (*export.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastActive = w.now()

	if w.gate.CanExportDeck() != access.Allowed {
		w.gate.DeferExport()
		return nil, entity.ErrIdentityRequired
	}
	state := w.viewer.Snapshot()
	if state.Phase != entity.PhaseViewing {
		return nil, export.ErrNoDeck
	}
	return export.Render(export.Snapshot{
		Deck:     state.Deck,
		Identity: w.session.Current(),
	})
}

// Close 取消进行中的生成，之后不可再启动生成
func (w *Workspace) Close() {
	w.mu.Lock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
}

// Wait 等待后台生成全部结束
func (w *Workspace) Wait() {
	w.wg.Wait()
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastActive = w.now()
	w.mu.Unlock()
}

// idleSince 返回最近活跃时间，生成进行中视为活跃
func (w *Workspace) idleSince() (time.Time, bool) {
	if w.viewer.Snapshot().Phase == entity.PhaseGenerating {
		return time.Time{}, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive, true
}
