// Package viewer 实现 landing -> generating -> viewing 的查看器状态机
package viewer

import (
	"fmt"
	"strings"
	"sync"

	"prompt-deck-api/internal/domain/entity"
)

// StateMachine 查看器状态机，并发安全
//
// 每次 Start 分配一个新的代号，Succeed/Fail 携带的代号过期时直接丢弃。
type StateMachine struct {
	mu    sync.Mutex
	state entity.ViewerState

	subs   map[int]chan entity.ViewerState
	nextID int
}

// NewStateMachine 创建处于 landing 的状态机
func NewStateMachine() *StateMachine {
	return &StateMachine{
		state: entity.ViewerState{Phase: entity.PhaseLanding},
		subs:  make(map[int]chan entity.ViewerState),
	}
}

// Snapshot 返回当前状态副本
func (m *StateMachine) Snapshot() entity.ViewerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *StateMachine) snapshotLocked() entity.ViewerState {
	s := m.state
	s.Deck = m.state.Deck.Clone()
	return s
}

// Start landing -> generating，返回本次生成的代号
func (m *StateMachine) Start(topic string) (uint64, error) {
	if strings.TrimSpace(topic) == "" {
		return 0, fmt.Errorf("%w: topic is empty", entity.ErrInvalidRequest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state.Phase {
	case entity.PhaseGenerating:
		return 0, entity.ErrGenerationInFlight
	case entity.PhaseViewing:
		return 0, fmt.Errorf("%w: exit the current deck first", entity.ErrInvalidTransition)
	}

	gen := m.state.Generation + 1
	m.state = entity.ViewerState{
		Phase:      entity.PhaseGenerating,
		Generation: gen,
	}
	m.publishLocked()
	return gen, nil
}

// Progress 更新进度提示，代号过期或不在 generating 时忽略
func (m *StateMachine) Progress(gen uint64, msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(gen) {
		return false
	}
	m.state.ProgressMessage = msg
	m.publishLocked()
	return true
}

// Succeed generating -> viewing，从第一页开始，非全屏
func (m *StateMachine) Succeed(gen uint64, deck *entity.Deck) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(gen) || deck.Len() == 0 {
		return false
	}
	m.state = entity.ViewerState{
		Phase:      entity.PhaseViewing,
		Deck:       deck.Clone(),
		Generation: gen,
	}
	m.publishLocked()
	return true
}

// Fail generating -> landing，记录失败类型
func (m *StateMachine) Fail(gen uint64, kind entity.FailureKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.currentLocked(gen) {
		return false
	}
	m.state = entity.ViewerState{
		Phase:       entity.PhaseLanding,
		LastFailure: kind,
		Generation:  gen,
	}
	m.publishLocked()
	return true
}

func (m *StateMachine) currentLocked(gen uint64) bool {
	return m.state.Phase == entity.PhaseGenerating && m.state.Generation == gen
}

// Next 下一页，末页不回绕
func (m *StateMachine) Next() (entity.ViewerState, error) {
	return m.navigate(func(s *entity.ViewerState) {
		if s.CurrentSlideIndex < s.Deck.Len()-1 {
			s.CurrentSlideIndex++
		}
	})
}

// Prev 上一页，首页不回绕
func (m *StateMachine) Prev() (entity.ViewerState, error) {
	return m.navigate(func(s *entity.ViewerState) {
		if s.CurrentSlideIndex > 0 {
			s.CurrentSlideIndex--
		}
	})
}

// ToggleFullscreen 切换全屏
func (m *StateMachine) ToggleFullscreen() (entity.ViewerState, error) {
	return m.navigate(func(s *entity.ViewerState) {
		s.IsFullscreen = !s.IsFullscreen
	})
}

// Exit viewing -> landing，清空幻灯片与页码
func (m *StateMachine) Exit() (entity.ViewerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != entity.PhaseViewing {
		return m.snapshotLocked(), fmt.Errorf("%w: exit requires viewing, phase is %s", entity.ErrInvalidTransition, m.state.Phase)
	}
	m.state = entity.ViewerState{
		Phase:      entity.PhaseLanding,
		Generation: m.state.Generation,
	}
	m.publishLocked()
	return m.snapshotLocked(), nil
}

// Reset 强制回到 landing，进行中的生成结果将被丢弃
func (m *StateMachine) Reset() entity.ViewerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = entity.ViewerState{
		Phase:      entity.PhaseLanding,
		Generation: m.state.Generation + 1,
	}
	m.publishLocked()
	return m.snapshotLocked()
}

func (m *StateMachine) navigate(apply func(s *entity.ViewerState)) (entity.ViewerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != entity.PhaseViewing {
		return m.snapshotLocked(), fmt.Errorf("%w: phase is %s", entity.ErrInvalidTransition, m.state.Phase)
	}
	before := m.state
	apply(&m.state)
	if before.CurrentSlideIndex != m.state.CurrentSlideIndex || before.IsFullscreen != m.state.IsFullscreen {
		m.publishLocked()
	}
	return m.snapshotLocked(), nil
}

// Subscribe 订阅状态快照，订阅时立即推送一次当前状态
// 订阅方消费过慢时丢弃最旧的快照
func (m *StateMachine) Subscribe(buf int) (<-chan entity.ViewerState, func()) {
	if buf <= 0 {
		buf = 1
	}
	ch := make(chan entity.ViewerState, buf)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (m *StateMachine) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
