// Package session 提供内存会话管理（带定时过期清理）
package session

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// 会话默认保留时长（15分钟），到期后由清理任务删除
	DefaultTTL = 15 * time.Minute
	// 默认清理间隔
	DefaultSweepInterval = 15 * time.Minute
)

// Manager 会话管理器
// 所有会话驻留内存，不做持久化；按创建时间定期过期
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session 会话状态
// ThreadID 一经创建在会话生命周期内复用；
// LastQuery/LastAnswer 同时非空时才能生成报告
type Session struct {
	Key        string
	ThreadID   string
	LastQuery  string
	LastAnswer string
	CreatedAt  time.Time
}

// NewManager 创建会话管理器
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate 获取或创建会话（幂等）
func (m *Manager) GetOrCreate(key string) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 双重检查，避免并发创建覆盖
	if sess, ok := m.sessions[key]; ok {
		return sess
	}

	sess = &Session{
		Key:       key,
		CreatedAt: time.Now(),
	}
	m.sessions[key] = sess
	return sess
}

// SetThreadID 绑定会话的对话线程（仅首次生效）
func (m *Manager) SetThreadID(key, threadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key]
	if !ok || sess.ThreadID != "" {
		return
	}
	sess.ThreadID = threadID
}

// ThreadID 获取会话绑定的线程
func (m *Manager) ThreadID(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if sess, ok := m.sessions[key]; ok {
		return sess.ThreadID
	}
	return ""
}

// SetAnalysis 记录最近一次研究查询及其回答
func (m *Manager) SetAnalysis(key, query, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[key]; ok {
		sess.LastQuery = query
		sess.LastAnswer = answer
	}
}

// Analysis 获取最近一次分析结果
// ok 为 false 表示该会话尚无完整的查询/回答对
func (m *Manager) Analysis(key string) (query, answer string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[key]
	if !exists || sess.LastQuery == "" || sess.LastAnswer == "" {
		return "", "", false
	}
	return sess.LastQuery, sess.LastAnswer, true
}

// Len 当前会话数量
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep 删除创建时间早于 now-ttl 的会话（不论是否活跃）
// 返回删除数量
func (m *Manager) Sweep(now time.Time, ttl time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := now.Add(-ttl)
	for key, sess := range m.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// StartSweeper 启动定时清理任务，ctx 取消后退出
func (m *Manager) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := m.Sweep(now, ttl); n > 0 {
					log.Printf("session sweep: removed %d expired sessions", n)
				}
			}
		}
	}()
}
