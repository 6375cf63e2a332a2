package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/newsrec/core"
)

// MemoryStore 是内存实现的 Store + HistoryStore，用于测试/开发/单机部署。
// 支持 TTL（过期时间），但进程重启后数据丢失。
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]*entry
	ttl     map[string]time.Time
	history map[string][]string

	// HistoryMaxLen 限制每个用户保留的历史条数，<= 0 表示不限制
	HistoryMaxLen int

	clean *time.Ticker
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	value []byte
	ttl   *time.Time
}

var (
	_ core.Store        = (*MemoryStore)(nil)
	_ core.HistoryStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:    make(map[string]*entry),
		ttl:     make(map[string]time.Time),
		history: make(map[string][]string),
		clean:   time.NewTicker(10 * time.Second),
		done:    make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.ttl != nil && time.Now().After(*e.ttl) {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.ttl = &expire
		m.ttl[key] = expire
	} else {
		delete(m.ttl, key)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.ttl, key)
	return nil
}

// History 返回用户最近 limit 条阅读历史（最旧在前）。
func (m *MemoryStore) History(_ context.Context, userID string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return tail(m.history[userID], limit), nil
}

// AppendHistory 追加阅读记录，超过 HistoryMaxLen 时丢弃最旧的。
func (m *MemoryStore) AppendHistory(_ context.Context, userID string, newsIDs ...string) error {
	if len(newsIDs) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h := append(m.history[userID], newsIDs...)
	if m.HistoryMaxLen > 0 && len(h) > m.HistoryMaxLen {
		h = append([]string(nil), h[len(h)-m.HistoryMaxLen:]...)
	}
	m.history[userID] = h
	return nil
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.clean.Stop()
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
			m.mu.Lock()
			now := time.Now()
			for k, expire := range m.ttl {
				if now.After(expire) {
					delete(m.data, k)
					delete(m.ttl, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
