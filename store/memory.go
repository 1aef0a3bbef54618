// Package store 提供 core.KeyValueStore 的两种实现：进程内的 MemoryStore 与 RedisStore。
package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/rushteam/moodbite/core"
)

// DefaultSweepInterval 是 MemoryStore 清理过期 key 的周期。
const DefaultSweepInterval = 10 * time.Second

// MemoryStore 是进程内存储，用于测试、本地开发与单机部署，重启后数据丢失。
// 普通 key 支持 TTL；Hash 不过期，存放在独立的 map 中（同名的普通 key 与 Hash 互不影响），
// Delete 会同时删除同名的普通 key 与 Hash。
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]memValue
	hashes map[string]map[string][]byte

	stop     chan struct{}
	stopOnce sync.Once
}

type memValue struct {
	data     []byte
	deadline time.Time // 零值表示不过期
}

func (v memValue) alive(now time.Time) bool {
	return v.deadline.IsZero() || now.Before(v.deadline)
}

// NewMemoryStore 创建存储并启动后台清理，用完需 Close。
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		values: make(map[string]memValue),
		hashes: make(map[string]map[string][]byte),
		stop:   make(chan struct{}),
	}
	go s.sweep(DefaultSweepInterval)
	return s
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	if !ok || !v.alive(time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return bytes.Clone(v.data), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	v := memValue{data: bytes.Clone(value)}
	if len(ttl) > 0 && ttl[0] > 0 {
		v.deadline = time.Now().Add(time.Duration(ttl[0]) * time.Second)
	}
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	delete(s.hashes, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	now := time.Now()
	out := make(map[string][]byte, len(keys))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range keys {
		if v, ok := s.values[k]; ok && v.alive(now) {
			out[k] = bytes.Clone(v.data)
		}
	}
	return out, nil
}

func (s *MemoryStore) HSet(ctx context.Context, key, field string, value []byte) error {
	return s.HSetMany(ctx, key, map[string][]byte{field: value})
}

// HSetMany 一次写入多个字段。
func (s *MemoryStore) HSetMany(_ context.Context, key string, fields map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hashes[key]
	if h == nil {
		h = make(map[string][]byte, len(fields))
		s.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = bytes.Clone(v)
	}
	return nil
}

func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.hashes[key]
	out := make(map[string][]byte, len(h))
	for f, v := range h {
		out[f] = bytes.Clone(v)
	}
	return out, nil
}

// Close 停止后台清理，可重复调用。
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.mu.Lock()
			for k, v := range s.values {
				if !v.alive(now) {
					delete(s.values, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

var _ core.KeyValueStore = (*MemoryStore)(nil)
