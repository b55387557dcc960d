package kv

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryEntry 带可选过期时间的值.
type memoryEntry struct {
	data      []byte
	expiresAt time.Time // 零值表示永不过期
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryKV 进程内 KV 实现，开发与测试用.键级 TTL 在读取时懒清理.
type MemoryKV struct {
	data sync.Map
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}

// NewMemoryKV 创建内存 KV 实例，不需要配置.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	return &MemoryKV{}, nil
}

// Get 获取键的值，返回副本.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := m.load(key)
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(entry.data))
	copy(out, entry.data)

	return out, nil
}

// Set 设置键的值，存入副本.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	entry := &memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.data.Store(key, entry)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	return ok, nil
}

// Keys 列出有效键.pattern 只支持精确匹配，空串与 * 匹配全部.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	now := time.Now()
	keys := make([]string, 0)

	m.data.Range(func(key, value any) bool {
		k, kok := key.(string)
		entry, eok := value.(*memoryEntry)
		if !kok || !eok {
			return true
		}

		if entry.expired(now) {
			m.data.Delete(k)
			return true
		}

		if pattern == "" || pattern == "*" || k == pattern {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// Close 内存实现无需操作.
func (m *MemoryKV) Close() error {
	return nil
}

func (m *MemoryKV) load(key string) (*memoryEntry, bool) {
	value, ok := m.data.Load(key)
	if !ok {
		return nil, false
	}

	entry, ok := value.(*memoryEntry)
	if !ok {
		return nil, false
	}

	if entry.expired(time.Now()) {
		m.data.Delete(key)
		return nil, false
	}

	return entry, true
}
