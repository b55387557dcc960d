// Package cache 在 KV 存储之上提供类型化缓存.
// 值用 sonic 做 JSON 编解码，TTL 由底层 KV 负责；
// 主要给分享链接的 token 解析路径做热点缓存.
//
//	c := cache.NewCache(store)
//	err := cache.Set(ctx, c, "share:link:"+token, desc, 10*time.Minute)
//	desc, err := cache.Get[LinkDescriptor](ctx, c, "share:link:"+token)
//
// 未命中与编解码失败都以 error 返回，调用方回源数据库即可.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
)

// Cache 持有底层 KV 存储.
type Cache struct {
	kvStore kv.KVStore
}

// NewCache 创建缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{kvStore: kvStore}
}

// Get 读取并反序列化缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 序列化并写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 命中直接返回，未命中调用 getter 回源并写缓存.
// 写缓存失败不影响返回值，下次调用会再次回源.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Clear 删除底层存储中的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
