package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/drivevault/pkg/configs"
)

// groupcacheKV 基于 groupcache 的 KV 实现.
// 写入落在本地 map，读取经由缓存组，配置了 peers 时可跨节点分摊热点.
// groupcache 本身没有过期概念，TTL 由 encodeWithTTL 在值层承载.
type groupcacheKV struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool
	local map[string][]byte
	mu    sync.RWMutex
}

// loader 实现 groupcache.Getter，未命中时从本地 map 回源.
type loader struct {
	kv *groupcacheKV
}

func (l *loader) Get(_ context.Context, key string, dest groupcache.Sink) error {
	l.kv.mu.RLock()
	value, ok := l.kv.local[key]
	l.kv.mu.RUnlock()

	if !ok {
		return fmt.Errorf("key not found: %s", key)
	}

	return dest.SetBytes(value)
}

func newGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.GroupcacheKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid groupcache config")
	}

	kv := &groupcacheKV{local: make(map[string][]byte)}
	kv.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, &loader{kv: kv})

	if len(cfg.Peers) > 0 {
		kv.pool = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		kv.pool.Set(cfg.Peers...)
	}

	return kv, nil
}

func (g *groupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, fmt.Errorf("groupcache get %s: %w", key, err)
	}

	value, expired, _, err := decodeWithTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		g.mu.Lock()
		delete(g.local, key)
		g.mu.Unlock()

		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (g *groupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	stored := make([]byte, len(encoded))
	copy(stored, encoded)
	g.local[key] = stored

	return nil
}

func (g *groupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.local, key)

	return nil
}

func (g *groupcacheKV) Exists(_ context.Context, key string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.local[key]

	return ok, nil
}

func (g *groupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.local))
	for key := range g.local {
		if pattern == "" || pattern == "*" || key == pattern {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close groupcache 没有显式关闭.
func (g *groupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, newGroupcacheKV)
}
