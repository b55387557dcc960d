// Package kv 定义键值存储接口与各后端实现.
// 分享链接缓存与幂等记录都放在这里，后端通过工厂注册.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/drivevault/pkg/configs"
)

// KVStore 键值存储接口.TTL 为 0 表示不过期；
// 后端不支持键级过期时由值层包装承载.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 列出匹配的键，主要用于调试与 Clear.
	Keys(ctx context.Context, pattern string) ([]string, error)
	Close() error
}

// Client 包装选定的 KVStore 实现.
type Client struct {
	KVStore
}

// KVType 键值存储后端类型.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// KVFactory 按配置创建 KVStore.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

var kvFactories = make(map[KVType]KVFactory)

// RegisterKVFactory 注册后端工厂，各实现文件在 init 中调用.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的后端类型.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	return types
}

// NewKVStore 按类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factory, ok := kvFactories[kvType]
	if !ok {
		return nil, fmt.Errorf("unsupported KV type: %s", kvType)
	}

	return factory(ctx, config)
}

// NewKVClient 用全局配置创建 KV 客户端，按类型取出对应的子配置.
func NewKVClient(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().KV

	var backendCfg any

	switch KVType(cfg.Type) {
	case KVTypeRedis:
		backendCfg = &cfg.Redis
	case KVTypeNATS:
		backendCfg = &cfg.NATS
	case KVTypeGroupcache:
		backendCfg = &cfg.Groupcache
	}

	store, err := NewKVStore(ctx, KVType(cfg.Type), backendCfg)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}
