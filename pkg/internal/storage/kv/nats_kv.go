package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/drivevault/pkg/configs"
)

// natsKV 基于 NATS JetStream KeyValue 的实现.
// bucket 级 TTL 不启用，过期语义由值层的 TTL 包装承担，
// 与其他后端保持一致的键级过期行为.
type natsKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

func init() {
	RegisterKVFactory(KVTypeNATS, newNATSKV)
}

// newNATSKV 连接 NATS 并打开（或创建）配置的 bucket.
func newNATSKV(ctx context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.NATSKVConfig)
	if !ok {
		return nil, fmt.Errorf("invalid NATS KV config")
	}

	opts := []nats.Option{}
	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	bucket, err := js.CreateKeyValue(&nats.KeyValueConfig{Bucket: cfg.Bucket})
	if err != nil {
		bucket, err = js.KeyValue(cfg.Bucket)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open kv bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &natsKV{kv: bucket, conn: conn}, nil
}

// Get 读取键值，懒删除已过期的条目.
func (n *natsKV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	if err != nil {
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}

	val, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	return val, nil
}

// Set 写入键值，ttl>0 时包装过期时间.
func (n *natsKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, _, err := encodeWithTTL(value, ttl)
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}

	return nil
}

// Delete 删除键.
func (n *natsKV) Delete(ctx context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}

	return nil
}

// Exists 检查键是否存在且未过期.
func (n *natsKV) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("check key %s: %w", key, err)
	}

	_, expired, _, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return false, err
	}

	if expired {
		_ = n.kv.Delete(key)
		return false, nil
	}

	return true, nil
}

// Keys 列出有效键.pattern 只支持精确匹配，空串与 * 匹配全部.
func (n *natsKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if pattern != "" && pattern != "*" && key != pattern {
			continue
		}

		if entry, e := n.kv.Get(key); e == nil {
			if _, expired, _, derr := decodeWithTTL(entry.Value(), time.Now()); derr == nil && expired {
				_ = n.kv.Delete(key)
				continue
			}
		}

		result = append(result, key)
	}

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *natsKV) Close() error {
	n.conn.Close()
	return nil
}
