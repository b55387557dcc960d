package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/cache"
)

// linkDescriptor 模拟分享链接描述的缓存载荷.
type linkDescriptor struct {
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	Role         string     `json:"role"`
	URL          string     `json:"url"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// fakeKV 手写的 KVStore 替身，记录 Set 收到的 TTL 供断言.
type fakeKV struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("kv unavailable")
	}

	v, ok := f.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}

	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	f.ttls[key] = ttl

	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	delete(f.ttls, key)

	return nil
}

func (f *fakeKV) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}

	return keys, nil
}

func (f *fakeKV) Close() error { return nil }

// TestSetGetTypedValue 结构体经序列化往返后字段完整.
func TestSetGetTypedValue(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := cache.NewCache(kv)

	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	want := linkDescriptor{
		ResourceType: "file",
		ResourceID:   "doc.txt",
		Role:         "viewer",
		URL:          "https://dv.example.com/share/file/doc.txt?t=abc",
		ExpiresAt:    &exp,
	}

	if err := cache.Set(ctx, c, "share:link:v1:file:doc.txt", want, 10*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if kv.ttls["share:link:v1:file:doc.txt"] != 10*time.Minute {
		t.Fatalf("ttl = %v, want 10m", kv.ttls["share:link:v1:file:doc.txt"])
	}

	got, err := cache.Get[linkDescriptor](ctx, c, "share:link:v1:file:doc.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Role != "viewer" || got.ResourceID != "doc.txt" || got.ExpiresAt == nil || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("got = %+v", got)
	}
}

// TestGetMissReturnsError 未命中以 error 表达，调用方据此回源.
func TestGetMissReturnsError(t *testing.T) {
	c := cache.NewCache(newFakeKV())

	if _, err := cache.Get[linkDescriptor](context.Background(), c, "absent"); err == nil {
		t.Fatal("miss must surface as error")
	}
}

// TestGetCorruptPayload 反序列化失败不得返回半成品值.
func TestGetCorruptPayload(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.data["broken"] = []byte("{not json")
	c := cache.NewCache(kv)

	if _, err := cache.Get[linkDescriptor](ctx, c, "broken"); err == nil {
		t.Fatal("corrupt payload must error")
	}
}

// TestDeleteInvalidates 删除后读取未命中，对应轮换/撤销链接时的失效路径.
func TestDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := cache.NewCache(kv)

	_ = cache.Set(ctx, c, "k", linkDescriptor{Role: "editor"}, 0)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := cache.Get[linkDescriptor](ctx, c, "k"); err == nil {
		t.Fatal("deleted key must miss")
	}

	ok, err := c.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("exists = %v err=%v, want false", ok, err)
	}
}

// TestGetOrSetLoadsOnceThenHits 首次回源写缓存，再次调用不触发 getter.
func TestGetOrSetLoadsOnceThenHits(t *testing.T) {
	ctx := context.Background()
	c := cache.NewCache(newFakeKV())

	calls := 0
	loader := func() (linkDescriptor, error) {
		calls++
		return linkDescriptor{Role: "viewer"}, nil
	}

	for range 3 {
		got, err := cache.GetOrSet(ctx, c, "k", loader, time.Minute)
		if err != nil || got.Role != "viewer" {
			t.Fatalf("got = %+v err=%v", got, err)
		}
	}

	if calls != 1 {
		t.Fatalf("loader calls = %d, want 1", calls)
	}
}

// TestGetOrSetGetterError 回源失败时错误透传且不写缓存.
func TestGetOrSetGetterError(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := cache.NewCache(kv)

	wantErr := errors.New("db down")
	_, err := cache.GetOrSet(ctx, c, "k", func() (linkDescriptor, error) {
		return linkDescriptor{}, wantErr
	}, time.Minute)

	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}

	if _, ok := kv.data["k"]; ok {
		t.Fatal("failed load must not populate cache")
	}
}

// TestGetOrSetKVUnavailable 底层 KV 读失败退化为直接回源.
func TestGetOrSetKVUnavailable(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	kv.failGet = true
	c := cache.NewCache(kv)

	got, err := cache.GetOrSet(ctx, c, "k", func() (linkDescriptor, error) {
		return linkDescriptor{Role: "editor"}, nil
	}, time.Minute)
	if err != nil || got.Role != "editor" {
		t.Fatalf("got = %+v err=%v", got, err)
	}
}

// TestClearRemovesAll Clear 清空全部键.
func TestClearRemovesAll(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	c := cache.NewCache(kv)

	_ = cache.Set(ctx, c, "a", linkDescriptor{Role: "viewer"}, 0)
	_ = cache.Set(ctx, c, "b", linkDescriptor{Role: "editor"}, 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(kv.data) != 0 {
		t.Fatalf("remaining keys = %d, want 0", len(kv.data))
	}
}
