package kv

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// TestMemoryKVRoundTrip 内存后端的基本读写删.
func TestMemoryKVRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := NewKVStore(ctx, KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	defer store.Close()

	key := "share:link:v1:file:doc.txt"
	if err := store.Set(ctx, key, []byte(`{"role":"viewer"}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil || string(got) != `{"role":"viewer"}` {
		t.Fatalf("get = %q err=%v", got, err)
	}

	ok, err := store.Exists(ctx, key)
	if err != nil || !ok {
		t.Fatalf("exists = %v err=%v, want true", ok, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Get(ctx, key); err == nil {
		t.Fatal("get after delete must miss")
	}
}

// TestMemoryKVGetReturnsCopy 取出的值是副本，调用方改写不污染存储.
func TestMemoryKVGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := NewKVStore(ctx, KVTypeMemory, nil)
	defer store.Close()

	_ = store.Set(ctx, "k", []byte("original"), 0)

	first, _ := store.Get(ctx, "k")
	first[0] = 'X'

	second, _ := store.Get(ctx, "k")
	if string(second) != "original" {
		t.Fatalf("stored value mutated: %q", second)
	}
}

// TestMemoryKVTTLExpiry 过期键读不到、Exists 为假且被懒清理.
func TestMemoryKVTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, _ := NewKVStore(ctx, KVTypeMemory, nil)
	defer store.Close()

	if err := store.Set(ctx, "ephemeral", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get(ctx, "ephemeral"); err == nil {
		t.Fatal("expired key must miss")
	}

	ok, _ := store.Exists(ctx, "ephemeral")
	if ok {
		t.Fatal("expired key must not exist")
	}

	keys, _ := store.Keys(ctx, "")
	for _, k := range keys {
		if k == "ephemeral" {
			t.Fatal("expired key must not be listed")
		}
	}
}

// TestTTLCodecRoundTrip 值层 TTL 包装的编解码与过期判定.
func TestTTLCodecRoundTrip(t *testing.T) {
	raw := []byte("payload")

	// 无 TTL 时原样透传
	plain, wrapped, err := encodeWithTTL(raw, 0)
	if err != nil || wrapped || string(plain) != "payload" {
		t.Fatalf("encode no-ttl = %q wrapped=%v err=%v", plain, wrapped, err)
	}

	encoded, wrapped, err := encodeWithTTL(raw, time.Hour)
	if err != nil || !wrapped {
		t.Fatalf("encode ttl err=%v wrapped=%v", err, wrapped)
	}

	val, expired, wasWrapped, err := decodeWithTTL(encoded, time.Now())
	if err != nil || expired || !wasWrapped || string(val) != "payload" {
		t.Fatalf("decode = %q expired=%v wrapped=%v err=%v", val, expired, wasWrapped, err)
	}

	// 时钟拨过到期点后判定为过期
	_, expired, _, err = decodeWithTTL(encoded, time.Now().Add(2*time.Hour))
	if err != nil || !expired {
		t.Fatalf("decode after expiry: expired=%v err=%v", expired, err)
	}

	// 未包装的裸值直接返回
	val, expired, wasWrapped, err = decodeWithTTL([]byte("bare"), time.Now())
	if err != nil || expired || wasWrapped || string(val) != "bare" {
		t.Fatalf("decode bare = %q expired=%v wrapped=%v err=%v", val, expired, wasWrapped, err)
	}
}

// TestFactoryRegistry 内存后端随包注册，未注册类型报错.
func TestFactoryRegistry(t *testing.T) {
	found := false
	for _, kt := range GetRegisteredKVTypes() {
		if kt == KVTypeMemory {
			found = true
		}
	}

	if !found {
		t.Fatal("memory backend must self-register")
	}

	if _, err := NewKVStore(context.Background(), KVType("bogus"), nil); err == nil {
		t.Fatal("unknown kv type must error")
	}
}

// BenchmarkMemoryKV 内存后端的写读删开销基线.
func BenchmarkMemoryKV(b *testing.B) {
	ctx := context.Background()
	store, _ := NewKVStore(ctx, KVTypeMemory, nil)
	defer store.Close()

	payload := make([]byte, 1024)

	b.ReportAllocs()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("bench-%d", i)
		if err := store.Set(ctx, key, payload, 0); err != nil {
			b.Fatalf("set: %v", err)
		}

		if _, err := store.Get(ctx, key); err != nil {
			b.Fatalf("get: %v", err)
		}

		if err := store.Delete(ctx, key); err != nil {
			b.Fatalf("delete: %v", err)
		}
	}
}
