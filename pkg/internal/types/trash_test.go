package types

import (
	"testing"
	"time"
)

// TestParseBeforeClampsFuture 未来的界限被截断到当前时刻，保留期内的条目不会被清理波及.
func TestParseBeforeClampsFuture(t *testing.T) {
	future := time.Now().UTC().Add(72 * time.Hour)
	req := &TrashAutoCleanRequest{Before: future.Format(time.RFC3339)}

	before, ok := req.ParseBefore()
	if !ok {
		t.Fatal("future before must still parse")
	}

	if before.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("before = %v, must not lie in the future", before)
	}
}

// TestParseBeforeDays days 参数换算为过去的时间点.
func TestParseBeforeDays(t *testing.T) {
	req := &TrashAutoCleanRequest{Days: 7}

	before, ok := req.ParseBefore()
	if !ok {
		t.Fatal("days must parse")
	}

	want := time.Now().UTC().Add(-7 * 24 * time.Hour)
	if d := before.Sub(want); d < -time.Minute || d > time.Minute {
		t.Fatalf("before = %v, want about %v", before, want)
	}
}

// TestParseBeforeEmpty 两个字段都缺省时不可用.
func TestParseBeforeEmpty(t *testing.T) {
	req := &TrashAutoCleanRequest{}

	if _, ok := req.ParseBefore(); ok {
		t.Fatal("empty request must not produce a cutoff")
	}
}
