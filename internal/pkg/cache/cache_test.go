package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute)
	_ = c.SetEX(ctx, "a", "1", 10*time.Millisecond)
	_ = c.SetEX(ctx, "b", "2", 0)
	if v, _ := c.Get(ctx, "a"); v != "1" {
		t.Fatalf("a = %q", v)
	}
	time.Sleep(20 * time.Millisecond)
	if v, _ := c.Get(ctx, "a"); v != "" {
		t.Fatalf("expired a = %q", v)
	}
	if n := c.Sweep(); n != 1 {
		t.Fatalf("sweep = %d", n)
	}
	if d, ok := c.RemainingTTL(ctx, "b"); !ok || d <= 0 || d > time.Minute {
		t.Fatalf("ttl b = %v %v", d, ok)
	}
}

func TestLayeredBackfill(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewLocal(time.Minute), NewLocal(time.Minute)
	lc := NewLayered(l1, l2)
	_ = l2.SetEX(ctx, "k", "v", time.Minute)

	if v, _ := lc.Get(ctx, "k"); v != "v" {
		t.Fatalf("get = %q", v)
	}
	if v, _ := l1.Get(ctx, "k"); v != "v" {
		t.Fatal("L1 not backfilled")
	}
	_, _ = lc.Get(ctx, "k")
	_, _ = lc.Get(ctx, "missing")
	m := lc.SnapshotMetrics()
	if m.HitsL1 != 1 || m.HitsL2 != 1 || m.Miss != 1 || m.BackfillL1 != 1 {
		t.Fatalf("metrics = %+v", m)
	}
	_ = lc.Del(ctx, "k")
	if v, _ := lc.Get(ctx, "k"); v != "" {
		t.Fatal("del must clear both layers")
	}
}

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestCachedAndInvalidate(t *testing.T) {
	ctx := context.Background()
	lc := NewListCache(NewLocal(time.Minute), nil, time.Minute)
	loads := 0
	load := func(context.Context) (page, error) {
		loads++
		return page{Items: []string{"x"}, Total: loads}, nil
	}

	p1, _ := Cached(ctx, lc, "flowers", "page=0", load)
	p2, _ := Cached(ctx, lc, "flowers", "page=0", load)
	if loads != 1 || p2.Total != p1.Total {
		t.Fatalf("loads = %d p2 = %+v", loads, p2)
	}
	if _, _ = Cached(ctx, lc, "flowers", "page=1", load); loads != 2 {
		t.Fatalf("different query must miss, loads = %d", loads)
	}

	_ = lc.Invalidate(ctx, "flowers")
	p3, _ := Cached(ctx, lc, "flowers", "page=0", load)
	if loads != 3 || p3.Total != 3 {
		t.Fatalf("after invalidate loads = %d p3 = %+v", loads, p3)
	}
}

func TestCachedSkipsErrors(t *testing.T) {
	ctx := context.Background()
	lc := NewListCache(NewLocal(time.Minute), nil, time.Minute)
	boom := errors.New("boom")
	calls := 0
	fail := func(context.Context) (page, error) { calls++; return page{}, boom }
	for i := 0; i < 2; i++ {
		if _, err := Cached(ctx, lc, "leaves", "q", fail); !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("errors must not be cached, calls = %d", calls)
	}

	var nilCache *ListCache
	if _, err := Cached(ctx, nilCache, "leaves", "q", fail); !errors.Is(err, boom) {
		t.Fatal("nil cache must pass through")
	}
}
