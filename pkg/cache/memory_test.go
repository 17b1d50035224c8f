package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	Symbol string    `json:"symbol"`
	Closes []float64 `json:"closes"`
}

func TestMemoryCacheRoundTripStruct(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := point{Symbol: "AAPL", Closes: []float64{1.5, 2.5}}
	if err := mc.Set(ctx, "k", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out point
	if err := mc.Get(ctx, "k", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Symbol != "AAPL" || len(out.Closes) != 2 || out.Closes[1] != 2.5 {
		t.Fatalf("got %+v", out)
	}

	// mutating the source after Set must not leak into the cache
	in.Closes[0] = 99
	var again point
	_ = mc.Get(ctx, "k", &again)
	if again.Closes[0] != 1.5 {
		t.Fatalf("cache aliased caller slice: %v", again.Closes)
	}
}

func TestMemoryCacheString(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "s", "hello", 0)
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil || s != "hello" {
		t.Fatalf("got %q err=%v", s, err)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var out point
	if err := mc.Get(ctx, "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	_ = mc.Set(ctx, "short", point{Symbol: "X"}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if err := mc.Get(ctx, "short", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired miss, got %v", err)
	}
	if ok, _ := mc.Exists(ctx, "short"); ok {
		t.Fatalf("expired key reported as existing")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(2 * time.Millisecond)

	var s string
	_ = mc.Get(ctx, "a", &s) // touch a so b becomes oldest
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "c", "3", time.Minute)

	if mc.Len() != 2 {
		t.Fatalf("len = %d, want 2", mc.Len())
	}
	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("a or c missing")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	_ = mc.Delete(ctx, "a")
	if ok, _ := mc.Exists(ctx, "a"); ok {
		t.Fatalf("a should be gone")
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// second close is a no-op
	if err := mc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSeriesKey(t *testing.T) {
	if got := SeriesKey("yahoo", " aapl ", "6mo"); got != "series:yahoo:AAPL:6mo" {
		t.Fatalf("SeriesKey = %q", got)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"pricecast", "pricecast:series:yahoo:AAPL:6mo"},
		{"", "series:yahoo:AAPL:6mo"},
	}
	for _, tt := range tests {
		rc := NewRedisCacheWithClient(nil, tt.prefix)
		if got := rc.key(SeriesKey("yahoo", "aapl", "6mo")); got != tt.want {
			t.Errorf("prefix %q: key = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestMemoryCacheSweepsExpired(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(5 * time.Millisecond))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "gone", "x", time.Millisecond)
	_ = mc.Set(ctx, "kept", "y", time.Minute)

	deadline := time.Now().Add(time.Second)
	for mc.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("len = %d, want 1 after sweep", mc.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if ok, _ := mc.Exists(ctx, "kept"); !ok {
		t.Fatalf("live entry swept")
	}
}
