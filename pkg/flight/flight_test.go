package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetCachesResults(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (string, error) {
		calls.Add(1)
		return "result-" + k, nil
	})

	for i := 0; i < 3; i++ {
		got, err := c.Get("a")
		if err != nil || got != "result-a" {
			t.Fatalf("Get = %q, %v", got, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("work ran %d times, want 1", calls.Load())
	}
}

func TestGetCoalescesConcurrentCallers(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(func(k string) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})

	const n = 8
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Get("shared")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("work ran %d times for one key, want 1", calls.Load())
	}
	for i, r := range results {
		if r != 42 {
			t.Errorf("caller %d got %d", i, r)
		}
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("first call fails")
		}
		return "ok", nil
	})

	if _, err := c.Get("k"); err == nil {
		t.Fatal("expected first call to fail")
	}
	got, err := c.Get("k")
	if err != nil || got != "ok" {
		t.Fatalf("second call should succeed: %q, %v", got, err)
	}
	if calls.Load() != 2 {
		t.Errorf("failure must not be cached, work ran %d times", calls.Load())
	}
}

func TestExpiry(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (int, error) {
		return int(calls.Add(1)), nil
	})
	c.Expiry(10 * time.Millisecond)

	first, _ := c.Get("k")
	time.Sleep(25 * time.Millisecond)
	second, _ := c.Get("k")
	if first == second {
		t.Error("expired entry should recompute")
	}
}

func TestForceRecomputes(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(func(k string) (int, error) {
		return int(calls.Add(1)), nil
	})

	first, _ := c.Get("k")
	again, _ := c.Get("k")
	forced, _ := c.Force("k")
	if first != again {
		t.Error("plain Get should reuse the cached value")
	}
	if forced == first {
		t.Error("Force must recompute")
	}
	after, _ := c.Get("k")
	if after != forced {
		t.Error("Force result should replace the cached value")
	}
}
