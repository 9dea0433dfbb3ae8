package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var calls atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("league:lg-sleeper-998", func() (any, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "roster", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if got, _ := v.(string); got != "roster" {
				t.Errorf("unexpected value %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	v1, err, shared := g.Do("a", func() (any, error) { return 1, nil })
	if err != nil || shared {
		t.Fatalf("first call: err=%v shared=%t", err, shared)
	}
	v2, err, shared := g.Do("b", func() (any, error) { return 2, nil })
	if err != nil || shared {
		t.Fatalf("second call: err=%v shared=%t", err, shared)
	}
	if v1 == v2 {
		t.Fatalf("keys should not share results")
	}
}
