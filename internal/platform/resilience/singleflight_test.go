package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_SharesInFlightCall(t *testing.T) {
	t.Parallel()

	var (
		group   SingleFlight
		calls   atomic.Int32
		once    sync.Once
		entered = make(chan struct{})
		release = make(chan struct{})
	)

	const callers = 8
	results := make(chan any, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i > 0 {
				<-entered
			}
			v, err := group.DoContext(context.Background(), "team:key:3:TOURS VOLLEY-BALL", func(context.Context) (any, error) {
				calls.Add(1)
				once.Do(func() { close(entered) })
				<-release
				return int64(10), nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
			results <- v
		}()
	}

	<-entered
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != int64(10) {
			t.Fatalf("unexpected shared value %v", v)
		}
	}
	if got := calls.Load(); got < 1 {
		t.Fatalf("expected the loader to run, got %d calls", got)
	}
}

func TestSingleFlight_ForgetStartsFreshCall(t *testing.T) {
	t.Parallel()

	var group SingleFlight
	ctx := context.Background()
	boom := errors.New("boom")
	if _, err := group.DoContext(ctx, "k", func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	group.Forget("k")

	v, err := group.DoContext(ctx, "k", func(context.Context) (any, error) { return "fresh", nil })
	if err != nil || v != "fresh" {
		t.Fatalf("unexpected result v=%v err=%v", v, err)
	}
}

func TestSingleFlight_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	var (
		group   SingleFlight
		calls   atomic.Int32
		entered = make(chan struct{})
		release = make(chan struct{})
	)
	fn := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(entered)
		select {
		case <-release:
			return "shared", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := group.DoContext(first, "k", fn)
		firstErr <- err
	}()
	<-entered
	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled first caller, got %v", err)
	}

	time.AfterFunc(20*time.Millisecond, func() { close(release) })
	v, err := group.DoContext(context.Background(), "k", fn)
	if err != nil || v != "shared" {
		t.Fatalf("unexpected result v=%v err=%v", v, err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one shared call, got %d", got)
	}
}
