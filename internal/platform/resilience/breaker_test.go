package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var errStoreDown = errors.New("connection reset")

func failing() error { return errStoreDown }
func passing() error { return nil }

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 11, 12, 0, 0, 0, time.UTC)
	var transitions []string
	b := NewCircuitBreaker("pools",
		CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, HalfOpenMaxReq: 1},
		WithClock(func() time.Time { return now }),
		WithStateChange(func(name string, from, to CircuitState) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		}),
	)

	for range 2 {
		if err := b.Execute(failing, nil); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected the call error, got %v", err)
		}
	}
	if got := b.State(); got != CircuitOpen {
		t.Fatalf("expected open after two failures, got %s", got)
	}

	ran := false
	err := b.Execute(func() error { ran = true; return nil }, nil)
	if !errors.Is(err, ErrCircuitOpen) || ran {
		t.Fatalf("expected rejection without running, err=%v ran=%v", err, ran)
	}

	now = now.Add(6 * time.Second)
	if err := b.Execute(passing, nil); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	if got := b.State(); got != CircuitClosed {
		t.Fatalf("expected closed after a good probe, got %s", got)
	}

	want := []string{"pools:closed->open", "pools:open->half_open", "pools:half_open->closed"}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 11, 12, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker("matches",
		CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second},
		WithClock(func() time.Time { return now }),
	)

	_ = b.Execute(failing, nil)
	now = now.Add(2 * time.Second)
	if got := b.State(); got != CircuitHalfOpen {
		t.Fatalf("expected half-open once the timeout passed, got %s", got)
	}
	_ = b.Execute(failing, nil)
	if got := b.State(); got != CircuitOpen {
		t.Fatalf("expected open after a failed probe, got %s", got)
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	t.Parallel()

	errNotFound := errors.New("not found")
	b := NewCircuitBreaker("teams", CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})
	onlyTransport := func(err error) bool { return !errors.Is(err, errNotFound) }

	_ = b.Execute(func() error { return errNotFound }, onlyTransport)
	if got := b.State(); got != CircuitClosed {
		t.Fatalf("expected a lookup miss to keep the circuit closed, got %s", got)
	}
	_ = b.Execute(failing, onlyTransport)
	if got := b.State(); got != CircuitOpen {
		t.Fatalf("expected a transport error to open the circuit, got %s", got)
	}
}

func TestCircuitBreaker_DisabledAlwaysRuns(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker("pools", CircuitBreakerConfig{FailureThreshold: 1})
	for range 3 {
		if err := b.Execute(failing, nil); !errors.Is(err, errStoreDown) {
			t.Fatalf("expected the call error, got %v", err)
		}
	}
	if got := b.State(); got != CircuitClosed {
		t.Fatalf("disabled breaker must stay closed, got %s", got)
	}
}

func TestCircuitBreakerConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (CircuitBreakerConfig{}).Validate("STORE"); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	bad := CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: 0, HalfOpenMaxReq: 1}
	if err := bad.Validate("STORE"); err == nil {
		t.Fatalf("expected zero open timeout to be rejected")
	}
}
