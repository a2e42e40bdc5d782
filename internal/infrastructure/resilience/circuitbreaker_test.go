package resilience

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, timeout time.Duration, opts Options) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	opts.now = clock.now
	return NewCircuitBreaker("test", threshold, timeout, opts), clock
}

func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second, Options{})

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cb.CurrentState() != StateClosed {
		t.Errorf("Expected closed, got %s", cb.CurrentState())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second, Options{})
	testErr := errors.New("fail")

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return testErr })
	}

	if cb.CurrentState() != StateOpen {
		t.Errorf("Expected open after 3 failures, got %s", cb.CurrentState())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Errorf("Expected fn not to run while open")
	}
}

func TestCircuitBreaker_HalfOpenTransitions(t *testing.T) {
	testErr := errors.New("fail")

	tests := []struct {
		name      string
		probe     error
		wantState State
	}{
		{name: "success closes", probe: nil, wantState: StateClosed},
		{name: "failure reopens", probe: testErr, wantState: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(2, time.Second, Options{})
			_ = cb.Execute(func() error { return testErr })
			_ = cb.Execute(func() error { return testErr })
			if cb.CurrentState() != StateOpen {
				t.Fatalf("Expected open, got %s", cb.CurrentState())
			}

			clock.advance(2 * time.Second)
			err := cb.Execute(func() error { return tt.probe })
			if !errors.Is(err, tt.probe) && err != tt.probe {
				t.Fatalf("Expected probe result %v, got %v", tt.probe, err)
			}
			if cb.CurrentState() != tt.wantState {
				t.Errorf("Expected %s, got %s", tt.wantState, cb.CurrentState())
			}
		})
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	notFound := errors.New("not found")
	cb, _ := newTestBreaker(1, time.Second, Options{
		IsFailure: func(err error) bool { return err != nil && !errors.Is(err, notFound) },
	})

	for i := 0; i < 5; i++ {
		if err := cb.Execute(func() error { return notFound }); !errors.Is(err, notFound) {
			t.Fatalf("Expected the fn error to pass through, got %v", err)
		}
	}
	if cb.CurrentState() != StateClosed {
		t.Errorf("Expected closed, got %s", cb.CurrentState())
	}
}

func TestCircuitBreaker_ReportsStateChanges(t *testing.T) {
	var transitions []string
	cb, clock := newTestBreaker(1, time.Second, Options{
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(func() error { return errors.New("fail") })
	clock.advance(2 * time.Second)
	_ = cb.Execute(func() error { return nil })

	want := []string{"test:closed->open", "test:open->half-open", "test:half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("Expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("Transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}
