package progress

import (
	"context"
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Event) []float64 {
	t.Helper()
	var out []float64
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev.Progress)
		case <-timeout:
			t.Fatal("timed out waiting for subscription to close")
			return nil
		}
	}
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestChannel_SubscriberSeesWholeSequence(t *testing.T) {
	c := New()
	sub := c.Subscribe(context.Background())

	c.Publish(0)
	c.Publish(0.5)
	c.Publish(1)
	c.Close()

	got := collect(t, sub)
	want := []float64{0, 0.5, 1}
	if !equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestChannel_LateSubscriberReplays(t *testing.T) {
	c := New()
	c.Publish(0)
	c.Publish(0.25)
	c.Publish(0.75)

	late := c.Subscribe(context.Background())
	c.Publish(1)
	c.Close()

	got := collect(t, late)
	want := []float64{0, 0.25, 0.75, 1}
	if !equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	afterClose := collect(t, c.Subscribe(context.Background()))
	if !equal(afterClose, want) {
		t.Errorf("subscriber after close: expected %v, got %v", want, afterClose)
	}
}

func TestChannel_Monotone(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		want  []float64
	}{
		{"increasing", []float64{0, 0.1, 0.2}, []float64{0, 0.1, 0.2}},
		{"regression raised", []float64{0, 0.6, 0.3}, []float64{0, 0.6, 0.6}},
		{"clamped high", []float64{0.5, 1.7}, []float64{0.5, 1}},
		{"clamped low", []float64{-1, 0.2}, []float64{0, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for _, p := range tt.input {
				c.Publish(p)
			}
			c.Close()
			got := collect(t, c.Subscribe(context.Background()))
			if !equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestChannel_CloseIsTerminal(t *testing.T) {
	c := New()
	c.Publish(0.2)
	c.Close()
	c.Close()
	c.Publish(0.9)

	if !c.Closed() {
		t.Error("expected channel to be closed")
	}
	last, ok := c.Last()
	if !ok || last != 0.2 {
		t.Errorf("expected last 0.2, got %v (ok=%v)", last, ok)
	}
	select {
	case <-c.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

func TestChannel_CancelRunsHooks(t *testing.T) {
	c := New()
	calls := 0
	c.OnCancel(func() { calls++ })

	c.Cancel()
	c.Cancel()

	if calls != 1 {
		t.Errorf("expected hook to run once, got %d", calls)
	}
	if !c.Cancelled() || !c.Closed() {
		t.Error("expected channel to be cancelled and closed")
	}

	late := 0
	c.OnCancel(func() { late++ })
	if late != 1 {
		t.Error("expected hook registered after cancel to run immediately")
	}
}

func TestChannel_CancelAfterCloseIsNoop(t *testing.T) {
	c := New()
	fired := false
	c.OnCancel(func() { fired = true })
	c.Close()
	c.Cancel()

	if fired {
		t.Error("expected no hook after normal close")
	}
	if c.Cancelled() {
		t.Error("expected channel not to report cancellation")
	}
}

func TestChannel_ProducerNeverBlocks(t *testing.T) {
	c := New()
	_ = c.Subscribe(context.Background()) // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i <= 1000; i++ {
			c.Publish(float64(i) / 1000)
		}
		c.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked on slow subscriber")
	}
}

func TestChannel_SubscriptionEndsWithContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	sub := c.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected no events")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end with its context")
	}
}
