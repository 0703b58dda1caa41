package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockExpirer struct {
	calls atomic.Int32
	fn    func(ctx context.Context) (int64, error)
}

func (m *mockExpirer) ExpireDue(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if m.fn != nil {
		return m.fn(ctx)
	}
	return 0, nil
}

func TestPassExpiryJob_Expire(t *testing.T) {
	m := &mockExpirer{fn: func(ctx context.Context) (int64, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the expiry context")
		}
		return 3, nil
	}}
	job := NewPassExpiryJob(m, time.Hour)

	if n := job.expire(); n != 3 {
		t.Errorf("expected 3 passes expired, got %d", n)
	}
}

func TestPassExpiryJob_ExpireError(t *testing.T) {
	m := &mockExpirer{fn: func(ctx context.Context) (int64, error) {
		return 0, errors.New("database unavailable")
	}}
	job := NewPassExpiryJob(m, time.Hour)

	if n := job.expire(); n != 0 {
		t.Errorf("expected 0 on error, got %d", n)
	}
	if m.calls.Load() != 1 {
		t.Errorf("expected one call, got %d", m.calls.Load())
	}
}

func TestPassExpiryJob_RunsImmediatelyAndOnTick(t *testing.T) {
	m := &mockExpirer{}
	job := NewPassExpiryJob(m, 10*time.Millisecond)

	job.Start()
	deadline := time.Now().Add(2 * time.Second)
	for m.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	job.Stop()

	if m.calls.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", m.calls.Load())
	}

	after := m.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if m.calls.Load() != after {
		t.Errorf("job kept running after Stop")
	}
}

func TestPassExpiryJob_New(t *testing.T) {
	job := NewPassExpiryJob(&mockExpirer{}, 5*time.Minute)
	if job.interval != 5*time.Minute {
		t.Errorf("expected interval 5m, got %v", job.interval)
	}
	if job.stopChan == nil || job.doneChan == nil {
		t.Error("expected channels to be initialised")
	}
}
