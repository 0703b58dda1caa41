package offers

import (
	"context"
	"testing"
)

func TestLatestGate_NewRequestSupersedesPrevious(t *testing.T) {
	g := NewLatestGate()

	first, doneFirst := g.Begin(context.Background(), "user-1")
	second, doneSecond := g.Begin(context.Background(), "user-1")
	defer doneSecond()

	if first.Err() == nil || !Superseded(first) {
		t.Fatalf("expected first request to be superseded")
	}
	if second.Err() != nil {
		t.Fatalf("latest request must stay alive")
	}

	// finishing the stale request must not unregister the live one
	doneFirst()
	if g.InFlight() != 1 {
		t.Errorf("expected live request to stay registered, got %d", g.InFlight())
	}
}

func TestLatestGate_KeysAreIndependent(t *testing.T) {
	g := NewLatestGate()

	a, doneA := g.Begin(context.Background(), "a")
	b, doneB := g.Begin(context.Background(), "b")
	defer doneA()
	defer doneB()

	if a.Err() != nil || b.Err() != nil {
		t.Fatalf("requests for different keys must not cancel each other")
	}
}

func TestLatestGate_CancelAndDone(t *testing.T) {
	g := NewLatestGate()

	ctx, done := g.Begin(context.Background(), "user-1")
	g.Cancel("user-1")
	if !Superseded(ctx) {
		t.Fatalf("expected cancelled context")
	}
	done()
	if g.InFlight() != 0 {
		t.Errorf("expected no in-flight requests")
	}

	ctx, done = g.Begin(context.Background(), "user-1")
	done()
	if ctx.Err() == nil || Superseded(ctx) {
		t.Errorf("completed request should be cancelled but not superseded")
	}
}
