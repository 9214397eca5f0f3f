package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollect_KeyedByID(t *testing.T) {
	ids := []string{"q1", "q2", "q3", "q4", "q5"}

	delay := map[string]time.Duration{"q1": 25, "q2": 20, "q3": 15, "q4": 10, "q5": 5}

	// Earlier ids sleep longest so completion order differs from input order
	values, errs := Collect(context.Background(), 3, ids, func(ctx context.Context, id string) (string, error) {
		time.Sleep(delay[id] * time.Millisecond)
		return "verdict-" + id, nil
	})

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(values) != len(ids) {
		t.Fatalf("expected %d values, got %d", len(ids), len(values))
	}
	for _, id := range ids {
		if values[id] != "verdict-"+id {
			t.Errorf("value for %s = %q", id, values[id])
		}
	}
}

func TestCollect_Errors(t *testing.T) {
	ids := []string{"ok", "bad"}

	values, errs := Collect(context.Background(), 2, ids, func(ctx context.Context, id string) (int, error) {
		if id == "bad" {
			return 0, errors.New("evaluation failed")
		}
		return 1, nil
	})

	if values["ok"] != 1 {
		t.Errorf("expected value for ok")
	}
	if _, ok := values["bad"]; ok {
		t.Errorf("failed id must not have a value")
	}
	if errs["bad"] == nil {
		t.Errorf("expected error for bad")
	}
}

func TestCollect_BoundedConcurrency(t *testing.T) {
	var current, peak int32
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("q%d", i)
	}

	Collect(context.Background(), 4, ids, func(ctx context.Context, id string) (struct{}, error) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return struct{}{}, nil
	})

	if peak > 4 {
		t.Errorf("peak concurrency %d exceeded 4 workers", peak)
	}
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	values, errs := Collect(ctx, 2, []string{"a", "b"}, func(ctx context.Context, id string) (int, error) {
		return 1, nil
	})

	if len(values) != 0 {
		t.Errorf("expected no values, got %v", values)
	}
	if len(errs) != 2 {
		t.Errorf("expected every id to report an error, got %v", errs)
	}
}

func TestCollect_Empty(t *testing.T) {
	values, errs := Collect(context.Background(), 2, nil, func(ctx context.Context, id string) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	})
	if len(values) != 0 || len(errs) != 0 {
		t.Errorf("expected empty maps")
	}
}
