package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

func mustTask(t *testing.T, id string, action domain.Action) domain.Task {
	t.Helper()
	task, err := domain.NewTask(id, action, time.Now())
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	return task
}

func TestPerEntityOrdering(t *testing.T) {
	ctx := context.Background()
	q := NewMemory()
	defer q.Close()

	if err := q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionDelete)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	first, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if first.Action != domain.ActionIndex {
		t.Fatalf("first action = %s, want index", first.Action)
	}

	// The second task for p-1 must not be dispatchable while the first is
	// in flight.
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while p-1 in flight, got %v", err)
	}

	q.Ack("p-1")
	second, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue after ack: %v", err)
	}
	if second.Action != domain.ActionDelete {
		t.Fatalf("second action = %s, want delete", second.Action)
	}
	q.Ack("p-1")
}

func TestCoalescingSameAction(t *testing.T) {
	ctx := context.Background()
	q := NewMemory()
	defer q.Close()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (duplicates coalesced)", q.Len())
	}
}

func TestCoalescingKeepsLastActionWinning(t *testing.T) {
	ctx := context.Background()
	q := NewMemory()
	defer q.Close()

	// index, delete, index: the trailing index must survive, otherwise the
	// entity ends up deleted although the last enqueued action re-creates it.
	for _, a := range []domain.Action{domain.ActionIndex, domain.ActionDelete, domain.ActionIndex} {
		if err := q.Enqueue(ctx, mustTask(t, "p-1", a)); err != nil {
			t.Fatalf("Enqueue %s: %v", a, err)
		}
	}

	var delivered []domain.Action
	for i := 0; i < 3; i++ {
		task, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue %d: %v", i, err)
		}
		delivered = append(delivered, task.Action)
		q.Ack("p-1")
	}

	want := []domain.Action{domain.ActionIndex, domain.ActionDelete, domain.ActionIndex}
	for i, a := range want {
		if delivered[i] != a {
			t.Fatalf("delivered = %v, want %v", delivered, want)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d after drain, want 0", q.Len())
	}
}

func TestInflightNotCoalesced(t *testing.T) {
	ctx := context.Background()
	q := NewMemory()
	defer q.Close()

	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))
	if _, err := q.Dequeue(ctx); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	// A change arriving while its predecessor is being applied needs its own
	// task; the in-flight one may have read stale data.
	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
}

func TestNackRedeliversAfterDelay(t *testing.T) {
	ctx := context.Background()
	q := NewMemory()
	defer q.Close()

	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))
	task, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	q.Nack(task, 20*time.Millisecond)

	redelivered, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue after nack: %v", err)
	}
	if redelivered.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", redelivered.Attempts)
	}
	q.Ack("p-1")
}

func TestCloseUnblocksDequeue(t *testing.T) {
	q := NewMemory()
	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background())
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("got %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not unblock on Close")
	}
}

func TestPoolRetriesThenSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemory()
	defer q.Close()
	dls := NewMemoryDeadLetters(10)

	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	handler := func(_ context.Context, _ domain.Task) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return domain.ErrIndexUnavailable
		}
		close(done)
		return nil
	}

	pool := NewPool(PoolConfig{Workers: 1, MaxAttempts: 5, BaseBackoff: time.Millisecond}, q, handler, dls, nil, zap.NewNop())
	go func() { _ = pool.Run(ctx) }()

	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never succeeded")
	}
	if len(dls.List()) != 0 {
		t.Errorf("unexpected dead letters: %v", dls.List())
	}
}

func TestPoolDeadLettersAfterMaxAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemory()
	defer q.Close()
	dls := NewMemoryDeadLetters(10)

	handler := func(_ context.Context, _ domain.Task) error {
		return domain.ErrIndexUnavailable
	}
	pool := NewPool(PoolConfig{Workers: 1, MaxAttempts: 3, BaseBackoff: time.Millisecond}, q, handler, dls, nil, zap.NewNop())
	go func() { _ = pool.Run(ctx) }()

	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))

	deadline := time.After(2 * time.Second)
	for {
		if letters := dls.List(); len(letters) == 1 {
			if letters[0].Task.EntityID != "p-1" {
				t.Fatalf("dead letter entity = %s", letters[0].Task.EntityID)
			}
			if letters[0].ID == "" {
				t.Fatal("dead letter has no id")
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("task never dead-lettered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestPoolDeadLettersValidationImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemory()
	defer q.Close()
	dls := NewMemoryDeadLetters(10)

	var mu sync.Mutex
	calls := 0
	handler := func(_ context.Context, _ domain.Task) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return domain.NewValidationError("price", "negative")
	}
	pool := NewPool(PoolConfig{Workers: 1, MaxAttempts: 5, BaseBackoff: time.Millisecond}, q, handler, dls, nil, zap.NewNop())
	go func() { _ = pool.Run(ctx) }()

	_ = q.Enqueue(ctx, mustTask(t, "p-1", domain.ActionIndex))

	deadline := time.After(2 * time.Second)
	for {
		if len(dls.List()) == 1 {
			mu.Lock()
			got := calls
			mu.Unlock()
			if got != 1 {
				t.Fatalf("handler called %d times, want 1 (no retry on validation)", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("task never dead-lettered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	p := NewPool(PoolConfig{BaseBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond},
		nil, nil, nil, nil, zap.NewNop())

	want := []time.Duration{100, 200, 400, 500, 500}
	for i, w := range want {
		if got := p.backoff(i + 1); got != w*time.Millisecond {
			t.Errorf("backoff(%d) = %v, want %v", i+1, got, w*time.Millisecond)
		}
	}
}
