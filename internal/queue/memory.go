package queue

import (
	"context"
	"sync"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

var _ Queue = (*MemoryQueue)(nil)

type entityState struct {
	tasks    []domain.Task
	inflight bool
	delayed  bool
}

// MemoryQueue is an in-process Queue with per-entity FIFO ordering.
type MemoryQueue struct {
	mu     sync.Mutex
	states map[string]*entityState
	ready  []string
	notify chan struct{}
	closed bool

	pending int
}

// NewMemory creates an empty in-process queue.
func NewMemory() *MemoryQueue {
	return &MemoryQueue{
		states: make(map[string]*entityState),
		notify: make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, task domain.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	st, ok := q.states[task.EntityID]
	if !ok {
		st = &entityState{}
		q.states[task.EntityID] = st
	}

	// Coalesce: if the newest pending task already carries this action, the
	// new task adds nothing. Only the tail can absorb it; matching an earlier
	// pending task would let an action in between win out of order. The
	// in-flight head (index 0 while inflight) is excluded since its work may
	// already be underway on stale data.
	if last := len(st.tasks) - 1; last >= 0 && !(st.inflight && last == 0) {
		if st.tasks[last].Action == task.Action {
			return nil
		}
	}

	st.tasks = append(st.tasks, task)
	q.pending++
	if !st.inflight && !st.delayed && len(st.tasks) == 1 {
		q.pushReadyLocked(task.EntityID)
	}
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (domain.Task, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return domain.Task{}, ErrClosed
		}
		if len(q.ready) > 0 {
			id := q.ready[0]
			q.ready = q.ready[1:]
			st := q.states[id]
			st.inflight = true
			task := st.tasks[0]
			if len(q.ready) > 0 {
				q.signalLocked()
			}
			q.mu.Unlock()
			return task, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return domain.Task{}, ctx.Err()
		case <-q.notify:
		}
	}
}

func (q *MemoryQueue) Ack(entityID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, ok := q.states[entityID]
	if !ok || !st.inflight {
		return
	}
	st.tasks = st.tasks[1:]
	st.inflight = false
	q.pending--

	if len(st.tasks) > 0 {
		q.pushReadyLocked(entityID)
	} else {
		delete(q.states, entityID)
	}
}

func (q *MemoryQueue) Nack(task domain.Task, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	st, ok := q.states[task.EntityID]
	if !ok || !st.inflight {
		return
	}
	st.tasks[0].Attempts++
	st.inflight = false
	st.delayed = true

	time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()

		st, ok := q.states[task.EntityID]
		if !ok {
			return
		}
		st.delayed = false
		if !st.inflight && len(st.tasks) > 0 {
			q.pushReadyLocked(task.EntityID)
		}
	})
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.notify)
}

func (q *MemoryQueue) pushReadyLocked(entityID string) {
	q.ready = append(q.ready, entityID)
	q.signalLocked()
}

func (q *MemoryQueue) signalLocked() {
	if q.closed {
		return
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
