// Package queue decouples change detection from index writing. Tasks are
// delivered at least once; per-entity ordering is guaranteed so two writes
// for the same property never race.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// ErrClosed is returned by Dequeue once the queue is shut down.
var ErrClosed = errors.New("queue: closed")

// Queue is the indexing work queue capability.
type Queue interface {
	// Enqueue adds a task. Pending duplicates (same entity and action) are
	// coalesced into one.
	Enqueue(ctx context.Context, task domain.Task) error

	// Dequeue blocks until a task is dispatchable and marks its entity
	// in-flight. No other task for that entity is delivered until Ack or
	// the Nack delay elapses.
	Dequeue(ctx context.Context) (domain.Task, error)

	// Ack removes the in-flight task for the entity.
	Ack(entityID string)

	// Nack returns the in-flight task to the head of its entity's queue
	// with an incremented attempt count, delaying redelivery.
	Nack(task domain.Task, delay time.Duration)

	// Len returns the number of pending tasks.
	Len() int

	// Close shuts the queue down; blocked Dequeues return ErrClosed.
	Close()
}
