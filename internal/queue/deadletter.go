package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// DeadLetter is a task that exhausted its retry budget or failed permanently.
type DeadLetter struct {
	ID       string      `json:"id"`
	Task     domain.Task `json:"task"`
	Reason   string      `json:"reason"`
	FailedAt time.Time   `json:"failed_at"`
}

// DeadLetterSink records dead letters for operator inspection.
type DeadLetterSink interface {
	Add(task domain.Task, reason string)
	List() []DeadLetter
}

// memoryDeadLetters keeps the most recent dead letters in a bounded ring.
type memoryDeadLetters struct {
	mu      sync.Mutex
	letters []DeadLetter
	cap     int

	now func() time.Time
}

// NewMemoryDeadLetters creates a bounded in-memory dead letter sink.
func NewMemoryDeadLetters(capacity int) DeadLetterSink {
	if capacity <= 0 {
		capacity = 1000
	}
	return &memoryDeadLetters{cap: capacity, now: time.Now}
}

func (s *memoryDeadLetters) Add(task domain.Task, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters = append(s.letters, DeadLetter{
		ID:       uuid.NewString(),
		Task:     task,
		Reason:   reason,
		FailedAt: s.now(),
	})
	if len(s.letters) > s.cap {
		s.letters = s.letters[len(s.letters)-s.cap:]
	}
}

func (s *memoryDeadLetters) List() []DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DeadLetter(nil), s.letters...)
}
