package queue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// Handler applies one indexing task. A nil return acknowledges the task;
// a domain.ErrValidation error dead-letters it immediately; any other error
// schedules a retry with backoff.
type Handler func(ctx context.Context, task domain.Task) error

// PoolMetrics receives worker outcome counts.
type PoolMetrics interface {
	TaskSucceeded(action string)
	TaskRetried(action string)
	TaskDeadLettered(action string)
}

// NopPoolMetrics discards all worker metrics.
type NopPoolMetrics struct{}

func (NopPoolMetrics) TaskSucceeded(string)    {}
func (NopPoolMetrics) TaskRetried(string)      {}
func (NopPoolMetrics) TaskDeadLettered(string) {}

// PoolConfig tunes the worker pool.
type PoolConfig struct {
	Workers     int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (c *PoolConfig) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = time.Minute
	}
}

// Pool runs a fixed set of workers draining the queue.
type Pool struct {
	cfg         PoolConfig
	queue       Queue
	handler     Handler
	deadLetters DeadLetterSink
	metrics     PoolMetrics
	logger      *zap.Logger
}

// NewPool creates a worker pool.
func NewPool(cfg PoolConfig, q Queue, h Handler, dls DeadLetterSink, m PoolMetrics, logger *zap.Logger) *Pool {
	cfg.applyDefaults()
	if m == nil {
		m = NopPoolMetrics{}
	}
	return &Pool{
		cfg:         cfg,
		queue:       q,
		handler:     h,
		deadLetters: dls,
		metrics:     m,
		logger:      logger,
	}
}

// Run blocks until the context is canceled or the queue closes.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		g.Go(func() error { return p.worker(ctx) })
	}
	return g.Wait()
}

func (p *Pool) worker(ctx context.Context) error {
	for {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		p.process(ctx, task)
	}
}

func (p *Pool) process(ctx context.Context, task domain.Task) {
	err := p.handler(ctx, task)
	if err == nil {
		p.queue.Ack(task.EntityID)
		p.metrics.TaskSucceeded(string(task.Action))
		return
	}

	attempt := task.Attempts + 1
	switch {
	case errors.Is(err, domain.ErrValidation):
		// Malformed input never succeeds on retry.
		p.deadLetter(task, err)
	case attempt >= p.cfg.MaxAttempts:
		p.deadLetter(task, err)
	default:
		delay := p.backoff(attempt)
		p.logger.Warn("indexing task failed, will retry",
			zap.String("property_id", task.EntityID),
			zap.String("action", string(task.Action)),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))
		p.queue.Nack(task, delay)
		p.metrics.TaskRetried(string(task.Action))
	}
}

func (p *Pool) deadLetter(task domain.Task, err error) {
	p.logger.Error("indexing task dead-lettered",
		zap.String("property_id", task.EntityID),
		zap.String("action", string(task.Action)),
		zap.Int("attempts", task.Attempts+1),
		zap.Error(err))
	p.deadLetters.Add(task, err.Error())
	p.queue.Ack(task.EntityID)
	p.metrics.TaskDeadLettered(string(task.Action))
}

// backoff doubles per attempt: base, 2*base, 4*base, capped.
func (p *Pool) backoff(attempt int) time.Duration {
	d := p.cfg.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.cfg.MaxBackoff {
			return p.cfg.MaxBackoff
		}
	}
	return d
}
