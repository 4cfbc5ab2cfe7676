// Package sync keeps the search index converged with the canonical property
// store. A scheduler drives five passes of different cadence; detected
// changes flow through the work queue to the index writer.
package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/source"
)

// Sync pass names. Also the Trigger endpoint's path values.
const (
	PassFull        = "full"
	PassIncremental = "incremental"
	PassVastu       = "vastu"
	PassReports     = "reports"
	PassEngagement  = "engagement"
)

// Config tunes the sync passes.
type Config struct {
	FullInterval        time.Duration
	IncrementalInterval time.Duration
	VastuInterval       time.Duration
	ReportsInterval     time.Duration
	EngagementInterval  time.Duration

	BatchSize       int
	InterBatchDelay time.Duration
	ReportLookahead time.Duration
}

func (c *Config) applyDefaults() {
	if c.FullInterval <= 0 {
		c.FullInterval = 7 * 24 * time.Hour
	}
	if c.IncrementalInterval <= 0 {
		c.IncrementalInterval = time.Hour
	}
	if c.VastuInterval <= 0 {
		c.VastuInterval = 30 * time.Minute
	}
	if c.ReportsInterval <= 0 {
		c.ReportsInterval = 24 * time.Hour
	}
	if c.EngagementInterval <= 0 {
		c.EngagementInterval = 5 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	if c.InterBatchDelay <= 0 {
		c.InterBatchDelay = 200 * time.Millisecond
	}
	if c.ReportLookahead <= 0 {
		c.ReportLookahead = 48 * time.Hour
	}
}

// Service implements the sync passes.
type Service struct {
	cfg      Config
	src      source.Source
	writer   Writer
	scanner  IndexScanner
	queue    TaskQueue
	detector *Detector
	results  Invalidator
	metrics  PassMetrics
	logger   *zap.Logger
	limiter  *rate.Limiter
	now      func() time.Time
}

// New creates the sync service.
func New(cfg Config, src source.Source, writer Writer, scanner IndexScanner, queue TaskQueue,
	detector *Detector, results Invalidator, metrics PassMetrics, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if metrics == nil {
		metrics = NopPassMetrics{}
	}
	return &Service{
		cfg:      cfg,
		src:      src,
		writer:   writer,
		scanner:  scanner,
		queue:    queue,
		detector: detector,
		results:  results,
		metrics:  metrics,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(cfg.InterBatchDelay), 1),
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Schedules returns the pass schedule table for the scheduler.
func (s *Service) Schedules() []Schedule {
	return []Schedule{
		{Name: PassFull, Every: s.cfg.FullInterval, Run: s.FullPass},
		{Name: PassIncremental, Every: s.cfg.IncrementalInterval, Run: s.IncrementalPass},
		{Name: PassVastu, Every: s.cfg.VastuInterval, Run: s.VastuPass},
		{Name: PassReports, Every: s.cfg.ReportsInterval, Run: s.ReportsPass},
		{Name: PassEngagement, Every: s.cfg.EngagementInterval, Run: s.EngagementPass},
	}
}

// FullPass reindexes the entire canonical store in batches, removes documents
// for properties that no longer exist and purges the result cache. One failed
// document never aborts the pass.
func (s *Service) FullPass(ctx context.Context) error {
	started := s.now()
	var indexed, failed int
	live := make([]string, 0, s.cfg.BatchSize)

	for offset := 0; ; offset += s.cfg.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		props, err := s.src.List(ctx, offset, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("list properties at offset %d: %w", offset, err)
		}
		if len(props) == 0 {
			break
		}

		docs := make([]domain.IndexDocument, len(props))
		for i := range props {
			docs[i] = domain.NewIndexDocument(&props[i])
			live = append(live, props[i].ID)
		}
		for _, out := range s.writer.BulkUpsert(ctx, docs) {
			if out.Err != nil {
				failed++
				s.logger.Warn("full reindex: document failed",
					zap.String("property_id", out.PropertyID),
					zap.Error(out.Err))
				continue
			}
			indexed++
		}

		if len(props) < s.cfg.BatchSize {
			break
		}
	}

	deleted, err := s.removeVanished(ctx, live)
	if err != nil {
		return err
	}
	if err := s.detector.CommitKnownIDs(ctx, live); err != nil {
		return err
	}
	if err := s.detector.SetWatermark(ctx, PassFull, started); err != nil {
		return err
	}
	s.results.Purge()

	s.logger.Info("full reindex complete",
		zap.Int("indexed", indexed),
		zap.Int("failed", failed),
		zap.Int("deleted", deleted),
		zap.Duration("duration", s.now().Sub(started)))
	return nil
}

// removeVanished deletes documents present in the index but absent from the
// live id set. Diffing the index itself rather than the known-ID snapshot
// also sweeps orphans the snapshot no longer tracks, such as documents whose
// delete task dead-lettered after the snapshot had already dropped the id.
func (s *Service) removeVanished(ctx context.Context, live []string) (int, error) {
	liveSet := make(map[string]struct{}, len(live))
	for _, id := range live {
		liveSet[id] = struct{}{}
	}

	// Collect ids before deleting: removing documents mid-scan would shift
	// result offsets under the pagination.
	var indexed []string
	for offset := 0; ; offset += s.cfg.BatchSize {
		total, hits, err := s.scanner.Find(ctx, filter.Expression{}, nil, offset, s.cfg.BatchSize)
		if err != nil {
			return 0, fmt.Errorf("scan index at offset %d: %w", offset, err)
		}
		for _, hit := range hits {
			indexed = append(indexed, hit.PropertyID)
		}
		if len(hits) == 0 || offset+len(hits) >= total {
			break
		}
	}

	deleted := 0
	for _, id := range indexed {
		if _, ok := liveSet[id]; ok {
			continue
		}
		if err := s.writer.Delete(ctx, id); err != nil {
			return deleted, fmt.Errorf("delete vanished %s: %w", id, err)
		}
		s.results.InvalidateProperty(id)
		deleted++
	}
	return deleted, nil
}

// IncrementalPass enqueues index tasks for properties modified since the
// last run and delete tasks for properties gone from the canonical store.
func (s *Service) IncrementalPass(ctx context.Context) error {
	now := s.now()
	since, err := s.detector.Since(ctx, PassIncremental, s.cfg.IncrementalInterval, now)
	if err != nil {
		return err
	}
	changes, err := s.detector.ChangesSince(ctx, since)
	if err != nil {
		return err
	}

	indexCount := 0
	for _, p := range changes.Created {
		if err := s.enqueue(ctx, p.ID, domain.ActionIndex); err != nil {
			return err
		}
		indexCount++
	}
	for _, p := range changes.Updated {
		if err := s.enqueue(ctx, p.ID, domain.ActionIndex); err != nil {
			return err
		}
		indexCount++
	}
	for _, id := range changes.DeletedIDs {
		if err := s.enqueue(ctx, id, domain.ActionDelete); err != nil {
			return err
		}
	}
	s.metrics.DocumentsEnqueued(PassIncremental, string(domain.ActionIndex), indexCount)
	s.metrics.DocumentsEnqueued(PassIncremental, string(domain.ActionDelete), len(changes.DeletedIDs))

	// The snapshot is committed when the delete tasks are enqueued, not when
	// they are acked. If one dead-letters, its document lingers in the index
	// with no snapshot entry pointing at it; the full pass catches these by
	// diffing the index contents directly in removeVanished.
	if err := s.detector.CommitKnownIDs(ctx, changes.LiveIDs); err != nil {
		return err
	}
	if err := s.detector.SetWatermark(ctx, PassIncremental, now); err != nil {
		return err
	}

	s.logger.Info("incremental sync enqueued",
		zap.Int("created", len(changes.Created)),
		zap.Int("updated", len(changes.Updated)),
		zap.Int("deleted", len(changes.DeletedIDs)))
	return nil
}

// VastuPass reindexes properties whose vastu analysis completed since the
// last run.
func (s *Service) VastuPass(ctx context.Context) error {
	now := s.now()
	since, err := s.detector.Since(ctx, PassVastu, s.cfg.VastuInterval, now)
	if err != nil {
		return err
	}
	props, err := s.src.VastuAnalyzedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("vastu analyzed since %s: %w", since.Format(time.RFC3339), err)
	}
	if err := s.enqueueAll(ctx, props, domain.ActionIndex); err != nil {
		return err
	}
	s.metrics.DocumentsEnqueued(PassVastu, string(domain.ActionIndex), len(props))
	if err := s.detector.SetWatermark(ctx, PassVastu, now); err != nil {
		return err
	}
	s.logger.Info("vastu sync enqueued", zap.Int("count", len(props)))
	return nil
}

// ReportsPass reindexes properties whose climate report expires within the
// lookahead window, so refreshed reports land before the old ones lapse.
func (s *Service) ReportsPass(ctx context.Context) error {
	now := s.now()
	props, err := s.src.ReportsExpiringWithin(ctx, s.cfg.ReportLookahead)
	if err != nil {
		return fmt.Errorf("reports expiring within %s: %w", s.cfg.ReportLookahead, err)
	}
	if err := s.enqueueAll(ctx, props, domain.ActionIndex); err != nil {
		return err
	}
	s.metrics.DocumentsEnqueued(PassReports, string(domain.ActionIndex), len(props))
	if err := s.detector.SetWatermark(ctx, PassReports, now); err != nil {
		return err
	}
	s.logger.Info("report refresh enqueued", zap.Int("count", len(props)))
	return nil
}

// EngagementPass enqueues partial updates for properties whose view or
// favorite counters changed since the last run.
func (s *Service) EngagementPass(ctx context.Context) error {
	now := s.now()
	since, err := s.detector.Since(ctx, PassEngagement, s.cfg.EngagementInterval, now)
	if err != nil {
		return err
	}
	props, err := s.src.EngagementChangedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("engagement changed since %s: %w", since.Format(time.RFC3339), err)
	}
	if err := s.enqueueAll(ctx, props, domain.ActionUpdate); err != nil {
		return err
	}
	s.metrics.DocumentsEnqueued(PassEngagement, string(domain.ActionUpdate), len(props))
	if err := s.detector.SetWatermark(ctx, PassEngagement, now); err != nil {
		return err
	}
	s.logger.Info("engagement sync enqueued", zap.Int("count", len(props)))
	return nil
}

func (s *Service) enqueueAll(ctx context.Context, props []domain.Property, action domain.Action) error {
	for _, p := range props {
		if err := s.enqueue(ctx, p.ID, action); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueue(ctx context.Context, propertyID string, action domain.Action) error {
	task, err := domain.NewTask(propertyID, action, s.now())
	if err != nil {
		return err
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s %s: %w", action, propertyID, err)
	}
	s.metrics.QueueDepth(s.queue.Len())
	return nil
}
