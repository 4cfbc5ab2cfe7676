package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/queue"
)

// propertyGetter reads single properties from the canonical store.
type propertyGetter interface {
	Get(ctx context.Context, id string) (domain.Property, error)
}

// NewTaskHandler builds the worker pool handler that applies queued tasks
// through the index writer. Every applied write invalidates cached results
// that contain the property.
func NewTaskHandler(src propertyGetter, writer Writer, results Invalidator) queue.Handler {
	return func(ctx context.Context, task domain.Task) error {
		if !task.Action.IsValid() || task.EntityID == "" {
			return fmt.Errorf("task %q/%q: %w", task.EntityID, task.Action, domain.ErrValidation)
		}

		var err error
		switch task.Action {
		case domain.ActionIndex:
			err = applyIndex(ctx, src, writer, task.EntityID)
		case domain.ActionUpdate:
			err = applyUpdate(ctx, src, writer, task.EntityID)
		case domain.ActionDelete:
			err = writer.Delete(ctx, task.EntityID)
		}
		if err != nil {
			return err
		}

		results.InvalidateProperty(task.EntityID)
		return nil
	}
}

// applyIndex projects the property into the index. A property gone from the
// source is removed instead; the task was enqueued before the deletion won.
func applyIndex(ctx context.Context, src propertyGetter, writer Writer, id string) error {
	p, err := src.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return writer.Delete(ctx, id)
		}
		return fmt.Errorf("fetch property %s: %w", id, err)
	}
	return writer.Upsert(ctx, domain.NewIndexDocument(&p))
}

// applyUpdate partially updates the engagement counters. If the document is
// not indexed yet the full document is written instead.
func applyUpdate(ctx context.Context, src propertyGetter, writer Writer, id string) error {
	p, err := src.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return writer.Delete(ctx, id)
		}
		return fmt.Errorf("fetch property %s: %w", id, err)
	}
	err = writer.PartialUpdate(ctx, id, domain.EngagementFields(&p))
	if errors.Is(err, domain.ErrNotFound) {
		return writer.Upsert(ctx, domain.NewIndexDocument(&p))
	}
	return err
}
