package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/source"
)

// kvStore is the KV capability used for watermarks and the known-ID snapshot.
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Changes is the delta between the canonical store and the index since the
// last pass. Created and Updated may overlap with already-indexed properties;
// re-indexing them is harmless. A property is never missing from the delta.
type Changes struct {
	Created    []domain.Property
	Updated    []domain.Property
	DeletedIDs []string

	// LiveIDs is the full canonical ID set observed while computing the
	// delta. Commit it as the new known-ID snapshot once the delta has
	// been applied.
	LiveIDs []string
}

// Detector derives change sets from the source's modified-since reads plus a
// persisted known-ID snapshot. Deletions are the snapshot minus the live set.
type Detector struct {
	src    source.Source
	kv     kvStore
	keys   keys.Scheme
	buffer time.Duration
}

// NewDetector creates a change detector. buffer widens every modified-since
// window so clock skew between this service and the source cannot drop
// changes; duplicates are absorbed by idempotent re-indexing.
func NewDetector(src source.Source, kv kvStore, scheme keys.Scheme, buffer time.Duration) *Detector {
	return &Detector{src: src, kv: kv, keys: scheme, buffer: buffer}
}

// Watermark returns the persisted high-water mark of a pass, or the zero
// time if the pass has never completed.
func (d *Detector) Watermark(ctx context.Context, pass string) (time.Time, error) {
	data, err := d.kv.Get(ctx, d.keys.Watermark(pass))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("read watermark %s: %v: %w", pass, err, domain.ErrIndexUnavailable)
	}
	wm, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark %s: %w", pass, err)
	}
	return wm, nil
}

// SetWatermark persists a pass's high-water mark.
func (d *Detector) SetWatermark(ctx context.Context, pass string, t time.Time) error {
	data := []byte(t.UTC().Format(time.RFC3339Nano))
	if err := d.kv.Set(ctx, d.keys.Watermark(pass), data); err != nil {
		return fmt.Errorf("write watermark %s: %v: %w", pass, err, domain.ErrIndexUnavailable)
	}
	return nil
}

// Since computes the modified-since bound for a pass: the watermark widened
// by the safety buffer, or one full interval back on the first run.
func (d *Detector) Since(ctx context.Context, pass string, interval time.Duration, now time.Time) (time.Time, error) {
	wm, err := d.Watermark(ctx, pass)
	if err != nil {
		return time.Time{}, err
	}
	if wm.IsZero() {
		wm = now.Add(-interval)
	}
	return wm.Add(-d.buffer), nil
}

// ChangesSince computes the full delta since the given bound. Created are
// modified properties absent from the known-ID snapshot, Updated the rest;
// DeletedIDs are snapshot entries no longer present in the canonical store.
func (d *Detector) ChangesSince(ctx context.Context, since time.Time) (Changes, error) {
	modified, err := d.src.ModifiedSince(ctx, since)
	if err != nil {
		return Changes{}, fmt.Errorf("modified since %s: %w", since.Format(time.RFC3339), err)
	}
	live, err := d.src.ListIDs(ctx)
	if err != nil {
		return Changes{}, fmt.Errorf("list ids: %w", err)
	}
	known, err := d.KnownIDs(ctx)
	if err != nil {
		return Changes{}, err
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}
	liveSet := make(map[string]struct{}, len(live))
	for _, id := range live {
		liveSet[id] = struct{}{}
	}

	var ch Changes
	ch.LiveIDs = live
	for _, p := range modified {
		if _, ok := knownSet[p.ID]; ok {
			ch.Updated = append(ch.Updated, p)
		} else {
			ch.Created = append(ch.Created, p)
		}
	}
	for _, id := range known {
		if _, ok := liveSet[id]; !ok {
			ch.DeletedIDs = append(ch.DeletedIDs, id)
		}
	}
	return ch, nil
}

// KnownIDs returns the persisted indexed-property ID snapshot.
func (d *Detector) KnownIDs(ctx context.Context) ([]string, error) {
	data, err := d.kv.Get(ctx, d.keys.KnownIDs())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read known ids: %v: %w", err, domain.ErrIndexUnavailable)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse known ids: %w", err)
	}
	return ids, nil
}

// CommitKnownIDs persists the indexed-property ID snapshot.
func (d *Detector) CommitKnownIDs(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode known ids: %w", err)
	}
	if err := d.kv.Set(ctx, d.keys.KnownIDs(), data); err != nil {
		return fmt.Errorf("write known ids: %v: %w", err, domain.ErrIndexUnavailable)
	}
	return nil
}
