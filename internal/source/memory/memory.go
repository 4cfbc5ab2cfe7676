// Package memory is an in-memory property source for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/score"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/source"
)

var _ source.Source = (*Source)(nil)

// Source holds properties in a map. All listing methods order by ID so pages
// are stable across calls.
type Source struct {
	mu       sync.RWMutex
	props    map[string]domain.Property
	profiles map[string]score.Profile

	// now is swappable for tests.
	now func() time.Time
}

// New creates an empty in-memory source.
func New() *Source {
	return &Source{
		props:    make(map[string]domain.Property),
		profiles: make(map[string]score.Profile),
		now:      time.Now,
	}
}

// SetClock replaces the source's clock (test-only).
func (s *Source) SetClock(now func() time.Time) { s.now = now }

// Put inserts or replaces a property.
func (s *Source) Put(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[p.ID] = p
}

// Remove deletes a property, simulating a canonical-store deletion.
func (s *Source) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.props, id)
}

// Ping always succeeds; the in-memory source has no remote dependency.
func (s *Source) Ping(_ context.Context) error { return nil }

// PutProfile registers a user preference profile.
func (s *Source) PutProfile(userID string, p score.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p
}

// Profile returns the user's preference profile, or domain.ErrNotFound for
// users that never set one.
func (s *Source) Profile(_ context.Context, userID string) (score.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return score.Profile{}, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	return p, nil
}

// Len returns the number of properties.
func (s *Source) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.props)
}

func (s *Source) Get(_ context.Context, id string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.props[id]
	if !ok {
		return domain.Property{}, fmt.Errorf("property %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Source) List(_ context.Context, offset, limit int) ([]domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	if offset > len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]domain.Property(nil), all[offset:end]...), nil
}

func (s *Source) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.props))
	for id := range s.props {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Source) ModifiedSince(_ context.Context, since time.Time) ([]domain.Property, error) {
	return s.filter(func(p domain.Property) bool {
		return !p.UpdatedAt.Before(since)
	}), nil
}

func (s *Source) VastuAnalyzedSince(_ context.Context, since time.Time) ([]domain.Property, error) {
	return s.filter(func(p domain.Property) bool {
		return !p.VastuAnalyzedAt.IsZero() && !p.VastuAnalyzedAt.Before(since)
	}), nil
}

func (s *Source) ReportsExpiringWithin(_ context.Context, lookahead time.Duration) ([]domain.Property, error) {
	deadline := s.now().Add(lookahead)
	return s.filter(func(p domain.Property) bool {
		return !p.ReportExpiresAt.IsZero() && p.ReportExpiresAt.Before(deadline)
	}), nil
}

func (s *Source) EngagementChangedSince(_ context.Context, since time.Time) ([]domain.Property, error) {
	return s.filter(func(p domain.Property) bool {
		return !p.EngagementSyncAt.IsZero() && !p.EngagementSyncAt.Before(since)
	}), nil
}

func (s *Source) filter(keep func(domain.Property) bool) []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Property
	for _, p := range s.sortedLocked() {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Source) sortedLocked() []domain.Property {
	all := make([]domain.Property, 0, len(s.props))
	for _, p := range s.props {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
