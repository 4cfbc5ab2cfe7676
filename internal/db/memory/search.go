package memory

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"strings"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/geo"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
)

type hit struct {
	key      string
	fields   map[string]string
	distance float64
	hasDist  bool
}

// Search evaluates the query against all documents under the index prefixes.
func (s *Store) Search(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.SortByDistance && q.Geo == nil {
		return nil, db.ErrGeoFilterRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}

	hits := s.matchLocked(def, q.Filters, q.Geo)

	switch {
	case q.SortByDistance:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
	case q.SortBy != "":
		sortField := q.SortBy
		desc := q.SortDesc
		sort.SliceStable(hits, func(i, j int) bool {
			a, _ := strconv.ParseFloat(hits[i].fields[sortField], 64)
			b, _ := strconv.ParseFloat(hits[j].fields[sortField], 64)
			if desc {
				return a > b
			}
			return a < b
		})
	default:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].key < hits[j].key })
	}

	total := len(hits)
	start := q.Offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	out := &db.SearchResult{Total: total}
	for _, h := range hits[start:end] {
		fields := make(map[string]string, len(h.fields))
		maps.Copy(fields, h.fields)
		delete(fields, revField)
		if len(q.ReturnFields) > 0 {
			projected := make(map[string]string, len(q.ReturnFields))
			for _, f := range q.ReturnFields {
				if v, ok := fields[f]; ok {
					projected[f] = v
				}
			}
			fields = projected
		}
		out.Entries = append(out.Entries, db.SearchEntry{
			Key:            h.key,
			Fields:         fields,
			DistanceMeters: h.distance,
			HasDistance:    h.hasDist,
		})
	}
	return out, nil
}

// Count returns the number of matching documents.
func (s *Store) Count(_ context.Context, q *db.CountQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[q.IndexName]
	if !ok {
		return 0, db.ErrIndexNotFound
	}
	return len(s.matchLocked(def, q.Filters, q.Geo)), nil
}

// GroupCount returns per-tag-value document counts for the filtered universe.
func (s *Store) GroupCount(_ context.Context, q *db.GroupCountQuery) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}

	sep := tagSeparator(def, q.GroupBy)
	counts := make(map[string]int)
	for _, h := range s.matchLocked(def, q.Filters, q.Geo) {
		raw, ok := h.fields[q.GroupBy]
		if !ok || raw == "" {
			continue
		}
		for _, tag := range splitTags(raw, sep) {
			counts[tag]++
		}
	}
	return counts, nil
}

// matchLocked collects all documents under the index prefixes satisfying the
// filter expression and geo constraint. Caller holds at least a read lock.
func (s *Store) matchLocked(def *db.IndexDefinition, f filter.Expression, g *db.GeoFilter) []hit {
	var hits []hit
	for key, doc := range s.docs {
		if !keyMatchesPrefixes(key, def.Prefixes) {
			continue
		}
		if !matchesExpression(def, doc, f) {
			continue
		}

		h := hit{key: key, fields: doc}
		if g != nil {
			lat, lon, ok := parseGeoField(doc["location"])
			if !ok {
				continue
			}
			d := geo.Haversine(g.Lat, g.Lon, lat, lon)
			if d > g.RadiusMeters {
				continue
			}
			h.distance = d
			h.hasDist = true
		}
		hits = append(hits, h)
	}
	return hits
}

func matchesExpression(def *db.IndexDefinition, doc map[string]string, f filter.Expression) bool {
	for _, c := range f.Conditions() {
		raw, ok := doc[c.Key()]
		if !ok {
			return false
		}
		switch {
		case c.IsMatch():
			if !tagsContain(raw, tagSeparator(def, c.Key()), c.Match()) {
				return false
			}
		case c.IsAnyOf():
			sep := tagSeparator(def, c.Key())
			matched := false
			for _, v := range c.AnyOf() {
				if tagsContain(raw, sep, v) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case c.IsRange():
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return false
			}
			if !c.Range().Contains(v) {
				return false
			}
		}
	}
	return true
}

func tagSeparator(def *db.IndexDefinition, fieldName string) string {
	if f, ok := def.FieldByName(fieldName); ok && f.Type == db.IndexFieldTag && f.TagSeparator != "" {
		return f.TagSeparator
	}
	return ","
}

func splitTags(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Tag matching is case-insensitive, like the redis backend's default.
func tagsContain(raw, sep, want string) bool {
	for _, tag := range splitTags(raw, sep) {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

// parseGeoField decodes a "lon,lat" geo point.
func parseGeoField(raw string) (lat, lon float64, ok bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
