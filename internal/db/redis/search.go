package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
)

const (
	keyAttr  = "__key"
	distAttr = "__dist"
	cntAttr  = "__count"

	// groupCountLimit caps GROUPBY rows. Facet fields have low cardinality
	// so this is never hit in practice.
	groupCountLimit = "10000"
)

// Search runs FT.SEARCH (or FT.AGGREGATE when sorting by distance) and
// returns matching documents with the total match count.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.SortByDistance {
		if q.Geo == nil {
			return nil, db.ErrGeoFilterRequired
		}
		return s.searchByDistance(ctx, q)
	}

	query := buildQueryString(q.Filters, q.Geo)
	args := []string{q.IndexName, query}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	if q.SortBy != "" {
		dir := "ASC"
		if q.SortDesc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, dir)
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	res, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndexErr(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseSearchReply(res)
}

// searchByDistance runs FT.AGGREGATE with a geodistance APPLY so results come
// back nearest-first. The total is taken from a separate count since aggregate
// replies only cover the requested page.
func (s *Store) searchByDistance(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	total, err := s.Count(ctx, &db.CountQuery{IndexName: q.IndexName, Filters: q.Filters, Geo: q.Geo})
	if err != nil {
		return nil, err
	}

	query := buildQueryString(q.Filters, q.Geo)
	apply := fmt.Sprintf("geodistance(@location,%s,%s)",
		formatCoord(q.Geo.Lon), formatCoord(q.Geo.Lat))
	args := []string{
		q.IndexName, query,
		"LOAD", "*",
		"LOAD", "1", "@" + keyAttr,
		"APPLY", apply, "AS", distAttr,
		"SORTBY", "2", "@" + distAttr, "ASC",
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	res, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndexErr(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	entries, err := parseAggregateRows(res)
	if err != nil {
		return nil, err
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// Count returns the number of matching documents without fetching any.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int, error) {
	query := buildQueryString(q.Filters, q.Geo)
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.IndexName, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	res, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndexErr(err) {
			return 0, db.ErrIndexNotFound
		}
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(res) == 0 {
		return 0, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty search reply")}
	}
	total, err := res[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	return int(total), nil
}

// GroupCount returns per-value document counts for a tag field.
func (s *Store) GroupCount(ctx context.Context, q *db.GroupCountQuery) (map[string]int, error) {
	query := buildQueryString(q.Filters, q.Geo)
	args := []string{
		q.IndexName, query,
		"GROUPBY", "1", "@" + q.GroupBy,
		"REDUCE", "COUNT", "0", "AS", cntAttr,
		"LIMIT", "0", groupCountLimit,
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	res, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndexErr(err) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	counts := make(map[string]int)
	for _, row := range res[1:] {
		fields, err := parseFieldPairs(row)
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: err}
		}
		value, ok := fields[q.GroupBy]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(fields[cntAttr])
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: err}
		}
		counts[value] = n
	}
	return counts, nil
}

// parseSearchReply decodes a RESP2 FT.SEARCH reply: total followed by
// alternating key and field-array entries.
func parseSearchReply(res []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(res) == 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty search reply")}
	}
	total, err := res[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := &db.SearchResult{Total: int(total)}
	rest := res[1:]
	if len(rest)%2 != 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("malformed search reply: %d trailing elements", len(rest))}
	}
	for i := 0; i < len(rest); i += 2 {
		key, err := rest[i].ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
		fields, err := parseFieldPairs(rest[i+1])
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
		delete(fields, revField)
		out.Entries = append(out.Entries, db.SearchEntry{Key: key, Fields: fields})
	}
	return out, nil
}

// parseAggregateRows decodes FT.AGGREGATE rows carrying __key and __dist.
func parseAggregateRows(res []rueidis.RedisMessage) ([]db.SearchEntry, error) {
	if len(res) == 0 {
		return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("empty aggregate reply")}
	}

	entries := make([]db.SearchEntry, 0, len(res)-1)
	for _, row := range res[1:] {
		fields, err := parseFieldPairs(row)
		if err != nil {
			return nil, &db.Error{Op: db.OpAggregate, Err: err}
		}

		entry := db.SearchEntry{Key: fields[keyAttr]}
		if raw, ok := fields[distAttr]; ok {
			dist, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &db.Error{Op: db.OpAggregate, Err: err}
			}
			entry.DistanceMeters = dist
			entry.HasDistance = true
		}
		delete(fields, keyAttr)
		delete(fields, distAttr)
		delete(fields, revField)
		entry.Fields = fields
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseFieldPairs decodes an alternating name/value array into a map,
// skipping nil values.
func parseFieldPairs(msg rueidis.RedisMessage) (map[string]string, error) {
	arr, err := msg.ToArray()
	if err != nil {
		return nil, err
	}
	if len(arr)%2 != 0 {
		return nil, fmt.Errorf("malformed field array: %d elements", len(arr))
	}
	fields := make(map[string]string, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		name, err := arr[i].ToString()
		if err != nil {
			return nil, err
		}
		if arr[i+1].IsNil() {
			continue
		}
		value, err := arr[i+1].ToString()
		if err != nil {
			return nil, err
		}
		fields[name] = value
	}
	return fields, nil
}

// buildQueryString renders a filter expression plus optional geo radius into
// RediSearch query syntax. An unconstrained query matches everything.
func buildQueryString(f filter.Expression, geo *db.GeoFilter) string {
	var parts []string
	for _, c := range f.Conditions() {
		switch {
		case c.IsMatch():
			parts = append(parts, fmt.Sprintf("@%s:{%s}", c.Key(), escapeTag(c.Match())))
		case c.IsAnyOf():
			escaped := make([]string, len(c.AnyOf()))
			for i, v := range c.AnyOf() {
				escaped[i] = escapeTag(v)
			}
			parts = append(parts, fmt.Sprintf("@%s:{%s}", c.Key(), strings.Join(escaped, "|")))
		case c.IsRange():
			r := c.Range()
			max := formatBound(r.Max(), "+inf")
			if r.Max() != nil && r.MaxExclusive() {
				max = "(" + max
			}
			parts = append(parts, fmt.Sprintf("@%s:[%s %s]",
				c.Key(), formatBound(r.Min(), "-inf"), max))
		}
	}
	if geo != nil {
		parts = append(parts, fmt.Sprintf("@location:[%s %s %s m]",
			formatCoord(geo.Lon), formatCoord(geo.Lat), formatCoord(geo.RadiusMeters)))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func formatBound(v *float64, unbounded string) string {
	if v == nil {
		return unbounded
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeTag backslash-escapes everything RediSearch treats as syntax inside
// a TAG clause, so values like "Boulder, CO" match literally.
func escapeTag(v string) string {
	var sb strings.Builder
	sb.Grow(len(v) + 4)
	for _, r := range v {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
