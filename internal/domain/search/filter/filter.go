package filter

import "fmt"

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Expression is a conjunction of filter conditions. Every condition must
// match for a document to be included.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(conditions ...Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{conditions: conditions}, nil
}

// With returns a new expression extended by the given conditions.
// The receiver is unchanged.
func (e Expression) With(conditions ...Condition) Expression {
	combined := make([]Condition, 0, len(e.conditions)+len(conditions))
	combined = append(combined, e.conditions...)
	combined = append(combined, conditions...)
	return Expression{conditions: combined}
}

// Conditions returns the conjunction's conditions.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition is a single filter clause: a tag match, a multi-tag match, or a
// numeric range.
type Condition struct {
	key       string
	match     string
	anyOf     []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewAnyOf creates a tag match condition satisfied by any of the values.
func NewAnyOf(key string, values []string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value in any-of filter for key %q", key)
		}
	}
	return Condition{key: key, anyOf: values}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// AnyOf returns the any-of match values.
func (c Condition) AnyOf() []string { return c.anyOf }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is an exact match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsAnyOf reports whether this is an any-of match condition.
func (c Condition) IsAnyOf() bool { return len(c.anyOf) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range. The lower bound is inclusive; the upper bound is
// inclusive unless maxExclusive is set. Nil boundaries are unbounded.
type Range struct {
	min          *float64
	max          *float64
	maxExclusive bool
}

// NewRangeBounds validates and creates a Range with inclusive bounds. At
// least one boundary is required and min must not exceed max.
func NewRangeBounds(min, max *float64) (Range, error) {
	if min == nil && max == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if min != nil && max != nil && *min > *max {
		return Range{}, fmt.Errorf("range min %v exceeds max %v", *min, *max)
	}
	return Range{min: min, max: max}, nil
}

// NewRangeHalfOpen validates and creates a [min, max) range. Adjacent
// half-open ranges partition a value space without double counting the
// boundaries, which facet buckets rely on.
func NewRangeHalfOpen(min, max *float64) (Range, error) {
	r, err := NewRangeBounds(min, max)
	if err != nil {
		return Range{}, err
	}
	r.maxExclusive = max != nil
	return r, nil
}

// Min returns the inclusive lower bound, or nil if unbounded.
func (r Range) Min() *float64 { return r.min }

// Max returns the upper bound, or nil if unbounded.
func (r Range) Max() *float64 { return r.max }

// MaxExclusive reports whether the upper bound is excluded.
func (r Range) MaxExclusive() bool { return r.maxExclusive }

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	if r.min != nil && v < *r.min {
		return false
	}
	if r.max != nil {
		if r.maxExclusive {
			if v >= *r.max {
				return false
			}
		} else if v > *r.max {
			return false
		}
	}
	return true
}
