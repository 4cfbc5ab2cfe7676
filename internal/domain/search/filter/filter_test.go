package filter

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestNewRangeBounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max *float64
		wantErr  bool
	}{
		{"min only", floatPtr(100), nil, false},
		{"max only", nil, floatPtr(500), false},
		{"both", floatPtr(100), floatPtr(500), false},
		{"neither", nil, nil, true},
		{"inverted", floatPtr(500), floatPtr(100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRangeBounds(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRangeBounds() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r, err := NewRangeBounds(floatPtr(500_000), floatPtr(800_000))
	if err != nil {
		t.Fatalf("NewRangeBounds: %v", err)
	}

	tests := []struct {
		v    float64
		want bool
	}{
		{500_000, true},
		{750_000, true},
		{800_000, true},
		{450_000, false},
		{1_200_000, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNewMatch(t *testing.T) {
	if _, err := NewMatch("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("city", ""); err == nil {
		t.Error("expected error for empty value")
	}
	c, err := NewMatch("city", "Boulder, CO")
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !c.IsMatch() || c.IsRange() || c.IsAnyOf() {
		t.Error("condition kind flags wrong for match")
	}
}

func TestNewAnyOf(t *testing.T) {
	if _, err := NewAnyOf("property_type", nil); err == nil {
		t.Error("expected error for empty values")
	}
	if _, err := NewAnyOf("property_type", []string{"house", ""}); err == nil {
		t.Error("expected error for blank value")
	}
	c, err := NewAnyOf("property_type", []string{"house", "condo"})
	if err != nil {
		t.Fatalf("NewAnyOf: %v", err)
	}
	if !c.IsAnyOf() {
		t.Error("IsAnyOf() = false")
	}
}

func TestExpressionWith(t *testing.T) {
	base, _ := NewExpression()
	m, _ := NewMatch("city", "Pune")

	extended := base.With(m)
	if base.IsEmpty() == false {
		t.Error("With mutated the receiver")
	}
	if len(extended.Conditions()) != 1 {
		t.Errorf("extended has %d conditions, want 1", len(extended.Conditions()))
	}
}

func TestNewExpression_TooManyConditions(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewMatch("city", "x")
	}
	if _, err := NewExpression(conds...); err == nil {
		t.Error("expected error for too many conditions")
	}
}
