package score

import (
	"fmt"
	"math"
)

// Profile holds a user's preference weights for subjective match criteria.
// Each weight is in [0,1]; a zero weight removes the criterion entirely.
// Profiles are fetched from the external profile service and never persisted
// here.
type Profile struct {
	vastuImportance float64
	climateAversion float64
	budgetFit       float64
	popularity      float64
	budgetMax       float64 // 0 = no budget preference
}

// NewProfile validates and creates a preference profile.
func NewProfile(vastuImportance, climateAversion, budgetFit, popularity, budgetMax float64) (Profile, error) {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"vastu_importance", vastuImportance},
		{"climate_aversion", climateAversion},
		{"budget_fit", budgetFit},
		{"popularity", popularity},
	} {
		if w.value < 0 || w.value > 1 {
			return Profile{}, fmt.Errorf("weight %s must be in [0,1], got %v", w.name, w.value)
		}
	}
	if budgetMax < 0 {
		return Profile{}, fmt.Errorf("budget_max must be non-negative, got %v", budgetMax)
	}
	return Profile{
		vastuImportance: vastuImportance,
		climateAversion: climateAversion,
		budgetFit:       budgetFit,
		popularity:      popularity,
		budgetMax:       budgetMax,
	}, nil
}

// IsEmpty reports whether every weight is zero, i.e. the profile expresses
// no preference and personalization is skipped.
func (p Profile) IsEmpty() bool {
	return p.vastuImportance == 0 && p.climateAversion == 0 && p.budgetFit == 0 && p.popularity == 0
}

// Inputs are the per-property values the scorer combines.
type Inputs struct {
	VastuScore  float64 // 0-100, higher is better
	ClimateRisk float64 // 0-100, higher is worse
	Price       float64
	Views       int64
	Favorites   int64
}

// OverallMatch computes the composite match score in [0,100].
//
// Each sub-score is normalized to 0-100, weighted by the profile, and the
// weighted sum is re-normalized by the total weight. The result is strictly
// increasing in any sub-score whose weight is positive, holding the others
// fixed. An empty profile scores 0 (callers must not attach it).
func OverallMatch(p Profile, in Inputs) float64 {
	totalWeight := p.vastuImportance + p.climateAversion + p.budgetFit + p.popularity
	if totalWeight == 0 {
		return 0
	}

	sum := p.vastuImportance*clamp100(in.VastuScore) +
		p.climateAversion*(100-clamp100(in.ClimateRisk)) +
		p.budgetFit*budgetSubScore(in.Price, p.budgetMax) +
		p.popularity*popularitySubScore(in.Views, in.Favorites)

	return clamp100(sum / totalWeight)
}

// budgetSubScore is 100 for properties at or under budget and decays with
// the overshoot ratio. Without a budget it is neutral.
func budgetSubScore(price, budgetMax float64) float64 {
	if budgetMax <= 0 || price <= 0 {
		return 50
	}
	if price <= budgetMax {
		return 100
	}
	return clamp100(100 * budgetMax / price)
}

// popularitySubScore maps unbounded engagement counters onto 0-100 with a
// saturating log curve. Favorites count double.
func popularitySubScore(views, favorites int64) float64 {
	if views < 0 {
		views = 0
	}
	if favorites < 0 {
		favorites = 0
	}
	raw := math.Log1p(float64(views) + 2*float64(favorites))
	// log1p(e^5 - 1) = 5 caps out around 147 weighted engagements
	return clamp100(raw / 5 * 100)
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
