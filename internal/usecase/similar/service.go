// Package similar implements the similarity finder: for a reference listing
// it returns comparable listings in the same market segment.
package similar

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// priceBandRatio bounds candidates to ±25% of the reference price.
const priceBandRatio = 0.25

// candidateFetchFactor over-fetches candidates so the reference itself and
// low-scoring outliers can be dropped without a second query.
const candidateFetchFactor = 3

// Service finds properties similar to a reference property.
type Service struct {
	docs   DocumentReader
	finder Finder
}

// New creates a similarity service.
func New(docs DocumentReader, finder Finder) *Service {
	return &Service{docs: docs, finder: finder}
}

// Similar returns up to Count properties comparable to the reference:
// same city and type, price within ±25%. The reference itself is never
// among the results.
func (s *Service) Similar(ctx context.Context, req *request.Similar) (result.Similar, error) {
	doc, err := s.docs.Get(ctx, req.PropertyID())
	if err != nil {
		return result.Similar{}, fmt.Errorf("reference property: %w", err)
	}
	ref, err := result.HitFromFields(doc.ID, doc.Fields)
	if err != nil {
		return result.Similar{}, fmt.Errorf("reference property: %w", err)
	}

	expr, err := candidateExpression(ref)
	if err != nil {
		return result.Similar{}, err
	}

	fetch := req.Count()*candidateFetchFactor + 1
	_, candidates, err := s.finder.Find(ctx, expr, nil, 0, fetch)
	if err != nil {
		return result.Similar{}, fmt.Errorf("find candidates: %w", err)
	}

	scored := make([]result.SimilarProperty, 0, len(candidates))
	for _, c := range candidates {
		if c.PropertyID == ref.PropertyID {
			continue
		}
		score, reasons := similarity(ref, c)
		scored = append(scored, result.SimilarProperty{
			PropertyID:      c.PropertyID,
			SimilarityScore: score,
			Reasons:         reasons,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	if len(scored) > req.Count() {
		scored = scored[:req.Count()]
	}

	return result.Similar{ReferenceProperty: ref, SimilarProperties: scored}, nil
}

// candidateExpression restricts the candidate pool to the reference's market
// segment: same city, same type, price within the band.
func candidateExpression(ref result.PropertyHit) (filter.Expression, error) {
	city, err := filter.NewMatch(domain.FieldCity, ref.Address.City)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("candidate filter: %w", err)
	}
	ptype, err := filter.NewMatch(domain.FieldPropertyType, ref.BasicInfo.PropertyType)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("candidate filter: %w", err)
	}

	min := ref.BasicInfo.Price * (1 - priceBandRatio)
	max := ref.BasicInfo.Price * (1 + priceBandRatio)
	band, err := filter.NewRangeBounds(&min, &max)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("candidate filter: %w", err)
	}
	price, err := filter.NewRange(domain.FieldPrice, band)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("candidate filter: %w", err)
	}

	return filter.NewExpression(city, ptype, price)
}

// similarity scores a candidate in [0,1]. Candidates already share city,
// type and price band; the score orders them by how close the remaining
// attributes are.
func similarity(ref, c result.PropertyHit) (float64, []string) {
	reasons := []string{"same city", "same property type"}
	score := 0.4 // city + type base

	if ref.BasicInfo.Price > 0 {
		diff := math.Abs(c.BasicInfo.Price-ref.BasicInfo.Price) / (ref.BasicInfo.Price * priceBandRatio)
		if diff > 1 {
			diff = 1
		}
		score += 0.3 * (1 - diff)
		reasons = append(reasons, "similar price")
	}

	switch delta := abs(c.BasicInfo.Bedrooms - ref.BasicInfo.Bedrooms); delta {
	case 0:
		score += 0.2
		reasons = append(reasons, "same bedroom count")
	case 1:
		score += 0.1
	}

	if vdiff := math.Abs(c.Scores.VastuScore - ref.Scores.VastuScore); vdiff <= 10 {
		score += 0.1
		reasons = append(reasons, "similar vastu score")
	}

	return math.Round(score*100) / 100, reasons
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
