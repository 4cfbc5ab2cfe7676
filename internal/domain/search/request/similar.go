package request

import "github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"

// Similarity request bounds.
const (
	DefaultSimilarCount = 5
	MaxSimilarCount     = 20
)

// Similar is a validated similar-properties request.
type Similar struct {
	propertyID string
	count      int
}

// NewSimilar validates a similarity request. A count of 0 selects the
// default.
func NewSimilar(propertyID string, count int) (Similar, error) {
	if propertyID == "" {
		return Similar{}, domain.NewValidationError("property_id", "is required")
	}
	if count == 0 {
		count = DefaultSimilarCount
	}
	if count < 1 || count > MaxSimilarCount {
		return Similar{}, domain.NewValidationError("count", "out of range")
	}
	return Similar{propertyID: propertyID, count: count}, nil
}

// PropertyID returns the reference property id.
func (s Similar) PropertyID() string { return s.propertyID }

// Count returns the requested number of similar properties.
func (s Similar) Count() int { return s.count }
