package sdk

import "github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrConflict         = domain.ErrConflict
	ErrValidation       = domain.ErrValidation
	ErrIndexUnavailable = domain.ErrIndexUnavailable
)
