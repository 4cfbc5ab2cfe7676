package health

import "context"

// StorePinger checks index store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// SourcePinger checks property source availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}
