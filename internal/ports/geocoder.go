package ports

import (
	"context"
	"daily-routine-service/internal/domain"
)

// Contract for resolving addresses to coordinates.
//
// The result is positionally aligned with addresses; entries are nil for
// blank or unresolvable addresses.
type Geocoder interface {
	Geocode(ctx context.Context, addresses []string) ([]*domain.Coordinates, error)
}

// Persistent address -> coordinates cache consulted before a Geocoder.
type GeocodeCache interface {
	// Return the cached subset of addresses, keyed by address.
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
