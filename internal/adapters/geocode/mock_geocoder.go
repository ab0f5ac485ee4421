package geocode

import (
	"context"
	"daily-routine-service/internal/domain"
	"strings"
	"unicode/utf16"
)

// Bounds is a lat/lon box that mock coordinates are placed in.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// PuertoPenasco keeps generated points inside the city's urban area.
var PuertoPenasco = Bounds{
	MinLat: 31.315,
	MaxLat: 31.335,
	MinLon: -113.545,
	MaxLon: -113.525,
}

// MockGeocoder derives stable pseudo-coordinates from the address text.
// The same address (case-insensitive) always maps to the same point.
type MockGeocoder struct {
	Bounds Bounds
}

func NewMockGeocoder(b Bounds) *MockGeocoder {
	return &MockGeocoder{Bounds: b}
}

func (m *MockGeocoder) Geocode(ctx context.Context, addresses []string) ([]*domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Coordinates, len(addresses))
	for i, a := range addresses {
		if strings.TrimSpace(a) == "" {
			continue
		}
		c := m.coordinatesFor(a)
		out[i] = &c
	}
	return out, nil
}

func (m *MockGeocoder) coordinatesFor(address string) domain.Coordinates {
	h := addressHash(strings.ToLower(address))

	latOffset := float64(h%1000) / 1000
	lonOffset := float64((int64(int32(uint32(h))>>10))%1000) / 1000

	return domain.Coordinates{
		Lat: m.Bounds.MinLat + latOffset*(m.Bounds.MaxLat-m.Bounds.MinLat),
		Lon: m.Bounds.MinLon + lonOffset*(m.Bounds.MaxLon-m.Bounds.MinLon),
	}
}

// addressHash is the classic 31-multiplier string hash over UTF-16 code
// units with 32-bit wraparound, returned as an absolute value.
func addressHash(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
