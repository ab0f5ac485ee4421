package geocode

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements Geocoder using OpenRouteService (/geocode/search).
//
// Distinct addresses are resolved concurrently, bounded by a worker limit
// and a shared request rate. It is safe for concurrent use.
type ORSGeocoder struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	country     string
	limiter     *rate.Limiter
	workers     int
	maxAttempts int
	backoff     time.Duration
}

type ORSOption func(*ORSGeocoder)

func WithBaseURL(u string) ORSOption {
	return func(o *ORSGeocoder) { o.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) ORSOption {
	return func(o *ORSGeocoder) { o.session = c }
}

// WithRateLimit caps outgoing requests per second (burst 1).
func WithRateLimit(perSecond float64) ORSOption {
	return func(o *ORSGeocoder) { o.limiter = rate.NewLimiter(rate.Limit(perSecond), 1) }
}

func WithBackoff(d time.Duration) ORSOption {
	return func(o *ORSGeocoder) { o.backoff = d }
}

func NewORSGeocoder(apiKey, country string, opts ...ORSOption) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     "https://api.openrouteservice.org",
		country:     country,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		workers:     4,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Geocode resolves addresses positionally. Blank addresses and addresses
// with no search result map to nil; transport failures fail the call.
func (o *ORSGeocoder) Geocode(ctx context.Context, addresses []string) (_ []*domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norms := make([]string, len(addresses))
	uniq := make([]string, 0, len(addresses))
	seen := make(map[string]struct{}, len(addresses))
	for i, a := range addresses {
		norms[i] = Normalize(a)
		if norms[i] == "" {
			continue
		}
		if _, ok := seen[norms[i]]; ok {
			continue
		}
		seen[norms[i]] = struct{}{}
		uniq = append(uniq, norms[i])
	}

	var mu sync.Mutex
	found := make(map[string]domain.Coordinates, len(uniq))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, addr := range uniq {
		g.Go(func() error {
			c, ok, err := o.geocodeOne(gctx, addr)
			if err != nil {
				return fmt.Errorf("geocode %q: %w", addr, err)
			}
			if ok {
				mu.Lock()
				found[addr] = c
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*domain.Coordinates, len(addresses))
	for i, n := range norms {
		if c, ok := found[n]; ok {
			out[i] = &c
		}
	}
	return out, nil
}

func (o *ORSGeocoder) geocodeOne(ctx context.Context, addr string) (domain.Coordinates, bool, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", addr)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, false, fmt.Errorf("invalid coordinate format for %q", addr)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, true, nil
}
