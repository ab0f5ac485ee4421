package services

import (
	"daily-routine-service/internal/domain"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrNoRoutableStops = errors.New("no stops with coordinates")

var (
	mobileUserAgent = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	iosUserAgent    = regexp.MustCompile(`iPad|iPhone|iPod`)
)

func routableStops(activities []domain.ScheduledActivity) []domain.ScheduledActivity {
	out := make([]domain.ScheduledActivity, 0, len(activities))
	for _, a := range activities {
		if a.Coords != nil {
			out = append(out, a)
		}
	}
	return out
}

func latLon(c *domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// GoogleMapsURL builds a directions link through every stop with coordinates,
// or a point query when there is only one.
func GoogleMapsURL(activities []domain.ScheduledActivity) (string, error) {
	stops := routableStops(activities)
	if len(stops) == 0 {
		return "", ErrNoRoutableStops
	}
	if len(stops) == 1 {
		return "https://maps.google.com/maps?q=" + latLon(stops[0].Coords), nil
	}

	var b strings.Builder
	b.WriteString("https://maps.google.com/maps/dir")
	for _, s := range stops {
		b.WriteString("/")
		b.WriteString(latLon(s.Coords))
	}
	return b.String(), nil
}

// AppleMapsURL links from the first to the last stop; Apple Maps has no waypoints.
func AppleMapsURL(activities []domain.ScheduledActivity) (string, error) {
	stops := routableStops(activities)
	if len(stops) == 0 {
		return "", ErrNoRoutableStops
	}
	if len(stops) == 1 {
		return "maps://maps.apple.com/?q=" + latLon(stops[0].Coords), nil
	}

	origin, dest := stops[0], stops[len(stops)-1]
	return fmt.Sprintf("maps://maps.apple.com/?saddr=%s&daddr=%s&dirflg=d", latLon(origin.Coords), latLon(dest.Coords)), nil
}

// RouteURL picks Apple Maps for iOS devices and Google Maps otherwise.
func RouteURL(activities []domain.ScheduledActivity, userAgent string) (string, error) {
	if mobileUserAgent.MatchString(userAgent) && iosUserAgent.MatchString(userAgent) {
		return AppleMapsURL(activities)
	}
	return GoogleMapsURL(activities)
}

// RouteDescription renders a shareable plain-text itinerary.
func RouteDescription(activities []domain.ScheduledActivity) string {
	stops := routableStops(activities)
	if len(stops) == 0 {
		return "No valid stops in route"
	}

	var b strings.Builder
	b.WriteString("Daily Routine Route:\n\n")
	for i, s := range stops {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, s.StartTime, s.CategoryName)
		fmt.Fprintf(&b, "   📍 %s\n\n", s.Location)
	}
	return b.String()
}
