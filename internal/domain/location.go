package domain

import "fmt"

type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// FallbackString renders the coordinates the way the UI shows them when
// reverse geocoding is unavailable.
func (l Location) FallbackString() string {
	return fmt.Sprintf("%.4f, %.4f", l.Latitude, l.Longitude)
}

// MapURL returns a shareable map link for the coordinates.
func (l Location) MapURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", l.Latitude, l.Longitude)
}

// SameCoordinates reports whether two fixes are close enough to reuse
// cached results computed for the other.
func (l Location) SameCoordinates(o Location) bool {
	const eps = 1e-4
	return abs(l.Latitude-o.Latitude) < eps && abs(l.Longitude-o.Longitude) < eps
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
