package attendance

import (
	"fmt"
	"math"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// EarthRadiusMeters is the mean Earth radius used for geofence distances.
const EarthRadiusMeters = 6371000.0

// DefaultRadiusMeters applies when a location is configured without a positive radius.
const DefaultRadiusMeters = 20.0

// Distance returns the great-circle distance between two points in meters.
func Distance(a, b models.GeoPoint) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Geolocation failure codes reported by the device.
const (
	GeoPermissionDenied    = 1
	GeoPositionUnavailable = 2
	GeoTimeout             = 3
)

// GeolocationError maps a device geolocation failure code to its typed error.
func GeolocationError(code int, message string) error {
	var base error
	switch code {
	case GeoPermissionDenied:
		base = models.ErrPermissionDenied
	case GeoPositionUnavailable:
		base = models.ErrPositionUnavailable
	case GeoTimeout:
		base = models.ErrTimeout
	default:
		return fmt.Errorf("%w: geolocation error code %d", models.ErrInvalidInput, code)
	}
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}

func validPoint(p models.GeoPoint) bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
