package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

func TestDistance(t *testing.T) {
	assert.Zero(t, Distance(library, library))

	// One thousandth of a degree of latitude is about 111 meters.
	d := Distance(library, models.GeoPoint{Lat: library.Lat + 0.001, Lng: library.Lng})
	assert.InDelta(t, 111.19, d, 0.1)
}

func TestGeolocationError(t *testing.T) {
	assert.ErrorIs(t, GeolocationError(GeoPermissionDenied, ""), models.ErrPermissionDenied)
	assert.ErrorIs(t, GeolocationError(GeoPositionUnavailable, "no fix"), models.ErrPositionUnavailable)
	assert.ErrorIs(t, GeolocationError(GeoTimeout, ""), models.ErrTimeout)
	assert.ErrorIs(t, GeolocationError(9, ""), models.ErrInvalidInput)
}
