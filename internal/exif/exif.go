// Package exif derives a geolocation from the GPS tags embedded in an
// image's metadata.
package exif

import (
	"bytes"
	"log/slog"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/msomdec/photolog/internal/domain"
)

// FallbackCoordinate is returned whenever no GPS position can be read from
// an image: missing tags, unsupported format, or corrupt metadata.
var FallbackCoordinate = domain.Coordinate{Lat: 51.505, Lng: -0.09}

// Extractor reads GPS coordinates from raw image bytes. The zero value is
// ready to use.
type Extractor struct{}

var _ domain.LocationExtractor = Extractor{}

// ExtractLocation returns the coordinate embedded in the image's EXIF GPS
// tags, or FallbackCoordinate if extraction fails for any reason. It never
// returns an error; extraction failure is not a failure of the caller's
// operation.
func (Extractor) ExtractLocation(data []byte) (coord domain.Coordinate) {
	coord = FallbackCoordinate

	// The decoder is not hardened against all malformed inputs; a corrupt
	// image must degrade to the fallback, not take the caller down.
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("exif decode panic", "panic", r)
			coord = FallbackCoordinate
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("exif decode failed", "error", err)
		return coord
	}

	lat, lng, err := x.LatLong()
	if err != nil {
		slog.Debug("no GPS tags in image", "error", err)
		return coord
	}

	return domain.Coordinate{Lat: lat, Lng: lng}
}
