// Package geo holds the fleet map helpers: great-circle distance and
// GeoJSON encoding of vehicle locations.
package geo

import (
	"errors"
	"math"
	"strconv"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"gowheels/internal/models"
)

const earthRadiusKm = 6371.0

var ErrNotAPoint = errors.New("geometry must be a GeoJSON Point")

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinates reports whether lat/lng lie on the globe.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParsePoint reads a GeoJSON Point and returns latitude and longitude.
func ParsePoint(raw []byte) (lat, lng float64, err error) {
	var g geom.T
	if err := gjson.Unmarshal(raw, &g); err != nil {
		return 0, 0, err
	}
	p, ok := g.(*geom.Point)
	if !ok || p.Empty() {
		return 0, 0, ErrNotAPoint
	}
	lat, lng = p.Y(), p.X()
	if !ValidCoordinates(lat, lng) {
		return 0, 0, ErrNotAPoint
	}
	return lat, lng, nil
}

// Center limits the fleet map to vehicles within RadiusKm.
type Center struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// FleetMap encodes vehicles with coordinates as a GeoJSON FeatureCollection.
// With a non-nil center only vehicles inside the radius are kept, and each
// feature carries its distanceKm.
func FleetMap(vehicles []models.Vehicle, center *Center) *gjson.FeatureCollection {
	fc := &gjson.FeatureCollection{Features: []*gjson.Feature{}}
	for _, v := range vehicles {
		if v.LocationLat == nil || v.LocationLng == nil {
			continue
		}
		lat, lng := *v.LocationLat, *v.LocationLng

		props := map[string]interface{}{
			"name":               v.Name,
			"type":               v.Type,
			"pricePerDay":        v.PricePerDay,
			"rating":             v.Rating,
			"seats":              v.Seats,
			"imageUrl":           v.ImageURL,
			"locationAddress":    v.LocationAddress,
			"availabilityStatus": v.AvailabilityStatus,
		}
		if center != nil {
			d := DistanceKm(center.Lat, center.Lng, lat, lng)
			if center.RadiusKm > 0 && d > center.RadiusKm {
				continue
			}
			props["distanceKm"] = math.Round(d*100) / 100
		}

		fc.Features = append(fc.Features, &gjson.Feature{
			ID:         strconv.FormatUint(uint64(v.ID), 10),
			Geometry:   geom.NewPointFlat(geom.XY, []float64{lng, lat}),
			Properties: props,
		})
	}
	return fc
}
