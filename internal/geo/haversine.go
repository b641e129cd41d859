// Package geo narrows place results to a radius around a coordinate.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/MosinFAM/halal-guide/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance returns the great-circle distance between a and b in kilometres
// using the haversine formula.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Query is the optional location part of a place query. Origin is nil when
// lat/lng were not supplied; Radius is nil when no radius was supplied.
type Query struct {
	Origin *Point
	Radius *float64
}

// Active reports whether the distance filter applies: it needs origin and
// radius together.
func (q Query) Active() bool {
	return q.Origin != nil && q.Radius != nil
}

// ParseQuery parses the lat, lng and radius query parameters. Blank values
// count as absent.
func ParseQuery(lat, lng, radius string) (Query, error) {
	var q Query

	latV, hasLat, err := parseFloat("lat", lat)
	if err != nil {
		return q, err
	}
	lngV, hasLng, err := parseFloat("lng", lng)
	if err != nil {
		return q, err
	}
	radV, hasRad, err := parseFloat("radius", radius)
	if err != nil {
		return q, err
	}

	if hasLat && hasLng {
		if latV < -90 || latV > 90 {
			return q, models.Invalid("lat", "latitude out of range")
		}
		if lngV < -180 || lngV > 180 {
			return q, models.Invalid("lng", "longitude out of range")
		}
		q.Origin = &Point{Lat: latV, Lng: lngV}
	}
	if hasRad {
		if radV < 0 {
			return q, models.Invalid("radius", "radius must be non-negative")
		}
		q.Radius = &radV
	}
	return q, nil
}

func parseFloat(field, s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, models.Invalid(field, "%q is not a decimal number", s)
	}
	return v, true, nil
}

// Apply annotates places with their distance from the origin and, when the
// query is active, drops those farther than the radius. Order is preserved.
func Apply(places []models.HalalPlace, q Query) []models.HalalPlace {
	if q.Origin == nil {
		return places
	}
	out := make([]models.HalalPlace, 0, len(places))
	for _, p := range places {
		d := Distance(*q.Origin, Point{Lat: p.Latitude, Lng: p.Longitude})
		if q.Active() && d > *q.Radius {
			continue
		}
		p.DistanceKm = &d
		out = append(out, p)
	}
	return out
}
