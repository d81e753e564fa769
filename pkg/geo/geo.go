// Package geo provides great-circle math on a spherical Earth: distance, bearing and
// destination point. Every geometric computation in the planner goes through these
// functions so distances, sampled points and steering steps agree with each other.
package geo

import (
	"math"

	"github.com/kass/go-rrt-planner/pkg/models"
)

// EarthRadius is the mean Earth radius in meters
const EarthRadius = 6371000.0

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// Distance calculates the Haversine distance between two points in meters
func Distance(a, b models.Location) float64 {
	lat1Rad := a.Lat * degToRad
	lat2Rad := b.Lat * degToRad

	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h just past 1 for antipodal pairs
	h = clamp(h, 0, 1)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// Bearing returns the initial great-circle bearing from a to b in degrees, [0, 360)
func Bearing(a, b models.Location) float64 {
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return NormalizeBearing(math.Atan2(y, x) * radToDeg)
}

// Destination returns the point reached from p after travelling dist meters along
// the given initial bearing
func Destination(p models.Location, bearing, dist float64) models.Location {
	delta := dist / EarthRadius
	theta := bearing * degToRad
	lat1 := p.Lat * degToRad
	lon1 := p.Lon * degToRad

	sinLat2 := math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta)
	lat2 := math.Asin(clamp(sinLat2, -1, 1))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*sinLat2,
	)

	return models.Location{
		Lat: lat2 * radToDeg,
		Lon: normalizeLon(lon2 * radToDeg),
	}
}

// NormalizeBearing wraps deg into [0, 360)
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// RadiusBounds returns a lat/lon box that contains every point within dist meters
// of center. Near the poles or across the antimeridian the longitude range widens
// to the whole globe.
func RadiusBounds(center models.Location, dist float64) models.BoundingBox {
	r := dist / EarthRadius
	lat := center.Lat * degToRad

	minLat := lat - r
	maxLat := lat + r

	full := models.BoundingBox{
		BottomLeft: models.Location{Lat: math.Max(minLat*radToDeg, -90), Lon: -180},
		TopRight:   models.Location{Lat: math.Min(maxLat*radToDeg, 90), Lon: 180},
	}
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 || r >= math.Pi/2 {
		return full
	}

	s := math.Sin(r) / math.Cos(lat)
	if s >= 1 {
		return full
	}
	dLon := math.Asin(s) * radToDeg
	minLon := center.Lon - dLon
	maxLon := center.Lon + dLon
	if minLon < -180 || maxLon > 180 {
		return full
	}

	return models.BoundingBox{
		BottomLeft: models.Location{Lat: minLat * radToDeg, Lon: minLon},
		TopRight:   models.Location{Lat: maxLat * radToDeg, Lon: maxLon},
	}
}

func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
