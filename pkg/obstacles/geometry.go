package obstacles

import (
	"math"

	"github.com/kass/go-rrt-planner/pkg/models"
)

// Planar tests in (lon, lat) degrees. Obstacles and planning legs span a few
// kilometers at most, where the distortion is well below obstacle margins.

// segmentsIntersect checks if segments p1p2 and p3p4 touch or cross
func segmentsIntersect(p1, p2, p3, p4 models.Location) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction is the cross product (p2-p1) x (p3-p1)
func direction(p1, p2, p3 models.Location) float64 {
	return (p3.Lon-p1.Lon)*(p2.Lat-p1.Lat) - (p2.Lon-p1.Lon)*(p3.Lat-p1.Lat)
}

// onSegment checks if q lies within the bounding box of segment pr
func onSegment(p, r, q models.Location) bool {
	return q.Lon <= math.Max(p.Lon, r.Lon) && q.Lon >= math.Min(p.Lon, r.Lon) &&
		q.Lat <= math.Max(p.Lat, r.Lat) && q.Lat >= math.Min(p.Lat, r.Lat)
}

// pointInPolygon uses ray casting
func pointInPolygon(pt models.Location, vertices []models.Location) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > pt.Lat) != (vj.Lat > pt.Lat) {
			lon := vj.Lon + (pt.Lat-vj.Lat)*(vi.Lon-vj.Lon)/(vi.Lat-vj.Lat)
			if pt.Lon < lon {
				inside = !inside
			}
		}
	}
	return inside
}

// segmentHitsPolygon reports whether segment ab crosses an edge of the polygon or
// lies inside it
func segmentHitsPolygon(a, b models.Location, vertices []models.Location) bool {
	n := len(vertices)
	for i := 0; i < n; i++ {
		if segmentsIntersect(a, b, vertices[i], vertices[(i+1)%n]) {
			return true
		}
	}
	// no edge crossed: the segment is either fully inside or fully outside
	return pointInPolygon(a, vertices)
}
