// Package obstacles provides a polygon based collision oracle: obstacle footprints
// with a ceiling altitude, indexed in an R-Tree, plus a rectangular data coverage
// area.
//
// Legs crossing the antimeridian are split at ±180 before testing. Footprints and
// the coverage box themselves must not straddle it.
package obstacles

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-rrt-planner/pkg/models"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// entry wraps a polygon for R-tree storage, keyed by (lon, lat)
type entry struct {
	polygon models.Polygon
	rect    *rtreego.Rect
}

func (e *entry) Bounds() *rtreego.Rect {
	return e.rect
}

// Field answers point and segment collision queries against a fixed obstacle set.
// It is immutable after NewField and safe for concurrent use.
type Field struct {
	tree     *rtreego.Rtree
	count    int
	coverage models.BoundingBox
}

// NewField indexes the obstacles. A zero coverage box means unlimited coverage.
func NewField(obstacles []models.Polygon, coverage models.BoundingBox) (*Field, error) {
	f := &Field{
		tree:     rtreego.NewTree(dimensions, minChildren, maxChildren),
		coverage: coverage,
	}
	for _, o := range obstacles {
		if len(o.Vertices) < 3 {
			return nil, fmt.Errorf("obstacle %q needs at least 3 vertices, got %d", o.ID, len(o.Vertices))
		}
		rect, err := boxRect(o.Bounds())
		if err != nil {
			return nil, fmt.Errorf("invalid obstacle %q: %w", o.ID, err)
		}
		f.tree.Insert(&entry{polygon: o, rect: rect})
		f.count++
	}
	return f, nil
}

// Count returns the number of obstacles
func (f *Field) Count() int {
	return f.count
}

// PointBlocked reports whether loc lies inside an obstacle whose ceiling reaches alt
func (f *Field) PointBlocked(loc models.Location, alt float64) bool {
	box := models.BoundingBox{BottomLeft: loc, TopRight: loc}
	for _, o := range f.candidates(box, alt) {
		if pointInPolygon(loc, o.Vertices) {
			return true
		}
	}
	return false
}

// SegmentBlocked reports whether the straight leg a-b touches an obstacle whose
// ceiling reaches alt
func (f *Field) SegmentBlocked(a, b models.Location, alt float64) bool {
	if math.Abs(b.Lon-a.Lon) > 180 {
		west, east := splitAntimeridian(a, b)
		return f.segmentBlocked(a, west, alt) || f.segmentBlocked(east, b, alt)
	}
	return f.segmentBlocked(a, b, alt)
}

func (f *Field) segmentBlocked(a, b models.Location, alt float64) bool {
	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: math.Min(a.Lat, b.Lat), Lon: math.Min(a.Lon, b.Lon)},
		TopRight:   models.Location{Lat: math.Max(a.Lat, b.Lat), Lon: math.Max(a.Lon, b.Lon)},
	}
	for _, o := range f.candidates(box, alt) {
		if segmentHitsPolygon(a, b, o.Vertices) {
			return true
		}
	}
	return false
}

// WithinCoverage reports whether loc is inside the data coverage area
func (f *Field) WithinCoverage(loc models.Location) bool {
	if f.coverage.IsZero() {
		return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180
	}
	return f.coverage.Contains(loc)
}

// splitAntimeridian returns where leg a-b meets ±180: the crossing point on a's
// side of the line, then the same point on b's side
func splitAntimeridian(a, b models.Location) (models.Location, models.Location) {
	edge := 180.0
	if a.Lon < 0 {
		edge = -180
	}
	// unwrap b onto a's side so the leg is continuous
	bLon := b.Lon + 2*edge
	t := (edge - a.Lon) / (bLon - a.Lon)
	lat := a.Lat + t*(b.Lat-a.Lat)
	return models.Location{Lat: lat, Lon: edge}, models.Location{Lat: lat, Lon: -edge}
}

// candidates returns obstacles intersecting box that block at alt
func (f *Field) candidates(box models.BoundingBox, alt float64) []models.Polygon {
	rect, err := boxRect(box)
	if err != nil {
		return nil
	}

	results := f.tree.SearchIntersect(rect)
	polygons := make([]models.Polygon, 0, len(results))
	for _, result := range results {
		e, ok := result.(*entry)
		if !ok || e.polygon.Ceiling < alt {
			continue
		}
		polygons = append(polygons, e.polygon)
	}
	return polygons
}

// boxRect converts a box to an R-tree rect, padding degenerate sides
func boxRect(box models.BoundingBox) (*rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lon - tolerance, box.BottomLeft.Lat - tolerance},
		[]float64{
			box.TopRight.Lon - box.BottomLeft.Lon + 2*tolerance,
			box.TopRight.Lat - box.BottomLeft.Lat + 2*tolerance,
		},
	)
}
