// Package rtree implements an R-Tree backed geographic index that answers nearest
// neighbour queries under great-circle distance rather than planar distance.
package rtree

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
)

const (
	tolerance   = 1e-9
	minChildren = 25
	maxChildren = 50
	dimensions  = 2

	// slack added to the search radius so rounding never drops the true nearest
	radiusSlack = 1e-6 // meters
)

// spatialPoint wraps an indexed location to implement rtreego.Spatial.
// Coordinates are stored as (lon, lat).
type spatialPoint struct {
	id   int
	loc  models.Location
	rect *rtreego.Rect
}

func (sp *spatialPoint) Bounds() *rtreego.Rect {
	return sp.rect
}

// GeoIndex maps locations to integer ids and finds the id nearest to a query point
type GeoIndex struct {
	tree      *rtreego.Rtree
	exact     map[models.Location]int
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewGeoIndex creates an empty index
func NewGeoIndex() *GeoIndex {
	return &GeoIndex{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		exact: make(map[models.Location]int),
	}
}

// Insert adds a location->id association
func (g *GeoIndex) Insert(loc models.Location, id int) {
	p := rtreego.Point{loc.Lon, loc.Lat}
	item := &spatialPoint{id: id, loc: loc, rect: p.ToRect(tolerance)}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.tree.Insert(item)
	// first id inserted at a coordinate wins, which is also the lowest id
	if _, ok := g.exact[loc]; !ok {
		g.exact[loc] = id
	}
	g.itemCount.Add(1)
}

// ContainsExact returns the id stored at exactly loc, if any
func (g *GeoIndex) ContainsExact(loc models.Location) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.exact[loc]
	return id, ok
}

// Nearest returns the id whose location minimises geo.Distance to loc.
// Ties go to the lowest id. ok is false when the index is empty.
func (g *GeoIndex) Nearest(loc models.Location) (id int, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.tree.Size() == 0 {
		return 0, false
	}
	if id, ok := g.exact[loc]; ok {
		return id, true
	}

	// The planar nearest neighbour in (lon, lat) is only a seed: its great-circle
	// distance bounds the answer, and every point within that bound sits inside
	// RadiusBounds, so one box search plus an exact arg-min finds the true nearest.
	seed, ok := g.tree.NearestNeighbor(rtreego.Point{loc.Lon, loc.Lat}).(*spatialPoint)
	if !ok || seed == nil {
		return 0, false
	}
	bound := geo.Distance(loc, seed.loc)
	box := geo.RadiusBounds(loc, bound*(1+1e-9)+radiusSlack)

	best := seed
	bestDist := bound
	for _, result := range g.searchBox(box) {
		item, ok := result.(*spatialPoint)
		if !ok {
			continue
		}
		d := geo.Distance(loc, item.loc)
		if d < bestDist || (d == bestDist && item.id < best.id) {
			best = item
			bestDist = d
		}
	}

	return best.id, true
}

// Count returns the number of indexed points
func (g *GeoIndex) Count() int64 {
	return g.itemCount.Load()
}

// searchBox returns every item whose rect intersects box. Caller holds the lock.
func (g *GeoIndex) searchBox(box models.BoundingBox) []rtreego.Spatial {
	bottomLeft := rtreego.Point{box.BottomLeft.Lon, box.BottomLeft.Lat}
	rectSize := []float64{
		math.Max(box.TopRight.Lon-box.BottomLeft.Lon, tolerance),
		math.Max(box.TopRight.Lat-box.BottomLeft.Lat, tolerance),
	}

	bounds, err := rtreego.NewRect(bottomLeft, rectSize)
	if err != nil {
		return nil
	}
	return g.tree.SearchIntersect(bounds)
}
