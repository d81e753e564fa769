package rrt

import (
	"fmt"
	"math"

	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
)

// Corner indexes SearchSpace.Corners
type Corner int

const (
	FrontLeft Corner = iota
	FrontRight
	RearRight
	RearLeft
)

var cornerNames = [...]string{"front-left", "front-right", "rear-right", "rear-left"}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}

// SearchSpace is the heading-biased quadrilateral random samples are drawn from.
// It only scales sampling; path validity is decided by the oracle.
type SearchSpace struct {
	// Origin is the rear-left corner. Samples are offset from it.
	Origin  models.Location    `json:"origin"`
	Width   float64            `json:"width"`  // front-left to front-right, meters
	Height  float64            `json:"height"` // front-left to rear-left, meters
	Heading float64            `json:"heading"`
	Corners [4]models.Location `json:"corners"`
}

// BuildSearchSpace lays the quadrilateral out ahead of pos for a target d meters
// away. Every corner must satisfy withinCoverage, otherwise ErrSpaceUnavailable.
func BuildSearchSpace(pos models.Location, heading, d float64, p SpaceParams, withinCoverage func(models.Location) bool) (SearchSpace, error) {
	if err := p.Validate(); err != nil {
		return SearchSpace{}, err
	}
	if !finite(d) || d < 0 || !finite(heading) {
		return SearchSpace{}, fmt.Errorf("%w: distance %v, heading %v", ErrSpaceUnavailable, d, heading)
	}
	heading = geo.NormalizeBearing(heading)

	front := p.FrontScale * d
	rear := p.rearScale() * d
	rearAngle := 90 + p.FrontAngle/p.RearDivisor

	var s SearchSpace
	s.Heading = heading
	s.Corners[FrontLeft] = geo.Destination(pos, geo.NormalizeBearing(heading-p.FrontAngle), front)
	s.Corners[FrontRight] = geo.Destination(pos, geo.NormalizeBearing(heading+p.FrontAngle), front)
	s.Corners[RearRight] = geo.Destination(pos, geo.NormalizeBearing(heading+rearAngle), rear)
	s.Corners[RearLeft] = geo.Destination(pos, geo.NormalizeBearing(heading-rearAngle), rear)

	for i, c := range s.Corners {
		if !finite(c.Lat) || !finite(c.Lon) {
			return SearchSpace{}, fmt.Errorf("%w: %s corner is not a finite coordinate", ErrSpaceUnavailable, Corner(i))
		}
		if !withinCoverage(c) {
			return SearchSpace{}, fmt.Errorf("%w: %s corner (%.6f, %.6f)", ErrSpaceUnavailable, Corner(i), c.Lat, c.Lon)
		}
	}

	s.Origin = s.Corners[RearLeft]
	s.Width = geo.Distance(s.Corners[FrontLeft], s.Corners[FrontRight])
	s.Height = geo.Distance(s.Corners[FrontLeft], s.Corners[RearLeft])
	return s, nil
}

// Sample maps two independent uniforms in [0, 1) to a point of the space:
// u runs across the heading (width), v along it (height), and the pair becomes a
// distance and bearing from the origin.
func (s SearchSpace) Sample(u, v float64) models.Location {
	x := u * s.Width
	y := v * s.Height
	dist := math.Hypot(x, y)
	if dist == 0 {
		return s.Origin
	}
	offset := math.Atan2(x, y) * 180 / math.Pi
	return geo.Destination(s.Origin, geo.NormalizeBearing(s.Heading+offset), dist)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
