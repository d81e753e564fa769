package rrt

import "github.com/kass/go-rrt-planner/pkg/models"

// stubOracle counts calls and delegates to optional predicates; nil predicates
// mean "clear" and "covered".
type stubOracle struct {
	pointBlocked   func(loc models.Location, alt float64) bool
	segmentBlocked func(a, b models.Location, alt float64) bool
	covered        func(loc models.Location) bool

	pointCalls    int
	segmentCalls  int
	coverageCalls int
}

func (s *stubOracle) PointBlocked(loc models.Location, alt float64) bool {
	s.pointCalls++
	if s.pointBlocked == nil {
		return false
	}
	return s.pointBlocked(loc, alt)
}

func (s *stubOracle) SegmentBlocked(a, b models.Location, alt float64) bool {
	s.segmentCalls++
	if s.segmentBlocked == nil {
		return false
	}
	return s.segmentBlocked(a, b, alt)
}

func (s *stubOracle) WithinCoverage(loc models.Location) bool {
	s.coverageCalls++
	if s.covered == nil {
		return true
	}
	return s.covered(loc)
}

func blockedEverywhere(models.Location, models.Location, float64) bool { return true }
