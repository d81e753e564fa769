package rrt

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysCovered(models.Location) bool { return true }

func TestBuildSearchSpaceCorners(t *testing.T) {
	pos := models.Location{Lat: 46.5, Lon: 7.5}
	d := 1000.0
	params := DefaultSpaceParams()

	space, err := BuildSearchSpace(pos, 90, d, params, alwaysCovered)
	require.NoError(t, err)

	rear := params.rearScale() * d
	testCases := []struct {
		corner  Corner
		bearing float64
		dist    float64
	}{
		{FrontLeft, 45, 3000},
		{FrontRight, 135, 3000},
		{RearRight, 202.5, rear},
		{RearLeft, 337.5, rear},
	}

	for _, tc := range testCases {
		t.Run(tc.corner.String(), func(t *testing.T) {
			c := space.Corners[tc.corner]
			assert.InDelta(t, tc.dist, geo.Distance(pos, c), 1e-3)
			assert.InDelta(t, tc.bearing, geo.Bearing(pos, c), 1e-6)
		})
	}

	assert.Equal(t, space.Corners[RearLeft], space.Origin)
	assert.Equal(t, 90.0, space.Heading)
	// with a 45 degree front angle the quadrilateral is a 4.24d x 3d rectangle
	assert.InDelta(t, 4242.6, space.Width, 2)
	assert.InDelta(t, 3000, space.Height, 2)
}

func TestBuildSearchSpaceWrapsBearings(t *testing.T) {
	pos := models.Location{Lat: 10, Lon: 10}
	space, err := BuildSearchSpace(pos, 350, 500, DefaultSpaceParams(), alwaysCovered)
	require.NoError(t, err)

	assert.InDelta(t, 305, geo.Bearing(pos, space.Corners[FrontLeft]), 1e-6)
	assert.InDelta(t, 35, geo.Bearing(pos, space.Corners[FrontRight]), 1e-6)

	negative, err := BuildSearchSpace(pos, -10, 500, DefaultSpaceParams(), alwaysCovered)
	require.NoError(t, err)
	assert.Equal(t, space.Corners, negative.Corners)
}

func TestBuildSearchSpaceCoverage(t *testing.T) {
	pos := models.Location{Lat: 0, Lon: 0}

	for corner := FrontLeft; corner <= RearLeft; corner++ {
		t.Run(corner.String(), func(t *testing.T) {
			reference, err := BuildSearchSpace(pos, 0, 1000, DefaultSpaceParams(), alwaysCovered)
			require.NoError(t, err)

			bad := reference.Corners[corner]
			_, err = BuildSearchSpace(pos, 0, 1000, DefaultSpaceParams(), func(loc models.Location) bool {
				return loc != bad
			})
			assert.ErrorIs(t, err, ErrSpaceUnavailable)
			assert.Contains(t, err.Error(), corner.String())
		})
	}
}

func TestBuildSearchSpaceRejectsNonFiniteInput(t *testing.T) {
	pos := models.Location{Lat: 10, Lon: 20}
	testCases := []struct {
		name    string
		heading float64
		d       float64
	}{
		{"NaN distance", 90, math.NaN()},
		{"infinite distance", 90, math.Inf(1)},
		{"negative distance", 90, -1},
		{"NaN heading", math.NaN(), 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			_, err := BuildSearchSpace(pos, tc.heading, tc.d, DefaultSpaceParams(), func(models.Location) bool {
				calls++
				return true
			})
			assert.ErrorIs(t, err, ErrSpaceUnavailable)
			assert.Zero(t, calls)
		})
	}
}

func TestBuildSearchSpaceAntipodalTarget(t *testing.T) {
	start := models.Location{Lat: 10, Lon: 20}
	d := geo.Distance(start, models.Location{Lat: -10, Lon: -160})

	space, err := BuildSearchSpace(start, 90, d, DefaultSpaceParams(), alwaysCovered)
	require.NoError(t, err)
	for _, c := range space.Corners {
		assert.False(t, math.IsNaN(c.Lat) || math.IsNaN(c.Lon))
	}
	assert.False(t, math.IsNaN(space.Width))
	assert.False(t, math.IsNaN(space.Height))
}

func TestBuildSearchSpaceInvalidParams(t *testing.T) {
	params := DefaultSpaceParams()
	params.FrontAngle = 95
	_, err := BuildSearchSpace(models.Location{}, 0, 100, params, alwaysCovered)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSearchSpaceSample(t *testing.T) {
	pos := models.Location{Lat: 0, Lon: 0}
	space, err := BuildSearchSpace(pos, 90, 1000, DefaultSpaceParams(), alwaysCovered)
	require.NoError(t, err)

	assert.Equal(t, space.Origin, space.Sample(0, 0))
	// u runs from the left edge to the right edge, v from the rear to the front
	assert.InDelta(t, 0, geo.Distance(space.Sample(0, 1), space.Corners[FrontLeft]), 1)
	assert.InDelta(t, 0, geo.Distance(space.Sample(1, 0), space.Corners[RearRight]), 1)
	assert.InDelta(t, 0, geo.Distance(space.Sample(1, 1), space.Corners[FrontRight]), 1)

	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: space.Corners[RearRight].Lat, Lon: space.Corners[RearLeft].Lon},
		TopRight:   models.Location{Lat: space.Corners[FrontLeft].Lat, Lon: space.Corners[FrontRight].Lon},
	}
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		p := space.Sample(r.Float64(), r.Float64())
		// heading east: lat spans left (north) to right (south), lon spans rear to front
		assert.True(t, p.Lat <= box.TopRight.Lat+1e-6 && p.Lat >= box.BottomLeft.Lat-1e-6, "sample %v", p)
		assert.True(t, p.Lon <= box.TopRight.Lon+1e-6 && p.Lon >= box.BottomLeft.Lon-1e-6, "sample %v", p)
	}
}
