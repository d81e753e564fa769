package geo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     models.Location
		expected float64
		delta    float64
	}{
		{"same point", models.Location{Lat: 10, Lon: 10}, models.Location{Lat: 10, Lon: 10}, 0, 1e-9},
		{"one degree of longitude at equator", models.Location{}, models.Location{Lon: 1}, 111194.9, 1},
		{"0.01 degree of longitude at equator", models.Location{}, models.Location{Lon: 0.01}, 1111.95, 0.1},
		{"SF to LA", models.Location{Lat: 37.7749, Lon: -122.4194}, models.Location{Lat: 34.0522, Lon: -118.2437}, 559000, 2000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Distance(tc.a, tc.b), tc.delta)
			assert.InDelta(t, Distance(tc.a, tc.b), Distance(tc.b, tc.a), 1e-6)
		})
	}
}

func TestDistanceAntipodes(t *testing.T) {
	half := math.Pi * EarthRadius
	assert.InDelta(t, half, Distance(models.Location{Lat: 10, Lon: 20}, models.Location{Lat: -10, Lon: -160}), 1)

	for lat := -90.0; lat <= 90; lat += 2.5 {
		for lon := -180.0; lon < 180; lon += 2.5 {
			a := models.Location{Lat: lat, Lon: lon}
			b := models.Location{Lat: -lat, Lon: normalizeLon(lon + 180)}
			d := Distance(a, b)
			if !assert.False(t, math.IsNaN(d), "distance %v -> %v", a, b) {
				return
			}
			assert.InDelta(t, half, d, 1)
		}
	}
}

func TestBearing(t *testing.T) {
	origin := models.Location{}
	assert.InDelta(t, 0, Bearing(origin, models.Location{Lat: 1}), 1e-9)
	assert.InDelta(t, 90, Bearing(origin, models.Location{Lon: 1}), 1e-9)
	assert.InDelta(t, 180, Bearing(origin, models.Location{Lat: -1}), 1e-9)
	assert.InDelta(t, 270, Bearing(origin, models.Location{Lon: -1}), 1e-9)
}

func TestNormalizeBearing(t *testing.T) {
	testCases := map[float64]float64{
		0:    0,
		360:  0,
		-45:  315,
		405:  45,
		-720: 0,
		359:  359,
	}
	for in, want := range testCases {
		assert.InDelta(t, want, NormalizeBearing(in), 1e-9, "input %v", in)
	}
}

func TestDestinationRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		start := models.Location{Lat: r.Float64()*140 - 70, Lon: r.Float64()*360 - 180}
		bearing := r.Float64() * 360
		dist := r.Float64() * 50000

		dest := Destination(start, bearing, dist)
		assert.InDelta(t, dist, Distance(start, dest), 1e-3)
		if dist > 1 {
			diff := math.Abs(Bearing(start, dest) - bearing)
			diff = math.Min(diff, 360-diff)
			assert.Less(t, diff, 1e-6)
		}
		assert.GreaterOrEqual(t, dest.Lon, -180.0)
		assert.Less(t, dest.Lon, 180.0)
	}
}

func TestRadiusBoundsContainsCircle(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		center := models.Location{Lat: r.Float64()*160 - 80, Lon: r.Float64()*340 - 170}
		radius := r.Float64() * 200000
		box := RadiusBounds(center, radius)

		for k := 0; k < 36; k++ {
			p := Destination(center, float64(k)*10, radius*0.999)
			assert.True(t, box.Contains(p), "center %v radius %.0f point %v box %v", center, radius, p, box)
		}
	}
}

func TestRadiusBoundsNearPole(t *testing.T) {
	box := RadiusBounds(models.Location{Lat: 89.99, Lon: 20}, 5000)
	assert.Equal(t, -180.0, box.BottomLeft.Lon)
	assert.Equal(t, 180.0, box.TopRight.Lon)
	assert.Equal(t, 90.0, box.TopRight.Lat)
}
