package scenario

import "github.com/kass/go-rrt-planner/pkg/models"

// Builtin returns the reference problems used by the demo and smoke runs:
// a clear line, a wall across the direct line, and a zero budget.
func Builtin() []Scenario {
	start := models.Location{Lat: 0, Lon: 0}
	target := models.Location{Lat: 0, Lon: 0.01}

	return []Scenario{
		{
			Name:       "open-line",
			Start:      start,
			Heading:    90,
			Altitude:   100,
			Target:     target,
			Iterations: budget(2000),
		},
		{
			Name:       "wall-detour",
			Start:      start,
			Heading:    90,
			Altitude:   100,
			Target:     target,
			Iterations: budget(5000),
			Obstacles: []models.Polygon{{
				ID:      "wall",
				Ceiling: 150,
				Vertices: []models.Location{
					{Lat: -0.002, Lon: 0.0045},
					{Lat: -0.002, Lon: 0.0055},
					{Lat: 0.002, Lon: 0.0055},
					{Lat: 0.002, Lon: 0.0045},
				},
			}},
		},
		{
			Name:       "no-budget",
			Start:      start,
			Heading:    90,
			Altitude:   100,
			Target:     target,
			Iterations: budget(0),
		},
	}
}

// Lookup finds a builtin scenario by name
func Lookup(name string) (*Scenario, bool) {
	for _, s := range Builtin() {
		if s.Name == name {
			return &s, true
		}
	}
	return nil, false
}

func budget(n int) *int {
	return &n
}
