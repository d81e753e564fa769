package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/obstacles"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/kass/go-rrt-planner/pkg/rtree"
)

func main() {
	// Launch sites around San Francisco
	sites := []struct {
		name string
		loc  models.Location
	}{
		{"Presidio", models.Location{Lat: 37.7989, Lon: -122.4662}},
		{"Mission Bay", models.Location{Lat: 37.7706, Lon: -122.3926}},
		{"Twin Peaks", models.Location{Lat: 37.7544, Lon: -122.4477}},
		{"Hunters Point", models.Location{Lat: 37.7267, Lon: -122.3711}},
	}

	// Example 1: nearest launch site by great-circle distance
	index := rtree.NewGeoIndex()
	for i, s := range sites {
		index.Insert(s.loc, i)
	}
	here := models.Location{Lat: 37.7793, Lon: -122.4193}
	if id, ok := index.Nearest(here); ok {
		fmt.Printf("Nearest site to City Hall: %s (%.0f m)\n\n", sites[id].name, geo.Distance(here, sites[id].loc))
	}

	// Example 2: plan from Mission Bay to City Hall around a 120 m tower block
	field, err := obstacles.NewField([]models.Polygon{{
		ID:      "towers",
		Ceiling: 120,
		Vertices: []models.Location{
			{Lat: 37.7725, Lon: -122.4090},
			{Lat: 37.7725, Lon: -122.4030},
			{Lat: 37.7770, Lon: -122.4030},
			{Lat: 37.7770, Lon: -122.4090},
		},
	}}, models.BoundingBox{})
	if err != nil {
		log.Fatal(err)
	}

	start := sites[1].loc
	planner, err := rrt.New(field, rrt.DefaultConfig(), rrt.WithSeed(7))
	if err != nil {
		log.Fatal(err)
	}

	res, err := planner.Plan(rrt.Request{
		Start:      start,
		Heading:    geo.Bearing(start, here),
		Altitude:   90,
		Target:     here,
		Iterations: 5000,
	})
	switch {
	case errors.Is(err, rrt.ErrExhausted):
		fmt.Printf("No path within %d iterations, try a larger budget\n", res.Iterations)
		return
	case err != nil:
		log.Fatal(err)
	}

	fmt.Printf("Found a path in %d iterations (%d tree nodes, %v)\n", res.Iterations, res.TreeSize, res.Elapsed)
	for i, wp := range res.Waypoints {
		fmt.Printf("  waypoint %d: %.6f, %.6f\n", i+1, wp.Lat, wp.Lon)
	}
}
