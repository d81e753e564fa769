package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detour = `
name: detour
start: {lat: 0, lon: 0}
heading: 90
altitude: 100
target: {lat: 0, lon: 0.01}
iterations: 3000
coverage:
  bottom_left: {lat: -0.05, lon: -0.05}
  top_right: {lat: 0.05, lon: 0.05}
obstacles:
  - id: wall
    ceiling: 150
    vertices:
      - {lat: -0.002, lon: 0.0045}
      - {lat: -0.002, lon: 0.0055}
      - {lat: 0.002, lon: 0.0055}
      - {lat: 0.002, lon: 0.0045}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(detour))
	require.NoError(t, err)

	assert.Equal(t, "detour", s.Name)
	assert.Equal(t, models.Location{Lat: 0, Lon: 0.01}, s.Target)
	require.NotNil(t, s.Iterations)
	assert.Equal(t, 3000, *s.Iterations)
	require.Len(t, s.Obstacles, 1)
	assert.Equal(t, 150.0, s.Obstacles[0].Ceiling)

	req := s.Request(1000)
	assert.Equal(t, 3000, req.Iterations)
	assert.Equal(t, 90.0, req.Heading)
	assert.Equal(t, 100.0, req.Altitude)

	field, err := s.Field()
	require.NoError(t, err)
	assert.True(t, field.SegmentBlocked(s.Start, s.Target, s.Altitude))
	assert.False(t, field.WithinCoverage(models.Location{Lat: 0.06}))
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"unknown key", "start: {lat: 0, lon: 0}\nspeed: 12\n"},
		{"bad latitude", "start: {lat: 95, lon: 0}\n"},
		{"negative budget", "iterations: -5\n"},
		{"inverted coverage", "coverage: {bottom_left: {lat: 1, lon: 1}, top_right: {lat: 0, lon: 0}}\n"},
		{"obstacle without id", "obstacles: [{vertices: [{lat: 0, lon: 0}, {lat: 1, lon: 0}, {lat: 1, lon: 1}]}]\n"},
		{"degenerate obstacle", "obstacles: [{id: a, vertices: [{lat: 0, lon: 0}]}]\n"},
		{"duplicate ids", "obstacles: [{id: a, vertices: [{lat: 0, lon: 0}, {lat: 1, lon: 0}, {lat: 1, lon: 1}]}, {id: a, vertices: [{lat: 0, lon: 0}, {lat: 1, lon: 0}, {lat: 1, lon: 1}]}]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(detour), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuiltin(t *testing.T) {
	for _, s := range Builtin() {
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, s.Validate())
			_, err := s.Field()
			require.NoError(t, err)
		})
	}

	wall, ok := Lookup("wall-detour")
	require.True(t, ok)
	field, err := wall.Field()
	require.NoError(t, err)
	assert.True(t, field.SegmentBlocked(wall.Start, wall.Target, wall.Altitude))

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestBudget(t *testing.T) {
	unset, err := Parse([]byte("start: {lat: 0, lon: 0}\ntarget: {lat: 0, lon: 0.01}\n"))
	require.NoError(t, err)
	assert.Nil(t, unset.Iterations)
	assert.Equal(t, 1000, unset.Request(1000).Iterations)

	zero, err := Parse([]byte("start: {lat: 0, lon: 0}\ntarget: {lat: 0, lon: 0.01}\niterations: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, zero.Iterations)
	assert.Equal(t, 0, zero.Request(1000).Iterations)

	noBudget, ok := Lookup("no-budget")
	require.True(t, ok)
	assert.Equal(t, 0, noBudget.Request(1000).Iterations)

	field, err := noBudget.Field()
	require.NoError(t, err)
	planner, err := rrt.New(field, rrt.DefaultConfig(), rrt.WithSeed(1))
	require.NoError(t, err)
	res, err := planner.Plan(noBudget.Request(1000))
	assert.ErrorIs(t, err, rrt.ErrExhausted)
	assert.Equal(t, rrt.Exhausted, res.Status)
	assert.Equal(t, 1, res.TreeSize)
}
