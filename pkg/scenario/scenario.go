// Package scenario reads planning problems from YAML documents: where the vehicle
// is, where it is going, and what is in the way.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/obstacles"
	"github.com/kass/go-rrt-planner/pkg/rrt"
	"gopkg.in/yaml.v3"
)

// Scenario is one planning problem
type Scenario struct {
	Name       string             `yaml:"name"`
	Start      models.Location    `yaml:"start"`
	Heading    float64            `yaml:"heading"`
	Altitude   float64            `yaml:"altitude"`
	Target     models.Location    `yaml:"target"`
	Iterations *int               `yaml:"iterations,omitempty"` // unset leaves the budget to the caller
	Coverage   models.BoundingBox `yaml:"coverage"`
	Obstacles  []models.Polygon   `yaml:"obstacles"`
}

// Load reads and validates a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the request and every obstacle, reporting all problems at once
func (s *Scenario) Validate() error {
	var errs []error
	if err := s.Request(0).Validate(); err != nil {
		errs = append(errs, err)
	}
	if !s.Coverage.IsZero() && !(s.Coverage.BottomLeft.Lat < s.Coverage.TopRight.Lat &&
		s.Coverage.BottomLeft.Lon < s.Coverage.TopRight.Lon) {
		errs = append(errs, fmt.Errorf("coverage box corners are inverted"))
	}
	seen := make(map[string]bool)
	for i, o := range s.Obstacles {
		if o.ID == "" {
			errs = append(errs, fmt.Errorf("obstacle %d has no id", i))
		} else if seen[o.ID] {
			errs = append(errs, fmt.Errorf("duplicate obstacle id %q", o.ID))
		}
		seen[o.ID] = true
		if len(o.Vertices) < 3 {
			errs = append(errs, fmt.Errorf("obstacle %q needs at least 3 vertices, got %d", o.ID, len(o.Vertices)))
		}
	}
	return errors.Join(errs...)
}

// Budget returns the scenario's iteration budget, or fallback when it sets none.
// An explicit zero is kept.
func (s *Scenario) Budget(fallback int) int {
	if s.Iterations == nil {
		return fallback
	}
	return *s.Iterations
}

// Request converts the scenario into a planner request, using fallback as the
// budget when the scenario sets none
func (s *Scenario) Request(fallback int) rrt.Request {
	return rrt.Request{
		Start:      s.Start,
		Heading:    s.Heading,
		Altitude:   s.Altitude,
		Target:     s.Target,
		Iterations: s.Budget(fallback),
	}
}

// Field builds the collision oracle for the scenario's obstacles and coverage
func (s *Scenario) Field() (*obstacles.Field, error) {
	return obstacles.NewField(s.Obstacles, s.Coverage)
}

// Marshal encodes the scenario back to YAML
func (s *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
