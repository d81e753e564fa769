package rrt

import (
	"fmt"
	"math"
)

// Config tunes the search. Zero values are not usable; start from DefaultConfig.
type Config struct {
	// GoalBias is the probability of sampling the target instead of a random point.
	GoalBias float64 `mapstructure:"goal_bias" yaml:"goal_bias" json:"goal_bias"`
	// BranchLength is the maximum edge length in meters.
	BranchLength float64 `mapstructure:"branch_length" yaml:"branch_length" json:"branch_length"`

	Space SpaceParams `mapstructure:"space" yaml:"space" json:"space"`
}

// SpaceParams shapes the heading-biased sampling quadrilateral
type SpaceParams struct {
	FrontAngle  float64 `mapstructure:"front_angle" yaml:"front_angle" json:"front_angle"` // degrees
	FrontScale  float64 `mapstructure:"front_scale" yaml:"front_scale" json:"front_scale"`
	RearDivisor float64 `mapstructure:"rear_divisor" yaml:"rear_divisor" json:"rear_divisor"`
}

// DefaultConfig returns the stock planner tuning
func DefaultConfig() Config {
	return Config{
		GoalBias:     0.3,
		BranchLength: 100,
		Space:        DefaultSpaceParams(),
	}
}

// DefaultSpaceParams returns the stock search space shape
func DefaultSpaceParams() SpaceParams {
	return SpaceParams{
		FrontAngle:  45,
		FrontScale:  3,
		RearDivisor: 2,
	}
}

// Validate checks that every field is usable
func (c Config) Validate() error {
	if math.IsNaN(c.GoalBias) || c.GoalBias < 0 || c.GoalBias > 1 {
		return fmt.Errorf("%w: goal bias must be in [0, 1], got %v", ErrInvalidRequest, c.GoalBias)
	}
	if !(c.BranchLength > 0) || math.IsInf(c.BranchLength, 0) {
		return fmt.Errorf("%w: branch length must be positive, got %v", ErrInvalidRequest, c.BranchLength)
	}
	return c.Space.Validate()
}

// Validate checks the space shape. The front angle must stay below 90 degrees so
// the rear corners sit behind the front ones.
func (p SpaceParams) Validate() error {
	if !(p.FrontAngle > 0 && p.FrontAngle < 90) {
		return fmt.Errorf("%w: front angle must be in (0, 90), got %v", ErrInvalidRequest, p.FrontAngle)
	}
	if !(p.FrontScale > 0) || math.IsInf(p.FrontScale, 0) {
		return fmt.Errorf("%w: front scale must be positive, got %v", ErrInvalidRequest, p.FrontScale)
	}
	if !(p.RearDivisor >= 1) || math.IsInf(p.RearDivisor, 0) {
		return fmt.Errorf("%w: rear divisor must be >= 1, got %v", ErrInvalidRequest, p.RearDivisor)
	}
	return nil
}

// rearScale is the rear corner distance as a multiple of the distance to target
func (p SpaceParams) rearScale() float64 {
	front := p.FrontAngle * math.Pi / 180
	rear := front / p.RearDivisor
	return p.FrontScale * math.Cos(front) / math.Cos(rear)
}
