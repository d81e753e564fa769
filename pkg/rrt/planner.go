// Package rrt plans collision-free waypoint sequences with a rapidly-exploring
// random tree grown over geographic coordinates.
//
// A search runs synchronously: Plan builds a heading-biased search space around the
// vehicle, grows a tree from the start position toward the target while an injected
// Oracle gates every edge, then extracts, prunes and trims the path. Nothing carries
// over from one Plan call to the next.
package rrt

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
)

// Oracle answers collision and coverage questions about terrain and obstacles.
// Implementations must be deterministic and free of side effects; a Planner calls
// them from a single goroutine.
type Oracle interface {
	PointBlocked(loc models.Location, alt float64) bool
	SegmentBlocked(a, b models.Location, alt float64) bool
	WithinCoverage(loc models.Location) bool
}

// Status is the search state. Succeeded, Exhausted and Blocked are terminal.
type Status int

const (
	Initializing Status = iota
	Growing
	Succeeded
	Exhausted
	Blocked
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Growing:
		return "growing"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Retryable reports whether a larger budget or another seed could change the outcome
func (s Status) Retryable() bool {
	return s == Exhausted
}

// Request describes one planning problem
type Request struct {
	Start      models.Location `json:"start"`
	Heading    float64         `json:"heading"`  // degrees
	Altitude   float64         `json:"altitude"` // planning altitude, meters
	Target     models.Location `json:"target"`
	Iterations int             `json:"iterations"`
}

// Validate checks coordinates and budget
func (r Request) Validate() error {
	if !validLocation(r.Start) {
		return fmt.Errorf("%w: start (%v, %v) is not a valid coordinate", ErrInvalidRequest, r.Start.Lat, r.Start.Lon)
	}
	if !validLocation(r.Target) {
		return fmt.Errorf("%w: target (%v, %v) is not a valid coordinate", ErrInvalidRequest, r.Target.Lat, r.Target.Lon)
	}
	if math.IsNaN(r.Heading) || math.IsInf(r.Heading, 0) {
		return fmt.Errorf("%w: heading must be finite", ErrInvalidRequest)
	}
	if math.IsNaN(r.Altitude) || math.IsInf(r.Altitude, 0) {
		return fmt.Errorf("%w: altitude must be finite", ErrInvalidRequest)
	}
	if r.Iterations < 0 {
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidRequest, r.Iterations)
	}
	return nil
}

func validLocation(loc models.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180
}

// Result is the outcome of a search. Waypoints excludes the current position and
// the final approach node, so an empty slice on success is a valid answer.
type Result struct {
	Status     Status            `json:"status"`
	Waypoints  []models.Location `json:"waypoints"`
	Iterations int               `json:"iterations"`
	Accepted   int               `json:"accepted"`
	Rejected   int               `json:"rejected"`
	TreeSize   int               `json:"tree_size"`
	Space      SearchSpace       `json:"space"`
	// Elapsed is for diagnostics only; it never stops a search.
	Elapsed time.Duration `json:"elapsed"`
}

// Option configures a Planner
type Option func(*Planner)

// WithRand sets the random source. The planner takes ownership of it.
func WithRand(r *rand.Rand) Option {
	return func(p *Planner) {
		p.rng = r
	}
}

// WithSeed seeds a private random source so runs are reproducible
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = l
	}
}

// Planner runs RRT searches against one oracle. It is not safe for concurrent
// use; give each goroutine its own Planner.
type Planner struct {
	oracle Oracle
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
	tree   *Tree
}

// New creates a planner. Without WithRand or WithSeed the random source is seeded
// from the clock.
func New(oracle Oracle, cfg Config, opts ...Option) (*Planner, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: nil oracle", ErrInvalidRequest)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Planner{
		oracle: oracle,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p, nil
}

// Config returns the planner's tuning
func (p *Planner) Config() Config {
	return p.cfg
}

// Tree returns the tree grown by the most recent Plan call, or nil
func (p *Planner) Tree() *Tree {
	return p.tree
}

// Plan runs one search to completion. The returned Result always carries the
// terminal status; err is non-nil unless the status is Succeeded and wraps
// ErrSpaceUnavailable, ErrTargetBlocked, ErrExhausted or ErrInvalidRequest.
func (p *Planner) Plan(req Request) (Result, error) {
	started := time.Now()
	res, err := p.plan(req)
	res.Elapsed = time.Since(started)

	if p.tree != nil {
		res.TreeSize = p.tree.Size()
	}

	attrs := []any{
		"status", res.Status.String(),
		"iterations", res.Iterations,
		"tree_size", res.TreeSize,
		"waypoints", len(res.Waypoints),
		"elapsed", res.Elapsed,
	}
	if err != nil {
		p.logger.Info("search finished without a path", append(attrs, "error", err)...)
	} else {
		p.logger.Info("search finished", attrs...)
	}
	return res, err
}

func (p *Planner) plan(req Request) (Result, error) {
	res := Result{Status: Initializing}
	p.tree = nil

	if err := req.Validate(); err != nil {
		return res, err
	}

	d := geo.Distance(req.Start, req.Target)
	space, err := BuildSearchSpace(req.Start, req.Heading, d, p.cfg.Space, p.oracle.WithinCoverage)
	if err != nil {
		res.Status = Blocked
		return res, fmt.Errorf("failed to build search space: %w", err)
	}
	res.Space = space
	p.logger.Debug("search space built",
		"origin", space.Origin, "width", space.Width, "height", space.Height, "distance", d)

	p.tree = NewTree(req.Start)

	if p.oracle.PointBlocked(req.Target, req.Altitude) {
		res.Status = Blocked
		return res, fmt.Errorf("%w: (%.6f, %.6f) at %.1f m", ErrTargetBlocked, req.Target.Lat, req.Target.Lon, req.Altitude)
	}

	if d == 0 {
		res.Status = Succeeded
		res.Waypoints = p.extract(req)
		return res, nil
	}

	res.Status = Growing
	for res.Iterations < req.Iterations {
		res.Iterations++
		done, accepted := p.grow(space, req)
		if !accepted {
			res.Rejected++
			continue
		}
		res.Accepted++
		if done {
			res.Status = Succeeded
			break
		}
	}

	if res.Status != Succeeded {
		res.Status = Exhausted
		return res, fmt.Errorf("%w after %d iterations (%d nodes)", ErrExhausted, res.Iterations, p.tree.Size())
	}

	res.Waypoints = p.extract(req)
	return res, nil
}

// grow performs one sample-nearest-extend step. accepted reports whether a node
// was added; done reports whether that node is the target.
func (p *Planner) grow(space SearchSpace, req Request) (done, accepted bool) {
	sample, goal := p.sample(space, req.Target)
	nearest := p.tree.NearestTo(sample)
	dist := geo.Distance(nearest.Location, sample)

	terminal := goal && dist < p.cfg.BranchLength
	candidate := sample
	if !terminal {
		if dist == 0 {
			return false, false
		}
		if dist > p.cfg.BranchLength {
			candidate = geo.Destination(nearest.Location, geo.Bearing(nearest.Location, sample), p.cfg.BranchLength)
		}
	}

	if p.oracle.SegmentBlocked(nearest.Location, candidate, req.Altitude) {
		return false, false
	}
	if _, err := p.tree.Add(candidate, nearest.ID); err != nil {
		// nearest came from the tree, so its id is always known
		return false, false
	}
	return terminal, true
}

func (p *Planner) sample(space SearchSpace, target models.Location) (models.Location, bool) {
	if p.rng.Float64() < p.cfg.GoalBias {
		return target, true
	}
	return space.Sample(p.rng.Float64(), p.rng.Float64()), false
}

// extract turns the tree into the outgoing waypoint list: root-to-target path,
// pruned, without the current position and without the approach node.
func (p *Planner) extract(req Request) []models.Location {
	approach := p.tree.NearestTo(req.Target)
	path, err := p.tree.PathTo(approach.ID)
	if err != nil {
		return []models.Location{}
	}

	pruned := Prune(path, req.Altitude, p.oracle)
	p.logger.Debug("path extracted", "nodes", len(path), "pruned", len(pruned))
	return trim(pruned)
}

func trim(path []models.Location) []models.Location {
	if len(path) <= 2 {
		return []models.Location{}
	}
	out := make([]models.Location, len(path)-2)
	copy(out, path[1:len(path)-1])
	return out
}
