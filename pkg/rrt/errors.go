package rrt

import "errors"

var (
	// ErrSpaceUnavailable means a search space corner falls outside elevation or
	// obstacle data coverage. The search never runs on an unvalidated space.
	ErrSpaceUnavailable = errors.New("search space outside data coverage")

	// ErrTargetBlocked means the target itself lies inside an obstacle at the
	// planning altitude.
	ErrTargetBlocked = errors.New("target blocked")

	// ErrExhausted means the iteration budget ran out before the target was
	// reached. Retrying with a larger budget or another seed may succeed.
	ErrExhausted = errors.New("iteration budget exhausted")

	// ErrInvalidRequest is returned for malformed requests or configs.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnknownParent is returned when adding a node under a parent that is not
	// in the tree yet.
	ErrUnknownParent = errors.New("unknown parent node")
)
