package rrt

import (
	"slices"

	"github.com/kass/go-rrt-planner/pkg/models"
)

// Prune shortcuts a path with a greedy left-to-right sweep. For each index i the
// segment i -> i+2 is tested; when it is clear, i+1 is dropped and i is retried
// against the new i+2, otherwise the sweep moves on. Index 0, the current position,
// is never dropped. After a drop the previous index is re-tested as well, since its
// i+2 changed, so Prune(Prune(p)) == Prune(p).
//
// The result is a new slice; path is not modified. The shortcutting is greedy, not
// a shortest-path optimum.
func Prune(path []models.Location, alt float64, oracle Oracle) []models.Location {
	out := slices.Clone(path)
	for i := 0; i+2 < len(out); {
		if oracle.SegmentBlocked(out[i], out[i+2], alt) {
			i++
			continue
		}
		out = slices.Delete(out, i+1, i+2)
		if i > 0 {
			i--
		}
	}
	return out
}
