package rrt

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kass/go-rrt-planner/pkg/geo"
	"github.com/kass/go-rrt-planner/pkg/models"
)

// Snapshot is the serializable form of a search tree, written for offline
// inspection of a finished search
type Snapshot struct {
	Nodes  []Node          `json:"nodes"`
	Target models.Location `json:"target"`
	Status Status          `json:"status"`
}

// Snapshot copies the tree's nodes
func (t *Tree) Snapshot() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// SaveToFile saves a snapshot to a binary file
func (s Snapshot) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot loads a snapshot from a binary file
func LoadSnapshot(filename string) (Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var s Snapshot
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return s, nil
}

// Rebuild reconstructs a tree from the snapshot, checking that every parent
// precedes its child
func (s Snapshot) Rebuild() (*Tree, error) {
	if len(s.Nodes) == 0 || !s.Nodes[0].IsRoot() {
		return nil, fmt.Errorf("failed to rebuild tree: snapshot has no root")
	}

	t := NewTree(s.Nodes[0].Location)
	for _, n := range s.Nodes[1:] {
		id, err := t.Add(n.Location, n.Parent)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild tree: %w", err)
		}
		if id != n.ID {
			return nil, fmt.Errorf("failed to rebuild tree: node %d out of order", n.ID)
		}
	}
	return t, nil
}

// Summary describes the shape of a finished tree relative to its target
type Summary struct {
	Leaves          int
	MaxDepth        int
	Closest         Node
	ClosestDistance float64
	Path            []models.Location
	PathLength      float64
}

// Summarize measures the tree: leaf count, depth and the path to the node
// nearest target
func Summarize(t *Tree, target models.Location) Summary {
	children := make([]int, t.Size())
	depth := make([]int, t.Size())
	var s Summary
	for n := range t.Nodes() {
		if n.IsRoot() {
			continue
		}
		children[n.Parent]++
		depth[n.ID] = depth[n.Parent] + 1
		s.MaxDepth = max(s.MaxDepth, depth[n.ID])
	}
	for _, c := range children {
		if c == 0 {
			s.Leaves++
		}
	}

	s.Closest = t.NearestTo(target)
	s.ClosestDistance = geo.Distance(s.Closest.Location, target)
	s.Path, _ = t.PathTo(s.Closest.ID)
	for i := 1; i < len(s.Path); i++ {
		s.PathLength += geo.Distance(s.Path[i-1], s.Path[i])
	}
	return s
}
