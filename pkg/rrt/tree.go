package rrt

import (
	"fmt"
	"iter"
	"slices"

	"github.com/kass/go-rrt-planner/pkg/models"
	"github.com/kass/go-rrt-planner/pkg/rtree"
)

// NodeID is a handle into a Tree's node arena
type NodeID int

// NoParent marks the root
const NoParent NodeID = -1

// Node is one vertex of the search tree. Parent is fixed when the node is added.
type Node struct {
	ID       NodeID
	Location models.Location
	Parent   NodeID
}

// IsRoot reports whether the node has no parent
func (n Node) IsRoot() bool {
	return n.Parent == NoParent
}

// Tree is a rooted, append-only, parent-pointer tree over geographic points.
// Every node's parent was added strictly before it, so ids double as insertion order.
type Tree struct {
	nodes []Node
	index *rtree.GeoIndex
}

// NewTree creates a tree holding only the root
func NewTree(root models.Location) *Tree {
	t := &Tree{index: rtree.NewGeoIndex()}
	t.append(root, NoParent)
	return t
}

// Add appends a node under parent and returns its id
func (t *Tree) Add(loc models.Location, parent NodeID) (NodeID, error) {
	if !t.contains(parent) {
		return 0, fmt.Errorf("failed to add node under %d: %w", parent, ErrUnknownParent)
	}
	return t.append(loc, parent), nil
}

func (t *Tree) append(loc models.Location, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, Location: loc, Parent: parent})
	t.index.Insert(loc, int(id))
	return id
}

// Root returns the root node
func (t *Tree) Root() Node {
	return t.nodes[0]
}

// Node returns the node with the given id
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.contains(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// NearestTo returns the node closest to loc by great-circle distance
func (t *Tree) NearestTo(loc models.Location) Node {
	id, ok := t.index.Nearest(loc)
	if !ok {
		// unreachable: the root is always indexed
		return t.nodes[0]
	}
	return t.nodes[id]
}

// Size returns the number of nodes, root included
func (t *Tree) Size() int {
	return len(t.nodes)
}

// Nodes iterates over all nodes in insertion order
func (t *Tree) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range t.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// PathTo walks parent links from id to the root and returns the locations
// root first
func (t *Tree) PathTo(id NodeID) ([]models.Location, error) {
	if !t.contains(id) {
		return nil, fmt.Errorf("failed to extract path to %d: %w", id, ErrUnknownParent)
	}

	var path []models.Location
	for cur := id; cur != NoParent; cur = t.nodes[cur].Parent {
		path = append(path, t.nodes[cur].Location)
	}
	slices.Reverse(path)
	return path, nil
}

func (t *Tree) contains(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
