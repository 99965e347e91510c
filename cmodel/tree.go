// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"quakeclip/conlog"
)

// ChildRef references either a node or a leaf of a Tree.
type ChildRef struct {
	leaf  bool
	index uint32
}

func NodeRef(i int) ChildRef {
	return ChildRef{index: uint32(i)}
}

func LeafRef(i int) ChildRef {
	return ChildRef{leaf: true, index: uint32(i)}
}

func (c ChildRef) IsLeaf() bool {
	return c.leaf
}

func (c ChildRef) Index() int {
	return int(c.index)
}

func (c ChildRef) String() string {
	if c.leaf {
		return fmt.Sprintf("leaf %d", c.index)
	}
	return fmt.Sprintf("node %d", c.index)
}

type Node struct {
	Plane    int
	Children [2]ChildRef // front, back
}

type Leaf struct {
	Contents int
	Cluster  int
	Area     int
	Brushes  []int
}

// Surface describes the material of a brush side.
type Surface struct {
	Name  string
	Flags int
	Value int
}

type BrushSide struct {
	Plane   int
	Surface int
}

// Brush is a convex volume, the intersection of the back half spaces of
// all its sides.
type Brush struct {
	Contents int
	Sides    []BrushSide
}

// Tree is the immutable collision tree of a map or a synthetic hull. The
// last leaf is always the empty null leaf and Surfaces[0] the null
// surface.
type Tree struct {
	Planes   []Plane
	Nodes    []Node
	Leafs    []Leaf
	Brushes  []Brush
	Surfaces []Surface
	MaxDepth int

	work sync.Pool
}

func (t *Tree) NullLeaf() int {
	return len(t.Leafs) - 1
}

// leaf returns the leaf i or the null leaf for bad indices.
func (t *Tree) leaf(i int) *Leaf {
	if i < 0 || i >= len(t.Leafs) {
		conlog.Warnf("bad leaf number %d", i)
		return &t.Leafs[t.NullLeaf()]
	}
	return &t.Leafs[i]
}

func (t *Tree) node(i int) (*Node, bool) {
	if i < 0 || i >= len(t.Nodes) {
		conlog.Warnf("bad node number %d", i)
		return nil, false
	}
	return &t.Nodes[i], true
}

func (t *Tree) surface(i int) *Surface {
	if i <= 0 || i >= len(t.Surfaces) {
		return nil
	}
	return &t.Surfaces[i]
}

// validate checks the tree below root is a strict binary tree with every
// reference in range and records the maximum depth.
func (t *Tree) validate(root ChildRef) error {
	if len(t.Leafs) == 0 {
		return errors.Errorf("tree without leafs")
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Plane < 0 || n.Plane >= len(t.Planes) {
			return errors.Errorf("node %d: bad plane %d", i, n.Plane)
		}
		for _, c := range n.Children {
			if c.IsLeaf() && c.Index() >= len(t.Leafs) {
				return errors.Errorf("node %d: bad leaf %d", i, c.Index())
			}
			if !c.IsLeaf() && c.Index() >= len(t.Nodes) {
				return errors.Errorf("node %d: bad child node %d", i, c.Index())
			}
		}
	}
	for i := range t.Leafs {
		for _, b := range t.Leafs[i].Brushes {
			if b < 0 || b >= len(t.Brushes) {
				return errors.Errorf("leaf %d: bad brush %d", i, b)
			}
		}
	}
	for i := range t.Brushes {
		for _, s := range t.Brushes[i].Sides {
			if s.Plane < 0 || s.Plane >= len(t.Planes) {
				return errors.Errorf("brush %d: bad plane %d", i, s.Plane)
			}
			if s.Surface < 0 || s.Surface >= len(t.Surfaces) {
				return errors.Errorf("brush %d: bad surface %d", i, s.Surface)
			}
		}
	}
	if root.IsLeaf() {
		if root.Index() >= len(t.Leafs) {
			return errors.Errorf("bad head leaf %d", root.Index())
		}
		return nil
	}
	if root.Index() >= len(t.Nodes) {
		return errors.Errorf("bad head node %d", root.Index())
	}
	depth, err := t.depth(root.Index())
	if err != nil {
		return err
	}
	if depth > t.MaxDepth {
		t.MaxDepth = depth
	}
	return nil
}

const (
	unvisited = iota
	visiting
	done
)

// depth walks the nodes below root without recursion. A node met again
// while still on the path is a cycle, one met again after being finished is
// shared by two parents; both are rejected.
func (t *Tree) depth(root int) (int, error) {
	state := make([]uint8, len(t.Nodes))
	type frame struct {
		node  int
		child int
	}
	stack := []frame{{node: root}}
	state[root] = visiting
	max := 1
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.child == 2 {
			state[f.node] = done
			stack = stack[:len(stack)-1]
			continue
		}
		c := t.Nodes[f.node].Children[f.child]
		f.child++
		if c.IsLeaf() {
			if len(stack)+1 > max {
				max = len(stack) + 1
			}
			continue
		}
		switch state[c.Index()] {
		case visiting:
			return 0, errors.Errorf("cycle at node %d", c.Index())
		case done:
			return 0, errors.Errorf("node %d has two parents", c.Index())
		}
		state[c.Index()] = visiting
		stack = append(stack, frame{node: c.Index()})
	}
	return max, nil
}
