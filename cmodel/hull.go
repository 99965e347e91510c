// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"sync"

	"github.com/chewxy/math32"

	"quakeclip/math/vec"
)

const maxHullPlanes = 10

// HeadRef is where a trace starts: a node of a loaded map (world or
// inline model) or a synthetic hull with the plane distances bound to one
// box. HeadRef is a value, the shared trees are never written through it.
type HeadRef struct {
	tree     *Tree
	root     ChildRef
	hull     *Hull
	dist     [maxHullPlanes]float32
	contents int
}

// Valid reports whether the reference points into a tree.
func (h *HeadRef) Valid() bool {
	return h.tree != nil && (h.root.IsLeaf() || len(h.tree.Nodes) > 0)
}

// Synthetic reports whether h is a box or octagon hull.
func (h *HeadRef) Synthetic() bool {
	return h.hull != nil
}

func (h *HeadRef) Root() ChildRef {
	return h.root
}

// WithContents returns a copy of a hull reference whose solid reports
// contents instead of ContentsMonster. It has no effect on map trees.
func (h HeadRef) WithContents(contents int) HeadRef {
	if h.hull != nil {
		h.contents = contents
	}
	return h
}

func (h *HeadRef) plane(i int) Plane {
	if i < 0 || i >= len(h.tree.Planes) {
		return Plane{Type: PlaneGeneral}
	}
	p := h.tree.Planes[i]
	if h.hull != nil {
		p.Dist = h.dist[i]
	}
	return p
}

func (h *HeadRef) leafContents(l *Leaf) int {
	if h.hull != nil && l.Contents != 0 {
		return h.contents
	}
	return l.Contents
}

func (h *HeadRef) brushContents(b *Brush) int {
	if h.hull != nil {
		return h.contents
	}
	return b.Contents
}

// Hull is a synthetic convex solid used for entities without brush
// geometry. Its planes have unit normals; distances are supplied per
// reference by Head.
type Hull struct {
	tree *Tree
	// distance of plane i for a box is Dot(normal, pick(mins, maxs)) where
	// pick takes maxs on axes the normal points to
	bound func(mins, maxs vec.Vec3) [maxHullPlanes]float32
}

var (
	boxHullOnce     sync.Once
	boxHull         *Hull
	octagonHullOnce sync.Once
	octagonHull     *Hull
)

// BuildBoxHull returns the shared six sided hull.
func BuildBoxHull() *Hull {
	boxHullOnce.Do(func() {
		boxHull = newHull([]vec.Vec3{
			{1, 0, 0}, {-1, 0, 0},
			{0, 1, 0}, {0, -1, 0},
			{0, 0, 1}, {0, 0, -1},
		}, boxDistances)
	})
	return boxHull
}

// BuildOctagonHull returns the shared ten sided hull: eight vertical faces
// in 45 degree steps plus top and bottom. It approximates a cylinder.
func BuildOctagonHull() *Hull {
	octagonHullOnce.Do(func() {
		d := math32.Sqrt(0.5)
		octagonHull = newHull([]vec.Vec3{
			{1, 0, 0}, {-1, 0, 0},
			{0, 1, 0}, {0, -1, 0},
			{0, 0, 1}, {0, 0, -1},
			{d, d, 0}, {-d, d, 0},
			{-d, -d, 0}, {d, -d, 0},
		}, octagonDistances)
	})
	return octagonHull
}

// newHull builds a chain of nodes, one per plane. The front of every plane
// is outside, so the front child is the empty leaf and the back child the
// next node. Behind the last plane is the leaf holding the single brush.
func newHull(normals []vec.Vec3, bound func(mins, maxs vec.Vec3) [maxHullPlanes]float32) *Hull {
	t := &Tree{
		Surfaces: []Surface{{}},
	}
	const (
		emptyLeaf = 0
		solidLeaf = 1
	)
	brush := Brush{Contents: ContentsMonster}
	for i, n := range normals {
		t.Planes = append(t.Planes, NewPlane(n, 0))
		next := NodeRef(i + 1)
		if i == len(normals)-1 {
			next = LeafRef(solidLeaf)
		}
		t.Nodes = append(t.Nodes, Node{
			Plane:    i,
			Children: [2]ChildRef{LeafRef(emptyLeaf), next},
		})
		brush.Sides = append(brush.Sides, BrushSide{Plane: i})
	}
	t.Brushes = []Brush{brush}
	t.Leafs = []Leaf{
		{Cluster: -1},
		{Contents: ContentsMonster, Cluster: -1, Brushes: []int{0}},
		{Cluster: -1}, // null leaf
	}
	t.MaxDepth = len(normals) + 1
	return &Hull{tree: t, bound: bound}
}

func boxDistances(mins, maxs vec.Vec3) [maxHullPlanes]float32 {
	return [maxHullPlanes]float32{
		maxs[0], -mins[0],
		maxs[1], -mins[1],
		maxs[2], -mins[2],
	}
}

func octagonDistances(mins, maxs vec.Vec3) [maxHullPlanes]float32 {
	d := boxDistances(mins, maxs)
	cx := (mins[0] + maxs[0]) * 0.5
	cy := (mins[1] + maxs[1]) * 0.5
	// a regular octagon for square footprints
	r := ((maxs[0] - mins[0]) + (maxs[1] - mins[1])) * 0.25
	s := math32.Sqrt(0.5)
	for i, n := range [4][2]float32{{s, s}, {-s, s}, {-s, -s}, {s, -s}} {
		d[6+i] = n[0]*cx + n[1]*cy + r
	}
	return d
}

// Head binds the hull to the box mins..maxs in the space of the entity.
func (h *Hull) Head(mins, maxs vec.Vec3) HeadRef {
	return HeadRef{
		tree:     h.tree,
		root:     NodeRef(0),
		hull:     h,
		dist:     h.bound(mins, maxs),
		contents: ContentsMonster,
	}
}

// HeadnodeForBox returns a reference that traces against a solid box.
func HeadnodeForBox(mins, maxs vec.Vec3) HeadRef {
	return BuildBoxHull().Head(mins, maxs)
}

// HeadnodeForOctagon returns a reference that traces against an upright
// octagonal prism inscribed in the box.
func HeadnodeForOctagon(mins, maxs vec.Vec3) HeadRef {
	return BuildOctagonHull().Head(mins, maxs)
}
