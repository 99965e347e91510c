// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"github.com/chewxy/math32"

	"quakeclip/conlog"
	"quakeclip/cvars"
	qmath "quakeclip/math"
	"quakeclip/math/vec"
)

// DistEpsilon keeps the end of a trace off the plane it hit.
const DistEpsilon = 1.0 / 32

// NoEntity marks a trace that has not been assigned to an entity.
const NoEntity = -1

// Trace is the result of sweeping a box through a tree.
type Trace struct {
	AllSolid   bool // the whole move is inside a solid
	StartSolid bool // the start is inside a solid
	Fraction   float32
	EndPos     vec.Vec3
	Plane      Plane    // surface normal at impact, world space
	Surface    *Surface // nil if nothing or a null surface was hit
	Contents   int      // contents of the brush that was hit
	Ent        int      // set by the entity layer, NoEntity otherwise
}

type traceFrame struct {
	node     ChildRef
	p1f, p2f float32
	p1, p2   vec.Vec3
}

// traceWork holds the scratch state of a single trace. It is pooled per tree
// and never shared between concurrent traces.
type traceWork struct {
	head    *HeadRef
	start   vec.Vec3
	end     vec.Vec3
	mins    vec.Vec3
	maxs    vec.Vec3
	extents vec.Vec3
	offsets [8]vec.Vec3
	isPoint bool
	mask    int
	trace   Trace

	checked []uint32 // per brush, equal to gen if clipped in this trace
	gen     uint32
	stack   []traceFrame
	leafs   []int
	brushes int
}

func (t *Tree) getWork(head *HeadRef) *traceWork {
	w, _ := t.work.Get().(*traceWork)
	if w == nil {
		w = &traceWork{}
	}
	if len(w.checked) != len(t.Brushes) {
		w.checked = make([]uint32, len(t.Brushes))
		w.gen = 0
	}
	w.gen++
	if w.gen == 0 {
		clear(w.checked)
		w.gen = 1
	}
	w.head = head
	w.brushes = 0
	w.stack = w.stack[:0]
	w.leafs = w.leafs[:0]
	return w
}

func (t *Tree) putWork(w *traceWork) {
	w.head = nil
	t.work.Put(w)
}

// BoxTrace sweeps the box mins..maxs from start to end through the tree of
// head and reports the first brush matching mask that blocks it.
func BoxTrace(start, end, mins, maxs vec.Vec3, head HeadRef, mask int) Trace {
	tr := Trace{
		Fraction: 1,
		EndPos:   end,
		Ent:      NoEntity,
	}
	if !head.Valid() {
		return tr
	}
	if start.IsNaN() || end.IsNaN() || mins.IsNaN() || maxs.IsNaN() {
		conlog.DPrintf("BoxTrace: NaN in trace %v %v", start, end)
		tr.Fraction = 0
		tr.EndPos = start
		return tr
	}

	t := head.tree
	w := t.getWork(&head)
	defer t.putWork(w)

	w.start, w.end = start, end
	w.mins, w.maxs = mins, maxs
	w.mask = mask
	w.trace = tr
	w.offsets = signOffsets(mins, maxs)

	if start == end {
		w.positionTest()
		w.trace.EndPos = start
		instrumentTrace(true, w.brushes)
		return w.trace
	}

	if mins == (vec.Vec3{}) && maxs == (vec.Vec3{}) {
		w.isPoint = true
		w.extents = vec.Vec3{}
	} else {
		w.isPoint = false
		for i := 0; i < 3; i++ {
			w.extents[i] = math32.Max(-mins[i], maxs[i])
		}
	}

	w.descend()

	if w.trace.Fraction == 1 {
		w.trace.EndPos = end
	} else {
		w.trace.EndPos = vec.Lerp(start, end, w.trace.Fraction)
	}
	instrumentTrace(false, w.brushes)
	return w.trace
}

// positionTest checks whether the box at start is inside any brush.
func (w *traceWork) positionTest() {
	one := vec.Vec3{1, 1, 1}
	c1 := vec.Sub(vec.Add(w.start, w.mins), one)
	c2 := vec.Add(vec.Add(w.start, w.maxs), one)
	limit := int(cvars.MaxTraceLeafs.Value())
	if limit <= 0 {
		limit = 1
	}
	w.leafs, _ = w.head.boxLeafs(c1, c2, limit, w.leafs[:0])
	for _, l := range w.leafs {
		w.testInLeaf(l)
		if w.trace.AllSolid {
			return
		}
	}
}

func (w *traceWork) testInLeaf(num int) {
	t := w.head.tree
	leaf := t.leaf(num)
	if w.head.leafContents(leaf)&w.mask == 0 {
		return
	}
	for _, b := range leaf.Brushes {
		if w.checked[b] == w.gen {
			continue
		}
		w.checked[b] = w.gen
		brush := &t.Brushes[b]
		if w.head.brushContents(brush)&w.mask == 0 {
			continue
		}
		w.testBoxInBrush(brush)
		if w.trace.AllSolid {
			return
		}
	}
}

func (w *traceWork) testBoxInBrush(brush *Brush) {
	if len(brush.Sides) == 0 {
		return
	}
	w.brushes++
	for _, side := range brush.Sides {
		p := w.head.plane(side.Plane)
		ofs := w.offsets[p.SignBits]
		dist := p.Dist - vec.Dot(ofs, p.Normal)
		d1 := vec.Dot(w.start, p.Normal) - dist
		// if completely in front of face, no intersection
		if d1 > 0 {
			return
		}
	}
	w.trace.StartSolid = true
	w.trace.AllSolid = true
	w.trace.Fraction = 0
	w.trace.Contents = w.head.brushContents(brush)
}

// descend walks the tree front to back along the move. Far children are
// pushed before near ones so the near side is finished first, and a frame is
// dropped once something closer than its start was hit.
func (w *traceWork) descend() {
	t := w.head.tree
	w.stack = append(w.stack, traceFrame{
		node: w.head.root,
		p1f:  0,
		p2f:  1,
		p1:   w.start,
		p2:   w.end,
	})
	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]

		if w.trace.Fraction <= f.p1f {
			continue
		}
		if f.node.IsLeaf() {
			w.traceToLeaf(f.node.Index())
			continue
		}
		node, ok := t.node(f.node.Index())
		if !ok {
			w.traceToLeaf(t.NullLeaf())
			continue
		}
		plane := w.head.plane(node.Plane)

		var t1, t2, offset float32
		if plane.Type < PlaneGeneral {
			t1 = f.p1[plane.Type] - plane.Dist
			t2 = f.p2[plane.Type] - plane.Dist
			offset = w.extents[plane.Type]
		} else {
			t1 = vec.Dot(plane.Normal, f.p1) - plane.Dist
			t2 = vec.Dot(plane.Normal, f.p2) - plane.Dist
			if !w.isPoint {
				offset = math32.Abs(w.extents[0]*plane.Normal[0]) +
					math32.Abs(w.extents[1]*plane.Normal[1]) +
					math32.Abs(w.extents[2]*plane.Normal[2])
			}
		}

		if t1 >= offset && t2 >= offset {
			f.node = node.Children[0]
			w.stack = append(w.stack, f)
			continue
		}
		if t1 < -offset && t2 < -offset {
			f.node = node.Children[1]
			w.stack = append(w.stack, f)
			continue
		}

		// the move crosses the plane, split it
		var side int
		var frac, frac2 float32
		switch {
		case t1 < t2:
			idist := 1 / (t1 - t2)
			side = 1
			frac2 = (t1 + offset + DistEpsilon) * idist
			frac = (t1 - offset + DistEpsilon) * idist
		case t1 > t2:
			idist := 1 / (t1 - t2)
			side = 0
			frac2 = (t1 - offset - DistEpsilon) * idist
			frac = (t1 + offset + DistEpsilon) * idist
		default:
			side = 0
			frac = 1
			frac2 = 0
		}
		frac = clampFraction(frac)
		frac2 = clampFraction(frac2)

		far := traceFrame{
			node: node.Children[side^1],
			p1f:  f.p1f + (f.p2f-f.p1f)*frac2,
			p2f:  f.p2f,
			p1:   vec.Lerp(f.p1, f.p2, frac2),
			p2:   f.p2,
		}
		near := traceFrame{
			node: node.Children[side],
			p1f:  f.p1f,
			p2f:  f.p1f + (f.p2f-f.p1f)*frac,
			p1:   f.p1,
			p2:   vec.Lerp(f.p1, f.p2, frac),
		}
		w.stack = append(w.stack, far, near)
	}
}

func clampFraction(f float32) float32 {
	return qmath.Clamp(0, f, 1)
}

func (w *traceWork) traceToLeaf(num int) {
	t := w.head.tree
	leaf := t.leaf(num)
	if w.head.leafContents(leaf)&w.mask == 0 {
		return
	}
	for _, b := range leaf.Brushes {
		if w.checked[b] == w.gen {
			continue
		}
		w.checked[b] = w.gen
		brush := &t.Brushes[b]
		if w.head.brushContents(brush)&w.mask == 0 {
			continue
		}
		w.clipBoxToBrush(brush)
		if w.trace.Fraction == 0 {
			return
		}
	}
}

// clipBoxToBrush clips the whole move against one convex brush.
func (w *traceWork) clipBoxToBrush(brush *Brush) {
	if len(brush.Sides) == 0 {
		return
	}
	w.brushes++

	enterFrac := float32(-1)
	leaveFrac := float32(1)
	var clipPlane Plane
	var leadSide *BrushSide
	getOut := false
	startOut := false

	for i := range brush.Sides {
		side := &brush.Sides[i]
		p := w.head.plane(side.Plane)

		dist := p.Dist
		if !w.isPoint {
			// push the plane out by the box corner closest to it
			dist -= vec.Dot(w.offsets[p.SignBits], p.Normal)
		}
		d1 := vec.Dot(w.start, p.Normal) - dist
		d2 := vec.Dot(w.end, p.Normal) - dist

		if d2 > 0 {
			getOut = true
		}
		if d1 > 0 {
			startOut = true
		}
		// completely in front of face, no intersection
		if d1 > 0 && d2 >= d1 {
			return
		}
		if d1 <= 0 && d2 <= 0 {
			continue
		}
		if d1 > d2 {
			// enter
			f := (d1 - DistEpsilon) / (d1 - d2)
			if f >= enterFrac {
				enterFrac = f
				clipPlane = p
				leadSide = side
			}
		} else {
			// leave
			f := (d1 + DistEpsilon) / (d1 - d2)
			if f < leaveFrac {
				leaveFrac = f
			}
		}
	}

	if !startOut {
		w.trace.StartSolid = true
		if !getOut {
			w.trace.AllSolid = true
			w.trace.Fraction = 0
			w.trace.Contents = w.head.brushContents(brush)
		}
		return
	}
	if enterFrac < leaveFrac && enterFrac > -1 && enterFrac < w.trace.Fraction {
		if enterFrac < 0 {
			enterFrac = 0
		}
		w.trace.Fraction = enterFrac
		w.trace.Plane = clipPlane
		w.trace.Surface = w.head.tree.surface(leadSide.Surface)
		w.trace.Contents = w.head.brushContents(brush)
	}
}

// TransformedBoxTrace traces against a tree placed at origin and rotated by
// angles, like a door or a rotating platform. Synthetic hulls are never
// rotated.
func TransformedBoxTrace(start, end, mins, maxs vec.Vec3, head HeadRef, mask int, origin, angles vec.Vec3) Trace {
	startL := vec.Sub(start, origin)
	endL := vec.Sub(end, origin)

	rotated := !head.Synthetic() && angles != (vec.Vec3{})
	var forward, right, up vec.Vec3
	if rotated {
		forward, right, up = vec.AngleVectors(angles)
		startL = toLocal(startL, forward, right, up)
		endL = toLocal(endL, forward, right, up)
	}

	tr := BoxTrace(startL, endL, mins, maxs, head, mask)

	if tr.Fraction != 1 && tr.Plane.Normal != (vec.Vec3{}) {
		n := tr.Plane.Normal
		if rotated {
			n = toWorld(n, forward, right, up)
		}
		tr.Plane = NewPlane(n, tr.Plane.Dist+vec.Dot(n, origin))
	}
	if tr.Fraction == 1 {
		tr.EndPos = end
	} else {
		tr.EndPos = vec.Lerp(start, end, tr.Fraction)
	}
	return tr
}

// toLocal expresses v in the basis forward, left, up.
func toLocal(v, forward, right, up vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		vec.Dot(v, forward),
		-vec.Dot(v, right),
		vec.Dot(v, up),
	}
}

// toWorld is the inverse of toLocal. The basis is orthonormal so the
// transpose is used.
func toWorld(v, forward, right, up vec.Vec3) vec.Vec3 {
	var r vec.Vec3
	for i := 0; i < 3; i++ {
		r[i] = v[0]*forward[i] - v[1]*right[i] + v[2]*up[i]
	}
	return r
}
