// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"quakeclip/math/vec"
)

// PointLeafnum returns the leaf of head's tree containing p.
func PointLeafnum(p vec.Vec3, head HeadRef) int {
	if !head.Valid() {
		return 0
	}
	return head.pointLeaf(p)
}

func (h *HeadRef) pointLeaf(p vec.Vec3) int {
	t := h.tree
	c := h.root
	for !c.IsLeaf() {
		n, ok := t.node(c.Index())
		if !ok {
			return t.NullLeaf()
		}
		plane := h.plane(n.Plane)
		if plane.Distance(p) < 0 {
			c = n.Children[1]
		} else {
			c = n.Children[0]
		}
	}
	if c.Index() >= len(t.Leafs) {
		return t.NullLeaf()
	}
	return c.Index()
}

// PointContents returns the contents of the leaf containing p.
func PointContents(p vec.Vec3, head HeadRef) int {
	if !head.Valid() {
		return 0
	}
	pointContentsCount.Inc()
	l := head.pointLeaf(p)
	return head.leafContents(head.tree.leaf(l))
}

// TransformedPointContents handles tree models that are placed at origin and
// rotated by angles.
func TransformedPointContents(p vec.Vec3, head HeadRef, origin, angles vec.Vec3) int {
	local := vec.Sub(p, origin)
	if !head.Synthetic() && angles != (vec.Vec3{}) {
		forward, right, up := vec.AngleVectors(angles)
		local = toLocal(local, forward, right, up)
	}
	return PointContents(local, head)
}

// BoxLeafs returns up to maxCount leafs touched by the box and the first node
// that splits the box. If no node splits it, top is the only leaf.
func BoxLeafs(mins, maxs vec.Vec3, maxCount int, head HeadRef) (leafs []int, top ChildRef) {
	if !head.Valid() || maxCount <= 0 {
		return nil, LeafRef(0)
	}
	boxLeafsCount.Inc()
	return head.boxLeafs(mins, maxs, maxCount, nil)
}

func (h *HeadRef) boxLeafs(mins, maxs vec.Vec3, maxCount int, list []int) ([]int, ChildRef) {
	t := h.tree
	top := ChildRef{}
	haveTop := false
	var stackBuf [64]ChildRef
	stack := append(stackBuf[:0], h.root)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for {
			if c.IsLeaf() {
				if !haveTop {
					top, haveTop = c, true
				}
				if len(list) < maxCount {
					list = append(list, c.Index())
				}
				break
			}
			n, ok := t.node(c.Index())
			if !ok {
				break
			}
			plane := h.plane(n.Plane)
			switch BoxOnPlaneSide(mins, maxs, &plane) {
			case 1:
				c = n.Children[0]
			case 2:
				c = n.Children[1]
			default:
				// go down both
				if !haveTop {
					top, haveTop = c, true
				}
				stack = append(stack, n.Children[1])
				c = n.Children[0]
			}
		}
		if len(list) >= maxCount {
			break
		}
	}
	return list, top
}
