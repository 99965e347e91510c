// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"quakeclip/cmodel"
	"quakeclip/math/vec"
)

const stepSize = 18

// CheckBottom returns false if any part of the bottom of the entity is off
// an edge that is not a staircase.
func (w *World) CheckBottom(e *Entity) bool {
	mins := vec.Add(e.Origin, e.Mins)
	maxs := vec.Add(e.Origin, e.Maxs)

	// if all of the points under the corners are solid world, don't bother
	// with the tougher checks
	for _, c := range [4][2]float32{
		{mins[0], mins[1]},
		{mins[0], maxs[1]},
		{maxs[0], mins[1]},
		{maxs[0], maxs[1]},
	} {
		p := vec.Vec3{c[0], c[1], mins[2] - 1}
		if w.PointContents(p)&cmodel.ContentsSolid == 0 {
			return w.expensiveCheckBottom(e, mins, maxs)
		}
	}
	return true
}

func (w *World) expensiveCheckBottom(e *Entity, mins, maxs vec.Vec3) bool {
	level := mins[2]
	below := mins[2] - 2*stepSize

	// the midpoint must be within 16 of the bottom
	start := vec.Vec3{
		(mins[0] + maxs[0]) * 0.5,
		(mins[1] + maxs[1]) * 0.5,
		level,
	}
	stop := vec.Vec3{start[0], start[1], below}
	t := w.Trace(start, vec.Vec3{}, vec.Vec3{}, stop, e.Num, cmodel.MaskMonsterSolid)
	if t.Fraction == 1 {
		return false
	}
	mid := t.EndPos[2]
	bottom := mid

	// the corners must be within 16 of the midpoint
	for _, c := range [4][2]float32{
		{mins[0], mins[1]},
		{mins[0], maxs[1]},
		{maxs[0], mins[1]},
		{maxs[0], maxs[1]},
	} {
		start := vec.Vec3{c[0], c[1], level}
		stop := vec.Vec3{c[0], c[1], below}
		t := w.Trace(start, vec.Vec3{}, vec.Vec3{}, stop, e.Num, cmodel.MaskMonsterSolid)

		if t.Fraction != 1 && t.EndPos[2] > bottom {
			bottom = t.EndPos[2]
		}
		if t.Fraction == 1 || mid-t.EndPos[2] > stepSize {
			return false
		}
	}
	return true
}
