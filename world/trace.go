// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"quakeclip/cmodel"
	"quakeclip/math/vec"
)

type MoveType int

const (
	MoveNormal MoveType = iota
	// MoveNoMonsters only clips against bsp entities, for line of sight or
	// edge tests.
	MoveNoMonsters
	// MoveMissile uses a larger box against monsters to make them easier to
	// hit.
	MoveMissile
)

var (
	missileMins = vec.Vec3{-15, -15, -15}
	missileMaxs = vec.Vec3{15, 15, 15}
)

type moveClip struct {
	boxMins, boxMaxs vec.Vec3 // enclose the test object along the entire move
	mins, maxs       vec.Vec3 // size of the moving object
	mins2, maxs2     vec.Vec3 // size when clipping against monsters
	start, end       vec.Vec3
	trace            cmodel.Trace
	typ              MoveType
	mask             int
	skip             int
	skipOwner        int
}

// Trace moves the box mins..maxs from start to end through the world and
// all linked solid entities except skip and the entities it owns or is owned
// by. The entity hit is in the Ent field of the result, 0 for the world.
func (w *World) Trace(start, mins, maxs, end vec.Vec3, skip int, mask int) cmodel.Trace {
	return w.Move(start, mins, maxs, end, MoveNormal, skip, mask)
}

// Move is Trace with a move type. Candidate entities are the ones linked
// into the area nodes their absolute bounds touch, not a leaf overlap query.
// The nearest hit wins; StartSolid is set if any candidate started solid.
func (w *World) Move(start, mins, maxs, end vec.Vec3, typ MoveType, skip int, mask int) cmodel.Trace {
	w.mu.RLock()
	defer w.mu.RUnlock()

	clip := moveClip{
		start:     start,
		end:       end,
		mins:      mins,
		maxs:      maxs,
		mins2:     mins,
		maxs2:     maxs,
		typ:       typ,
		mask:      mask,
		skip:      skip,
		skipOwner: NoOwner,
	}
	if e, ok := w.linked[skip]; ok {
		clip.skipOwner = e.Owner
	}
	if typ == MoveMissile {
		clip.mins2 = missileMins
		clip.maxs2 = missileMaxs
	}

	// clip to world
	clip.trace = cmodel.BoxTrace(start, end, mins, maxs, w.model.WorldHead(), mask)
	clip.trace.Ent = 0
	if clip.trace.Fraction == 0 {
		return clip.trace // blocked by the world
	}

	// create the bounding box of the entire move
	lo, hi := vec.MinMax(start, end)
	clip.boxMins = vec.Sub(vec.Add(lo, clip.mins2), vec.Vec3{1, 1, 1})
	clip.boxMaxs = vec.Add(vec.Add(hi, clip.maxs2), vec.Vec3{1, 1, 1})

	w.clipMoveToEntities(&clip)
	return clip.trace
}

func (w *World) clipMoveToEntities(clip *moveClip) {
	touch := w.areaEdicts(clip.boxMins, clip.boxMaxs, AreaSolid, nil)
	for _, e := range touch {
		if e.Solid == SolidNot || e.mapID != w.mapID {
			continue
		}
		if clip.trace.AllSolid {
			return
		}
		if clip.skip >= 0 {
			if e.Num == clip.skip {
				continue
			}
			if e.Owner == clip.skip || clip.skipOwner == e.Num {
				continue
			}
		}
		if clip.typ == MoveNoMonsters && e.Solid != SolidBSP {
			continue
		}
		if clip.mask&cmodel.ContentsDeadMonster == 0 && e.Flags&FlagDeadMonster != 0 {
			continue
		}

		mins, maxs := clip.mins, clip.maxs
		if e.Flags&FlagMonster != 0 {
			mins, maxs = clip.mins2, clip.maxs2
		}
		t := cmodel.TransformedBoxTrace(clip.start, clip.end, mins, maxs,
			e.hull(), clip.mask, e.Origin, e.hullAngles())

		if t.AllSolid || t.Fraction < clip.trace.Fraction {
			t.Ent = e.Num
			t.StartSolid = t.StartSolid || clip.trace.StartSolid
			clip.trace = t
		} else if t.StartSolid {
			clip.trace.StartSolid = true
		}
	}
}

// PointContents returns the contents of the world and all solid entities
// at p.
func (w *World) PointContents(p vec.Vec3) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	contents := w.model.PointContents(p)
	for _, e := range w.areaEdicts(p, p, AreaSolid, nil) {
		contents |= cmodel.TransformedPointContents(p, e.hull(), e.Origin, e.hullAngles())
	}
	return contents
}

// TestEntityPosition reports whether e is stuck in the world or another
// entity.
func (w *World) TestEntityPosition(e *Entity) bool {
	t := w.Trace(e.Origin, e.Mins, e.Maxs, e.Origin, e.Num, e.clipMask())
	return t.StartSolid
}
