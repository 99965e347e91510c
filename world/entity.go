// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"container/ring"

	"github.com/google/uuid"

	"quakeclip/cmodel"
	qmath "quakeclip/math"
	"quakeclip/math/vec"
)

// NoOwner is the Owner of entities nobody owns.
const NoOwner = -1

// Entity is the collision relevant state of a game entity. The fields up to
// ClipMask are owned by the caller; Link computes the rest.
type Entity struct {
	Num      int
	Origin   vec.Vec3
	Angles   vec.Vec3
	Mins     vec.Vec3
	Maxs     vec.Vec3
	Solid    Solid
	Flags    int
	Owner    int
	Model    string // inline model name of SolidBSP entities, e.g. "*1"
	ClipMask int    // mask of its own moves, MaskSolid if zero

	AbsMin   vec.Vec3
	AbsMax   vec.Vec3
	Leafs    []int
	Clusters []int // empty if the entity touches too many, see headNode
	Areas    [2]int

	head     cmodel.HeadRef // inline model of SolidBSP entities
	headNode cmodel.HeadRef // world node of entities touching many clusters
	mapID    uuid.UUID
	link     *ring.Ring
}

// NewEntity returns an unowned entity with number num.
func NewEntity(num int) *Entity {
	return &Entity{Num: num, Owner: NoOwner}
}

// Linked reports whether e is in the index of the current map of w.
func (w *World) Linked(e *Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return e.mapID == w.mapID && w.linked[e.Num] == e
}

func (e *Entity) clipMask() int {
	if e.ClipMask != 0 {
		return e.ClipMask
	}
	return cmodel.MaskSolid
}

// hull returns the tree to clip against.
func (e *Entity) hull() cmodel.HeadRef {
	if e.Solid == SolidBSP {
		return e.head
	}
	var h cmodel.HeadRef
	if e.Flags&FlagCylinder != 0 {
		h = cmodel.HeadnodeForOctagon(e.Mins, e.Maxs)
	} else {
		h = cmodel.HeadnodeForBox(e.Mins, e.Maxs)
	}
	if e.Flags&FlagDeadMonster != 0 {
		h = h.WithContents(cmodel.ContentsDeadMonster)
	}
	return h
}

// hullAngles are ignored for boxes.
func (e *Entity) hullAngles() vec.Vec3 {
	if e.Solid == SolidBSP {
		return qmath.AnglesMod(e.Angles)
	}
	return vec.Vec3{}
}
