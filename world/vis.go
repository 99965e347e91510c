// SPDX-License-Identifier: GPL-2.0-or-later

package world

import (
	"quakeclip/cmodel"
	"quakeclip/math/vec"
)

// InPVS reports whether p2 is potentially visible from p1. Closed area
// portals block the view.
func (w *World) InPVS(p1, p2 vec.Vec3) bool {
	return w.inVis(p1, p2, (*cmodel.Model).ClusterPVS)
}

// InPHS is InPVS for sounds.
func (w *World) InPHS(p1, p2 vec.Vec3) bool {
	return w.inVis(p1, p2, (*cmodel.Model).ClusterPHS)
}

func (w *World) inVis(p1, p2 vec.Vec3, rows func(*cmodel.Model, int) []byte) bool {
	m := w.Model()
	l1 := m.PointLeafnum(p1)
	bits := rows(m, m.LeafCluster(l1))
	l2 := m.PointLeafnum(p2)
	c2 := m.LeafCluster(l2)
	if !visible(bits, c2) {
		return false
	}
	return m.AreasConnected(m.LeafArea(l1), m.LeafArea(l2))
}

func visible(bits []byte, cluster int) bool {
	if cluster < 0 || cluster>>3 >= len(bits) {
		return false
	}
	return bits[cluster>>3]&(1<<(cluster&7)) != 0
}

// EntityVisible reports whether the linked entity e is relevant for a
// viewer in area with the cluster set bits, e.g. a FatPVS.
func (w *World) EntityVisible(e *Entity, area int, bits []byte) bool {
	if !w.Linked(e) {
		return false
	}
	m := w.Model()
	if !m.AreasConnected(area, e.Areas[0]) {
		// doors can legally straddle two areas, so we may need to check
		// another one
		if e.Areas[1] == 0 || !m.AreasConnected(area, e.Areas[1]) {
			return false
		}
	}
	if e.headNode.Valid() {
		return cmodel.HeadnodeVisible(e.headNode, bits)
	}
	for _, c := range e.Clusters {
		if visible(bits, c) {
			return true
		}
	}
	return false
}
