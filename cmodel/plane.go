// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"quakeclip/math/vec"
)

type PlaneType uint8

const (
	PlaneAxisX PlaneType = iota
	PlaneAxisY
	PlaneAxisZ
	PlaneGeneral
)

// Plane is a split or brush side plane. Points p with Dot(Normal, p) > Dist
// are in front.
type Plane struct {
	Normal   vec.Vec3
	Dist     float32
	Type     PlaneType
	SignBits uint8 // bit i set if Normal[i] < 0
}

// NewPlane computes Type and SignBits. Only planes with a positive unit
// axis normal get an axis type so the fast paths can compare a single
// coordinate against Dist.
func NewPlane(normal vec.Vec3, dist float32) Plane {
	return Plane{
		Normal:   normal,
		Dist:     dist,
		Type:     planeTypeForNormal(normal),
		SignBits: signBitsForNormal(normal),
	}
}

func planeTypeForNormal(n vec.Vec3) PlaneType {
	switch n {
	case vec.Vec3{1, 0, 0}:
		return PlaneAxisX
	case vec.Vec3{0, 1, 0}:
		return PlaneAxisY
	case vec.Vec3{0, 0, 1}:
		return PlaneAxisZ
	}
	return PlaneGeneral
}

func signBitsForNormal(n vec.Vec3) uint8 {
	var bits uint8
	for i := 0; i < 3; i++ {
		if n[i] < 0 {
			bits |= 1 << i
		}
	}
	return bits
}

// Flip returns the same plane facing the other way.
func (p Plane) Flip() Plane {
	return NewPlane(p.Normal.Negate(), -p.Dist)
}

// Distance returns the signed distance of point from the plane.
func (p *Plane) Distance(point vec.Vec3) float32 {
	switch p.Type {
	case PlaneAxisX, PlaneAxisY, PlaneAxisZ:
		return point[p.Type] - p.Dist
	default:
		return vec.DoublePrecDot(p.Normal, point) - p.Dist
	}
}

// BoxOnPlaneSide returns 1 if the box is in front of the plane, 2 if it is
// behind it and 3 if the plane crosses the box.
func BoxOnPlaneSide(mins, maxs vec.Vec3, p *Plane) int {
	if p.Type < PlaneGeneral {
		if p.Dist <= mins[p.Type] {
			return 1
		}
		if p.Dist >= maxs[p.Type] {
			return 2
		}
		return 3
	}
	// the corner furthest along the normal and the one furthest against it
	var near, far vec.Vec3
	for i := 0; i < 3; i++ {
		if p.SignBits&(1<<i) != 0 {
			far[i], near[i] = mins[i], maxs[i]
		} else {
			far[i], near[i] = maxs[i], mins[i]
		}
	}
	d1 := vec.Dot(p.Normal, far)
	d2 := vec.Dot(p.Normal, near)
	sides := 0
	if d1 >= p.Dist {
		sides = 1
	}
	if d2 < p.Dist {
		sides |= 2
	}
	return sides
}

// signOffsets returns for each sign bit combination the box corner that is
// closest to a plane with that orientation: maxs where the normal is
// negative, mins otherwise.
func signOffsets(mins, maxs vec.Vec3) [8]vec.Vec3 {
	var o [8]vec.Vec3
	for s := range o {
		for i := 0; i < 3; i++ {
			if s&(1<<i) != 0 {
				o[s][i] = maxs[i]
			} else {
				o[s][i] = mins[i]
			}
		}
	}
	return o
}
