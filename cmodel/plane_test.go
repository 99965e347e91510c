// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quakeclip/math/vec"
)

func TestNewPlane(t *testing.T) {
	tests := []struct {
		normal   vec.Vec3
		typ      PlaneType
		signBits uint8
	}{
		{vec.Vec3{1, 0, 0}, PlaneAxisX, 0},
		{vec.Vec3{0, 1, 0}, PlaneAxisY, 0},
		{vec.Vec3{0, 0, 1}, PlaneAxisZ, 0},
		{vec.Vec3{-1, 0, 0}, PlaneGeneral, 1},
		{vec.Vec3{0, 0, -1}, PlaneGeneral, 4},
		{vec.Vec3{0.6, -0.8, 0}, PlaneGeneral, 2},
	}
	for _, tc := range tests {
		p := NewPlane(tc.normal, 4)
		if p.Type != tc.typ || p.SignBits != tc.signBits {
			t.Errorf("NewPlane(%v) = type %v bits %v, want %v %v", tc.normal, p.Type, p.SignBits, tc.typ, tc.signBits)
		}
	}
}

func TestPlaneFlipAndDistance(t *testing.T) {
	p := NewPlane(vec.Vec3{0, 0, 1}, 16)
	require.Equal(t, float32(4), p.Distance(vec.Vec3{3, 3, 20}))

	f := p.Flip()
	require.Equal(t, vec.Vec3{0, 0, -1}, f.Normal)
	require.Equal(t, float32(-16), f.Dist)
	require.Equal(t, PlaneGeneral, f.Type)
	require.Equal(t, float32(-4), f.Distance(vec.Vec3{3, 3, 20}))
}

func TestBoxOnPlaneSide(t *testing.T) {
	mins, maxs := vec.Vec3{-1, -1, -1}, vec.Vec3{1, 1, 1}
	tests := []struct {
		name  string
		plane Plane
		want  int
	}{
		{"axial front", NewPlane(vec.Vec3{1, 0, 0}, -2), 1},
		{"axial back", NewPlane(vec.Vec3{1, 0, 0}, 2), 2},
		{"axial cross", NewPlane(vec.Vec3{1, 0, 0}, 0), 3},
		{"general front", NewPlane(vec.Vec3{-1, 0, 0}, -2), 1},
		{"general back", NewPlane(vec.Vec3{0, 0, -1}, 2), 2},
		{"general cross", NewPlane(vec.Vec3{0.6, 0.8, 0}, 0.5), 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, BoxOnPlaneSide(mins, maxs, &tc.plane))
		})
	}
}

func TestSignOffsets(t *testing.T) {
	o := signOffsets(vec.Vec3{-1, -2, -3}, vec.Vec3{4, 5, 6})
	require.Equal(t, vec.Vec3{-1, -2, -3}, o[0])
	require.Equal(t, vec.Vec3{4, -2, -3}, o[1])
	require.Equal(t, vec.Vec3{-1, 5, 6}, o[6])
	require.Equal(t, vec.Vec3{4, 5, 6}, o[7])
}

func TestTreeValidate(t *testing.T) {
	base := func() *Tree {
		return &Tree{
			Planes: []Plane{NewPlane(vec.Vec3{1, 0, 0}, 0)},
			Nodes: []Node{
				{Plane: 0, Children: [2]ChildRef{NodeRef(1), LeafRef(0)}},
				{Plane: 0, Children: [2]ChildRef{LeafRef(1), LeafRef(0)}},
			},
			Leafs:    []Leaf{{Contents: ContentsSolid}, {}, {Cluster: -1}},
			Surfaces: []Surface{{}},
		}
	}

	t.Run("valid tree", func(t *testing.T) {
		tr := base()
		require.NoError(t, tr.validate(NodeRef(0)))
		require.Equal(t, 3, tr.MaxDepth)
	})

	t.Run("cycle", func(t *testing.T) {
		tr := base()
		tr.Nodes[1].Children[1] = NodeRef(0)
		require.Error(t, tr.validate(NodeRef(0)))
	})

	t.Run("shared node", func(t *testing.T) {
		tr := base()
		tr.Nodes = append(tr.Nodes, Node{Plane: 0, Children: [2]ChildRef{NodeRef(1), NodeRef(1)}})
		require.Error(t, tr.validate(NodeRef(2)))
	})

	t.Run("child out of range", func(t *testing.T) {
		tr := base()
		tr.Nodes[1].Children[0] = LeafRef(9)
		require.Error(t, tr.validate(NodeRef(0)))
	})

	t.Run("bad plane", func(t *testing.T) {
		tr := base()
		tr.Nodes[0].Plane = 3
		require.Error(t, tr.validate(NodeRef(0)))
	})
}
