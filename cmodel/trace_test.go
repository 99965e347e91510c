// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"quakeclip/cmodel/cmtest"
	"quakeclip/math/vec"
)

func loadTestMap(t *testing.T) *Model {
	t.Helper()
	m, err := LoadMapData("maps/cmtest.bsp", cmtest.MapBytes())
	require.NoError(t, err)
	return m
}

var (
	unitMins = vec.Vec3{-1, -1, -1}
	unitMaxs = vec.Vec3{1, 1, 1}
)

func TestBoxTraceHitsCubeTop(t *testing.T) {
	m := loadTestMap(t)

	tr := m.BoxTrace(vec.Vec3{0, 0, 100}, vec.Vec3{0, 0, -100}, unitMins, unitMaxs, HeadRef{}, MaskSolid)
	require.False(t, tr.AllSolid)
	require.False(t, tr.StartSolid)
	require.InDelta(t, 0.415, tr.Fraction, 1e-3)
	require.InDelta(t, (83-DistEpsilon)/200, tr.Fraction, 1e-6)
	require.InDelta(t, 17, tr.EndPos[2], 0.05)
	require.Equal(t, vec.Vec3{0, 0, 1}, tr.Plane.Normal)
	require.Equal(t, float32(cmtest.CubeSize), tr.Plane.Dist)
	require.Equal(t, ContentsSolid, tr.Contents)
	require.NotNil(t, tr.Surface)
	require.Equal(t, cmtest.WallTexture, tr.Surface.Name)
	require.Equal(t, NoEntity, tr.Ent)
}

func TestBoxTraceEqualEntryLastSideWins(t *testing.T) {
	m := loadTestMap(t)
	d := float32(100 - cmtest.CubeSize)

	tests := []struct {
		start  vec.Vec3
		normal vec.Vec3
	}{
		// sides are examined +x, -x, +y, -y, +z, -z
		{vec.Vec3{100, 100, 0}, vec.Vec3{0, 1, 0}},
		{vec.Vec3{-100, -100, 0}, vec.Vec3{0, -1, 0}},
		{vec.Vec3{100, 0, 100}, vec.Vec3{0, 0, 1}},
		{vec.Vec3{-100, 0, -100}, vec.Vec3{0, 0, -1}},
		{vec.Vec3{100, 100, 100}, vec.Vec3{0, 0, 1}},
	}
	for _, tc := range tests {
		tr := m.BoxTrace(tc.start, vec.Vec3{}, vec.Vec3{}, vec.Vec3{}, HeadRef{}, MaskSolid)
		require.InDelta(t, (d-DistEpsilon)/100, tr.Fraction, 1e-6, "%v", tc.start)
		require.Equal(t, tc.normal, tr.Plane.Normal, "%v", tc.start)
	}
}

func TestBoxTraceMisses(t *testing.T) {
	m := loadTestMap(t)

	start, end := vec.Vec3{-100, 40, 0}, vec.Vec3{300, 40, 0}
	tr := m.BoxTrace(start, end, unitMins, unitMaxs, HeadRef{}, MaskAll)
	require.Equal(t, float32(1), tr.Fraction)
	require.Equal(t, end, tr.EndPos)
	require.False(t, tr.StartSolid)

	// the mask decides what blocks
	tr = m.BoxTrace(vec.Vec3{0, 0, 100}, vec.Vec3{0, 0, -100}, unitMins, unitMaxs, HeadRef{}, MaskWater)
	require.Equal(t, float32(1), tr.Fraction)
}

func TestBoxTraceIdentity(t *testing.T) {
	m := loadTestMap(t)

	t.Run("open space", func(t *testing.T) {
		p := vec.Vec3{0, 0, 100}
		tr := m.BoxTrace(p, p, unitMins, unitMaxs, HeadRef{}, MaskSolid)
		require.Equal(t, float32(1), tr.Fraction)
		require.Equal(t, p, tr.EndPos)
		require.False(t, tr.StartSolid)
		require.False(t, tr.AllSolid)
	})

	t.Run("inside brush", func(t *testing.T) {
		p := vec.Vec3{0, 0, 0}
		tr := m.BoxTrace(p, p, unitMins, unitMaxs, HeadRef{}, MaskSolid)
		require.True(t, tr.StartSolid)
		require.True(t, tr.AllSolid)
		require.Equal(t, float32(0), tr.Fraction)
		require.Equal(t, p, tr.EndPos)
		require.Equal(t, ContentsSolid, tr.Contents)
	})

	t.Run("box overlapping brush", func(t *testing.T) {
		p := vec.Vec3{0, 0, 16.5}
		tr := m.BoxTrace(p, p, unitMins, unitMaxs, HeadRef{}, MaskSolid)
		require.True(t, tr.AllSolid)
	})

	t.Run("point touching brush", func(t *testing.T) {
		p := vec.Vec3{0, 0, 16.5}
		tr := m.BoxTrace(p, p, vec.Vec3{}, vec.Vec3{}, HeadRef{}, MaskSolid)
		require.False(t, tr.StartSolid)
		require.Equal(t, float32(1), tr.Fraction)
	})
}

func TestBoxTraceStartSolid(t *testing.T) {
	m := loadTestMap(t)

	t.Run("leaving the brush", func(t *testing.T) {
		tr := m.BoxTrace(vec.Vec3{0, 0, 0}, vec.Vec3{0, 0, 100}, vec.Vec3{}, vec.Vec3{}, HeadRef{}, MaskSolid)
		require.True(t, tr.StartSolid)
		require.False(t, tr.AllSolid)
	})

	t.Run("staying inside", func(t *testing.T) {
		tr := m.BoxTrace(vec.Vec3{0, 0, -5}, vec.Vec3{0, 0, 5}, vec.Vec3{}, vec.Vec3{}, HeadRef{}, MaskSolid)
		require.True(t, tr.StartSolid)
		require.True(t, tr.AllSolid)
		require.Equal(t, float32(0), tr.Fraction)
		require.Equal(t, vec.Vec3{0, 0, -5}, tr.EndPos)
	})
}

func TestBoxTraceInvariants(t *testing.T) {
	m := loadTestMap(t)
	points := []vec.Vec3{
		{0, 0, 0}, {0, 0, 100}, {-40, 10, 5}, {200, -3, 7},
		{15, 15, 15}, {17, 0, 0}, {0, -30, -30}, {130, 0, 0},
	}
	boxes := [][2]vec.Vec3{
		{{}, {}},
		{unitMins, unitMaxs},
		{{-16, -16, -24}, {16, 16, 32}},
	}
	for _, s := range points {
		for _, e := range points {
			for _, b := range boxes {
				tr := m.BoxTrace(s, e, b[0], b[1], HeadRef{}, MaskAll)
				require.GreaterOrEqual(t, tr.Fraction, float32(0))
				require.LessOrEqual(t, tr.Fraction, float32(1))
				if tr.AllSolid {
					require.True(t, tr.StartSolid, "%v -> %v", s, e)
					require.Equal(t, float32(0), tr.Fraction, "%v -> %v", s, e)
				}
				if tr.Fraction == 1 {
					require.Equal(t, e, tr.EndPos)
				}
			}
		}
	}
}

func TestBoxTraceNaN(t *testing.T) {
	m := loadTestMap(t)
	start := vec.Vec3{0, 0, 100}
	tr := m.BoxTrace(start, vec.Vec3{math32.NaN(), 0, 0}, unitMins, unitMaxs, HeadRef{}, MaskSolid)
	require.Equal(t, float32(0), tr.Fraction)
	require.Equal(t, start, tr.EndPos)
}

func TestTransformedBoxTrace(t *testing.T) {
	m := loadTestMap(t)
	door, err := m.InlineModel(cmtest.DoorModel)
	require.NoError(t, err)
	origin := vec.Vec3{64, 0, 0}

	t.Run("translated", func(t *testing.T) {
		tr := TransformedBoxTrace(vec.Vec3{64, 0, 100}, vec.Vec3{64, 0, -100}, vec.Vec3{}, vec.Vec3{}, door.Head, MaskSolid, origin, vec.Vec3{})
		require.InDelta(t, (92-DistEpsilon)/200, tr.Fraction, 1e-6)
		require.Equal(t, vec.Vec3{0, 0, 1}, tr.Plane.Normal)
		require.Equal(t, float32(cmtest.DoorSize), tr.Plane.Dist)
		require.InDelta(t, 64, tr.EndPos[0], 1e-4)
		require.InDelta(t, 8, tr.EndPos[2], 0.05)
		require.Equal(t, cmtest.DoorTexture, tr.Surface.Name)
	})

	t.Run("translated plane distance", func(t *testing.T) {
		tr := TransformedBoxTrace(vec.Vec3{200, 0, 0}, vec.Vec3{0, 0, 0}, vec.Vec3{}, vec.Vec3{}, door.Head, MaskSolid, origin, vec.Vec3{})
		require.Less(t, tr.Fraction, float32(1))
		require.Equal(t, vec.Vec3{1, 0, 0}, tr.Plane.Normal)
		require.Equal(t, float32(72), tr.Plane.Dist)
		require.InDelta(t, 72, tr.EndPos[0], 0.05)
	})

	t.Run("rotated", func(t *testing.T) {
		tr := TransformedBoxTrace(vec.Vec3{64, 100, 0}, vec.Vec3{64, -100, 0}, vec.Vec3{}, vec.Vec3{}, door.Head, MaskSolid, origin, vec.Vec3{0, 90, 0})
		require.InDelta(t, (92-DistEpsilon)/200, tr.Fraction, 1e-4)
		require.InDelta(t, 0, tr.Plane.Normal[0], 1e-5)
		require.InDelta(t, 1, tr.Plane.Normal[1], 1e-5)
		require.InDelta(t, 8, tr.Plane.Dist, 1e-3)
		require.InDelta(t, 8, tr.EndPos[1], 0.05)
	})

	t.Run("rotated 45 degrees", func(t *testing.T) {
		// the corner of the rotated cube is sqrt(2)*8 from its center
		tr := TransformedBoxTrace(vec.Vec3{164, 0, 0}, vec.Vec3{64, 0, 0}, vec.Vec3{}, vec.Vec3{}, door.Head, MaskSolid, origin, vec.Vec3{0, 45, 0})
		require.InDelta(t, 64+8*math32.Sqrt(2), tr.EndPos[0], 0.1)
		require.InDelta(t, 1, tr.Plane.Normal.Length(), 1e-5)
		require.InDelta(t, tr.Plane.Dist, vec.Dot(tr.Plane.Normal, tr.EndPos), 0.1)
	})

	t.Run("hulls are not rotated", func(t *testing.T) {
		h := HeadnodeForBox(vec.Vec3{-8, -8, -8}, vec.Vec3{8, 8, 8})
		tr := TransformedBoxTrace(vec.Vec3{164, 0, 0}, vec.Vec3{64, 0, 0}, vec.Vec3{}, vec.Vec3{}, h, MaskShot, origin, vec.Vec3{0, 45, 0})
		require.InDelta(t, 72, tr.EndPos[0], 0.05)
		require.Equal(t, vec.Vec3{1, 0, 0}, tr.Plane.Normal)
	})
}

func TestTracesInParallel(t *testing.T) {
	m := loadTestMap(t)
	want := m.BoxTrace(vec.Vec3{0, 0, 100}, vec.Vec3{0, 0, -100}, unitMins, unitMaxs, HeadRef{}, MaskSolid)

	var wg sync.WaitGroup
	results := make([]Trace, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results[i] = m.BoxTrace(vec.Vec3{0, 0, 100}, vec.Vec3{0, 0, -100}, unitMins, unitMaxs, HeadRef{}, MaskSolid)
				_ = m.SetAreaPortalState(0, j%2 == 0)
			}
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		require.Equal(t, want, r)
	}
}
