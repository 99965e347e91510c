// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func sampleFile() *File {
	var ti TexInfo
	copy(ti.Texture[:], "e1u1/floor1_3")
	ti.Flags = 2
	return &File{
		Entities: "{\n\"classname\" \"worldspawn\"\n}\n",
		Planes: []Plane{
			{Normal: [3]float32{1, 0, 0}, Distance: 16, Type: 0},
			{Normal: [3]float32{-1, 0, 0}, Distance: 16, Type: 3},
		},
		Visibility:  []byte{1, 0, 0, 0, 12, 0, 0, 0, 13, 0, 0, 0, 0xff},
		Nodes:       []Node{{PlaneID: 0, Children: [2]int32{-1, -2}}},
		TexInfos:    []TexInfo{ti},
		Leafs:       []Leaf{{Contents: 1, Cluster: -1}, {Cluster: 0, Area: 1, FirstLeafBrush: 0, LeafBrushesCount: 1}},
		LeafBrushes: []uint16{0},
		Models:      []Model{{Mins: [3]float32{-16, -16, -16}, Maxs: [3]float32{16, 16, 16}}},
		Brushes:     []Brush{{FirstSide: 0, SideCount: 2, Contents: 1}},
		BrushSides:  []BrushSide{{PlaneID: 0, TexInfoID: 0}, {PlaneID: 1, TexInfoID: -1}},
		Areas:       []Area{{}, {AreaPortalCount: 0}},
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleFile()
	b, err := in.Bytes()
	require.NoError(t, err)
	out, err := Decode("maps/test.bsp", b)
	require.NoError(t, err)
	require.Equal(t, "maps/test.bsp", out.Name)
	require.Equal(t, in.Entities, out.Entities)
	require.Equal(t, in.Planes, out.Planes)
	require.Equal(t, in.Visibility, out.Visibility)
	require.Equal(t, in.Nodes, out.Nodes)
	require.Equal(t, in.Leafs, out.Leafs)
	require.Equal(t, in.LeafBrushes, out.LeafBrushes)
	require.Equal(t, in.Models, out.Models)
	require.Equal(t, in.Brushes, out.Brushes)
	require.Equal(t, in.BrushSides, out.BrushSides)
	require.Equal(t, in.Areas, out.Areas)
	require.Empty(t, out.AreaPortals)
	require.Equal(t, "e1u1/floor1_3", out.TexInfos[0].Name())
	require.Equal(t, Checksum(b), out.Checksum)
}

func TestDecodeErrors(t *testing.T) {
	b, err := sampleFile().Bytes()
	require.NoError(t, err)

	_, err = Decode("short", b[:10])
	require.True(t, errors.Is(err, ErrNotBSP))

	bad := append([]byte{}, b...)
	copy(bad, "PACK")
	_, err = Decode("magic", bad)
	require.True(t, errors.Is(err, ErrNotBSP))

	bad = append([]byte{}, b...)
	binary.LittleEndian.PutUint32(bad[4:], 29)
	_, err = Decode("q1", bad)
	require.True(t, errors.Is(err, ErrBadVersion))

	// planes lump is 20 bytes per record
	bad = append([]byte{}, b...)
	off := 8 + lumpPlanes*8 + 4
	binary.LittleEndian.PutUint32(bad[off:], 21)
	_, err = Decode("funny", bad)
	require.True(t, errors.Is(err, ErrBadLump))

	bad = append([]byte{}, b...)
	binary.LittleEndian.PutUint32(bad[off:], 1<<20)
	_, err = Decode("outside", bad)
	require.True(t, errors.Is(err, ErrBadLump))
}

func TestChecksumChanges(t *testing.T) {
	a := Checksum([]byte("IBSP one"))
	b := Checksum([]byte("IBSP two"))
	require.NotEqual(t, a, b)
	require.Equal(t, a, Checksum([]byte("IBSP one")))
}
