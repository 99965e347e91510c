// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmtest builds small maps for tests.
//
// The world of Map is a solid cube of 32 units centered at the origin. The
// space x < 128 around it is leaf 1 (cluster 0, area 1), the space x >= 128
// is leaf 3 (cluster 1, area 2). Portal 0 connects the two areas. Cluster 0
// sees both clusters, cluster 1 only itself. Model *1 is a solid cube of 16
// units centered at its own origin.
package cmtest

import (
	"encoding/binary"

	"quakeclip/bsp"
)

const (
	// leaf numbers
	SolidLeaf = 0
	InnerLeaf = 1
	CubeLeaf  = 2
	OuterLeaf = 3

	WallTexture = "e1u1/wall"
	DoorTexture = "e1u1/door"

	// CubeSize is the half size of the world cube, DoorSize of model *1
	CubeSize  = 16
	DoorSize  = 8
	SplitX    = 128
	DoorModel = "*1"
)

const Entities = `{
"classname" "worldspawn"
"message" "cmtest"
}
{
"classname" "func_door"
"model" "*1"
"origin" "64 0 0"
}
{
"classname" "info_player_start"
"origin" "0 0 64"
}
`

// cubePlanes returns the six outward planes of a cube of half size d.
func cubePlanes(d float32) []bsp.Plane {
	return []bsp.Plane{
		{Normal: [3]float32{1, 0, 0}, Distance: d, Type: 0},
		{Normal: [3]float32{-1, 0, 0}, Distance: d, Type: 3},
		{Normal: [3]float32{0, 1, 0}, Distance: d, Type: 1},
		{Normal: [3]float32{0, -1, 0}, Distance: d, Type: 4},
		{Normal: [3]float32{0, 0, 1}, Distance: d, Type: 2},
		{Normal: [3]float32{0, 0, -1}, Distance: d, Type: 5},
	}
}

// cubeNodes chains six nodes starting at first with planes starting at
// plane. The front of every node is the leaf outside, the back of the last
// node the leaf inside.
func cubeNodes(first, plane int, outside, inside int) []bsp.Node {
	var ns []bsp.Node
	for i := 0; i < 6; i++ {
		back := int32(first + i + 1)
		if i == 5 {
			back = int32(-1 - inside)
		}
		ns = append(ns, bsp.Node{
			PlaneID:  int32(plane + i),
			Children: [2]int32{int32(-1 - outside), back},
		})
	}
	return ns
}

func texInfo(name string) bsp.TexInfo {
	t := bsp.TexInfo{NextTexInfo: -1}
	copy(t.Texture[:], name)
	return t
}

// Map returns the test map.
func Map() *bsp.File {
	f := &bsp.File{
		Name:     "maps/cmtest.bsp",
		Entities: Entities,
	}
	f.Planes = append(f.Planes, bsp.Plane{Normal: [3]float32{1, 0, 0}, Distance: SplitX, Type: 0})
	f.Planes = append(f.Planes, cubePlanes(CubeSize)...)
	f.Planes = append(f.Planes, cubePlanes(DoorSize)...)

	// node 0 splits inner and outer space, nodes 1-6 the world cube,
	// nodes 7-12 the door
	f.Nodes = append(f.Nodes, bsp.Node{PlaneID: 0, Children: [2]int32{-1 - OuterLeaf, 1}})
	f.Nodes = append(f.Nodes, cubeNodes(1, 1, InnerLeaf, CubeLeaf)...)
	f.Nodes = append(f.Nodes, cubeNodes(7, 7, 4, 5)...)

	f.TexInfos = []bsp.TexInfo{texInfo(WallTexture), texInfo(DoorTexture)}
	for i := 0; i < 6; i++ {
		f.BrushSides = append(f.BrushSides, bsp.BrushSide{PlaneID: uint16(1 + i), TexInfoID: 0})
	}
	for i := 0; i < 6; i++ {
		f.BrushSides = append(f.BrushSides, bsp.BrushSide{PlaneID: uint16(7 + i), TexInfoID: 1})
	}
	f.Brushes = []bsp.Brush{
		{FirstSide: 0, SideCount: 6, Contents: 1},
		{FirstSide: 6, SideCount: 6, Contents: 1},
	}
	f.LeafBrushes = []uint16{0, 1}
	f.Leafs = []bsp.Leaf{
		{Contents: 1, Cluster: -1, Area: 0},
		{Contents: 0, Cluster: 0, Area: 1},
		{Contents: 1, Cluster: -1, Area: 1, FirstLeafBrush: 0, LeafBrushesCount: 1},
		{Contents: 0, Cluster: 1, Area: 2},
		{Contents: 0, Cluster: -1, Area: 0},
		{Contents: 1, Cluster: -1, Area: 0, FirstLeafBrush: 1, LeafBrushesCount: 1},
	}
	f.Models = []bsp.Model{
		{Mins: [3]float32{-256, -256, -256}, Maxs: [3]float32{256, 256, 256}, HeadNode: 0},
		{Mins: [3]float32{-DoorSize, -DoorSize, -DoorSize}, Maxs: [3]float32{DoorSize, DoorSize, DoorSize}, HeadNode: 7},
	}
	f.Areas = []bsp.Area{
		{},
		{AreaPortalCount: 1, FirstAreaPortal: 0},
		{AreaPortalCount: 1, FirstAreaPortal: 1},
	}
	f.AreaPortals = []bsp.AreaPortal{
		{PortalNum: 0, OtherArea: 2},
		{PortalNum: 0, OtherArea: 1},
	}
	f.Visibility = visibility(
		[][]byte{{0x03}, {0x02}},
		[][]byte{{0x03}, {0x03}},
	)
	return f
}

const (
	// ChainX splits the outer space of ChainMap
	ChainX    = 256
	ChainLeaf = 6
)

// ChainMap is Map with the outer space split again at x = ChainX. The new
// leaf 6 is cluster 2 in area 3. Portal 0 connects areas 1 and 2, portal 1
// areas 2 and 3. Every cluster sees every cluster.
func ChainMap() *bsp.File {
	f := Map()
	f.Name = "maps/cmchain.bsp"
	f.Models[0].Maxs[0] = 2 * ChainX

	f.Planes = append(f.Planes, bsp.Plane{Normal: [3]float32{1, 0, 0}, Distance: ChainX, Type: 0})
	f.Nodes[0].Children[0] = int32(len(f.Nodes))
	f.Nodes = append(f.Nodes, bsp.Node{
		PlaneID:  int32(len(f.Planes) - 1),
		Children: [2]int32{-1 - ChainLeaf, -1 - OuterLeaf},
	})
	f.Leafs = append(f.Leafs, bsp.Leaf{Contents: 0, Cluster: 2, Area: 3})

	f.Areas = []bsp.Area{
		{},
		{AreaPortalCount: 1, FirstAreaPortal: 0},
		{AreaPortalCount: 2, FirstAreaPortal: 1},
		{AreaPortalCount: 1, FirstAreaPortal: 3},
	}
	f.AreaPortals = []bsp.AreaPortal{
		{PortalNum: 0, OtherArea: 2},
		{PortalNum: 0, OtherArea: 1},
		{PortalNum: 1, OtherArea: 3},
		{PortalNum: 1, OtherArea: 2},
	}
	f.Visibility = visibility(
		[][]byte{{0x07}, {0x07}, {0x07}},
		[][]byte{{0x07}, {0x07}, {0x07}},
	)
	return f
}

// visibility builds a vis lump from compressed PVS and PHS rows.
func visibility(pvs, phs [][]byte) []byte {
	n := len(pvs)
	b := make([]byte, 4+n*8)
	binary.LittleEndian.PutUint32(b, uint32(n))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[4+i*8:], uint32(len(b)))
		b = append(b, pvs[i]...)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b[8+i*8:], uint32(len(b)))
		b = append(b, phs[i]...)
	}
	return b
}

// MapBytes returns Map encoded as a bsp file.
func MapBytes() []byte {
	return Encode(Map())
}

// Encode panics if f can not be encoded.
func Encode(f *bsp.File) []byte {
	b, err := f.Bytes()
	if err != nil {
		panic(err)
	}
	return b
}
