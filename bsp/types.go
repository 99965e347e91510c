// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

// On disk layout of a Quake 2 map (IBSP, version 38).

const (
	Version = 38

	// upper design bounds, maps exceeding them are rejected
	MaxMapModels      = 1024
	MaxMapBrushes     = 8192
	MaxMapEntString   = 0x40000
	MaxMapTexInfo     = 8192
	MaxMapAreas       = 256
	MaxMapAreaPortals = 1024
	MaxMapPlanes      = 65536
	MaxMapNodes       = 65536
	MaxMapBrushSides  = 65536
	MaxMapLeafs       = 65536
	MaxMapLeafBrushes = 65536
	MaxMapVisibility  = 0x100000
)

var magic = [4]byte{'I', 'B', 'S', 'P'}

// lump indices
const (
	lumpEntities = iota
	lumpPlanes
	lumpVertexes
	lumpVisibility
	lumpNodes
	lumpTexInfo
	lumpFaces
	lumpLighting
	lumpLeafs
	lumpLeafFaces
	lumpLeafBrushes
	lumpEdges
	lumpSurfEdges
	lumpModels
	lumpBrushes
	lumpBrushSides
	lumpPop
	lumpAreas
	lumpAreaPortals
	headerLumps
)

var lumpNames = [headerLumps]string{
	"entities", "planes", "vertexes", "visibility", "nodes", "texinfo",
	"faces", "lighting", "leafs", "leaffaces", "leafbrushes", "edges",
	"surfedges", "models", "brushes", "brushsides", "pop", "areas",
	"areaportals",
}

// called lump_t in c
type directory struct {
	Offset int32
	Size   int32
}

type header struct {
	Ident   [4]byte
	Version int32
	Lumps   [headerLumps]directory
}

// Model, the world is model 0, brush entities reference *1 to *n
type Model struct {
	Mins      [3]float32
	Maxs      [3]float32
	Origin    [3]float32 // for sounds or lights
	HeadNode  int32
	FirstFace int32 // submodels just draw faces
	FaceCount int32 // without walking the bsp tree
}

type Plane struct {
	Normal   [3]float32
	Distance float32
	Type     int32 // 0: axial plane in X, 1: axial plane in Y, 2 axial in Z, 3,4,5 similar but non axial
}

// Children are node indices if positive, -(leafnum+1) otherwise.
type Node struct {
	PlaneID   int32
	Children  [2]int32
	Mins      [3]int16 // for frustom culling
	Maxs      [3]int16
	FirstFace uint16
	FaceCount uint16 // counting both sides
}

type TexInfo struct {
	Vecs        [2][4]float32 // [s/t][xyz offset]
	Flags       int32         // miptex flags + overrides
	Value       int32         // light emission, etc
	Texture     [32]byte      // texture name (textures/*.wal)
	NextTexInfo int32         // for animations, -1 = end of chain
}

type Leaf struct {
	Contents         int32 // OR of all brushes (not needed?)
	Cluster          int16
	Area             int16
	Mins             [3]int16 // for frustum culling
	Maxs             [3]int16
	FirstLeafFace    uint16
	LeafFaceCount    uint16
	FirstLeafBrush   uint16
	LeafBrushesCount uint16
}

type BrushSide struct {
	PlaneID   uint16 // facing out of the leaf
	TexInfoID int16
}

type Brush struct {
	FirstSide int32
	SideCount int32
	Contents  int32
}

// Area portals are ordinary portals with the extra flag to be closed by
// doors. Each area lists the portals leading out of it.
type AreaPortal struct {
	PortalNum int32
	OtherArea int32
}

type Area struct {
	AreaPortalCount int32
	FirstAreaPortal int32
}

// the visibility lump consists of a header with a count, then byte offsets
// for the PVS and PHS of each cluster, then the raw compressed bit vectors
const (
	VisPVS = 0
	VisPHS = 1
)
