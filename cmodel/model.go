// SPDX-License-Identifier: GPL-2.0-or-later

// Package cmodel is the collision model of a map: box traces, point
// contents, leaf queries and the area and visibility connectivity.
package cmodel

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"quakeclip/bsp"
	"quakeclip/conlog"
	"quakeclip/math/vec"
)

var (
	ErrBadModel       = errors.New("bad inline model")
	ErrBadPortalState = errors.New("bad portal state")
)

// InlineModel is the world (*0) or a brush entity model (*1 to *n).
type InlineModel struct {
	Name   string
	Mins   vec.Vec3
	Maxs   vec.Vec3
	Origin vec.Vec3
	Head   HeadRef
}

type areaLink struct {
	portal int
	other  int
}

// Model is a loaded map. The collision data is immutable; only the area
// portal state changes after load.
type Model struct {
	ID       uuid.UUID // changes with every load
	name     string
	checksum uint32

	tree         *Tree
	models       []InlineModel
	entityString string

	numClusters int
	vis         []byte
	visOffsets  [][2]int

	areaLinks  [][]areaLink
	numPortals int

	mu         sync.RWMutex
	freed      bool
	portalOpen []bool
	floodNums  []int
}

// LoadMap loads a map through the game file system.
func LoadMap(name string) (*Model, error) {
	f, err := bsp.Load(name)
	if err != nil {
		instrumentMapLoad(err)
		return nil, err
	}
	return newModel(f)
}

// LoadMapData loads a map from memory.
func LoadMapData(name string, data []byte) (*Model, error) {
	f, err := bsp.Decode(name, data)
	if err != nil {
		instrumentMapLoad(err)
		return nil, err
	}
	return newModel(f)
}

func newModel(f *bsp.File) (*Model, error) {
	m, err := buildModel(f)
	instrumentMapLoad(err)
	if err != nil {
		return nil, err
	}
	conlog.DPrintf("loaded %s: %d leafs, %d brushes, %d clusters, %d areas",
		m.name, len(m.tree.Leafs)-1, len(m.tree.Brushes), m.numClusters, len(m.areaLinks))
	return m, nil
}

func buildModel(f *bsp.File) (*Model, error) {
	m := &Model{
		ID:           uuid.New(),
		name:         f.Name,
		checksum:     f.Checksum,
		entityString: f.Entities,
	}
	t := &Tree{}
	m.tree = t

	// surface 0 is the null surface of sides without texinfo
	t.Surfaces = make([]Surface, 1, len(f.TexInfos)+1)
	for i := range f.TexInfos {
		ti := &f.TexInfos[i]
		t.Surfaces = append(t.Surfaces, Surface{
			Name:  ti.Name(),
			Flags: int(ti.Flags),
			Value: int(ti.Value),
		})
	}

	if len(f.Planes) == 0 {
		return nil, errors.Errorf("%s: map with no planes", f.Name)
	}
	t.Planes = make([]Plane, len(f.Planes))
	for i, p := range f.Planes {
		t.Planes[i] = NewPlane(p.Normal, p.Distance)
	}

	t.Brushes = make([]Brush, len(f.Brushes))
	for i, b := range f.Brushes {
		if b.FirstSide < 0 || b.SideCount < 0 || int(b.FirstSide)+int(b.SideCount) > len(f.BrushSides) {
			return nil, errors.Wrapf(bsp.ErrBadLump, "%s: brush %d has bad sides", f.Name, i)
		}
		sides := make([]BrushSide, b.SideCount)
		for j := range sides {
			s := f.BrushSides[int(b.FirstSide)+j]
			if int(s.TexInfoID) >= len(f.TexInfos) {
				return nil, errors.Wrapf(bsp.ErrBadLump, "%s: bad brushside texinfo %d", f.Name, s.TexInfoID)
			}
			sides[j] = BrushSide{
				Plane:   int(s.PlaneID),
				Surface: int(s.TexInfoID) + 1,
			}
		}
		t.Brushes[i] = Brush{Contents: int(b.Contents), Sides: sides}
	}

	if len(f.Leafs) == 0 {
		return nil, errors.Errorf("%s: map with no leafs", f.Name)
	}
	// leaf 0 is the shared solid leaf outside the map
	if f.Leafs[0].Contents != ContentsSolid {
		return nil, errors.Errorf("%s: map leaf 0 is not CONTENTS_SOLID", f.Name)
	}
	t.Leafs = make([]Leaf, 0, len(f.Leafs)+1)
	for i, l := range f.Leafs {
		first, count := int(l.FirstLeafBrush), int(l.LeafBrushesCount)
		if first+count > len(f.LeafBrushes) {
			return nil, errors.Wrapf(bsp.ErrBadLump, "%s: leaf %d has bad brushes", f.Name, i)
		}
		brushes := make([]int, count)
		for j := range brushes {
			brushes[j] = int(f.LeafBrushes[first+j])
		}
		if int(l.Cluster) >= m.numClusters {
			m.numClusters = int(l.Cluster) + 1
		}
		if l.Area < 0 || int(l.Area) >= max(len(f.Areas), 1) {
			return nil, errors.Wrapf(bsp.ErrBadLump, "%s: leaf %d has bad area %d", f.Name, i, l.Area)
		}
		t.Leafs = append(t.Leafs, Leaf{
			Contents: int(l.Contents),
			Cluster:  int(l.Cluster),
			Area:     int(l.Area),
			Brushes:  brushes,
		})
	}
	t.Leafs = append(t.Leafs, Leaf{Cluster: -1})

	t.Nodes = make([]Node, len(f.Nodes))
	for i, n := range f.Nodes {
		node := Node{Plane: int(n.PlaneID)}
		for j, c := range n.Children {
			node.Children[j] = childRef(c)
		}
		t.Nodes[i] = node
	}

	if len(f.Models) == 0 {
		return nil, errors.Errorf("%s: map with no models", f.Name)
	}
	m.models = make([]InlineModel, len(f.Models))
	for i, bm := range f.Models {
		root := childRef(bm.HeadNode)
		if err := t.validate(root); err != nil {
			return nil, errors.Wrapf(bsp.ErrBadLump, "%s: model %d: %v", f.Name, i, err)
		}
		// spread the bounds by a unit like the game does
		var mins, maxs vec.Vec3
		for j := 0; j < 3; j++ {
			mins[j] = bm.Mins[j] - 1
			maxs[j] = bm.Maxs[j] + 1
		}
		m.models[i] = InlineModel{
			Name:   fmt.Sprintf("*%d", i),
			Mins:   mins,
			Maxs:   maxs,
			Origin: bm.Origin,
			Head:   HeadRef{tree: t, root: root},
		}
	}

	if err := m.loadAreas(f); err != nil {
		return nil, err
	}
	if err := m.loadVisibility(f); err != nil {
		return nil, err
	}
	return m, nil
}

func childRef(c int32) ChildRef {
	if c < 0 {
		return LeafRef(int(-1 - c))
	}
	return NodeRef(int(c))
}

func (m *Model) loadVisibility(f *bsp.File) error {
	if len(f.Visibility) == 0 {
		return nil
	}
	v := f.Visibility
	if len(v) < 4 {
		return errors.Wrapf(bsp.ErrBadLump, "%s: short visibility lump", f.Name)
	}
	n := int(int32(binary.LittleEndian.Uint32(v)))
	if n < 0 || 4+n*8 > len(v) {
		return errors.Wrapf(bsp.ErrBadLump, "%s: bad visibility cluster count %d", f.Name, n)
	}
	m.numClusters = n
	m.visOffsets = make([][2]int, n)
	for i := range m.visOffsets {
		for j := 0; j < 2; j++ {
			o := int(int32(binary.LittleEndian.Uint32(v[4+i*8+j*4:])))
			if o < 0 || o > len(v) {
				return errors.Wrapf(bsp.ErrBadLump, "%s: cluster %d has bad vis offset", f.Name, i)
			}
			m.visOffsets[i][j] = o
		}
	}
	m.vis = v
	return nil
}

// FreeMap releases the collision data of m. Traces through a freed model
// hit nothing.
func FreeMap(m *Model) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.freed = true
	m.tree = nil
	m.models = nil
	m.vis = nil
	m.visOffsets = nil
	m.areaLinks = nil
	m.portalOpen = nil
	m.floodNums = nil
	m.numClusters = 0
	m.numPortals = 0
	m.entityString = ""
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) Checksum() uint32 {
	return m.checksum
}

func (m *Model) Freed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.freed
}

func (m *Model) EntityString() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entityString
}

// NumInlineModels includes the world.
func (m *Model) NumInlineModels() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.models)
}

func (m *Model) NumClusters() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.numClusters
}

func (m *Model) NumAreas() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.areaLinks)
}

// InlineModel looks up a model by its "*N" name.
func (m *Model) InlineModel(name string) (*InlineModel, error) {
	if !strings.HasPrefix(name, "*") {
		return nil, errors.Wrap(ErrBadModel, name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return nil, errors.Wrap(ErrBadModel, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n < 0 || n >= len(m.models) {
		return nil, errors.Wrapf(ErrBadModel, "%s (%d models)", name, len(m.models))
	}
	im := m.models[n]
	return &im, nil
}

// WorldHead is the root of the static world. It is invalid after FreeMap.
func (m *Model) WorldHead() HeadRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.models) == 0 {
		return HeadRef{}
	}
	return m.models[0].Head
}

func (m *Model) leafTree() *Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}

func (m *Model) NumLeafs() int {
	t := m.leafTree()
	if t == nil {
		return 0
	}
	return len(t.Leafs)
}

func (m *Model) LeafContents(leaf int) int {
	t := m.leafTree()
	if t == nil {
		return 0
	}
	return t.leaf(leaf).Contents
}

func (m *Model) LeafCluster(leaf int) int {
	t := m.leafTree()
	if t == nil {
		return -1
	}
	return t.leaf(leaf).Cluster
}

func (m *Model) LeafArea(leaf int) int {
	t := m.leafTree()
	if t == nil {
		return 0
	}
	return t.leaf(leaf).Area
}

// BoxTrace traces against head, or against the world if head is the zero
// HeadRef.
func (m *Model) BoxTrace(start, end, mins, maxs vec.Vec3, head HeadRef, mask int) Trace {
	if head.tree == nil {
		head = m.WorldHead()
	}
	return BoxTrace(start, end, mins, maxs, head, mask)
}

func (m *Model) TransformedBoxTrace(start, end, mins, maxs vec.Vec3, head HeadRef, mask int, origin, angles vec.Vec3) Trace {
	if head.tree == nil {
		head = m.WorldHead()
	}
	return TransformedBoxTrace(start, end, mins, maxs, head, mask, origin, angles)
}

// PointContents returns the world contents at p.
func (m *Model) PointContents(p vec.Vec3) int {
	return PointContents(p, m.WorldHead())
}

func (m *Model) PointLeafnum(p vec.Vec3) int {
	return PointLeafnum(p, m.WorldHead())
}

// BoxLeafs returns up to maxCount world leafs touching the box.
func (m *Model) BoxLeafs(mins, maxs vec.Vec3, maxCount int) ([]int, ChildRef) {
	return BoxLeafs(mins, maxs, maxCount, m.WorldHead())
}
