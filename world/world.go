// SPDX-License-Identifier: GPL-2.0-or-later

// Package world keeps track of the entities placed in a map and clips moves
// against the map and those entities.
package world

import (
	"container/ring"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"quakeclip/cmodel"
	"quakeclip/conlog"
	"quakeclip/math/vec"
)

const (
	areaDepth = 4

	// MaxEntityLeafs bounds the leafs recorded per entity. Entities
	// touching more leafs use their head node for visibility checks.
	MaxEntityLeafs    = 128
	MaxEntityClusters = 16
)

type Solid int

const (
	SolidNot     Solid = iota // no interaction with other objects
	SolidTrigger              // only touch when inside, after moving
	SolidBBox                 // touch on edge
	SolidBSP                  // bsp clip, touch on edge
)

// entity flags
const (
	FlagMonster     = 1 << iota // missiles get an enlarged box against it
	FlagDeadMonster             // only blocks masks with ContentsDeadMonster
	FlagItem                    // easier to pick up
	FlagCylinder                // clipped as an upright octagon
)

// AreaKind selects the entity list of AreaEdicts.
type AreaKind int

const (
	AreaSolid AreaKind = iota
	AreaTriggers
)

type areaNode struct {
	axis     int // -1 for leaf nodes
	dist     float32
	children [2]*areaNode
	triggers *ring.Ring
	solids   *ring.Ring
}

// World is the entity index of one loaded map.
type World struct {
	mu     sync.RWMutex
	model  *cmodel.Model
	mapID  uuid.UUID
	root   *areaNode
	linked map[int]*Entity
}

// New creates an empty world for m.
func New(m *cmodel.Model) (*World, error) {
	w := &World{}
	if err := w.Clear(m); err != nil {
		return nil, err
	}
	return w, nil
}

// Clear forgets all entities and prepares the index for m. It needs to be
// called after every map load, before linking any entities.
func (w *World) Clear(m *cmodel.Model) error {
	wm, err := m.InlineModel("*0")
	if err != nil {
		return errors.Wrap(err, "world model")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.model = m
	w.mapID = m.ID
	w.linked = make(map[int]*Entity)
	w.root = createAreaNode(0, wm.Mins, wm.Maxs)
	return nil
}

func (w *World) Model() *cmodel.Model {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.model
}

func createAreaNode(depth int, mins, maxs vec.Vec3) *areaNode {
	an := &areaNode{
		axis: -1,
		// a root element to be able to use Prev()
		triggers: &ring.Ring{},
		solids:   &ring.Ring{},
	}
	if depth == areaDepth {
		return an
	}
	s := vec.Sub(maxs, mins)
	an.axis = 1
	if s[0] > s[1] {
		an.axis = 0
	}
	an.dist = 0.5 * (maxs[an.axis] + mins[an.axis])

	mins1, maxs1 := mins, maxs
	mins2, maxs2 := mins, maxs
	maxs1[an.axis] = an.dist
	mins2[an.axis] = an.dist

	an.children[0] = createAreaNode(depth+1, mins2, maxs2)
	an.children[1] = createAreaNode(depth+1, mins1, maxs1)
	return an
}

// Unlink removes e from the index. Calling it for an entity that is not
// linked is fine.
func (w *World) Unlink(e *Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unlink(e)
}

func (w *World) unlink(e *Entity) {
	// links of an earlier map went away with its area nodes
	if e.mapID == w.mapID {
		if e.link != nil {
			e.link.Prev().Unlink(1)
		}
		if w.linked[e.Num] == e {
			delete(w.linked, e.Num)
		}
	}
	e.link = nil
}

// Link needs to be called any time an entity changes origin, mins, maxs,
// angles or solid. It sets the absolute bounds, the touched leafs, clusters
// and areas of e.
func (w *World) Link(e *Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.unlink(e)

	if e.Num == 0 {
		return nil // don't add the world
	}

	m := w.model
	e.head = cmodel.HeadRef{}
	if e.Solid == SolidBSP {
		im, err := m.InlineModel(e.Model)
		if err != nil {
			return errors.Wrapf(err, "entity %d", e.Num)
		}
		e.head = im.Head
	}

	if e.hullAngles() != (vec.Vec3{}) {
		// expand for rotation
		var r float32
		for i := 0; i < 3; i++ {
			r = maxAbs(r, e.Mins[i])
			r = maxAbs(r, e.Maxs[i])
		}
		for i := 0; i < 3; i++ {
			e.AbsMin[i] = e.Origin[i] - r
			e.AbsMax[i] = e.Origin[i] + r
		}
	} else {
		e.AbsMin = vec.Add(e.Origin, e.Mins)
		e.AbsMax = vec.Add(e.Origin, e.Maxs)
	}

	if e.Flags&FlagItem != 0 {
		// make items easier to pick up
		e.AbsMin[0] -= 15
		e.AbsMin[1] -= 15
		e.AbsMax[0] += 15
		e.AbsMax[1] += 15
	} else {
		// because movement is clipped an epsilon away from an actual edge,
		// we must fully check even when bounding boxes don't quite touch
		e.AbsMin = vec.Sub(e.AbsMin, vec.Vec3{1, 1, 1})
		e.AbsMax = vec.Add(e.AbsMax, vec.Vec3{1, 1, 1})
	}

	w.findTouchedLeafs(e)

	e.mapID = w.mapID
	w.linked[e.Num] = e
	if e.Solid == SolidNot {
		return nil
	}

	// find the first node that the entity's box crosses
	node := w.root
	for node.axis != -1 {
		if e.AbsMin[node.axis] > node.dist {
			node = node.children[0]
		} else if e.AbsMax[node.axis] < node.dist {
			node = node.children[1]
		} else {
			break
		}
	}

	e.link = &ring.Ring{Value: e}
	if e.Solid == SolidTrigger {
		node.triggers.Prev().Link(e.link)
	} else {
		node.solids.Prev().Link(e.link)
	}
	return nil
}

func maxAbs(m, v float32) float32 {
	if v < 0 {
		v = -v
	}
	if v > m {
		return v
	}
	return m
}

func (w *World) findTouchedLeafs(e *Entity) {
	m := w.model
	leafs, top := m.BoxLeafs(e.AbsMin, e.AbsMax, MaxEntityLeafs)

	e.Leafs = leafs
	e.Areas = [2]int{}
	e.Clusters = e.Clusters[:0]
	e.headNode = cmodel.HeadRef{}

	for _, l := range leafs {
		area := m.LeafArea(l)
		if area == 0 || area == e.Areas[0] {
			continue
		}
		if e.Areas[0] == 0 {
			e.Areas[0] = area
			continue
		}
		if e.Areas[1] != 0 && e.Areas[1] != area {
			conlog.DPrintf("entity %d touching 3 areas at %v", e.Num, e.AbsMin)
		}
		e.Areas[1] = area
	}

	if len(leafs) >= MaxEntityLeafs {
		// assume we missed some leafs, and mark by headnode
		e.Clusters = nil
		e.headNode = m.NodeHead(top)
		return
	}
	for _, l := range leafs {
		c := m.LeafCluster(l)
		if c == -1 || containsInt(e.Clusters, c) {
			continue
		}
		if len(e.Clusters) == MaxEntityClusters {
			e.Clusters = nil
			e.headNode = m.NodeHead(top)
			return
		}
		e.Clusters = append(e.Clusters, c)
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// AreaEdicts returns the linked entities of the given kind whose absolute
// bounds touch mins..maxs.
func (w *World) AreaEdicts(mins, maxs vec.Vec3, kind AreaKind) []*Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.areaEdicts(mins, maxs, kind, nil)
}

func (w *World) areaEdicts(mins, maxs vec.Vec3, kind AreaKind, list []*Entity) []*Entity {
	stack := []*areaNode{w.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		start := node.solids
		if kind == AreaTriggers {
			start = node.triggers
		}
		for l := start.Next(); l != start; l = l.Next() {
			check, ok := l.Value.(*Entity)
			if !ok {
				// my area got removed out from under me!
				conlog.Warnf("AreaEdicts: encountered bad link")
				break
			}
			if check.Solid == SolidNot {
				continue
			}
			if check.AbsMin[0] > maxs[0] ||
				check.AbsMin[1] > maxs[1] ||
				check.AbsMin[2] > maxs[2] ||
				check.AbsMax[0] < mins[0] ||
				check.AbsMax[1] < mins[1] ||
				check.AbsMax[2] < mins[2] {
				continue
			}
			list = append(list, check)
		}

		if node.axis == -1 {
			continue
		}
		// front child on top, it is visited first
		if mins[node.axis] < node.dist {
			stack = append(stack, node.children[1])
		}
		if maxs[node.axis] > node.dist {
			stack = append(stack, node.children[0])
		}
	}
	return list
}

// Entity returns the linked entity with number num.
func (w *World) Entity(num int) (*Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.linked[num]
	return e, ok
}
