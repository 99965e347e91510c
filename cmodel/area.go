// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"github.com/pkg/errors"

	"quakeclip/bsp"
	"quakeclip/conlog"
	"quakeclip/cvars"
)

// loadAreas builds the area graph. Every portal is reachable from both
// areas it connects even if the map lists it only once. All portals start
// closed.
func (m *Model) loadAreas(f *bsp.File) error {
	numAreas := len(f.Areas)
	m.numPortals = len(f.AreaPortals)
	m.areaLinks = make([][]areaLink, numAreas)
	type edge struct{ portal, a, b int }
	seen := make(map[edge]bool)
	add := func(a, b, portal int) {
		e := edge{portal, a, b}
		if seen[e] {
			return
		}
		seen[e] = true
		m.areaLinks[a] = append(m.areaLinks[a], areaLink{portal: portal, other: b})
	}
	for i, a := range f.Areas {
		first, count := int(a.FirstAreaPortal), int(a.AreaPortalCount)
		if first < 0 || count < 0 || first+count > len(f.AreaPortals) {
			return errors.Wrapf(bsp.ErrBadLump, "%s: area %d has bad portals", f.Name, i)
		}
		for _, p := range f.AreaPortals[first : first+count] {
			if p.PortalNum < 0 || int(p.PortalNum) >= m.numPortals {
				return errors.Wrapf(bsp.ErrBadLump, "%s: area %d: bad portal number %d", f.Name, i, p.PortalNum)
			}
			if p.OtherArea < 0 || int(p.OtherArea) >= numAreas {
				return errors.Wrapf(bsp.ErrBadLump, "%s: area %d: bad area %d", f.Name, i, p.OtherArea)
			}
			add(i, int(p.OtherArea), int(p.PortalNum))
			add(int(p.OtherArea), i, int(p.PortalNum))
		}
	}
	m.portalOpen = make([]bool, m.numPortals)
	m.floodNums = make([]int, numAreas)
	m.floodAreaConnections()
	return nil
}

// floodAreaConnections gives every group of areas connected by open portals
// its own flood number. Area 0 is the void and stays at 0. Callers hold the
// write lock.
func (m *Model) floodAreaConnections() {
	clear(m.floodNums)
	flood := 0
	queue := make([]int, 0, len(m.areaLinks))
	for a := 1; a < len(m.areaLinks); a++ {
		if m.floodNums[a] != 0 {
			continue
		}
		flood++
		m.floodNums[a] = flood
		queue = append(queue[:0], a)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, l := range m.areaLinks[cur] {
				if !m.portalOpen[l.portal] || l.other == 0 || m.floodNums[l.other] != 0 {
					continue
				}
				m.floodNums[l.other] = flood
				queue = append(queue, l.other)
			}
		}
	}
}

// FloodAreaConnections recomputes the area connectivity.
func (m *Model) FloodAreaConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floodAreaConnections()
}

// SetAreaPortalState opens or closes a portal, usually a door.
func (m *Model) SetAreaPortalState(portal int, open bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if portal < 0 || portal >= m.numPortals {
		return errors.Errorf("areaportal %d out of range (%d)", portal, m.numPortals)
	}
	if m.portalOpen[portal] == open {
		return nil
	}
	m.portalOpen[portal] = open
	m.floodAreaConnections()
	return nil
}

func (m *Model) AreaPortalOpen(portal int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if portal < 0 || portal >= m.numPortals {
		return false
	}
	return m.portalOpen[portal]
}

// AreasConnected reports whether sound and sight can travel between the
// two areas.
func (m *Model) AreasConnected(a1, a2 int) bool {
	if cvars.MapNoAreas.Bool() {
		return true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.floodNums)
	if a1 < 0 || a1 >= n || a2 < 0 || a2 >= n {
		conlog.DPrintf("AreasConnected: area %d or %d out of range (%d)", a1, a2, n)
		return false
	}
	return m.floodNums[a1] == m.floodNums[a2]
}

// WriteAreaBits returns a bit vector of all areas connected to area. Area 0
// sees everything.
func (m *Model) WriteAreaBits(area int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.floodNums)
	bits := make([]byte, (n+7)>>3)
	if cvars.MapNoAreas.Bool() {
		for i := 0; i < n; i++ {
			bits[i>>3] |= 1 << (i & 7)
		}
		return bits
	}
	if area < 0 || area >= n {
		conlog.DPrintf("WriteAreaBits: area %d out of range (%d)", area, n)
		return bits
	}
	flood := m.floodNums[area]
	for i := 0; i < n; i++ {
		if area == 0 || m.floodNums[i] == flood {
			bits[i>>3] |= 1 << (i & 7)
		}
	}
	return bits
}
