// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"quakeclip/bsp"
	"quakeclip/conlog"
	"quakeclip/cvars"
	"quakeclip/math/vec"
)

// DecompressVis expands a run length encoded row of rowLen bytes. A zero
// byte is followed by the number of zero bytes it stands for. Without data
// everything is visible.
func DecompressVis(in []byte, rowLen int) []byte {
	out := make([]byte, 0, rowLen)
	if len(in) == 0 {
		for i := 0; i < rowLen; i++ {
			out = append(out, 0xff)
		}
		return out
	}
	for len(out) < rowLen && len(in) > 0 {
		if in[0] != 0 {
			out = append(out, in[0])
			in = in[1:]
			continue
		}
		if len(in) < 2 {
			conlog.DPrintf("warning: Vis decompression truncated")
			break
		}
		c := int(in[1])
		in = in[2:]
		if len(out)+c > rowLen {
			c = rowLen - len(out)
			conlog.DPrintf("warning: Vis decompression overrun")
		}
		for ; c > 0; c-- {
			out = append(out, 0)
		}
	}
	for len(out) < rowLen {
		out = append(out, 0)
	}
	return out
}

func (m *Model) rowLen() int {
	return (m.numClusters + 7) >> 3
}

func (m *Model) clusterVis(cluster, kind int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row := m.rowLen()
	if cluster == -1 {
		return make([]byte, row)
	}
	if m.vis == nil {
		return DecompressVis(nil, row)
	}
	if cluster < 0 || cluster >= len(m.visOffsets) {
		conlog.DPrintf("cluster %d out of range (%d)", cluster, len(m.visOffsets))
		return make([]byte, row)
	}
	return DecompressVis(m.vis[m.visOffsets[cluster][kind]:], row)
}

// ClusterPVS returns the clusters potentially visible from cluster.
func (m *Model) ClusterPVS(cluster int) []byte {
	return m.clusterVis(cluster, bsp.VisPVS)
}

// ClusterPHS returns the clusters potentially hearable from cluster.
func (m *Model) ClusterPHS(cluster int) []byte {
	return m.clusterVis(cluster, bsp.VisPHS)
}

// FatPVS merges the PVS rows of all clusters.
func (m *Model) FatPVS(clusters ...int) []byte {
	var fat []byte
	for i, c := range clusters {
		row := m.ClusterPVS(c)
		if i == 0 {
			fat = row
			continue
		}
		for j := range fat {
			fat[j] |= row[j]
		}
	}
	if fat == nil {
		fat = make([]byte, m.rowLen())
	}
	return fat
}

// FatPVSForPoint returns the PVS of all clusters within sv_fatpvsradius of
// org, so a viewer sitting on a cluster boundary sees both sides.
func (m *Model) FatPVSForPoint(org vec.Vec3) []byte {
	r := cvars.ServerFatPVSRadius.Value()
	d := vec.Vec3{r, r, r}
	leafs, _ := m.BoxLeafs(vec.Sub(org, d), vec.Add(org, d), 64)
	clusters := make([]int, 0, len(leafs))
	seen := make(map[int]bool, len(leafs))
	for _, l := range leafs {
		c := m.LeafCluster(l)
		if seen[c] {
			continue
		}
		seen[c] = true
		clusters = append(clusters, c)
	}
	return m.FatPVS(clusters...)
}

// HeadnodeVisible reports whether any leaf below head is in a cluster set in
// visbits. Used for entities touching too many leafs to list.
func HeadnodeVisible(head HeadRef, visbits []byte) bool {
	if !head.Valid() {
		return false
	}
	t := head.tree
	stack := []ChildRef{head.root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c.IsLeaf() {
			cluster := t.leaf(c.Index()).Cluster
			if cluster < 0 || cluster>>3 >= len(visbits) {
				continue
			}
			if visbits[cluster>>3]&(1<<(cluster&7)) != 0 {
				return true
			}
			continue
		}
		n, ok := t.node(c.Index())
		if !ok {
			continue
		}
		stack = append(stack, n.Children[1], n.Children[0])
	}
	return false
}

// NodeHead returns a reference to a node of the world tree, e.g. the top
// node of BoxLeafs.
func (m *Model) NodeHead(c ChildRef) HeadRef {
	h := m.WorldHead()
	if h.tree == nil {
		return h
	}
	h.root = c
	return h
}
