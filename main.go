// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"quakeclip/bsp"
	"quakeclip/cmodel"
	"quakeclip/commandline"
	"quakeclip/conlog"
	"quakeclip/cvar"
	"quakeclip/filesystem"
	"quakeclip/math/vec"
	"quakeclip/world"
)

func main() {
	flag.Parse()
	conlog.SetPrintf(func(format string, v ...any) {
		fmt.Printf(format, v...)
	})
	commandline.ApplyCvars()
	if conlog.Developer() {
		cvar.List()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if commandline.Map() == "" {
		return errors.New("no map given, use -map")
	}
	filesystem.UseBaseDir(commandline.BaseDirectory())
	filesystem.UseGameDir(commandline.Game())

	m, err := cmodel.LoadMap(commandline.Map())
	if err != nil {
		return err
	}
	defer cmodel.FreeMap(m)
	conlog.Printf("%s: %d inline models, %d clusters, %d areas, checksum %#08x\n",
		m.Name(), m.NumInlineModels(), m.NumClusters(), m.NumAreas(), m.Checksum())

	w, err := world.New(m)
	if err != nil {
		return err
	}
	n, err := linkBrushEntities(w, m)
	if err != nil {
		return err
	}
	conlog.Printf("linked %d brush entities\n", n)

	start, ok := commandline.Start()
	if ok {
		trace(w, start)
	}
	if commandline.PVS() {
		printPVS(m, start)
	}
	return nil
}

// linkBrushEntities links every entity of the map using an inline model.
func linkBrushEntities(w *world.World, m *cmodel.Model) (int, error) {
	linked := 0
	for i, be := range bsp.ParseEntities([]byte(m.EntityString())) {
		if i == 0 {
			continue // worldspawn
		}
		model, ok := be.Property("model")
		if !ok || !strings.HasPrefix(model, "*") {
			continue
		}
		im, err := m.InlineModel(model)
		if err != nil {
			return linked, errors.Wrapf(err, "entity %d", i)
		}
		e := world.NewEntity(i)
		e.Solid = world.SolidBSP
		e.Model = model
		e.Mins = im.Mins
		e.Maxs = im.Maxs
		if o, ok := be.Vec3("origin"); ok {
			e.Origin = o
		}
		if a, ok := be.Vec3("angles"); ok {
			e.Angles = a
		} else if yaw, ok := be.Float("angle"); ok {
			e.Angles = vec.Vec3{0, yaw, 0}
		}
		if err := w.Link(e); err != nil {
			return linked, err
		}
		linked++
	}
	return linked, nil
}

func trace(w *world.World, start vec.Vec3) {
	end := vec.Vec3(commandline.End())
	mins := vec.Vec3(commandline.Mins())
	maxs := vec.Vec3(commandline.Maxs())
	mask := commandline.Mask()

	if start == end {
		conlog.Printf("contents at %v: %#x\n", start, w.PointContents(start))
	}
	t := w.Trace(start, mins, maxs, end, world.NoOwner, mask)
	conlog.Printf("fraction %v endpos %v allsolid %v startsolid %v\n",
		t.Fraction, t.EndPos, t.AllSolid, t.StartSolid)
	if t.Fraction < 1 {
		surface := ""
		if t.Surface != nil {
			surface = t.Surface.Name
		}
		conlog.Printf("hit entity %d plane %v dist %v contents %#x surface %q\n",
			t.Ent, t.Plane.Normal, t.Plane.Dist, t.Contents, surface)
	}
}

func printPVS(m *cmodel.Model, start vec.Vec3) {
	cluster := commandline.PVSCluster()
	if cluster < 0 {
		cluster = m.LeafCluster(m.PointLeafnum(start))
	}
	bits := m.ClusterPVS(cluster)
	var visible []int
	for c := 0; c < m.NumClusters(); c++ {
		if bits[c>>3]&(1<<(c&7)) != 0 {
			visible = append(visible, c)
		}
	}
	conlog.Printf("cluster %d sees %d of %d clusters: %v\n",
		cluster, len(visible), m.NumClusters(), visible)
}
