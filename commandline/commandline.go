// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"quakeclip/cmodel"
	"quakeclip/cvar"
)

var (
	basedir string
	game    string
	mapName string

	start vec3Flag
	end   vec3Flag
	mins  vec3Flag
	maxs  vec3Flag
	mask  = maskFlag{cmodel.MaskSolid}

	pvs  = boolInt{false, -1}
	sets assignments
)

// boolInt is a flag usable as "-flag" and "-flag=10".
type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// vec3Flag parses "x y z" or "x,y,z".
type vec3Flag struct {
	set bool
	v   [3]float32
}

func (f *vec3Flag) Set(s string) error {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(parts) != 3 {
		return fmt.Errorf("expected 3 components, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return err
		}
		f.v[i] = float32(v)
	}
	f.set = true
	return nil
}

func (f *vec3Flag) String() string {
	return fmt.Sprintf("%v %v %v", f.v[0], f.v[1], f.v[2])
}

var maskNames = map[string]int{
	"all":          cmodel.MaskAll,
	"solid":        cmodel.MaskSolid,
	"playersolid":  cmodel.MaskPlayerSolid,
	"deadsolid":    cmodel.MaskDeadSolid,
	"monstersolid": cmodel.MaskMonsterSolid,
	"water":        cmodel.MaskWater,
	"opaque":       cmodel.MaskOpaque,
	"shot":         cmodel.MaskShot,
	"current":      cmodel.MaskCurrent,
}

// maskFlag takes a contents mask by name or number, several joined by '|'.
type maskFlag struct {
	mask int
}

func (f *maskFlag) Set(s string) error {
	m := 0
	for _, p := range strings.Split(s, "|") {
		p = strings.ToLower(strings.TrimSpace(p))
		if v, ok := maskNames[p]; ok {
			m |= v
			continue
		}
		v, err := strconv.ParseInt(p, 0, 64)
		if err != nil {
			return fmt.Errorf("unknown mask %q", p)
		}
		m |= int(v)
	}
	f.mask = m
	return nil
}

func (f *maskFlag) String() string {
	return fmt.Sprintf("%#x", f.mask)
}

// assignments collects repeated "-set name=value" flags.
type assignments [][2]string

func (a *assignments) Set(s string) error {
	n, v, err := cvar.ParseAssignment(s)
	if err != nil {
		return err
	}
	*a = append(*a, [2]string{n, v})
	return nil
}

func (a *assignments) String() string {
	var b strings.Builder
	for i, s := range *a {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", s[0], s[1])
	}
	return b.String()
}

func init() {
	flag.StringVar(&basedir, "basedir", "", "directory containing the game directories")
	flag.StringVar(&game, "game", "", "mod directory searched before baseq2")
	flag.StringVar(&mapName, "map", "", "map to load, e.g. maps/base1.bsp")

	flag.Var(&start, "start", "trace start \"x y z\"")
	flag.Var(&end, "end", "trace end \"x y z\", defaults to start")
	flag.Var(&mins, "mins", "mins of the traced box")
	flag.Var(&maxs, "maxs", "maxs of the traced box")
	flag.Var(&mask, "mask", "contents mask, by name (solid, playersolid, shot, ...) or number")

	flag.Var(&pvs, "pvs", "print the pvs of the start cluster, or of the given cluster")
	flag.Var(&sets, "set", "set a cvar, name=value, may be repeated")
}

func BaseDirectory() string {
	return basedir
}

func Game() string {
	return game
}

func Map() string {
	return mapName
}

// Start returns the trace start and whether it was given.
func Start() ([3]float32, bool) {
	return start.v, start.set
}

// End returns the trace end, the start if none was given.
func End() [3]float32 {
	if !end.set {
		return start.v
	}
	return end.v
}

func Mins() [3]float32 {
	return mins.v
}

func Maxs() [3]float32 {
	return maxs.v
}

func Mask() int {
	return mask.mask
}

func PVS() bool {
	return pvs.set
}

// PVSCluster is the cluster given to -pvs, -1 if none.
func PVSCluster() int {
	return pvs.num
}

// ApplyCvars sets the cvars given by -set.
func ApplyCvars() {
	for _, s := range sets {
		cvar.Set(s[0], s[1])
	}
}
