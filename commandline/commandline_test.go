// SPDX-License-Identifier: GPL-2.0-or-later

package commandline

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"

	"quakeclip/cmodel"
)

func TestBoolInt(t *testing.T) {
	var flags flag.FlagSet
	flags.Init("test", flag.ContinueOnError)
	a := boolInt{false, -1}
	b := boolInt{false, -1}
	c := boolInt{true, 6}
	d := boolInt{false, 7}
	e := boolInt{true, 9}
	flags.Var(&a, "a", "usage")
	flags.Var(&b, "b", "usage")
	flags.Var(&c, "c", "usage")
	flags.Var(&d, "d", "usage")
	flags.Var(&e, "e", "usage")
	require.NoError(t, flags.Parse([]string{"-a", "-b=3", "-e=false"}))

	require.Equal(t, boolInt{true, -1}, a)
	require.Equal(t, boolInt{true, 3}, b)
	require.Equal(t, boolInt{true, 6}, c)
	require.Equal(t, boolInt{false, 7}, d)
	require.Equal(t, boolInt{false, 9}, e)
}

func TestVec3Flag(t *testing.T) {
	var v vec3Flag
	require.NoError(t, v.Set("1 -2.5 3"))
	require.True(t, v.set)
	require.Equal(t, [3]float32{1, -2.5, 3}, v.v)

	require.NoError(t, v.Set("4,5,6"))
	require.Equal(t, [3]float32{4, 5, 6}, v.v)

	require.Error(t, v.Set("1 2"))
	require.Error(t, v.Set("1 2 x"))
}

func TestMaskFlag(t *testing.T) {
	var m maskFlag
	require.NoError(t, m.Set("shot"))
	require.Equal(t, cmodel.MaskShot, m.mask)

	require.NoError(t, m.Set("Solid|0x8"))
	require.Equal(t, cmodel.MaskSolid|8, m.mask)

	require.Error(t, m.Set("nothing"))
}

func TestAssignments(t *testing.T) {
	var flags flag.FlagSet
	flags.Init("test", flag.ContinueOnError)
	var a assignments
	flags.Var(&a, "set", "usage")
	require.NoError(t, flags.Parse([]string{"-set", "developer=1", "-set", "map_noareas=1"}))
	require.Equal(t, assignments{{"developer", "1"}, {"map_noareas", "1"}}, a)
	require.Equal(t, "developer=1 map_noareas=1", a.String())

	require.Error(t, flags.Parse([]string{"-set", "developer"}))
}
