// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"quakeclip/conlog"
	"quakeclip/cvar"
)

var (
	Developer          *cvar.Cvar
	MapNoAreas         *cvar.Cvar
	MaxTraceLeafs      *cvar.Cvar
	ServerFatPVSRadius *cvar.Cvar
)

func init() {
	Developer = cvar.MustRegister("developer", "0", cvar.NONE)
	Developer.SetCallback(func(cv *cvar.Cvar) {
		conlog.SetDeveloper(cv.Bool())
	})
	// all areas are treated as connected
	MapNoAreas = cvar.MustRegister("map_noareas", "0", cvar.NONE)
	// leaf list bound of a position test
	MaxTraceLeafs = cvar.MustRegister("cm_maxtraceleafs", "1024", cvar.NONE)
	ServerFatPVSRadius = cvar.MustRegister("sv_fatpvsradius", "8", cvar.NONE)
}
