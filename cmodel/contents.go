// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

// Contents flags are shared with the game code and the network protocol.
// Never renumber them without a protocol version bump.
const (
	ContentsSolid  = 1 << iota // an eye is never valid in a solid
	ContentsWindow             // translucent, but not watery
	ContentsAux
	ContentsLava
	ContentsSlime
	ContentsWater
	ContentsMist

	LastVisibleContents = 64
)

const (
	// remaining contents are non-visible, and don't eat brushes
	ContentsAreaPortal = 0x8000

	ContentsPlayerClip  = 0x10000
	ContentsMonsterClip = 0x20000

	// currents can be added to any other contents, and may be mixed
	ContentsCurrent0    = 0x40000
	ContentsCurrent90   = 0x80000
	ContentsCurrent180  = 0x100000
	ContentsCurrent270  = 0x200000
	ContentsCurrentUp   = 0x400000
	ContentsCurrentDown = 0x800000

	ContentsOrigin = 0x1000000 // removed before bsping an entity

	ContentsMonster     = 0x2000000 // should never be on a brush, only in game
	ContentsDeadMonster = 0x4000000
	ContentsDetail      = 0x8000000  // brushes to be added after vis leafs
	ContentsTranslucent = 0x10000000 // auto set if any surface has trans
	ContentsLadder      = 0x20000000
)

// Surface flags
const (
	SurfLight   = 0x1 // value will hold the light strength
	SurfSlick   = 0x2 // effects game physics
	SurfSky     = 0x4 // don't draw, but add to skybox
	SurfWarp    = 0x8 // turbulent water warp
	SurfTrans33 = 0x10
	SurfTrans66 = 0x20
	SurfFlowing = 0x40 // scroll towards angle
	SurfNoDraw  = 0x80 // don't bother referencing the texture
)

// content masks
const (
	MaskAll          = -1
	MaskSolid        = ContentsSolid | ContentsWindow
	MaskPlayerSolid  = ContentsSolid | ContentsPlayerClip | ContentsWindow | ContentsMonster
	MaskDeadSolid    = ContentsSolid | ContentsPlayerClip | ContentsWindow
	MaskMonsterSolid = ContentsSolid | ContentsMonsterClip | ContentsWindow | ContentsMonster
	MaskWater        = ContentsWater | ContentsLava | ContentsSlime
	MaskOpaque       = ContentsSolid | ContentsSlime | ContentsLava
	MaskShot         = ContentsSolid | ContentsMonster | ContentsWindow | ContentsDeadMonster
	MaskCurrent      = ContentsCurrent0 | ContentsCurrent90 | ContentsCurrent180 |
		ContentsCurrent270 | ContentsCurrentUp | ContentsCurrentDown
)
