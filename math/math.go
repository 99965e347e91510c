// SPDX-License-Identifier: GPL-2.0-or-later

// Package math holds the scalar helpers shared by the collision code.
package math

import "github.com/chewxy/math32"

type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Clamp returns val limited to [min, max]. NaN values are passed through.
func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// AngleMod changes an angle in degrees to be within [0, 360).
func AngleMod(a float32) float32 {
	a -= math32.Floor(a/360) * 360
	if a >= 360 {
		// rounding of tiny negative angles
		return 0
	}
	return a
}

// AnglesMod applies AngleMod to pitch, yaw and roll.
func AnglesMod(a [3]float32) [3]float32 {
	return [3]float32{AngleMod(a[0]), AngleMod(a[1]), AngleMod(a[2])}
}
