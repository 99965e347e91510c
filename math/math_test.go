// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestClamp(t *testing.T) {
	if v := Clamp(1, 0, 10); v != 1 {
		t.Errorf("Clamp(1,0,10) = %v", v)
	}
	if v := Clamp(1, 100, 10); v != 10 {
		t.Errorf("Clamp(1,100,10) = %v", v)
	}
	if v := Clamp(1, 5, 10); v != 5 {
		t.Errorf("Clamp(1,5,10) = %v", v)
	}
	if v := Clamp(float32(0), float32(1.2), float32(1)); v != 1 {
		t.Errorf("Clamp(0,1.2,1) = %v", v)
	}
	if v := Clamp(0, math32.NaN(), 1); !math32.IsNaN(v) {
		t.Errorf("Clamp(0,NaN,1) = %v", v)
	}
}

func TestAngleMod(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-720, 0},
		{-1e-7, 0},
	}
	for _, tc := range tests {
		if v := AngleMod(tc.in); math32.Abs(v-tc.want) > 1e-4 {
			t.Errorf("AngleMod(%v) = %v, want %v", tc.in, v, tc.want)
		}
	}
	if v := AnglesMod([3]float32{360, -270, -90}); v != [3]float32{0, 90, 270} {
		t.Errorf("AnglesMod = %v", v)
	}
}
