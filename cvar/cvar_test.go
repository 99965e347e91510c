// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"strconv"
	"sync"
	"testing"
)

func TestRegisterTwice(t *testing.T) {
	if _, err := Register("test_twice", "1", NONE); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := Register("test_twice", "2", NONE); err == nil {
		t.Errorf("second Register of test_twice succeeded")
	}
}

func TestSetValue(t *testing.T) {
	cv := MustRegister("test_value", "8", NONE)
	if cv.Value() != 8 {
		t.Errorf("Value() = %v, want 8", cv.Value())
	}
	cv.SetValue(0.5)
	if cv.String() != "0.5" {
		t.Errorf("String() = %q, want \"0.5\"", cv.String())
	}
	cv.Reset()
	if cv.Value() != 8 {
		t.Errorf("after Reset Value() = %v, want 8", cv.Value())
	}
}

func TestROM(t *testing.T) {
	cv := MustRegister("test_rom", "1", ROM)
	cv.SetByString("0")
	if !cv.Bool() {
		t.Errorf("ROM cvar changed")
	}
}

func TestCallback(t *testing.T) {
	cv := MustRegister("test_cb", "0", NONE)
	called := 0
	cv.SetCallback(func(*Cvar) { called++ })
	Set("test_cb", "1")
	if called != 1 || !cv.Bool() {
		t.Errorf("callback called %d times, Bool() = %v", called, cv.Bool())
	}
}

func TestSetCreatesUserCvar(t *testing.T) {
	Set("test_user", "3")
	cv, ok := Get("test_user")
	if !ok || !cv.UserDefined() || cv.Value() != 3 {
		t.Errorf("Set did not create a user cvar: %v %v", ok, cv)
	}
}

func TestParseAssignment(t *testing.T) {
	n, v, err := ParseAssignment("map_noareas=1")
	if err != nil || n != "map_noareas" || v != "1" {
		t.Errorf("ParseAssignment = %q %q %v", n, v, err)
	}
	if _, _, err := ParseAssignment("novalue"); err == nil {
		t.Errorf("ParseAssignment(novalue) did not fail")
	}
}

func TestConcurrentSet(t *testing.T) {
	cv := MustRegister("test_concurrent", "0", NONE)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				cv.SetValue(float32(i*1000 + j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s, v := cv.String(), cv.Value()
				if s == "" || v < 0 {
					t.Errorf("read %q %v", s, v)
					return
				}
			}
		}()
	}
	wg.Wait()
	want, _ := strconv.ParseFloat(cv.String(), 32)
	if cv.Value() != float32(want) {
		t.Errorf("Value() = %v, String() = %q", cv.Value(), cv.String())
	}
}
