// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"strconv"
	"strings"
)

type Entity struct {
	properties map[string]string
	src        []byte
}

func NewEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string), src: p}
	// parse the entity line by line
	lines := bytes.Split(p, []byte("\n"))
	for _, l := range lines {
		// look for something of the form
		// "key" "value"
		key, r, ok := quoted(l)
		if !ok {
			continue
		}
		value, _, ok := quoted(r)
		if !ok {
			continue
		}
		e.properties[key] = value
	}
	return e
}

func quoted(l []byte) (string, []byte, bool) {
	q := bytes.IndexByte(l, '"')
	if q == -1 {
		return "", nil, false
	}
	r := l[q+1:]
	q = bytes.IndexByte(r, '"')
	if q == -1 {
		return "", nil, false
	}
	return string(r[:q]), r[q+1:], true
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

// Name returns the classname
func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// Vec3 parses a "x y z" property like origin or angles.
func (e *Entity) Vec3(name string) ([3]float32, bool) {
	var r [3]float32
	v, ok := e.properties[name]
	if !ok {
		return r, false
	}
	f := strings.Fields(v)
	if len(f) != 3 {
		return r, false
	}
	for i, s := range f {
		x, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return r, false
		}
		r[i] = float32(x)
	}
	return r, true
}

// Float parses a single number property like angle.
func (e *Entity) Float(name string) (float32, bool) {
	v, ok := e.properties[name]
	if !ok {
		return 0, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0, false
	}
	return float32(x), true
}

func (e *Entity) PropertyNames() []string {
	n := []string{}
	for k := range e.properties {
		n = append(n, k)
	}
	return n
}

func ParseEntities(data []byte) []*Entity {
	/*
		The data looks like:
		{
		  "classname" "worldspawn"
		  "message" "The Outer Base"
		}
		{
		  "classname" "func_door"
		  "model" "*1"
		}
	*/
	// First split the entities
	es := []*Entity{}
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				// Bad input
				return nil
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			q ^= 1
		}
	}
	for _, e := range ess {
		es = append(es, NewEntity(e))
	}
	return es
}
