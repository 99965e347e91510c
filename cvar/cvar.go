// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"quakeclip/conlog"
)

var (
	mutex      sync.RWMutex
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	// cvar flags bitfield
	NONE flag = 0
	ROM  flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

// cvarValue is swapped as a whole so readers never see a half written
// string/value pair.
type cvarValue struct {
	s string
	v float32
}

// Cvar values may be read and set from any goroutine.
type Cvar struct {
	rom      bool
	user     bool
	name     string
	callback atomic.Pointer[CallbackFunc]
	// s is the truth, v the derived one
	value        atomic.Pointer[cvarValue]
	defaultValue string
}

func All() []*Cvar {
	mutex.RLock()
	defer mutex.RUnlock()
	r := make([]*Cvar, len(cvarArray))
	copy(r, cvarArray)
	return r
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	if cb == nil {
		cv.callback.Store(nil)
		return
	}
	cv.callback.Store(&cb)
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	pf, _ := strconv.ParseFloat(s, 32)
	cv.value.Store(&cvarValue{s: s, v: float32(pf)})
	if cb := cv.callback.Load(); cb != nil {
		(*cb)(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.value.Load().s
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value.Load().v
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Bool() bool {
	s := cv.String()
	return s != "0" && s != ""
}

func Get(name string) (*Cvar, bool) {
	mutex.RLock()
	defer mutex.RUnlock()
	cv, ok := cvarByName[name]
	return cv, ok
}

// create expects the mutex to be held.
func create(name, value string, flags flag) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	cv.rom = flags&ROM != 0
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	mutex.Lock()
	defer mutex.Unlock()
	if _, ok := cvarByName[name]; ok {
		return nil, fmt.Errorf("Can't register variable %s, already defined\n", name)
	}
	return create(name, value, flags), nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		log.Panic(n)
	}
	return cv
}

// Set assigns value to the named cvar. Unknown names create a user
// defined cvar like the console 'set' command does.
func Set(name, value string) {
	mutex.Lock()
	cv, ok := cvarByName[name]
	if !ok {
		cv = create(name, value, NONE)
		cv.user = true
	}
	mutex.Unlock()
	if ok {
		cv.SetByString(value)
	}
}

// ParseAssignment splits "name=value" as used on the command line.
func ParseAssignment(s string) (string, string, error) {
	n, v, ok := strings.Cut(s, "=")
	if !ok || n == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", s)
	}
	return n, v, nil
}

func List() {
	cvars := All()
	sort.Slice(cvars, func(i, j int) bool {
		return cvars[i].Name() < cvars[j].Name()
	})
	for _, v := range cvars {
		conlog.Printf("%s%s %s \"%s\"\n",
			func() string {
				if v.rom {
					return "R"
				}
				return " "
			}(),
			func() string {
				if v.UserDefined() {
					return "U"
				}
				return " "
			}(),
			v.Name(),
			v.String())
	}
	conlog.Printf("%v cvars\n", len(cvars))
}
