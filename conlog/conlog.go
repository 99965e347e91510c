// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog routes console and diagnostic output. By default everything
// ends up in the slog default logger; a host can redirect the console print
// with SetPrintf.
package conlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

var (
	p         atomic.Pointer[func(string, ...any)]
	developer atomic.Bool
)

// SetPrintf replaces the console printer. nil restores slog output.
func SetPrintf(f func(string, ...any)) {
	if f == nil {
		p.Store(nil)
		return
	}
	p.Store(&f)
}

// SetDeveloper enables DPrintf output.
func SetDeveloper(on bool) {
	developer.Store(on)
}

func Developer() bool {
	return developer.Load()
}

func Printf(format string, v ...any) {
	if f := p.Load(); f != nil {
		(*f)(format, v...)
		return
	}
	slog.Info(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// DPrintf only prints in developer mode.
func DPrintf(format string, v ...any) {
	if !developer.Load() {
		return
	}
	if f := p.Load(); f != nil {
		(*f)(format, v...)
		return
	}
	slog.Debug(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Warnf reports a recoverable problem, e.g. corrupt map data.
func Warnf(format string, v ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	if f := p.Load(); f != nil {
		(*f)("WARNING: %s\n", msg)
	}
	slog.Log(context.Background(), slog.LevelWarn, msg)
}
