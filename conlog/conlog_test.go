// SPDX-License-Identifier: GPL-2.0-or-later

package conlog

import (
	"fmt"
	"testing"
)

func TestDPrintfNeedsDeveloper(t *testing.T) {
	var got []string
	SetPrintf(func(f string, v ...any) {
		got = append(got, fmt.Sprintf(f, v...))
	})
	defer SetPrintf(nil)
	defer SetDeveloper(false)

	SetDeveloper(false)
	DPrintf("hidden %d\n", 1)
	if len(got) != 0 {
		t.Errorf("DPrintf without developer printed %q", got)
	}
	SetDeveloper(true)
	DPrintf("shown %d\n", 2)
	if len(got) != 1 || got[0] != "shown 2\n" {
		t.Errorf("DPrintf with developer = %q, want [\"shown 2\\n\"]", got)
	}
}

func TestWarnfPrefix(t *testing.T) {
	var got string
	SetPrintf(func(f string, v ...any) {
		got = fmt.Sprintf(f, v...)
	})
	defer SetPrintf(nil)
	Warnf("bad node %d\n", 7)
	if got != "WARNING: bad node 7\n" {
		t.Errorf("Warnf = %q", got)
	}
}
