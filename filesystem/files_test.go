// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"quakeclip/pack"
)

func writePak(t *testing.T, name string, files map[string][]byte) {
	t.Helper()
	var b bytes.Buffer
	if err := pack.Write(&b, files); err != nil {
		t.Fatalf("pack.Write: %v", err)
	}
	if err := os.WriteFile(name, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	q2 := filepath.Join(base, BaseGame)
	mod := filepath.Join(base, "ctf")
	for _, d := range []string{q2, mod, filepath.Join(q2, "maps")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writePak(t, filepath.Join(q2, "pak0.pak"), map[string][]byte{
		"doc1.txt":   []byte("pak0 doc1"),
		"doc2.txt":   []byte("pak0 doc2"),
		"maps/a.bsp": []byte("pak0 map"),
	})
	writePak(t, filepath.Join(q2, "pak1.pak"), map[string][]byte{
		"doc1.txt": []byte("pak1 doc1"),
	})
	if err := os.WriteFile(filepath.Join(q2, "doc5.txt"), []byte("good file5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	writePak(t, filepath.Join(mod, "pak0.pak"), map[string][]byte{
		"doc2.txt": []byte("ctf doc2"),
	})
	return base
}

func TestFilesystemOrder(t *testing.T) {
	UseBaseDir(setup(t))
	for _, tc := range []struct {
		name string
		want string
	}{
		{"doc1.txt", "pak1 doc1"},
		{"doc2.txt", "pak0 doc2"},
		{"doc5.txt", "good file5\n"},
		{"maps/a.bsp", "pak0 map"},
	} {
		b, err := ReadFile(tc.name)
		if err != nil {
			t.Errorf("ReadFile(%s): %v", tc.name, err)
			continue
		}
		if string(b) != tc.want {
			t.Errorf("ReadFile(%s) = %q, want %q", tc.name, b, tc.want)
		}
	}
}

func TestFilesystemGameDir(t *testing.T) {
	UseBaseDir(setup(t))
	UseGameDir("ctf")
	b, err := ReadFile("doc2.txt")
	if err != nil {
		t.Fatalf("ReadFile(doc2.txt): %v", err)
	}
	if string(b) != "ctf doc2" {
		t.Errorf("ReadFile(doc2.txt) = %q", b)
	}
	if filepath.Base(GameDir()) != "ctf" {
		t.Errorf("GameDir() = %v", GameDir())
	}
}

func TestFilesystemMissing(t *testing.T) {
	UseBaseDir(setup(t))
	if _, err := ReadFile("maps/missing.bsp"); err == nil {
		t.Errorf("ReadFile(missing) did not fail")
	}
}

func TestExt(t *testing.T) {
	if got := Ext("maps/q2dm1.bsp"); got != ".bsp" {
		t.Errorf("Ext = %q", got)
	}
	if got := StripExt("maps/q2dm1.bsp"); got != "maps/q2dm1" {
		t.Errorf("StripExt = %q", got)
	}
	if got := Ext("maps.d/noext"); got != "" {
		t.Errorf("Ext(noext) = %q", got)
	}
}
