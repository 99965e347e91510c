// SPDX-License-Identifier: GPL-2.0-or-later

package filesystem

//TODO(therjak): the pack files are never closed and ns is never cleaned. There should be an option.

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/tools/godoc/vfs"

	"quakeclip/pack"
)

const BaseGame = "baseq2"

var (
	baseDir string
	gameDir string
	gameNS  = vfs.NameSpace{}
	mutex   sync.RWMutex
)

type packFileSystem struct {
	p *pack.Pack
}

type closer struct {
	*io.SectionReader
}

func (*closer) Close() error {
	return nil
}

type fileInfo struct {
	name string // base name of the file
	size int64  // length in bytes for regular files; system-dependent for others
}

func (f *fileInfo) Name() string {
	return f.name
}
func (f *fileInfo) Size() int64 {
	return f.size
}
func (f *fileInfo) Mode() fs.FileMode {
	return 0o444
}
func (f *fileInfo) ModTime() time.Time {
	return time.Time{}
}
func (f *fileInfo) IsDir() bool {
	return false
}
func (f *fileInfo) Sys() any {
	return nil
}

func (p packFileSystem) Open(name string) (vfs.ReadSeekCloser, error) {
	// inside a pack file there is no 'root'. all files are relative to '.'
	name = strings.TrimPrefix(name, "/")
	f, err := p.p.Open(name)
	if err != nil {
		return nil, err
	}
	return &closer{f}, nil
}

func (p packFileSystem) Stat(name string) (os.FileInfo, error) {
	name = strings.TrimPrefix(name, "/")
	f, err := p.p.Open(name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{
		name: path.Base(name),
		size: f.Size(),
	}, nil
}

func (p packFileSystem) Lstat(name string) (os.FileInfo, error) {
	return p.Stat(name)
}

func (p packFileSystem) ReadDir(name string) ([]os.FileInfo, error) {
	dir := strings.Trim(name, "/")
	if dir != "" {
		dir += "/"
	}
	var r []os.FileInfo
	for _, n := range p.p.Names() {
		rest, ok := strings.CutPrefix(n, dir)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		fi, err := p.Stat(n)
		if err != nil {
			return nil, err
		}
		r = append(r, fi)
	}
	return r, nil
}

func (p packFileSystem) RootType(string) vfs.RootType {
	return ""
}

func (p packFileSystem) String() string {
	return p.p.String()
}

func GameDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameDir
}

func BaseDir() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return baseDir
}

// UseBaseDir makes dir/baseq2 and its pak files the search path.
func UseBaseDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	baseDir = dir
	root := filepath.Join(baseDir, BaseGame)
	gameDir = root
	gameNS = vfs.NameSpace{}
	gameNS.Bind("/", vfs.OS(root), "/", vfs.BindReplace)
	useDir(gameNS, root)
}

// UseGameDir adds a mod directory in front of baseq2.
func UseGameDir(dir string) {
	mutex.Lock()
	defer mutex.Unlock()
	gameNS = vfs.NameSpace{}
	root := filepath.Join(baseDir, BaseGame)
	gameNS.Bind("/", vfs.OS(root), "/", vfs.BindReplace)
	useDir(gameNS, root)
	if dir == "" || dir == BaseGame {
		gameDir = root
		return
	}
	gameDir = filepath.Join(baseDir, dir)
	gameNS.Bind("/", vfs.OS(gameDir), "/", vfs.BindBefore)
	useDir(gameNS, gameDir)
}

// useDir binds pak[i].pak files in front, higher numbers first.
func useDir(ns vfs.NameSpace, dir string) {
	for i := 0; ; i++ {
		pfn := fmt.Sprintf("pak%d.pak", i)
		pfp := filepath.Join(dir, pfn)
		p, err := pack.NewPackReader(pfp)
		if err != nil {
			break
		}
		ns.Bind("/", packFileSystem{p}, "/", vfs.BindBefore)
	}
}

func Stat(name string) (os.FileInfo, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameNS.Stat(path.Join("/", name))
}

func Open(name string) (io.ReadCloser, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	return gameNS.Open(path.Join("/", filepath.ToSlash(name)))
}

func ReadFile(name string) ([]byte, error) {
	file, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isSep(c uint8) bool {
	return c == '/' || c == '\\'
}

func Ext(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}

func StripExt(path string) string {
	for i := len(path) - 1; i >= 0 && !isSep(path[i]); i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
