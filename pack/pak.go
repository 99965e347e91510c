// SPDX-License-Identifier: GPL-2.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotAPack   = errors.New("not a pack file")
	ErrDuplicates = errors.New("files in pack are not unique")
)

const (
	entrySize = 64 // Sizeof(entry)
	// Quake 2 refuses packs with more files than this
	maxFilesInPack = 4096
)

type header struct {
	ID     [4]byte
	Offset int32
	Size   int32
}

type entry struct {
	Name   [56]byte
	Offset int32
	Size   int32
}

type Pack struct {
	r     io.ReaderAt
	c     io.Closer
	size  int64
	files map[string]qfile
	name  string
}

type qfile struct {
	offset int64
	size   int64
}

// Open returns a io.SectionReader or os.ErrNotExist if the pak has no entry
// with the provided name. Names are matched case insensitive.
func (p *Pack) Open(name string) (*io.SectionReader, error) {
	q, ok := p.files[strings.ToLower(name)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return io.NewSectionReader(p.r, q.offset, q.size), nil
}

// Names returns the sorted file names inside the pack.
func (p *Pack) Names() []string {
	n := make([]string, 0, len(p.files))
	for k := range p.files {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

func (p *Pack) String() string {
	return p.name
}

func (p *Pack) Close() error {
	if p.c == nil {
		return nil
	}
	return p.c.Close()
}

func (p *Pack) init() error {
	var h header
	if err := binary.Read(io.NewSectionReader(p.r, 0, 12), binary.LittleEndian, &h); err != nil {
		return errors.Wrapf(err, "pack %s: header", p.name)
	}
	if !bytes.Equal([]byte("PACK"), h.ID[:]) {
		return errors.Wrap(ErrNotAPack, p.name)
	}
	if h.Offset < 0 || h.Size < 0 || int64(h.Offset)+int64(h.Size) > p.size {
		return errors.Errorf("pack %s: directory out of bounds", p.name)
	}
	filenum := h.Size / entrySize
	if filenum > maxFilesInPack {
		return errors.Errorf("pack %s: %d files", p.name, filenum)
	}
	dir := io.NewSectionReader(p.r, int64(h.Offset), int64(h.Size))
	p.files = make(map[string]qfile, filenum)
	for i := int32(0); i < filenum; i++ {
		var e entry
		if err := binary.Read(dir, binary.LittleEndian, &e); err != nil {
			return errors.Wrapf(err, "pack %s: entry %d", p.name, i)
		}
		n := bytes.IndexByte(e.Name[:], 0)
		if n == -1 {
			n = len(e.Name)
		}
		name := strings.ToLower(string(e.Name[:n]))
		if _, ok := p.files[name]; ok {
			return errors.Wrapf(ErrDuplicates, "pack %s: %s", p.name, name)
		}
		if e.Offset < 0 || e.Size < 0 || int64(e.Offset)+int64(e.Size) > p.size {
			return errors.Errorf("pack %s: %s out of bounds", p.name, name)
		}
		p.files[name] = qfile{
			offset: int64(e.Offset),
			size:   int64(e.Size),
		}
	}
	return nil
}

// NewReader reads a pack from r. The returned Pack does not own r.
func NewReader(name string, r io.ReaderAt, size int64) (*Pack, error) {
	p := &Pack{r: r, size: size, name: name}
	if err := p.init(); err != nil {
		return nil, err
	}
	return p, nil
}

func NewPackReader(name string) (*Pack, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p := &Pack{r: f, c: f, size: fi.Size(), name: name}
	if err := p.init(); err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// Write creates a pack containing files. Used to build test data and tools.
func Write(w io.Writer, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for n := range files {
		if len(n) >= 56 {
			return errors.Errorf("pack name too long: %s", n)
		}
		names = append(names, n)
	}
	sort.Strings(names)
	var data bytes.Buffer
	entries := make([]entry, 0, len(names))
	offset := int32(12)
	for _, n := range names {
		var e entry
		copy(e.Name[:], n)
		e.Offset = offset
		e.Size = int32(len(files[n]))
		data.Write(files[n])
		offset += e.Size
		entries = append(entries, e)
	}
	h := header{
		Offset: offset,
		Size:   int32(len(entries) * entrySize),
	}
	copy(h.ID[:], "PACK")
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Write(data.Bytes()); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, entries)
}
