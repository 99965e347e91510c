// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/md4"

	"quakeclip/filesystem"
)

var (
	ErrNotBSP     = errors.New("not a bsp file")
	ErrBadVersion = errors.New("wrong bsp version")
	ErrBadLump    = errors.New("funny lump size")
)

// File holds the decoded lumps relevant to collision. The render only
// lumps (vertexes, faces, lighting, edges) are skipped.
type File struct {
	Name        string
	Checksum    uint32
	Entities    string
	Planes      []Plane
	Visibility  []byte
	Nodes       []Node
	TexInfos    []TexInfo
	Leafs       []Leaf
	LeafBrushes []uint16
	Models      []Model
	Brushes     []Brush
	BrushSides  []BrushSide
	Areas       []Area
	AreaPortals []AreaPortal
}

// Load reads name through the game file system.
func Load(name string) (*File, error) {
	b, err := filesystem.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load %s", name)
	}
	return Decode(name, b)
}

// Decode parses a complete bsp file.
func Decode(name string, data []byte) (*File, error) {
	var h header
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrapf(ErrNotBSP, "%s: %v", name, err)
	}
	if h.Ident != magic {
		return nil, errors.Wrap(ErrNotBSP, name)
	}
	if h.Version != Version {
		return nil, errors.Wrapf(ErrBadVersion, "%s has version %d (should be %d)", name, h.Version, Version)
	}
	f := &File{
		Name:     name,
		Checksum: Checksum(data),
	}
	lump := func(i int) ([]byte, error) {
		d := h.Lumps[i]
		if d.Offset < 0 || d.Size < 0 || int64(d.Offset)+int64(d.Size) > int64(len(data)) {
			return nil, errors.Wrapf(ErrBadLump, "%s: %s lump out of file", name, lumpNames[i])
		}
		return data[d.Offset : d.Offset+d.Size], nil
	}
	ent, err := lump(lumpEntities)
	if err != nil {
		return nil, err
	}
	if len(ent) > MaxMapEntString {
		return nil, errors.Errorf("%s: map has too large entity lump", name)
	}
	f.Entities = string(bytes.TrimRight(ent, "\x00"))
	if f.Visibility, err = lump(lumpVisibility); err != nil {
		return nil, err
	}
	if len(f.Visibility) > MaxMapVisibility {
		return nil, errors.Errorf("%s: map has too large visibility lump", name)
	}
	if f.Planes, err = readLump[Plane](data, h, lumpPlanes, MaxMapPlanes, name); err != nil {
		return nil, err
	}
	if f.Nodes, err = readLump[Node](data, h, lumpNodes, MaxMapNodes, name); err != nil {
		return nil, err
	}
	if f.TexInfos, err = readLump[TexInfo](data, h, lumpTexInfo, MaxMapTexInfo, name); err != nil {
		return nil, err
	}
	if f.Leafs, err = readLump[Leaf](data, h, lumpLeafs, MaxMapLeafs, name); err != nil {
		return nil, err
	}
	if f.LeafBrushes, err = readLump[uint16](data, h, lumpLeafBrushes, MaxMapLeafBrushes, name); err != nil {
		return nil, err
	}
	if f.Models, err = readLump[Model](data, h, lumpModels, MaxMapModels, name); err != nil {
		return nil, err
	}
	if f.Brushes, err = readLump[Brush](data, h, lumpBrushes, MaxMapBrushes, name); err != nil {
		return nil, err
	}
	if f.BrushSides, err = readLump[BrushSide](data, h, lumpBrushSides, MaxMapBrushSides, name); err != nil {
		return nil, err
	}
	if f.Areas, err = readLump[Area](data, h, lumpAreas, MaxMapAreas, name); err != nil {
		return nil, err
	}
	if f.AreaPortals, err = readLump[AreaPortal](data, h, lumpAreaPortals, MaxMapAreaPortals, name); err != nil {
		return nil, err
	}
	return f, nil
}

func readLump[T any](data []byte, h header, i, limit int, name string) ([]T, error) {
	d := h.Lumps[i]
	var t T
	size := binary.Size(t)
	if d.Offset < 0 || d.Size < 0 || int64(d.Offset)+int64(d.Size) > int64(len(data)) {
		return nil, errors.Wrapf(ErrBadLump, "%s: %s lump out of file", name, lumpNames[i])
	}
	if int(d.Size)%size != 0 {
		return nil, errors.Wrapf(ErrBadLump, "%s: %s", name, lumpNames[i])
	}
	n := int(d.Size) / size
	if n > limit {
		return nil, errors.Errorf("%s: map has too many %s (%d)", name, lumpNames[i], n)
	}
	r := make([]T, n)
	if err := binary.Read(bytes.NewReader(data[d.Offset:d.Offset+d.Size]), binary.LittleEndian, r); err != nil {
		return nil, errors.Wrapf(err, "%s: %s", name, lumpNames[i])
	}
	return r, nil
}

// Checksum is the MD4 block checksum clients compare against the server
// to detect modified maps.
func Checksum(data []byte) uint32 {
	h := md4.New()
	h.Write(data)
	d := h.Sum(nil)
	return binary.LittleEndian.Uint32(d[0:]) ^
		binary.LittleEndian.Uint32(d[4:]) ^
		binary.LittleEndian.Uint32(d[8:]) ^
		binary.LittleEndian.Uint32(d[12:])
}

// Bytes encodes f as a bsp file. Lumps not carried by File are empty.
func (f *File) Bytes() ([]byte, error) {
	var h header
	h.Ident = magic
	h.Version = Version
	var body bytes.Buffer
	hsize := int32(binary.Size(h))
	add := func(i int, v any) error {
		h.Lumps[i].Offset = hsize + int32(body.Len())
		start := body.Len()
		switch d := v.(type) {
		case []byte:
			body.Write(d)
		default:
			if err := binary.Write(&body, binary.LittleEndian, v); err != nil {
				return errors.Wrapf(err, "lump %s", lumpNames[i])
			}
		}
		h.Lumps[i].Size = int32(body.Len() - start)
		// lumps are 4 byte aligned
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
		return nil
	}
	for _, l := range []struct {
		i int
		v any
	}{
		{lumpEntities, append([]byte(f.Entities), 0)},
		{lumpPlanes, f.Planes},
		{lumpVisibility, f.Visibility},
		{lumpNodes, f.Nodes},
		{lumpTexInfo, f.TexInfos},
		{lumpLeafs, f.Leafs},
		{lumpLeafBrushes, f.LeafBrushes},
		{lumpModels, f.Models},
		{lumpBrushes, f.Brushes},
		{lumpBrushSides, f.BrushSides},
		{lumpAreas, f.Areas},
		{lumpAreaPortals, f.AreaPortals},
	} {
		if err := add(l.i, l.v); err != nil {
			return nil, err
		}
	}
	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if _, err := io.Copy(&out, &body); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Name returns the texture name of t.
func (t *TexInfo) Name() string {
	n := bytes.IndexByte(t.Texture[:], 0)
	if n == -1 {
		n = len(t.Texture)
	}
	return string(t.Texture[:n])
}
