// SPDX-License-Identifier: GPL-2.0-or-later

package cmodel

import (
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"quakeclip/crc"
)

// portal state message fields
const (
	psChecksum protowire.Number = 1 // fixed32, map checksum
	psOpen     protowire.Number = 2 // packed bools, one per portal
	psCRC      protowire.Number = 3 // varint, crc of fields 1 and 2
)

// WritePortalState saves the open state of all area portals, e.g. into a
// savegame.
func (m *Model) WritePortalState(w io.Writer) error {
	m.mu.RLock()
	var b []byte
	b = protowire.AppendTag(b, psChecksum, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, m.checksum)
	var packed []byte
	for _, o := range m.portalOpen {
		packed = protowire.AppendVarint(packed, protowire.EncodeBool(o))
	}
	m.mu.RUnlock()
	b = protowire.AppendTag(b, psOpen, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)
	sum := crc.Update(b)
	b = protowire.AppendTag(b, psCRC, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(sum))
	_, err := w.Write(b)
	return errors.Wrap(err, "write portal state")
}

// ReadPortalState restores a state written by WritePortalState for the same
// map and recomputes the area connectivity. On error the state is unchanged.
func (m *Model) ReadPortalState(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read portal state")
	}
	var (
		checksum     uint32
		haveChecksum bool
		open         []bool
		sum          uint64
		haveSum      bool
		payload      int
	)
	for in := b; len(in) > 0; {
		num, typ, n := protowire.ConsumeTag(in)
		if n < 0 {
			return errors.Wrap(ErrBadPortalState, protowire.ParseError(n).Error())
		}
		field := in[:n]
		in = in[n:]
		switch {
		case num == psChecksum && typ == protowire.Fixed32Type:
			checksum, n = protowire.ConsumeFixed32(in)
			haveChecksum = true
		case num == psOpen && typ == protowire.BytesType:
			var packed []byte
			packed, n = protowire.ConsumeBytes(in)
			for len(packed) > 0 && n >= 0 {
				v, vn := protowire.ConsumeVarint(packed)
				if vn < 0 {
					n = vn
					break
				}
				open = append(open, protowire.DecodeBool(v))
				packed = packed[vn:]
			}
		case num == psCRC && typ == protowire.VarintType:
			payload = len(b) - len(in) - len(field)
			sum, n = protowire.ConsumeVarint(in)
			haveSum = true
		default:
			n = protowire.ConsumeFieldValue(num, typ, in)
		}
		if n < 0 {
			return errors.Wrap(ErrBadPortalState, protowire.ParseError(n).Error())
		}
		in = in[n:]
	}
	if !haveChecksum || !haveSum {
		return errors.Wrap(ErrBadPortalState, "missing field")
	}
	if uint64(crc.Update(b[:payload])) != sum {
		return errors.Wrap(ErrBadPortalState, "crc mismatch")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if checksum != m.checksum {
		return errors.Wrapf(ErrBadPortalState, "map checksum %d, want %d", checksum, m.checksum)
	}
	if len(open) != len(m.portalOpen) {
		return errors.Wrapf(ErrBadPortalState, "%d portals, want %d", len(open), len(m.portalOpen))
	}
	copy(m.portalOpen, open)
	m.floodAreaConnections()
	return nil
}
