// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the 16 bit CCITT checksum (XMODEM polynomial,
// initial value 0xffff) used to guard saved state.
package crc

const (
	poly    = 0x1021
	initial = 0xffff
)

var table = func() (t [256]uint16) {
	for i := range t {
		c := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if c&0x8000 != 0 {
				c = c<<1 ^ poly
			} else {
				c <<= 1
			}
		}
		t[i] = c
	}
	return
}()

// Digest accumulates a checksum over several writes.
type Digest struct {
	crc uint16
}

func New() *Digest {
	return &Digest{crc: initial}
}

// Write never fails.
func (d *Digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *Digest) Sum16() uint16 {
	return d.crc
}

func (d *Digest) Reset() {
	d.crc = initial
}

func update(crc uint16, p []byte) uint16 {
	for _, v := range p {
		crc = table[byte(crc>>8)^v] ^ crc<<8
	}
	return crc
}

// Update returns the checksum of p.
func Update(p []byte) uint16 {
	return update(initial, p)
}
