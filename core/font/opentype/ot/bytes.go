package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Locations, i.e. byte segments/slices ----------------------------------

// NavLocation is a position at a byte within a font's binary data.
// It represents the start of a segment/slice of binary data.
//
// If somewhere along a chain of navigation calls an error occured, the finally
// resulting NavLocation will be of size 0.
type NavLocation interface {
	Size() int                  // size in bytes
	Bytes() []byte              // return as a byte slice
	Slice(int, int) NavLocation // return a sub-segment of this location
	U16(int) uint16             // convenience access to 16 bit data at byte index
	U32(int) uint32             // convenience access to 32 bit data at byte index
	Glyphs() []GlyphIndex       // convenience conversion to slice of glyphs
}

// Location wraps a byte slice as a NavLocation.
func Location(b []byte) NavLocation {
	return binarySegm(b)
}

// binarySegm is a segment of byte data.
// It implements the NavLocation interface. We use it throughout this module to
// navigate the font's binary data.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// Slice returns a sub-segment of this location. Bounds are clipped.
func (b binarySegm) Slice(from int, to int) NavLocation {
	if from < 0 {
		from = 0
	}
	if to > len(b) {
		to = len(b)
	}
	if from >= to {
		return binarySegm{}
	}
	return b[from:to]
}

func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// Glyphs interprets the location as a sequence of 16 bit glyph IDs.
// A trailing odd byte is ignored.
func (b binarySegm) Glyphs() []GlyphIndex {
	glyphs := make([]GlyphIndex, len(b)/2)
	for i := range glyphs {
		glyphs[i] = GlyphIndex(u16(b[2*i:]))
	}
	return glyphs
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Links -----------------------------------------------------------------

// link16 follows the 16 bit offset stored at byte index at, relative to base.
// A NULL offset or an offset out of bounds yields an empty segment.
func link16(base binarySegm, at int) binarySegm {
	off, err := base.u16(at)
	if err != nil || off == 0 || int(off) >= len(base) {
		return binarySegm{}
	}
	return base[off:]
}

// link32 follows the 32 bit offset stored at byte index at, relative to base.
func link32(base binarySegm, at int) binarySegm {
	off, err := base.u32(at)
	if err != nil || off == 0 || uint64(off) >= uint64(len(base)) {
		return binarySegm{}
	}
	return base[off:]
}

// jump16 follows a 16 bit offset given as a value, relative to base.
func jump16(base binarySegm, off uint16) binarySegm {
	if off == 0 || int(off) >= len(base) {
		return binarySegm{}
	}
	return base[off:]
}

// Link16 follows the 16 bit offset stored at byte index at of loc. Lookup
// interpreters use it to navigate subtables. NULL offsets and offsets out of
// bounds result in an empty location.
func Link16(loc NavLocation, at int) NavLocation {
	if loc == nil {
		return binarySegm{}
	}
	return link16(binarySegm(loc.Bytes()), at)
}

// Link32 follows the 32 bit offset stored at byte index at of loc.
func Link32(loc NavLocation, at int) NavLocation {
	if loc == nil {
		return binarySegm{}
	}
	return link32(binarySegm(loc.Bytes()), at)
}

// --- Arrays ----------------------------------------------------------------

// array is a type for a linear sequence of equal-sized records.
type array struct {
	recordSize int
	length     int
	loc        binarySegm
}

// viewArray creates an array of n records of size recordSize, starting at byte
// offset within b. The length is clipped to the number of complete records
// available.
func viewArray(b binarySegm, offset, n, recordSize int) array {
	if offset < 0 || offset > len(b) || recordSize <= 0 {
		return array{recordSize: recordSize}
	}
	loc := b[offset:]
	if avail := len(loc) / recordSize; n > avail {
		tracer().Debugf("array of %d records truncated to %d", n, avail)
		n = avail
	}
	return array{recordSize: recordSize, length: n, loc: loc}
}

// Len returns the number of entries in the array.
func (a array) Len() int {
	return a.length
}

// Get returns item #i as a byte location, or an empty location if i is out of
// range.
func (a array) Get(i int) binarySegm {
	if i < 0 || i >= a.length {
		return binarySegm{}
	}
	return a.loc[i*a.recordSize : (i+1)*a.recordSize]
}

// U16 returns the first 16 bits of item #i.
func (a array) U16(i int) uint16 {
	return a.Get(i).U16(0)
}
