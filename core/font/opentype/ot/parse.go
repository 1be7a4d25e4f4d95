package ot

import (
	"fmt"
)

// Code comment often will cite passage from the
// OpenType specification version 1.8.4;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// Parse reads the table directory of an OpenType font from a byte slice.
// The returned Font needs ongoing access to the font's byte-data after Parse
// returns. Its elements are assumed immutable while the Font remains in use.
func Parse(font []byte) (*Font, error) {
	src := binarySegm(font)
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	if len(src) < 12 {
		return nil, errFontFormat("offset table too short")
	}
	h := FontHeader{
		FontType:   src.U32(0),
		TableCount: src.U16(4),
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	otf := &Font{Header: h, tables: make(map[Tag]binarySegm)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		return nil, errFontFormat("table record entries")
	}
	for b := buf; len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			return nil, errFontFormat("invalid table offset")
		}
		if uint64(off)+uint64(size) > uint64(len(src)) {
			return nil, errFontFormat(fmt.Sprintf("table %s exceeds font data", tag))
		}
		otf.tables[tag] = src[off : off+size]
	}
	return otf, nil
}

// LoadTable copies the table for tag into buffer, following the table-loading
// protocol of shaping fonts: if buffer is nil, only the size of the table is
// returned. A size of 0 signals that the table is absent.
func (otf *Font) LoadTable(tag Tag, buffer []byte) int {
	t := otf.Table(tag)
	if buffer != nil {
		copy(buffer, t.Bytes())
	}
	return t.Size()
}
