/*
Package ottest assembles binary OpenType structures for tests: layout tables
(GSUB, GPOS) with script, feature and lookup lists, lookup subtables, GDEF
tables, device tables and feature variations.

Builders work on plain uint16 glyph IDs and do not depend on package ot, so
tests of package ot may use them, too.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ottest

import "sort"

// Builder appends big-endian values to a byte slice.
type Builder struct {
	b []byte
}

// U16 appends 16 bit values.
func (bb *Builder) U16(v ...uint16) *Builder {
	for _, x := range v {
		bb.b = append(bb.b, byte(x>>8), byte(x))
	}
	return bb
}

// I16 appends signed 16 bit values.
func (bb *Builder) I16(v ...int16) *Builder {
	for _, x := range v {
		bb.U16(uint16(x))
	}
	return bb
}

// U32 appends 32 bit values.
func (bb *Builder) U32(v ...uint32) *Builder {
	for _, x := range v {
		bb.b = append(bb.b, byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
	}
	return bb
}

// Tag appends a 4-letter tag, padded with spaces.
func (bb *Builder) Tag(t string) *Builder {
	bb.b = append(bb.b, []byte((t + "    ")[:4])...)
	return bb
}

// Raw appends bytes.
func (bb *Builder) Raw(b []byte) *Builder {
	bb.b = append(bb.b, b...)
	return bb
}

// Size is the number of bytes written so far.
func (bb *Builder) Size() int {
	return len(bb.b)
}

// Bytes returns the bytes written so far.
func (bb *Builder) Bytes() []byte {
	return bb.b
}

// PutU16 patches a 16 bit value at byte position at.
func (bb *Builder) PutU16(at int, v uint16) {
	bb.b[at], bb.b[at+1] = byte(v>>8), byte(v)
}

// PutU32 patches a 32 bit value at byte position at.
func (bb *Builder) PutU32(at int, v uint32) {
	bb.b[at], bb.b[at+1], bb.b[at+2], bb.b[at+3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}

// Placeholder16 reserves n 16 bit slots and returns their start position.
func (bb *Builder) Placeholder16(n int) int {
	at := bb.Size()
	for i := 0; i < n; i++ {
		bb.U16(0)
	}
	return at
}

// Append16 appends sub, storing its offset relative to base into the 16 bit
// slot at position slot.
func (bb *Builder) Append16(slot, base int, sub []byte) {
	bb.PutU16(slot, uint16(bb.Size()-base))
	bb.Raw(sub)
}

// --- Common tables ---------------------------------------------------------

// Coverage creates a coverage table of format 1 for a set of glyphs.
// Glyphs are sorted, as required by the format.
func Coverage(glyphs ...uint16) []byte {
	g := append([]uint16(nil), glyphs...)
	sort.Slice(g, func(i, j int) bool { return g[i] < g[j] })
	bb := &Builder{}
	bb.U16(1, uint16(len(g))).U16(g...)
	return bb.Bytes()
}

// CoverageRanges creates a coverage table of format 2 from [start, end]
// pairs, assigning coverage indices consecutively.
func CoverageRanges(ranges ...[2]uint16) []byte {
	bb := &Builder{}
	bb.U16(2, uint16(len(ranges)))
	inx := uint16(0)
	for _, r := range ranges {
		bb.U16(r[0], r[1], inx)
		inx += r[1] - r[0] + 1
	}
	return bb.Bytes()
}

// ClassDefFormat1 creates a class definition table of format 1.
func ClassDefFormat1(start uint16, classes ...uint16) []byte {
	bb := &Builder{}
	bb.U16(1, start, uint16(len(classes))).U16(classes...)
	return bb.Bytes()
}

// ClassRange is a class range record with inclusive end.
type ClassRange struct {
	Start, End, Class uint16
}

// ClassDefFormat2 creates a class definition table of format 2.
func ClassDefFormat2(ranges ...ClassRange) []byte {
	bb := &Builder{}
	bb.U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		bb.U16(r.Start, r.End, r.Class)
	}
	return bb.Bytes()
}

// ClassDefFromMap creates a class definition table of format 2 from a map of
// glyph to class, merging consecutive glyphs of equal class into ranges.
func ClassDefFromMap(classes map[uint16]uint16) []byte {
	glyphs := make([]int, 0, len(classes))
	for g := range classes {
		glyphs = append(glyphs, int(g))
	}
	sort.Ints(glyphs)
	var ranges []ClassRange
	for _, g := range glyphs {
		c := classes[uint16(g)]
		if n := len(ranges); n > 0 && ranges[n-1].End+1 == uint16(g) && ranges[n-1].Class == c {
			ranges[n-1].End = uint16(g)
			continue
		}
		ranges = append(ranges, ClassRange{Start: uint16(g), End: uint16(g), Class: c})
	}
	return ClassDefFormat2(ranges...)
}

// Device creates a device table for sizes [start, end] with the given delta
// format (1, 2 or 3) and values, packing values most significant bits first.
func Device(start, end, format uint16, values []int) []byte {
	bits := map[uint16]int{1: 2, 2: 4, 3: 8}[format]
	bb := &Builder{}
	bb.U16(start, end, format)
	if bits == 0 {
		return bb.Bytes()
	}
	perWord := 16 / bits
	for i := 0; i < len(values); i += perWord {
		var w uint16
		for j := 0; j < perWord; j++ {
			var v int
			if i+j < len(values) {
				v = values[i+j]
			}
			w |= uint16(v&(1<<bits-1)) << (16 - bits*(j+1))
		}
		bb.U16(w)
	}
	return bb.Bytes()
}

// --- Feature variations ----------------------------------------------------

// Condition is an axis range condition in normalized coordinates.
type Condition struct {
	Axis     uint16
	Min, Max float64
}

// FeatureVariation is a record of a FeatureVariations table. It substitutes
// one feature by a feature table with the given lookups.
type FeatureVariation struct {
	Conditions   []Condition
	FeatureIndex uint16
	Lookups      []uint16
}

// F2Dot14 converts a float to 2.14 fixed-point.
func F2Dot14(f float64) int16 {
	v := f * (1 << 14)
	if v < 0 {
		v -= 0.5
	} else {
		v += 0.5
	}
	return int16(v)
}

// FeatureVariations creates a FeatureVariations table.
func FeatureVariations(recs ...FeatureVariation) []byte {
	bb := &Builder{}
	bb.U16(1, 0).U32(uint32(len(recs)))
	recStart := bb.Size()
	for range recs {
		bb.U32(0, 0) // patched below
	}
	for i, rec := range recs {
		setStart := bb.Size()
		bb.PutU32(recStart+8*i, uint32(setStart))
		bb.U16(uint16(len(rec.Conditions)))
		offsStart := bb.Size()
		for range rec.Conditions {
			bb.U32(0)
		}
		for j, c := range rec.Conditions {
			bb.PutU32(offsStart+4*j, uint32(bb.Size()-setStart))
			bb.U16(1, c.Axis).I16(F2Dot14(c.Min), F2Dot14(c.Max))
		}
		substStart := bb.Size()
		bb.PutU32(recStart+8*i+4, uint32(substStart))
		bb.U16(1, 0, 1)
		bb.U16(rec.FeatureIndex).U32(12) // feature table follows header and record
		bb.U16(0, uint16(len(rec.Lookups))).U16(rec.Lookups...)
	}
	return bb.Bytes()
}
