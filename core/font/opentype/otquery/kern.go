package otquery

import (
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// Kerning returns the horizontal kerning of a glyph pair from the legacy
// table kern, in font units. Shapers fall back to it for fonts without a
// GPOS table.
//
// Only subtables of format 0 (ordered list of kerning pairs) are used. Vertical,
// cross-stream and minimum subtables are skipped.
//
//	uint16 version = 0
//	uint16 nTables
//	subtables:
//	  uint16 version, length, coverage
//	  uint16 nPairs, searchRange, entrySelector, rangeShift
//	  {uint16 left, uint16 right, FWORD value}[nPairs]
func Kerning(f *font.Font, left, right ot.GlyphIndex) int32 {
	return LoadKernTable(f).Kerning(left, right)
}

// KernTable is a view of table kern.
type KernTable struct {
	data ot.NavLocation
}

// LoadKernTable returns the kern table of a font. Fonts without table kern
// return a table without any kerning pairs.
func LoadKernTable(f *font.Font) KernTable {
	kern := ot.Location(f.LoadTable(ot.T("kern")))
	if kern.Size() < 4 || kern.U16(0) != 0 {
		return KernTable{}
	}
	return KernTable{data: kern}
}

// IsEmpty is true for fonts without usable kerning pairs.
func (kt KernTable) IsEmpty() bool {
	return kt.data == nil || kt.data.U16(2) == 0
}

// Kerning returns the kerning of a glyph pair, in font units.
func (kt KernTable) Kerning(left, right ot.GlyphIndex) int32 {
	if kt.IsEmpty() {
		return 0
	}
	var kerning int32
	at := 4
	for t := 0; t < int(kt.data.U16(2)); t++ {
		sub := kt.data.Slice(at, at+int(kt.data.U16(at+2)))
		at += sub.Size()
		if sub.Size() < 14 {
			break
		}
		coverage := sub.U16(4)
		format := coverage >> 8
		if format != 0 || coverage&0x1 == 0 || coverage&0x6 != 0 {
			continue
		}
		v, ok := findKernPair(sub.Slice(6, sub.Size()), left, right)
		if !ok {
			continue
		}
		if coverage&0x8 != 0 { // override
			kerning = v
		} else {
			kerning += v
		}
	}
	return kerning
}

func findKernPair(pairs ot.NavLocation, left, right ot.GlyphIndex) (int32, bool) {
	key := uint32(left)<<16 | uint32(right)
	lo, hi := 0, int(pairs.U16(0))
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		k := pairs.U32(8 + 6*m)
		switch {
		case k < key:
			lo = m + 1
		case k > key:
			hi = m
		default:
			return int32(int16(pairs.U16(12 + 6*m))), true
		}
	}
	return 0, false
}
