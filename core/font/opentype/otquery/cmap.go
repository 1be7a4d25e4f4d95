package otquery

import (
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// cmapSubtable is a character-to-glyph mapping of table cmap.
//
// We only support the following platform/encoding/format combinations:
//
//	0 (Unicode)  3    4   Unicode BMP
//	0 (Unicode)  4    12  Unicode full
//	3 (Win)      1    4   Unicode BMP
//	3 (Win)      10   12  Unicode full
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/cmap
type cmapSubtable struct {
	format uint16
	data   ot.NavLocation
}

// This value is arbitrary, but defends against parsing malicious font
// files. For reference, Adobe's SourceHanSansSC-Regular.otf has 65535
// glyphs and a format-12 cmap table with 16498 segments.
const maxCMapSegments = 20000

func supportedCMapFormat(format, pid, psid uint16) bool {
	return (pid == 0 && psid == 3 && format == 4) ||
		(pid == 0 && psid == 4 && format == 12) ||
		(pid == 3 && psid == 1 && format == 4) ||
		(pid == 3 && psid == 10 && format == 12)
}

// parseCMap selects the best supported subtable of a cmap table. Full
// Unicode repertoires are preferred over the BMP.
func parseCMap(b []byte) (cmapSubtable, error) {
	table := ot.Location(b)
	var best cmapSubtable
	for i := 0; i < int(table.U16(2)); i++ {
		rec := table.Slice(4+8*i, 12+8*i)
		sub := table.Slice(int(rec.U32(4)), table.Size())
		format := sub.U16(0)
		if !supportedCMapFormat(format, rec.U16(0), rec.U16(2)) {
			continue
		}
		if best.data == nil || format > best.format {
			best = cmapSubtable{format: format, data: sub}
		}
	}
	if best.data == nil {
		return best, core.Error(core.EINVALID, "no supported cmap subtable")
	}
	return best, nil
}

// codepoint finds the first code-point mapping to a glyph.
func (cmap cmapSubtable) codepoint(gid ot.GlyphIndex) rune {
	if cmap.format == 12 {
		for _, grp := range cmap.groups() {
			if g := uint32(gid); g >= grp.delta && g-grp.delta <= grp.end-grp.start {
				return rune(grp.start + g - grp.delta)
			}
		}
		return 0
	}
	for _, seg := range cmap.segments() {
		for c := uint32(seg.start); c <= uint32(seg.end) && c < 0xffff; c++ {
			if cmap.segmentGlyph(seg, uint16(c)) == gid {
				return rune(c)
			}
		}
	}
	return 0
}

// Format 4: Segment mapping to delta values.
//
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF). Four parallel
// arrays describe the segments, followed by a variable-length array of glyph IDs.
type cmapEntry16 struct {
	end, start, delta, offset uint16
	offsetAt                  int // position of the range offset entry
}

func (cmap cmapSubtable) segments() []cmapEntry16 {
	segCount := int(cmap.data.U16(6)) / 2
	if segCount > maxCMapSegments {
		return nil
	}
	entries := make([]cmapEntry16, segCount)
	for i := range entries {
		e := &entries[i]
		e.end = cmap.data.U16(14 + 2*i)
		e.start = cmap.data.U16(16 + 2*segCount + 2*i)
		e.delta = cmap.data.U16(16 + 4*segCount + 2*i)
		e.offsetAt = 16 + 6*segCount + 2*i
		e.offset = cmap.data.U16(e.offsetAt)
	}
	return entries
}

func (cmap cmapSubtable) segmentGlyph(seg cmapEntry16, c uint16) ot.GlyphIndex {
	if seg.offset == 0 {
		return ot.GlyphIndex(c + seg.delta)
	}
	g := cmap.data.U16(seg.offsetAt + int(seg.offset) + 2*int(c-seg.start))
	if g == 0 {
		return 0
	}
	return ot.GlyphIndex(g + seg.delta)
}

// Format 12: Segmented coverage, groups of sequential code-points.
type cmapEntry32 struct {
	start, end, delta uint32
}

func (cmap cmapSubtable) groups() []cmapEntry32 {
	n := int(cmap.data.U32(12))
	if n > maxCMapSegments {
		return nil
	}
	entries := make([]cmapEntry32, n)
	for i := range entries {
		entries[i] = cmapEntry32{
			start: cmap.data.U32(16 + 12*i),
			end:   cmap.data.U32(20 + 12*i),
			delta: cmap.data.U32(24 + 12*i),
		}
	}
	return entries
}
