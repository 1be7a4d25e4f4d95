package otquery

import (
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"golang.org/x/image/font/sfnt"
)

// --- Font and glyph metrics ------------------------------------------------

// FontMetricsInfo contains selected metric information for a font.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // ad-hoc units per em
	Ascent, Descent sfnt.Units // ascender and descender
	MaxAdvance      sfnt.Units // maximum advance width value in 'hmtx' table
	LineGap         sfnt.Units // typographic line gap
}

// GlyphMetricsInfo contains all the metric information for a glyph.
type GlyphMetricsInfo struct {
	Advance  sfnt.Units  // advance width
	LSB, RSB sfnt.Units  // side bearings
	BBox     BoundingBox // bounding box
}

// BoundingBox describes the bounding box of a glyph.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// Empty is a predicate: has this box a zero area?
func (bbox BoundingBox) Empty() bool {
	return bbox.MaxX-bbox.MinX == 0 || bbox.MaxY-bbox.MinY == 0
}

// Dx is the horizontal extent of this box.
func (bbox BoundingBox) Dx() sfnt.Units {
	return bbox.MaxX - bbox.MinX
}

// Dy is the vertical extent of this box.
func (bbox BoundingBox) Dy() sfnt.Units {
	return bbox.MaxY - bbox.MinY
}

// FontMetrics retrieves selected metrics of a font.
//
// Ascent and descent are taken from table hhea. If hhea leaves them zero,
// the typographic values of table OS/2 are used.
func FontMetrics(f *font.Font) FontMetricsInfo {
	metrics := FontMetricsInfo{UnitsPerEm: sfnt.Units(f.UnitsPerEm())}
	hhea := ot.Location(f.LoadTable(ot.T("hhea")))
	metrics.Ascent = units(hhea, 4)
	metrics.Descent = units(hhea, 6)
	metrics.LineGap = units(hhea, 8)
	metrics.MaxAdvance = sfnt.Units(hhea.U16(10))
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := ot.Location(f.LoadTable(ot.T("OS/2"))); os2.Size() >= 72 {
			if a := units(os2, 68); a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			if d := units(os2, 70); d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
		}
	}
	return metrics
}

// --- Glyph Routines --------------------------------------------------------

// GlyphIndex returns the glyph index for a give code-point.
// If the code-point cannot be found, 0 is returned.
//
// From the OpenType specification: character codes that do not correspond to any glyph in
// the font should be mapped to glyph index 0. The glyph at this location must be a special
// glyph representing a missing character, commonly known as '.notdef'.
func GlyphIndex(f *font.Font, codepoint rune) ot.GlyphIndex {
	return f.GlyphID(codepoint)
}

// CodePointForGlyph returns the code-point for a given glyph index.
//
// This is an inefficient operation: all segments of the font's cmap table
// are checked sequentially for code-points producing the given glyph.
// If the glyph index does not correspond to a code-point, 0 is returned.
func CodePointForGlyph(f *font.Font, gid ot.GlyphIndex) rune {
	if gid == 0 {
		return 0
	}
	cmap, err := parseCMap(f.LoadTable(ot.T("cmap")))
	if err != nil {
		tracer().Infof("font %s: %v", f.Name, err)
		return 0
	}
	return cmap.codepoint(gid)
}

// GlyphMetrics retrieves metrics for a given glyph.
//
// Bounding boxes are read from table glyf, thus are empty for fonts with
// CFF outlines.
func GlyphMetrics(f *font.Font, gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	//
	// table hmtx: advance width and left side bearing
	hmtx := ot.Location(f.LoadTable(ot.T("hmtx")))
	hhea := ot.Location(f.LoadTable(ot.T("hhea")))
	mtxcnt := int(hhea.U16(34))
	if mtxcnt == 0 {
		return metrics
	}
	if int(gid) < mtxcnt {
		metrics.Advance = sfnt.Units(hmtx.U16(4 * int(gid)))
		metrics.LSB = units(hmtx, 4*int(gid)+2)
	} else { // repetition of last advance in hmtx
		metrics.Advance = sfnt.Units(hmtx.U16(4 * (mtxcnt - 1)))
		metrics.LSB = units(hmtx, 4*mtxcnt+2*(int(gid)-mtxcnt))
	}
	//
	// table glyf: bounding box
	glyf := ot.Location(f.LoadTable(ot.T("glyf")))
	if loc, ok := glyphLocation(f, gid); ok && glyf.Size() > 0 {
		b := glyf.Slice(loc, glyf.Size())
		metrics.BBox = BoundingBox{
			MinX: units(b, 2),
			MinY: units(b, 4),
			MaxX: units(b, 6),
			MaxY: units(b, 8),
		}
	}
	// RSB calculation: rsb = aw - (lsb + xMax - xMin)
	// If a glyph has no contours, xMax/xMin are not defined. The left side bearing indicated
	// in the 'hmtx' table for such glyphs should be zero.
	if !metrics.BBox.Empty() { // leave RSB for empty bboxes
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// glyphLocation returns the offset of a glyph in table glyf. Glyphs without
// outlines have no location.
func glyphLocation(f *font.Font, gid ot.GlyphIndex) (int, bool) {
	loca := ot.Location(f.LoadTable(ot.T("loca")))
	maxp := ot.Location(f.LoadTable(ot.T("maxp")))
	if int(gid) >= int(maxp.U16(4)) {
		return 0, false
	}
	var from, to int
	head := ot.Location(f.LoadTable(ot.T("head")))
	if head.U16(50) == 0 { // short offsets, divided by 2
		from, to = 2*int(loca.U16(2*int(gid))), 2*int(loca.U16(2*int(gid)+2))
	} else {
		from, to = int(loca.U32(4*int(gid))), int(loca.U32(4*int(gid)+4))
	}
	return from, to > from
}

// --- Helpers ----------------------------------------------------------

func units(loc ot.NavLocation, at int) sfnt.Units {
	return sfnt.Units(int16(loc.U16(at)))
}
