package otlayout

import (
	"math/bits"

	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
)

// --- Value records ---------------------------------------------------------

// valueRecord is a positioning adjustment in font units, device table
// adjustments included. Vertical advances are not supported.
type valueRecord struct {
	xPlacement, yPlacement, xAdvance int32
}

// Value format bits 0–3 select the value fields, bits 4–7 the device tables
// adjusting them.
const valueXPlaDevice uint16 = 0x0010

// valueSize is the size in bytes of a value record of a format.
func valueSize(format uint16) int {
	return 2 * bits.OnesCount16(format&0xFF)
}

// readValue reads a value record at byte at of rec. Device table offsets are
// relative to devBase, the start of the positioning subtable.
func (app *application) readValue(rec ot.NavLocation, at int, format uint16, devBase ot.NavLocation) valueRecord {
	var v valueRecord
	next := func() int16 {
		x := int16(rec.U16(at))
		at += 2
		return x
	}
	var yAdvance int16
	fields := []*int32{&v.xPlacement, &v.yPlacement, &v.xAdvance, nil}
	for k, field := range fields {
		if format&(1<<k) == 0 {
			continue
		}
		if field == nil {
			yAdvance = next()
			continue
		}
		*field = int32(next())
	}
	for k, field := range fields {
		if format&(valueXPlaDevice<<k) == 0 {
			continue
		}
		off := rec.U16(at)
		at += 2
		if field == nil || off == 0 {
			continue
		}
		*field += app.p.DeviceAdjustment(devBase.Slice(int(off), devBase.Size()))
	}
	if yAdvance != 0 {
		tracer().Debugf("GPOS: vertical advance %d ignored", yAdvance)
	}
	return v
}

// adjust applies a value record to glyph i.
func (app *application) adjust(i int, v valueRecord) {
	a := app.album
	off := a.Offset(i)
	a.SetX(i, off.X+v.xPlacement)
	a.SetY(i, off.Y+v.yPlacement)
	a.SetAdvance(i, a.Advance(i)+v.xAdvance)
}

// GPOS LookupType 1: Single Adjustment Positioning Subtable
//
// A single adjustment positioning subtable (SinglePos) is used to adjust the placement
// or advance of a single glyph, such as a subscript or superscript. Format 1 applies
// the same value record to every covered glyph, format 2 holds one value record per
// covered glyph.
func (app *application) gposSingle(sub ot.NavLocation) bool {
	i := app.loc.Index
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(app.album.Glyph(i))
	if !ok {
		return false
	}
	format := sub.U16(4)
	var v valueRecord
	switch sub.U16(0) {
	case 1:
		v = app.readValue(sub, 6, format, sub)
	case 2:
		if inx >= int(sub.U16(6)) {
			return false
		}
		v = app.readValue(sub, 8+inx*valueSize(format), format, sub)
	default:
		app.unsupported(ot.GPosLookupTypeSingle, sub)
		return false
	}
	tracer().Debugf("GPOS 1: adjust glyph %d by %v", i, v)
	app.adjust(i, v)
	return true
}

// GPOS LookupType 2: Pair Adjustment Positioning Subtable
//
// A pair adjustment positioning subtable (PairPos) is used to adjust the placement or
// advances of two glyphs in relation to one another, for instance, to specify kerning
// data for pairs of glyphs. Format 1 lists pairs of individual glyphs, format 2 adjusts
// pairs of glyph classes.
//
// The second glyph of a pair is the next glyph the lookup does not ignore. If the
// pair adjusts the second glyph, processing continues after it.
func (app *application) gposPair(sub ot.NavLocation) bool {
	i := app.loc.Index
	a := app.album
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(a.Glyph(i))
	if !ok {
		return false
	}
	j := app.loc.GetAfter(i)
	if j == otshaper.InvalidIndex {
		return false
	}
	f1, f2 := sub.U16(4), sub.U16(6)
	size1, size2 := valueSize(f1), valueSize(f2)
	var rec ot.NavLocation
	switch sub.U16(0) {
	case 1:
		if inx >= int(sub.U16(8)) {
			return false
		}
		set := ot.Link16(sub, 10+2*inx)
		rec = findPair(set, a.Glyph(j), 2+size1+size2)
		if rec == nil {
			return false
		}
		rec = rec.Slice(2, rec.Size())
	case 2:
		c1 := ot.ParseClassDefinitions(ot.Link16(sub, 8)).Lookup(a.Glyph(i))
		c2 := ot.ParseClassDefinitions(ot.Link16(sub, 10)).Lookup(a.Glyph(j))
		c1Count, c2Count := int(sub.U16(12)), int(sub.U16(14))
		if c1 >= c1Count || c2 >= c2Count {
			return false
		}
		at := 16 + (c1*c2Count+c2)*(size1+size2)
		rec = sub.Slice(at, at+size1+size2)
	default:
		app.unsupported(ot.GPosLookupTypePair, sub)
		return false
	}
	v1 := app.readValue(rec, 0, f1, sub)
	v2 := app.readValue(rec, size1, f2, sub)
	tracer().Debugf("GPOS 2/%d: adjust pair (%d,%d) by %v, %v", sub.U16(0), i, j, v1, v2)
	app.adjust(i, v1)
	if f2 != 0 {
		app.adjust(j, v2)
		app.loc.JumpTo(j + 1)
	}
	return true
}

// findPair searches a PairSet for the record of a second glyph. Records are
// sorted by glyph.
func findPair(set ot.NavLocation, second ot.GlyphIndex, recSize int) ot.NavLocation {
	lo, hi := 0, int(set.U16(0))
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		g := ot.GlyphIndex(set.U16(2 + m*recSize))
		switch {
		case g < second:
			lo = m + 1
		case g > second:
			hi = m
		default:
			at := 2 + m*recSize
			return set.Slice(at, at+recSize)
		}
	}
	return nil
}

// --- Cursive attachment ----------------------------------------------------

// GPOS LookupType 3: Cursive Attachment Positioning Subtable
//
// The CursivePos subtable connects the exit anchor of a glyph with the entry
// anchor of the following glyph:
//
//	uint16          format = 1
//	Offset16        coverageOffset
//	uint16          entryExitCount
//	EntryExitRecord entryExitRecords[entryExitCount]   |  entry and exit anchor offsets
//
// The lookup is applied at the glyph with the entry anchor. Advances are
// adjusted in writing direction. Across it, the glyph after the connection
// is the child following its parent, unless the lookup flag RIGHT_TO_LEFT makes
// the last glyph of a chain the one on the baseline.
func (app *application) gposCursive(sub ot.NavLocation) bool {
	j := app.loc.Index
	a := app.album
	entry := app.entryExit(sub, j, 0)
	if entry.Size() == 0 {
		return false
	}
	i := app.loc.GetBefore(j)
	if i == otshaper.InvalidIndex {
		return false
	}
	exit := app.entryExit(sub, i, 2)
	if exit.Size() == 0 {
		return false
	}
	entryX, entryY := app.anchor(entry)
	exitX, exitY := app.anchor(exit)
	if app.p.ReversedToVisual() {
		d := exitX + a.Offset(i).X
		a.SetAdvance(i, a.Advance(i)-d)
		a.SetX(i, a.Offset(i).X-d)
		a.SetAdvance(j, entryX+a.Offset(j).X)
	} else {
		a.SetAdvance(i, exitX+a.Offset(i).X)
		d := entryX + a.Offset(j).X
		a.SetAdvance(j, a.Advance(j)-d)
		a.SetX(j, a.Offset(j).X-d)
	}
	child, parent, y := i, j, entryY-exitY
	if app.loc.LookupFlag()&ot.LOOKUP_FLAG_RIGHT_TO_LEFT == 0 {
		child, parent, y = j, i, -y
	}
	if a.Attachment(parent) == child && a.IsCursive(parent) {
		a.SetCursiveAttachment(parent, otshaper.InvalidIndex)
		a.SetY(parent, 0)
	}
	tracer().Debugf("GPOS 3: glyph %d joins glyph %d", child, parent)
	a.SetY(child, y)
	a.SetCursiveAttachment(child, parent)
	return true
}

// entryExit returns the entry (at = 0) or exit (at = 2) anchor of glyph i.
func (app *application) entryExit(sub ot.NavLocation, i, at int) ot.NavLocation {
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(app.album.Glyph(i))
	if !ok || inx >= int(sub.U16(4)) {
		return ot.Location(nil)
	}
	return ot.Link16(sub, 6+4*inx+at)
}

// --- Mark attachment -------------------------------------------------------

// anchor reads an anchor table. Format 2 anchors are treated as format 1,
// format 3 anchors add device table adjustments.
func (app *application) anchor(loc ot.NavLocation) (int32, int32) {
	x, y := int32(int16(loc.U16(2))), int32(int16(loc.U16(4)))
	if loc.U16(0) == 3 {
		x += app.p.DeviceAdjustment(ot.Link16(loc, 6))
		y += app.p.DeviceAdjustment(ot.Link16(loc, 8))
	}
	return x, y
}

// GPOS LookupType 4: Mark-to-Base Attachment Positioning Subtable
//
// The MarkToBase attachment (MarkBasePos) subtable is used to position combining mark
// glyphs with respect to base glyphs. The mark is attached to the closest preceding
// glyph which is not a mark, by aligning the mark's anchor with the base's anchor for
// the mark's class.
func (app *application) gposMarkToBase(sub ot.NavLocation) bool {
	i := app.loc.Index
	a := app.album
	base := i - 1
	for ; base >= 0; base-- {
		if a.Traits(base)&(otshaper.TraitMark|otshaper.TraitPlaceholder) == 0 {
			break
		}
	}
	if base < 0 {
		return false
	}
	return app.attachMark(sub, i, base)
}

// GPOS LookupType 5: Mark-to-Ligature Attachment Positioning Subtable
//
// The MarkToLigature attachment (MarkLigPos) subtable is used to position combining
// mark glyphs with respect to ligature base glyphs. Each ligature component has its
// own anchors:
//
//	uint16   format = 1
//	Offset16 markCoverageOffset
//	Offset16 ligatureCoverageOffset
//	uint16   markClassCount
//	Offset16 markArrayOffset
//	Offset16 ligatureArrayOffset
//
// A mark belongs to the component of the ligature it follows: marks between
// the ligature and its first placeholder attach to component 0, and so on.
// Marks following the whole ligature attach to its last component.
func (app *application) gposMarkToLigature(sub ot.NavLocation) bool {
	i := app.loc.Index
	a := app.album
	lig := i - 1
	for ; lig >= 0; lig-- {
		if a.Traits(lig)&(otshaper.TraitMark|otshaper.TraitPlaceholder) == 0 {
			break
		}
	}
	if lig < 0 {
		return false
	}
	markInx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(a.Glyph(i))
	if !ok {
		return false
	}
	ligInx, ok := ot.ParseCoverage(ot.Link16(sub, 4)).Match(a.Glyph(lig))
	if !ok {
		return false
	}
	classCount := int(sub.U16(6))
	marks, ligs := ot.Link16(sub, 8), ot.Link16(sub, 10)
	if markInx >= int(marks.U16(0)) || ligInx >= int(ligs.U16(0)) {
		return false
	}
	class := int(marks.U16(2 + 4*markInx))
	attach := ot.Link16(ligs, 2+2*ligInx)
	compCount := int(attach.U16(0))
	if class >= classCount || compCount == 0 {
		return false
	}
	comp := 0
	for j := lig + 1; j < i; j++ {
		if assoc := a.Association(j); a.Traits(j)&otshaper.TraitPlaceholder != 0 && len(assoc) == 1 && assoc[0] == lig {
			comp++
		}
	}
	comp = min(comp, compCount-1)
	markAnchor := ot.Link16(marks, 4+4*markInx)
	ligAnchor := ot.Link16(attach, 2+2*(comp*classCount+class))
	if markAnchor.Size() == 0 || ligAnchor.Size() == 0 {
		return false
	}
	lx, ly := app.anchor(ligAnchor)
	mx, my := app.anchor(markAnchor)
	tracer().Debugf("GPOS 5: mark %d to component %d of ligature %d", i, comp, lig)
	a.SetX(i, lx-mx)
	a.SetY(i, ly-my)
	a.SetAttachment(i, lig)
	return true
}

// GPOS LookupType 6: Mark-to-Mark Attachment Positioning Subtable
//
// The MarkToMark attachment (MarkMarkPos) subtable is identical in form to the
// MarkToBase attachment subtable, although its function is different. Mark-to-mark
// attachment defines the position of one mark relative to the position of another
// mark, which has to be the preceding glyph the lookup does not ignore.
func (app *application) gposMarkToMark(sub ot.NavLocation) bool {
	i := app.loc.Index
	mark2 := app.loc.GetBefore(i)
	if mark2 == otshaper.InvalidIndex || app.album.Traits(mark2)&otshaper.TraitMark == 0 {
		return false
	}
	return app.attachMark(sub, i, mark2)
}

// attachMark positions mark i relative to glyph base. The subtable layout is
// shared by types 4 and 6:
//
//	uint16   format = 1
//	Offset16 markCoverageOffset
//	Offset16 baseCoverageOffset
//	uint16   markClassCount
//	Offset16 markArrayOffset
//	Offset16 baseArrayOffset
func (app *application) attachMark(sub ot.NavLocation, i, base int) bool {
	a := app.album
	markInx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(a.Glyph(i))
	if !ok {
		return false
	}
	baseInx, ok := ot.ParseCoverage(ot.Link16(sub, 4)).Match(a.Glyph(base))
	if !ok {
		return false
	}
	classCount := int(sub.U16(6))
	marks, bases := ot.Link16(sub, 8), ot.Link16(sub, 10)
	if markInx >= int(marks.U16(0)) || baseInx >= int(bases.U16(0)) {
		return false
	}
	class := int(marks.U16(2 + 4*markInx))
	if class >= classCount {
		return false
	}
	markAnchor := ot.Link16(marks, 4+4*markInx)
	baseAnchor := ot.Link16(bases, 2+2*(baseInx*classCount+class))
	if markAnchor.Size() == 0 || baseAnchor.Size() == 0 {
		return false
	}
	bx, by := app.anchor(baseAnchor)
	mx, my := app.anchor(markAnchor)
	tracer().Debugf("GPOS mark attachment: glyph %d to %d, class %d", i, base, class)
	a.SetX(i, bx-mx)
	a.SetY(i, by-my)
	a.SetAttachment(i, base)
	return true
}
