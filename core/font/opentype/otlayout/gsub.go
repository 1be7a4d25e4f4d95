package otlayout

import (
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
)

// setGlyph substitutes glyph i and re-classifies it.
func (app *application) setGlyph(i int, g ot.GlyphIndex) {
	app.album.SetGlyph(i, g)
	app.album.SetTraits(i, app.p.GlyphTraits(g))
}

// GSUB LookupType 1: Single Substitution Subtable
//
// Single substitution (SingleSubst) subtables tell a client to replace a single glyph
// with another glyph. The subtables can be either of two formats. Both formats require
// two distinct sets of glyph indices: one that defines input glyphs (specified in the
// Coverage table), and one that defines the output glyphs.
//
// Format 1 calculates the output glyph by adding a constant delta (modulo 65536)
// to the input glyph. Format 2 provides an array of output glyphs, indexed by
// the coverage index of the input glyph.
func (app *application) gsubSingle(sub ot.NavLocation) bool {
	i := app.loc.Index
	g := app.album.Glyph(i)
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(g)
	if !ok {
		return false
	}
	var subst ot.GlyphIndex
	switch sub.U16(0) {
	case 1:
		subst = ot.GlyphIndex(uint16(g) + sub.U16(4))
	case 2:
		if inx >= int(sub.U16(4)) {
			return false
		}
		subst = ot.GlyphIndex(sub.U16(6 + 2*inx))
	default:
		app.unsupported(ot.GSubLookupTypeSingle, sub)
		return false
	}
	tracer().Debugf("GSUB 1/%d: subst %d for %d", sub.U16(0), subst, g)
	app.setGlyph(i, subst)
	return true
}

// sequence returns the glyph sequence for coverage index inx of a subtable
// holding an array of offsets to sequences at byte 4 (count) and 6 (offsets).
// Multiple and alternate substitutions share this layout.
func sequence(sub ot.NavLocation, inx int) []ot.GlyphIndex {
	if inx >= int(sub.U16(4)) {
		return nil
	}
	seq := ot.Link16(sub, 6+2*inx)
	n := int(seq.U16(0))
	return seq.Slice(2, 2+2*n).Glyphs()
}

// GSUB LookupType 2: Multiple Substitution Subtable
//
// A Multiple Substitution (MultipleSubst) subtable replaces a single glyph with more
// than one glyph, as when multiple glyphs replace a single ligature.
//
// The first output glyph keeps the characters of the input glyph; further
// output glyphs cover no characters and are associated to the first one.
func (app *application) gsubMultiple(sub ot.NavLocation) bool {
	i := app.loc.Index
	g := app.album.Glyph(i)
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(g)
	if !ok {
		return false
	}
	glyphs := sequence(sub, inx)
	if len(glyphs) == 0 {
		tracer().Infof("GSUB 2: empty sequence for glyph %d ignored", g)
		return false
	}
	tracer().Debugf("GSUB 2: subst %v for %d", glyphs, g)
	app.album.ReplaceGlyphs(i, 1, glyphs)
	for k, out := range glyphs {
		app.album.SetTraits(i+k, app.p.GlyphTraits(out))
	}
	app.loc.JumpTo(i + len(glyphs))
	return true
}

// GSUB LookupType 3: Alternate Substitution Subtable
//
// An Alternate Substitution (AlternateSubst) subtable identifies any number of aesthetic
// alternatives from which a user can choose a glyph variant to replace the input glyph.
// For example, if a font contains four variants of the ampersand symbol, the 'cmap' table
// will specify the index of one of the four glyphs as the default glyph index, and an
// AlternateSubst subtable will list the indices of the other three glyphs as alternatives.
//
// The interpreter's Alternate field selects the alternate.
func (app *application) gsubAlternate(sub ot.NavLocation) bool {
	i := app.loc.Index
	g := app.album.Glyph(i)
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(g)
	if !ok {
		return false
	}
	alts := sequence(sub, inx)
	alt := app.ip.Alternate
	if alt < 0 {
		alt = len(alts) - 1
	}
	if alt < 0 || alt >= len(alts) {
		return false
	}
	tracer().Debugf("GSUB 3: subst %d for %d", alts[alt], g)
	app.setGlyph(i, alts[alt])
	return true
}

// GSUB LookupType 4: Ligature Substitution Subtable
//
// A Ligature Substitution (LigatureSubst) subtable identifies ligature substitutions where
// a single glyph replaces multiple glyphs. The Coverage table specifies only the index
// of the first glyph component of each ligature set. Ligatures of a set are tried in
// order, the first one matching wins.
//
// Ligature table (glyph components for one ligature):
//
//	uint16 |  ligatureGlyph                       |  glyph ID of ligature to substitute
//	uint16 |  componentCount                      |  Number of components in the ligature
//	uint16 |  componentGlyphIDs[componentCount-1] |  Array of component glyph IDs
//
// Components are searched with the locator, thus skipping glyphs the lookup
// ignores. The ligature glyph replaces the first component and covers the
// characters of all components. The other components become placeholders,
// associated to the ligature, and vanish when the album is wrapped up.
// Skipped glyphs between the components join the ligature's cluster: their
// characters are taken over by the ligature and they are left with an empty
// range at its start.
func (app *application) gsubLigature(sub ot.NavLocation) bool {
	i := app.loc.Index
	a := app.album
	inx, ok := ot.ParseCoverage(ot.Link16(sub, 2)).Match(a.Glyph(i))
	if !ok || inx >= int(sub.U16(4)) {
		return false
	}
	set := ot.Link16(sub, 6+2*inx)
	var components []int
	for l := 0; l < int(set.U16(0)); l++ {
		lig := ot.Link16(set, 2+2*l)
		n := int(lig.U16(2))
		if n == 0 {
			continue
		}
		components = app.matchComponents(lig.Slice(4, 4+2*(n-1)).Glyphs(), n-1, components[:0])
		if components == nil {
			continue
		}
		ligature := ot.GlyphIndex(lig.U16(0))
		tracer().Debugf("GSUB 4: ligature %d for %d + %v", ligature, a.Glyph(i), components)
		chars := a.CharRange(i)
		for _, c := range components {
			chars = chars.Union(a.CharRange(c))
			a.SetTraits(c, otshaper.TraitPlaceholder)
			a.SetSingleAssociation(c, i)
		}
		last := i
		if len(components) > 0 {
			last = components[len(components)-1]
		}
		var skipped []int
		for j := i + 1; j < last; j++ {
			if a.Traits(j)&otshaper.TraitPlaceholder == 0 {
				chars = chars.Union(a.CharRange(j))
				skipped = append(skipped, j)
			}
		}
		for _, j := range skipped {
			a.SetCharRange(j, otshaper.CharRange{Start: chars.Start})
		}
		app.setGlyph(i, ligature)
		a.SetCharRange(i, chars)
		return true
	}
	return false
}

// matchComponents finds the glyphs following the current one which match
// the components of a ligature. It returns nil if the ligature does not match.
func (app *application) matchComponents(glyphs []ot.GlyphIndex, n int, components []int) []int {
	if len(glyphs) != n {
		return nil
	}
	pos := app.loc.Index
	for _, g := range glyphs {
		if pos = app.loc.GetAfter(pos); pos == otshaper.InvalidIndex || app.album.Glyph(pos) != g {
			return nil
		}
		components = append(components, pos)
	}
	if components == nil {
		components = []int{}
	}
	return components
}
