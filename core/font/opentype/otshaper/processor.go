package otshaper

import (
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// TextDirection is the writing direction of a text run.
type TextDirection uint8

// Text directions.
const (
	LeftToRight TextDirection = iota
	RightToLeft
)

func (d TextDirection) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// LookupInterpreter applies a single GSUB or GPOS lookup at the glyph the
// processor's locator currently points to. It reports if the lookup matched.
//
// An interpreter may change the glyph count during substitution. It may
// move the locator forward with JumpTo, e.g. past the glyphs a ligature has
// consumed.
type LookupInterpreter interface {
	ApplyLookup(p *TextProcessor, kind FeatureKind, lookup ot.Lookup) bool
}

// TextProcessor drives an album through discovery, substitution,
// positioning and wrap-up, applying the lookups of a pattern.
//
// A TextProcessor is not safe for concurrent use. Distinct processors may
// share a pattern.
type TextProcessor struct {
	pattern      *Pattern
	album        *Album
	locator      *Locator
	gdef         *ot.GDef
	glyphClasses ot.ClassDefinitions
	direction    TextDirection
	mode         TextMode
	interp       LookupInterpreter
	ppem         int
}

// NewTextProcessor creates and initializes a text processor.
func NewTextProcessor(pattern *Pattern, album *Album, direction TextDirection,
	mode TextMode, interp LookupInterpreter) *TextProcessor {
	//
	p := &TextProcessor{}
	p.Initialize(pattern, album, direction, mode, interp)
	return p
}

// Initialize binds a pattern and an album to the processor. interp may be
// nil, in which case lookups are not applied.
func (p *TextProcessor) Initialize(pattern *Pattern, album *Album, direction TextDirection,
	mode TextMode, interp LookupInterpreter) {
	//
	assert(pattern != nil, "text processor needs a pattern")
	assert(album != nil, "text processor needs an album")
	assert(pattern.Font != nil, "pattern has no font")
	p.pattern, p.album = pattern, album
	p.direction, p.mode = direction, mode
	p.interp = interp
	p.gdef = pattern.Font.GDef()
	p.glyphClasses = p.gdef.GlyphClasses()
	p.locator = NewLocator(album, p.gdef)
}

// SetPPEM sets the pixels per em used to hint positioning adjustments
// through device tables. 0 switches hinting off.
func (p *TextProcessor) SetPPEM(ppem int) {
	p.ppem = ppem
}

// PPEM returns the pixels per em for hinting, or 0.
func (p *TextProcessor) PPEM() int {
	return p.ppem
}

// DeviceAdjustment decodes a device table at the processor's PPEM and
// returns the adjustment in font units. A NULL device table or a PPEM of 0
// yields 0.
func (p *TextProcessor) DeviceAdjustment(device ot.NavLocation) int32 {
	if p.ppem <= 0 || device == nil || device.Size() == 0 {
		return 0
	}
	px := int32(ot.GetDevicePixels(device, p.ppem))
	return px * int32(p.pattern.Font.UnitsPerEm()) / int32(p.ppem)
}

// Album returns the album being processed.
func (p *TextProcessor) Album() *Album {
	return p.album
}

// Locator returns the locator the processor applies lookups with.
func (p *TextProcessor) Locator() *Locator {
	return p.locator
}

// GDef returns the font's GDEF table, or nil.
func (p *TextProcessor) GDef() *ot.GDef {
	return p.gdef
}

// Pattern returns the pattern being applied.
func (p *TextProcessor) Pattern() *Pattern {
	return p.pattern
}

// Font returns the font of the pattern.
func (p *TextProcessor) Font() *font.Font {
	return p.pattern.Font
}

// Direction returns the text direction.
func (p *TextProcessor) Direction() TextDirection {
	return p.direction
}

// LayoutTable returns the GSUB or GPOS table of the font, or nil.
func (p *TextProcessor) LayoutTable(kind FeatureKind) *ot.LayoutTable {
	if kind == Substitution {
		return p.pattern.Font.GSub()
	}
	return p.pattern.Font.GPos()
}

// GlyphTraits classifies a glyph by its GDEF glyph class. Fonts without
// glyph classes yield TraitNone.
func (p *TextProcessor) GlyphTraits(glyph ot.GlyphIndex) GlyphTraits {
	if p.glyphClasses.IsNull() {
		return TraitNone
	}
	switch ot.GlyphClass(p.glyphClasses.Lookup(glyph)) {
	case ot.BaseGlyph:
		return TraitBase
	case ot.LigatureGlyph:
		return TraitLigature
	case ot.MarkGlyph:
		return TraitMark
	case ot.ComponentGlyph:
		return TraitComponent
	}
	return TraitNone
}

// DiscoverGlyphs maps the album text to glyphs, one glyph per codepoint,
// and classifies them. The album is left open for substitution.
func (p *TextProcessor) DiscoverGlyphs() {
	assert(p.mode == Forward || p.mode == Backward, "unknown text mode %s", p.mode)
	a, f := p.album, p.pattern.Font
	text := a.Text()
	a.BeginFilling()
	cp := NewCodepoints(text, p.mode == Backward)
	for {
		before := cp.Index
		r, ok := cp.Next()
		if !ok {
			break
		}
		g := f.GlyphID(r)
		if p.mode == Forward {
			a.AddGlyph(g, before, cp.Index-before)
		} else {
			a.AddGlyph(g, cp.Index, before-cp.Index)
		}
		a.SetTraits(a.GlyphCount()-1, p.GlyphTraits(g))
	}
	tracer().Debugf("discovered %d glyphs in %s mode", a.GlyphCount(), p.mode)
}

// SubstituteGlyphs applies the GSUB feature units of the pattern and closes
// the album for filling.
func (p *TextProcessor) SubstituteGlyphs() {
	p.applyUnits(Substitution)
	p.album.EndFilling()
}

// PositionGlyphs sets default advances from the font, applies the GPOS
// feature units of the pattern and resolves mark attachments.
func (p *TextProcessor) PositionGlyphs() {
	a, f := p.album, p.pattern.Font
	a.BeginArranging()
	for i := 0; i < a.GlyphCount(); i++ {
		a.SetX(i, 0)
		a.SetY(i, 0)
		if a.Traits(i)&TraitPlaceholder != 0 {
			a.SetAdvance(i, 0)
		} else {
			a.SetAdvance(i, f.Advance(font.Horizontal, a.Glyph(i)))
		}
	}
	p.applyUnits(Positioning)
	p.resolveAttachments()
	a.EndArranging()
}

// WrapUp finalizes the album.
func (p *TextProcessor) WrapUp() {
	p.album.WrapUp()
}

// Process runs all phases in order.
func (p *TextProcessor) Process() {
	p.DiscoverGlyphs()
	p.SubstituteGlyphs()
	p.PositionGlyphs()
	p.WrapUp()
}

func (p *TextProcessor) applyUnits(kind FeatureKind) {
	table := p.LayoutTable(kind)
	units := p.pattern.Units(kind)
	if table == nil || p.interp == nil {
		if len(units) > 0 {
			tracer().Infof("%d %s feature units not applied: no table or interpreter", len(units), kind)
		}
		return
	}
	for _, unit := range units {
		for _, index := range unit.Lookups {
			p.applyLookup(kind, table.Lookup(int(index)), unit.Mask)
		}
	}
}

func (p *TextProcessor) applyLookup(kind FeatureKind, lookup ot.Lookup, mask FeatureMask) {
	loc := p.locator
	loc.Reset(0, p.album.GlyphCount())
	loc.SetFeatureMask(mask)
	loc.SetLookupFlag(lookup.Flag)
	if lookup.Flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		loc.SetMarkFilteringSet(lookup.MarkFilteringSet)
	}
	for loc.MoveNext() {
		p.interp.ApplyLookup(p, kind, lookup)
	}
}

// resolveAttachments turns the offsets of attached glyphs, which are
// relative to their base glyphs, into offsets relative to their own pen
// positions. Chains of attachments are resolved base first. Cursive
// attachments inherit the vertical offset only.
//
// Pen positions are visual: they advance from the leftmost glyph. An album
// in logical order of a right-to-left run is therefore penned from its last
// glyph, and its offsets stay valid once the album is put into visual order.
func (p *TextProcessor) resolveAttachments() {
	a := p.album
	n := a.GlyphCount()
	pen := make([]int32, n)
	var x int32
	for k := 0; k < n; k++ {
		i := k
		if p.ReversedToVisual() {
			i = n - 1 - k
		}
		pen[i] = x
		x += a.Advance(i)
	}
	const (
		unresolved = iota
		resolving
		resolved
	)
	state := make([]uint8, n)
	offsets := make([]Point, n)
	var resolve func(i int) Point
	resolve = func(i int) Point {
		switch state[i] {
		case resolved:
			return offsets[i]
		case resolving:
			tracer().Errorf("cyclic mark attachment at glyph %d", i)
			return a.Offset(i)
		}
		state[i] = resolving
		off := a.Offset(i)
		if base := a.Attachment(i); base != InvalidIndex {
			b := resolve(base)
			if !a.IsCursive(i) {
				off.X += b.X + pen[base] - pen[i]
			}
			off.Y += b.Y
		}
		state[i], offsets[i] = resolved, off
		return off
	}
	for i := 0; i < n; i++ {
		resolve(i)
	}
	for i := 0; i < n; i++ {
		if a.Attachment(i) != InvalidIndex {
			a.SetX(i, offsets[i].X)
			a.SetY(i, offsets[i].Y)
		}
	}
}

// ReversedToVisual is true if the album order runs against visual order,
// i.e. for a right-to-left run processed in logical order or a left-to-right
// run processed backward.
func (p *TextProcessor) ReversedToVisual() bool {
	return (p.direction == RightToLeft) != (p.mode == Backward)
}
