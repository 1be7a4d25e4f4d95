package font

import (
	"sync"
	"sync/atomic"

	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// Layout selects the direction of glyph advances.
type Layout int

// Font layouts
const (
	Horizontal Layout = iota
	Vertical
)

func (l Layout) String() string {
	if l == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Protocol is the set of capabilities a font has to offer to be usable for
// shaping. LoadTable and GlyphIDForCodepoint are required.
//
// LoadTable copies the table for tag into buffer and returns its length.
// If buffer is nil, only the length is returned. A length of 0 signals that
// the font does not contain the table.
type Protocol struct {
	LoadTable           func(tag ot.Tag, buffer []byte) int
	GlyphIDForCodepoint func(r rune) ot.GlyphIndex
	AdvanceForGlyph     func(layout Layout, glyph ot.GlyphIndex) int32 // optional
	Finalize            func()                                         // optional
}

// TableLoader delivers raw table bytes, following the protocol of
// Protocol.LoadTable.
type TableLoader interface {
	LoadTable(tag ot.Tag, buffer []byte) int
}

// GlyphMapper maps codepoints to glyphs.
type GlyphMapper interface {
	GlyphIDForCodepoint(r rune) ot.GlyphIndex
}

// AdvanceProvider reports glyph advances in font units.
type AdvanceProvider interface {
	AdvanceForGlyph(layout Layout, glyph ot.GlyphIndex) int32
}

// Finalizer is called once, when the last reference to a font is released.
type Finalizer interface {
	Finalize()
}

// FromCapabilities creates a protocol from the capability interfaces v
// implements. Capabilities v does not implement are left empty; NewFont
// will reject the protocol if a required one is missing.
func FromCapabilities(v any) Protocol {
	var p Protocol
	if tl, ok := v.(TableLoader); ok {
		p.LoadTable = tl.LoadTable
	}
	if gm, ok := v.(GlyphMapper); ok {
		p.GlyphIDForCodepoint = gm.GlyphIDForCodepoint
	}
	if ap, ok := v.(AdvanceProvider); ok {
		p.AdvanceForGlyph = ap.AdvanceForGlyph
	}
	if fin, ok := v.(Finalizer); ok {
		p.Finalize = fin.Finalize
	}
	return p
}

// Font is a handle for a font, as seen by the shaping engine. It is created
// by NewFont with one reference held by the caller.
//
// A Font is read-only after construction and may be used by concurrent
// shaping calls.
type Font struct {
	Name     string
	protocol Protocol
	refs     atomic.Int32
	final    sync.Once
	tables   map[ot.Tag][]byte
	gdef     *ot.GDef
	gsub     *ot.LayoutTable
	gpos     *ot.LayoutTable
	upem     int
}

// NewFont creates a font handle from a protocol. It fails if a required
// capability is missing. The layout tables GDEF, GSUB and GPOS are loaded
// once. Tables which cannot be parsed are traced and treated as absent.
func NewFont(p Protocol) (*Font, error) {
	if p.LoadTable == nil {
		return nil, core.Error(core.EINVALID, "font protocol lacks table loading")
	}
	if p.GlyphIDForCodepoint == nil {
		return nil, core.Error(core.EINVALID, "font protocol lacks glyph mapping")
	}
	f := &Font{
		protocol: p,
		tables:   make(map[ot.Tag][]byte, 3),
	}
	f.refs.Store(1)
	for _, tag := range []ot.Tag{ot.TagGDEF, ot.TagGSUB, ot.TagGPOS} {
		if t := loadTable(p, tag); t != nil {
			f.tables[tag] = t
		}
	}
	f.upem = 1000
	if head := ot.Location(loadTable(p, ot.T("head"))); head.Size() >= 20 {
		if u := int(head.U16(18)); u >= 16 {
			f.upem = u
		}
	}
	var err error
	if f.gdef, err = ot.ParseGDef(f.tables[ot.TagGDEF]); err != nil {
		tracer().Errorf("ignoring GDEF table: %v", err)
	}
	if f.gsub, err = ot.ParseLayoutTable(ot.TagGSUB, f.tables[ot.TagGSUB]); err != nil {
		tracer().Errorf("ignoring GSUB table: %v", err)
	}
	if f.gpos, err = ot.ParseLayoutTable(ot.TagGPOS, f.tables[ot.TagGPOS]); err != nil {
		tracer().Errorf("ignoring GPOS table: %v", err)
	}
	return f, nil
}

func loadTable(p Protocol, tag ot.Tag) []byte {
	n := p.LoadTable(tag, nil)
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	p.LoadTable(tag, buf)
	return buf
}

// Retain adds a reference to f and returns f.
func (f *Font) Retain() *Font {
	if f != nil {
		f.refs.Add(1)
	}
	return f
}

// Release drops a reference to f. Releasing the last reference calls the
// font's finalizer, if any. Releasing more references than have been
// acquired is a programming error and panics.
func (f *Font) Release() {
	if f == nil {
		return
	}
	n := f.refs.Add(-1)
	if n < 0 {
		panic(core.Error(core.EINTERNAL, "font %q released too often", f.Name))
	}
	if n == 0 {
		f.final.Do(func() {
			tracer().Debugf("finalizing font %q", f.Name)
			if f.protocol.Finalize != nil {
				f.protocol.Finalize()
			}
		})
	}
}

// Table returns the bytes of a layout table loaded at construction (GDEF,
// GSUB or GPOS), or nil.
func (f *Font) Table(tag ot.Tag) []byte {
	return f.tables[tag]
}

// LoadTable loads an arbitrary table through the font's protocol.
// It returns nil if the font does not contain the table.
func (f *Font) LoadTable(tag ot.Tag) []byte {
	if t, ok := f.tables[tag]; ok {
		return t
	}
	return loadTable(f.protocol, tag)
}

// GDef returns the font's GDEF table, or nil.
func (f *Font) GDef() *ot.GDef {
	return f.gdef
}

// GSub returns the font's GSUB table, or nil.
func (f *Font) GSub() *ot.LayoutTable {
	return f.gsub
}

// GPos returns the font's GPOS table, or nil.
func (f *Font) GPos() *ot.LayoutTable {
	return f.gpos
}

// GlyphID maps a codepoint to a glyph.
func (f *Font) GlyphID(r rune) ot.GlyphIndex {
	return f.protocol.GlyphIDForCodepoint(r)
}

// Advance returns the advance of a glyph in font units. Fonts without the
// advance capability report 0.
func (f *Font) Advance(layout Layout, glyph ot.GlyphIndex) int32 {
	if f.protocol.AdvanceForGlyph == nil {
		return 0
	}
	return f.protocol.AdvanceForGlyph(layout, glyph)
}

// UnitsPerEm returns the design units per em from the font's head table.
// Fonts without a head table are assumed to use 1000 units.
func (f *Font) UnitsPerEm() int {
	return f.upem
}
