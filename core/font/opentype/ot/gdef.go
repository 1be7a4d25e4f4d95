package ot

// --- GDEF table ------------------------------------------------------------

// GDef is a view onto the Glyph Definition (GDEF) table, which provides
// various glyph properties used in OpenType Layout processing.
//
// See also
// https://docs.microsoft.com/en-us/typography/opentype/spec/gdef
type GDef struct {
	data   binarySegm
	Header GDefHeader
}

// GDefHeader contains general information for a Glyph Definition table.
// Three versions are defined: 1.0, 1.2 and 1.3.
type GDefHeader struct {
	Major, Minor             uint16
	GlyphClassDefOffset      uint16
	AttachListOffset         uint16
	LigCaretListOffset       uint16
	MarkAttachClassDefOffset uint16
	MarkGlyphSetsDefOffset   uint16 // version 1.2 and above
	ItemVarStoreOffset       uint32 // version 1.3
}

// GlyphClass lists the glyph classes of a GDEF glyph class definition.
type GlyphClass uint16

// Glyph classes of GDEF glyph class definitions. 0 means 'not classified'.
const (
	UnclassifiedGlyph GlyphClass = iota
	BaseGlyph                    // single character, spacing glyph
	LigatureGlyph                // multiple character, spacing glyph
	MarkGlyph                    // non-spacing combining glyph
	ComponentGlyph               // part of single character, spacing glyph
)

// ParseGDef creates a view onto a GDEF table. An empty byte slice results in
// nil without an error.
func ParseGDef(b []byte) (*GDef, error) {
	if len(b) == 0 {
		return nil, nil
	}
	data := binarySegm(b)
	if len(data) < 12 {
		return nil, errFontFormat("GDEF header too short")
	}
	h := GDefHeader{
		Major:                    data.U16(0),
		Minor:                    data.U16(2),
		GlyphClassDefOffset:      data.U16(4),
		AttachListOffset:         data.U16(6),
		LigCaretListOffset:       data.U16(8),
		MarkAttachClassDefOffset: data.U16(10),
	}
	if h.Major != 1 {
		return nil, errFontFormat("GDEF major version")
	}
	if h.Minor >= 2 {
		h.MarkGlyphSetsDefOffset = data.U16(12)
	}
	if h.Minor >= 3 {
		h.ItemVarStoreOffset = data.U32(14)
	}
	tracer().Debugf("GDEF header = %v", h)
	return &GDef{data: data, Header: h}, nil
}

// GlyphClassDef returns the bytes of the glyph class definition subtable, or
// an empty location if the GDEF table has none.
func (gdef *GDef) GlyphClassDef() NavLocation {
	if gdef == nil {
		return binarySegm{}
	}
	return jump16(gdef.data, gdef.Header.GlyphClassDefOffset)
}

// GlyphClasses returns the glyph class definitions.
func (gdef *GDef) GlyphClasses() ClassDefinitions {
	return ParseClassDefinitions(gdef.GlyphClassDef())
}

// MarkAttachmentClasses returns the mark attachment class definitions.
func (gdef *GDef) MarkAttachmentClasses() ClassDefinitions {
	if gdef == nil {
		return ClassDefinitions{}
	}
	return ParseClassDefinitions(jump16(gdef.data, gdef.Header.MarkAttachClassDefOffset))
}

// MarkGlyphSet returns mark glyph set #i as a coverage table. Mark glyph sets
// are available from GDEF version 1.2 on.
func (gdef *GDef) MarkGlyphSet(i int) Coverage {
	if gdef == nil {
		return Coverage{}
	}
	return ParseCoverage(gdef.markGlyphSets().Get(i))
}

// MarkGlyphSetCount returns the number of mark glyph sets.
func (gdef *GDef) MarkGlyphSetCount() int {
	if gdef == nil {
		return 0
	}
	return gdef.markGlyphSets().Len()
}

func (gdef *GDef) markGlyphSets() NavList {
	return NavigatorFactory("MarkGlyphSets", jump16(gdef.data, gdef.Header.MarkGlyphSetsDefOffset)).List()
}

// SearchGlyphClass looks up the class of glyph in a glyph class definition
// subtable. Missing data results in UnclassifiedGlyph.
func SearchGlyphClass(classDef NavLocation, glyph GlyphIndex) GlyphClass {
	return GlyphClass(ParseClassDefinitions(classDef).Lookup(glyph))
}
