package ottest

// LangSys describes a language system record. Required is the index of a
// required feature, or 0xFFFF.
type LangSys struct {
	Tag      string
	Required uint16
	Features []uint16
}

// Script describes a script record. Default may be nil.
type Script struct {
	Tag     string
	Default *LangSys
	Langs   []LangSys
}

// Feature describes a feature record.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Lookup describes a lookup table. MarkFilteringSet is written if Flag has
// bit 0x10 set.
type Lookup struct {
	Type             uint16
	Flag             uint16
	MarkFilteringSet uint16
	Subtables        [][]byte
}

// Layout describes a GSUB or GPOS table.
type Layout struct {
	Scripts           []Script
	Features          []Feature
	Lookups           []Lookup
	FeatureVariations []byte // optional, makes the table version 1.1
}

// Bytes assembles the layout table.
func (l Layout) Bytes() []byte {
	bb := &Builder{}
	if l.FeatureVariations != nil {
		bb.U16(1, 1, 0, 0, 0).U32(0) // version 1.1 has an offset to feature variations
	} else {
		bb.U16(1, 0, 0, 0, 0)
	}
	bb.Append16(4, 0, l.scriptList())
	bb.Append16(6, 0, l.featureList())
	bb.Append16(8, 0, l.lookupList())
	if l.FeatureVariations != nil {
		bb.PutU32(10, uint32(bb.Size()))
		bb.Raw(l.FeatureVariations)
	}
	return bb.Bytes()
}

func langSys(ls LangSys) []byte {
	bb := &Builder{}
	bb.U16(0, ls.Required, uint16(len(ls.Features))).U16(ls.Features...)
	return bb.Bytes()
}

func (l Layout) scriptList() []byte {
	bb := &Builder{}
	bb.U16(uint16(len(l.Scripts)))
	slots := make([]int, len(l.Scripts))
	for i, s := range l.Scripts {
		bb.Tag(s.Tag)
		slots[i] = bb.Placeholder16(1)
	}
	for i, s := range l.Scripts {
		bb.Append16(slots[i], 0, script(s))
	}
	return bb.Bytes()
}

func script(s Script) []byte {
	bb := &Builder{}
	dflt := bb.Placeholder16(1)
	bb.U16(uint16(len(s.Langs)))
	slots := make([]int, len(s.Langs))
	for i, ls := range s.Langs {
		bb.Tag(ls.Tag)
		slots[i] = bb.Placeholder16(1)
	}
	if s.Default != nil {
		bb.Append16(dflt, 0, langSys(*s.Default))
	}
	for i, ls := range s.Langs {
		bb.Append16(slots[i], 0, langSys(ls))
	}
	return bb.Bytes()
}

func (l Layout) featureList() []byte {
	bb := &Builder{}
	bb.U16(uint16(len(l.Features)))
	slots := make([]int, len(l.Features))
	for i, f := range l.Features {
		bb.Tag(f.Tag)
		slots[i] = bb.Placeholder16(1)
	}
	for i, f := range l.Features {
		ft := &Builder{}
		ft.U16(0, uint16(len(f.Lookups))).U16(f.Lookups...)
		bb.Append16(slots[i], 0, ft.Bytes())
	}
	return bb.Bytes()
}

func (l Layout) lookupList() []byte {
	bb := &Builder{}
	bb.U16(uint16(len(l.Lookups)))
	slots := bb.Placeholder16(len(l.Lookups))
	for i, lk := range l.Lookups {
		bb.Append16(slots+2*i, 0, lookup(lk))
	}
	return bb.Bytes()
}

func lookup(lk Lookup) []byte {
	bb := &Builder{}
	bb.U16(lk.Type, lk.Flag, uint16(len(lk.Subtables)))
	slots := bb.Placeholder16(len(lk.Subtables))
	if lk.Flag&0x10 != 0 {
		bb.U16(lk.MarkFilteringSet)
	}
	for i, sub := range lk.Subtables {
		bb.Append16(slots+2*i, 0, sub)
	}
	return bb.Bytes()
}

// --- GDEF ------------------------------------------------------------------

// GDEF describes a glyph definition table. If MarkGlyphSets is not empty,
// the table is written as version 1.2.
type GDEF struct {
	GlyphClasses      map[uint16]uint16
	MarkAttachClasses map[uint16]uint16
	MarkGlyphSets     [][]uint16
}

// Bytes assembles the GDEF table.
func (g GDEF) Bytes() []byte {
	bb := &Builder{}
	if len(g.MarkGlyphSets) > 0 {
		bb.U16(1, 2, 0, 0, 0, 0, 0)
	} else {
		bb.U16(1, 0, 0, 0, 0, 0)
	}
	if len(g.GlyphClasses) > 0 {
		bb.Append16(4, 0, ClassDefFromMap(g.GlyphClasses))
	}
	if len(g.MarkAttachClasses) > 0 {
		bb.Append16(10, 0, ClassDefFromMap(g.MarkAttachClasses))
	}
	if len(g.MarkGlyphSets) > 0 {
		sets := &Builder{}
		sets.U16(1, uint16(len(g.MarkGlyphSets)))
		offs := sets.Size()
		for range g.MarkGlyphSets {
			sets.U32(0)
		}
		for i, set := range g.MarkGlyphSets {
			sets.PutU32(offs+4*i, uint32(sets.Size()))
			sets.Raw(Coverage(set...))
		}
		bb.Append16(12, 0, sets.Bytes())
	}
	return bb.Bytes()
}
