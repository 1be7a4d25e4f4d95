package ot

/*
From https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2:

OpenType Layout consists of five tables: the Glyph Substitution table (GSUB),
the Glyph Positioning table (GPOS), the Baseline table (BASE),
the Justification table (JSTF), and the Glyph Definition table (GDEF).
These tables use some of the same data formats.
*/

// --- Layout tables ---------------------------------------------------------

// LayoutTable is a view onto one of the layout tables GSUB or GPOS, which
// share the structure of script list, feature list, lookup list and an
// optional feature variations table.
type LayoutTable struct {
	tag    Tag
	data   binarySegm
	header LayoutHeader
}

// LayoutHeader represents header information common to the layout tables.
type LayoutHeader struct {
	Major, Minor            uint16
	ScriptListOffset        uint16 // from beginning of GPOS/GSUB table
	FeatureListOffset       uint16 // from beginning of GPOS/GSUB table
	LookupListOffset        uint16 // from beginning of GPOS/GSUB table
	FeatureVariationsOffset uint32 // from beginning of GPOS/GSUB table, may be NULL; version 1.1 only
}

// ParseLayoutTable creates a view onto a GSUB or GPOS table.
// An empty byte slice is not an error, but results in nil.
func ParseLayoutTable(tag Tag, b []byte) (*LayoutTable, error) {
	if len(b) == 0 {
		return nil, nil
	}
	data := binarySegm(b)
	if len(data) < 10 {
		return nil, errFontFormat(tag.String() + " header too short")
	}
	h := LayoutHeader{
		Major:             data.U16(0),
		Minor:             data.U16(2),
		ScriptListOffset:  data.U16(4),
		FeatureListOffset: data.U16(6),
		LookupListOffset:  data.U16(8),
	}
	if h.Major != 1 {
		return nil, errFontFormat(tag.String() + " major version")
	}
	if h.Minor >= 1 && len(data) >= 14 {
		h.FeatureVariationsOffset = data.U32(10)
	}
	tracer().Debugf("%s header = %v", tag, h)
	return &LayoutTable{tag: tag, data: data, header: h}, nil
}

// Tag returns the table tag (GSUB or GPOS).
func (t *LayoutTable) Tag() Tag {
	return t.tag
}

// Header returns the layout table header.
func (t *LayoutTable) Header() LayoutHeader {
	return t.header
}

// Binary returns the bytes of this table. They should be treated as read-only.
func (t *LayoutTable) Binary() []byte {
	return t.data
}

// ScriptList returns the script list as a map from script tags to Script
// tables.
func (t *LayoutTable) ScriptList() TagRecordMap {
	return NavigatorFactory("ScriptList", jump16(t.data, t.header.ScriptListOffset)).Map()
}

// FeatureList returns the feature list as a map from feature tags to feature
// tables. Feature tags may occur more than once.
func (t *LayoutTable) FeatureList() TagRecordMap {
	return NavigatorFactory("FeatureList", jump16(t.data, t.header.FeatureListOffset)).Map()
}

// LookupList returns the list of lookup tables.
func (t *LayoutTable) LookupList() NavList {
	return NavigatorFactory("LookupList", jump16(t.data, t.header.LookupListOffset)).List()
}

// --- Script list and LangSys -----------------------------------------------

// DFLT is the tag of the default script.
var DFLT = T("DFLT")

// ScriptTags returns the tags of all scripts the table has entries for.
func (t *LayoutTable) ScriptTags() []Tag {
	return t.ScriptList().Tags()
}

// HasScript returns true if the table contains a script record for tag.
func (t *LayoutTable) HasScript(script Tag) bool {
	return t.findScript(script).Size() > 0
}

// LangSysTags returns the tags of the language systems defined for a script,
// not counting the default language system.
func (t *LayoutTable) LangSysTags(script Tag) []Tag {
	scr := t.findScript(script)
	if scr.Size() == 0 {
		return nil
	}
	return NavigatorFactory("Script", scr).Map().Tags()
}

func (t *LayoutTable) findScript(script Tag) NavLocation {
	return t.ScriptList().LookupTag(script).Jump()
}

// LangSys is a language system table, i.e. the set of features to apply for
// a script/language combination.
type LangSys struct {
	RequiredFeatureIndex uint16 // 0xFFFF if no feature is required
	featureIndices       array
}

// NoRequiredFeature is the required feature index of a LangSys without a
// required feature.
const NoRequiredFeature = 0xFFFF

// FeatureCount returns the number of features (not counting a required feature).
func (lsys LangSys) FeatureCount() int {
	return lsys.featureIndices.Len()
}

// FeatureIndex returns the index into the feature list of feature #i.
func (lsys LangSys) FeatureIndex(i int) uint16 {
	return lsys.featureIndices.U16(i)
}

// IsVoid is true for a LangSys without any features.
func (lsys LangSys) IsVoid() bool {
	return lsys.featureIndices.Len() == 0 && lsys.RequiredFeatureIndex == NoRequiredFeature
}

func viewLangSys(loc NavLocation) LangSys {
	var b binarySegm
	if loc != nil {
		b = binarySegm(loc.Bytes())
	}
	if len(b) < 6 {
		return LangSys{RequiredFeatureIndex: NoRequiredFeature}
	}
	return LangSys{
		RequiredFeatureIndex: b.U16(2),
		featureIndices:       viewArray(b, 6, int(b.U16(4)), 2),
	}
}

// FindLangSys looks up the language system for a script and language.
// If the script is not present in the table, the DFLT script is tried, then
// Latin. If the language is not present for the script (or is 0), the default
// LangSys of the script is returned. The second return value reports if any
// LangSys has been found.
func (t *LayoutTable) FindLangSys(script, lang Tag) (LangSys, bool) {
	if t == nil {
		return viewLangSys(nil), false
	}
	scr := t.findScript(script)
	if scr.Size() == 0 {
		if scr = t.findScript(DFLT); scr.Size() == 0 {
			scr = t.findScript(T("latn"))
		}
	}
	if scr.Size() == 0 {
		tracer().Debugf("%s has no entry for script %s", t.tag, script)
		return viewLangSys(nil), false
	}
	nav := NavigatorFactory("Script", scr)
	if lang != 0 {
		if lsys := nav.Map().LookupTag(lang); !lsys.IsNull() {
			return viewLangSys(lsys.Jump()), true
		}
	}
	dflt := nav.Link()
	if dflt.IsNull() {
		return viewLangSys(nil), false
	}
	return viewLangSys(dflt.Jump()), true
}

// --- Feature list ----------------------------------------------------------

// FeatureCount returns the number of entries in the feature list.
func (t *LayoutTable) FeatureCount() int {
	return t.FeatureList().Len()
}

// FeatureTag returns the tag of feature record #i, or 0.
func (t *LayoutTable) FeatureTag(i int) Tag {
	tag, _ := t.FeatureList().Get(i)
	return tag
}

// Feature returns the feature table of feature record #i.
func (t *LayoutTable) Feature(i int) FeatureTable {
	_, link := t.FeatureList().Get(i)
	return ViewFeatureTable(link.Jump())
}

// FeatureTable is a view onto a feature table: a list of lookup indices.
type FeatureTable struct {
	loc binarySegm
}

// ViewFeatureTable interprets a location as a feature table. Clients use it
// for alternate feature tables found by SearchAlternateFeatureTable.
func ViewFeatureTable(loc NavLocation) FeatureTable {
	if loc == nil {
		return FeatureTable{}
	}
	return FeatureTable{loc: binarySegm(loc.Bytes())}
}

// IsNull is true if the feature table does not exist.
func (f FeatureTable) IsNull() bool {
	return len(f.loc) == 0
}

// LookupCount returns the number of lookups referenced by the feature.
func (f FeatureTable) LookupCount() int {
	return viewArray(f.loc, 4, int(f.loc.U16(2)), 2).Len()
}

// LookupIndex returns the lookup list index of lookup #i of the feature.
func (f FeatureTable) LookupIndex(i int) uint16 {
	return viewArray(f.loc, 4, int(f.loc.U16(2)), 2).U16(i)
}

// LookupIndices returns all lookup list indices of the feature.
func (f FeatureTable) LookupIndices() []uint16 {
	a := viewArray(f.loc, 4, int(f.loc.U16(2)), 2)
	r := make([]uint16, a.Len())
	for i := range r {
		r[i] = a.U16(i)
	}
	return r
}

// FeatureVariations returns the feature variations table, or an empty
// location if the table has none.
func (t *LayoutTable) FeatureVariations() NavLocation {
	if t.header.FeatureVariationsOffset == 0 ||
		uint64(t.header.FeatureVariationsOffset) >= uint64(len(t.data)) {
		return binarySegm{}
	}
	return t.data[t.header.FeatureVariationsOffset:]
}

// --- Lookup list -----------------------------------------------------------

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, indicates that the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_reserved                  LayoutTableLookupFlag = 0x00E0 // For future use (Set to zero)
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// MarkAttachmentType extracts the mark attachment class from a lookup flag.
func (flag LayoutTableLookupFlag) MarkAttachmentType() int {
	return int(flag&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK) >> 8
}

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// LookupCount returns the number of lookups in the lookup list.
func (t *LayoutTable) LookupCount() int {
	return t.LookupList().Len()
}

// Lookup returns lookup #i of the lookup list. If i is out of range, the
// returned lookup has no subtables.
func (t *LayoutTable) Lookup(i int) Lookup {
	return viewLookup(binarySegm(t.LookupList().Get(i).Bytes()), i)
}

// Lookup is a view onto a lookup table.
type Lookup struct {
	Index            int                   // position in the lookup list
	Type             LayoutTableLookupType // GSUB or GPOS lookup type
	Flag             LayoutTableLookupFlag // lookup qualifiers
	MarkFilteringSet uint16                // index into GDEF mark glyph sets, valid if flag says so
	subtables        NavList
}

func viewLookup(b binarySegm, index int) Lookup {
	if len(b) < 6 {
		return Lookup{Index: index}
	}
	lookup := Lookup{
		Index:     index,
		Type:      LayoutTableLookupType(b.U16(0)),
		Flag:      LayoutTableLookupFlag(b.U16(2)),
		subtables: NavigatorFactory("Lookup", b).List(),
	}
	if lookup.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		lookup.MarkFilteringSet = b.U16(6 + 2*lookup.subtables.Len())
	}
	return lookup
}

// SubTableCount returns the number of subtables of the lookup.
func (l Lookup) SubTableCount() int {
	if l.subtables == nil {
		return 0
	}
	return l.subtables.Len()
}

// Subtable returns the bytes of subtable #i.
func (l Lookup) Subtable(i int) NavLocation {
	if l.subtables == nil {
		return binarySegm{}
	}
	return l.subtables.Get(i)
}

// UnwrapExtension follows an extension subtable (GSUB type 7, GPOS type 9)
// to the subtable it wraps, returning the wrapped lookup type.
func UnwrapExtension(sub NavLocation) (LayoutTableLookupType, NavLocation) {
	b := binarySegm(sub.Bytes())
	if b.U16(0) != 1 {
		return 0, binarySegm{}
	}
	return LayoutTableLookupType(b.U16(2)), link32(b, 4)
}

// --- Coverage table --------------------------------------------------------

// Coverage denotes an indexed set of glyphs.
// Each LookupSubtable (except an Extension LookupType subtable) in a lookup references
// a Coverage table (Coverage), which specifies all the glyphs affected by a
// substitution or positioning operation described in the subtable.
// If a glyph does not appear in a Coverage table, the client can skip that subtable
// and move immediately to the next subtable.
type Coverage struct {
	format  uint16
	records array
}

// ParseCoverage interprets loc as a coverage table of format 1 or 2.
func ParseCoverage(loc NavLocation) Coverage {
	b := binarySegm(loc.Bytes())
	switch format := b.U16(0); format {
	case 1:
		return Coverage{format: 1, records: viewArray(b, 4, int(b.U16(2)), 2)}
	case 2:
		return Coverage{format: 2, records: viewArray(b, 4, int(b.U16(2)), 6)}
	}
	return Coverage{}
}

// Match returns the coverage index of glyph g, if g is covered.
func (c Coverage) Match(g GlyphIndex) (int, bool) {
	n := c.records.Len()
	switch c.format {
	case 1: // sorted array of glyph IDs
		lo, hi := 0, n
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			if GlyphIndex(c.records.U16(m)) < g {
				lo = m + 1
			} else {
				hi = m
			}
		}
		if lo < n && GlyphIndex(c.records.U16(lo)) == g {
			return lo, true
		}
	case 2: // range records {start, end, startCoverageIndex}
		lo, hi := 0, n
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			if GlyphIndex(c.records.Get(m).U16(2)) < g {
				lo = m + 1
			} else {
				hi = m
			}
		}
		if lo < n {
			rec := c.records.Get(lo)
			if from := GlyphIndex(rec.U16(0)); from <= g {
				return int(rec.U16(4)) + int(g-from), true
			}
		}
	}
	return 0, false
}

// --- Class definition tables -----------------------------------------------

// ClassDefinitions groups glyphs into classes, denoted as integer values.
//
// For efficiency and ease of representation, a font developer can group glyph indices
// to form glyph classes. Class assignments vary in meaning from one lookup subtable
// to another. For example, in the GSUB and GPOS tables, classes are used to describe
// glyph contexts. GDEF tables also use the idea of glyph classes.
// (see https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#class-definition-table)
type ClassDefinitions struct {
	format  uint16     // format version 1 or 2
	start   GlyphIndex // glyph ID of the first entry in a format-1 table
	records array      // class values (format 1) or class range records (format 2)
}

// ParseClassDefinitions interprets loc as a class definition table.
// Unknown formats result in a table which assigns class 0 to every glyph.
func ParseClassDefinitions(loc NavLocation) ClassDefinitions {
	b := binarySegm(loc.Bytes())
	switch format := b.U16(0); format {
	case 1:
		return ClassDefinitions{
			format:  1,
			start:   GlyphIndex(b.U16(2)),
			records: viewArray(b, 6, int(b.U16(4)), 2),
		}
	case 2:
		return ClassDefinitions{
			format:  2,
			records: viewArray(b, 4, int(b.U16(2)), 6),
		}
	case 0:
	default:
		tracer().Errorf("illegal format %d of class definition table", format)
	}
	return ClassDefinitions{}
}

// IsNull is true for an empty class definition table.
func (cdef ClassDefinitions) IsNull() bool {
	return cdef.format == 0
}

// Lookup returns the class defined for a glyph, or 0 (= default class).
func (cdef ClassDefinitions) Lookup(glyph GlyphIndex) int {
	switch cdef.format {
	case 1:
		if glyph < cdef.start || int(glyph-cdef.start) >= cdef.records.Len() {
			return 0
		}
		return int(cdef.records.U16(int(glyph - cdef.start)))
	case 2: // ClassRangeRecords are ordered by startGlyphID, end is inclusive
		lo, hi := 0, cdef.records.Len()
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			if GlyphIndex(cdef.records.Get(m).U16(2)) < glyph {
				lo = m + 1
			} else {
				hi = m
			}
		}
		if lo < cdef.records.Len() {
			rec := cdef.records.Get(lo)
			if GlyphIndex(rec.U16(0)) <= glyph {
				return int(rec.U16(4))
			}
		}
	}
	return 0
}
