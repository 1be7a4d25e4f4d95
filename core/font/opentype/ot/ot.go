package ot

import "sort"

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType standard as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Tags of the advanced layout tables.
var (
	TagGDEF = T("GDEF")
	TagGSUB = T("GSUB")
	TagGPOS = T("GPOS")
)

// --- Table directory -------------------------------------------------------

// Font is the table directory of an OpenType font. It maps table tags to the
// binary segments of the tables, without interpreting them.
//
// Font is read-only after Parse returns and may be shared between goroutines.
type Font struct {
	Header FontHeader
	tables map[Tag]binarySegm
}

// FontHeader is the beginning of the offset table of a font.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the bytes for a table. If no table for the tag is contained
// in the font, an empty location is returned.
//
// Table tag names are case-sensitive, following the names in the OpenType
// specification, e.g. 'GSUB' or 'cmap'.
func (otf *Font) Table(tag Tag) NavLocation {
	if otf == nil {
		return binarySegm{}
	}
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return binarySegm{}
}

// HasTable returns true if the font contains a table for tag.
func (otf *Font) HasTable(tag Tag) bool {
	if otf == nil {
		return false
	}
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns a sorted list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
