package otquery

import (
	"sort"

	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
)

// FontType returns the font type, encoded in the font header, as a string.
func FontType(otf *ot.Font) string {
	if otf == nil {
		return "<empty>"
	}
	switch otf.Header.FontType {
	case 0x4f54544f: // OTTO
		return "OpenType (outlines)"
	case 0x00010000: // TrueType
		return "TrueType"
	case 0x74727565: // true
		return "TrueType (Mac legacy)"
	}
	return "<unknown>"
}

// --- Names -----------------------------------------------------------------

// Name IDs of OpenType table `name`.
const (
	nameFamily     = 1
	nameSubfamily  = 2
	nameFullName   = 4
	nameVersion    = 5
	namePostScript = 6
)

var nameFields = []struct {
	key string
	id  uint16
}{
	{"family", nameFamily},
	{"subfamily", nameSubfamily},
	{"fullname", nameFullName},
	{"version", nameVersion},
	{"postscript", namePostScript},
}

// Windows language IDs, primary language part only.
var windowsLanguages = map[string]uint16{
	"ar": 0x01, "de": 0x07, "el": 0x08, "en": 0x09, "es": 0x0a, "fi": 0x0b,
	"fr": 0x0c, "he": 0x0d, "hu": 0x0e, "it": 0x10, "ja": 0x11, "ko": 0x12,
	"nl": 0x13, "pl": 0x15, "pt": 0x16, "ru": 0x19, "sv": 0x1d, "tr": 0x1f,
	"zh": 0x04,
}

const windowsEnglish = 0x09

// NameInfo returns a map with selected fields from OpenType table `name`.
// Will include (if available in the font) "family", "subfamily", "fullname",
// "version" and "postscript".
//
// Entries for the Windows platform are preferred, in language lang if
// present, then in English. Macintosh entries are used as a fallback.
func NameInfo(f *font.Font, lang language.Tag) map[string]string {
	names := make(map[string]string)
	table := ot.Location(f.LoadTable(ot.T("name")))
	if table.Size() < 6 {
		tracer().Debugf("no name table found in font %s", f.Name)
		return names
	}
	want := uint16(windowsEnglish)
	if base, conf := lang.Base(); conf != language.No {
		if id, ok := windowsLanguages[base.String()]; ok {
			want = id
		}
	}
	count, storage := int(table.U16(2)), int(table.U16(4))
	for _, field := range nameFields {
		best, bestRank := -1, 0
		for i := 0; i < count; i++ {
			rec := table.Slice(6+12*i, 6+12*i+12)
			if rec.U16(6) != field.id {
				continue
			}
			if rank := rankNameRecord(rec, want); rank > bestRank {
				best, bestRank = i, rank
			}
		}
		if best < 0 {
			continue
		}
		rec := table.Slice(6+12*best, 6+12*best+12)
		start := storage + int(rec.U16(10))
		raw := table.Slice(start, start+int(rec.U16(8))).Bytes()
		if s, err := nameDecoder(rec.U16(0)).Bytes(raw); err == nil {
			names[field.key] = string(s)
		} else {
			tracer().Infof("cannot decode name entry %d: %v", field.id, err)
		}
	}
	return names
}

// rankNameRecord ranks a name record by platform and language. Records of
// unsupported encodings have rank 0.
func rankNameRecord(rec ot.NavLocation, want uint16) int {
	pid, psid, lid := rec.U16(0), rec.U16(2), rec.U16(4)
	switch {
	case pid == 3 && (psid == 1 || psid == 10):
		switch lid & 0x3ff {
		case want:
			return 5
		case windowsEnglish:
			return 4
		}
		return 2
	case pid == 0:
		return 3
	case pid == 1 && psid == 0:
		if lid == 0 { // English
			return 1
		}
	}
	return 0
}

func nameDecoder(platform uint16) *encoding.Decoder {
	if platform == 1 {
		return charmap.Macintosh.NewDecoder()
	}
	return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
}

// --- Layout ----------------------------------------------------------------

// LayoutTables returns a list of tag strings, one for each layout-table a font includes.
//
// OpenType Layout makes use of five tables: GSUB, GPOS, BASE, JSTF, and GDEF.
func LayoutTables(f *font.Font) []string {
	var lt []string
	for _, tag := range []string{"BASE", "GDEF", "GPOS", "GSUB", "JSTF"} {
		if len(f.LoadTable(ot.T(tag))) > 0 {
			lt = append(lt, tag)
		}
	}
	return lt
}

// Scripts returns the script tags GSUB or GPOS of a font have entries for,
// sorted.
func Scripts(f *font.Font) []ot.Tag {
	seen := make(map[ot.Tag]bool)
	var scripts []ot.Tag
	for _, t := range []*ot.LayoutTable{f.GSub(), f.GPos()} {
		if t == nil {
			continue
		}
		for _, tag := range t.ScriptTags() {
			if !seen[tag] {
				seen[tag] = true
				scripts = append(scripts, tag)
			}
		}
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i] < scripts[j] })
	return scripts
}

// FontSupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, DFLT will be returned. If the script has no support in the font,
// DFLT will be returned for the script.
//
// GSUB is consulted first, then GPOS.
func FontSupportsScript(f *font.Font, scr ot.Tag, lang ot.Tag) (ot.Tag, ot.Tag) {
	for _, t := range []*ot.LayoutTable{f.GSub(), f.GPos()} {
		if t == nil || !t.HasScript(scr) {
			continue
		}
		tracer().Debugf("script %s is contained in %s", scr, t.Tag())
		for _, tag := range t.LangSysTags(scr) {
			if tag == lang {
				return scr, lang
			}
		}
		return scr, ot.DFLT
	}
	tracer().Infof("cannot find script %s in font", scr)
	return ot.DFLT, ot.DFLT
}

// GlyphClass collects the GDEF classification of a glyph.
type GlyphClass struct {
	Class           ot.GlyphClass // base, ligature, mark, component, or unclassified
	MarkAttachClass int           // mark attachment class, 0 if none
	MarkGlyphSets   []int         // indices of the mark glyph sets containing the glyph
}

// GlyphClasses returns the GDEF classification of a glyph. Fonts without a
// GDEF table leave every glyph unclassified.
func GlyphClasses(f *font.Font, gid ot.GlyphIndex) GlyphClass {
	var gc GlyphClass
	gdef := f.GDef()
	if gdef == nil {
		return gc
	}
	gc.Class = ot.GlyphClass(gdef.GlyphClasses().Lookup(gid))
	gc.MarkAttachClass = gdef.MarkAttachmentClasses().Lookup(gid)
	for i := 0; i < gdef.MarkGlyphSetCount(); i++ {
		if _, ok := gdef.MarkGlyphSet(i).Match(gid); ok {
			gc.MarkGlyphSets = append(gc.MarkGlyphSets, i)
		}
	}
	return gc
}
