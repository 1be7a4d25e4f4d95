package otquery

import (
	"testing"

	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/fonttest"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/language"
)

// --- Test Suite Preparation ------------------------------------------------

type QueryTestEnviron struct {
	suite.Suite
	font *font.Font
}

// listen for 'go test' command --> run test methods
func TestQueryFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	suite.Run(t, new(QueryTestEnviron))
}

// run once, before test suite methods
func (env *QueryTestEnviron) SetupSuite() {
	ff := &fonttest.Font{Tables: map[ot.Tag][]byte{
		ot.T("head"): headTable(2000),
		ot.T("hhea"): hheaTable(800, -200),
		ot.T("maxp"): (&ottest.Builder{}).U16(0, 0x5000, 3).Bytes(),
		ot.T("hmtx"): (&ottest.Builder{}).U16(500).I16(10).U16(600).I16(20).I16(30).Bytes(),
		ot.T("loca"): (&ottest.Builder{}).U16(0, 0, 5, 5).Bytes(),
		ot.T("glyf"): (&ottest.Builder{}).I16(1, 20, -10, 520, 700).Bytes(),
		ot.T("name"): nameTable(),
		ot.T("cmap"): cmapFormat4(),
		ot.T("kern"): kernTable(),
		ot.TagGDEF: ottest.GDEF{
			GlyphClasses:      map[uint16]uint16{1: 1, 5: 3},
			MarkAttachClasses: map[uint16]uint16{5: 2},
			MarkGlyphSets:     [][]uint16{{5}, {4, 5}},
		}.Bytes(),
		ot.TagGSUB: layout("latn", "DEU "),
		ot.TagGPOS: layout("grek"),
	}}
	env.font = ff.Handle(env.T())
}

// run once, after test suite methods
func (env *QueryTestEnviron) TearDownSuite() {
	env.font.Release()
}

// --- Tests -----------------------------------------------------------------

func (env *QueryTestEnviron) TestFontType() {
	env.Equal("TrueType", FontType(font.FallbackFont().OT), "expected Go font to be TrueType")
	env.Equal("<empty>", FontType(nil))
}

func (env *QueryTestEnviron) TestNameInfo() {
	names := NameInfo(env.font, language.English)
	env.Equal("Family", names["family"])
	env.Equal("Regular", names["subfamily"])
	env.Equal("Version 1.0", names["version"], "expected Macintosh entry as fallback")
	env.NotContains(names, "postscript")
	env.Equal("Familie", NameInfo(env.font, language.German)["family"])
	env.Equal("Family", NameInfo(env.font, language.French)["family"], "expected English fallback")
	gosans, err := font.FallbackFont().Font()
	env.Require().NoError(err)
	defer gosans.Release()
	env.NotEmpty(NameInfo(gosans, language.English)["family"])
}

func (env *QueryTestEnviron) TestLayoutTables() {
	env.Equal([]string{"GDEF", "GPOS", "GSUB"}, LayoutTables(env.font))
	env.Equal([]ot.Tag{ot.T("grek"), ot.T("latn")}, Scripts(env.font))
}

func (env *QueryTestEnviron) TestFontSupportsScript() {
	check := func(scr, lang, expScr, expLang string) {
		s, l := FontSupportsScript(env.font, ot.T(scr), ot.T(lang))
		env.Equal(ot.T(expScr), s, "script for %s/%s", scr, lang)
		env.Equal(ot.T(expLang), l, "language for %s/%s", scr, lang)
	}
	check("latn", "DEU", "latn", "DEU")
	check("latn", "TRK", "latn", "DFLT")
	check("grek", "ELL", "grek", "DFLT")
	check("cyrl", "RUS", "DFLT", "DFLT")
}

func (env *QueryTestEnviron) TestGlyphClasses() {
	gc := GlyphClasses(env.font, 5)
	env.Equal(ot.MarkGlyph, gc.Class)
	env.Equal(2, gc.MarkAttachClass)
	env.Equal([]int{0, 1}, gc.MarkGlyphSets)
	gc = GlyphClasses(env.font, 1)
	env.Equal(ot.BaseGlyph, gc.Class)
	env.Empty(gc.MarkGlyphSets)
}

func (env *QueryTestEnviron) TestFontMetrics() {
	m := FontMetrics(env.font)
	env.Equal(sfnt.Units(2000), m.UnitsPerEm)
	env.Equal(sfnt.Units(800), m.Ascent)
	env.Equal(sfnt.Units(-200), m.Descent)
	env.Equal(sfnt.Units(90), m.LineGap)
	env.Equal(sfnt.Units(1200), m.MaxAdvance)
}

func (env *QueryTestEnviron) TestFontMetricsFromOS2() {
	os2 := make([]byte, 72)
	os2[68], os2[69] = 0x03, 0x84 // 900
	os2[70], os2[71] = 0xfe, 0xd4 // -300
	ff := &fonttest.Font{Tables: map[ot.Tag][]byte{
		ot.T("head"): headTable(1000),
		ot.T("hhea"): hheaTable(0, 0),
		ot.T("OS/2"): os2,
	}}
	f := ff.Handle(env.T())
	defer f.Release()
	m := FontMetrics(f)
	env.Equal(sfnt.Units(900), m.Ascent)
	env.Equal(sfnt.Units(-300), m.Descent)
}

func (env *QueryTestEnviron) TestGlyphMetrics() {
	m := GlyphMetrics(env.font, 1)
	env.Equal(sfnt.Units(600), m.Advance)
	env.Equal(sfnt.Units(20), m.LSB)
	env.Equal(BoundingBox{MinX: 20, MinY: -10, MaxX: 520, MaxY: 700}, m.BBox)
	env.Equal(sfnt.Units(80), m.RSB)
	m = GlyphMetrics(env.font, 2)
	env.Equal(sfnt.Units(600), m.Advance, "expected last advance to repeat")
	env.Equal(sfnt.Units(30), m.LSB)
	env.True(m.BBox.Empty())
	env.Equal(sfnt.Units(0), m.RSB)
}

func (env *QueryTestEnviron) TestCodePointForGlyph() {
	env.Equal('b', CodePointForGlyph(env.font, 2))
	env.Equal('x', CodePointForGlyph(env.font, 7))
	env.Equal(rune(0), CodePointForGlyph(env.font, 9))
	env.Equal(rune(0), CodePointForGlyph(env.font, 0))
	env.Equal(ot.GlyphIndex('x'), GlyphIndex(env.font, 'x'), "expected glyph from font capability")
	ff := &fonttest.Font{Tables: map[ot.Tag][]byte{ot.T("cmap"): cmapFormat12()}}
	f := ff.Handle(env.T())
	defer f.Release()
	env.Equal(rune(0x1F601), CodePointForGlyph(f, 21))
}

func (env *QueryTestEnviron) TestKerning() {
	env.Equal(int32(-50), Kerning(env.font, 1, 2))
	env.Equal(int32(30), Kerning(env.font, 2, 3))
	env.Equal(int32(0), Kerning(env.font, 2, 1))
	ff := &fonttest.Font{Tables: map[ot.Tag][]byte{}}
	f := ff.Handle(env.T())
	defer f.Release()
	env.True(LoadKernTable(f).IsEmpty())
	env.Equal(int32(0), Kerning(f, 1, 2))
}

// --- Table assembly --------------------------------------------------------

func headTable(upem uint16) []byte {
	bb := &ottest.Builder{}
	bb.Raw(make([]byte, 54))
	bb.PutU16(18, upem)
	return bb.Bytes()
}

func hheaTable(ascent, descent int16) []byte {
	bb := &ottest.Builder{}
	bb.U16(1, 0).I16(ascent, descent, 90).U16(1200)
	bb.Raw(make([]byte, 22))
	bb.U16(2) // numberOfHMetrics
	return bb.Bytes()
}

func utf16(s string) []byte {
	b := make([]byte, 0, 2*len(s))
	for _, r := range s {
		b = append(b, byte(r>>8), byte(r))
	}
	return b
}

func nameTable() []byte {
	type entry struct {
		pid, psid, lid, id uint16
		value              []byte
	}
	entries := []entry{
		{1, 0, 0, 1, []byte("MacFam")},
		{1, 0, 0, 5, []byte("Version 1.0")},
		{3, 1, 0x0407, 1, utf16("Familie")},
		{3, 1, 0x0409, 1, utf16("Family")},
		{3, 1, 0x0409, 2, utf16("Regular")},
	}
	bb := &ottest.Builder{}
	bb.U16(0, uint16(len(entries)), uint16(6+12*len(entries)))
	storage := &ottest.Builder{}
	for _, e := range entries {
		bb.U16(e.pid, e.psid, e.lid, e.id, uint16(len(e.value)), uint16(storage.Size()))
		storage.Raw(e.value)
	}
	bb.Raw(storage.Bytes())
	return bb.Bytes()
}

// cmapFormat4 maps 'a'…'c' to glyphs 1…3 by delta and 'x' to glyph 7 by
// the glyph ID array.
func cmapFormat4() []byte {
	bb := &ottest.Builder{}
	bb.U16(0, 1, 3, 1).U32(12)
	bb.U16(4, 42, 0, 6, 0, 0, 0)
	bb.U16('c', 'x', 0xffff, 0)
	bb.U16('a', 'x', 0xffff)
	bb.U16(uint16(1-'a'+0x10000), 0, 1)
	bb.U16(0, 4, 0)
	bb.U16(7)
	return bb.Bytes()
}

func cmapFormat12() []byte {
	bb := &ottest.Builder{}
	bb.U16(0, 1, 3, 10).U32(12)
	bb.U16(12, 0).U32(28, 0, 1)
	bb.U32(0x1F600, 0x1F602, 20)
	return bb.Bytes()
}

func kernTable() []byte {
	bb := &ottest.Builder{}
	bb.U16(0, 1)
	bb.U16(0, 6+8+2*6, 0x0001)
	bb.U16(2, 12, 1, 0)
	bb.U16(1, 2).I16(-50)
	bb.U16(2, 3).I16(30)
	return bb.Bytes()
}

func layout(script string, langs ...string) []byte {
	lsys := &ottest.LangSys{Required: 0xFFFF, Features: []uint16{0}}
	scr := ottest.Script{Tag: script, Default: lsys}
	for _, l := range langs {
		scr.Langs = append(scr.Langs, ottest.LangSys{Tag: l, Required: 0xFFFF, Features: []uint16{0}})
	}
	return ottest.Layout{
		Scripts:  []ottest.Script{scr},
		Features: []ottest.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		Lookups:  []ottest.Lookup{{Type: 1}},
	}.Bytes()
}
