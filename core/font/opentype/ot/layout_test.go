package ot

import (
	"testing"

	"github.com/npillmayer/otshaping/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/gofont/goregular"
)

func testLayout() ottest.Layout {
	return ottest.Layout{
		Scripts: []ottest.Script{
			{
				Tag:     "DFLT",
				Default: &ottest.LangSys{Required: NoRequiredFeature, Features: []uint16{0}},
			},
			{
				Tag:     "latn",
				Default: &ottest.LangSys{Required: NoRequiredFeature, Features: []uint16{0, 1}},
				Langs: []ottest.LangSys{
					{Tag: "TRK ", Required: 2, Features: []uint16{1}},
				},
			},
		},
		Features: []ottest.Feature{
			{Tag: "liga", Lookups: []uint16{0}},
			{Tag: "kern", Lookups: []uint16{1, 0}},
			{Tag: "locl", Lookups: []uint16{1}},
		},
		Lookups: []ottest.Lookup{
			{Type: 1, Subtables: [][]byte{ottest.SingleSubstDelta([]uint16{5}, 1)}},
			{Type: 7, Flag: 0x0310, MarkFilteringSet: 4, Subtables: [][]byte{
				ottest.Extension(1, ottest.SingleSubst([]uint16{7}, []uint16{9})),
			}},
		},
	}
}

func TestLayoutHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lyt, err := ParseLayoutTable(TagGSUB, testLayout().Bytes())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint16(1), lyt.Header().Major)
	assert.Equal(t, uint16(0), lyt.Header().Minor)
	assert.Equal(t, 0, lyt.FeatureVariations().Size())
	assert.Equal(t, []Tag{DFLT, T("latn")}, lyt.ScriptTags())
	assert.True(t, lyt.HasScript(T("latn")))
	assert.False(t, lyt.HasScript(T("arab")))
	//
	empty, err := ParseLayoutTable(TagGPOS, nil)
	assert.NoError(t, err)
	assert.Nil(t, empty)
	_, err = ParseLayoutTable(TagGPOS, []byte{0, 1, 0})
	assert.Error(t, err, "truncated header")
}

func TestFindLangSys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lyt, _ := ParseLayoutTable(TagGSUB, testLayout().Bytes())
	lsys, ok := lyt.FindLangSys(T("latn"), T("TRK"))
	if !ok {
		t.Fatalf("expected LangSys for latn/TRK to be found")
	}
	if lsys.RequiredFeatureIndex != 2 {
		t.Errorf("expected required feature to be 2, is %d", lsys.RequiredFeatureIndex)
	}
	assert.Equal(t, 1, lsys.FeatureCount())
	assert.Equal(t, uint16(1), lsys.FeatureIndex(0))
	//
	lsys, ok = lyt.FindLangSys(T("latn"), T("DEU"))
	assert.True(t, ok, "unknown language falls back to default LangSys")
	assert.Equal(t, 2, lsys.FeatureCount())
	assert.Equal(t, uint16(NoRequiredFeature), lsys.RequiredFeatureIndex)
	//
	lsys, ok = lyt.FindLangSys(T("cyrl"), 0)
	assert.True(t, ok, "unknown script falls back to DFLT")
	assert.Equal(t, 1, lsys.FeatureCount())
	//
	var none *LayoutTable
	lsys, ok = none.FindLangSys(T("latn"), 0)
	assert.False(t, ok)
	assert.True(t, lsys.IsVoid())
}

func TestFeaturesAndLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lyt, _ := ParseLayoutTable(TagGSUB, testLayout().Bytes())
	assert.Equal(t, 3, lyt.FeatureCount())
	assert.Equal(t, T("kern"), lyt.FeatureTag(1))
	assert.Equal(t, Tag(0), lyt.FeatureTag(7))
	assert.Equal(t, []uint16{1, 0}, lyt.Feature(1).LookupIndices())
	assert.True(t, lyt.Feature(9).IsNull())
	//
	if n := lyt.LookupCount(); n != 2 {
		t.Fatalf("expected 2 lookups, is %d", n)
	}
	lookup := lyt.Lookup(1)
	assert.Equal(t, LayoutTableLookupType(7), lookup.Type)
	assert.Equal(t, 3, lookup.Flag.MarkAttachmentType())
	assert.Equal(t, uint16(4), lookup.MarkFilteringSet)
	assert.Equal(t, 1, lookup.SubTableCount())
	typ, sub := UnwrapExtension(lookup.Subtable(0))
	assert.Equal(t, LayoutTableLookupType(1), typ)
	assert.Equal(t, uint16(2), sub.U16(0), "wrapped single substitution of format 2")
	assert.Equal(t, 0, lyt.Lookup(5).SubTableCount())
}

func TestFeatureVariationsOfLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	l := testLayout()
	l.FeatureVariations = ottest.FeatureVariations(
		ottest.FeatureVariation{FeatureIndex: 0, Lookups: []uint16{1}},
	)
	lyt, err := ParseLayoutTable(TagGSUB, l.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint16(1), lyt.Header().Minor)
	fv := lyt.FeatureVariations()
	if fv.Size() == 0 {
		t.Fatalf("expected feature variations table")
	}
	subst := SearchFeatureSubstitutionTable(fv, nil)
	alt := ViewFeatureTable(SearchAlternateFeatureTable(subst, 0))
	assert.Equal(t, []uint16{1}, alt.LookupIndices())
}

func TestCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	cov := ParseCoverage(Location(ottest.Coverage(30, 10, 20)))
	for g, inx := range map[GlyphIndex]int{10: 0, 20: 1, 30: 2} {
		i, ok := cov.Match(g)
		if !ok || i != inx {
			t.Errorf("expected glyph %d to have coverage index %d, is %d/%v", g, inx, i, ok)
		}
	}
	_, ok := cov.Match(15)
	assert.False(t, ok)
	//
	cov = ParseCoverage(Location(ottest.CoverageRanges([2]uint16{5, 9}, [2]uint16{20, 20})))
	i, ok := cov.Match(9)
	assert.True(t, ok)
	assert.Equal(t, 4, i)
	i, ok = cov.Match(20)
	assert.True(t, ok)
	assert.Equal(t, 5, i)
	_, ok = cov.Match(10)
	assert.False(t, ok)
	_, ok = cov.Match(4)
	assert.False(t, ok)
	//
	_, ok = ParseCoverage(Location(nil)).Match(0)
	assert.False(t, ok, "empty coverage")
}

func TestClassDefinitions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	cd := ParseClassDefinitions(Location(ottest.ClassDefFormat1(10, 1, 2, 3)))
	assert.Equal(t, 0, cd.Lookup(9))
	assert.Equal(t, 1, cd.Lookup(10))
	assert.Equal(t, 3, cd.Lookup(12))
	assert.Equal(t, 0, cd.Lookup(13))
	//
	cd = ParseClassDefinitions(Location(ottest.ClassDefFormat2(
		ottest.ClassRange{Start: 4, End: 6, Class: 2},
		ottest.ClassRange{Start: 8, End: 8, Class: 5},
	)))
	if c := cd.Lookup(6); c != 2 {
		t.Errorf("expected end glyph of range to have class 2, is %d", c)
	}
	assert.Equal(t, 2, cd.Lookup(4))
	assert.Equal(t, 0, cd.Lookup(7))
	assert.Equal(t, 5, cd.Lookup(8))
	assert.Equal(t, 0, cd.Lookup(9))
	assert.True(t, ParseClassDefinitions(Location(nil)).IsNull())
}

func TestGDef(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	gdefData := ottest.GDEF{
		GlyphClasses:      map[uint16]uint16{1: 1, 2: 1, 3: 2, 4: 3, 5: 3, 6: 4},
		MarkAttachClasses: map[uint16]uint16{4: 1, 5: 2},
		MarkGlyphSets:     [][]uint16{{4}, {5}},
	}
	gdef, err := ParseGDef(gdefData.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint16(2), gdef.Header.Minor)
	classes := gdef.GlyphClassDef()
	assert.Equal(t, BaseGlyph, SearchGlyphClass(classes, 2))
	assert.Equal(t, LigatureGlyph, SearchGlyphClass(classes, 3))
	assert.Equal(t, MarkGlyph, SearchGlyphClass(classes, 5))
	assert.Equal(t, ComponentGlyph, SearchGlyphClass(classes, 6))
	assert.Equal(t, UnclassifiedGlyph, SearchGlyphClass(classes, 7))
	assert.Equal(t, 2, gdef.MarkAttachmentClasses().Lookup(5))
	assert.Equal(t, 2, gdef.MarkGlyphSetCount())
	_, ok := gdef.MarkGlyphSet(1).Match(5)
	assert.True(t, ok)
	_, ok = gdef.MarkGlyphSet(0).Match(5)
	assert.False(t, ok)
	_, ok = gdef.MarkGlyphSet(2).Match(5)
	assert.False(t, ok, "mark glyph set out of range")
	//
	var none *GDef
	assert.Equal(t, UnclassifiedGlyph, SearchGlyphClass(none.GlyphClassDef(), 2))
	assert.Equal(t, 0, none.MarkGlyphSetCount())
}

func TestParseFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if !otf.HasTable(T("cmap")) {
		t.Errorf("expected Go Regular to have a cmap table")
	}
	size := otf.LoadTable(T("head"), nil)
	if size == 0 {
		t.Fatalf("expected head table to be non-empty")
	}
	buf := make([]byte, size)
	assert.Equal(t, size, otf.LoadTable(T("head"), buf))
	assert.Equal(t, uint16(1), u16(buf), "head major version")
	assert.Equal(t, 0, otf.LoadTable(T("XXXX"), nil))
	assert.Contains(t, otf.TableTags(), T("glyf"))
	//
	_, err = Parse([]byte("not a font"))
	assert.Error(t, err)
}
