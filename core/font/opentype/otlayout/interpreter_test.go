package otlayout

import (
	"testing"

	"github.com/npillmayer/otshaping/core/font/fonttest"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/ot/ottest"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layout creates a layout table for DFLT with a single feature 'test',
// which applies the lookups with the given indices.
func layout(applied []uint16, lookups ...ottest.Lookup) []byte {
	return ottest.Layout{
		Scripts:  []ottest.Script{{Tag: "DFLT", Default: &ottest.LangSys{Required: 0xFFFF, Features: []uint16{0}}}},
		Features: []ottest.Feature{{Tag: "test", Lookups: applied}},
		Lookups:  lookups,
	}.Bytes()
}

func lookup(typ uint16, subtables ...[]byte) ottest.Lookup {
	return ottest.Lookup{Type: typ, Subtables: subtables}
}

func g(s string) []uint16 {
	glyphs := make([]uint16, 0, len(s))
	for _, r := range s {
		glyphs = append(glyphs, uint16(r))
	}
	return glyphs
}

func glyphs(s string) []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, 0, len(s))
	for _, x := range g(s) {
		r = append(r, ot.GlyphIndex(x))
	}
	return r
}

// shape runs the feature 'test' of a font over a text. Glyph IDs equal
// codepoints.
func shape(t *testing.T, ff *fonttest.Font, text string, interp *Interpreter, ppem int) *otshaper.Album {
	t.Helper()
	f := ff.Handle(t)
	t.Cleanup(f.Release)
	b := otshaper.NewPatternBuilder(f)
	b.BeginFeatures(otshaper.Substitution)
	b.AddFeature(ot.T("test"), 0)
	b.EndFeatures()
	b.BeginFeatures(otshaper.Positioning)
	b.AddFeature(ot.T("test"), 0)
	b.EndFeatures()
	album := otshaper.NewAlbum()
	album.Reset([]rune(text))
	p := otshaper.NewTextProcessor(b.Build(), album, otshaper.LeftToRight, otshaper.Forward, interp)
	p.SetPPEM(ppem)
	p.Process()
	return album
}

func gsubFont(applied []uint16, lookups ...ottest.Lookup) *fonttest.Font {
	return &fonttest.Font{
		Tables:         map[ot.Tag][]byte{ot.TagGSUB: layout(applied, lookups...)},
		DefaultAdvance: 500,
	}
}

func TestSingleSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0}, lookup(1,
		ottest.SingleSubstDelta(g("a"), 1),
		ottest.SingleSubst(g("x"), g("y")),
	))
	album := shape(t, ff, "abx", NewInterpreter(), 0)
	assert.Equal(t, glyphs("bby"), album.Glyphs())
}

func TestMultipleSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0}, lookup(2, ottest.MultipleSubst(g("x"), [][]uint16{g("ks")})))
	album := shape(t, ff, "axb", NewInterpreter(), 0)
	require.Equal(t, glyphs("aksb"), album.Glyphs())
	assert.Equal(t, otshaper.CharRange{Start: 1, Length: 1}, album.CharRange(1))
	assert.Equal(t, otshaper.CharRange{Start: 2, Length: 0}, album.CharRange(2))
	assert.Equal(t, []int{1}, album.Association(2))
	assert.Equal(t, otshaper.CharRange{Start: 2, Length: 1}, album.CharRange(3))
}

func TestAlternateSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0}, lookup(3, ottest.AlternateSubst(g("a"), [][]uint16{g("123")})))
	for alt, want := range map[int]string{0: "1b", 2: "3b", -1: "3b", 5: "ab"} {
		album := shape(t, ff, "ab", &Interpreter{Alternate: alt}, 0)
		assert.Equal(t, glyphs(want), album.Glyphs(), "alternate %d", alt)
	}
}

func TestLigatureSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0}, lookup(4, ottest.LigatureSubst(g("f"), [][]ottest.Ligature{{
		{Glyph: 'L', Components: g("fi")},
		{Glyph: 'F', Components: g("f")},
	}})))
	album := shape(t, ff, "ffi!", NewInterpreter(), 0)
	require.Equal(t, glyphs("L!"), album.Glyphs())
	assert.Equal(t, otshaper.CharRange{Start: 0, Length: 3}, album.CharRange(0))
	assert.Equal(t, otshaper.CharRange{Start: 3, Length: 1}, album.CharRange(1))
	album = shape(t, ff, "ffx", NewInterpreter(), 0)
	assert.Equal(t, glyphs("Fx"), album.Glyphs(), "second ligature of set matches")
	album = shape(t, ff, "fff", NewInterpreter(), 0)
	assert.Equal(t, glyphs("Ff"), album.Glyphs())
}

func TestLigatureSkipsMarks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lig := ottest.Lookup{
		Type:      4,
		Flag:      uint16(ot.LOOKUP_FLAG_IGNORE_MARKS),
		Subtables: [][]byte{ottest.LigatureSubst(g("f"), [][]ottest.Ligature{{{Glyph: 'L', Components: g("i")}}})},
	}
	ff := gsubFont([]uint16{0}, lig)
	ff.Tables[ot.TagGDEF] = ottest.GDEF{GlyphClasses: map[uint16]uint16{'^': 3}}.Bytes()
	album := shape(t, ff, "f^i", NewInterpreter(), 0)
	require.Equal(t, glyphs("L^"), album.Glyphs())
	assert.Equal(t, otshaper.TraitMark, album.Traits(1))
	ligRange, mark := album.CharRange(0), album.CharRange(1)
	assert.Equal(t, otshaper.CharRange{Start: 0, Length: 3}, ligRange)
	assert.Equal(t, otshaper.CharRange{Start: 0, Length: 0}, mark, "skipped mark joins the ligature's cluster")
	if mark.Length > 0 && mark.Start < ligRange.End() && ligRange.Start < mark.End() {
		t.Errorf("expected char ranges of ligature and mark not to overlap, are %v and %v", ligRange, mark)
	}
}

func TestExtensionSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0}, lookup(7, ottest.Extension(1, ottest.SingleSubstDelta(g("a"), 2))))
	album := shape(t, ff, "ab", NewInterpreter(), 0)
	assert.Equal(t, glyphs("cb"), album.Glyphs())
}

func TestChainedContextSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0},
		lookup(6, ottest.ChainedContext(
			[][]uint16{g("a")},
			[][]uint16{g("b"), g("c")},
			[][]uint16{g("d")},
			[]ottest.SeqLookup{{SeqIndex: 1, LookupIndex: 1}},
		)),
		lookup(1, ottest.SingleSubst(g("c"), g("X"))),
	)
	for text, want := range map[string]string{
		"abcd":  "abXd",
		"xbcd":  "xbcd", // backtrack does not match
		"abce":  "abce", // lookahead does not match
		"abcdc": "abXdc",
	} {
		album := shape(t, ff, text, NewInterpreter(), 0)
		assert.Equal(t, glyphs(want), album.Glyphs(), "text %q", text)
	}
}

func TestNestedLookupChangingGlyphCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gsubFont([]uint16{0},
		lookup(6, ottest.ChainedContext(nil,
			[][]uint16{g("b"), g("c")},
			nil,
			[]ottest.SeqLookup{{SeqIndex: 0, LookupIndex: 2}, {SeqIndex: 1, LookupIndex: 1}},
		)),
		lookup(1, ottest.SingleSubst(g("c"), g("X"))),
		lookup(2, ottest.MultipleSubst(g("b"), [][]uint16{g("bb")})),
	)
	album := shape(t, ff, "abcd", NewInterpreter(), 0)
	assert.Equal(t, glyphs("abbXd"), album.Glyphs())
}

func TestContextSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	bb := &ottest.Builder{}
	bb.U16(3, 2, 1)
	covs := bb.Placeholder16(2)
	bb.U16(0, 1) // at input position 0 apply lookup 1
	bb.Append16(covs, 0, ottest.Coverage(g("x")...))
	bb.Append16(covs+2, 0, ottest.Coverage(g("y")...))
	ff := gsubFont([]uint16{0},
		lookup(5, bb.Bytes()),
		lookup(1, ottest.SingleSubstDelta(g("x"), -1)),
	)
	album := shape(t, ff, "xyxz", NewInterpreter(), 0)
	assert.Equal(t, glyphs("wyxz"), album.Glyphs())
}

func TestContextRuleFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	toW := lookup(1, ottest.SingleSubstDelta(g("x"), -1))
	apply := []ottest.SeqLookup{{SeqIndex: 0, LookupIndex: 1}}
	classes := ottest.ClassDefFromMap(map[uint16]uint16{'x': 1, 'y': 2})
	for name, sub := range map[string][]byte{
		"glyphs":  ottest.SequenceContext(g("x"), nil, [][]ottest.ContextRule{{{Input: g("y"), Lookups: apply}}}),
		"classes": ottest.SequenceContext(g("x"), classes, [][]ottest.ContextRule{{}, {{Input: []uint16{2}, Lookups: apply}}}),
	} {
		album := shape(t, gsubFont([]uint16{0}, lookup(5, sub), toW), "xyxz", NewInterpreter(), 0)
		assert.Equal(t, glyphs("wyxz"), album.Glyphs(), "context rules by %s", name)
	}
	backtrack := ottest.ClassDefFromMap(map[uint16]uint16{'a': 1})
	input := ottest.ClassDefFromMap(map[uint16]uint16{'x': 1})
	lookahead := ottest.ClassDefFromMap(map[uint16]uint16{'y': 1})
	for name, sub := range map[string][]byte{
		"glyphs": ottest.ChainedSequenceContext(g("x"), nil, [][]ottest.ContextRule{{
			{Backtrack: g("a"), Lookahead: g("y"), Lookups: apply},
		}}),
		"classes": ottest.ChainedSequenceContext(g("x"), [][]byte{backtrack, input, lookahead}, [][]ottest.ContextRule{{}, {
			{Backtrack: []uint16{1}, Lookahead: []uint16{1}, Lookups: apply},
		}}),
	} {
		album := shape(t, gsubFont([]uint16{0}, lookup(6, sub), toW), "axyxy", NewInterpreter(), 0)
		assert.Equal(t, glyphs("awyxy"), album.Glyphs(), "chained context rules by %s", name)
	}
}

// --- Positioning -----------------------------------------------------------

func gposFont(lookups ...ottest.Lookup) *fonttest.Font {
	applied := make([]uint16, len(lookups))
	for i := range applied {
		applied[i] = uint16(i)
	}
	return &fonttest.Font{
		Tables:         map[ot.Tag][]byte{ot.TagGPOS: layout(applied, lookups...)},
		DefaultAdvance: 500,
	}
}

func TestSinglePositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	v := ottest.ValueRecord{
		XPlacement: 10,
		YPlacement: -5,
		XAdvance:   20,
		XAdvDevice: ottest.Device(12, 12, 2, []int{3}),
	}
	ff := gposFont(lookup(1, ottest.SinglePos(g("a"), v)))
	album := shape(t, ff, "ab", NewInterpreter(), 0)
	assert.Equal(t, otshaper.Point{X: 10, Y: -5}, album.Offset(0))
	assert.Equal(t, int32(520), album.Advance(0))
	assert.Equal(t, int32(500), album.Advance(1))
	album = shape(t, ff, "ab", NewInterpreter(), 12)
	if adv := album.Advance(0); adv != 500+20+250 {
		t.Errorf("expected device adjustment of 3px at 12ppem = 250 units, advance is %d", adv)
	}
	album = shape(t, ff, "ab", NewInterpreter(), 13)
	assert.Equal(t, int32(520), album.Advance(0), "no device adjustment outside of size range")
}

func TestDeviceAdjustmentUsesUnitsPerEm(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	v := ottest.ValueRecord{XAdvDevice: ottest.Device(12, 12, 2, []int{3})}
	ff := gposFont(lookup(1, ottest.SinglePos(g("a"), v)))
	head := make([]byte, 54)
	head[18], head[19] = 0x04, 0xB0 // 1200 units per em
	ff.Tables[ot.T("head")] = head
	album := shape(t, ff, "a", NewInterpreter(), 12)
	assert.Equal(t, int32(500+300), album.Advance(0))
}

func TestPairPositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gposFont(lookup(2, ottest.PairPos(g("A"), [][]ottest.PairValue{{
		{Second: 'V', V1: ottest.ValueRecord{XAdvance: -80}},
		{Second: 'W', V1: ottest.ValueRecord{XAdvance: -60}},
	}})))
	album := shape(t, ff, "AVAWAx", NewInterpreter(), 0)
	want := []int32{420, 500, 440, 500, 500, 500}
	for i, adv := range want {
		if a := album.Advance(i); a != adv {
			t.Errorf("expected advance of glyph %d to be %d, is %d", i, adv, a)
		}
	}
}

func TestPairPositioningOfSecondGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	ff := gposFont(lookup(2, ottest.PairPos(g("AV"), [][]ottest.PairValue{
		{{Second: 'V', V1: ottest.ValueRecord{XAdvance: -80}, V2: ottest.ValueRecord{XPlacement: 5}}},
		{{Second: 'A', V1: ottest.ValueRecord{XAdvance: -30}, V2: ottest.ValueRecord{XPlacement: 7}}},
	})))
	album := shape(t, ff, "AVA", NewInterpreter(), 0)
	assert.Equal(t, int32(420), album.Advance(0))
	assert.Equal(t, int32(5), album.Offset(1).X)
	assert.Equal(t, int32(500), album.Advance(1), "second glyph of a pair is skipped")
}

func TestClassPairPositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	sub := ottest.PairPosClasses(g("AB"),
		ottest.ClassDefFromMap(map[uint16]uint16{'A': 1}),
		ottest.ClassDefFromMap(map[uint16]uint16{'V': 1}),
		[][]ottest.ValueRecord{
			{{}, {}},
			{{}, {XAdvance: -50}},
		})
	ff := gposFont(lookup(2, sub))
	album := shape(t, ff, "AVBV", NewInterpreter(), 0)
	assert.Equal(t, int32(450), album.Advance(0))
	assert.Equal(t, int32(500), album.Advance(2), "class 0 of B has no adjustment")
}

func TestMarkAttachment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	markToBase := ottest.MarkAttachment(
		g("^"), []ottest.MarkRecord{{Class: 0, Anchor: ottest.Anchor{X: 100, Y: 0}}},
		g("a"), [][]ottest.Anchor{{{X: 250, Y: 600}}}, 1)
	markToMark := ottest.MarkAttachment(
		g("^"), []ottest.MarkRecord{{Class: 0, Anchor: ottest.Anchor{X: 100, Y: 0}}},
		g("^"), [][]ottest.Anchor{{{X: 100, Y: 200}}}, 1)
	ff := gposFont(lookup(4, markToBase), lookup(6, markToMark))
	ff.Tables[ot.TagGDEF] = ottest.GDEF{GlyphClasses: map[uint16]uint16{'a': 1, '^': 3}}.Bytes()
	ff.Advances = map[ot.GlyphIndex]int32{'^': 0}
	album := shape(t, ff, "a^^", NewInterpreter(), 0)
	// pen positions: a = 0, ^ = 500, ^ = 500
	assert.Equal(t, 0, album.Attachment(1))
	assert.Equal(t, 1, album.Attachment(2), "mark to mark overrides mark to base")
	assert.Equal(t, otshaper.Point{X: 250 - 100 - 500, Y: 600}, album.Offset(1))
	assert.Equal(t, otshaper.Point{X: 250 - 100 - 500, Y: 800}, album.Offset(2))
}

func TestMarkToLigature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lig := ottest.Lookup{
		Type:      4,
		Flag:      uint16(ot.LOOKUP_FLAG_IGNORE_MARKS),
		Subtables: [][]byte{ottest.LigatureSubst(g("f"), [][]ottest.Ligature{{{Glyph: 'L', Components: g("i")}}})},
	}
	markToLig := ottest.MarkToLigature(
		g("^"), []ottest.MarkRecord{{Class: 0, Anchor: ottest.Anchor{X: 50, Y: 0}}},
		g("L"), [][][]ottest.Anchor{{{{X: 100, Y: 700}}, {{X: 400, Y: 700}}}}, 1)
	ff := gsubFont([]uint16{0}, lig)
	ff.Tables[ot.TagGPOS] = layout([]uint16{0}, lookup(5, markToLig))
	ff.Tables[ot.TagGDEF] = ottest.GDEF{GlyphClasses: map[uint16]uint16{'L': 2, '^': 3}}.Bytes()
	ff.Advances = map[ot.GlyphIndex]int32{'^': 0}
	album := shape(t, ff, "f^i^", NewInterpreter(), 0)
	require.Equal(t, glyphs("L^^"), album.Glyphs())
	// pen positions: L = 0, ^ = 500, ^ = 500
	assert.Equal(t, 0, album.Attachment(1))
	assert.Equal(t, 0, album.Attachment(2))
	assert.Equal(t, otshaper.Point{X: 100 - 50 - 500, Y: 700}, album.Offset(1), "mark inside ligature goes to first component")
	assert.Equal(t, otshaper.Point{X: 400 - 50 - 500, Y: 700}, album.Offset(2), "trailing mark goes to last component")
}

func TestCursiveAttachment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	cursive := ottest.CursivePos(g("xyz"), []ottest.EntryExit{
		{Exit: &ottest.Anchor{X: 400, Y: 100}},
		{Entry: &ottest.Anchor{X: 50, Y: 20}, Exit: &ottest.Anchor{X: 450, Y: 200}},
		{Entry: &ottest.Anchor{X: 0, Y: 0}},
	})
	ff := gposFont(lookup(3, cursive))
	album := shape(t, ff, "xyz", NewInterpreter(), 0)
	assert.Equal(t, int32(400), album.Advance(0), "advance ends at exit anchor")
	assert.Equal(t, int32(400), album.Advance(1))
	assert.Equal(t, int32(500), album.Advance(2))
	assert.Equal(t, otshaper.Point{X: 0, Y: 0}, album.Offset(0))
	assert.Equal(t, otshaper.Point{X: -50, Y: 80}, album.Offset(1))
	assert.Equal(t, otshaper.Point{X: 0, Y: 280}, album.Offset(2), "vertical offsets add up along the chain")
	assert.Equal(t, 1, album.Attachment(2))
	assert.True(t, album.IsCursive(2))
	//
	rtl := ottest.Lookup{Type: 3, Flag: uint16(ot.LOOKUP_FLAG_RIGHT_TO_LEFT), Subtables: [][]byte{cursive}}
	album = shape(t, gposFont(rtl), "xy", NewInterpreter(), 0)
	assert.Equal(t, 1, album.Attachment(0), "last glyph of chain stays on baseline")
	assert.Equal(t, otshaper.InvalidIndex, album.Attachment(1))
	assert.Equal(t, otshaper.Point{X: 0, Y: 20 - 100}, album.Offset(0))
	assert.Equal(t, otshaper.Point{X: -50, Y: 0}, album.Offset(1))
}

func TestMarkWithoutBase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	markToBase := ottest.MarkAttachment(
		g("^"), []ottest.MarkRecord{{Class: 0, Anchor: ottest.Anchor{X: 100, Y: 0}}},
		g("a"), [][]ottest.Anchor{{{X: 250, Y: 600}}}, 1)
	ff := gposFont(lookup(4, markToBase))
	ff.Tables[ot.TagGDEF] = ottest.GDEF{GlyphClasses: map[uint16]uint16{'a': 1, 'b': 1, '^': 3}}.Bytes()
	album := shape(t, ff, "^b^", NewInterpreter(), 0)
	assert.Equal(t, otshaper.InvalidIndex, album.Attachment(0), "leading mark has no base")
	assert.Equal(t, otshaper.InvalidIndex, album.Attachment(2), "base not covered")
	assert.Equal(t, otshaper.Point{}, album.Offset(2))
}

func TestUnsupportedLookupIsSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	reverse := &ottest.Builder{}
	reverse.U16(1)
	cov := reverse.Placeholder16(1)
	reverse.U16(0, 0, 1, 'b')
	reverse.Append16(cov, 0, ottest.Coverage(g("a")...))
	ff := gsubFont([]uint16{0}, lookup(8, reverse.Bytes()))
	album := shape(t, ff, "aa", NewInterpreter(), 0)
	assert.Equal(t, glyphs("aa"), album.Glyphs(), "reverse chaining substitution is not applied")
}
