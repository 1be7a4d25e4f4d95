package hbref

import (
	"fmt"
	"testing"

	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestHBScript(t *testing.T) {
	id := "Plrd"
	script := language.MustParseScript(id)
	hbScript := Script4HB(script)
	hstr := fmt.Sprintf("%x", uint32(hbScript))
	if hstr != "706c7264" {
		t.Logf("script %q: %x => %x", id, script, uint32(hbScript))
		t.Errorf("expected HB script of 706c7264, is %s", hstr)
	}
	if s := ScriptTag4HB(ot.T("latn")); uint32(s) != 0x6c61746e {
		t.Errorf("expected HB script of 6c61746e for latn, is %x", uint32(s))
	}
	if s := ScriptTag4HB(ot.DFLT); s != 0 {
		t.Errorf("expected DFLT to be the unknown HB script, is %x", uint32(s))
	}
}

func TestHBLang(t *testing.T) {
	langT, err := language.Parse("de_DE")
	if err != nil {
		t.Error(err)
	}
	h := Lang4HB(langT)
	if h != "de-de" {
		t.Logf("Go lang = %v", langT)
		t.Errorf("expected HB lang de-de, is %v", h)
	}
}

func TestHBDir(t *testing.T) {
	if dir := Direction4HB(otshaper.RightToLeft); dir != hb.RightToLeft {
		t.Errorf("expected dir to be %d, is %d", hb.RightToLeft, dir)
	}
	if dir := Direction4HB(otshaper.LeftToRight); dir != hb.LeftToRight {
		t.Errorf("expected dir to be %d, is %d", hb.LeftToRight, dir)
	}
}

func TestHBFeatureRange(t *testing.T) {
	f := FeatureRange4HB(otshape.FeatureRange{Feature: ot.T("smcp"), On: true, Start: 3, End: 7})
	assert.Equal(t, Feature4HB(ot.T("smcp")), f.Tag)
	assert.Equal(t, uint32(1), f.Value)
	assert.Equal(t, 3, int(f.Start))
	assert.Equal(t, 7, int(f.End))
	f = FeatureRange4HB(otshape.FeatureRange{Feature: ot.T("kern"), End: -1})
	assert.Equal(t, uint32(0), f.Value)
	assert.Equal(t, 0, int(f.Start))
	assert.Equal(t, globalEnd, int(f.End))
}

func TestCharRangesFromClusters(t *testing.T) {
	r := otshape.Result{
		Clusters:   []int{3, 2, 0, 0},
		CharRanges: make([]otshaper.CharRange, 4),
	}
	setCharRanges(r, 5)
	expected := []otshaper.CharRange{{Start: 3, Length: 2}, {Start: 2, Length: 1}, {Start: 0, Length: 2}, {Start: 0, Length: 2}}
	if !assert.Equal(t, expected, r.CharRanges) {
		t.Errorf("expected char ranges to end at the next cluster, are %v", r.CharRanges)
	}
}

func TestDiff(t *testing.T) {
	a := otshape.Result{
		Glyphs:   []ot.GlyphIndex{1, 2},
		Advances: []int32{500, 600},
		Offsets:  make([]otshaper.Point, 2),
		Clusters: []int{0, 1},
	}
	b := a
	b.Clusters = []int{0, 0}
	assert.Empty(t, Diff(a, b), "clusters are not compared")
	b.Advances = []int32{500, 580}
	assert.NotEmpty(t, Diff(a, b))
	assert.Empty(t, Diff(otshape.Result{}, otshape.Result{Glyphs: []ot.GlyphIndex{}}))
}

func TestHBShape(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.shaping")
	defer teardown()
	//
	gofont := font.FallbackFont()
	shaper, err := NewShaper(gofont.Binary)
	require.NoError(t, err)
	input := "Hello"
	params := otshape.Params{Script: ot.T("latn")}
	ref, err := shaper.Shape(input, language.English, params)
	require.NoError(t, err)
	if ref.Len() != len(input) {
		t.Errorf("expected %d output glyphs, have %d", len(input), ref.Len())
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, ref.Clusters)
	f, err := gofont.Font()
	require.NoError(t, err)
	got, err := otshape.Shape(f, input, params)
	require.NoError(t, err)
	assert.Equal(t, ref.Glyphs, got.Glyphs, "glyphs of shapers differ")
	_, err = shaper.Shape("\xff", language.Und, params)
	assert.Error(t, err)
}

func TestHBInvalidFont(t *testing.T) {
	_, err := NewShaper([]byte("no font"))
	assert.Error(t, err)
}
