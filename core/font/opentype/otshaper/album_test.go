package otshaper

import (
	"testing"

	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	tassert "github.com/stretchr/testify/assert"
)

// filledAlbum creates an album in state Filling with one glyph per rune,
// glyph ID = rune.
func filledAlbum(text string) *Album {
	a := NewAlbum()
	a.Reset([]rune(text))
	a.BeginFilling()
	for i, r := range []rune(text) {
		a.AddGlyph(ot.GlyphIndex(r), i, 1)
	}
	return a
}

func TestAlbumStateMachine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	a := NewAlbum()
	a.Reset([]rune("ab"))
	tassert.Equal(t, Empty, a.State())
	tassert.Panics(t, func() { a.AddGlyph(1, 0, 1) }, "AddGlyph before BeginFilling")
	tassert.Panics(t, func() { a.BeginArranging() }, "BeginArranging before filling")
	a.BeginFilling()
	a.AddGlyph(1, 0, 1)
	tassert.Panics(t, func() { a.AddGlyph(2, 1, 2) }, "char range beyond text")
	tassert.Panics(t, func() { a.SetX(0, 10) }, "SetX while filling")
	tassert.Panics(t, func() { a.WrapUp() }, "WrapUp while filling")
	a.EndFilling()
	tassert.Equal(t, Filled, a.State())
	tassert.Panics(t, func() { a.AddGlyph(2, 1, 1) }, "AddGlyph after EndFilling")
	tassert.Panics(t, func() { a.SetGlyph(0, 2) }, "SetGlyph after EndFilling")
	a.BeginArranging()
	a.SetX(0, 10)
	tassert.Panics(t, func() { a.SetTraits(0, TraitBase) }, "SetTraits while arranging")
	tassert.Panics(t, func() { a.SetAttachment(0, 0) }, "self attachment")
	tassert.Panics(t, func() { a.SetAdvance(1, 10) }, "index out of range")
	a.EndArranging()
	a.WrapUp()
	tassert.Equal(t, WrappedUp, a.State())
	tassert.Panics(t, func() { a.WrapUp() }, "WrapUp twice")
	tassert.Equal(t, 1, a.GlyphCount())
	tassert.Equal(t, int32(10), a.Offset(0).X)
	a.Reset([]rune("c"))
	tassert.Equal(t, Empty, a.State())
	tassert.Equal(t, 0, a.GlyphCount())
}

func TestAlbumContractViolationIsInternalError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok {
			t.Fatalf("expected panic with an error, is %v", r)
		}
		if core.Code(err) != core.EINTERNAL {
			t.Errorf("expected error code %d, is %d", core.EINTERNAL, core.Code(err))
		}
	}()
	NewAlbum().EndFilling()
}

func TestAlbumReplaceGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	a := filledAlbum("abcd")
	a.SetFeatureMask(1, 4)
	a.SetSingleAssociation(3, 2)
	// ligature-like: b c → X
	a.ReplaceGlyphs(1, 2, []ot.GlyphIndex{'X'})
	tassert.Equal(t, []ot.GlyphIndex{'a', 'X', 'd'}, a.Glyphs())
	tassert.Equal(t, CharRange{1, 2}, a.CharRange(1))
	tassert.Equal(t, FeatureMask(4), a.FeatureMask(1), "replacement inherits the feature mask")
	tassert.Equal(t, []int{1}, a.Association(2), "association into replaced range goes to replacement")
	// multiple-like: a → A B C
	a.ReplaceGlyphs(0, 1, []ot.GlyphIndex{'A', 'B', 'C'})
	tassert.Equal(t, []ot.GlyphIndex{'A', 'B', 'C', 'X', 'd'}, a.Glyphs())
	tassert.Equal(t, CharRange{0, 1}, a.CharRange(0))
	tassert.Equal(t, CharRange{1, 0}, a.CharRange(1))
	tassert.Equal(t, CharRange{1, 0}, a.CharRange(2))
	tassert.Equal(t, []int{0}, a.Association(1))
	tassert.Equal(t, []int{0}, a.Association(2))
	tassert.Equal(t, []int{3}, a.Association(4), "associations behind the edit are shifted")
	tassert.Panics(t, func() { a.ReplaceGlyphs(4, 2, []ot.GlyphIndex{1}) })
	tassert.Panics(t, func() { a.ReplaceGlyphs(0, 1, nil) })
}

func TestAlbumReserveGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	a := filledAlbum("abc")
	a.SetSingleAssociation(2, 1)
	a.SetSingleAssociation(0, 0)
	a.ReserveGlyphs(1, 2)
	tassert.Equal(t, 5, a.GlyphCount())
	tassert.Equal(t, []ot.GlyphIndex{'a', 0, 0, 'b', 'c'}, a.Glyphs())
	tassert.Equal(t, CharRange{1, 0}, a.CharRange(1))
	tassert.Equal(t, []int{3}, a.Association(4))
	tassert.Equal(t, []int{0}, a.Association(0))
	a.ReserveGlyphs(5, 1)
	tassert.Equal(t, CharRange{3, 0}, a.CharRange(5))
	a.ReserveGlyphs(0, 0)
	tassert.Equal(t, 6, a.GlyphCount())
}

func TestAlbumTraits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	a := filledAlbum("a")
	a.SetTraits(0, TraitBase)
	a.InsertTraits(0, TraitMark|TraitComponent)
	a.RemoveTraits(0, TraitComponent)
	tassert.Equal(t, TraitBase|TraitMark, a.Traits(0))
	tassert.Equal(t, "base|mark", a.Traits(0).String())
	tassert.Equal(t, "none", TraitNone.String())
}

func TestAlbumWrapUpRemovesPlaceholders(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	a := filledAlbum("ffi!")
	a.ReplaceGlyphs(0, 1, []ot.GlyphIndex{'L'}) // ligature for f f i
	a.SetCharRange(0, CharRange{0, 3})
	a.SetTraits(0, TraitLigature)
	a.SetTraits(1, TraitPlaceholder)
	a.SetTraits(2, TraitPlaceholder)
	a.SetSingleAssociation(1, 0)
	a.SetSingleAssociation(2, 0)
	a.SetSingleAssociation(3, 2) // points to a placeholder
	a.EndFilling()
	a.BeginArranging()
	a.SetAttachment(3, 0)
	a.EndArranging()
	a.WrapUp()
	tassert.Equal(t, []ot.GlyphIndex{'L', '!'}, a.Glyphs())
	tassert.Equal(t, CharRange{0, 3}, a.CharRange(0))
	tassert.Equal(t, CharRange{3, 1}, a.CharRange(1))
	tassert.Equal(t, []int{0}, a.Association(1), "association to placeholder goes to preceding glyph")
	tassert.Equal(t, 0, a.Attachment(1))
}

func TestCharRangeUnion(t *testing.T) {
	r := CharRange{2, 3}
	tassert.Equal(t, CharRange{1, 4}, r.Union(CharRange{1, 2}))
	tassert.Equal(t, CharRange{2, 6}, r.Union(CharRange{7, 1}))
	tassert.Equal(t, r, r.Union(CharRange{9, 0}), "empty ranges do not contribute")
	tassert.Equal(t, r, CharRange{0, 0}.Union(r))
	tassert.Equal(t, 5, r.End())
}
