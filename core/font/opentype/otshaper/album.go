package otshaper

import (
	"fmt"
	"slices"

	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// GlyphTraits classify the role of a glyph. Lookups skip glyphs depending on
// their traits.
type GlyphTraits uint16

// Glyph traits. Base, Ligature, Mark and Component correspond to the GDEF
// glyph classes. Placeholders are left behind by ligature substitution and
// removed at wrap-up.
const (
	TraitNone        GlyphTraits = 0
	TraitBase        GlyphTraits = 1 << (iota - 1)
	TraitLigature                // multiple character, spacing glyph
	TraitMark                    // non-spacing combining glyph
	TraitComponent               // part of single character, spacing glyph
	TraitPlaceholder             // consumed by a ligature
)

func (t GlyphTraits) String() string {
	if t == TraitNone {
		return "none"
	}
	s := ""
	for i, name := range []string{"base", "liga", "mark", "comp", "placeholder"} {
		if t&(1<<i) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	return s
}

// FeatureMask scopes feature units to glyphs. A glyph takes part in a
// feature unit with a non-zero mask if the glyph's mask shares a bit with it.
type FeatureMask uint32

// InvalidIndex is the index returned by glyph searches which found nothing.
const InvalidIndex = -1

// Point is a position or offset in font units.
type Point struct {
	X, Y int32
}

// CharRange is a range of codepoints of the input text, measured in runes.
type CharRange struct {
	Start, Length int
}

// End is the rune index following the range.
func (r CharRange) End() int {
	return r.Start + r.Length
}

// Union returns the smallest range covering r and other. Empty ranges do not
// contribute.
func (r CharRange) Union(other CharRange) CharRange {
	if other.Length == 0 {
		return r
	}
	if r.Length == 0 {
		return other
	}
	start, end := min(r.Start, other.Start), max(r.End(), other.End())
	return CharRange{Start: start, Length: end - start}
}

// AlbumState is the processing state of an album.
type AlbumState uint8

// Album states, in processing order.
const (
	Empty AlbumState = iota
	Filling
	Filled
	Arranging
	Arranged
	WrappedUp
)

func (s AlbumState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Filling:
		return "filling"
	case Filled:
		return "filled"
	case Arranging:
		return "arranging"
	case Arranged:
		return "arranged"
	case WrappedUp:
		return "wrapped-up"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// glyphRecord holds the state of one glyph.
type glyphRecord struct {
	id      ot.GlyphIndex
	traits  GlyphTraits
	mask    FeatureMask
	assoc   []int // indices of glyphs this glyph is associated with
	offset  Point
	advance int32
	chars   CharRange
	attach  int // index of the glyph this one is attached to, or InvalidIndex
	cursive bool
}

// Album is the glyph buffer of a shaping run. Every mutation is valid only in
// a certain state:
//
//	Empty      BeginFilling
//	Filling    AddGlyph, ReserveGlyphs, ReplaceGlyphs, Set…/…Traits, EndFilling
//	Filled     BeginArranging
//	Arranging  SetX, SetY, SetAdvance, SetAttachment, SetCursiveAttachment, EndArranging
//	Arranged   WrapUp
//
// Calling an operation in the wrong state is a bug and panics.
// Readers are valid in any state.
type Album struct {
	text   []rune
	state  AlbumState
	glyphs []glyphRecord
}

// NewAlbum creates an empty album.
func NewAlbum() *Album {
	return &Album{}
}

// Reset clears the album and binds it to a new input text. The album may be
// in any state.
func (a *Album) Reset(text []rune) {
	a.text = text
	a.state = Empty
	a.glyphs = a.glyphs[:0]
}

// Text returns the input text of the album.
func (a *Album) Text() []rune {
	return a.text
}

// State returns the processing state of the album.
func (a *Album) State() AlbumState {
	return a.state
}

func (a *Album) mustBe(state AlbumState, op string) {
	assert(a.state == state, "album operation %s requires state %s, album is %s", op, state, a.state)
}

func (a *Album) checkIndex(i int) {
	assert(i >= 0 && i < len(a.glyphs), "glyph index %d out of range [0,%d)", i, len(a.glyphs))
}

// --- Filling ---------------------------------------------------------------

// BeginFilling starts glyph discovery.
func (a *Album) BeginFilling() {
	a.mustBe(Empty, "BeginFilling")
	a.state = Filling
}

// AddGlyph appends a glyph for the codepoints text[charStart:charStart+charLength].
func (a *Album) AddGlyph(glyph ot.GlyphIndex, charStart, charLength int) {
	a.mustBe(Filling, "AddGlyph")
	assert(charStart >= 0 && charLength >= 0 && charStart+charLength <= len(a.text),
		"char range (%d,%d) exceeds text of length %d", charStart, charLength, len(a.text))
	a.glyphs = append(a.glyphs, glyphRecord{
		id:     glyph,
		chars:  CharRange{Start: charStart, Length: charLength},
		attach: InvalidIndex,
	})
}

// EndFilling closes glyph substitution.
func (a *Album) EndFilling() {
	a.mustBe(Filling, "EndFilling")
	a.state = Filled
}

// ReserveGlyphs inserts count empty glyph records at index at. Associations
// to glyphs at or after at are shifted.
func (a *Album) ReserveGlyphs(at, count int) {
	a.mustBe(Filling, "ReserveGlyphs")
	assert(at >= 0 && at <= len(a.glyphs), "cannot reserve glyphs at %d, album has %d", at, len(a.glyphs))
	if count <= 0 {
		return
	}
	start := len(a.text)
	if at < len(a.glyphs) {
		start = a.glyphs[at].chars.Start
	} else if at > 0 {
		start = a.glyphs[at-1].chars.End()
	}
	if start > len(a.text) {
		start = len(a.text)
	}
	recs := make([]glyphRecord, count)
	for k := range recs {
		recs[k] = glyphRecord{chars: CharRange{Start: start}, attach: InvalidIndex}
	}
	a.remap(func(j int) int {
		if j >= at {
			return j + count
		}
		return j
	})
	a.glyphs = slices.Insert(a.glyphs, at, recs...)
}

// ReplaceGlyphs replaces the remove glyphs starting at index at by glyphs.
// The first new glyph covers the codepoints of all removed glyphs; further
// new glyphs have an empty char range and are associated to the first one.
// New glyphs inherit the feature mask of glyph at and have no traits.
// Associations to removed glyphs are redirected to the first new glyph.
func (a *Album) ReplaceGlyphs(at, remove int, glyphs []ot.GlyphIndex) {
	a.mustBe(Filling, "ReplaceGlyphs")
	assert(at >= 0 && remove > 0 && at+remove <= len(a.glyphs),
		"cannot replace %d glyphs at %d, album has %d", remove, at, len(a.glyphs))
	assert(len(glyphs) > 0, "cannot replace glyphs by nothing")
	chars := a.glyphs[at].chars
	for j := at + 1; j < at+remove; j++ {
		chars = chars.Union(a.glyphs[j].chars)
	}
	mask := a.glyphs[at].mask
	delta := len(glyphs) - remove
	a.remap(func(j int) int {
		switch {
		case j < at:
			return j
		case j < at+remove:
			return at
		}
		return j + delta
	})
	recs := make([]glyphRecord, len(glyphs))
	for k, g := range glyphs {
		recs[k] = glyphRecord{id: g, mask: mask, attach: InvalidIndex}
		if k == 0 {
			recs[k].chars = chars
		} else {
			recs[k].chars = CharRange{Start: chars.End()}
			recs[k].assoc = []int{at}
		}
	}
	a.glyphs = slices.Replace(a.glyphs, at, at+remove, recs...)
}

// remap rewrites every association by f.
func (a *Album) remap(f func(int) int) {
	for i := range a.glyphs {
		for k, j := range a.glyphs[i].assoc {
			a.glyphs[i].assoc[k] = f(j)
		}
	}
}

// SetGlyph replaces the glyph ID at index i.
func (a *Album) SetGlyph(i int, glyph ot.GlyphIndex) {
	a.mustBe(Filling, "SetGlyph")
	a.checkIndex(i)
	a.glyphs[i].id = glyph
}

// SetTraits replaces the traits of glyph i.
func (a *Album) SetTraits(i int, traits GlyphTraits) {
	a.mustBe(Filling, "SetTraits")
	a.checkIndex(i)
	a.glyphs[i].traits = traits
}

// InsertTraits adds traits to glyph i.
func (a *Album) InsertTraits(i int, traits GlyphTraits) {
	a.mustBe(Filling, "InsertTraits")
	a.checkIndex(i)
	a.glyphs[i].traits |= traits
}

// RemoveTraits clears traits of glyph i.
func (a *Album) RemoveTraits(i int, traits GlyphTraits) {
	a.mustBe(Filling, "RemoveTraits")
	a.checkIndex(i)
	a.glyphs[i].traits &^= traits
}

// SetFeatureMask replaces the feature mask of glyph i.
func (a *Album) SetFeatureMask(i int, mask FeatureMask) {
	a.mustBe(Filling, "SetFeatureMask")
	a.checkIndex(i)
	a.glyphs[i].mask = mask
}

// SetCharRange replaces the codepoint range of glyph i.
func (a *Album) SetCharRange(i int, r CharRange) {
	a.mustBe(Filling, "SetCharRange")
	a.checkIndex(i)
	assert(r.Start >= 0 && r.Length >= 0 && r.End() <= len(a.text),
		"char range (%d,%d) exceeds text of length %d", r.Start, r.Length, len(a.text))
	a.glyphs[i].chars = r
}

// SetAssociation replaces the associations of glyph i.
func (a *Album) SetAssociation(i int, assoc []int) {
	a.mustBe(Filling, "SetAssociation")
	a.checkIndex(i)
	a.glyphs[i].assoc = slices.Clone(assoc)
}

// SetSingleAssociation associates glyph i with glyph j only.
func (a *Album) SetSingleAssociation(i, j int) {
	a.mustBe(Filling, "SetSingleAssociation")
	a.checkIndex(i)
	a.glyphs[i].assoc = []int{j}
}

// --- Arranging -------------------------------------------------------------

// BeginArranging starts glyph positioning. The glyph count is frozen from
// now on.
func (a *Album) BeginArranging() {
	a.mustBe(Filled, "BeginArranging")
	a.state = Arranging
}

// SetX sets the horizontal offset of glyph i.
func (a *Album) SetX(i int, x int32) {
	a.mustBe(Arranging, "SetX")
	a.checkIndex(i)
	a.glyphs[i].offset.X = x
}

// SetY sets the vertical offset of glyph i.
func (a *Album) SetY(i int, y int32) {
	a.mustBe(Arranging, "SetY")
	a.checkIndex(i)
	a.glyphs[i].offset.Y = y
}

// SetAdvance sets the advance of glyph i.
func (a *Album) SetAdvance(i int, advance int32) {
	a.mustBe(Arranging, "SetAdvance")
	a.checkIndex(i)
	a.glyphs[i].advance = advance
}

// SetAttachment attaches glyph i to glyph base. The offset of i is then
// relative to base and will be resolved after all positioning lookups have
// been applied. base = InvalidIndex detaches i.
func (a *Album) SetAttachment(i, base int) {
	a.mustBe(Arranging, "SetAttachment")
	a.checkIndex(i)
	if base != InvalidIndex {
		a.checkIndex(base)
		assert(base != i, "glyph %d cannot be attached to itself", i)
	}
	a.glyphs[i].attach = base
	a.glyphs[i].cursive = false
}

// SetCursiveAttachment attaches glyph i to glyph parent of a cursive chain.
// Only the vertical offset of i is relative to parent; i keeps its pen
// position.
func (a *Album) SetCursiveAttachment(i, parent int) {
	a.SetAttachment(i, parent)
	a.glyphs[i].cursive = parent != InvalidIndex
}

// EndArranging closes glyph positioning.
func (a *Album) EndArranging() {
	a.mustBe(Arranging, "EndArranging")
	a.state = Arranged
}

// WrapUp finalizes the album: placeholder glyphs are removed and the album
// becomes read-only.
func (a *Album) WrapUp() {
	a.mustBe(Arranged, "WrapUp")
	index := make([]int, len(a.glyphs)) // old index → new index
	kept := a.glyphs[:0]
	for i, g := range a.glyphs {
		if g.traits&TraitPlaceholder != 0 {
			index[i] = max(len(kept)-1, 0)
			continue
		}
		index[i] = len(kept)
		kept = append(kept, g)
	}
	a.glyphs = kept
	a.remap(func(j int) int {
		if j >= 0 && j < len(index) {
			return index[j]
		}
		return j
	})
	for i := range a.glyphs {
		if at := a.glyphs[i].attach; at != InvalidIndex {
			a.glyphs[i].attach = index[at]
		}
	}
	a.state = WrappedUp
	tracer().Debugf("album wrapped up with %d glyphs", len(a.glyphs))
}

// --- Readers ---------------------------------------------------------------

// GlyphCount returns the number of glyphs in the album.
func (a *Album) GlyphCount() int {
	return len(a.glyphs)
}

// Glyph returns the glyph ID at index i.
func (a *Album) Glyph(i int) ot.GlyphIndex {
	a.checkIndex(i)
	return a.glyphs[i].id
}

// Traits returns the traits of glyph i.
func (a *Album) Traits(i int) GlyphTraits {
	a.checkIndex(i)
	return a.glyphs[i].traits
}

// FeatureMask returns the feature mask of glyph i.
func (a *Album) FeatureMask(i int) FeatureMask {
	a.checkIndex(i)
	return a.glyphs[i].mask
}

// Association returns the associations of glyph i. Clients must not modify
// the slice.
func (a *Album) Association(i int) []int {
	a.checkIndex(i)
	return a.glyphs[i].assoc
}

// Offset returns the offset of glyph i.
func (a *Album) Offset(i int) Point {
	a.checkIndex(i)
	return a.glyphs[i].offset
}

// Advance returns the advance of glyph i.
func (a *Album) Advance(i int) int32 {
	a.checkIndex(i)
	return a.glyphs[i].advance
}

// Attachment returns the index of the glyph that glyph i is attached to, or
// InvalidIndex.
func (a *Album) Attachment(i int) int {
	a.checkIndex(i)
	return a.glyphs[i].attach
}

// IsCursive is true if glyph i is attached to its predecessor or successor
// of a cursive chain instead of being a mark attached to a base.
func (a *Album) IsCursive(i int) bool {
	a.checkIndex(i)
	return a.glyphs[i].cursive
}

// CharRange returns the codepoint range of glyph i.
func (a *Album) CharRange(i int) CharRange {
	a.checkIndex(i)
	return a.glyphs[i].chars
}

// Glyphs returns a copy of all glyph IDs.
func (a *Album) Glyphs() []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, len(a.glyphs))
	for i, g := range a.glyphs {
		r[i] = g.id
	}
	return r
}

func (a *Album) String() string {
	return fmt.Sprintf("album[%s|%v]", a.state, a.Glyphs())
}
