package otshaper

import "github.com/npillmayer/otshaping/core/font/opentype/ot"

// Locator is a filtered cursor over a range of album glyphs. It visits the
// glyphs a lookup has to consider and skips the others:
//
//   - placeholders are always skipped,
//   - base glyphs, ligatures and marks are skipped if the lookup flag says so,
//   - marks are skipped if they do not belong to the mark attachment class
//     or mark filtering set requested by the lookup flag,
//   - if a feature mask is set, glyphs not sharing a bit with it are skipped.
//
// A locator tolerates changes of the album's glyph count between calls: the
// end of its range moves with the glyph count.
type Locator struct {
	Index int // current glyph, or InvalidIndex

	album       *Album
	gdef        *ot.GDef
	markClasses ot.ClassDefinitions
	markSet     ot.Coverage
	flag        ot.LayoutTableLookupFlag
	mask        FeatureMask
	start       int
	limit       int
	next        int // where the next forward search starts
	count       int // album glyph count when limit was last adjusted
}

// NewLocator creates a locator for an album. gdef may be nil; it is
// needed for lookup flags referencing mark attachment classes or mark
// filtering sets.
func NewLocator(album *Album, gdef *ot.GDef) *Locator {
	assert(album != nil, "locator needs an album")
	l := &Locator{album: album, gdef: gdef, Index: InvalidIndex}
	if gdef != nil {
		l.markClasses = gdef.MarkAttachmentClasses()
	}
	return l
}

// Album returns the album the locator walks.
func (l *Locator) Album() *Album {
	return l.album
}

// GDef returns the GDEF table of the locator, if any.
func (l *Locator) GDef() *ot.GDef {
	return l.gdef
}

// Reset sets the range [start, limit) and invalidates the cursor.
func (l *Locator) Reset(start, limit int) {
	n := l.album.GlyphCount()
	assert(start >= 0 && start <= limit && limit <= n,
		"locator range [%d,%d) invalid for %d glyphs", start, limit, n)
	l.start, l.limit = start, limit
	l.next = start
	l.count = n
	l.Index = InvalidIndex
}

// Range returns the current range of the locator.
func (l *Locator) Range() (start, limit int) {
	l.adjust()
	return l.start, l.limit
}

// SetLookupFlag configures the skipping of glyph classes. The cursor is not
// moved.
func (l *Locator) SetLookupFlag(flag ot.LayoutTableLookupFlag) {
	l.flag = flag
}

// LookupFlag returns the current lookup flag.
func (l *Locator) LookupFlag() ot.LayoutTableLookupFlag {
	return l.flag
}

// SetMarkFilteringSet selects the GDEF mark glyph set used if the lookup flag
// has USE_MARK_FILTERING_SET set.
func (l *Locator) SetMarkFilteringSet(i uint16) {
	l.markSet = l.gdef.MarkGlyphSet(int(i))
}

// SetFeatureMask restricts the locator to glyphs sharing a bit with mask.
// A mask of 0 disables the restriction. The cursor is not moved.
func (l *Locator) SetFeatureMask(mask FeatureMask) {
	l.mask = mask
}

// FeatureMask returns the current feature mask filter.
func (l *Locator) FeatureMask() FeatureMask {
	return l.mask
}

// adjust moves the end of the range by the change of the album's glyph count.
func (l *Locator) adjust() {
	if n := l.album.GlyphCount(); n != l.count {
		l.limit += n - l.count
		if l.limit < l.start {
			l.limit = l.start
		}
		if l.limit > n {
			l.limit = n
		}
		l.count = n
	}
}

// IsIgnored reports if glyph i would be skipped by the locator.
func (l *Locator) IsIgnored(i int) bool {
	traits := l.album.Traits(i)
	if traits&TraitPlaceholder != 0 {
		return true
	}
	if l.flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 && traits&TraitBase != 0 {
		return true
	}
	if l.flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 && traits&TraitLigature != 0 {
		return true
	}
	if traits&TraitMark != 0 {
		if l.flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
			return true
		}
		if l.flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
			if _, ok := l.markSet.Match(l.album.Glyph(i)); !ok {
				return true
			}
		} else if class := l.flag.MarkAttachmentType(); class != 0 {
			if l.markClasses.Lookup(l.album.Glyph(i)) != class {
				return true
			}
		}
	}
	if l.mask != 0 && l.album.FeatureMask(i)&l.mask == 0 {
		return true
	}
	return false
}

// MoveNext advances the cursor to the next glyph not ignored. It returns false
// and invalidates the cursor if there is none.
func (l *Locator) MoveNext() bool {
	l.adjust()
	for i := max(l.next, l.start); i < l.limit; i++ {
		if !l.IsIgnored(i) {
			l.Index = i
			l.next = i + 1
			return true
		}
	}
	l.Index = InvalidIndex
	l.next = l.limit
	return false
}

// Skip calls MoveNext n times and returns the result of the last call.
// It stops as soon as MoveNext fails.
func (l *Locator) Skip(n int) bool {
	for ; n > 0; n-- {
		if !l.MoveNext() {
			return false
		}
	}
	return l.Index != InvalidIndex
}

// JumpTo makes the next call to MoveNext start its search at index i.
// Glyph i itself is not checked. The cursor is invalidated.
func (l *Locator) JumpTo(i int) {
	l.adjust()
	assert(i >= l.start && i <= l.limit, "cannot jump to %d outside [%d,%d]", i, l.start, l.limit)
	l.next = i
	l.Index = InvalidIndex
}

// GetAfter returns the first glyph after i which is not ignored, or
// InvalidIndex. The cursor is not moved.
func (l *Locator) GetAfter(i int) int {
	l.adjust()
	for j := max(i+1, l.start); j < l.limit; j++ {
		if !l.IsIgnored(j) {
			return j
		}
	}
	return InvalidIndex
}

// GetBefore returns the last glyph before i which is not ignored, or
// InvalidIndex. The cursor is not moved.
func (l *Locator) GetBefore(i int) int {
	l.adjust()
	for j := min(i, l.limit) - 1; j >= l.start; j-- {
		if !l.IsIgnored(j) {
			return j
		}
	}
	return InvalidIndex
}
