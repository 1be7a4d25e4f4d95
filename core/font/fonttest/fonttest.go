/*
Package fonttest provides fonts for testing code which consumes the font
capability protocol.

A Font is assembled from tables built in memory, usually with package
ottest, together with a character map and glyph advances:

	f := &fonttest.Font{
	    Tables: map[ot.Tag][]byte{ot.TagGSUB: gsub.Bytes()},
	    CMap:   map[rune]ot.GlyphIndex{'f': 10, 'i': 11},
	}
	handle := f.Handle(t)
	defer handle.Release()

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fonttest

import (
	"testing"

	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// Font implements all capabilities of the font protocol from maps.
//
// If CMap is nil, codepoints below 0x10000 map to the glyph with the same
// number. Glyphs without an entry in Advances have a horizontal advance of
// DefaultAdvance and a vertical advance of 0.
type Font struct {
	Tables         map[ot.Tag][]byte
	CMap           map[rune]ot.GlyphIndex
	Advances       map[ot.GlyphIndex]int32
	DefaultAdvance int32
	Finalized      int // number of calls to Finalize
}

// LoadTable implements font.TableLoader.
func (f *Font) LoadTable(tag ot.Tag, buffer []byte) int {
	t := f.Tables[tag]
	if buffer != nil {
		copy(buffer, t)
	}
	return len(t)
}

// GlyphIDForCodepoint implements font.GlyphMapper.
func (f *Font) GlyphIDForCodepoint(r rune) ot.GlyphIndex {
	if f.CMap == nil {
		if r < 0 || r > 0xFFFF {
			return 0
		}
		return ot.GlyphIndex(r)
	}
	return f.CMap[r]
}

// AdvanceForGlyph implements font.AdvanceProvider.
func (f *Font) AdvanceForGlyph(layout font.Layout, glyph ot.GlyphIndex) int32 {
	if layout == font.Vertical {
		return 0
	}
	if adv, ok := f.Advances[glyph]; ok {
		return adv
	}
	return f.DefaultAdvance
}

// Finalize implements font.Finalizer.
func (f *Font) Finalize() {
	f.Finalized++
}

// Handle creates a font handle for f. It fails the test if the handle
// cannot be created. The caller has to release the handle.
func (f *Font) Handle(t testing.TB) *font.Font {
	t.Helper()
	h, err := font.NewFont(font.FromCapabilities(f))
	if err != nil {
		t.Fatalf("cannot create font handle: %v", err)
	}
	h.Name = "fonttest"
	return h
}
