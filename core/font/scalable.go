package font

import (
	"os"
	"sync"

	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ScalableFont is a font loaded from an OpenType or TrueType file. It
// offers the capabilities of a shaping font: table loading, glyph mapping
// and glyph advances.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
	OT       *ot.Font   // the font's table directory
	mx       sync.Mutex // sfnt.Buffer is not safe for concurrent use
	buf      sfnt.Buffer
}

// LoadOpenTypeFont loads a font file into memory and parses it.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses the binary data of a font.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font")
	}
	if f.OT, err = ot.Parse(f.Binary); err != nil {
		return nil, err
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}

// LoadTable is part of the capabilities of a font.
func (sf *ScalableFont) LoadTable(tag ot.Tag, buffer []byte) int {
	return sf.OT.LoadTable(tag, buffer)
}

// GlyphIDForCodepoint is part of the capabilities of a font.
// Unmapped codepoints result in glyph 0 (.notdef).
func (sf *ScalableFont) GlyphIDForCodepoint(r rune) ot.GlyphIndex {
	sf.mx.Lock()
	defer sf.mx.Unlock()
	gid, err := sf.SFNT.GlyphIndex(&sf.buf, r)
	if err != nil {
		tracer().Debugf("no glyph for %#U: %v", r, err)
		return 0
	}
	return ot.GlyphIndex(gid)
}

// AdvanceForGlyph is part of the capabilities of a font. Advances are
// returned in font units. Vertical advances are approximated by the line
// height, as x/image/font/sfnt does not read vertical metrics.
func (sf *ScalableFont) AdvanceForGlyph(layout Layout, glyph ot.GlyphIndex) int32 {
	sf.mx.Lock()
	defer sf.mx.Unlock()
	ppem := fixed.I(int(sf.SFNT.UnitsPerEm())) // 1 pixel = 1 font unit
	if layout == Vertical {
		m, err := sf.SFNT.Metrics(&sf.buf, ppem, xfont.HintingNone)
		if err != nil {
			return 0
		}
		return int32(m.Height.Round())
	}
	adv, err := sf.SFNT.GlyphAdvance(&sf.buf, sfnt.GlyphIndex(glyph), ppem, xfont.HintingNone)
	if err != nil {
		tracer().Debugf("no advance for glyph %d: %v", glyph, err)
		return 0
	}
	return int32(adv.Round())
}

// UnitsPerEm returns the design units of the font.
func (sf *ScalableFont) UnitsPerEm() int {
	return int(sf.SFNT.UnitsPerEm())
}

// Font creates a shaping handle for sf.
func (sf *ScalableFont) Font() (*Font, error) {
	f, err := NewFont(FromCapabilities(sf))
	if err != nil {
		return nil, err
	}
	f.Name = sf.Fontname
	return f, nil
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	gofont, err := ParseOpenTypeFont(goregular.TTF)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	gofont.Fontname = "Go Sans"
	gofont.Filepath = "internal"
	return gofont
}
