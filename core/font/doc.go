/*
Package font is for typeface and font handling.

Shaping code does not read font files itself. It talks to a font through
a small set of capabilities, bundled in a `Protocol`:

▪︎ loading raw table bytes by tag (required),

▪︎ mapping a codepoint to a glyph (required),

▪︎ the advance of a glyph, horizontally or vertically (optional),

▪︎ a finalizer, run when the last reference to the font is released (optional).

`NewFont` validates a protocol and returns a reference counted `*Font`
handle, which has loaded the layout tables GDEF, GSUB and GPOS once at
construction. Any Go type implementing the capability interfaces
(`TableLoader`, `GlyphMapper` and optionally `AdvanceProvider`, `Finalizer`)
may be turned into a protocol by `FromCapabilities`.

`ScalableFont` is the capability provider for OpenType and TrueType font
files, based on golang.org/x/image/font/sfnt. Fonts are cached in a
`Registry`, which will also search for system fonts.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package font

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}
