/*
Package otshaper is the core of OpenType text shaping.

From the Harfbuzz documentation (https://harfbuzz.github.io/what-is-harfbuzz.html):

“Text shaping is the process of translating a string of character codes (such
as Unicode codepoints) into a properly arranged sequence of glyphs that can be
rendered onto a screen or into final output form for inclusion in a document.
The shaping process is dependent on the input string, the active font, the script
(or writing system) that the string is in, and the language that the string is in.”

For a thorough introduction take a look at this document:
https://github.com/n8willis/opentype-shaping-documents/tree/master.

# Shaping Pipeline

A shaping run operates on an `Album`, a buffer of glyph records, which passes
through the states

	Empty → Filling → Filled → Arranging → Arranged → WrappedUp

A `TextProcessor` drives an album through these states in four phases:
discovery maps codepoints to glyphs, substitution applies the GSUB lookups of
a `Pattern`, positioning applies its GPOS lookups and resolves mark
attachments, and wrap-up finalizes the album. Lookups are applied by a
`LookupInterpreter` (see package otlayout), which finds the glyphs eligible
for a lookup with the help of a `Locator`.

A `Pattern` is compiled once per font, script and language by a
`PatternBuilder` and may then be shared between concurrent shaping runs.
Albums, locators and text processors are not safe for concurrent use.

From the OpenType spec
(https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#features-and-lookups):

OpenType Layout features and lookups define information that is specific to the glyphs in a given font.
They do not encode information that is constant within the conventions of a particular language or the
typography of a particular script. Information that would be replicated across all fonts in a given
language belongs in the text-processing application for that language, not in the fonts.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otshaper

import (
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/schuko/tracing"
)

// NOTDEF represents OpenType `.notdef`.
const NOTDEF = ot.GlyphIndex(0)

// tracer writes to trace with key 'tyse.shaping'
func tracer() tracing.Trace {
	return tracing.Select("tyse.shaping")
}

// errShaper produces user level errors for text shaping.
func errShaper(format string, v ...interface{}) error {
	return core.Error(core.EINVALID, "OpenType text shaping: "+format, v...)
}

// assert emulates assertions known from other programming languages.
// A failed assertion is a bug in calling code and panics with an
// EINTERNAL error.
func assert(condition bool, format string, v ...interface{}) {
	if !condition {
		panic(core.Error(core.EINTERNAL, format, v...))
	}
}
