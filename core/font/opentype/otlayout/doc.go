/*
Package otlayout interprets OpenType layout lookups.

Package otshaper drives a shaping run and decides which lookups apply to
which glyphs. This package contains the other half: an `Interpreter`, which
reads the binary subtables of GSUB and GPOS lookups and applies them to the
glyphs of an album.

Supported are

	GSUB  1 single, 2 multiple, 3 alternate, 4 ligature,
	      5 context (format 3), 6 chained context (format 3), 7 extension
	GPOS  1 single, 2 pair, 4 mark-to-base, 6 mark-to-mark,
	      7 context (format 3), 8 chained context (format 3), 9 extension

Other lookup types and formats are traced and skipped.

From the OpenType specification
(https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#features-and-lookups):

“Lookup tables provide the specific information about a glyph substitution
or glyph positioning operation. Each lookup may contain one or more subtables,
[…] A lookup of a given type may contain several subtables of different
formats.”

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

// errFontFormat produces user level errors for font parsing.
func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "OpenType font format: %s", x)
}
