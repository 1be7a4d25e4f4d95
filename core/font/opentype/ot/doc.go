/*
Package ot provides read access to the OpenType layout tables needed for
text shaping.

Package `ot` does not copy font data into Go structures. Clients hand over
the raw bytes of a table (as delivered by a font's table loader) and receive
light-weight views onto these bytes. Every view is null-safe: navigating into
missing or truncated data yields an empty location (size 0) instead of an
error, and lookups on an empty location return neutral values. Shaping code
therefore checks once at the end of a chain of navigation calls, not at every
step.

Covered are

▪︎ the font's table directory (see `Parse`),

▪︎ the common structure of GSUB and GPOS: script list, LangSys records,
feature list, lookup list, lookup flags, coverage tables and class
definition tables,

▪︎ GDEF glyph class definitions, mark attachment classes and mark glyph sets,

▪︎ device tables for pixel-size dependent adjustments (see `GetDevicePixels`),

▪︎ feature variations of variable fonts (see `SearchFeatureSubstitutionTable`
and `SearchAlternateFeatureTable`).

All multi-byte values are big-endian and offsets are relative to the start
of the structure containing them, as defined by
https://docs.microsoft.com/en-us/typography/opentype/spec/.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

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
