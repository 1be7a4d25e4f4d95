/*
Package otquery queries metrics and other information from OpenType fonts.

Package otquery knows about the various tables contained in OpenType fonts and
which ones to address for queries. It works on font handles of package font,
reading raw tables through the font's table loading capability, and thus on
any font offering this capability. Clients of this package will, amongst
other, be:

▪︎ text shapers, which need to know about scripts and languages a font supports

▪︎ line breakers and glyph rasterizers, which need font and glyph metrics

▪︎ command line tools inspecting fonts

Queries for tables missing from a font return zero values. Fonts with damaged
tables may return garbage, but will not cause a panic.

No font collections are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}
