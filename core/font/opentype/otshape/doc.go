/*
Package otshape shapes text with OpenType fonts.

From the OpenType spec
(https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#features-and-lookups):

OpenType Layout features and lookups define information that is specific to the glyphs in a given font.
They do not encode information that is constant within the conventions of a particular language or the
typography of a particular script. Information that would be replicated across all fonts in a given
language belongs in the text-processing application for that language, not in the fonts.

Package otshape is where these two kinds of information meet. It compiles a
shaping plan from a font, the script knowledge of a script registry and
user-selected features, then runs text through the shaping phases of package
otshaper, using the lookup interpreter of package otlayout:

	plan, err := otshape.NewPlan(f, otshape.Params{Script: ot.T("latn")})
	…
	result, err := plan.Shape("Difficult")

A plan is immutable and may be used by concurrent shaping calls. ShapeLines
shapes a slice of lines concurrently.

Normalization and bidi reordering are the responsibility of clients. Text
to be shaped right-to-left has to be a single directional run.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otshape

import (
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.shaping'
func tracer() tracing.Trace {
	return tracing.Select("tyse.shaping")
}

// errShaper produces user level errors for text shaping.
func errShaper(format string, v ...interface{}) error {
	return core.Error(core.EINVALID, "OpenType text shaping: "+format, v...)
}
