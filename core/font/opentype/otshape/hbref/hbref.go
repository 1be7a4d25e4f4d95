/*
Package hbref shapes text with the Go port of HarfBuzz found in module
textlayout. Results are converted to otshape results, so the output of
package otshape may be checked against a reference shaper.

HarfBuzz is run with its default font scale, which makes positions font
units.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package hbref

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/text/language"
)

// tracer traces with key 'tyse.shaping'.
func tracer() tracing.Trace {
	return tracing.Select("tyse.shaping")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns an ISO 15924 script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	return hblang.Script(binary.BigEndian.Uint32(b))
}

// ScriptTag4HB returns an OpenType script tag as a HarfBuzz script. For most
// scripts the OpenType tag is the lower case ISO 15924 code. DFLT and 0 map
// to the unknown script, letting HarfBuzz guess from the text.
func ScriptTag4HB(t ot.Tag) hblang.Script {
	if t == 0 || t == ot.DFLT {
		return 0
	}
	return hblang.Script(t)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d otshaper.TextDirection) hb.Direction {
	if d == otshaper.RightToLeft {
		return hb.RightToLeft
	}
	return hb.LeftToRight
}

// Feature4HB makes a typecast from an OpenType feature tag to a HarfBuzz truetype tag.
func Feature4HB(t ot.Tag) hbtt.Tag {
	return hbtt.Tag(t)
}

// FeatureRange4HB converts a feature range to a HarfBuzz feature switch.
// HarfBuzz ranges are cluster values, which are rune indices here.
func FeatureRange4HB(frng otshape.FeatureRange) hb.Feature {
	f := hb.Feature{
		Tag:   Feature4HB(frng.Feature),
		End: globalEnd,
	}
	if frng.Start > 0 {
		f.Start = frng.Start
	}
	if frng.End >= 0 {
		f.End = frng.End
	}
	if frng.On {
		f.Value = 1
	}
	return f
}

// globalEnd is the end of HarfBuzz feature ranges extending to the end of
// the buffer.
const globalEnd = math.MaxInt32

// --- Shaper ----------------------------------------------------------------

// Shaper shapes text with a single font.
type Shaper struct {
	font *hb.Font
}

// NewShaper parses a font binary for HarfBuzz.
func NewShaper(binary []byte) (*Shaper, error) {
	face, err := hbtt.Parse(bytes.NewReader(binary), true)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "HarfBuzz cannot parse font")
	}
	return &Shaper{font: hb.NewFont(face)}, nil
}

// Shape shapes a text with HarfBuzz. Script, direction and features are taken
// from params, other parameters are ignored. HarfBuzz needs a BCP 47 language
// instead of an OpenType language tag; lang may be language.Und.
//
// Clusters of the result are HarfBuzz cluster values, i.e. the index of the
// first rune of a glyph cluster, and no glyph is reported as attached.
func (s *Shaper) Shape(text string, lang language.Tag, params otshape.Params) (otshape.Result, error) {
	runes, err := otshaper.DecodeText(text)
	if err != nil {
		return otshape.Result{}, err
	}
	buf := hb.NewBuffer()
	buf.Props.Direction = Direction4HB(params.Direction)
	buf.Props.Script = ScriptTag4HB(params.Script)
	if lang != language.Und {
		buf.Props.Language = Lang4HB(lang)
	}
	features := make([]hb.Feature, 0, len(params.Features))
	for _, frng := range params.Features {
		features = append(features, FeatureRange4HB(frng))
	}
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(s.font, features)
	n := len(buf.Info)
	r := otshape.Result{
		Glyphs:      make([]ot.GlyphIndex, n),
		Offsets:     make([]otshaper.Point, n),
		Advances:    make([]int32, n),
		CharRanges:  make([]otshaper.CharRange, n),
		Attachments: make([]int, n),
		Clusters:    make([]int, n),
	}
	for i, ginfo := range buf.Info {
		pos := &buf.Pos[i]
		tracer().Debugf("HarfBuzz [%3d] %q", i, ginfo.String())
		r.Glyphs[i] = ot.GlyphIndex(ginfo.Glyph)
		r.Offsets[i] = otshaper.Point{X: int32(pos.XOffset), Y: int32(pos.YOffset)}
		r.Advances[i] = int32(pos.XAdvance)
		r.Attachments[i] = otshaper.InvalidIndex
		r.Clusters[i] = ginfo.Cluster
	}
	setCharRanges(r, len(runes))
	return r, nil
}

// setCharRanges derives the runes of each glyph from the cluster values. A
// cluster extends to the next larger cluster value.
func setCharRanges(r otshape.Result, textLen int) {
	starts := append([]int(nil), r.Clusters...)
	sort.Ints(starts)
	for i, c := range r.Clusters {
		end := textLen
		if k := sort.SearchInts(starts, c+1); k < len(starts) {
			end = starts[k]
		}
		r.CharRanges[i] = otshaper.CharRange{Start: c, Length: end - c}
	}
}

// --- Comparison ------------------------------------------------------------

// shapedGlyph is the part of a result two shapers have to agree on.
type shapedGlyph struct {
	Glyph   ot.GlyphIndex
	Advance int32
	Offset  otshaper.Point
}

func glyphsOf(r otshape.Result) []shapedGlyph {
	glyphs := make([]shapedGlyph, r.Len())
	for i := range glyphs {
		glyphs[i] = shapedGlyph{Glyph: r.Glyphs[i], Advance: r.Advances[i], Offset: r.Offsets[i]}
	}
	return glyphs
}

// Diff compares glyphs, advances and offsets of two shaping results. It
// returns an empty string if they agree, otherwise a human readable report
// of the differences, with '-' lines for got and '+' lines for ref.
//
// Character ranges and clusters are not compared, as their conventions
// differ between shapers.
func Diff(got, ref otshape.Result) string {
	return cmp.Diff(glyphsOf(got), glyphsOf(ref), cmpopts.EquateEmpty())
}
