package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otlayout"
	"github.com/npillmayer/otshaping/core/font/opentype/otquery"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape/hbref"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"github.com/pterm/pterm"
	"golang.org/x/text/language"
)

// --- Font information ------------------------------------------------------

func (intp *Intp) info() {
	pterm.Printfln("%s (%s), %d units per em", intp.font.Name, otquery.FontType(intp.sfont.OT),
		intp.font.UnitsPerEm())
	pterm.Printfln("layout tables: %v", otquery.LayoutTables(intp.font))
	if kt := otquery.LoadKernTable(intp.font); !kt.IsEmpty() {
		pterm.Printfln("font has a kern table")
	}
}

func (intp *Intp) names(lang string) error {
	tag := language.English
	if lang != "" {
		var err error
		if tag, err = language.Parse(lang); err != nil {
			return core.WrapError(err, core.EINVALID, "cannot parse language %q", lang)
		}
	}
	names := otquery.NameInfo(intp.font, tag)
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	data := pterm.TableData{{"Name", "Value"}}
	for _, k := range keys {
		data = append(data, []string{k, names[k]})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) metrics() {
	m := otquery.FontMetrics(intp.font)
	pterm.Printfln("units per em = %d", m.UnitsPerEm)
	pterm.Printfln("ascent = %d, descent = %d, line gap = %d", m.Ascent, m.Descent, m.LineGap)
	pterm.Printfln("max advance = %d", m.MaxAdvance)
}

func (intp *Intp) scripts() {
	for _, scr := range otquery.Scripts(intp.font) {
		s, l := otquery.FontSupportsScript(intp.font, scr, 0)
		pterm.Printfln("%s  languages %v", s, intp.languagesOf(scr))
		tracer().Debugf("script %s supported as %s/%s", scr, s, l)
	}
}

func (intp *Intp) languagesOf(scr ot.Tag) []ot.Tag {
	var langs []ot.Tag
	for _, t := range []*ot.LayoutTable{intp.font.GSub(), intp.font.GPos()} {
		if t != nil {
			langs = append(langs, t.LangSysTags(scr)...)
		}
	}
	return langs
}

func (intp *Intp) langs(script string) error {
	if script == "" {
		return core.Error(core.EINVALID, "usage: langs <script tag>")
	}
	scr := ot.T(script)
	for _, lang := range intp.languagesOf(scr) {
		s, l := otquery.FontSupportsScript(intp.font, scr, lang)
		pterm.Printfln("%s/%s", s, l)
	}
	return nil
}

// layoutTable selects GSUB or GPOS.
func (intp *Intp) layoutTable(which string) (*ot.LayoutTable, otshaper.FeatureKind, error) {
	switch strings.ToLower(which) {
	case "", "gsub":
		if t := intp.font.GSub(); t != nil {
			return t, otshaper.Substitution, nil
		}
		return nil, 0, core.Error(core.EMISSING, "font has no GSUB table")
	case "gpos":
		if t := intp.font.GPos(); t != nil {
			return t, otshaper.Positioning, nil
		}
		return nil, 0, core.Error(core.EMISSING, "font has no GPOS table")
	}
	return nil, 0, core.Error(core.EINVALID, "table must be GSUB or GPOS, is %q", which)
}

func (intp *Intp) features(which string) error {
	t, _, err := intp.layoutTable(which)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"#", "Feature", "Type", "Lookups"}}
	for i := 0; i < t.FeatureCount(); i++ {
		tag := t.FeatureTag(i)
		typ := "unregistered"
		if lt, err := otlayout.IdentifyFeatureTag(tag); err == nil {
			typ = lt.String()
		}
		data = append(data, []string{strconv.Itoa(i), tag.String(), typ,
			fmt.Sprint(t.Feature(i).LookupIndices())})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) lookups(which string) error {
	t, kind, err := intp.layoutTable(which)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"#", "Type", "Flag", "Subtables"}}
	for i := 0; i < t.LookupCount(); i++ {
		lookup := t.Lookup(i)
		name := lookup.Type.GSubString()
		if kind == otshaper.Positioning {
			name = lookup.Type.GPosString()
		}
		data = append(data, []string{strconv.Itoa(i), name,
			fmt.Sprintf("0x%04x", uint16(lookup.Flag)), strconv.Itoa(lookup.SubTableCount())})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// glyph shows a glyph, given either as a character or as "#<glyph id>".
func (intp *Intp) glyph(arg string) error {
	var gid ot.GlyphIndex
	if strings.HasPrefix(arg, "#") && len(arg) > 1 {
		n, err := strconv.Atoi(arg[1:])
		if err != nil || n < 0 || n > 0xFFFF {
			return core.Error(core.EINVALID, "not a glyph id: %q", arg)
		}
		gid = ot.GlyphIndex(n)
	} else if r, _ := utf8.DecodeRuneInString(arg); r != utf8.RuneError {
		gid = otquery.GlyphIndex(intp.font, r)
	} else {
		return core.Error(core.EINVALID, "usage: glyph <character> | glyph #<id>")
	}
	m := otquery.GlyphMetrics(intp.font, gid)
	c := otquery.GlyphClasses(intp.font, gid)
	pterm.Printfln("glyph %d, code-point %U", gid, otquery.CodePointForGlyph(intp.font, gid))
	pterm.Printfln("advance = %d, LSB = %d, RSB = %d, bbox = %v", m.Advance, m.LSB, m.RSB, m.BBox)
	pterm.Printfln("class = %d, mark attachment class = %d, mark glyph sets = %v",
		c.Class, c.MarkAttachClass, c.MarkGlyphSets)
	return nil
}

// --- Shaping ---------------------------------------------------------------

func (intp *Intp) shape(text string) error {
	params, err := otshape.ParamsFromConfig(intp.settings, nil)
	if err != nil {
		return err
	}
	result, err := otshape.Shape(intp.font, text, params)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"#", "Glyph", "Chars", "Cluster", "Advance", "Offset", "Attached"}}
	for i := 0; i < result.Len(); i++ {
		cr := result.CharRanges[i]
		attached := ""
		if result.Attachments[i] >= 0 {
			attached = strconv.Itoa(result.Attachments[i])
		}
		data = append(data, []string{strconv.Itoa(i), strconv.Itoa(int(result.Glyphs[i])),
			fmt.Sprintf("%d+%d", cr.Start, cr.Length), strconv.Itoa(result.Clusters[i]),
			strconv.Itoa(int(result.Advances[i])),
			fmt.Sprintf("(%d,%d)", result.Offsets[i].X, result.Offsets[i].Y), attached})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Printfln("total advance = %d", result.Advance())
	return nil
}

// compare shapes text with otshape and HarfBuzz and reports differences.
func (intp *Intp) compare(text string) error {
	params, err := otshape.ParamsFromConfig(intp.settings, nil)
	if err != nil {
		return err
	}
	lang := language.Und
	if l := intp.settings.GetString(otshape.ConfigLanguage); l != "" {
		lang, _ = language.Parse(l) // checked by ParamsFromConfig
	}
	if intp.hb == nil {
		if intp.hb, err = hbref.NewShaper(intp.sfont.Binary); err != nil {
			return err
		}
	}
	got, err := otshape.Shape(intp.font, text, params)
	if err != nil {
		return err
	}
	ref, err := intp.hb.Shape(text, lang, params)
	if err != nil {
		return err
	}
	if diff := hbref.Diff(got, ref); diff != "" {
		pterm.Warning.Println("otshape (-) and HarfBuzz (+) differ")
		pterm.Println(diff)
		return nil
	}
	pterm.Success.Printfln("otshape and HarfBuzz agree on %d glyphs", got.Len())
	return nil
}

// --- Device tables ---------------------------------------------------------

// decodeDevice prints the adjustment of a device table, given in hex, at a
// ppem size.
func decodeDevice(hexTable, ppem string) error {
	b, err := hex.DecodeString(strings.ReplaceAll(hexTable, "_", ""))
	if err != nil || len(b) < 6 {
		return core.Error(core.EINVALID, "usage: device <hex table> <ppem>")
	}
	size, err := strconv.Atoi(ppem)
	if err != nil || size < 0 {
		return core.Error(core.EINVALID, "ppem must be a number, is %q", ppem)
	}
	loc := ot.Location(b)
	pterm.Printfln("sizes %d–%d, format %d: %d pixels at %d ppem",
		loc.U16(0), loc.U16(2), loc.U16(4), ot.GetDevicePixels(loc, size), size)
	return nil
}
