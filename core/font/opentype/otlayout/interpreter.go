package otlayout

import (
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
)

// Interpreter applies GSUB and GPOS lookups to the glyphs of an album. It
// implements otshaper.LookupInterpreter.
//
// An Interpreter holds no state between calls and may be shared by
// concurrent shaping runs.
type Interpreter struct {
	// Alternate selects the glyph an alternate substitution (GSUB type 3)
	// substitutes. 0 selects the first alternate, -1 the last one.
	Alternate int
}

// maxNesting limits the depth of lookups invoked from contextual lookups.
const maxNesting = 8

// NewInterpreter creates an interpreter selecting the first alternate for
// alternate substitutions.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ApplyLookup applies a lookup at the glyph the processor's locator points
// to. Subtables are tried in order; the first one matching wins.
func (ip *Interpreter) ApplyLookup(p *otshaper.TextProcessor, kind otshaper.FeatureKind, lookup ot.Lookup) bool {
	app := application{
		ip:    ip,
		p:     p,
		album: p.Album(),
		kind:  kind,
		loc:   p.Locator(),
	}
	return app.lookup(lookup)
}

// application is a lookup being applied with a locator. Contextual lookups
// create nested applications with locators of their own.
type application struct {
	ip    *Interpreter
	p     *otshaper.TextProcessor
	album *otshaper.Album
	kind  otshaper.FeatureKind
	loc   *otshaper.Locator
	depth int
}

func (app *application) lookup(lookup ot.Lookup) bool {
	if app.loc.Index == otshaper.InvalidIndex {
		return false
	}
	for i := 0; i < lookup.SubTableCount(); i++ {
		typ, sub := lookup.Type, lookup.Subtable(i)
		if app.isExtension(typ) {
			typ, sub = ot.UnwrapExtension(sub)
		}
		if sub.Size() == 0 {
			continue
		}
		var applied bool
		if app.kind == otshaper.Substitution {
			applied = app.substitute(typ, sub)
		} else {
			applied = app.position(typ, sub)
		}
		if applied {
			return true
		}
	}
	return false
}

func (app *application) isExtension(typ ot.LayoutTableLookupType) bool {
	if app.kind == otshaper.Substitution {
		return typ == ot.GSubLookupTypeExtensionSubs
	}
	return typ == ot.GPosLookupTypeExtensionPos
}

func (app *application) substitute(typ ot.LayoutTableLookupType, sub ot.NavLocation) bool {
	switch typ {
	case ot.GSubLookupTypeSingle:
		return app.gsubSingle(sub)
	case ot.GSubLookupTypeMultiple:
		return app.gsubMultiple(sub)
	case ot.GSubLookupTypeAlternate:
		return app.gsubAlternate(sub)
	case ot.GSubLookupTypeLigature:
		return app.gsubLigature(sub)
	case ot.GSubLookupTypeContext:
		return app.context(typ, sub)
	case ot.GSubLookupTypeChainingContext:
		return app.chainedContext(typ, sub)
	}
	app.unsupported(typ, sub)
	return false
}

func (app *application) position(typ ot.LayoutTableLookupType, sub ot.NavLocation) bool {
	switch typ {
	case ot.GPosLookupTypeSingle:
		return app.gposSingle(sub)
	case ot.GPosLookupTypePair:
		return app.gposPair(sub)
	case ot.GPosLookupTypeCursive:
		return app.gposCursive(sub)
	case ot.GPosLookupTypeMarkToBase:
		return app.gposMarkToBase(sub)
	case ot.GPosLookupTypeMarkToLigature:
		return app.gposMarkToLigature(sub)
	case ot.GPosLookupTypeMarkToMark:
		return app.gposMarkToMark(sub)
	case ot.GPosLookupTypeContextPos:
		return app.context(typ, sub)
	case ot.GPosLookupTypeChainedContextPos:
		return app.chainedContext(typ, sub)
	}
	app.unsupported(typ, sub)
	return false
}

func (app *application) unsupported(typ ot.LayoutTableLookupType, sub ot.NavLocation) {
	name := typ.GPosString()
	if app.kind == otshaper.Substitution {
		name = typ.GSubString()
	}
	tracer().Debugf("%s lookup type %s, format %d, not supported", app.kind, name, sub.U16(0))
}

// covers is a shortcut for coverage tests of glyph i.
func (app *application) covers(cov ot.Coverage, i int) (int, bool) {
	return cov.Match(app.album.Glyph(i))
}

// --- Contextual lookups ----------------------------------------------------

// Contextual lookups (GSUB types 5 and 6, GPOS types 7 and 8) match a
// sequence of input glyphs, optionally surrounded by backtrack and lookahead
// glyphs, and then apply other lookups at positions of the input sequence.
//
// Format 1 rules list glyph IDs, format 2 rules list glyph classes and
// format 3 describes every position of a context by a coverage table. Formats
// 1 and 2 select a rule set by the first input glyph and apply the first rule
// of the set which matches. Backtrack sequences are stored nearest glyph
// first.

// glyphTest tells if the glyph at an album position fits one position of a
// context.
type glyphTest func(i int) bool

func (app *application) coverageTest(cov ot.Coverage) glyphTest {
	return func(i int) bool {
		_, ok := app.covers(cov, i)
		return ok
	}
}

// context applies a context subtable. Format 3 is laid out as
//
//	uint16    format = 3
//	uint16    glyphCount
//	uint16    seqLookupCount
//	Offset16  coverageOffsets[glyphCount]
//	SeqLookup seqLookupRecords[seqLookupCount]
func (app *application) context(typ ot.LayoutTableLookupType, sub ot.NavLocation) bool {
	switch sub.U16(0) {
	case 1, 2:
		return app.contextRules(sub, false)
	case 3:
		n := int(sub.U16(2))
		input := make([]glyphTest, n)
		for k := range input {
			input[k] = app.coverageTest(ot.ParseCoverage(ot.Link16(sub, 6+2*k)))
		}
		positions, ok := app.matchContext(nil, input, nil)
		if !ok {
			return false
		}
		app.applySequenceLookups(sub, 4, 6+2*n, positions)
		return true
	}
	app.unsupported(typ, sub)
	return false
}

// chainedContext applies a chained context subtable. Format 3 is laid out as
//
//	uint16    format = 3
//	uint16    backtrackGlyphCount, Offset16 backtrackCoverageOffsets[…]
//	uint16    inputGlyphCount,     Offset16 inputCoverageOffsets[…]
//	uint16    lookaheadGlyphCount, Offset16 lookaheadCoverageOffsets[…]
//	uint16    seqLookupCount,      SeqLookup seqLookupRecords[…]
func (app *application) chainedContext(typ ot.LayoutTableLookupType, sub ot.NavLocation) bool {
	switch sub.U16(0) {
	case 1, 2:
		return app.contextRules(sub, true)
	case 3:
		backtrack, at := app.coverages(sub, 2)
		input, at := app.coverages(sub, at)
		lookahead, at := app.coverages(sub, at)
		positions, ok := app.matchContext(backtrack, input, lookahead)
		if !ok {
			return false
		}
		app.applySequenceLookups(sub, at, at+2, positions)
		return true
	}
	app.unsupported(typ, sub)
	return false
}

// coverages reads a count followed by offsets to coverage tables.
func (app *application) coverages(sub ot.NavLocation, at int) ([]glyphTest, int) {
	n := int(sub.U16(at))
	tests := make([]glyphTest, n)
	for k := range tests {
		tests[k] = app.coverageTest(ot.ParseCoverage(ot.Link16(sub, at+2+2*k)))
	}
	return tests, at + 2 + 2*n
}

// contextRules applies a context subtable of format 1 or 2:
//
//	uint16   format = 1          |  format = 2
//	Offset16 coverageOffset      |  coverageOffset
//	                             |  classDefOffset (chained: backtrack, input, lookahead)
//	uint16   ruleSetCount
//	Offset16 ruleSetOffsets[ruleSetCount]
//
// A rule set holds a count and offsets of rules. A rule is laid out as
//
//	context:  glyphCount, seqLookupCount, input[glyphCount-1], seqLookupRecords
//	chained:  backtrackCount, backtrack[…], inputCount, input[inputCount-1],
//	          lookaheadCount, lookahead[…], seqLookupCount, seqLookupRecords
func (app *application) contextRules(sub ot.NavLocation, chained bool) bool {
	i := app.loc.Index
	cov := ot.ParseCoverage(ot.Link16(sub, 2))
	inx, ok := app.covers(cov, i)
	if !ok {
		return false
	}
	first := app.coverageTest(cov)
	format := sub.U16(0)
	var classes [3]ot.ClassDefinitions // backtrack, input, lookahead
	setsAt := 4
	if format == 2 {
		if chained {
			for k := range classes {
				classes[k] = ot.ParseClassDefinitions(ot.Link16(sub, 4+2*k))
			}
			setsAt = 10
		} else {
			c := ot.ParseClassDefinitions(ot.Link16(sub, 4))
			classes = [3]ot.ClassDefinitions{c, c, c}
			setsAt = 6
		}
		inx = classes[1].Lookup(app.album.Glyph(i))
	}
	if inx >= int(sub.U16(setsAt)) {
		return false
	}
	set := ot.Link16(sub, setsAt+2+2*inx)
	for r := 0; r < int(set.U16(0)); r++ {
		rule := ot.Link16(set, 2+2*r)
		var backtrack, input, lookahead []glyphTest
		var countAt, recsAt int
		if chained {
			at := 0
			backtrack, at = app.sequence(rule, at, 0, format, classes[0])
			input, at = app.sequence(rule, at, 1, format, classes[1])
			lookahead, at = app.sequence(rule, at, 0, format, classes[2])
			countAt, recsAt = at, at+2
		} else {
			n := max(int(rule.U16(0))-1, 0)
			input = app.sequenceTests(rule, 4, n, format, classes[1])
			countAt, recsAt = 2, 4+2*n
		}
		input = append([]glyphTest{first}, input...)
		positions, ok := app.matchContext(backtrack, input, lookahead)
		if !ok {
			continue
		}
		tracer().Debugf("context rule %d of set %d matches at %d", r, inx, i)
		app.applySequenceLookups(rule, countAt, recsAt, positions)
		return true
	}
	return false
}

// sequence reads a count at byte at of rule, followed by glyph IDs or
// classes. The first skip entries are not stored.
func (app *application) sequence(rule ot.NavLocation, at, skip int, format uint16,
	cdef ot.ClassDefinitions) ([]glyphTest, int) {
	//
	n := max(int(rule.U16(at))-skip, 0)
	return app.sequenceTests(rule, at+2, n, format, cdef), at + 2 + 2*n
}

// sequenceTests creates tests for n glyph IDs (format 1) or classes
// (format 2) stored at byte at of rule.
func (app *application) sequenceTests(rule ot.NavLocation, at, n int, format uint16,
	cdef ot.ClassDefinitions) []glyphTest {
	//
	tests := make([]glyphTest, n)
	for k := range tests {
		v := rule.U16(at + 2*k)
		if format == 1 {
			tests[k] = func(i int) bool { return app.album.Glyph(i) == ot.GlyphIndex(v) }
		} else {
			tests[k] = func(i int) bool { return cdef.Lookup(app.album.Glyph(i)) == int(v) }
		}
	}
	return tests
}

// matchContext matches the input sequence starting at the current glyph,
// then backtrack and lookahead. It returns the positions of the input glyphs.
func (app *application) matchContext(backtrack, input, lookahead []glyphTest) ([]int, bool) {
	if len(input) == 0 {
		return nil, false
	}
	loc := app.loc
	positions := make([]int, len(input))
	pos := loc.Index
	for k, fits := range input {
		if k > 0 {
			pos = loc.GetAfter(pos)
		}
		if pos == otshaper.InvalidIndex || !fits(pos) {
			return nil, false
		}
		positions[k] = pos
	}
	pos = positions[0]
	for _, fits := range backtrack {
		if pos = loc.GetBefore(pos); pos == otshaper.InvalidIndex || !fits(pos) {
			return nil, false
		}
	}
	pos = positions[len(positions)-1]
	for _, fits := range lookahead {
		if pos = loc.GetAfter(pos); pos == otshaper.InvalidIndex || !fits(pos) {
			return nil, false
		}
	}
	return positions, true
}

// applySequenceLookups applies the lookups of the sequence lookup records
// at the matched input positions, in record order. Processing continues
// after the input sequence.
func (app *application) applySequenceLookups(sub ot.NavLocation, countAt, recsAt int, positions []int) {
	table := app.p.LayoutTable(app.kind)
	end := positions[len(positions)-1] + 1
	n := int(sub.U16(countAt))
	for r := 0; r < n; r++ {
		seqIndex := int(sub.U16(recsAt + 4*r))
		lookupIndex := int(sub.U16(recsAt + 4*r + 2))
		if seqIndex >= len(positions) || lookupIndex >= table.LookupCount() {
			tracer().Errorf("sequence lookup record %d/%d out of range", seqIndex, lookupIndex)
			continue
		}
		if app.depth >= maxNesting {
			tracer().Errorf("contextual lookups nested too deeply")
			break
		}
		at := positions[seqIndex]
		count := app.album.GlyphCount()
		app.nested(table.Lookup(lookupIndex), at, end)
		if delta := app.album.GlyphCount() - count; delta != 0 {
			end += delta
			for k := range positions {
				if positions[k] > at {
					positions[k] += delta
				}
			}
		}
	}
	app.loc.JumpTo(end)
}

// nested applies a lookup at glyph at, looking no further than end.
func (app *application) nested(lookup ot.Lookup, at, end int) bool {
	loc := otshaper.NewLocator(app.album, app.p.GDef())
	loc.Reset(0, end)
	loc.SetFeatureMask(app.loc.FeatureMask())
	loc.SetLookupFlag(lookup.Flag)
	if lookup.Flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		loc.SetMarkFilteringSet(lookup.MarkFilteringSet)
	}
	loc.JumpTo(at)
	if !loc.MoveNext() || loc.Index != at {
		return false
	}
	sub := application{
		ip:    app.ip,
		p:     app.p,
		album: app.album,
		kind:  app.kind,
		loc:   loc,
		depth: app.depth + 1,
	}
	tracer().Debugf("nested lookup #%d at glyph %d", lookup.Index, at)
	return sub.lookup(lookup)
}
