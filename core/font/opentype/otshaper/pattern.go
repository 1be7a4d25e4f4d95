package otshaper

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// FeatureKind tells if a feature belongs to GSUB or to GPOS.
type FeatureKind uint8

// Kinds of features.
const (
	Substitution FeatureKind = iota // GSUB
	Positioning                     // GPOS
)

func (k FeatureKind) String() string {
	if k == Positioning {
		return "GPOS"
	}
	return "GSUB"
}

// FeatureUnit is a set of lookups applied together under one feature mask.
// Lookups are sorted by lookup list index and free of duplicates. A mask of
// 0 applies the unit to every glyph.
type FeatureUnit struct {
	Mask    FeatureMask
	Lookups []uint16
	Tags    []ot.Tag // features contributing to the unit
}

// FeatureGroup records the lookups a single feature tag resolved to.
type FeatureGroup struct {
	Tag     ot.Tag
	Kind    FeatureKind
	Mask    FeatureMask
	Lookups []uint16
}

// Counts splits a list into a GSUB part followed by a GPOS part.
type Counts struct {
	GSub, GPos int
}

// Pattern is the compiled shaping plan for a font, script and language.
// A pattern is immutable after Build and may be shared between concurrent
// shaping runs. The font is borrowed and has to outlive the pattern.
type Pattern struct {
	Font          *font.Font
	Script        ot.Tag
	Language      ot.Tag
	Direction     TextDirection
	FeatureUnits  []FeatureUnit
	UnitCounts    Counts
	FeatureGroups []FeatureGroup
	GroupCounts   Counts
}

// Units returns the feature units of a kind, in application order.
func (p *Pattern) Units(kind FeatureKind) []FeatureUnit {
	if kind == Substitution {
		return p.FeatureUnits[:p.UnitCounts.GSub]
	}
	return p.FeatureUnits[p.UnitCounts.GSub : p.UnitCounts.GSub+p.UnitCounts.GPos]
}

// Groups returns the feature groups of a kind.
func (p *Pattern) Groups(kind FeatureKind) []FeatureGroup {
	if kind == Substitution {
		return p.FeatureGroups[:p.GroupCounts.GSub]
	}
	return p.FeatureGroups[p.GroupCounts.GSub : p.GroupCounts.GSub+p.GroupCounts.GPos]
}

// MaskOf returns the feature mask a feature has been registered with. The
// second return value is false if the pattern does not know the feature.
func (p *Pattern) MaskOf(tag ot.Tag) (FeatureMask, bool) {
	for _, g := range p.FeatureGroups {
		if g.Tag == tag {
			return g.Mask, true
		}
	}
	return 0, false
}

// --- Builder ---------------------------------------------------------------

// PatternBuilder compiles a Pattern. Features are added in application
// order, GSUB features first:
//
//	b := NewPatternBuilder(f)
//	b.SetScript(ot.T("latn"), LeftToRight)
//	b.BeginFeatures(Substitution)
//	b.AddFeature(ot.T("ccmp"), 0)
//	b.MakeFeatureUnit()
//	…
//	b.EndFeatures()
//	pattern := b.Build()
//
// All features added between two calls of MakeFeatureUnit form one unit.
type PatternBuilder struct {
	font        *font.Font
	pattern     *Pattern
	kind        FeatureKind
	active      bool
	positioning bool // GPOS features have been started
	table       *ot.LayoutTable
	langSys     ot.LangSys
	hasLang     bool
	subst       ot.NavLocation // feature table substitution table for coords
	coords      []ot.F2Dot14
	nextBit     uint
	pending     []int // indices into pattern.FeatureGroups
	lookups     *treeset.Set
	extraTag    []ot.Tag
}

// NewPatternBuilder starts compiling a pattern for a font. Script and
// language default to DFLT and the default language system.
func NewPatternBuilder(f *font.Font) *PatternBuilder {
	assert(f != nil, "pattern builder needs a font")
	return &PatternBuilder{
		font: f,
		pattern: &Pattern{
			Font:   f,
			Script: ot.DFLT,
		},
		lookups: treeset.NewWith(utils.UInt16Comparator),
	}
}

// SetScript sets the script tag and the direction the script is written in.
func (b *PatternBuilder) SetScript(script ot.Tag, dir TextDirection) {
	b.mustBeIdle("SetScript")
	b.pattern.Script = script
	b.pattern.Direction = dir
}

// SetLanguage sets the language tag. 0 selects the default language system.
func (b *PatternBuilder) SetLanguage(lang ot.Tag) {
	b.mustBeIdle("SetLanguage")
	b.pattern.Language = lang
}

// SetVariationCoordinates sets the normalized design space coordinates used
// to select alternate feature tables of a variable font.
func (b *PatternBuilder) SetVariationCoordinates(coords []ot.F2Dot14) {
	b.mustBeIdle("SetVariationCoordinates")
	b.coords = append([]ot.F2Dot14(nil), coords...)
}

func (b *PatternBuilder) mustBeIdle(op string) {
	assert(!b.active, "pattern builder: %s not allowed while adding features", op)
}

// AllocateMask hands out a fresh feature mask bit. Features registered with
// such a mask apply only to glyphs carrying the bit.
func (b *PatternBuilder) AllocateMask() FeatureMask {
	assert(b.nextBit < 32, "pattern builder ran out of feature mask bits")
	m := FeatureMask(1) << b.nextBit
	b.nextBit++
	return m
}

// BeginFeatures starts adding features of a kind. GSUB features must be
// added before GPOS features.
func (b *PatternBuilder) BeginFeatures(kind FeatureKind) {
	b.mustBeIdle("BeginFeatures")
	assert(kind == Positioning || !b.positioning, "GSUB features must precede GPOS features")
	b.kind, b.active = kind, true
	b.positioning = b.positioning || kind == Positioning
	if kind == Substitution {
		b.table = b.font.GSub()
	} else {
		b.table = b.font.GPos()
	}
	b.langSys, b.hasLang = b.table.FindLangSys(b.pattern.Script, b.pattern.Language)
	b.subst = nil
	if b.table != nil {
		b.subst = ot.SearchFeatureSubstitutionTable(b.table.FeatureVariations(), b.coords)
	}
	tracer().Debugf("pattern builder: %s features for %s/%s, langsys found = %v",
		kind, b.pattern.Script, b.pattern.Language, b.hasLang)
}

// RequiredFeature returns the tag of the required feature of the current
// language system, or 0.
func (b *PatternBuilder) RequiredFeature() ot.Tag {
	assert(b.active, "pattern builder: RequiredFeature outside of BeginFeatures/EndFeatures")
	if !b.hasLang || b.langSys.RequiredFeatureIndex == ot.NoRequiredFeature {
		return 0
	}
	return b.table.FeatureTag(int(b.langSys.RequiredFeatureIndex))
}

// AddFeature adds the lookups of a feature to the current unit. The lookups
// are collected from all feature records of the language system carrying
// the tag. AddFeature reports if the font supports the feature.
func (b *PatternBuilder) AddFeature(tag ot.Tag, mask FeatureMask) bool {
	assert(b.active, "pattern builder: AddFeature outside of BeginFeatures/EndFeatures")
	if !b.hasLang {
		return false
	}
	group := FeatureGroup{Tag: tag, Kind: b.kind, Mask: mask}
	lookups := treeset.NewWith(utils.UInt16Comparator)
	collect := func(index uint16) {
		if b.table.FeatureTag(int(index)) != tag {
			return
		}
		for _, l := range b.featureLookups(index) {
			if int(l) >= b.table.LookupCount() {
				tracer().Errorf("feature %s references lookup %d beyond lookup list", tag, l)
				continue
			}
			lookups.Add(l)
		}
	}
	if b.langSys.RequiredFeatureIndex != ot.NoRequiredFeature {
		collect(b.langSys.RequiredFeatureIndex)
	}
	for i := 0; i < b.langSys.FeatureCount(); i++ {
		collect(b.langSys.FeatureIndex(i))
	}
	if lookups.Empty() {
		tracer().Debugf("pattern builder: font has no lookups for %s feature %s", b.kind, tag)
		return false
	}
	for _, v := range lookups.Values() {
		group.Lookups = append(group.Lookups, v.(uint16))
	}
	b.pattern.FeatureGroups = append(b.pattern.FeatureGroups, group)
	if b.kind == Substitution {
		b.pattern.GroupCounts.GSub++
	} else {
		b.pattern.GroupCounts.GPos++
	}
	b.pending = append(b.pending, len(b.pattern.FeatureGroups)-1)
	return true
}

// featureLookups returns the lookups of a feature, honoring alternate
// feature tables for the variation coordinates.
func (b *PatternBuilder) featureLookups(index uint16) []uint16 {
	if alt := ot.SearchAlternateFeatureTable(b.subst, index); alt.Size() > 0 {
		tracer().Debugf("pattern builder: feature #%d replaced by feature variation", index)
		return ot.ViewFeatureTable(alt).LookupIndices()
	}
	return b.table.Feature(int(index)).LookupIndices()
}

// AddLookups adds lookups to the current unit directly, bypassing feature
// records. tag is recorded for information only.
func (b *PatternBuilder) AddLookups(tag ot.Tag, lookups ...uint16) {
	assert(b.active, "pattern builder: AddLookups outside of BeginFeatures/EndFeatures")
	for _, l := range lookups {
		b.lookups.Add(l)
	}
	b.extraTag = append(b.extraTag, tag)
}

// MakeFeatureUnit closes the current unit. Units without lookups are
// dropped. If any feature of the unit is global, the unit is global.
func (b *PatternBuilder) MakeFeatureUnit() {
	assert(b.active, "pattern builder: MakeFeatureUnit outside of BeginFeatures/EndFeatures")
	unit := FeatureUnit{}
	global := len(b.extraTag) > 0
	for _, gi := range b.pending {
		g := b.pattern.FeatureGroups[gi]
		for _, l := range g.Lookups {
			b.lookups.Add(l)
		}
		unit.Tags = append(unit.Tags, g.Tag)
		if g.Mask == 0 {
			global = true
		}
		unit.Mask |= g.Mask
	}
	unit.Tags = append(unit.Tags, b.extraTag...)
	if global {
		unit.Mask = 0
	}
	for _, v := range b.lookups.Values() {
		unit.Lookups = append(unit.Lookups, v.(uint16))
	}
	b.pending, b.extraTag = b.pending[:0], b.extraTag[:0]
	b.lookups.Clear()
	if len(unit.Lookups) == 0 {
		return
	}
	b.pattern.FeatureUnits = append(b.pattern.FeatureUnits, unit)
	if b.kind == Substitution {
		b.pattern.UnitCounts.GSub++
	} else {
		b.pattern.UnitCounts.GPos++
	}
}

// EndFeatures closes adding features of the current kind. A pending unit is
// made implicitly.
func (b *PatternBuilder) EndFeatures() {
	if len(b.pending) > 0 || len(b.extraTag) > 0 {
		b.MakeFeatureUnit()
	}
	assert(b.active, "pattern builder: EndFeatures without BeginFeatures")
	b.active = false
	b.table = nil
}

// Build returns the compiled pattern. The builder must not be used afterwards.
func (b *PatternBuilder) Build() *Pattern {
	b.mustBeIdle("Build")
	p := b.pattern
	b.pattern = nil
	tracer().Infof("pattern for %s/%s: %d GSUB units, %d GPOS units, %d features",
		p.Script, p.Language, p.UnitCounts.GSub, p.UnitCounts.GPos, len(p.FeatureGroups))
	return p
}
