package otshape

import (
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otlayout"
	"github.com/npillmayer/otshaping/core/font/opentype/otquery"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
)

// Plan is a compiled shaping plan: a pattern of feature units together with
// the information needed to switch features for parts of a text.
//
// A Plan is immutable and safe for concurrent use.
type Plan struct {
	font    *font.Font
	pattern *otshaper.Pattern
	params  Params
	interp  *otlayout.Interpreter
	partial []partialFeature // features applied to parts of a text
	kern    otquery.KernTable
}

// partialFeature is a feature with a mask bit of its own. Glyphs carry the
// bit if the feature is switched on for their first character.
type partialFeature struct {
	tag      ot.Tag
	mask     otshaper.FeatureMask
	byDefault bool
	ranges   []FeatureRange
}

// featureState is the state of a feature after applying the user's feature
// ranges to the default of the script.
type featureState uint8

const (
	featureOff featureState = iota
	featureOn
	featurePartial
)

// NewPlan compiles a shaping plan for a font.
//
// Features of the script knowledge of params.Registry are switched on by
// default. Features of params.Features not known to the registry are added
// after them. Features switched on for parts of a text only get a mask bit
// of their own, all others are global.
func NewPlan(f *font.Font, params Params) (*Plan, error) {
	if f == nil {
		return nil, errShaper("no font to shape with")
	}
	if params.Script == 0 {
		params.Script = ot.DFLT
	}
	if params.Registry == nil {
		params.Registry = otshaper.StandardScriptRegistry()
	}
	if params.PPEM < 0 {
		return nil, errShaper("negative ppem %d", params.PPEM)
	}
	plan := &Plan{
		font:   f,
		params: params,
		interp: &otlayout.Interpreter{Alternate: params.Alternate},
	}
	if params.FallbackKerning && f.GPos() == nil {
		plan.kern = otquery.LoadKernTable(f)
	}
	knowledge := params.Registry.Seek(params.Script)
	b := otshaper.NewPatternBuilder(f)
	b.SetScript(params.Script, params.Direction)
	b.SetLanguage(params.Language)
	b.SetVariationCoordinates(params.Coords)
	masks := make(map[ot.Tag]otshaper.FeatureMask)
	var err error
	for _, kind := range []otshaper.FeatureKind{otshaper.Substitution, otshaper.Positioning} {
		var defaults [][]ot.Tag
		if knowledge != nil {
			defaults = knowledge.Features(kind)
		}
		b.BeginFeatures(kind)
		if req := b.RequiredFeature(); req != 0 {
			b.AddFeature(req, 0)
			b.MakeFeatureUnit()
		}
		known := make(map[ot.Tag]bool)
		for _, unit := range defaults {
			for _, tag := range unit {
				known[tag] = true
				plan.addFeature(b, tag, true, masks, &err)
			}
			b.MakeFeatureUnit()
		}
		for _, fr := range params.Features {
			if !known[fr.Feature] && !knownIn(knowledge, fr.Feature) {
				known[fr.Feature] = true
				plan.addFeature(b, fr.Feature, false, masks, &err)
			}
		}
		b.EndFeatures()
		if err != nil {
			return nil, err
		}
	}
	plan.pattern = b.Build()
	return plan, nil
}

// knownIn is true if a feature is part of any of the feature lists of a
// script's knowledge.
func knownIn(k *otshaper.ScriptKnowledge, tag ot.Tag) bool {
	if k == nil {
		return false
	}
	for _, kind := range []otshaper.FeatureKind{otshaper.Substitution, otshaper.Positioning} {
		for _, unit := range k.Features(kind) {
			for _, t := range unit {
				if t == tag {
					return true
				}
			}
		}
	}
	return false
}

// addFeature adds a feature to the current unit, depending on the user's
// feature ranges. A feature present in GSUB and GPOS shares its mask bit.
func (plan *Plan) addFeature(b *otshaper.PatternBuilder, tag ot.Tag, byDefault bool,
	masks map[ot.Tag]otshaper.FeatureMask, err *error) {
	//
	var ranges []FeatureRange
	for _, fr := range plan.params.Features {
		if fr.Feature == tag {
			ranges = append(ranges, fr)
		}
	}
	switch featureStateOf(byDefault, ranges) {
	case featureOff:
		return
	case featureOn:
		b.AddFeature(tag, 0)
		return
	}
	mask, ok := masks[tag]
	if !ok {
		if len(masks) >= 32 {
			*err = errShaper("too many features applied to parts of the text")
			return
		}
		mask = b.AllocateMask()
		masks[tag] = mask
		plan.partial = append(plan.partial, partialFeature{
			tag:      tag,
			mask:     mask,
			byDefault: byDefault,
			ranges:   ranges,
		})
	}
	b.AddFeature(tag, mask)
}

// featureStateOf determines the state of a feature from its default and the
// ranges switching it.
func featureStateOf(byDefault bool, ranges []FeatureRange) featureState {
	state := featureOff
	if byDefault {
		state = featureOn
	}
	for _, fr := range ranges {
		if !fr.Global() {
			return featurePartial
		}
		if fr.On {
			state = featureOn
		} else {
			state = featureOff
		}
	}
	return state
}

// enabled returns for each rune of a text of length n, if the feature is
// switched on.
func (pf partialFeature) enabled(n int) []bool {
	on := make([]bool, n)
	for i := range on {
		on[i] = pf.byDefault
	}
	for _, fr := range pf.ranges {
		end := fr.End
		if end < 0 || end > n {
			end = n
		}
		for i := max(fr.Start, 0); i < end; i++ {
			on[i] = fr.On
		}
	}
	return on
}

// Pattern returns the compiled pattern of a plan.
func (plan *Plan) Pattern() *otshaper.Pattern {
	return plan.pattern
}

// Params returns the parameters a plan has been compiled with.
func (plan *Plan) Params() Params {
	return plan.params
}
