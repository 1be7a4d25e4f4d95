package otshaper

import (
	"sort"
	"sync"

	"github.com/npillmayer/otshaping/core/font/opentype/ot"
)

// ScriptKnowledge is what a shaper needs to know about a script: the
// direction it is written in and the features to apply. Each inner list of
// features is applied as one feature unit, in order.
type ScriptKnowledge struct {
	Script           ot.Tag
	DefaultDirection TextDirection
	GSubFeatures     [][]ot.Tag
	GPosFeatures     [][]ot.Tag
}

// Features returns the feature lists of a kind.
func (k *ScriptKnowledge) Features(kind FeatureKind) [][]ot.Tag {
	if kind == Substitution {
		return k.GSubFeatures
	}
	return k.GPosFeatures
}

// ScriptRegistry is an immutable collection of script knowledge. It is
// safe for concurrent use.
type ScriptRegistry struct {
	scripts  map[ot.Tag]*ScriptKnowledge
	fallback *ScriptKnowledge
}

// NewScriptRegistry creates a registry. Knowledge for the DFLT script, if
// present, serves as fallback for scripts without an entry.
func NewScriptRegistry(knowledge ...ScriptKnowledge) *ScriptRegistry {
	reg := &ScriptRegistry{scripts: make(map[ot.Tag]*ScriptKnowledge, len(knowledge))}
	for i := range knowledge {
		k := knowledge[i]
		reg.scripts[k.Script] = &k
	}
	reg.fallback = reg.scripts[ot.DFLT]
	return reg
}

// Seek returns the knowledge about a script. If the registry does not know
// the script, the fallback entry is returned, which may be nil.
func (reg *ScriptRegistry) Seek(script ot.Tag) *ScriptKnowledge {
	if k, ok := reg.scripts[script]; ok {
		return k
	}
	return reg.fallback
}

// DefaultDirection returns the direction a script is written in. Unknown
// scripts are written left to right.
func (reg *ScriptRegistry) DefaultDirection(script ot.Tag) TextDirection {
	if k, ok := reg.scripts[script]; ok {
		return k.DefaultDirection
	}
	return LeftToRight
}

// Scripts returns the tags of all scripts known to the registry, sorted.
func (reg *ScriptRegistry) Scripts() []ot.Tag {
	tags := make([]ot.Tag, 0, len(reg.scripts))
	for t := range reg.scripts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Feature lists shared by all scripts in the standard registry.
var (
	standardGSub = [][]ot.Tag{
		{ot.T("ccmp"), ot.T("locl")},
		{ot.T("rlig")},
		{ot.T("liga"), ot.T("clig"), ot.T("calt")},
	}
	semiticGSub = [][]ot.Tag{
		{ot.T("ccmp"), ot.T("locl")},
		{ot.T("rlig")},
		{ot.T("calt")},
		{ot.T("liga"), ot.T("clig"), ot.T("mset")},
	}
	standardGPos = [][]ot.Tag{
		{ot.T("kern"), ot.T("mark"), ot.T("mkmk")},
	}
	semiticGPos = [][]ot.Tag{
		{ot.T("curs"), ot.T("kern"), ot.T("mark"), ot.T("mkmk")},
	}
)

var standardRegistry *ScriptRegistry

var standardRegistryCreation sync.Once

// StandardScriptRegistry returns the registry of built-in script knowledge.
// It is created once and shared.
func StandardScriptRegistry() *ScriptRegistry {
	standardRegistryCreation.Do(func() {
		var knowledge []ScriptKnowledge
		seen := make(map[string]bool)
		for _, tag := range script2opentype {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			k := ScriptKnowledge{
				Script:       ot.T(tag),
				GSubFeatures: standardGSub,
				GPosFeatures: standardGPos,
			}
			if ot.CategoryOfScript(k.Script) == ot.SemiticScript || tag == "syrc" || tag == "thaa" || tag == "nko " {
				k.DefaultDirection = RightToLeft
			}
			if ot.CategoryOfScript(k.Script) == ot.SemiticScript || tag == "syrc" {
				k.GSubFeatures, k.GPosFeatures = semiticGSub, semiticGPos
			}
			knowledge = append(knowledge, k)
		}
		standardRegistry = NewScriptRegistry(knowledge...)
		tracer().Debugf("standard script registry knows %d scripts", len(knowledge))
	})
	return standardRegistry
}
