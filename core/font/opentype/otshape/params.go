package otshape

import (
	"strconv"
	"strings"

	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otlayout"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"github.com/npillmayer/schuko"
	"golang.org/x/text/language"
)

// Params are the parameters of a shaping plan.
type Params struct {
	Script          ot.Tag                   // OpenType script tag, 0 for DFLT
	Language        ot.Tag                   // OpenType language tag, 0 for the default language system
	Direction       otshaper.TextDirection   // direction of the text run
	Features        []FeatureRange           // features switched on or off by the user, in order
	Coords          []ot.F2Dot14             // normalized variation coordinates
	PPEM            int                      // pixels per em for device tables, 0 for unhinted
	Registry        *otshaper.ScriptRegistry // script knowledge, nil for the standard registry
	Alternate       int                      // alternate to select by GSUB alternate substitutions, -1 for the last
	FallbackKerning bool                     // apply table kern if the font has no GPOS table
}

// FeatureRange switches a feature on or off for a range of the text. Start
// and End are indices of runes. An End < 0 extends the range to the end of
// the text.
type FeatureRange struct {
	Feature ot.Tag
	On      bool
	Start   int
	End     int
}

// Global is true if r covers any text completely.
func (r FeatureRange) Global() bool {
	return r.Start <= 0 && r.End < 0
}

func (r FeatureRange) String() string {
	var b strings.Builder
	if !r.On {
		b.WriteByte('-')
	}
	b.WriteString(strings.TrimSpace(r.Feature.String()))
	if !r.Global() {
		b.WriteString("[" + strconv.Itoa(r.Start) + ":")
		if r.End >= 0 {
			b.WriteString(strconv.Itoa(r.End))
		}
		b.WriteByte(']')
	}
	return b.String()
}

// ParseFeatures parses a comma separated list of feature settings. Every
// setting is a feature tag, optionally prefixed by '+' (on, the default) or
// '-' (off) and optionally followed by a rune range:
//
//	liga,-kern,smcp[3:7],+onum[5:]
//
// Tags have to be registered OpenType feature tags.
func ParseFeatures(s string) ([]FeatureRange, error) {
	var features []FeatureRange
	for _, setting := range strings.Split(s, ",") {
		setting = strings.TrimSpace(setting)
		if setting == "" {
			continue
		}
		fr := FeatureRange{On: true, End: -1}
		switch setting[0] {
		case '-':
			fr.On = false
			setting = setting[1:]
		case '+':
			setting = setting[1:]
		}
		tag := setting
		if i := strings.IndexByte(setting, '['); i >= 0 {
			tag = setting[:i]
			rng := strings.TrimSuffix(setting[i+1:], "]")
			from, to, ok := strings.Cut(rng, ":")
			if !ok || len(rng) == len(setting[i+1:]) {
				return nil, errShaper("malformed feature range %q", setting)
			}
			var err error
			if from != "" {
				if fr.Start, err = strconv.Atoi(from); err != nil || fr.Start < 0 {
					return nil, errShaper("malformed feature range start %q", setting)
				}
			}
			if to != "" {
				if fr.End, err = strconv.Atoi(to); err != nil || fr.End < fr.Start {
					return nil, errShaper("malformed feature range end %q", setting)
				}
			}
		}
		if !otlayout.IsRegisteredFeature(tag) {
			return nil, errShaper("unknown feature %q", tag)
		}
		fr.Feature = ot.T(tag)
		features = append(features, fr)
	}
	return features, nil
}

// Configuration keys read by ParamsFromConfig.
const (
	ConfigScript    = "shaping.script"    // ISO 15924 script code, e.g. "Latn"
	ConfigLanguage  = "shaping.language"  // BCP 47 language tag, e.g. "de-CH"
	ConfigDirection = "shaping.direction" // "ltr" or "rtl"; default from the script
	ConfigPPEM      = "shaping.ppem"      // pixels per em
	ConfigFeatures  = "shaping.features"  // feature list for ParseFeatures
	ConfigKerning   = "shaping.fallbackkern"
)

// ParamsFromConfig reads shaping parameters from a configuration. Script
// and language are translated to OpenType tags. Without a configured
// direction, the script's default direction from reg is used. reg may be
// nil for the standard registry.
func ParamsFromConfig(conf schuko.Configuration, reg *otshaper.ScriptRegistry) (Params, error) {
	if reg == nil {
		reg = otshaper.StandardScriptRegistry()
	}
	params := Params{Script: ot.DFLT, Registry: reg}
	if s := conf.GetString(ConfigScript); s != "" {
		scr, err := language.ParseScript(s)
		if err != nil {
			return params, errShaper("cannot parse script %q", s)
		}
		params.Script = otshaper.ScriptTagForScript(scr)
	}
	if s := conf.GetString(ConfigLanguage); s != "" {
		lang, err := language.Parse(s)
		if err != nil {
			return params, errShaper("cannot parse language %q", s)
		}
		params.Language = otshaper.LanguageTagForLanguage(lang, language.High)
	}
	switch dir := strings.ToLower(conf.GetString(ConfigDirection)); dir {
	case "":
		params.Direction = reg.DefaultDirection(params.Script)
	case "ltr":
		params.Direction = otshaper.LeftToRight
	case "rtl":
		params.Direction = otshaper.RightToLeft
	default:
		return params, errShaper("unknown text direction %q", dir)
	}
	if conf.IsSet(ConfigPPEM) {
		if params.PPEM = conf.GetInt(ConfigPPEM); params.PPEM < 0 {
			return params, errShaper("negative ppem %d", params.PPEM)
		}
	}
	params.FallbackKerning = conf.GetBool(ConfigKerning)
	features, err := ParseFeatures(conf.GetString(ConfigFeatures))
	if err != nil {
		return params, err
	}
	params.Features = features
	tracer().Debugf("shaping parameters from configuration: %s/%s %s, features %v",
		params.Script, params.Language, params.Direction, params.Features)
	return params, nil
}
