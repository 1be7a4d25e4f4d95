package otshaper

import (
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ISO 15924 script codes to OpenType script tags.
// See https://unicode.org/iso15924/iso15924-codes.html and
// https://learn.microsoft.com/en-us/typography/opentype/spec/scripttags
var script2opentype = map[string]string{
	"Zzzz": "DFLT", // unknown
	"Zyyy": "DFLT", // common
	//
	"Adlm": "adlm", // Adlam
	"Ahom": "ahom", // Ahom
	"Arab": "arab", // Arabic
	"Armn": "armn", // Armenian
	"Bali": "bali", // Balinese
	"Batk": "batk", // Batak
	"Beng": "bng2", // Bengali, not beng
	"Bopo": "bopo", // Bopomofo
	"Brai": "brai", // Braille
	"Brah": "brah", // Brahmi
	"Bugi": "bugi", // Buginese
	"Buhd": "buhd", // Buhid
	"Cakm": "cakm", // Chakma
	"Cans": "cans", // Canadian Syllabics
	"Cham": "cham", // Cham
	"Cher": "cher", // Cherokee
	"Copt": "copt", // Coptic
	"Cyrl": "cyrl", // Cyrillic
	"Deva": "dev2", // Devanagari, not deva
	"Ethi": "ethi", // Ethiopic
	"Geor": "geor", // Georgian
	"Glag": "glag", // Glagolitic
	"Goth": "goth", // Gothic
	"Grek": "grek", // Greek
	"Gujr": "gjr2", // Gujarati, not gujr
	"Guru": "gur2", // Gurmukhi, not guru
	"Hang": "hang", // Hangul
	"Hani": "hani", // Han
	"Hans": "hani", // Han (simplified)
	"Hant": "hani", // Han (traditional)
	"Hebr": "hebr", // Hebrew
	"Hira": "kana", // Hiragana shares the kana tag
	"Java": "java", // Javanese
	"Kana": "kana", // Katakana
	"Khmr": "khmr", // Khmer
	"Knda": "knd2", // Kannada, not knda
	"Laoo": "lao ", // Lao
	"Latn": "latn", // Latin
	"Lepc": "lepc", // Lepcha
	"Limb": "limb", // Limbu
	"Mlym": "mlm2", // Malayalam, not mlym
	"Mong": "mong", // Mongolian
	"Mymr": "mym2", // Myanmar, not mymr
	"Nkoo": "nko ", // N'Ko
	"Ogam": "ogam", // Ogham
	"Olck": "olck", // Ol Chiki
	"Orya": "ory2", // Oriya, not orya
	"Runr": "runr", // Runic
	"Sinh": "sinh", // Sinhala
	"Sund": "sund", // Sundanese
	"Syrc": "syrc", // Syriac
	"Tale": "tale", // Tai Le
	"Taml": "tml2", // Tamil, not taml
	"Telu": "tel2", // Telugu, not telu
	"Tfng": "tfng", // Tifinagh
	"Tglg": "tglg", // Tagalog
	"Thaa": "thaa", // Thaana
	"Thai": "thai", // Thai
	"Tibt": "tibt", // Tibetan
	"Vaii": "vai ", // Vai
	"Yiii": "yi  ", // Yi
}

// OpenType language system tags for the languages we match against.
var supportedLanguages = map[language.Tag]string{
	language.Arabic:     "ARA",
	language.Chinese:    "ZHS",
	language.English:    "ENG",
	language.Greek:      "ELL",
	language.German:     "DEU",
	language.Hebrew:     "IWR",
	language.Hindi:      "HIN",
	language.Japanese:   "JAN",
	language.Persian:    "FAR",
	language.Portuguese: "PTG",
	language.Romanian:   "ROM",
	language.Russian:    "RUS",
	language.Turkish:    "TRK",
	language.Urdu:       "URD",
}

// supportedLanguagesMatcher matches user-preferred languages against
// supportedLanguages.
var supportedLanguagesMatcher language.Matcher

func init() {
	langs := make([]language.Tag, 0, len(supportedLanguages))
	for l := range supportedLanguages {
		langs = append(langs, l)
	}
	supportedLanguagesMatcher = language.NewMatcher(langs)
}

// ScriptTagForScript returns the OpenType script tag for an ISO 15924
// script code. It will return the DFLT-tag for unknown or unsupported scripts.
func ScriptTagForScript(script language.Script) ot.Tag {
	if otScr, ok := script2opentype[script.String()]; ok {
		return ot.T(otScr)
	}
	return ot.DFLT
}

// LanguageTagForLanguage returns the OpenType language tag for a BCP 47
// language tag.
// If no supported language matches with a confidence of at least conf,
// 0 is returned, which selects the default language system of a script.
func LanguageTagForLanguage(lang language.Tag, conf language.Confidence) ot.Tag {
	l, _, c := supportedLanguagesMatcher.Match(lang)
	tracer().Debugf("OpenType language matched %s (%s) : %s", display.English.Tags().Name(l),
		display.Self.Name(l), c)
	if c < conf {
		return 0
	}
	base, _ := language.Compose(l.Base()) // re-package l to cleanly match base language constant
	if ltag, ok := supportedLanguages[base]; ok {
		return ot.T(ltag)
	}
	return 0
}
