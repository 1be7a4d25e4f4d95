package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func help(topic string) {
	tracer().Infof("help %v", topic)
	switch strings.ToLower(topic) {
	case "script", "scripts", "langs", "lang", "langsys", "language":
		pterm.Info.Println("ScriptList / Script / LangSys")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+

	LangSys links a language with features to activate, using indices into the
	feature list. The first index is the required feature, if any.

	scripts          list the scripts of GSUB and GPOS, with their languages
	langs <script>   list the languages of a script, e.g. "langs latn"
	`)
	case "set", "show", "shape", "compare", "features", "feature":
		pterm.Info.Println("Shaping")
		pterm.Println(`
	set script <ISO 15924>   script of the text, e.g. "set script Arab"
	set lang <BCP 47>        language of the text, e.g. "set lang de-CH"
	set dir <ltr|rtl>        direction, default from the script
	set ppem <n>             pixels per em for device tables
	set features <list>      e.g. "set features -liga,smcp[0:3]", ranges in runes
	set kern <true|false>    use table kern if the font has no GPOS
	show                     show the settings
	shape <text>             shape text and list the glyphs
	compare <text>           compare the glyphs with HarfBuzz
	`)
	case "device":
		pterm.Info.Println("Device tables")
		pterm.Println(`
	device <hex> <ppem>      decode a device table, e.g. "device 000b000d0001_0110 12"
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	load <font>              load a font file or system font ("font" works, too)
	info | names [lang] | metrics
	scripts | langs <script>
	features [gsub|gpos] | lookups [gsub|gpos]
	glyph <char> | glyph #<id>
	set | show | shape | compare
	device <hex> <ppem>
	quit

	"help scripts", "help shape" and "help device" tell more.
	`)
	}
}
