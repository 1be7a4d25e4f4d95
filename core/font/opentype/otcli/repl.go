package main

import (
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/otlayout"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape/hbref"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	repl     *readline.Instance
	settings testconfig.Conf    // shaping parameters, see otshape.ParamsFromConfig
	sfont    *font.ScalableFont // font binary, for HarfBuzz
	font     *font.Font         // shaping handle of sfont
	hb       *hbref.Shaper      // created on first use
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			continue
		}
		if quit {
			break
		}
	}
	if intp.font != nil {
		intp.font.Release()
	}
	pterm.Info.Println("Good bye!")
}

// Op codes of commands.
const (
	QUIT int = iota
	HELP
	LOAD
	INFO
	NAMES
	METRICS
	SCRIPTS
	LANGS
	FEATURES
	LOOKUPS
	GLYPH
	SET
	SHOW
	SHAPE
	COMPARE
	DEVICE
)

var commands = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"load":     LOAD,
	"font":     LOAD,
	"info":     INFO,
	"names":    NAMES,
	"metrics":  METRICS,
	"scripts":  SCRIPTS,
	"langs":    LANGS,
	"features": FEATURES,
	"lookups":  LOOKUPS,
	"glyph":    GLYPH,
	"set":      SET,
	"show":     SHOW,
	"shape":    SHAPE,
	"compare":  COMPARE,
	"device":   DEVICE,
}

// Command is a parsed input line. Args are the words following the command,
// Text is the rest of the line following the command verbatim.
type Command struct {
	code int
	name string
	args []string
	text string
}

func parseCommand(line string) (Command, error) {
	words := strings.Fields(line)
	name := strings.ToLower(words[0])
	code, ok := commands[name]
	if !ok {
		return Command{}, core.Error(core.EINVALID, "unknown command %q, try 'help'", words[0])
	}
	cmd := Command{code: code, name: name, args: words[1:]}
	cmd.text = strings.TrimSpace(strings.TrimPrefix(line, words[0]))
	tracer().Debugf("parse command = %v", cmd)
	return cmd, nil
}

// arg returns argument i or "".
func (cmd Command) arg(i int) string {
	if i < len(cmd.args) {
		return cmd.args[i]
	}
	return ""
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help(cmd.arg(0))
		return false, nil
	case LOAD:
		return false, intp.loadFont(cmd.text)
	case SET:
		return false, intp.set(cmd.arg(0), strings.Join(cmd.args[min(1, len(cmd.args)):], " "))
	case SHOW:
		intp.show()
		return false, nil
	case DEVICE:
		return false, decodeDevice(cmd.arg(0), cmd.arg(1))
	}
	if intp.font == nil {
		return false, core.Error(core.EMISSING, "no font loaded")
	}
	switch cmd.code {
	case INFO:
		intp.info()
	case NAMES:
		return false, intp.names(cmd.arg(0))
	case METRICS:
		intp.metrics()
	case SCRIPTS:
		intp.scripts()
	case LANGS:
		return false, intp.langs(cmd.arg(0))
	case FEATURES:
		return false, intp.features(cmd.arg(0))
	case LOOKUPS:
		return false, intp.lookups(cmd.arg(0))
	case GLYPH:
		return false, intp.glyph(cmd.text)
	case SHAPE:
		return false, intp.shape(cmd.text)
	case COMPARE:
		return false, intp.compare(cmd.text)
	}
	return false, nil
}

// loadFont loads a font file or system font. An empty name loads Go Sans.
func (intp *Intp) loadFont(name string) error {
	var sf *font.ScalableFont
	if name == "" {
		sf = font.FallbackFont()
	} else {
		fpath := name
		if _, err := os.Stat(fpath); err != nil {
			if fpath, err = font.FindLocalFont(name); err != nil {
				return err
			}
		}
		var err error
		if sf, err = font.LoadOpenTypeFont(fpath); err != nil {
			return err
		}
	}
	f, err := sf.Font()
	if err != nil {
		return err
	}
	if intp.font != nil {
		intp.font.Release()
	}
	intp.sfont, intp.font, intp.hb = sf, f, nil
	tracer().Infof("loaded font %s from %s", sf.Fontname, sf.Filepath)
	pterm.Success.Printfln("font %s loaded", sf.Fontname)
	return nil
}

// settingKeys maps the names of the set command to configuration keys.
var settingKeys = map[string]string{
	"script":   otshape.ConfigScript,
	"lang":     otshape.ConfigLanguage,
	"dir":      otshape.ConfigDirection,
	"ppem":     otshape.ConfigPPEM,
	"features": otshape.ConfigFeatures,
	"kern":     otshape.ConfigKerning,
}

// set changes a shaping parameter. The parameters are checked before they
// are kept.
func (intp *Intp) set(name, value string) error {
	key, ok := settingKeys[strings.ToLower(name)]
	if !ok {
		return core.Error(core.EINVALID, "unknown setting %q", name)
	}
	old := intp.settings.Set(key, value)
	if _, err := otshape.ParamsFromConfig(intp.settings, nil); err != nil {
		intp.settings.Set(key, old)
		return err
	}
	return nil
}

func (intp *Intp) show() {
	data := pterm.TableData{{"Setting", "Value"}}
	for _, name := range []string{"script", "lang", "dir", "ppem", "features", "kern"} {
		data = append(data, []string{name, intp.settings.GetString(settingKeys[name])})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// completer completes command names and feature tags.
func completer() *readline.PrefixCompleter {
	featureTags := func(line string) []string {
		words := strings.Fields(line)
		prefix := ""
		if len(words) > 2 && !strings.HasSuffix(line, " ") {
			prefix = strings.TrimLeft(words[len(words)-1], "+-")
		}
		return otlayout.CompleteFeatureTag(prefix)
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for name := range commands {
		if name == "set" {
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	settings := make([]readline.PrefixCompleterInterface, 0, len(settingKeys))
	for name := range settingKeys {
		if name == "features" {
			settings = append(settings, readline.PcItem(name, readline.PcItemDynamic(featureTags)))
			continue
		}
		settings = append(settings, readline.PcItem(name))
	}
	items = append(items, readline.PcItem("set", settings...))
	return readline.NewPrefixCompleter(items...)
}
