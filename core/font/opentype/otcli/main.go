/*
Command otcli is an interactive tool to inspect OpenType fonts and shape
text with them.

	otcli [--trace=Debug] [--script=Latn] [--lang=de] [font]

font may be a path to a font file or the name of a system font. Without a
font, Go Sans is used. Quit the REPL with <ctrl>D or "quit"; "help" lists
the commands.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/chzyer/readline"
	"github.com/npillmayer/otshaping/core/font/opentype/otshape"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

var args struct {
	Trace    string `short:"t" enum:"Debug,Info,Error" default:"Error" help:"Trace level [Debug|Info|Error]"`
	Script   string `short:"s" help:"ISO 15924 script of the text, e.g. Latn"`
	Lang     string `short:"l" help:"BCP 47 language of the text, e.g. de-CH"`
	Features string `short:"f" help:"Features, e.g. \"-liga,smcp[0:3]\""`
	Font     string `arg:"" optional:"" name:"font" help:"Font file or system font to load"`
}

func main() {
	kong.Parse(&args, kong.Name("otcli"), kong.Description("Inspect OpenType fonts and shape text."))
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.tyse.fonts":   args.Trace,
		"trace.tyse.shaping": args.Trace,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	settings := testconfig.Conf{
		otshape.ConfigScript:   args.Script,
		otshape.ConfigLanguage: args.Lang,
		otshape.ConfigFeatures: args.Features,
	}
	pterm.Info.Println("Welcome to OpenType CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "ot > ",
		AutoComplete: completer(),
	})
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{repl: repl, settings: settings}
	//
	// load font to use
	if err := intp.loadFont(args.Font); err != nil { // font name provided as argument
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
