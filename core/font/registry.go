package font

import (
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
)

// Registry is a type for holding loaded fonts, keyed by normalized font name.
// The registry holds one reference of every font stored.
type Registry struct {
	sync.Mutex
	fonts map[string]*Font
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold loaded fonts.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty font registry.
func NewRegistry() *Registry {
	return &Registry{fonts: make(map[string]*Font)}
}

// StoreFont pushes a font into the registry if it isn't contained yet.
// If name is already associated with a font, that font will not be
// overridden.
func (fr *Registry) StoreFont(name string, f *Font) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	key := fontKey(name)
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[key]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Name, key)
		fr.fonts[key] = f.Retain()
	}
}

// Font returns a font previously stored under name. The caller receives
// its own reference and has to release it.
//
// If no font is found, Font returns the fallback font together with an
// error.
func (fr *Registry) Font(name string) (*Font, error) {
	key := fontKey(name)
	tracer().Debugf("registry searches for font %s", key)
	fr.Lock()
	f, ok := fr.fonts[key]
	fr.Unlock()
	if ok {
		return f.Retain(), nil
	}
	tracer().Infof("registry does not contain font %s", key)
	err := core.Error(core.EMISSING, "font %s not found in registry", name)
	return fr.fallback(), err
}

// LoadFont finds a font and stores it in the registry. name may be a path
// to a font file or the name of a system font. The caller receives its own
// reference and has to release it.
//
// If the font cannot be found or loaded, LoadFont returns the fallback font
// together with an error.
func (fr *Registry) LoadFont(name string) (*Font, error) {
	f, err := fr.Font(name)
	if err == nil {
		return f, nil
	}
	f.Release() // fallback
	fpath := name
	if _, err := os.Stat(fpath); err != nil {
		if fpath, err = FindLocalFont(name); err != nil {
			return fr.fallback(), err
		}
	}
	sf, err := LoadOpenTypeFont(fpath)
	if err != nil {
		return fr.fallback(), err
	}
	if f, err = sf.Font(); err != nil {
		return fr.fallback(), err
	}
	fr.StoreFont(name, f)
	return f, nil
}

// FindLocalFont searches the system font directories for a font file.
func FindLocalFont(name string) (string, error) {
	fpath, err := findfont.Find(name)
	if err != nil || fpath == "" {
		return "", core.WrapError(err, core.EMISSING, "font %s not found on system", name)
	}
	tracer().Debugf("%s is a system font: %s", name, fpath)
	return fpath, nil
}

func (fr *Registry) fallback() *Font {
	const key = "fallback"
	fr.Lock()
	defer fr.Unlock()
	if f, ok := fr.fonts[key]; ok {
		return f.Retain()
	}
	f, err := FallbackFont().Font()
	if err != nil {
		panic("cannot create fallback font handle") // this cannot happen
	}
	tracer().Infof("font registry caches fallback font")
	fr.fonts[key] = f
	return f.Retain()
}

// Close releases all fonts held by the registry.
func (fr *Registry) Close() {
	fr.Lock()
	defer fr.Unlock()
	for k, f := range fr.fonts {
		f.Release()
		delete(fr.fonts, k)
	}
}

// Names returns the keys of all fonts in the registry, sorted.
func (fr *Registry) Names() []string {
	fr.Lock()
	defer fr.Unlock()
	names := make([]string, 0, len(fr.fonts))
	for k := range fr.fonts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LogFontList is a helper function to dump the list of known fonts
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	tracer().Infof("--- registered fonts ---")
	for _, k := range fr.Names() {
		tracer().Infof("font [%s]", k)
	}
	tracer().Infof("------------------------")
	tracer().SetTraceLevel(level)
}

func fontKey(name string) string {
	style, weight := GuessStyleAndWeight(name)
	return NormalizeFontname(name, style, weight)
}

// NormalizeFontname creates a registry key from a font name or file name.
func NormalizeFontname(fname string, style xfont.Style, weight xfont.Weight) string {
	fname = strings.TrimSpace(path.Base(fname))
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(strings.ReplaceAll(fname, " ", "_"))
	for _, suffix := range []string{"-regular", "-italic", "-bold", "-light"} {
		fname = strings.TrimSuffix(fname, suffix)
	}
	switch style {
	case xfont.StyleItalic, xfont.StyleOblique:
		fname += "-italic"
	}
	switch weight {
	case xfont.WeightLight, xfont.WeightExtraLight:
		fname += "-light"
	case xfont.WeightBold, xfont.WeightExtraBold, xfont.WeightSemiBold:
		fname += "-bold"
	}
	return fname
}

// GuessStyleAndWeight trys to guess a font's style and weight from the
// font's file name.
func GuessStyleAndWeight(fontfilename string) (xfont.Style, xfont.Weight) {
	fontfilename = path.Base(fontfilename)
	ext := path.Ext(fontfilename)
	fontfilename = strings.ToLower(fontfilename[:len(fontfilename)-len(ext)])
	s := strings.Split(fontfilename, "-")
	if len(s) > 1 {
		switch s[len(s)-1] {
		case "light", "xlight":
			return xfont.StyleNormal, xfont.WeightLight
		case "normal", "medium", "regular", "r":
			return xfont.StyleNormal, xfont.WeightNormal
		case "bold", "b":
			return xfont.StyleNormal, xfont.WeightBold
		case "xbold", "black":
			return xfont.StyleNormal, xfont.WeightExtraBold
		}
	}
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	if strings.Contains(fontfilename, "italic") {
		style = xfont.StyleItalic
	}
	if strings.Contains(fontfilename, "light") {
		weight = xfont.WeightLight
	}
	if strings.Contains(fontfilename, "bold") {
		weight = xfont.WeightBold
	}
	return style, weight
}
