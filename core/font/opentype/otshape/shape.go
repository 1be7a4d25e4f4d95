package otshape

import (
	"context"

	"github.com/npillmayer/otshaping/core/font"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/otshaping/core/font/opentype/otshaper"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of shaping a text: positioned glyphs in visual
// order. Offsets and advances are in font units.
type Result struct {
	Glyphs      []ot.GlyphIndex
	Offsets     []otshaper.Point
	Advances    []int32
	CharRanges  []otshaper.CharRange // runes of the text each glyph covers
	Attachments []int                // base a mark is attached to, or -1
	Clusters    []int                // grapheme cluster of the first rune of each glyph
}

// Len returns the number of glyphs.
func (r Result) Len() int {
	return len(r.Glyphs)
}

// Advance is the sum of all advances.
func (r Result) Advance() int32 {
	var w int32
	for _, a := range r.Advances {
		w += a
	}
	return w
}

// Shape shapes a text with a font. It compiles a plan for a single use; to
// shape more than one text with the same parameters, use NewPlan.
func Shape(f *font.Font, text string, params Params) (Result, error) {
	plan, err := NewPlan(f, params)
	if err != nil {
		return Result{}, err
	}
	return plan.Shape(text)
}

// Shape shapes a text. text has to be valid UTF-8.
func (plan *Plan) Shape(text string) (Result, error) {
	runes, err := otshaper.DecodeText(text)
	if err != nil {
		return Result{}, err
	}
	album := otshaper.NewAlbum()
	album.Reset(runes)
	// lookups see logical order; right-to-left output is reversed in collect
	p := otshaper.NewTextProcessor(plan.pattern, album, plan.params.Direction, otshaper.Forward, plan.interp)
	p.SetPPEM(plan.params.PPEM)
	p.DiscoverGlyphs()
	plan.setFeatureMasks(album)
	p.SubstituteGlyphs()
	p.PositionGlyphs()
	p.WrapUp()
	result := plan.collect(album)
	if !plan.kern.IsEmpty() {
		plan.applyKerning(&result)
	}
	tracer().Debugf("shaped %d runes to %d glyphs", len(runes), result.Len())
	return result, nil
}

// setFeatureMasks sets the mask bits of partially applied features.
func (plan *Plan) setFeatureMasks(album *otshaper.Album) {
	if len(plan.partial) == 0 {
		return
	}
	n := len(album.Text())
	enabled := make([][]bool, len(plan.partial))
	for k, pf := range plan.partial {
		enabled[k] = pf.enabled(n)
	}
	for i := 0; i < album.GlyphCount(); i++ {
		c := album.CharRange(i).Start
		if c >= n {
			continue
		}
		var mask otshaper.FeatureMask
		for k, pf := range plan.partial {
			if enabled[k][c] {
				mask |= pf.mask
			}
		}
		album.SetFeatureMask(i, mask)
	}
}

func (plan *Plan) collect(album *otshaper.Album) Result {
	n := album.GlyphCount()
	r := Result{
		Glyphs:      album.Glyphs(),
		Offsets:     make([]otshaper.Point, n),
		Advances:    make([]int32, n),
		CharRanges:  make([]otshaper.CharRange, n),
		Attachments: make([]int, n),
		Clusters:    make([]int, n),
	}
	clusters := graphemeClusters(album.Text())
	for i := 0; i < n; i++ {
		r.Offsets[i] = album.Offset(i)
		r.Advances[i] = album.Advance(i)
		r.CharRanges[i] = album.CharRange(i)
		r.Attachments[i] = otshaper.InvalidIndex
		if !album.IsCursive(i) {
			r.Attachments[i] = album.Attachment(i)
		}
		if c := r.CharRanges[i].Start; c < len(clusters) {
			r.Clusters[i] = clusters[c]
		} else if len(clusters) > 0 {
			r.Clusters[i] = clusters[len(clusters)-1]
		}
	}
	if plan.params.Direction == otshaper.RightToLeft {
		r.reverse()
	}
	return r
}

// reverse puts a result in logical order into visual order of a
// right-to-left run.
func (r *Result) reverse() {
	n := r.Len()
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		r.Glyphs[i], r.Glyphs[j] = r.Glyphs[j], r.Glyphs[i]
		r.Offsets[i], r.Offsets[j] = r.Offsets[j], r.Offsets[i]
		r.Advances[i], r.Advances[j] = r.Advances[j], r.Advances[i]
		r.CharRanges[i], r.CharRanges[j] = r.CharRanges[j], r.CharRanges[i]
		r.Attachments[i], r.Attachments[j] = r.Attachments[j], r.Attachments[i]
		r.Clusters[i], r.Clusters[j] = r.Clusters[j], r.Clusters[i]
	}
	for i, a := range r.Attachments {
		if a != otshaper.InvalidIndex {
			r.Attachments[i] = n - 1 - a
		}
	}
}

// applyKerning adjusts the advances of glyph pairs from table kern. Glyphs
// attached to other glyphs do not take part in kerning.
func (plan *Plan) applyKerning(r *Result) {
	prev := otshaper.InvalidIndex
	for i, g := range r.Glyphs {
		if r.Attachments[i] != otshaper.InvalidIndex {
			continue
		}
		if prev != otshaper.InvalidIndex {
			r.Advances[prev] += plan.kern.Kerning(r.Glyphs[prev], g)
		}
		prev = i
	}
}

// ShapeLines shapes lines of text concurrently with the same parameters.
// The first error cancels shaping of the remaining lines.
func ShapeLines(ctx context.Context, f *font.Font, lines []string, params Params) ([]Result, error) {
	plan, err := NewPlan(f, params)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := plan.Shape(line)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
