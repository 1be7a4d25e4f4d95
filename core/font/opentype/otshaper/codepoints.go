package otshaper

import "unicode/utf8"

// TextMode selects the order in which discovery walks the input text.
type TextMode uint8

// Text modes. Backward puts a right-to-left text into visual order, and
// lookups then see the glyphs in visual order.
const (
	Forward TextMode = iota
	Backward
)

func (m TextMode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "invalid-mode"
}

// Codepoints is a cursor over the codepoints of an input text. Index counts
// runes: walking forward, it is the index of the next codepoint to read;
// walking backward, it is the index of the codepoint read last.
type Codepoints struct {
	Index    int
	text     []rune
	backward bool
}

// NewCodepoints creates a cursor over text.
func NewCodepoints(text []rune, backward bool) *Codepoints {
	cp := &Codepoints{text: text, backward: backward}
	cp.Reset()
	return cp
}

// Reset moves the cursor to the start of the text, or to its end if walking
// backward.
func (cp *Codepoints) Reset() {
	if cp.backward {
		cp.Index = len(cp.text)
	} else {
		cp.Index = 0
	}
}

// Next returns the next codepoint and advances the cursor. It returns false
// if the cursor is exhausted.
func (cp *Codepoints) Next() (rune, bool) {
	if cp.backward {
		if cp.Index <= 0 {
			return utf8.RuneError, false
		}
		cp.Index--
		return cp.text[cp.Index], true
	}
	if cp.Index >= len(cp.text) {
		return utf8.RuneError, false
	}
	r := cp.text[cp.Index]
	cp.Index++
	return r, true
}

// DecodeText converts an UTF-8 input text to runes. Invalid UTF-8 is an
// error.
func DecodeText(s string) ([]rune, error) {
	if !utf8.ValidString(s) {
		return nil, errShaper("input text is not valid UTF-8")
	}
	return []rune(s), nil
}
