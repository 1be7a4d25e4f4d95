package otshape

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/segment"
)

var graphemeClassesSetup sync.Once

// graphemeClusters returns for each rune of a text the index of the
// grapheme cluster it belongs to.
func graphemeClusters(text []rune) []int {
	graphemeClassesSetup.Do(grapheme.SetupGraphemeClasses)
	clusters := make([]int, 0, len(text))
	splitter := segment.NewSegmenter(grapheme.NewBreaker(1))
	splitter.Init(strings.NewReader(string(text)))
	c := 0
	for ; splitter.Next(); c++ {
		n := utf8.RuneCount(splitter.Bytes())
		for k := 0; k < n && len(clusters) < len(text); k++ {
			clusters = append(clusters, c)
		}
	}
	for ; len(clusters) < len(text); c++ {
		clusters = append(clusters, c)
	}
	return clusters
}
