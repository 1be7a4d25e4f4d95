package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigateScripts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lyt, err := ParseLayoutTable(TagGSUB, testLayout().Bytes())
	require.NoError(t, err)
	scripts := lyt.ScriptList()
	assert.Equal(t, "ScriptList", scripts.Name())
	assert.Equal(t, 2, scripts.Len())
	link := scripts.LookupTag(T("latn"))
	require.False(t, link.IsNull())
	assert.Equal(t, "Script", link.Name())
	latn := NavigatorFactory(link.Name(), link.Jump())
	assert.False(t, latn.IsVoid())
	assert.NoError(t, latn.Error())
	assert.False(t, latn.Link().IsNull(), "latn has a default LangSys")
	assert.Equal(t, []Tag{T("TRK ")}, latn.Map().Tags())
	trk := viewLangSys(latn.Map().LookupTag(T("TRK ")).Jump())
	assert.Equal(t, uint16(2), trk.RequiredFeatureIndex)
	assert.True(t, scripts.LookupTag(T("arab")).IsNull())
	tag, _ := scripts.Get(5)
	if tag != 0 {
		t.Errorf("expected no tag for record out of range, is %s", tag)
	}
}

func TestNavigateFeaturesAndLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	lyt, err := ParseLayoutTable(TagGSUB, testLayout().Bytes())
	require.NoError(t, err)
	features := lyt.FeatureList()
	assert.Equal(t, []Tag{T("liga"), T("kern"), T("locl")}, features.Tags())
	kern := ViewFeatureTable(features.LookupTag(T("kern")).Jump())
	assert.Equal(t, []uint16{1, 0}, kern.LookupIndices())
	lookups := lyt.LookupList()
	assert.Equal(t, 2, lookups.Len())
	assert.Len(t, lookups.All(), 2)
	assert.Equal(t, uint16(7), binarySegm(lookups.Get(1).Bytes()).U16(0), "lookup type of extension")
	subtables := NavigatorFactory("Lookup", lookups.Get(1)).List()
	assert.Equal(t, 1, subtables.Len())
	assert.Equal(t, 0, lookups.Get(2).Size())
}

func TestVoidNavigators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	nav := NavigatorFactory("ScriptList", nil)
	assert.True(t, nav.IsVoid())
	assert.Error(t, nav.Error())
	assert.Equal(t, 0, nav.Map().Len())
	assert.True(t, nav.Map().LookupTag(T("latn")).IsNull())
	assert.Equal(t, 0, nav.List().Len())
	assert.True(t, nav.Link().IsNull())
	nav = NavigatorFactory("head", Location([]byte{0, 1, 0, 0}))
	assert.True(t, nav.IsVoid(), "unknown structure")
	assert.Error(t, nav.Error())
	nav = NavigatorFactory("MarkGlyphSets", Location([]byte{0, 2, 0, 0}))
	assert.True(t, nav.IsVoid(), "unknown mark glyph sets format")
}
