package otlayout

import (
	"testing"

	"github.com/npillmayer/otshaping/core"
	"github.com/npillmayer/otshaping/core/font/opentype/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestTagRegistry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	typ, err := IdentifyFeatureTag(ot.T("liga"))
	if err != nil {
		t.Fatal(err)
	}
	if typ != GSubFeatureType {
		t.Errorf("expected 'liga' to be found as a GSUB feature, isn't")
	}
	typ, _ = IdentifyFeatureTag(ot.T("kern"))
	assert.Equal(t, GPosFeatureType, typ)
	for _, tag := range []string{"ss01", "ss20", "cv01", "cv99"} {
		typ, err := IdentifyFeatureTag(ot.T(tag))
		assert.NoError(t, err, tag)
		assert.Equal(t, GSubFeatureType, typ, tag)
	}
	for _, tag := range []string{"ss00", "ss21", "cv00", "xyzw", "cvx1"} {
		_, err := IdentifyFeatureTag(ot.T(tag))
		if core.Code(err) != core.EINVALID {
			t.Errorf("expected %q to be unregistered, is %v", tag, err)
		}
	}
}

func TestFeatureTagCompletion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	assert.Equal(t, []string{"liga"}, CompleteFeatureTag("lig"))
	assert.Equal(t, []string{"ss01", "ss02", "ss03", "ss04", "ss05", "ss06", "ss07", "ss08", "ss09"},
		CompleteFeatureTag("ss0"))
	assert.Contains(t, CompleteFeatureTag("ss"), "ssty")
	assert.Empty(t, CompleteFeatureTag("qq"))
	assert.True(t, IsRegisteredFeature("kern"))
	assert.True(t, IsRegisteredFeature("cv42"))
	assert.False(t, IsRegisteredFeature("ker"))
	gpos := FeatureTagsOfType(GPosFeatureType)
	assert.Contains(t, gpos, ot.T("mkmk"))
	assert.NotContains(t, gpos, ot.T("liga"))
	assert.Equal(t, "GSUB", GSubFeatureType.String())
}
