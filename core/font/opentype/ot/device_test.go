package ot

import (
	"testing"

	"github.com/npillmayer/otshaping/core/font/opentype/ot/ottest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestDevicePixels2Bit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	values := []int{-2, 1, -1, 0, 1, 0, -2, -1, 0, 1, -1, -2}
	data := Location(ottest.Device(11, 22, DeltaLocal2BitDeltas, values))
	if d := GetDevicePixels(data, 11); d != -2 {
		t.Errorf("expected delta at size 11 to be -2, is %d", d)
	}
	if d := GetDevicePixels(data, 22); d != -2 {
		t.Errorf("expected delta at size 22 to be -2, is %d", d)
	}
	if d := GetDevicePixels(data, 10); d != 0 {
		t.Errorf("expected delta at size 10 to be 0, is %d", d)
	}
	if d := GetDevicePixels(data, 23); d != 0 {
		t.Errorf("expected delta at size 23 to be 0, is %d", d)
	}
	for i, v := range values {
		assert.Equal(t, int16(v), GetDevicePixels(data, 11+i), "size %d", 11+i)
	}
}

func TestDevicePixels4And8Bit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	values4 := []int{-8, 0, 7, 1, -1, -7}
	data := Location(ottest.Device(11, 16, DeltaLocal4BitDeltas, values4))
	for i, v := range values4 {
		assert.Equal(t, int16(v), GetDevicePixels(data, 11+i), "4-bit value at size %d", 11+i)
	}
	assert.Equal(t, int16(0), GetDevicePixels(data, 17))
	values8 := []int{-128, 0, 127}
	data = Location(ottest.Device(11, 13, DeltaLocal8BitDeltas, values8))
	for i, v := range values8 {
		assert.Equal(t, int16(v), GetDevicePixels(data, 11+i), "8-bit value at size %d", 11+i)
	}
	assert.Equal(t, int16(0), GetDevicePixels(data, 9))
}

func TestDevicePixelsDegenerate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.fonts")
	defer teardown()
	//
	varIndex := (&ottest.Builder{}).U16(3, 7, DeltaVariationIndex).Bytes()
	assert.Equal(t, int16(0), GetDevicePixels(Location(varIndex), 5), "VariationIndex table")
	truncated := (&ottest.Builder{}).U16(10, 40, DeltaLocal8BitDeltas, 0x7f7f).Bytes()
	assert.Equal(t, int16(127), GetDevicePixels(Location(truncated), 11))
	assert.Equal(t, int16(0), GetDevicePixels(Location(truncated), 30), "truncated table")
	assert.Equal(t, int16(0), GetDevicePixels(nil, 12))
	assert.Equal(t, int16(0), GetDevicePixels(Location([]byte{0, 1}), 1))
}
