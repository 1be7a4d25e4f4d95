package ot

// Device tables hold, for an inclusive range of pixel sizes, one signed
// adjustment per size. Values are packed into 16 bit words, most significant
// bits first, at a width selected by the delta format.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#device-and-variationindex-tables

// Delta formats of device tables.
const (
	DeltaLocal2BitDeltas uint16 = 0x0001 // signed 2-bit value, 8 values per uint16
	DeltaLocal4BitDeltas uint16 = 0x0002 // signed 4-bit value, 4 values per uint16
	DeltaLocal8BitDeltas uint16 = 0x0003 // signed 8-bit value, 2 values per uint16
	DeltaVariationIndex  uint16 = 0x8000 // VariationIndex table, contains a delta-set index pair
)

const deviceHeaderSize = 6

// GetDevicePixels decodes the adjustment in pixels a device table stores for
// a pixel size (ppem). Pixel sizes outside the table's range, VariationIndex
// tables, unknown formats and truncated data yield 0.
func GetDevicePixels(device NavLocation, ppem int) int16 {
	if device == nil {
		return 0
	}
	b := binarySegm(device.Bytes())
	if len(b) < deviceHeaderSize {
		return 0
	}
	start, end := int(b.U16(0)), int(b.U16(2))
	var bits int
	switch b.U16(4) {
	case DeltaLocal2BitDeltas:
		bits = 2
	case DeltaLocal4BitDeltas:
		bits = 4
	case DeltaLocal8BitDeltas:
		bits = 8
	default:
		return 0
	}
	if ppem < start || ppem > end {
		return 0
	}
	bitOffset := (ppem - start) * bits
	word, err := b.u16(deviceHeaderSize + 2*(bitOffset/16))
	if err != nil {
		tracer().Debugf("device table truncated at size %d", ppem)
		return 0
	}
	shift := 16 - bits - bitOffset%16
	mask := uint16(1)<<bits - 1
	value := int16((word >> shift) & mask)
	if value&(1<<(bits-1)) != 0 { // sign-extend
		value -= 1 << bits
	}
	return value
}
