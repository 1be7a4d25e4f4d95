package ot

// Feature variations let a variable font replace feature tables depending on
// the position in design space. A FeatureVariations table holds an ordered
// list of records, each pairing a condition set with a feature table
// substitution table.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#featvartable

// F2Dot14 is a signed 2.14 fixed-point number, used for normalized
// design-space coordinates.
type F2Dot14 int16

// F2Dot14FromFloat converts a float to 2.14 fixed-point, rounding to the
// nearest representable value.
func F2Dot14FromFloat(f float64) F2Dot14 {
	v := f * (1 << 14)
	if v < 0 {
		v -= 0.5
	} else {
		v += 0.5
	}
	if v > 32767 {
		return 32767
	} else if v < -32768 {
		return -32768
	}
	return F2Dot14(v)
}

// Float returns the value of f as a float.
func (f F2Dot14) Float() float64 {
	return float64(f) / (1 << 14)
}

const (
	featureVariationRecordSize  = 8 // Offset32 conditionSet, Offset32 featureTableSubstitution
	featureSubstitutionRecSize  = 6 // uint16 featureIndex, Offset32 alternateFeature
	conditionFormatAxisRange    = 1
	conditionAxisRangeTableSize = 8
)

// SearchFeatureSubstitutionTable returns the feature table substitution table
// of the first record in a FeatureVariations table whose condition set is
// satisfied by coords. An empty condition set is satisfied unconditionally.
// If coords is empty, only empty condition sets match.
// If no record matches, an empty location is returned.
func SearchFeatureSubstitutionTable(featureVars NavLocation, coords []F2Dot14) NavLocation {
	if featureVars == nil {
		return binarySegm{}
	}
	fv := binarySegm(featureVars.Bytes())
	if len(fv) < 8 {
		return binarySegm{}
	}
	count := fv.U32(4)
	if uint64(count) > uint64(len(fv)/featureVariationRecordSize) {
		count = uint32(len(fv) / featureVariationRecordSize)
	}
	records := viewArray(fv, 8, int(count), featureVariationRecordSize)
	for i := 0; i < records.Len(); i++ {
		rec := records.Get(i)
		condSet := jump32(fv, rec.U32(0))
		if !conditionSetHolds(condSet, coords) {
			continue
		}
		tracer().Debugf("feature variation record #%d matches", i)
		return jump32(fv, rec.U32(4))
	}
	return binarySegm{}
}

// conditionSetHolds checks every condition of a condition set against coords.
// A NULL condition set (offset 0) is treated as an empty set.
func conditionSetHolds(condSet binarySegm, coords []F2Dot14) bool {
	n := int(condSet.U16(0))
	for i := 0; i < n; i++ {
		cond := link32(condSet, 2+4*i)
		if !conditionHolds(cond, coords) {
			return false
		}
	}
	return true
}

func conditionHolds(cond binarySegm, coords []F2Dot14) bool {
	if len(cond) < conditionAxisRangeTableSize || cond.U16(0) != conditionFormatAxisRange {
		return false // unknown condition formats are never satisfied
	}
	axis := int(cond.U16(2))
	if axis >= len(coords) {
		return false
	}
	min, max := F2Dot14(cond.U16(4)), F2Dot14(cond.U16(6))
	c := coords[axis]
	return min <= c && c <= max
}

// SearchAlternateFeatureTable looks up the replacement feature table for the
// feature with index featureIndex within a feature table substitution table.
// If the substitution table does not register a replacement, an empty
// location is returned.
func SearchAlternateFeatureTable(featureSubst NavLocation, featureIndex uint16) NavLocation {
	if featureSubst == nil {
		return binarySegm{}
	}
	fs := binarySegm(featureSubst.Bytes())
	if len(fs) < 6 {
		return binarySegm{}
	}
	records := viewArray(fs, 6, int(fs.U16(4)), featureSubstitutionRecSize)
	for i := 0; i < records.Len(); i++ {
		if records.U16(i) == featureIndex {
			return jump32(fs, records.Get(i).U32(2))
		}
	}
	return binarySegm{}
}

// jump32 follows a 32 bit offset given as a value, relative to base.
func jump32(base binarySegm, off uint32) binarySegm {
	if off == 0 || uint64(off) >= uint64(len(base)) {
		return binarySegm{}
	}
	return base[off:]
}
