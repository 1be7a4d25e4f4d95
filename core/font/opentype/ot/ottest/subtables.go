package ottest

// --- GSUB subtables --------------------------------------------------------

// SingleSubstDelta creates a single substitution subtable of format 1,
// adding delta to every covered glyph.
func SingleSubstDelta(covered []uint16, delta int16) []byte {
	bb := &Builder{}
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.I16(delta)
	bb.Append16(cov, 0, Coverage(covered...))
	return bb.Bytes()
}

// SingleSubst creates a single substitution subtable of format 2, mapping
// from[i] to to[i]. from has to be sorted.
func SingleSubst(from, to []uint16) []byte {
	bb := &Builder{}
	bb.U16(2)
	cov := bb.Placeholder16(1)
	bb.U16(uint16(len(to))).U16(to...)
	bb.Append16(cov, 0, Coverage(from...))
	return bb.Bytes()
}

// sequences writes a subtable of format 1 with a coverage table and a list of
// glyph sequences, as used by multiple and alternate substitution.
func sequences(covered []uint16, seqs [][]uint16) []byte {
	bb := &Builder{}
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.U16(uint16(len(seqs)))
	slots := bb.Placeholder16(len(seqs))
	bb.Append16(cov, 0, Coverage(covered...))
	for i, seq := range seqs {
		s := &Builder{}
		s.U16(uint16(len(seq))).U16(seq...)
		bb.Append16(slots+2*i, 0, s.Bytes())
	}
	return bb.Bytes()
}

// MultipleSubst creates a multiple substitution subtable. covered has to be
// sorted; seqs[i] replaces covered[i].
func MultipleSubst(covered []uint16, seqs [][]uint16) []byte {
	return sequences(covered, seqs)
}

// AlternateSubst creates an alternate substitution subtable. covered has to
// be sorted; alts[i] are the alternates of covered[i].
func AlternateSubst(covered []uint16, alts [][]uint16) []byte {
	return sequences(covered, alts)
}

// Ligature is a ligature glyph with the components following the first one.
type Ligature struct {
	Glyph      uint16
	Components []uint16
}

// LigatureSubst creates a ligature substitution subtable. firsts has to be
// sorted; sets[i] are the ligatures starting with firsts[i].
func LigatureSubst(firsts []uint16, sets [][]Ligature) []byte {
	bb := &Builder{}
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.U16(uint16(len(sets)))
	slots := bb.Placeholder16(len(sets))
	bb.Append16(cov, 0, Coverage(firsts...))
	for i, set := range sets {
		s := &Builder{}
		s.U16(uint16(len(set)))
		ligSlots := s.Placeholder16(len(set))
		for j, lig := range set {
			l := &Builder{}
			l.U16(lig.Glyph, uint16(len(lig.Components)+1)).U16(lig.Components...)
			s.Append16(ligSlots+2*j, 0, l.Bytes())
		}
		bb.Append16(slots+2*i, 0, s.Bytes())
	}
	return bb.Bytes()
}

// SeqLookup applies lookup LookupIndex at input position SeqIndex.
type SeqLookup struct {
	SeqIndex, LookupIndex uint16
}

// ChainedContext creates a chained context subtable of format 3 (coverage
// based), for GSUB type 6 and GPOS type 8. Each inner slice is one coverage
// table; backtrack coverages are in logical order, nearest first.
func ChainedContext(backtrack, input, lookahead [][]uint16, lookups []SeqLookup) []byte {
	bb := &Builder{}
	bb.U16(3)
	type slotted struct {
		slot int
		cov  []uint16
	}
	var covs []slotted
	for _, seq := range [][][]uint16{backtrack, input, lookahead} {
		bb.U16(uint16(len(seq)))
		at := bb.Placeholder16(len(seq))
		for i, c := range seq {
			covs = append(covs, slotted{at + 2*i, c})
		}
	}
	bb.U16(uint16(len(lookups)))
	for _, l := range lookups {
		bb.U16(l.SeqIndex, l.LookupIndex)
	}
	for _, c := range covs {
		bb.Append16(c.slot, 0, Coverage(c.cov...))
	}
	return bb.Bytes()
}

// ContextRule is a rule of a context subtable of format 1 or 2. Sequences
// hold glyph IDs (format 1) or classes (format 2); Input leaves out the first
// input glyph, which selects the rule set.
type ContextRule struct {
	Backtrack, Input, Lookahead []uint16
	Lookups                     []SeqLookup
}

func (r ContextRule) bytes(chained bool) []byte {
	bb := &Builder{}
	if chained {
		bb.U16(uint16(len(r.Backtrack))).U16(r.Backtrack...)
		bb.U16(uint16(len(r.Input) + 1)).U16(r.Input...)
		bb.U16(uint16(len(r.Lookahead))).U16(r.Lookahead...)
		bb.U16(uint16(len(r.Lookups)))
	} else {
		bb.U16(uint16(len(r.Input)+1), uint16(len(r.Lookups))).U16(r.Input...)
	}
	for _, l := range r.Lookups {
		bb.U16(l.SeqIndex, l.LookupIndex)
	}
	return bb.Bytes()
}

// SequenceContext creates a context subtable (GSUB type 5, GPOS type 7) of
// format 1, or of format 2 if classDef is not nil. Rule sets are indexed by
// coverage index for format 1 and by class for format 2.
func SequenceContext(covered []uint16, classDef []byte, sets [][]ContextRule) []byte {
	if classDef == nil {
		return ruleSets(1, covered, nil, sets, false)
	}
	return ruleSets(2, covered, [][]byte{classDef}, sets, false)
}

// ChainedSequenceContext creates a chained context subtable (GSUB type 6,
// GPOS type 8) of format 1, or of format 2 if classDefs holds the backtrack,
// input and lookahead class definitions.
func ChainedSequenceContext(covered []uint16, classDefs [][]byte, sets [][]ContextRule) []byte {
	if classDefs == nil {
		return ruleSets(1, covered, nil, sets, true)
	}
	return ruleSets(2, covered, classDefs, sets, true)
}

func ruleSets(format uint16, covered []uint16, classDefs [][]byte, sets [][]ContextRule, chained bool) []byte {
	bb := &Builder{}
	bb.U16(format)
	cov := bb.Placeholder16(1)
	cds := bb.Placeholder16(len(classDefs))
	bb.U16(uint16(len(sets)))
	slots := bb.Placeholder16(len(sets))
	bb.Append16(cov, 0, Coverage(covered...))
	for k, cd := range classDefs {
		bb.Append16(cds+2*k, 0, cd)
	}
	for k, set := range sets {
		rs := &Builder{}
		rs.U16(uint16(len(set)))
		rules := rs.Placeholder16(len(set))
		for r, rule := range set {
			rs.Append16(rules+2*r, 0, rule.bytes(chained))
		}
		bb.Append16(slots+2*k, 0, rs.Bytes())
	}
	return bb.Bytes()
}

// Extension wraps a subtable of lookup type typ (GSUB type 7, GPOS type 9).
func Extension(typ uint16, sub []byte) []byte {
	bb := &Builder{}
	bb.U16(1, typ).U32(8).Raw(sub)
	return bb.Bytes()
}

// --- GPOS subtables --------------------------------------------------------

// ValueRecord holds positioning adjustments. Device tables are optional.
type ValueRecord struct {
	XPlacement, YPlacement, XAdvance, YAdvance int16
	XPlaDevice, YPlaDevice, XAdvDevice, YAdvDevice []byte
}

// Value format bits.
const (
	XPlacement uint16 = 1 << iota
	YPlacement
	XAdvance
	YAdvance
	XPlaDevice
	YPlaDevice
	XAdvDevice
	YAdvDevice
)

// Format returns the value format needed to store v.
func (v ValueRecord) Format() uint16 {
	var f uint16
	for i, set := range []bool{v.XPlacement != 0, v.YPlacement != 0, v.XAdvance != 0, v.YAdvance != 0,
		v.XPlaDevice != nil, v.YPlaDevice != nil, v.XAdvDevice != nil, v.YAdvDevice != nil} {
		if set {
			f |= 1 << i
		}
	}
	return f
}

// writeValue writes v in format. Device tables are appended later by
// devices, which patches the offsets relative to base.
func (bb *Builder) writeValue(v ValueRecord, format uint16, pending *[]pendingDevice) {
	vals := []int16{v.XPlacement, v.YPlacement, v.XAdvance, v.YAdvance}
	for i := 0; i < 4; i++ {
		if format&(1<<i) != 0 {
			bb.I16(vals[i])
		}
	}
	devs := [][]byte{v.XPlaDevice, v.YPlaDevice, v.XAdvDevice, v.YAdvDevice}
	for i := 0; i < 4; i++ {
		if format&(1<<(i+4)) != 0 {
			slot := bb.Placeholder16(1)
			if devs[i] != nil {
				*pending = append(*pending, pendingDevice{slot, devs[i]})
			}
		}
	}
}

type pendingDevice struct {
	slot int
	dev  []byte
}

func (bb *Builder) devices(pending []pendingDevice) {
	for _, p := range pending {
		bb.Append16(p.slot, 0, p.dev)
	}
}

// SinglePos creates a single adjustment subtable of format 1, applying v to
// every covered glyph.
func SinglePos(covered []uint16, v ValueRecord) []byte {
	bb := &Builder{}
	format := v.Format()
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.U16(format)
	var pending []pendingDevice
	bb.writeValue(v, format, &pending)
	bb.Append16(cov, 0, Coverage(covered...))
	bb.devices(pending)
	return bb.Bytes()
}

// PairValue is a pair adjustment for a second glyph.
type PairValue struct {
	Second uint16
	V1, V2 ValueRecord
}

// PairPos creates a pair adjustment subtable of format 1. firsts has to be
// sorted; sets[i] holds the pairs for firsts[i], sorted by second glyph.
// Device tables are not supported.
func PairPos(firsts []uint16, sets [][]PairValue) []byte {
	var f1, f2 uint16
	for _, set := range sets {
		for _, pv := range set {
			f1 |= pv.V1.Format()
			f2 |= pv.V2.Format()
		}
	}
	f1 &= 0x0F
	f2 &= 0x0F
	bb := &Builder{}
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.U16(f1, f2, uint16(len(sets)))
	slots := bb.Placeholder16(len(sets))
	bb.Append16(cov, 0, Coverage(firsts...))
	for i, set := range sets {
		s := &Builder{}
		s.U16(uint16(len(set)))
		var ignore []pendingDevice
		for _, pv := range set {
			s.U16(pv.Second)
			s.writeValue(pv.V1, f1, &ignore)
			s.writeValue(pv.V2, f2, &ignore)
		}
		bb.Append16(slots+2*i, 0, s.Bytes())
	}
	return bb.Bytes()
}

// PairPosClasses creates a pair adjustment subtable of format 2. values is
// indexed by [class1][class2] and holds the adjustment of the first glyph
// (XAdvance and placement only).
func PairPosClasses(covered []uint16, classDef1, classDef2 []byte, values [][]ValueRecord) []byte {
	var f1 uint16
	for _, row := range values {
		for _, v := range row {
			f1 |= v.Format()
		}
	}
	f1 &= 0x0F
	class2Count := 0
	if len(values) > 0 {
		class2Count = len(values[0])
	}
	bb := &Builder{}
	bb.U16(2)
	cov := bb.Placeholder16(1)
	bb.U16(f1, 0)
	cd1 := bb.Placeholder16(1)
	cd2 := bb.Placeholder16(1)
	bb.U16(uint16(len(values)), uint16(class2Count))
	var ignore []pendingDevice
	for _, row := range values {
		for _, v := range row {
			bb.writeValue(v, f1, &ignore)
		}
	}
	bb.Append16(cov, 0, Coverage(covered...))
	bb.Append16(cd1, 0, classDef1)
	bb.Append16(cd2, 0, classDef2)
	return bb.Bytes()
}

// Anchor is an anchor point of format 1.
type Anchor struct {
	X, Y int16
}

func (a Anchor) bytes() []byte {
	bb := &Builder{}
	bb.U16(1).I16(a.X, a.Y)
	return bb.Bytes()
}

// MarkRecord assigns a mark class and an anchor to a mark glyph.
type MarkRecord struct {
	Class  uint16
	Anchor Anchor
}

// markArray writes a MarkArray; offsets to anchors are relative to the array.
func markArray(marks []MarkRecord) []byte {
	bb := &Builder{}
	bb.U16(uint16(len(marks)))
	slots := make([]int, len(marks))
	for i, m := range marks {
		bb.U16(m.Class)
		slots[i] = bb.Placeholder16(1)
	}
	for i, m := range marks {
		bb.Append16(slots[i], 0, m.Anchor.bytes())
	}
	return bb.Bytes()
}

// anchorMatrix writes a BaseArray or Mark2Array: one anchor per class per
// glyph, offsets relative to the array.
func anchorMatrix(anchors [][]Anchor, classCount int) []byte {
	bb := &Builder{}
	bb.U16(uint16(len(anchors)))
	slots := bb.Placeholder16(len(anchors) * classCount)
	for i, row := range anchors {
		for j := 0; j < classCount && j < len(row); j++ {
			bb.Append16(slots+2*(i*classCount+j), 0, row[j].bytes())
		}
	}
	return bb.Bytes()
}

// MarkAttachment creates a mark-to-base (GPOS type 4) or mark-to-mark
// (GPOS type 6) subtable. marks and bases have to be sorted; records and
// anchors are given in coverage order.
func MarkAttachment(marks []uint16, records []MarkRecord, bases []uint16, anchors [][]Anchor, classCount int) []byte {
	bb := &Builder{}
	bb.U16(1)
	markCov := bb.Placeholder16(1)
	baseCov := bb.Placeholder16(1)
	bb.U16(uint16(classCount))
	markArr := bb.Placeholder16(1)
	baseArr := bb.Placeholder16(1)
	bb.Append16(markCov, 0, Coverage(marks...))
	bb.Append16(baseCov, 0, Coverage(bases...))
	bb.Append16(markArr, 0, markArray(records))
	bb.Append16(baseArr, 0, anchorMatrix(anchors, classCount))
	return bb.Bytes()
}

// EntryExit holds the anchors of a glyph of a cursive attachment subtable.
// A nil anchor is written as a NULL offset.
type EntryExit struct {
	Entry, Exit *Anchor
}

// CursivePos creates a cursive attachment subtable (GPOS type 3). covered has
// to be sorted; records are given in coverage order.
func CursivePos(covered []uint16, records []EntryExit) []byte {
	bb := &Builder{}
	bb.U16(1)
	cov := bb.Placeholder16(1)
	bb.U16(uint16(len(records)))
	slots := bb.Placeholder16(2 * len(records))
	for i, rec := range records {
		if rec.Entry != nil {
			bb.Append16(slots+4*i, 0, rec.Entry.bytes())
		}
		if rec.Exit != nil {
			bb.Append16(slots+4*i+2, 0, rec.Exit.bytes())
		}
	}
	bb.Append16(cov, 0, Coverage(covered...))
	return bb.Bytes()
}

// MarkToLigature creates a mark-to-ligature subtable (GPOS type 5). anchors
// holds, per ligature, one row of anchors per component, one anchor per mark
// class.
func MarkToLigature(marks []uint16, records []MarkRecord, ligatures []uint16, anchors [][][]Anchor, classCount int) []byte {
	bb := &Builder{}
	bb.U16(1)
	markCov := bb.Placeholder16(1)
	ligCov := bb.Placeholder16(1)
	bb.U16(uint16(classCount))
	markArr := bb.Placeholder16(1)
	ligArr := bb.Placeholder16(1)
	bb.Append16(markCov, 0, Coverage(marks...))
	bb.Append16(ligCov, 0, Coverage(ligatures...))
	bb.Append16(markArr, 0, markArray(records))
	arr := &Builder{}
	arr.U16(uint16(len(anchors)))
	slots := arr.Placeholder16(len(anchors))
	for i, components := range anchors {
		arr.Append16(slots+2*i, 0, anchorMatrix(components, classCount))
	}
	bb.Append16(ligArr, 0, arr.Bytes())
	return bb.Bytes()
}
