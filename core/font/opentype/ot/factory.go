package ot

import "fmt"

// Navigator is an interface type to wrap the structures of layout tables
// which lead on to other structures. On any given Navigator item, not all of
// the functions may result in sensible values returned. For example, a script
// list will return a map with a call to `Map`, but an empty `List`. A Script
// table is both: it links to its default LangSys and maps tags to the others.
//
// If a Navigator has been created for missing data, it will remember the
// error (call to `Error`) and will wrap only void items (nil-safe).
type Navigator interface {
	Name() string      // returns the name of the underlying OpenType structure
	Link() NavLink     // non-void if Navigator contains a link
	Map() TagRecordMap // non-void if Navigator contains a map-like
	List() NavList     // non-void if Navigator contains a list-like
	IsVoid() bool      // true if created for missing data
	Error() error      // error of creation, if any
}

// NavLink is an offset from one structure to another.
type NavLink interface {
	Base() NavLocation // source location
	Jump() NavLocation // destination location
	IsNull() bool      // is this a valid link?
	Name() string      // OpenType structure name of destination
}

// NavList represents a sequence of—possibly unequal sized—structures,
// addressed by position through an array of offsets.
type NavList interface {
	Name() string        // returns the name of the underlying OpenType table
	Len() int            // number of items in the list
	Get(int) NavLocation // bytes of entry #n
	All() []NavLocation  // all entries as (possibly variable sized) byte segments
}

// A TagRecordMap is a dict-type (map) to receive a data record (returned as a link)
// from a given tag. This kind of map is used within OpenType fonts in several
// instances, e.g. for script lists, LangSys records of a script and feature lists.
//
// For some record maps the (tag) keys are not unique (e.g., the feature-list table),
// so in this case the first matching entry will be returned.
type TagRecordMap interface {
	Name() string           // OpenType specification name of this map
	LookupTag(Tag) NavLink  // returns the link associated with a given tag
	Tags() []Tag            // returns all the tags which the map uses as keys
	Len() int               // number of entries in the map
	Get(int) (Tag, NavLink) // get entry at position n
}

// NavigatorFactory creates a Navigator for a given OpenType object `obj` at location
// `loc`. Known objects are ScriptList, Script, FeatureList, LookupList, Lookup
// and MarkGlyphSets.
func NavigatorFactory(obj string, loc NavLocation) Navigator {
	if loc == nil || loc.Size() == 0 {
		return null(obj, errDanglingLink(obj))
	}
	b := binarySegm(loc.Bytes())
	switch obj {
	case "ScriptList":
		return navigator{name: obj, tmap: parseTagRecordMap16(b, 0, b, obj, "Script")}
	case "Script":
		return navigator{
			name: obj,
			link: parseLink16(b, 0, b, "LangSys"),
			tmap: parseTagRecordMap16(b, 2, b, obj, "LangSys"),
		}
	case "FeatureList":
		return navigator{name: obj, tmap: parseTagRecordMap16(b, 0, b, obj, "Feature")}
	case "LookupList":
		return navigator{name: obj, list: parseLinkList(b, 0, 2, obj)}
	case "Lookup":
		return navigator{name: obj, list: parseLinkList(b, 4, 2, obj)}
	case "MarkGlyphSets":
		if b.U16(0) != 1 { // format
			return null(obj, fmt.Errorf("%s format %d", obj, b.U16(0)))
		}
		return navigator{name: obj, list: parseLinkList(b, 2, 4, obj)}
	}
	tracer().Debugf("no navigator found for %s", obj)
	return null(obj, errDanglingLink(obj))
}

func errDanglingLink(obj string) error {
	return fmt.Errorf("cannot resolve link to %s", obj)
}

// --- Navigator -------------------------------------------------------------

type navigator struct {
	name string
	err  error
	link NavLink
	tmap TagRecordMap
	list NavList
}

func null(obj string, err error) Navigator {
	return navigator{name: obj, err: err}
}

func (nav navigator) Name() string {
	return nav.name
}

func (nav navigator) Link() NavLink {
	if nav.link == nil {
		return navLink{name: nav.name}
	}
	return nav.link
}

func (nav navigator) Map() TagRecordMap {
	if nav.tmap == nil {
		return tagRecordMap16{name: nav.name}
	}
	return nav.tmap
}

func (nav navigator) List() NavList {
	if nav.list == nil {
		return linkList{name: nav.name}
	}
	return nav.list
}

func (nav navigator) IsVoid() bool {
	return nav.link == nil && nav.tmap == nil && nav.list == nil
}

func (nav navigator) Error() error {
	return nav.err
}

// --- Links -----------------------------------------------------------------

type navLink struct {
	name   string
	base   binarySegm
	target binarySegm
}

// parseLink16 reads the 16 bit offset at byte offset of b, relative to base.
func parseLink16(b binarySegm, offset int, base binarySegm, target string) NavLink {
	off, err := b.u16(offset)
	if err != nil {
		return navLink{name: target}
	}
	return navLink{name: target, base: base, target: jump16(base, off)}
}

func (l navLink) Base() NavLocation {
	return l.base
}

func (l navLink) Jump() NavLocation {
	return l.target
}

func (l navLink) IsNull() bool {
	return len(l.target) == 0
}

func (l navLink) Name() string {
	return l.name
}

// --- Tag record map --------------------------------------------------------

type tagRecordMap16 struct {
	name    string
	target  string
	base    binarySegm
	records array
}

// parseTagRecordMap16 views a count at byte offset of b, followed by records
// of a tag and a 16 bit offset relative to base.
func parseTagRecordMap16(b binarySegm, offset int, base binarySegm, name, target string) tagRecordMap16 {
	n, err := b.u16(offset)
	if err != nil {
		return tagRecordMap16{name: name}
	}
	return tagRecordMap16{
		name:    name,
		target:  target,
		base:    base,
		records: viewArray(b, offset+2, int(n), 4+2),
	}
}

func (m tagRecordMap16) Name() string {
	return m.name
}

// LookupTag returns the link associated with a given tag.
func (m tagRecordMap16) LookupTag(tag Tag) NavLink {
	for i := 0; i < m.records.Len(); i++ {
		if t, link := m.Get(i); t == tag {
			return link
		}
	}
	return navLink{name: m.target}
}

// Tags returns all the tags which the map uses as keys.
func (m tagRecordMap16) Tags() []Tag {
	tags := make([]Tag, m.records.Len())
	for i := range tags {
		tags[i] = MakeTag(m.records.Get(i)[:4])
	}
	return tags
}

func (m tagRecordMap16) Len() int {
	return m.records.Len()
}

func (m tagRecordMap16) Get(i int) (Tag, NavLink) {
	rec := m.records.Get(i)
	if len(rec) == 0 {
		return 0, navLink{name: m.target}
	}
	return MakeTag(rec[:4]), parseLink16(rec, 4, m.base, m.target)
}

// --- Link lists ------------------------------------------------------------

// linkList is a count followed by 16 or 32 bit offsets, relative to the
// start of the structure holding them.
type linkList struct {
	name    string
	base    binarySegm
	records array
}

func parseLinkList(b binarySegm, countAt, linkSize int, name string) linkList {
	return linkList{
		name:    name,
		base:    b,
		records: viewArray(b, countAt+2, int(b.U16(countAt)), linkSize),
	}
}

func (l linkList) Name() string {
	return l.name
}

func (l linkList) Len() int {
	return l.records.Len()
}

func (l linkList) Get(i int) NavLocation {
	rec := l.records.Get(i)
	switch len(rec) {
	case 2:
		return jump16(l.base, rec.U16(0))
	case 4:
		off := rec.U32(0)
		if off == 0 || uint64(off) >= uint64(len(l.base)) {
			return binarySegm{}
		}
		return l.base[off:]
	}
	return binarySegm{}
}

func (l linkList) All() []NavLocation {
	r := make([]NavLocation, l.Len())
	for i := range r {
		r[i] = l.Get(i)
	}
	return r
}
