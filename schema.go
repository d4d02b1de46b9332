package farmstore

import (
	"fmt"
	"slices"
)

// RegionTag identifies a region. Tags are assigned once and must never be
// reused for a different purpose, since they name the on-disk bucket.
type RegionTag uint8

// MetaRegionTag is reserved for the store's own bookkeeping.
const MetaRegionTag RegionTag = 255

type Schema struct {
	regions map[RegionTag]*Region
	ordered []*Region
	opened  bool
}

func NewSchema() *Schema {
	scm := &Schema{
		regions: make(map[RegionTag]*Region),
	}
	scm.addRegion(MetaRegionTag, "meta")
	return scm
}

// Region returns the region with the given tag, creating it on first use.
// Later calls with the same tag return the same *Region. It must be called
// before the schema is opened; afterwards the set of regions is fixed.
func (scm *Schema) Region(tag RegionTag, name string) *Region {
	if tag == MetaRegionTag {
		panic(fmt.Errorf("region tag %d is reserved", tag))
	}
	if r := scm.regions[tag]; r != nil {
		if r.name != name {
			panic(fmt.Errorf("region %d is already named %q, cannot rename to %q", tag, r.name, name))
		}
		return r
	}
	return scm.addRegion(tag, name)
}

func (scm *Schema) addRegion(tag RegionTag, name string) *Region {
	if scm.opened {
		panic(fmt.Errorf("cannot add region %d (%s) after the schema has been opened", tag, name))
	}
	r := &Region{
		tag:  tag,
		name: name,
		buck: makeBucketName(tag),
	}
	scm.regions[tag] = r
	scm.ordered = append(scm.ordered, r)
	return r
}

// Regions returns all regions ordered by tag, including the meta region.
func (scm *Schema) Regions() []*Region {
	result := slices.Clone(scm.ordered)
	slices.SortFunc(result, func(a, b *Region) int {
		return int(a.tag) - int(b.tag)
	})
	return result
}

func (scm *Schema) RegionByTag(tag RegionTag) *Region {
	return scm.regions[tag]
}

func (scm *Schema) meta() *Region {
	return scm.regions[MetaRegionTag]
}

type bucketName []byte

func makeBucketName(tag RegionTag) bucketName {
	return bucketName(fmt.Sprintf("r%03d", tag))
}

func (bn bucketName) String() string {
	return string(bn)
}

func (bn bucketName) Raw() []byte {
	return []byte(bn)
}

// Region is a named, independently growable partition of the durable space.
type Region struct {
	tag   RegionTag
	name  string
	buck  bucketName
	owner string

	decode func(raw []byte) (any, error)
}

func (r *Region) Tag() RegionTag {
	return r.tag
}

func (r *Region) Name() string {
	return r.name
}

func (r *Region) String() string {
	return r.buck.String() + "(" + r.name + ")"
}

// claim binds the region to a single consumer (a counter or a store), so two
// components can never write to the same bucket.
func (r *Region) claim(owner string) {
	if r.owner != "" {
		panic(fmt.Errorf("region %v is already used by %s, cannot bind %s", r, r.owner, owner))
	}
	r.owner = owner
}
