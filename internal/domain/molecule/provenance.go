package molecule

import (
	"encoding/json"
)

// Category is the transient debug tag set on unique atoms while a fragment is
// categorised for splicing or placement.
type Category string

const (
	CategoryNone                  Category = ""
	CategoryInternal              Category = "internal"
	CategoryOverlapping           Category = "overlapping"
	CategoryOverlappingAttachment Category = "overlapping-attachment"
	CategoryInternalAttachment    Category = "internal-attachment"
)

// NoOrigin is the textual origin of an atom no hit contributed to.
const NoOrigin = "none"

// provenance is the per-graph side table keyed by atom index.  Missing keys
// read as the defaults: origin "none", confidence 0, no category.
type provenance struct {
	origin     map[int][]string
	confidence map[int]float64
	category   map[int]Category
}

func newProvenance() provenance {
	return provenance{
		origin:     make(map[int][]string),
		confidence: make(map[int]float64),
		category:   make(map[int]Category),
	}
}

func (p *provenance) ensure() {
	if p.origin == nil {
		*p = newProvenance()
	}
}

func (p provenance) clone() provenance {
	c := newProvenance()
	for k, v := range p.origin {
		c.origin[k] = append([]string(nil), v...)
	}
	for k, v := range p.confidence {
		c.confidence[k] = v
	}
	for k, v := range p.category {
		c.category[k] = v
	}
	return c
}

// restrict keeps the entries whose key is in remap, renumbered.
func (p provenance) restrict(remap map[int]int) provenance {
	c := newProvenance()
	for k, v := range p.origin {
		if nk, ok := remap[k]; ok {
			c.origin[nk] = append([]string(nil), v...)
		}
	}
	for k, v := range p.confidence {
		if nk, ok := remap[k]; ok {
			c.confidence[nk] = v
		}
	}
	for k, v := range p.category {
		if nk, ok := remap[k]; ok {
			c.category[nk] = v
		}
	}
	return c
}

// merge copies other's entries into p, renaming keys with index.
func (p *provenance) merge(other provenance, index func(int) int) {
	p.ensure()
	for k, v := range other.origin {
		p.origin[index(k)] = append([]string(nil), v...)
	}
	for k, v := range other.confidence {
		p.confidence[index(k)] = v
	}
	for k, v := range other.category {
		p.category[index(k)] = v
	}
}

// Origin returns the hit-atom references atom i derives from; nil means none.
func (g *Graph) Origin(i int) []string {
	if o, ok := g.prov.origin[i]; ok {
		return append([]string(nil), o...)
	}
	return nil
}

// OriginString renders the origin of atom i as a JSON list, or "none".
func (g *Graph) OriginString(i int) string {
	o := g.prov.origin[i]
	if len(o) == 0 {
		return NoOrigin
	}
	b, err := json.Marshal(o)
	if err != nil {
		return NoOrigin
	}
	return string(b)
}

// SetOrigin replaces the origin of atom i.  An empty list resets it to none.
func (g *Graph) SetOrigin(i int, origin []string) {
	g.prov.ensure()
	if len(origin) == 0 {
		delete(g.prov.origin, i)
		return
	}
	g.prov.origin[i] = append([]string(nil), origin...)
}

// Confidence returns the positional spread of atom i; 0 when no averaging
// occurred.
func (g *Graph) Confidence(i int) float64 { return g.prov.confidence[i] }

// SetConfidence sets the positional spread of atom i.  Negative values are
// clamped to 0.
func (g *Graph) SetConfidence(i int, v float64) {
	g.prov.ensure()
	if v < 0 {
		v = 0
	}
	g.prov.confidence[i] = v
}

// Category returns the debug category of atom i.
func (g *Graph) Category(i int) Category { return g.prov.category[i] }

// SetCategory tags atom i.
func (g *Graph) SetCategory(i int, c Category) {
	g.prov.ensure()
	if c == CategoryNone {
		delete(g.prov.category, i)
		return
	}
	g.prov.category[i] = c
}

// ResetProvenance sets atom i back to origin "none" and confidence 0.
func (g *Graph) ResetProvenance(i int) {
	g.prov.ensure()
	delete(g.prov.origin, i)
	g.prov.confidence[i] = 0
}

// CopyProvenance copies origin and confidence of atom j of src onto atom i.
func (g *Graph) CopyProvenance(i int, src *Graph, j int) {
	g.SetOrigin(i, src.prov.origin[j])
	g.SetConfidence(i, src.prov.confidence[j])
}

//Personal.AI order the ending
