package paths

import (
	"maps"
	"slices"

	"github.com/marchallab/netview/pkg/errors"
)

// Index holds all parsed paths and the edge and node reverse indices.
// An Index is read-only after [Parse] returns and safe for concurrent reads.
type Index struct {
	all    []*Path
	byEdge map[string][]*Path
	byNode map[string][]*Path
	types  []string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byEdge: make(map[string][]*Path),
		byNode: make(map[string][]*Path),
	}
}

// Parse parses raw path records keyed by path type and builds the index.
//
// Types are processed in sorted order so that encounter order inside each
// index entry is deterministic. A single malformed record fails the whole
// batch; no partial index is returned.
func Parse(raw map[string][]string) (*Index, error) {
	idx := NewIndex()
	for _, typ := range slices.Sorted(maps.Keys(raw)) {
		for i, rec := range raw[typ] {
			p, err := ParseRecord(typ, rec)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidPathRecord, err,
					"paths of type %q, record %d", typ, i)
			}
			idx.add(p)
		}
		idx.types = append(idx.types, typ)
	}
	return idx, nil
}

// MustParse is like Parse but panics on error. Intended for tests and fixtures.
func MustParse(raw map[string][]string) *Index {
	idx, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return idx
}

func (idx *Index) add(p *Path) {
	idx.all = append(idx.all, p)
	for _, e := range p.Edges {
		idx.byEdge[e] = append(idx.byEdge[e], p)
	}
	for _, n := range p.Nodes {
		idx.byNode[n] = append(idx.byNode[n], p)
	}
}

// ByEdge returns the paths traversing the directed edge key, in encounter order.
// A path that traverses the same edge twice is listed twice.
func (idx *Index) ByEdge(key string) []*Path {
	if idx == nil {
		return nil
	}
	return idx.byEdge[key]
}

// ByNode returns the paths touching node id, in encounter order.
func (idx *Index) ByNode(id string) []*Path {
	if idx == nil {
		return nil
	}
	return idx.byNode[id]
}

// EdgeWeight sums the scores of all paths on the edge. Missing edges weigh 0.
func (idx *Index) EdgeWeight(key string) float64 {
	w := 0.0
	for _, p := range idx.ByEdge(key) {
		w += p.Score
	}
	return w
}

// Paths returns every path in parse order.
func (idx *Index) Paths() []*Path {
	if idx == nil {
		return nil
	}
	return idx.all
}

// Types returns the path types seen, sorted.
func (idx *Index) Types() []string {
	if idx == nil {
		return nil
	}
	return idx.types
}

// Len returns the number of parsed paths.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.all)
}

// Samples returns the distinct fromSample values in first-seen order.
func (idx *Index) Samples() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range idx.Paths() {
		if !seen[p.FromSample] {
			seen[p.FromSample] = true
			out = append(out, p.FromSample)
		}
	}
	return out
}
