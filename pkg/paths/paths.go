// Package paths parses serialized causal paths and indexes them by edge and node.
//
// A path record is a tab-separated line produced by the network generator:
//
//	fromSample \t toSample \t score \t edgeString
//
// where edgeString is a walk such as "A->B<-C". Each "->" step contributes
// the directed edge key "A;B"; each "<-" step contributes the reversed key,
// so "B<-C" yields "C;B". Records are grouped by path type (for example
// "expression" or "mutation"), and the [Index] built from them answers:
//
//   - which paths traverse a given edge ([Index.ByEdge])
//   - which paths touch a given node ([Index.ByNode])
//   - the weight of an edge, the sum of scores of its paths ([Index.EdgeWeight])
//
// Paths are immutable after parsing and shared by pointer between the indices.
package paths

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Arrow tokens in an edge string.
const (
	Forward  = "->"
	Backward = "<-"
)

// Path is one parsed causal path.
type Path struct {
	Type       string   // path type the record was listed under
	FromSample string   // condition the path originates in
	ToSample   string   // condition the path ends in
	Score      float64  // path score, summed into edge weights
	EdgeString string   // walk as written, e.g. "A->B<-C"
	Nodes      []string // node ids in walk order
	Edges      []string // directed edge keys "from;to", one per step
}

// CrossesSamples reports whether the path ends in a different condition.
func (p *Path) CrossesSamples() bool {
	return p.ToSample != p.FromSample
}

// String formats the path as shown in info panels:
// "[type] edgeString (score)", with " (-> toSample)" when samples differ.
func (p *Path) String() string {
	s := fmt.Sprintf("[%s] %s (%s)", p.Type, p.EdgeString, FormatScore(p.Score))
	if p.CrossesSamples() {
		s += " (-> " + p.ToSample + ")"
	}
	return s
}

// FormatScore renders a score the way the generator writes it, trimmed of
// trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// EdgeKey returns the directed key of the edge from -> to.
func EdgeKey(from, to string) string {
	return from + ";" + to
}

// SplitEdgeKey is the inverse of EdgeKey. ok is false when key has no separator.
func SplitEdgeKey(key string) (from, to string, ok bool) {
	return strings.Cut(key, ";")
}

var arrowRe = regexp.MustCompile(`->|<-`)

// ParseWalk splits an edge string into its node sequence and directed edge keys.
//
//	ParseWalk("A->B<-C") = [A B C], [A;B C;B]
func ParseWalk(edgeString string) (nodes, edges []string) {
	nodes = arrowRe.Split(edgeString, -1)
	arrows := arrowRe.FindAllString(edgeString, -1)
	edges = make([]string, 0, len(arrows))
	for i, a := range arrows {
		if a == Forward {
			edges = append(edges, EdgeKey(nodes[i], nodes[i+1]))
		} else {
			edges = append(edges, EdgeKey(nodes[i+1], nodes[i]))
		}
	}
	return nodes, edges
}

// ParseRecord parses one tab-separated record of the given path type.
func ParseRecord(pathType, record string) (*Path, error) {
	fields := strings.Split(record, "\t")
	if len(fields) < 4 {
		return nil, fmt.Errorf("expected 4 tab-separated fields, got %d", len(fields))
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse score %q: %w", fields[2], err)
	}

	edgeString := fields[3]
	nodes, edges := ParseWalk(edgeString)
	for _, n := range nodes {
		if n == "" {
			return nil, fmt.Errorf("edge string %q has an empty node", edgeString)
		}
	}

	return &Path{
		Type:       pathType,
		FromSample: fields[0],
		ToSample:   fields[1],
		Score:      score,
		EdgeString: edgeString,
		Nodes:      nodes,
		Edges:      edges,
	}, nil
}

// FormatRecord is the inverse of ParseRecord.
func FormatRecord(p *Path) string {
	return strings.Join([]string{p.FromSample, p.ToSample, fmt.Sprintf("%.5f", p.Score), p.EdgeString}, "\t")
}
