package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Link directions.
const (
	DirectionDirected   = "directed"
	DirectionUndirected = "undirected"
)

// Interaction types emitted by the network generator.
const (
	LinkTypePP                = "pp"
	LinkTypePPRed             = "pp_red"
	LinkTypePPBlue            = "pp_blue"
	LinkTypePD                = "pd"
	LinkTypePDActivator       = "PDActivator"
	LinkTypePDRepressor       = "PDRepressor"
	LinkTypePDUnknown         = "PDUnknown"
	LinkTypePhosphorylation   = "phosphorylation"
	LinkTypeDephosphorylation = "dephosphorylation"
	LinkTypeMet               = "met"
	LinkTypeMetabolic         = "metabolic"
	LinkTypeSRNA              = "srna"
	LinkTypeSRNARepression    = "srnaRepression"
	LinkTypeSRNAActivation    = "srnaActivation"
	LinkTypeSRNAUnknown       = "srnaUnknown"
	LinkTypeSigma             = "sigma"
)

// LinkTypes lists every known interaction type in display order.
var LinkTypes = []string{
	LinkTypePP, LinkTypePPRed, LinkTypePPBlue,
	LinkTypePD, LinkTypePDActivator, LinkTypePDRepressor, LinkTypePDUnknown,
	LinkTypePhosphorylation, LinkTypeDephosphorylation,
	LinkTypeMet, LinkTypeMetabolic,
	LinkTypeSRNA, LinkTypeSRNARepression, LinkTypeSRNAActivation, LinkTypeSRNAUnknown,
	LinkTypeSigma,
}

// =============================================================================
// Document - Viewer Input
// =============================================================================

// Document is the complete viewer input: the network, its path records and
// optional gene sets.
type Document struct {
	Graph    Network             `json:"graph" bson:"graph"`
	Paths    map[string][]string `json:"paths,omitempty" bson:"paths,omitempty"`        // path type → tab-separated records
	GeneSets map[string][]string `json:"geneSets,omitempty" bson:"gene_sets,omitempty"` // set id → node ids
}

// HasGeneSets reports whether gene sets were supplied at all.
// An empty but present object counts as supplied.
func (d *Document) HasGeneSets() bool { return d.GeneSets != nil }

// Network is the node-link part of a Document.
type Network struct {
	Nodes           []Node   `json:"nodes" bson:"nodes"`
	Links           []Link   `json:"links" bson:"links"`
	Conditions      []string `json:"conditions" bson:"conditions"`
	GenesOfInterest []string `json:"genesOfInterest,omitempty" bson:"genes_of_interest,omitempty"`
}

// Node is one gene or protein.
type Node struct {
	ID      string  `json:"id" bson:"id"`
	Samples Samples `json:"samples,omitempty" bson:"samples,omitempty"`
	Product string  `json:"product,omitempty" bson:"product,omitempty"` // gene product description
}

// Link is one interaction between two nodes.
type Link struct {
	Source    string `json:"source" bson:"source"`
	Target    string `json:"target" bson:"target"`
	Type      string `json:"type" bson:"type"`
	Direction string `json:"direction,omitempty" bson:"direction,omitempty"`
}

// IsUndirected reports whether the link has no orientation.
// Links without an explicit direction are directed.
func (l *Link) IsUndirected() bool { return l.Direction == DirectionUndirected }

// =============================================================================
// Samples - Per-Gene Presence Vectors
// =============================================================================

// Sample is the encoded presence vector of one gene of interest.
//
// Gene is empty when the vector was given positionally; Position then
// indexes the document's genesOfInterest.
type Sample struct {
	Gene     string `json:"gene,omitempty" bson:"gene,omitempty"`
	Position int    `json:"position" bson:"position"`
	Bits     string `json:"bits" bson:"bits"`
}

// Samples is an ordered list of encoded vectors.
//
// On the wire it is either an object keyed by gene of interest, whose key
// order is preserved, or an array aligned with genesOfInterest:
//
//	{"mutation": "QA==", "differential expression": ""}
//	["QA==", ""]
type Samples []Sample

// UnmarshalJSON accepts both the object and the array form.
func (s *Samples) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if data[0] == '[' {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return fmt.Errorf("samples array: %w", err)
		}
		out := make(Samples, len(arr))
		for i, v := range arr {
			out[i] = Sample{Position: i, Bits: v}
		}
		*s = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("samples object: %w", err)
	}
	var out Samples
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("samples key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("samples key: unexpected %v", tok)
		}
		var v string
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("samples[%q]: %w", key, err)
		}
		out = append(out, Sample{Gene: key, Position: len(out), Bits: v})
	}
	*s = out
	return nil
}

// MarshalJSON writes the object form when every entry is named and the
// array form otherwise.
func (s Samples) MarshalJSON() ([]byte, error) {
	named := len(s) > 0
	for _, e := range s {
		if e.Gene == "" {
			named = false
			break
		}
	}
	if !named {
		arr := make([]string, len(s))
		for i, e := range s {
			arr[i] = e.Bits
		}
		return json.Marshal(arr)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.Gene)
		v, _ := json.Marshal(e.Bits)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GeneName resolves the gene of interest a sample belongs to.
func (e Sample) GeneName(genesOfInterest []string) string {
	if e.Gene != "" {
		return e.Gene
	}
	if e.Position >= 0 && e.Position < len(genesOfInterest) {
		return genesOfInterest[e.Position]
	}
	return fmt.Sprintf("trait %d", e.Position+1)
}
