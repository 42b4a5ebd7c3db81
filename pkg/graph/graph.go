package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a Document to indented JSON bytes.
func MarshalDocument(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a Document and validates it.
func UnmarshalDocument(data []byte) (Document, error) {
	return readDocumentFrom(bytes.NewReader(data))
}

// WriteDocumentFile writes a Document to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(d Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDocumentTo(d, f)
}

// WriteDocument writes a Document as JSON to an io.Writer.
func WriteDocument(d Document, w io.Writer) error {
	return writeDocumentTo(d, w)
}

// ReadDocumentFile reads a combined document from a JSON file.
func ReadDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDocumentFrom(f)
}

// ReadDocument decodes a combined JSON document from an io.Reader.
func ReadDocument(r io.Reader) (Document, error) {
	return readDocumentFrom(r)
}

// ReadDocumentFiles assembles a Document from separate files as written by the
// network generator: the network itself, the path records and the gene sets.
// pathsFile and geneSetsFile may be empty.
func ReadDocumentFiles(networkFile, pathsFile, geneSetsFile string) (Document, error) {
	var d Document
	if err := readJSONFile(networkFile, &d.Graph); err != nil {
		return Document{}, err
	}
	if pathsFile != "" {
		if err := readJSONFile(pathsFile, &d.Paths); err != nil {
			return Document{}, err
		}
	}
	if geneSetsFile != "" {
		if err := readJSONFile(geneSetsFile, &d.GeneSets); err != nil {
			return Document{}, err
		}
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the structural constraints the viewer relies on:
// unique node ids and links between known nodes.
func (d *Document) Validate() error {
	ids := make(map[string]bool, len(d.Graph.Nodes))
	for i, n := range d.Graph.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: empty id", i)
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	for i, l := range d.Graph.Links {
		if !ids[l.Source] {
			return fmt.Errorf("link %d: unknown source %q", i, l.Source)
		}
		if !ids[l.Target] {
			return fmt.Errorf("link %d: unknown target %q", i, l.Target)
		}
		switch l.Direction {
		case "", DirectionDirected, DirectionUndirected:
		default:
			return fmt.Errorf("link %d: invalid direction %q", i, l.Direction)
		}
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(d Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDocumentFrom(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
