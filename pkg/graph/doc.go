// Package graph provides serialization types for viewer input and layouts.
//
// This package defines the canonical wire format for netview's data, used for
// input files, HTTP responses, caching, and rendering.
//
// # Core Types
//
//   - [Document]: viewer input (network, path records, gene sets)
//   - [Network], [Node], [Link]: the node-link part of a document
//   - [Samples]: per-gene encoded presence vectors, object or array form
//   - [Layout]: a positioned, styled snapshot of the network
//
// # Document Format
//
//	{
//	  "graph": {
//	    "nodes": [{"id": "SRC", "samples": {"mutation": "QA=="}}],
//	    "links": [{"source": "SRC", "target": "KRAS", "type": "pp"}],
//	    "conditions": ["sample1", "sample2"],
//	    "genesOfInterest": ["mutation"]
//	  },
//	  "paths": {"expression": ["sample1\tsample1\t1.0\tSRC->KRAS"]},
//	  "geneSets": {"set1": ["SRC"]}
//	}
//
// Common operations:
//
//	d, _ := graph.ReadDocumentFile("network.json")
//	d, _ := graph.ReadDocumentFiles("graph.json", "paths.json", "")
//	l, _ := graph.ReadLayoutFile("layout.json")
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
