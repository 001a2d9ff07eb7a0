package dumpstream

// Package dumpstream extracts individual records from very large compressed
// JSON array dumps, such as the Wikidata entity dumps, without ever holding
// the whole decompressed payload in memory.
//
// The package is organized into several sub-packages:
//
// - transform: The per-record transformation contract
// - transform/jq: jq filter evaluation for each record
// - internal/decompress: Codec detection and decompressing readers
// - internal/download: Dump download over HTTP
// - internal/progress: Terminal progress reporting
//
// A dump is a single JSON array with one object per line:
//
//	[
//	{"id": "Q1", ...},
//	{"id": "Q2", ...},
//	...
//	{"id": "Q12345", ...}
//	]
//
// The Extractor reads decompressed bytes in fixed-size chunks, splits them
// on the ",\n" delimiter separating records, runs a transformer on each
// complete record and writes the results to a sink in input order. Memory
// usage is bounded by the chunk size plus the length of the longest record,
// regardless of the size of the dump.
//
// This package was designed for the wdfilter CLI utility, which is in the
// directory cmd/wdfilter. You can install it with:
//
//	go install github.com/arnodel/dumpstream/cmd/wdfilter
