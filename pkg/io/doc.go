// Package io provides file import and export for metrics snapshots and
// computed layout results.
//
// # Overview
//
// This package decodes pipeline metrics snapshots from JSON or YAML documents
// and writes computed layout results back out as JSON. The formats are
// designed for:
//
//   - Feeding captured pipeline statistics into the layout engine offline
//   - Integration with collectors that dump their statistics in either format
//   - Round-trip preservation: an exported layout re-imports identically
//
// # Snapshot Format
//
// A snapshot document carries a capture timestamp and one record per source
// per pipeline run:
//
//	{
//	  "captured_at": "2026-08-22T06:00:00Z",
//	  "records": [
//	    {
//	      "source_id": "newswire",
//	      "discovered": 1000,
//	      "fetched": 900,
//	      "extracted": 850,
//	      "written": 700,
//	      "filter_breakdown": {"duplicate_filter": 100, "too_short": 50},
//	      "length_samples": [120, 4300, 880],
//	      "success_rate": 0.9,
//	      "extraction_rate": 0.94,
//	      "quality_rate": 0.82,
//	      "throughput": 12.5
//	    }
//	  ]
//	}
//
// Decoding is tolerant of loosely typed documents: numeric fields may arrive
// as integers, floats, or strings depending on the producer, and unknown
// fields are ignored. See [metrics.SnapshotFromDocument] for the coercion
// rules.
//
// # Import
//
// Use [ImportSnapshot] to read a snapshot from a file path, or [ReadSnapshot]
// and [ReadSnapshotYAML] to read from any io.Reader:
//
//	snap, err := io.ImportSnapshot("snapshot.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ImportSnapshot picks the decoder by file extension: .yaml and .yml decode
// as YAML, everything else as JSON. A document without records is rejected,
// since there is nothing a layout computation could do with it.
//
// # Export
//
// Use [ExportResult] to write a computed layout to a file, or [WriteResult]
// to write to any io.Writer:
//
//	err := io.ExportResult(result, "snapshot.layout.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The exported document is the same shape the HTTP API returns: data models,
// chart geometry, the snapshot hash, and computation statistics. Use
// [ImportResult] or [ReadResult] to load it back.
//
// [metrics.SnapshotFromDocument]: github.com/crawlytics/dashgeom/pkg/metrics.SnapshotFromDocument
package io
