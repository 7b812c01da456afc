package metrics

import (
	"encoding/json"
	"time"
)

// Snapshot documents arrive as loosely typed JSON or YAML: numeric fields may
// decode as int, int64, float64, or json.Number depending on the decoder and
// the producer. Decoding goes through these coercions so a malformed field
// degrades to 0 instead of rejecting the whole snapshot.

// AsFloat coerces a decoded document value to float64. Non-numeric values
// coerce to 0.
func AsFloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

// AsInt coerces a decoded document value to int. Non-numeric values coerce
// to 0.
func AsInt(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		f, _ := v.Float64()
		return int(f)
	}
	return 0
}

// AsString coerces a decoded document value to string, or "" when it is not
// one.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// ParseTime parses an RFC 3339 timestamp from a document value. YAML
// decoders hand unquoted timestamps over as time.Time already; anything else
// yields the zero time.
func ParseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339, v)
		return t
	}
	return time.Time{}
}

// RecordFromDocument builds a Record from one decoded record object,
// coercing every field.
func RecordFromDocument(doc map[string]any) Record {
	r := Record{
		SourceID:       AsString(doc["source_id"]),
		Discovered:     AsInt(doc["discovered"]),
		Fetched:        AsInt(doc["fetched"]),
		Extracted:      AsInt(doc["extracted"]),
		Written:        AsInt(doc["written"]),
		SuccessRate:    AsFloat(doc["success_rate"]),
		ExtractionRate: AsFloat(doc["extraction_rate"]),
		QualityRate:    AsFloat(doc["quality_rate"]),
		Throughput:     AsFloat(doc["throughput"]),
	}

	if bd, ok := doc["filter_breakdown"].(map[string]any); ok {
		r.FilterBreakdown = make(map[string]int, len(bd))
		for reason, count := range bd {
			r.FilterBreakdown[reason] = AsInt(count)
		}
	}

	if samples, ok := doc["length_samples"].([]any); ok {
		r.LengthSamples = make([]float64, 0, len(samples))
		for _, s := range samples {
			r.LengthSamples = append(r.LengthSamples, AsFloat(s))
		}
	}

	return r
}

// SnapshotFromDocument builds a Snapshot from a decoded snapshot document.
// Entries that are not record objects are skipped.
func SnapshotFromDocument(doc map[string]any) Snapshot {
	s := Snapshot{CapturedAt: ParseTime(doc["captured_at"])}

	records, ok := doc["records"].([]any)
	if !ok {
		return s
	}
	s.Records = make([]Record, 0, len(records))
	for _, entry := range records {
		rd, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		s.Records = append(s.Records, RecordFromDocument(rd))
	}
	return s
}
