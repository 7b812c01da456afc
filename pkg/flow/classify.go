package flow

import "strings"

// Class is the coarse filtered category a filter reason maps to.
type Class string

const (
	ClassDuplicate Class = "duplicate"
	ClassQuality   Class = "quality"
	ClassOther     Class = "other"
)

// Classifier assigns a filter reason to its flow category.
type Classifier interface {
	Classify(reason string) Class
}

// KeywordClassifier buckets reasons by substring match, checked in fixed
// precedence order: duplicate before quality before other. First match wins.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(reason string) Class {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "duplicate"), strings.Contains(r, "hash"):
		return ClassDuplicate
	case strings.Contains(r, "length"), strings.Contains(r, "quality"):
		return ClassQuality
	}
	return ClassOther
}

// CatalogClassifier classifies from an explicit reason catalog published by
// the upstream filter framework. Reasons missing from the catalog fall back
// to keyword inference, so a partially rolled-out catalog still classifies
// every reason.
type CatalogClassifier struct {
	Catalog map[string]Class
}

func (c CatalogClassifier) Classify(reason string) Class {
	if class, ok := c.Catalog[reason]; ok {
		return class
	}
	return KeywordClassifier{}.Classify(reason)
}

type totals struct {
	duplicate int
	quality   int
	other     int
}

func classifyTotals(breakdown map[string]int, c Classifier) totals {
	var t totals
	for reason, count := range breakdown {
		switch c.Classify(reason) {
		case ClassDuplicate:
			t.duplicate += count
		case ClassQuality:
			t.quality += count
		default:
			t.other += count
		}
	}
	return t
}
