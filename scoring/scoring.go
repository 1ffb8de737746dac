// Package scoring derives a report's authenticity verdict from the
// classifier outcome and the reporter's own title.
package scoring

import (
	"strings"

	"go-hazardwatch/types"
)

// TextMatch checks symmetric case-insensitive containment between the
// report title and the classifier's predicted label. An empty title or
// label never matches; "" is a substring of everything and would make
// every report look corroborated.
func TextMatch(title, predictedLabel string) bool {
	if title == "" || predictedLabel == "" {
		return false
	}
	t := strings.ToLower(title)
	p := strings.ToLower(predictedLabel)
	return strings.Contains(t, p) || strings.Contains(p, t)
}

// Score combines the classifier verdict with the title/label text match.
// nil means unknown: the classifier was never invoked or was unavailable.
// This is deliberately distinct from false, which is an actual negative
// verdict on a successful classification.
func Score(title string, classification *types.Classification) *bool {
	if classification == nil || classification.Unavailable {
		return nil
	}
	verdict := TextMatch(title, classification.PredictedLabel) && classification.IsHazard
	return &verdict
}
