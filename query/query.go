// Package query implements the read models over the report collection:
// the community feed, the verified-hazard ranking used by authorities,
// and the authentic-only feed.
package query

import (
	"sort"
	"strconv"

	"go-hazardwatch/types"
)

// DefaultMinConfidence is applied to the verified-hazard ranking when the
// caller supplies no (or an unparseable) threshold.
const DefaultMinConfidence = 0.8

// ParseMinConfidence interprets a raw query parameter. Non-numeric input
// falls back to the default; numeric input is clamped to [0,1].
func ParseMinConfidence(raw string) float64 {
	if raw == "" {
		return DefaultMinConfidence
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return DefaultMinConfidence
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CommunityFeed returns all reports, optionally filtered by exact pincode,
// newest first.
func CommunityFeed(reports []types.Report, pincode string) []types.Report {
	out := make([]types.Report, 0, len(reports))
	for _, r := range reports {
		if pincode != "" && r.Pincode != pincode {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// RankedReport is a report with its read-time severity bucket attached.
// The bucket is a projection for the authority dashboard, never persisted.
type RankedReport struct {
	types.Report
	Severity types.Severity `json:"severity"`
}

// VerifiedHazards returns classifier-confirmed hazards at or above
// minConfidence, ranked by confidence descending with createdAt descending
// as the tie-break.
func VerifiedHazards(reports []types.Report, minConfidence float64) []RankedReport {
	out := make([]RankedReport, 0)
	for _, r := range reports {
		if !r.Classified() || !r.Classification.IsHazard {
			continue
		}
		if r.Classification.Confidence < minConfidence {
			continue
		}
		out = append(out, RankedReport{
			Report:   r,
			Severity: types.SeverityFor(r.Classification.Confidence),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Classification.Confidence, out[j].Classification.Confidence
		if ci != cj {
			return ci > cj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// AuthenticOnly returns reports whose derived authenticity verdict is true.
// Reports with an unknown (nil) verdict are excluded, not treated as false.
func AuthenticOnly(reports []types.Report) []types.Report {
	out := make([]types.Report, 0)
	for _, r := range reports {
		if r.Authenticity != nil && *r.Authenticity {
			out = append(out, r)
		}
	}
	return out
}
