package types

import (
	"time"
)

// Status of a report in the authority workflow.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusAcknowledged Status = "Acknowledged"
	StatusResolved     Status = "Resolved"
	StatusRejected     Status = "Rejected"
)

// Terminal reports accept no further status transitions.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Report categories accepted at intake.
const (
	CategoryCriminal     = "criminal"
	CategoryMunicipality = "municipality"
	CategoryOcean        = "ocean"
)

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c string) bool {
	return c == CategoryCriminal || c == CategoryMunicipality || c == CategoryOcean
}

// Classification is the normalized outcome of one classifier contact.
// Exactly one of the three shapes applies: a successful prediction
// (Unavailable false), an explicit degraded marker (Unavailable true),
// or no Classification at all when no image was supplied.
type Classification struct {
	PredictedLabel string                 `json:"predictedLabel,omitempty" firestore:"predictedLabel,omitempty"`
	Confidence     float64                `json:"confidence" firestore:"confidence"`
	IsHazard       bool                   `json:"isHazard" firestore:"isHazard"`
	Components     map[string]interface{} `json:"components,omitempty" firestore:"components,omitempty"`
	Unavailable    bool                   `json:"unavailable,omitempty" firestore:"unavailable,omitempty"`
	Error          string                 `json:"error,omitempty" firestore:"error,omitempty"`
}

// Report is the central entity of the pipeline.
type Report struct {
	ID          string `json:"id" firestore:"id"`
	Category    string `json:"category" firestore:"category"`
	Title       string `json:"title" firestore:"title"`
	Type        string `json:"type" firestore:"type"`
	Description string `json:"description" firestore:"description"`
	Location    string `json:"location" firestore:"location"`
	Pincode     string `json:"pincode" firestore:"pincode"`

	// ImageRef is the stored blob name of the uploaded photo, empty when the
	// report came without one.
	ImageRef string `json:"imageRef,omitempty" firestore:"imageRef,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`

	Status         Status `json:"status" firestore:"status"`
	ReporterID     string `json:"reporterId,omitempty" firestore:"reporterId,omitempty"`
	AuthorityNotes string `json:"authorityNotes,omitempty" firestore:"authorityNotes,omitempty"`

	Classification *Classification `json:"classification" firestore:"classification"`

	// Authenticity is derived by the scorer, never client-supplied.
	// nil means unknown (no classification or classifier unavailable).
	Authenticity *bool `json:"authenticity" firestore:"authenticity"`
}

// Classified reports whether the classifier produced a usable prediction.
func (r *Report) Classified() bool {
	return r.Classification != nil && !r.Classification.Unavailable
}

// Severity bucket derived from classifier confidence at read time.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// SeverityFor maps a confidence value to its display bucket.
func SeverityFor(confidence float64) Severity {
	switch {
	case confidence >= 0.9:
		return SeverityCritical
	case confidence >= 0.85:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
