// Package adapter maps provider-native records onto the canonical incident
// feature shape. Each provider is described by a declarative Schema: an
// ordered list of candidate keys per canonical field, evaluated
// first-non-empty-wins.
package adapter

import (
	"fmt"

	"github.com/sells-group/inforoute-cli/internal/model"
)

// Reason classifies why a record was dropped.
type Reason string

const (
	// ReasonNoGeometry means the record has no geometry-bearing field.
	ReasonNoGeometry Reason = "no_geometry"
	// ReasonMalformedGeometry means a geometry field exists but cannot be used.
	ReasonMalformedGeometry Reason = "malformed_geometry"
	// ReasonMissingID means the record has no native identifier.
	ReasonMissingID Reason = "missing_id"
	// ReasonMapping means a field could not be mapped (unexpected type, panic).
	ReasonMapping Reason = "mapping_error"
)

// Rejection describes a dropped record.
type Rejection struct {
	Source   string
	RecordID string
	Reason   Reason
	Err      error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s record %q rejected (%s): %v", r.Source, r.RecordID, r.Reason, r.Err)
	}
	return fmt.Sprintf("%s record %q rejected (%s)", r.Source, r.RecordID, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Result is the outcome of mapping one record: exactly one of Feature or
// Rejection is set.
type Result struct {
	Feature   *model.Feature
	Rejection *Rejection
}

// Accepted wraps a mapped feature.
func Accepted(f *model.Feature) Result {
	return Result{Feature: f}
}

// Rejected wraps a rejection.
func Rejected(r *Rejection) Result {
	return Result{Rejection: r}
}

// OK reports whether the record produced a feature.
func (r Result) OK() bool {
	return r.Feature != nil
}

// Adapter maps records of one provider.
type Adapter interface {
	// Key is the short source tag (e.g., "cd44"). It prefixes feature ids and
	// keys the per-source counts.
	Key() string

	// Label is the value written to the "source" property (e.g., "CD44").
	Label() string

	// Map converts one record. It never panics and never returns an error:
	// failures are reported as a Rejection.
	Map(rec model.RawRecord) Result
}
