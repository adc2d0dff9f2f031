// Package model defines core data structures and types for the CRM forms.
package model

// FormType tags the kind of form a draft belongs to.
type FormType string

const (
	FormClient     FormType = "client"
	FormTrip       FormType = "trip"
	FormTask       FormType = "task"
	FormCommission FormType = "commission"
)

// EntityID identifies the record a form edits. Empty means create mode.
type EntityID string

// FormPayload holds a form's current field values keyed by field name.
// Values are the JSON-decoded representations the portal submits: strings,
// numbers, booleans, and []any sequences (traveler lists, tag lists).
type FormPayload map[string]any

func (p FormPayload) Clone() FormPayload {
	if p == nil {
		return nil
	}
	out := make(FormPayload, len(p))
	for k, v := range p {
		if seq, ok := v.([]any); ok {
			cp := make([]any, len(seq))
			copy(cp, seq)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
