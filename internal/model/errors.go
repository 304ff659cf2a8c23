package model

import "fmt"

// IntegrityKind names the kind of id that failed to resolve
type IntegrityKind string

const (
	IntegrityClaim    IntegrityKind = "claim"
	IntegrityDocument IntegrityKind = "document"
	IntegritySentence IntegrityKind = "sentence"
	IntegrityTask     IntegrityKind = "task"
)

// DataIntegrityError reports an id referenced by one input file but absent
// from another. It is fatal for the run and never retried.
type DataIntegrityError struct {
	Kind    IntegrityKind
	ID      int64
	ClaimID int64
	Detail  string
}

func (e *DataIntegrityError) Error() string {
	msg := fmt.Sprintf("data integrity: %s %d unresolvable (claim %d)", e.Kind, e.ID, e.ClaimID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}
