package models

import (
	"strings"

	dErrors "backoffice/pkg/domain-errors"
)

// TransitionRequest is the HTTP payload for a manual status change.
type TransitionRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Normalize trims whitespace in place.
func (r *TransitionRequest) Normalize() {
	r.Status = strings.TrimSpace(r.Status)
	r.Reason = strings.TrimSpace(r.Reason)
}

// Validate checks the request is well-formed. Status legality per kind is the
// lifecycle engine's decision, not the transport's.
func (r *TransitionRequest) Validate() error {
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if len(r.Reason) > 512 {
		return dErrors.New(dErrors.CodeValidation, "reason must be 512 characters or less")
	}
	return nil
}
