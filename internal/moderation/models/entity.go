package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "backoffice/pkg/domain-errors"
)

// EntityKind identifies a moderated domain object.
type EntityKind string

const (
	KindJob              EntityKind = "job"
	KindCompany          EntityKind = "company"
	KindUser             EntityKind = "user"
	KindSubscriptionPlan EntityKind = "subscription_plan"
	KindInvoice          EntityKind = "invoice"
	KindApplication      EntityKind = "application"
)

// Kinds lists every moderated kind in a stable order.
var Kinds = []EntityKind{
	KindJob,
	KindCompany,
	KindUser,
	KindSubscriptionPlan,
	KindInvoice,
	KindApplication,
}

// Status is a kind-scoped lifecycle state. Legality is defined per kind by
// legalStatuses; a Status constant on its own means nothing.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
	StatusArchived Status = "archived"
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusVoid     Status = "void"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var legalStatuses = map[EntityKind][]Status{
	KindJob:              {StatusActive, StatusInactive, StatusExpired},
	KindCompany:          {StatusActive, StatusInactive},
	KindUser:             {StatusActive, StatusInactive},
	KindSubscriptionPlan: {StatusActive, StatusArchived},
	KindInvoice:          {StatusPending, StatusPaid, StatusVoid},
	KindApplication:      {StatusPending, StatusAccepted, StatusRejected},
}

// ParseKind validates a wire-level kind string.
func ParseKind(raw string) (EntityKind, error) {
	kind := EntityKind(raw)
	if _, ok := legalStatuses[kind]; !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "unknown entity kind "+raw)
	}
	return kind, nil
}

// LegalStatuses returns the status set for a kind, nil for unknown kinds.
func (k EntityKind) LegalStatuses() []Status {
	return legalStatuses[k]
}

// Allows reports whether s is a member of the kind's legal status set.
func (k EntityKind) Allows(s Status) bool {
	for _, legal := range legalStatuses[k] {
		if legal == s {
			return true
		}
	}
	return false
}

// Entity is the canonical record for a moderated domain object.
//
// Invariants:
//   - Kind is one of the known kinds; Status is a member of Kind's legal set
//   - UpdatedAt is refreshed on every mutation, including same-status
//     transitions (audit trails stay explicit about repeated admin actions)
//   - Attributes are opaque to the lifecycle engine; only Status, ExpiryDate,
//     and the timestamps drive transitions
type Entity struct {
	ID     uuid.UUID  `json:"id"`
	Kind   EntityKind `json:"kind"`
	Status Status     `json:"status"`

	// DisplayName is the label moderation screens show: job title, company
	// or user name, plan name, invoice number.
	DisplayName string `json:"display_name"`

	// Attributes carries kind-specific fields (location, salary, price,
	// features) owned by the surrounding application.
	Attributes map[string]any `json:"attributes,omitempty"`

	// ExpiryDate applies to jobs only. An active job past this instant is
	// eligible for automatic expiration.
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransitionTo checks that the requested status is legal for this entity's
// kind. Any legal status may follow any other for manual admin transitions,
// including the current one.
func (e *Entity) CanTransitionTo(status Status) error {
	if !e.Kind.Allows(status) {
		return dErrors.New(dErrors.CodeInvalidStatus,
			string(status)+" is not a valid "+string(e.Kind)+" status")
	}
	return nil
}

// ApplyStatus transitions the entity and refreshes UpdatedAt. Call
// CanTransitionTo first; ApplyStatus does not re-validate.
func (e *Entity) ApplyStatus(status Status, now time.Time) {
	e.Status = status
	e.UpdatedAt = now
}

// ExpiresBefore reports whether the sweep should expire this entity at now:
// an active job whose expiry date has passed. The status predicate is what
// makes the sweep idempotent and lets it lose races with manual transitions
// gracefully.
func (e *Entity) ExpiresBefore(now time.Time) bool {
	return e.Kind == KindJob &&
		e.Status == StatusActive &&
		e.ExpiryDate != nil &&
		e.ExpiryDate.Before(now)
}
