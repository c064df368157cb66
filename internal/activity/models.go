package activity

import (
	"time"

	"github.com/google/uuid"
)

// SystemActorID is the reserved actor attributed to automated transitions
// such as the expiration sweep. It is never a real admin account.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SystemActorLabel is the display name used when SystemActorID appears in an
// activity feed.
const SystemActorLabel = "system"

// ActionType classifies privileged actions. The set is closed: presentation
// code switches over it exhaustively so an unrecognized type can never fall
// through silently.
type ActionType string

const (
	ActionUserCreated           ActionType = "user_created"
	ActionUserDeleted           ActionType = "user_deleted"
	ActionRoleChange            ActionType = "role_change"
	ActionUserBlocked           ActionType = "user_blocked"
	ActionUserUnblocked         ActionType = "user_unblocked"
	ActionStatusChange          ActionType = "status_change"
	ActionLogin                 ActionType = "login"
	ActionLogout                ActionType = "logout"
	ActionSettingsUpdated       ActionType = "settings_updated"
	ActionSubscriptionCreated   ActionType = "subscription_created"
	ActionSubscriptionCancelled ActionType = "subscription_cancelled"
	ActionJobExpired            ActionType = "job_expired"
)

// Category classifies actions by their primary purpose. This enables
// different retention policies and downstream routing.
type Category string

const (
	// CategoryCompliance covers actions with legal/regulatory significance.
	CategoryCompliance Category = "compliance"

	// CategorySecurity covers actions relevant to security monitoring.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine actions useful for visibility.
	CategoryOperations Category = "operations"
)

var actionCategories = map[ActionType]Category{
	ActionUserCreated:           CategoryCompliance,
	ActionUserDeleted:           CategoryCompliance,
	ActionSubscriptionCreated:   CategoryCompliance,
	ActionSubscriptionCancelled: CategoryCompliance,

	ActionUserBlocked:   CategorySecurity,
	ActionUserUnblocked: CategorySecurity,
	ActionRoleChange:    CategorySecurity,
	ActionLogin:         CategorySecurity,
	ActionLogout:        CategorySecurity,

	ActionStatusChange:    CategoryOperations,
	ActionSettingsUpdated: CategoryOperations,
	ActionJobExpired:      CategoryOperations,
}

// Category returns the category for this action type.
// Unknown actions default to CategoryOperations.
func (a ActionType) Category() Category {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Known reports whether a is a member of the closed action set.
func (a ActionType) Known() bool {
	_, ok := actionCategories[a]
	return ok
}

// Label returns the human-readable form used by activity feeds. The switch is
// exhaustive over the closed set; anything else gets a visible marker rather
// than a silent passthrough.
func (a ActionType) Label() string {
	switch a {
	case ActionUserCreated:
		return "User created"
	case ActionUserDeleted:
		return "User deleted"
	case ActionRoleChange:
		return "Role changed"
	case ActionUserBlocked:
		return "User blocked"
	case ActionUserUnblocked:
		return "User unblocked"
	case ActionStatusChange:
		return "Status changed"
	case ActionLogin:
		return "Signed in"
	case ActionLogout:
		return "Signed out"
	case ActionSettingsUpdated:
		return "Settings updated"
	case ActionSubscriptionCreated:
		return "Subscription created"
	case ActionSubscriptionCancelled:
		return "Subscription cancelled"
	case ActionJobExpired:
		return "Job expired"
	default:
		return "Unrecognized action (" + string(a) + ")"
	}
}

// Record is one immutable audit entry describing a privileged action.
// Once appended it is never mutated or deleted; entity state holds only the
// current status, so records are the sole source of historical truth.
type Record struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ActorID    uuid.UUID  `json:"actor_id"`
	Action     ActionType `json:"action_type"`
	TargetKind string     `json:"target_kind"`
	TargetID   uuid.UUID  `json:"target_id"`
	Reason     string     `json:"reason,omitempty"`
	RequestID  string     `json:"request_id,omitempty"`
	ClientIP   string     `json:"client_ip,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
}
