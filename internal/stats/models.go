package stats

import (
	"time"

	"github.com/google/uuid"

	"backoffice/internal/moderation/models"
)

// DashboardStats is a read-only projection recomputed from the entity store
// and activity log on every request. It is never persisted, so it can never
// drift from its sources.
type DashboardStats struct {
	GeneratedAt      time.Time                        `json:"generated_at"`
	Kinds            map[models.EntityKind]KindCounts `json:"kinds"`
	Applications     ApplicationBreakdown             `json:"applications"`
	RecentActivities []ActivityView                   `json:"recent_activities"`
}

// KindCounts partitions one kind's entities by status and reports growth
// over the configured window.
type KindCounts struct {
	Total    int     `json:"total"`
	Active   int     `json:"active"`
	Inactive int     `json:"inactive"`
	// GrowthPct compares entities created in the last window against the
	// window before it. A zero previous period reports 0, never infinity.
	GrowthPct float64 `json:"growth_pct"`
}

// ApplicationBreakdown partitions applications by outcome. Rejected is
// derived as total minus pending minus accepted so the three always sum to
// the total by construction.
type ApplicationBreakdown struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// ActivityView is an activity record enriched for display: the actor ID is
// resolved to a name, the action to its label.
type ActivityView struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ActorID     uuid.UUID `json:"actor_id"`
	ActorName   string    `json:"actor_name"`
	Action      string    `json:"action_type"`
	ActionLabel string    `json:"action_label"`
	TargetKind  string    `json:"target_kind"`
	TargetID    uuid.UUID `json:"target_id"`
	Reason      string    `json:"reason,omitempty"`
}
