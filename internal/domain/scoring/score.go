// Package scoring converts discovered patterns into point weights and applies
// them to open records, producing auditable per-dimension breakdowns.
package scoring

import (
	"context"
	"time"

	"github.com/dealsense/icp-engine/pkg/types/common"
)

// EntityType distinguishes the two scored record kinds.
type EntityType string

const (
	EntityDeal    EntityType = "deal"
	EntityContact EntityType = "contact"
)

// Grade cut points, fixed.
const (
	gradeACutoff = 85
	gradeBCutoff = 70
	gradeCCutoff = 50
	gradeDCutoff = 30
)

// GradeFor maps a normalized score to its letter grade.
func GradeFor(score int) string {
	switch {
	case score >= gradeACutoff:
		return "A"
	case score >= gradeBCutoff:
		return "B"
	case score >= gradeCCutoff:
		return "C"
	case score >= gradeDCutoff:
		return "D"
	default:
		return "F"
	}
}

// BreakdownEntry records how one dimension contributed to a score: the raw
// observed value, the points awarded, and the dimension's signed maximum.
type BreakdownEntry struct {
	Dimension string            `json:"dimension"`
	Raw       common.FieldValue `json:"raw"`
	Points    int               `json:"points"`
	MaxWeight int               `json:"max_weight"`
}

// LeadScore is the persisted scoring result for one entity.  One row exists
// per (workspace, entity type, entity id); each scoring run overwrites it
// while preserving the prior total for delta computation.
type LeadScore struct {
	WorkspaceID common.WorkspaceID `json:"workspace_id"`
	EntityType  EntityType         `json:"entity_type"`
	EntityID    common.ID          `json:"entity_id"`

	Score     int              `json:"score"`
	Grade     string           `json:"grade"`
	Breakdown []BreakdownEntry `json:"breakdown"`

	PreviousScore int `json:"previous_score"`
	ScoreChange   int `json:"score_change"`

	ScoredAt common.Timestamp `json:"scored_at"`
}

// ScoreRepository is the persistence contract for lead scores.  Upsert is
// keyed by (workspace, entity_type, entity_id): on conflict the stored total
// becomes previous_score and score_change is the delta; a first-ever write
// sets previous_score to the new score and score_change to zero.
type ScoreRepository interface {
	Upsert(ctx context.Context, ws common.WorkspaceID, entityType EntityType, entityID common.ID,
		score int, grade string, breakdown []BreakdownEntry, scoredAt time.Time) (LeadScore, error)
	GetByEntity(ctx context.Context, ws common.WorkspaceID, entityType EntityType, entityID common.ID) (LeadScore, error)
	ListByWorkspace(ctx context.Context, ws common.WorkspaceID, entityType EntityType, limit int) ([]LeadScore, error)
}

//Personal.AI order the ending
