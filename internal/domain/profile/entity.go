// Package profile defines the persisted ICP profile artifact produced by a
// discovery run and its persistence contract.
package profile

import (
	"context"

	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/internal/domain/readiness"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// Status of a profile.  The engine only ever writes draft; activation and
// supersession are an external collaborator's responsibility.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusSuperseded Status = "superseded"
)

// RunMetadata captures how the discovery run that produced a profile went.
type RunMetadata struct {
	Mode            readiness.Mode `json:"mode"`
	DealsAnalyzed   int            `json:"deals_analyzed"`
	WonDeals        int            `json:"won_deals"`
	LostDeals       int            `json:"lost_deals"`
	ExecutionMillis int64          `json:"execution_millis"`
}

// ICPProfile is the versioned, immutable bundle a discovery run persists:
// every mined pattern set plus the synthesized weights and run metadata.
// Versions increase monotonically per workspace; rows are never updated
// after insert.
type ICPProfile struct {
	ID          common.ID          `json:"id"`
	WorkspaceID common.WorkspaceID `json:"workspace_id"`
	Version     int                `json:"version"`
	Status      Status             `json:"status"`

	Personas   []mining.PersonaPattern  `json:"personas"`
	Committees []mining.CommitteeCombo  `json:"committees"`
	Company    mining.CompanyProfile    `json:"company"`
	Weights    scoring.Weights          `json:"weights"`

	Metadata  RunMetadata      `json:"metadata"`
	CreatedAt common.Timestamp `json:"created_at"`
}

// Repository is the ICP profile persistence contract.  Insert allocates the
// workspace's next version atomically; concurrent discovery runs for the
// same workspace are serialized by the caller, so version allocation only
// guards against stale reads, not races.
type Repository interface {
	Insert(ctx context.Context, p *ICPProfile) error
	GetByID(ctx context.Context, ws common.WorkspaceID, id common.ID) (*ICPProfile, error)
	GetLatest(ctx context.Context, ws common.WorkspaceID) (*ICPProfile, error)
	ListVersions(ctx context.Context, ws common.WorkspaceID, limit int) ([]*ICPProfile, error)
}

//Personal.AI order the ending
