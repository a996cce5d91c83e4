package features

import (
	"context"
	"time"

	"github.com/dealsense/icp-engine/pkg/types/common"
)

// The read interfaces below are the engine's only view of the external CRM
// store.  Each is deliberately narrow and batched: one call per feature
// category per run, keyed by the full deal-id set, so feature extraction
// never issues per-record sub-queries.

// DealRecord is a raw closed or open deal row with its account join applied.
// Fields irrelevant to the record's lifecycle state are zero (Outcome on open
// deals, Probability/Stage on closed deals).
type DealRecord struct {
	DealID  common.ID
	Outcome Outcome
	Amount  float64
	OwnerID string

	Probability int
	Stage       string

	Industry      string
	EmployeeCount int
	AnnualRevenue float64
	LeadSource    string

	CreatedAt time.Time
	ClosedAt  *time.Time
	CloseDate *time.Time

	DealFields    common.FieldMap
	AccountFields common.FieldMap
}

// ContactRoleRecord is one contact-deal association row.  Seniority and
// Department are populated only when externally verified (enrichment); blank
// values are classified from the title during matrix construction.
type ContactRoleRecord struct {
	DealID     common.ID
	ContactID  common.ID
	Title      string
	BuyingRole string
	Seniority  string
	Department string

	EmailsExchanged  int
	MeetingsAttended int
	LastContactedAt  *time.Time
}

// ActivityCounts aggregates a deal's activity rows grouped by type.
type ActivityCounts struct {
	Emails         int
	Calls          int
	Meetings       int
	ActiveDays     int
	LastActivityAt *time.Time
}

// ClosedDealReader lists the workspace's closed deals with account joins.
type ClosedDealReader interface {
	ClosedDeals(ctx context.Context, ws common.WorkspaceID) ([]DealRecord, error)
}

// OpenDealReader lists the workspace's currently-open deals with account joins.
type OpenDealReader interface {
	OpenDeals(ctx context.Context, ws common.WorkspaceID) ([]DealRecord, error)
}

// ContactRoleReader returns all contact-role rows for the given deals in one
// batched query, keyed by deal id.
type ContactRoleReader interface {
	RolesByDeal(ctx context.Context, ws common.WorkspaceID, dealIDs []common.ID) (map[common.ID][]ContactRoleRecord, error)
}

// ActivityReader returns aggregated activity counters for the given deals in
// one batched query, keyed by deal id.  Call-platform joins are optional per
// workspace: implementations may fail when the source table does not exist,
// and the matrix builder treats that as zero activity rather than aborting.
type ActivityReader interface {
	CountsByDeal(ctx context.Context, ws common.WorkspaceID, dealIDs []common.ID) (map[common.ID]ActivityCounts, error)
}

// DepartmentOverrideReader returns the workspace's department keyword
// overrides (keyword → department), which take precedence over the fixed
// default classification table.
type DepartmentOverrideReader interface {
	DepartmentOverrides(ctx context.Context, ws common.WorkspaceID) (map[string]string, error)
}

//Personal.AI order the ending
