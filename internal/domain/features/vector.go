// Package features flattens relational CRM records — deals, accounts, contact
// roles, activity counters, custom fields — into the flat per-deal feature
// vectors consumed by the pattern miners (closed records) and the point-based
// scorer (open records).  Everything in this package is pure transformation;
// no statistical logic lives here.
package features

import (
	"time"

	"github.com/dealsense/icp-engine/pkg/types/common"
)

// Outcome is the terminal state of a closed deal.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Buying roles tagged on a contact-deal association.
const (
	RoleChampion           = "champion"
	RoleEconomicBuyer      = "economic_buyer"
	RoleDecisionMaker      = "decision_maker"
	RoleTechnicalEvaluator = "technical_evaluator"
)

// AccountFeatures carries the account attributes joined onto a deal vector.
type AccountFeatures struct {
	Industry      string
	EmployeeCount int
	AnnualRevenue float64
}

// ContactFeature is one contact-role row flattened for a single deal:
// the free-text title plus its resolved seniority/department classification
// and the buying role assigned on the association.
type ContactFeature struct {
	ContactID  common.ID
	Title      string
	BuyingRole string
	Seniority  string
	Department string
}

// ActivitySummary aggregates per-deal engagement counters grouped by type.
type ActivitySummary struct {
	Emails         int
	Calls          int
	Meetings       int
	Total          int
	ActiveDays     int
	LastActivityAt *time.Time
}

// ClosedDealVector is the feature vector for one historically closed deal.
// Immutable once computed for a run; regenerated on every discovery run.
type ClosedDealVector struct {
	DealID    common.ID
	Outcome   Outcome
	Amount    float64
	CycleDays int
	OwnerID   string

	Account    AccountFeatures
	LeadSource string

	Contacts     []ContactFeature
	RolesPresent map[string]bool

	Activity ActivitySummary

	DealFields    common.FieldMap
	AccountFields common.FieldMap
}

// Won reports whether the deal closed won.
func (v ClosedDealVector) Won() bool { return v.Outcome == OutcomeWon }

// OpenDealVector is the feature vector for one currently-open deal.  The
// derived temporal fields are used only by scoring, never by discovery.
type OpenDealVector struct {
	DealID      common.ID
	Amount      float64
	Probability int
	Stage       string
	OwnerID     string

	Account    AccountFeatures
	LeadSource string

	Contacts     []ContactFeature
	RolesPresent map[string]bool

	Activity ActivitySummary

	DealFields    common.FieldMap
	AccountFields common.FieldMap

	CreatedAt time.Time
	CloseDate *time.Time

	// Derived at build time against the run's reference clock.
	DaysSinceCreation int
	DaysUntilClose    int
	DaysSinceActivity int
}

// OpenContactVector is the feature vector for one contact attached to an open
// deal.  Contact scoring folds in the owning deal's already-computed score,
// so contacts are always scored after the deal phase of the same run.
type OpenContactVector struct {
	ContactID common.ID
	DealID    common.ID

	Title      string
	BuyingRole string
	Seniority  string
	Department string

	EmailsExchanged  int
	MeetingsAttended int
	DaysSinceContact int
}

// FieldLookup resolves a custom-field key against the deal fields first and
// the account fields second, mirroring how CRM exports shadow account values
// with deal-level overrides.
func (v OpenDealVector) FieldLookup(key string) (common.FieldValue, bool) {
	if fv, ok := v.DealFields[key]; ok && !fv.IsAbsent() {
		return fv, true
	}
	if fv, ok := v.AccountFields[key]; ok && !fv.IsAbsent() {
		return fv, true
	}
	return common.FieldValue{}, false
}

// FieldLookup is the closed-record counterpart used by the company miner.
func (v ClosedDealVector) FieldLookup(key string) (common.FieldValue, bool) {
	if fv, ok := v.DealFields[key]; ok && !fv.IsAbsent() {
		return fv, true
	}
	if fv, ok := v.AccountFields[key]; ok && !fv.IsAbsent() {
		return fv, true
	}
	return common.FieldValue{}, false
}

//Personal.AI order the ending
