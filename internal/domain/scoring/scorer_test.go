package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func strongOpenDeal() features.OpenDealVector {
	return features.OpenDealVector{
		DealID:      common.NewID(),
		Amount:      120000,
		Probability: 60,
		Stage:       "decision",
		LeadSource:  "referral",
		Account:     features.AccountFeatures{Industry: "SaaS", EmployeeCount: 400},
		Contacts: []features.ContactFeature{
			{Seniority: features.SeniorityVP, Department: features.DeptEngineering, BuyingRole: features.RoleChampion},
			{Seniority: features.SeniorityCLevel, Department: features.DeptFinance, BuyingRole: features.RoleEconomicBuyer},
			{Seniority: features.SeniorityDirector, Department: features.DeptOperations, BuyingRole: features.RoleDecisionMaker},
		},
		RolesPresent: map[string]bool{
			features.RoleChampion:      true,
			features.RoleEconomicBuyer: true,
			features.RoleDecisionMaker: true,
		},
		Activity:          features.ActivitySummary{Emails: 30, Calls: 8, Meetings: 4, Total: 42, ActiveDays: 15},
		DaysSinceActivity: 10,
		DaysSinceCreation: 45,
	}
}

func TestScoreDeal_StrongDealLandsHigh(t *testing.T) {
	s := NewScorer(DefaultWeights(), Config{})
	res := s.ScoreDeal(strongOpenDeal())

	assert.GreaterOrEqual(t, res.Score, 70, "expected B range or better")
	assert.LessOrEqual(t, res.Score, 100)
	assert.Contains(t, []string{"A", "B"}, res.Grade)

	byName := breakdownIndex(res.Breakdown)
	for _, dim := range []string{"has_recent_activity", "multi_threaded", "has_champion", "probability", "stage_advanced"} {
		require.Contains(t, byName, dim)
	}
	assert.Positive(t, byName["multi_threaded"].Points)
	assert.Positive(t, byName["has_champion"].Points)
	assert.Positive(t, byName["probability"].Points)
	assert.Positive(t, byName["stage_advanced"].Points)
	// 10 days since activity is still inside the two-week recency window;
	// the elapsed week shows up only as the inactivity penalty.
	assert.Positive(t, byName["has_recent_activity"].Points)
	assert.Equal(t, -2, byName["days_since_activity"].Points)
}

func TestScoreDeal_RangeAndGradeInvariant(t *testing.T) {
	vectors := []features.OpenDealVector{
		{},
		{DaysSinceActivity: 400, Stage: "decision"},
		strongOpenDeal(),
		{Amount: 1e9, Probability: 100, Stage: "decision", Activity: features.ActivitySummary{Emails: 999, Calls: 99, Meetings: 99, Total: 1197, ActiveDays: 99}},
	}
	s := NewScorer(DefaultWeights(), Config{})
	for i, v := range vectors {
		res := s.ScoreDeal(v)
		assert.GreaterOrEqual(t, res.Score, 0, "vector %d", i)
		assert.LessOrEqual(t, res.Score, 100, "vector %d", i)
		assert.Equal(t, GradeFor(res.Score), res.Grade, "vector %d", i)
	}
}

func TestScoreDeal_LateStageNoCallsPenalty(t *testing.T) {
	v := features.OpenDealVector{Stage: "negotiation"}
	s := NewScorer(DefaultWeights(), Config{})

	res := s.ScoreDeal(v)
	entry := breakdownIndex(res.Breakdown)["no_calls_late_stage"]
	assert.Equal(t, -5, entry.Points)

	v.Activity.Calls = 1
	entry = breakdownIndex(s.ScoreDeal(v).Breakdown)["no_calls_late_stage"]
	assert.Equal(t, 0, entry.Points)

	// Early stage never triggers the penalty.
	v = features.OpenDealVector{Stage: "qualification"}
	entry = breakdownIndex(s.ScoreDeal(v).Breakdown)["no_calls_late_stage"]
	assert.Equal(t, 0, entry.Points)
}

func TestScoreDeal_RecentActivityWindow(t *testing.T) {
	s := NewScorer(DefaultWeights(), Config{})

	tests := []struct {
		days       int
		total      int
		wantPoints int
	}{
		{days: 0, total: 5, wantPoints: 5},
		{days: 10, total: 5, wantPoints: 5},
		{days: 14, total: 5, wantPoints: 5},
		{days: 15, total: 5, wantPoints: 0},
		{days: 3, total: 0, wantPoints: 0}, // no activity at all is never recent
	}
	for _, tt := range tests {
		v := features.OpenDealVector{
			Activity:          features.ActivitySummary{Emails: tt.total, Total: tt.total},
			DaysSinceActivity: tt.days,
		}
		entry := breakdownIndex(s.ScoreDeal(v).Breakdown)["has_recent_activity"]
		assert.Equal(t, tt.wantPoints, entry.Points, "days=%d total=%d", tt.days, tt.total)
	}
}

func TestScoreDeal_ConfigurablePenalties(t *testing.T) {
	v := features.OpenDealVector{Stage: "decision", DaysSinceActivity: 14}
	s := NewScorer(DefaultWeights(), Config{InactivityPenaltyPerWeek: 4, NoCallsLateStagePenalty: 3})

	byName := breakdownIndex(s.ScoreDeal(v).Breakdown)
	assert.Equal(t, -8, byName["days_since_activity"].Points)
	assert.Equal(t, -3, byName["no_calls_late_stage"].Points)
}

func TestScoreDeal_CustomFieldDimensions(t *testing.T) {
	w := DefaultWeights()
	w.CustomFields["plan_tier"] = map[string]int{"enterprise": 10, "starter": 4}
	s := NewScorer(w, Config{})

	v := features.OpenDealVector{
		DealFields: common.FieldMap{"plan_tier": common.StringValue("starter")},
	}
	byName := breakdownIndex(s.ScoreDeal(v).Breakdown)
	require.Contains(t, byName, "custom:plan_tier")
	assert.Equal(t, 4, byName["custom:plan_tier"].Points)
	assert.Equal(t, 10, byName["custom:plan_tier"].MaxWeight)

	// A deal without the field gets no entry for it.
	byName = breakdownIndex(s.ScoreDeal(features.OpenDealVector{}).Breakdown)
	assert.NotContains(t, byName, "custom:plan_tier")
}

func TestScoreDeal_PersonaAndIndustryFit(t *testing.T) {
	w := DefaultWeights()
	w.Personas[mining.NewPersonaKey(features.SeniorityVP, features.DeptEngineering)] = 7
	w.Industries["SaaS"] = 9
	s := NewScorer(w, Config{})

	v := features.OpenDealVector{
		Account: features.AccountFeatures{Industry: "SaaS"},
		Contacts: []features.ContactFeature{
			{Seniority: features.SeniorityVP, Department: features.DeptEngineering},
			{Seniority: features.SeniorityManager, Department: features.DeptHR},
		},
	}
	byName := breakdownIndex(s.ScoreDeal(v).Breakdown)
	assert.Equal(t, 7, byName["persona_fit"].Points)
	assert.Equal(t, 9, byName["industry_fit"].Points)
}

func TestScoreDeal_Deterministic(t *testing.T) {
	s := NewScorer(DefaultWeights(), Config{})
	v := strongOpenDeal()
	first := s.ScoreDeal(v)
	second := s.ScoreDeal(v)
	assert.Equal(t, first, second)
}

func TestScoreContact_DealQualityFoldIn(t *testing.T) {
	s := NewScorer(DefaultWeights(), Config{})
	v := features.OpenContactVector{
		Title:            "VP of Engineering",
		Seniority:        features.SeniorityVP,
		Department:       features.DeptEngineering,
		BuyingRole:       features.RoleChampion,
		EmailsExchanged:  10,
		MeetingsAttended: 2,
		DaysSinceContact: 3,
	}

	low := s.ScoreContact(v, 10)
	high := s.ScoreContact(v, 95)
	assert.Greater(t, high.Score, low.Score)

	byName := breakdownIndex(high.Breakdown)
	assert.Equal(t, 9, byName["deal_quality"].Points)
	assert.Equal(t, 10, byName["seniority_level"].MaxWeight)
	assert.Equal(t, 8, byName["seniority_level"].Points)
	assert.Equal(t, 10, byName["buying_role"].Points)
	assert.Equal(t, 2, byName["title_known"].Points)
	assert.Equal(t, 5, byName["recent_engagement"].Points)
}

func TestGradeFor_Cutoffs(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "A"}, {85, "A"}, {84, "B"}, {70, "B"},
		{69, "C"}, {50, "C"}, {49, "D"}, {30, "D"},
		{29, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func breakdownIndex(entries []BreakdownEntry) map[string]BreakdownEntry {
	out := make(map[string]BreakdownEntry, len(entries))
	for _, e := range entries {
		out[e.Dimension] = e
	}
	return out
}

//Personal.AI order the ending
