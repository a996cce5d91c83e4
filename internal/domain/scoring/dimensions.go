package scoring

import (
	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Scoring dimension tables
// ─────────────────────────────────────────────────────────────────────────────

// StageOrder is the fixed pipeline stage ordering used by stage-position
// dimensions.  Unknown stages evaluate as position zero.
var StageOrder = []string{
	"prospecting",
	"qualification",
	"evaluation",
	"proposal",
	"negotiation",
	"decision",
}

// lateStageIndex is the first stage position considered "late" for the
// no-calls penalty.
const lateStageIndex = 3

func stagePosition(stage string) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return 0
}

// dealDimension is one named deal scoring rule.  eval returns the awarded
// points, the raw observed value for the breakdown, and whether the dimension
// applied to this record at all; dimensions that do not apply are excluded
// from the normalization denominator.
type dealDimension struct {
	name string
	max  int
	eval func(s *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool)
}

// contactDimension is the contact-side counterpart; dealScore is the owning
// deal's already-computed total.
type contactDimension struct {
	name string
	max  int
	eval func(s *Scorer, v features.OpenContactVector, dealScore int) (int, common.FieldValue, bool)
}

var dealDimensions = []dealDimension{
	{
		// 1 point per $10k, capped.
		name: "amount", max: 10,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			if v.Amount <= 0 {
				return 0, common.FieldValue{}, false
			}
			return capPoints(int(v.Amount/10000), 10), common.NumberValue(v.Amount), true
		},
	},
	{
		name: "probability", max: 10,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Probability/10, 10), common.NumberValue(float64(v.Probability)), true
		},
	},
	{
		// Scales with position in the fixed stage ordering.
		name: "stage_advanced", max: 10,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			pos := stagePosition(v.Stage)
			points := pos * 10 / (len(StageOrder) - 1)
			return points, common.StringValue(v.Stage), true
		},
	},
	{
		// 1 point per 5 logged activities, capped.
		name: "activity_volume", max: 10,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Activity.Total/5, 10), common.NumberValue(float64(v.Activity.Total)), true
		},
	},
	{
		// Recent means within the last two weeks; the per-week inactivity
		// penalty below handles anything staler.
		name: "has_recent_activity", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			recent := v.Activity.Total > 0 && v.DaysSinceActivity <= 14
			points := 0
			if recent {
				points = 5
			}
			return points, common.BoolValue(recent), true
		},
	},
	{
		// Inactivity penalty, configurable points per elapsed week, floored.
		name: "days_since_activity", max: -10,
		eval: func(s *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			weeks := v.DaysSinceActivity / 7
			points := -weeks * s.cfg.InactivityPenaltyPerWeek
			if points < -10 {
				points = -10
			}
			return points, common.NumberValue(float64(v.DaysSinceActivity)), true
		},
	},
	{
		name: "email_engagement", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Activity.Emails/3, 5), common.NumberValue(float64(v.Activity.Emails)), true
		},
	},
	{
		name: "call_engagement", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Activity.Calls/2, 5), common.NumberValue(float64(v.Activity.Calls)), true
		},
	},
	{
		name: "meeting_engagement", max: 6,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Activity.Meetings*2, 6), common.NumberValue(float64(v.Activity.Meetings)), true
		},
	},
	{
		name: "active_days", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			return capPoints(v.Activity.ActiveDays/2, 5), common.NumberValue(float64(v.Activity.ActiveDays)), true
		},
	},
	{
		// Multiple contacts engaged on the deal.
		name: "multi_threaded", max: 8,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			n := len(v.Contacts)
			points := 0
			switch {
			case n >= 3:
				points = 8
			case n == 2:
				points = 4
			}
			return points, common.NumberValue(float64(n)), true
		},
	},
	{
		name: "has_champion", max: 8,
		eval: rolePresenceDim(features.RoleChampion, 8),
	},
	{
		name: "has_economic_buyer", max: 6,
		eval: rolePresenceDim(features.RoleEconomicBuyer, 6),
	},
	{
		name: "has_decision_maker", max: 6,
		eval: rolePresenceDim(features.RoleDecisionMaker, 6),
	},
	{
		// Best synthesized persona weight among the deal's contacts.
		name: "persona_fit", max: 10,
		eval: func(s *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			if len(v.Contacts) == 0 || len(s.weights.Personas) == 0 {
				return 0, common.FieldValue{}, false
			}
			best := 0
			bestKey := ""
			for _, c := range v.Contacts {
				key := mining.NewPersonaKey(c.Seniority, c.Department)
				if w := s.weights.Personas[key]; w > best {
					best = w
					bestKey = string(key)
				}
			}
			return capPoints(best, 10), common.StringValue(bestKey), true
		},
	},
	{
		name: "industry_fit", max: 10,
		eval: func(s *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			if v.Account.Industry == "" || len(s.weights.Industries) == 0 {
				return 0, common.FieldValue{}, false
			}
			return capPoints(s.weights.Industries[v.Account.Industry], 10), common.StringValue(v.Account.Industry), true
		},
	},
	{
		// Mid-market bands score highest under the default heuristic.
		name: "company_size", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			if v.Account.EmployeeCount <= 0 {
				return 0, common.FieldValue{}, false
			}
			bucket := mining.SizeBucketFor(v.Account.EmployeeCount)
			points := 1
			switch bucket {
			case mining.SizeBucket201To1000:
				points = 5
			case mining.SizeBucket51To200, mining.SizeBucket1001To5000:
				points = 3
			}
			return points, common.StringValue(bucket), true
		},
	},
	{
		name: "lead_source_quality", max: 5,
		eval: func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			if v.LeadSource == "" {
				return 0, common.FieldValue{}, false
			}
			points := 1
			switch v.LeadSource {
			case "referral":
				points = 5
			case "inbound", "partner":
				points = 4
			case "outbound":
				points = 2
			}
			return points, common.StringValue(v.LeadSource), true
		},
	},
	{
		// Flat penalty for a late-stage deal with no calls logged.
		name: "no_calls_late_stage", max: -5,
		eval: func(s *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
			late := stagePosition(v.Stage) >= lateStageIndex
			hit := late && v.Activity.Calls == 0
			points := 0
			if hit {
				points = -s.cfg.NoCallsLateStagePenalty
			}
			return points, common.BoolValue(hit), true
		},
	},
}

func rolePresenceDim(role string, points int) func(*Scorer, features.OpenDealVector) (int, common.FieldValue, bool) {
	return func(_ *Scorer, v features.OpenDealVector) (int, common.FieldValue, bool) {
		present := v.RolesPresent[role]
		p := 0
		if present {
			p = points
		}
		return p, common.BoolValue(present), true
	}
}

var contactDimensions = []contactDimension{
	{
		name: "seniority_level", max: 10,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			points := map[string]int{
				features.SeniorityCLevel:   10,
				features.SeniorityVP:       8,
				features.SeniorityDirector: 6,
				features.SeniorityManager:  4,
				features.SenioritySenior:   3,
				features.SeniorityIC:       1,
			}[v.Seniority]
			return points, common.StringValue(v.Seniority), true
		},
	},
	{
		// Strongest synthesized persona weight sharing the contact's department.
		name: "department_fit", max: 8,
		eval: func(s *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			if v.Department == "" || v.Department == features.DeptUnknown || len(s.weights.Personas) == 0 {
				return 0, common.FieldValue{}, false
			}
			best := 0
			for key, w := range s.weights.Personas {
				if personaDepartment(key) == v.Department && w > best {
					best = w
				}
			}
			return capPoints(best, 8), common.StringValue(v.Department), true
		},
	},
	{
		name: "buying_role", max: 10,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			points := map[string]int{
				features.RoleChampion:           10,
				features.RoleEconomicBuyer:      8,
				features.RoleDecisionMaker:      8,
				features.RoleTechnicalEvaluator: 5,
			}[v.BuyingRole]
			return points, common.StringValue(v.BuyingRole), true
		},
	},
	{
		name: "persona_fit", max: 10,
		eval: func(s *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			if len(s.weights.Personas) == 0 {
				return 0, common.FieldValue{}, false
			}
			key := mining.NewPersonaKey(v.Seniority, v.Department)
			return capPoints(s.weights.Personas[key], 10), common.StringValue(string(key)), true
		},
	},
	{
		name: "title_known", max: 2,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			known := v.Title != ""
			points := 0
			if known {
				points = 2
			}
			return points, common.BoolValue(known), true
		},
	},
	{
		name: "engagement_volume", max: 6,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			total := v.EmailsExchanged + v.MeetingsAttended
			return capPoints(total/3, 6), common.NumberValue(float64(total)), true
		},
	},
	{
		name: "recent_engagement", max: 5,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			points := 0
			switch {
			case v.DaysSinceContact <= 7:
				points = 5
			case v.DaysSinceContact <= 14:
				points = 2
			}
			return points, common.NumberValue(float64(v.DaysSinceContact)), true
		},
	},
	{
		name: "email_engagement", max: 4,
		eval: func(_ *Scorer, v features.OpenContactVector, _ int) (int, common.FieldValue, bool) {
			return capPoints(v.EmailsExchanged/2, 4), common.NumberValue(float64(v.EmailsExchanged)), true
		},
	},
	{
		// Folds in the owning deal's already-computed total.
		name: "deal_quality", max: 10,
		eval: func(_ *Scorer, _ features.OpenContactVector, dealScore int) (int, common.FieldValue, bool) {
			return capPoints(dealScore/10, 10), common.NumberValue(float64(dealScore)), true
		},
	},
}

// personaDepartment extracts the department half of a "seniority:department"
// cluster key.
func personaDepartment(key mining.PersonaKey) string {
	s := string(key)
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[i+1:]
		}
	}
	return ""
}

func capPoints(points, max int) int {
	if points > max {
		return max
	}
	if points < 0 {
		return 0
	}
	return points
}

//Personal.AI order the ending
