package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func companyDeal(outcome features.Outcome, industry string, employees int, source string, fields common.FieldMap) features.ClosedDealVector {
	return features.ClosedDealVector{
		DealID:  common.NewID(),
		Outcome: outcome,
		Amount:  10000,
		Account: features.AccountFeatures{Industry: industry, EmployeeCount: employees},
		LeadSource: source,
		DealFields: fields,
	}
}

func TestSizeBucketFor(t *testing.T) {
	assert.Equal(t, SizeBucket1To50, SizeBucketFor(1))
	assert.Equal(t, SizeBucket1To50, SizeBucketFor(50))
	assert.Equal(t, SizeBucket51To200, SizeBucketFor(51))
	assert.Equal(t, SizeBucket201To1000, SizeBucketFor(201))
	assert.Equal(t, SizeBucket1001To5000, SizeBucketFor(1001))
	assert.Equal(t, SizeBucket5000Plus, SizeBucketFor(5001))
}

func TestMineCompanyProfile_IndustryAndBuckets(t *testing.T) {
	var corpus []features.ClosedDealVector
	// SaaS: 6 deals, 5 won.  Retail: 4 deals, 1 won.  Media: only 2 (dropped).
	for i := 0; i < 5; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeWon, "SaaS", 120, "referral", nil))
	}
	corpus = append(corpus, companyDeal(features.OutcomeLost, "SaaS", 120, "referral", nil))
	corpus = append(corpus, companyDeal(features.OutcomeWon, "Retail", 3000, "outbound", nil))
	for i := 0; i < 3; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeLost, "Retail", 3000, "outbound", nil))
	}
	corpus = append(corpus, companyDeal(features.OutcomeWon, "Media", 40, "paid", nil))
	corpus = append(corpus, companyDeal(features.OutcomeLost, "Media", 40, "paid", nil))

	p := MineCompanyProfile(corpus, nil)

	assert.InDelta(t, 7.0/12.0, p.BaselineWinRate, 1e-9)

	require.Contains(t, p.Industries, "SaaS")
	require.Contains(t, p.Industries, "Retail")
	assert.NotContains(t, p.Industries, "Media") // below minimum group size
	assert.InDelta(t, 5.0/6.0, p.Industries["SaaS"].WinRate, 1e-9)
	assert.Equal(t, 6, p.Industries["SaaS"].Deals)

	require.Contains(t, p.SizeBuckets, SizeBucket51To200)
	require.Contains(t, p.SizeBuckets, SizeBucket1001To5000)
	assert.InDelta(t, 0.25, p.SizeBuckets[SizeBucket1001To5000].WinRate, 1e-9)
}

func TestMineCompanyProfile_CustomFieldRelevanceFloor(t *testing.T) {
	fieldMap := func(v string) common.FieldMap {
		return common.FieldMap{"plan_tier": common.StringValue(v)}
	}
	var corpus []features.ClosedDealVector
	for i := 0; i < 4; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeWon, "SaaS", 10, "", fieldMap("enterprise")))
	}
	for i := 0; i < 3; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeLost, "SaaS", 10, "", fieldMap("starter")))
	}

	relevant := MineCompanyProfile(corpus, []RelevantField{{Key: "plan_tier", EntityType: "deal", Relevance: 75}})
	require.Contains(t, relevant.CustomFields, "plan_tier")
	assert.InDelta(t, 1.0, relevant.CustomFields["plan_tier"]["enterprise"].WinRate, 1e-9)
	assert.InDelta(t, 0.0, relevant.CustomFields["plan_tier"]["starter"].WinRate, 1e-9)

	irrelevant := MineCompanyProfile(corpus, []RelevantField{{Key: "plan_tier", EntityType: "deal", Relevance: 59}})
	assert.Empty(t, irrelevant.CustomFields)
}

func TestMineCompanyProfile_FunnelMinimumLeads(t *testing.T) {
	var corpus []features.ClosedDealVector
	for i := 0; i < 5; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeWon, "", 0, "inbound", nil))
	}
	for i := 0; i < 4; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeLost, "", 0, "cold_call", nil))
	}

	p := MineCompanyProfile(corpus, nil)
	require.Len(t, p.Funnel, 1)
	assert.Equal(t, "inbound", p.Funnel[0].Source)
	assert.Equal(t, 5, p.Funnel[0].Leads)
	assert.InDelta(t, 1.0, p.Funnel[0].WinRate, 1e-9)
}

func TestMineCompanyProfile_SweetSpots(t *testing.T) {
	var corpus []features.ClosedDealVector
	// Fintech: 5/5 won — well above 1.2x baseline.
	for i := 0; i < 5; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeWon, "Fintech", 10, "", nil))
	}
	// Logistics: 1/5 won — below baseline.
	corpus = append(corpus, companyDeal(features.OutcomeWon, "Logistics", 10, "", nil))
	for i := 0; i < 4; i++ {
		corpus = append(corpus, companyDeal(features.OutcomeLost, "Logistics", 10, "", nil))
	}

	p := MineCompanyProfile(corpus, nil)
	require.Len(t, p.SweetSpots, 1)
	spot := p.SweetSpots[0]
	assert.Equal(t, "industry", spot.Kind)
	assert.Equal(t, "Fintech", spot.Segment)
	assert.InDelta(t, 1.0/p.BaselineWinRate, spot.Lift, 1e-9)
	assert.Equal(t, 5, spot.Deals)
}

func TestMineCompanyProfile_EmptyCorpus(t *testing.T) {
	p := MineCompanyProfile(nil, nil)
	assert.Zero(t, p.BaselineWinRate)
	assert.Empty(t, p.Industries)
	assert.Empty(t, p.SweetSpots)
}

//Personal.AI order the ending
