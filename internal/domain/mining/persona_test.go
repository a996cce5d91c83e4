package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func closedDeal(outcome features.Outcome, amount float64, contacts ...features.ContactFeature) features.ClosedDealVector {
	return features.ClosedDealVector{
		DealID:   common.NewID(),
		Outcome:  outcome,
		Amount:   amount,
		Contacts: contacts,
	}
}

func contact(seniority, department string) features.ContactFeature {
	return features.ContactFeature{
		ContactID:  common.NewID(),
		Seniority:  seniority,
		Department: department,
	}
}

func TestMinePersonas_FrequenciesAndLift(t *testing.T) {
	// 25 won / 15 lost; "vp:engineering" appears on 6 won and 2 lost deals.
	var corpus []features.ClosedDealVector
	for i := 0; i < 25; i++ {
		var cs []features.ContactFeature
		if i < 6 {
			cs = append(cs, contact(features.SeniorityVP, features.DeptEngineering))
		}
		corpus = append(corpus, closedDeal(features.OutcomeWon, 50000, cs...))
	}
	for i := 0; i < 15; i++ {
		var cs []features.ContactFeature
		if i < 2 {
			cs = append(cs, contact(features.SeniorityVP, features.DeptEngineering))
		}
		corpus = append(corpus, closedDeal(features.OutcomeLost, 30000, cs...))
	}

	patterns := MinePersonas(corpus)
	p := findPersona(t, patterns, NewPersonaKey(features.SeniorityVP, features.DeptEngineering))

	assert.Equal(t, 6, p.WonDeals)
	assert.Equal(t, 2, p.LostDeals)
	assert.Equal(t, 8, p.DealCount)
	assert.InDelta(t, 0.24, p.FreqWon, 1e-9)
	assert.InDelta(t, 0.1333, p.FreqLost, 1e-3)
	assert.InDelta(t, 1.8, p.Lift, 1e-9)
	assert.Equal(t, 0.5, p.Confidence)
	assert.InDelta(t, 50000, p.AvgAmountWon, 1e-9)
	assert.InDelta(t, 30000, p.AvgAmountLost, 1e-9)
	assert.True(t, p.Significant())
}

func TestMinePersonas_LiftSpecialCases(t *testing.T) {
	assert.Equal(t, 10.0, personaLift(0.3, 0))
	assert.Equal(t, 0.0, personaLift(0, 0))
	assert.InDelta(t, 2.0, personaLift(0.4, 0.2), 1e-9)
}

func TestMinePersonas_DistinctDealCounting(t *testing.T) {
	// One won deal with three engineering contacts counts the cluster once.
	deal := closedDeal(features.OutcomeWon, 10000,
		contact(features.SeniorityIC, features.DeptEngineering),
		contact(features.SeniorityIC, features.DeptEngineering),
		contact(features.SeniorityIC, features.DeptEngineering),
	)
	patterns := MinePersonas([]features.ClosedDealVector{deal, closedDeal(features.OutcomeLost, 0)})

	p := findPersona(t, patterns, NewPersonaKey(features.SeniorityIC, features.DeptEngineering))
	assert.Equal(t, 1, p.WonDeals)
	assert.Equal(t, 1, p.DealCount)
	assert.InDelta(t, 10000, p.AvgAmountWon, 1e-9)
}

func TestMinePersonas_SortedByLiftDescending(t *testing.T) {
	var corpus []features.ClosedDealVector
	for i := 0; i < 10; i++ {
		corpus = append(corpus, closedDeal(features.OutcomeWon, 1000,
			contact(features.SeniorityCLevel, features.DeptFinance)))
	}
	for i := 0; i < 10; i++ {
		corpus = append(corpus, closedDeal(features.OutcomeLost, 1000,
			contact(features.SeniorityManager, features.DeptSales)))
	}

	patterns := MinePersonas(corpus)
	require.GreaterOrEqual(t, len(patterns), 2)
	for i := 1; i < len(patterns); i++ {
		assert.GreaterOrEqual(t, patterns[i-1].Lift, patterns[i].Lift)
	}
}

func TestConfidenceTier(t *testing.T) {
	assert.Equal(t, 0.9, confidenceTier(30))
	assert.Equal(t, 0.7, confidenceTier(15))
	assert.Equal(t, 0.7, confidenceTier(29))
	assert.Equal(t, 0.5, confidenceTier(5))
	assert.Equal(t, 0.5, confidenceTier(14))
	assert.Equal(t, 0.3, confidenceTier(4))
	assert.Equal(t, 0.3, confidenceTier(0))
}

func TestSignificantPersonas_FiltersLowSupport(t *testing.T) {
	patterns := []PersonaPattern{
		{Key: "a", DealCount: 5},
		{Key: "b", DealCount: 4},
		{Key: "c", DealCount: 40},
	}
	sig := SignificantPersonas(patterns)
	require.Len(t, sig, 2)
	assert.Equal(t, PersonaKey("a"), sig[0].Key)
	assert.Equal(t, PersonaKey("c"), sig[1].Key)
}

func findPersona(t *testing.T, patterns []PersonaPattern, key PersonaKey) PersonaPattern {
	t.Helper()
	for _, p := range patterns {
		if p.Key == key {
			return p
		}
	}
	t.Fatalf("persona %s not found", key)
	return PersonaPattern{}
}

//Personal.AI order the ending
