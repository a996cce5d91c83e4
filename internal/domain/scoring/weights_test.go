package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/mining"
)

func TestSynthesize_PersonaWeights(t *testing.T) {
	personas := []mining.PersonaPattern{
		{Key: "vp:engineering", Lift: 1.8},
		{Key: "c_level:finance", Lift: 10},  // capped
		{Key: "manager:sales", Lift: 0.4},   // rounds to 1
		{Key: "director:legal", Lift: 0},    // zero stays zero
	}

	w := Synthesize(personas, mining.CompanyProfile{})
	assert.Equal(t, MethodDescriptiveHeuristic, w.Method)
	assert.NotEmpty(t, w.Caveat)
	assert.Equal(t, 5, w.Personas["vp:engineering"]) // round(1.8*3)
	assert.Equal(t, 10, w.Personas["c_level:finance"])
	assert.Equal(t, 1, w.Personas["manager:sales"])
	assert.Equal(t, 0, w.Personas["director:legal"])
}

func TestSynthesize_CustomFieldNormalization(t *testing.T) {
	company := mining.CompanyProfile{
		CustomFields: map[string]map[string]mining.SegmentStat{
			"plan_tier": {
				"enterprise": {WinRate: 0.8},
				"starter":    {WinRate: 0.4},
			},
			"dead_field": {
				"a": {WinRate: 0},
				"b": {WinRate: 0},
			},
		},
	}

	w := Synthesize(nil, company)
	require.Contains(t, w.CustomFields, "plan_tier")
	assert.Equal(t, 10, w.CustomFields["plan_tier"]["enterprise"])
	assert.Equal(t, 5, w.CustomFields["plan_tier"]["starter"])

	// A field whose max observed win rate is zero is skipped entirely.
	assert.NotContains(t, w.CustomFields, "dead_field")
}

func TestSynthesize_IndustryNormalization(t *testing.T) {
	company := mining.CompanyProfile{
		Industries: map[string]mining.SegmentStat{
			"Fintech":   {WinRate: 0.75},
			"Logistics": {WinRate: 0.25},
		},
	}

	w := Synthesize(nil, company)
	assert.Equal(t, 10, w.Industries["Fintech"])
	assert.Equal(t, 3, w.Industries["Logistics"]) // round(0.25/0.75*10)
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, MethodDefault, w.Method)
	assert.Empty(t, w.Personas)
	assert.Empty(t, w.CustomFields)
	assert.Empty(t, w.Industries)
}

//Personal.AI order the ending
