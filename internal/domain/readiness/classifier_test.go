package readiness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DecisionPolicy(t *testing.T) {
	tests := []struct {
		name  string
		stats CorpusStats
		want  Mode
	}{
		{
			name:  "below minimum closed deals aborts",
			stats: CorpusStats{TotalClosed: 29, RoleAnnotatedDeals: 29, EnrichmentPresent: true},
			want:  ModeAbort,
		},
		{
			name:  "zero deals aborts",
			stats: CorpusStats{},
			want:  ModeAbort,
		},
		{
			name:  "enrichment with large role corpus selects regression",
			stats: CorpusStats{TotalClosed: 250, RoleAnnotatedDeals: 200, EnrichmentPresent: true},
			want:  ModeRegression,
		},
		{
			name:  "enrichment with medium role corpus selects point based",
			stats: CorpusStats{TotalClosed: 150, RoleAnnotatedDeals: 120, EnrichmentPresent: true},
			want:  ModePointBased,
		},
		{
			name:  "large corpus without enrichment stays descriptive",
			stats: CorpusStats{TotalClosed: 500, RoleAnnotatedDeals: 400},
			want:  ModeDescriptive,
		},
		{
			name:  "forty deals all role annotated selects descriptive",
			stats: CorpusStats{TotalClosed: 40, Won: 25, Lost: 15, RoleAnnotatedDeals: 40},
			want:  ModeDescriptive,
		},
		{
			name:  "enough closed but too few role annotated aborts",
			stats: CorpusStats{TotalClosed: 80, RoleAnnotatedDeals: 19},
			want:  ModeAbort,
		},
		{
			name:  "role threshold boundary selects descriptive",
			stats: CorpusStats{TotalClosed: 30, RoleAnnotatedDeals: 20},
			want:  ModeDescriptive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.stats)
			assert.Equal(t, tt.want, d.Mode)
			require.NotEmpty(t, d.Reasons)
			assert.Equal(t, tt.stats, d.Stats)
		})
	}
}

func TestClassify_AbortAlwaysBelowThirty(t *testing.T) {
	for n := 0; n < 30; n++ {
		d := Classify(CorpusStats{TotalClosed: n, RoleAnnotatedDeals: n, EnrichmentPresent: true})
		assert.Equal(t, ModeAbort, d.Mode, "totalClosed=%d", n)
	}
}

func TestMode_Implemented(t *testing.T) {
	assert.True(t, ModeDescriptive.Implemented())
	assert.False(t, ModePointBased.Implemented())
	assert.False(t, ModeRegression.Implemented())
	assert.False(t, ModeAbort.Implemented())
}

//Personal.AI order the ending
