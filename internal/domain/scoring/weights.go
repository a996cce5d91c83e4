package scoring

import (
	"math"

	"github.com/dealsense/icp-engine/internal/domain/mining"
)

// ─────────────────────────────────────────────────────────────────────────────
// Scoring weight synthesis
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MethodDescriptiveHeuristic tags weights derived by lift normalization.
	MethodDescriptiveHeuristic = "descriptive_heuristic"
	// MethodDefault tags the built-in weights used when no profile exists.
	MethodDefault = "default"

	// descriptiveCaveat is attached verbatim to every synthesized weight set.
	descriptiveCaveat = "weights derived by descriptive lift normalization; heuristic, not regression-validated"

	// maxDimensionWeight caps every synthesized weight.
	maxDimensionWeight = 10
	// personaLiftFactor scales persona lift into points before capping.
	personaLiftFactor = 3
)

// Weights is the full synthesized weight set a scoring run applies.
type Weights struct {
	Method string `json:"method"`

	// Personas maps a persona cluster key to its point weight (0–10).
	Personas map[mining.PersonaKey]int `json:"personas"`

	// CustomFields maps field key → value label → point weight (0–10).
	CustomFields map[string]map[string]int `json:"custom_fields"`

	// Industries maps industry name to its point weight (0–10).
	Industries map[string]int `json:"industries"`

	Caveat string `json:"caveat"`
}

// DefaultWeights is the weight set used when a workspace has no discovery
// profile yet: static dimensions only, no learned segments.
func DefaultWeights() Weights {
	return Weights{
		Method:       MethodDefault,
		Personas:     map[mining.PersonaKey]int{},
		CustomFields: map[string]map[string]int{},
		Industries:   map[string]int{},
	}
}

// Synthesize converts mined patterns into point weights by pure
// normalization: persona weight is lift scaled and capped, custom-field and
// industry weights are the segment's win rate normalized against that
// table's maximum observed win rate.  Fields whose maximum win rate is zero
// are skipped entirely rather than divided by.
func Synthesize(personas []mining.PersonaPattern, company mining.CompanyProfile) Weights {
	w := Weights{
		Method:       MethodDescriptiveHeuristic,
		Personas:     make(map[mining.PersonaKey]int, len(personas)),
		CustomFields: make(map[string]map[string]int, len(company.CustomFields)),
		Industries:   make(map[string]int, len(company.Industries)),
		Caveat:       descriptiveCaveat,
	}

	for _, p := range personas {
		weight := int(math.Round(p.Lift * personaLiftFactor))
		if weight > maxDimensionWeight {
			weight = maxDimensionWeight
		}
		if weight < 0 {
			weight = 0
		}
		w.Personas[p.Key] = weight
	}

	for field, segments := range company.CustomFields {
		maxRate := 0.0
		for _, stat := range segments {
			if stat.WinRate > maxRate {
				maxRate = stat.WinRate
			}
		}
		if maxRate == 0 {
			continue
		}
		values := make(map[string]int, len(segments))
		for label, stat := range segments {
			values[label] = normalizeWeight(stat.WinRate, maxRate)
		}
		w.CustomFields[field] = values
	}

	maxIndustryRate := 0.0
	for _, stat := range company.Industries {
		if stat.WinRate > maxIndustryRate {
			maxIndustryRate = stat.WinRate
		}
	}
	if maxIndustryRate > 0 {
		for industry, stat := range company.Industries {
			w.Industries[industry] = normalizeWeight(stat.WinRate, maxIndustryRate)
		}
	}

	return w
}

func normalizeWeight(rate, maxRate float64) int {
	return int(math.Round(rate / maxRate * maxDimensionWeight))
}

//Personal.AI order the ending
