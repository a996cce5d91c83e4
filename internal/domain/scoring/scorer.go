package scoring

import (
	"math"
	"sort"

	"github.com/dealsense/icp-engine/internal/domain/features"
)

// ─────────────────────────────────────────────────────────────────────────────
// Point-based scorer
// ─────────────────────────────────────────────────────────────────────────────

// Config holds the tunable penalty magnitudes.  Zero values are replaced by
// the defaults.
type Config struct {
	InactivityPenaltyPerWeek int
	NoCallsLateStagePenalty  int
}

const (
	defaultInactivityPenaltyPerWeek = 2
	defaultNoCallsLateStagePenalty  = 5
)

func (c Config) withDefaults() Config {
	if c.InactivityPenaltyPerWeek <= 0 {
		c.InactivityPenaltyPerWeek = defaultInactivityPenaltyPerWeek
	}
	if c.NoCallsLateStagePenalty <= 0 {
		c.NoCallsLateStagePenalty = defaultNoCallsLateStagePenalty
	}
	return c
}

// Result is one entity's computed score before persistence.
type Result struct {
	Score     int
	Grade     string
	Breakdown []BreakdownEntry
}

// Scorer applies a weight set to open records.  It is stateless across calls
// and safe for concurrent use.
type Scorer struct {
	weights Weights
	cfg     Config
}

// NewScorer builds a scorer over the given weights.
func NewScorer(weights Weights, cfg Config) *Scorer {
	return &Scorer{weights: weights, cfg: cfg.withDefaults()}
}

// ScoreDeal evaluates every applicable deal dimension plus one dynamic
// dimension per weighted custom field the record carries a value for, then
// normalizes earned points against the evaluated dimensions' absolute
// maximums.
func (s *Scorer) ScoreDeal(v features.OpenDealVector) Result {
	var entries []BreakdownEntry
	for _, dim := range dealDimensions {
		points, raw, ok := dim.eval(s, v)
		if !ok {
			continue
		}
		entries = append(entries, BreakdownEntry{
			Dimension: dim.name,
			Raw:       raw,
			Points:    points,
			MaxWeight: dim.max,
		})
	}
	entries = append(entries, s.customFieldEntries(v)...)
	return finalize(entries)
}

// ScoreContact evaluates the contact dimensions.  dealScore is the owning
// deal's total from the same run; contact scoring therefore runs strictly
// after the deal phase.
func (s *Scorer) ScoreContact(v features.OpenContactVector, dealScore int) Result {
	var entries []BreakdownEntry
	for _, dim := range contactDimensions {
		points, raw, ok := dim.eval(s, v, dealScore)
		if !ok {
			continue
		}
		entries = append(entries, BreakdownEntry{
			Dimension: dim.name,
			Raw:       raw,
			Points:    points,
			MaxWeight: dim.max,
		})
	}
	return finalize(entries)
}

// customFieldEntries appends one breakdown entry per synthesized custom field
// the deal actually has a value for.  The dimension's maximum is that field's
// largest synthesized weight, so a mediocre value still counts against the
// field's full potential.
func (s *Scorer) customFieldEntries(v features.OpenDealVector) []BreakdownEntry {
	if len(s.weights.CustomFields) == 0 {
		return nil
	}
	fields := make([]string, 0, len(s.weights.CustomFields))
	for field := range s.weights.CustomFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var entries []BreakdownEntry
	for _, field := range fields {
		values := s.weights.CustomFields[field]
		fv, ok := v.FieldLookup(field)
		if !ok {
			continue
		}
		maxWeight := 0
		for _, w := range values {
			if w > maxWeight {
				maxWeight = w
			}
		}
		if maxWeight == 0 {
			continue
		}
		entries = append(entries, BreakdownEntry{
			Dimension: "custom:" + field,
			Raw:       fv,
			Points:    capPoints(values[fv.Label()], maxWeight),
			MaxWeight: maxWeight,
		})
	}
	return entries
}

// finalize normalizes earned points to a 0–100 total over the evaluated
// dimensions' absolute maximum weights and attaches the letter grade.
func finalize(entries []BreakdownEntry) Result {
	earned, possible := 0, 0
	for _, e := range entries {
		earned += e.Points
		if e.MaxWeight < 0 {
			possible += -e.MaxWeight
		} else {
			possible += e.MaxWeight
		}
	}

	score := 0
	if possible > 0 {
		score = int(math.Round(100 * float64(earned) / float64(possible)))
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{Score: score, Grade: GradeFor(score), Breakdown: entries}
}

//Personal.AI order the ending
