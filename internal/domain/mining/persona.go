// Package mining implements the descriptive pattern miners that run over a
// workspace's closed-deal feature matrix: persona clusters, buying-committee
// pair combos, and company-level segment aggregations.  Everything here is
// pure computation over values passed in; nothing touches a store.
package mining

import (
	"fmt"
	"sort"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Persona pattern mining
// ─────────────────────────────────────────────────────────────────────────────

// significantDealCount is the minimum distinct-deal support for a persona
// cluster to be considered significant downstream.
const significantDealCount = 5

// liftCapNoLosses is the lift assigned to a cluster that appears in won deals
// but never in lost ones, where the ratio is undefined.
const liftCapNoLosses = 10.0

// PersonaKey identifies a (seniority, department) cluster, rendered as
// "seniority:department".
type PersonaKey string

// NewPersonaKey builds the canonical cluster key.
func NewPersonaKey(seniority, department string) PersonaKey {
	if seniority == "" {
		seniority = features.SeniorityUnknown
	}
	if department == "" {
		department = features.DeptUnknown
	}
	return PersonaKey(fmt.Sprintf("%s:%s", seniority, department))
}

// PersonaPattern is one discovered (seniority × department) cluster with its
// win/loss frequencies across the closed corpus.
type PersonaPattern struct {
	Key        PersonaKey `json:"key"`
	Seniority  string     `json:"seniority"`
	Department string     `json:"department"`

	WonDeals  int `json:"won_deals"`
	LostDeals int `json:"lost_deals"`
	DealCount int `json:"deal_count"`

	FreqWon  float64 `json:"freq_won"`
	FreqLost float64 `json:"freq_lost"`
	Lift     float64 `json:"lift"`

	AvgAmountWon  float64 `json:"avg_amount_won"`
	AvgAmountLost float64 `json:"avg_amount_lost"`

	Confidence float64 `json:"confidence"`
}

// Significant reports whether the cluster has enough distinct-deal support to
// feed downstream weight synthesis.
func (p PersonaPattern) Significant() bool { return p.DealCount >= significantDealCount }

type personaAccumulator struct {
	seniority  string
	department string
	wonIDs     map[common.ID]struct{}
	lostIDs    map[common.ID]struct{}
	wonAmount  float64
	lostAmount float64
}

// MinePersonas clusters every contact occurrence across the closed corpus by
// (seniority, department) and computes per-cluster win/loss frequencies and
// lift.  Deal membership is tracked as distinct deal-id sets so a deal with
// three engineers still counts once for the engineering clusters.  The result
// is sorted by lift descending; callers filter with Significant before using
// clusters downstream.
func MinePersonas(corpus []features.ClosedDealVector) []PersonaPattern {
	totalWon, totalLost := 0, 0
	clusters := make(map[PersonaKey]*personaAccumulator)

	for _, deal := range corpus {
		if deal.Won() {
			totalWon++
		} else {
			totalLost++
		}
		for _, c := range deal.Contacts {
			key := NewPersonaKey(c.Seniority, c.Department)
			acc, ok := clusters[key]
			if !ok {
				acc = &personaAccumulator{
					seniority:  c.Seniority,
					department: c.Department,
					wonIDs:     make(map[common.ID]struct{}),
					lostIDs:    make(map[common.ID]struct{}),
				}
				clusters[key] = acc
			}
			if deal.Won() {
				if _, seen := acc.wonIDs[deal.DealID]; !seen {
					acc.wonIDs[deal.DealID] = struct{}{}
					acc.wonAmount += deal.Amount
				}
			} else {
				if _, seen := acc.lostIDs[deal.DealID]; !seen {
					acc.lostIDs[deal.DealID] = struct{}{}
					acc.lostAmount += deal.Amount
				}
			}
		}
	}

	patterns := make([]PersonaPattern, 0, len(clusters))
	for key, acc := range clusters {
		won, lost := len(acc.wonIDs), len(acc.lostIDs)
		p := PersonaPattern{
			Key:        key,
			Seniority:  acc.seniority,
			Department: acc.department,
			WonDeals:   won,
			LostDeals:  lost,
			DealCount:  won + lost,
			Confidence: confidenceTier(won + lost),
		}
		if totalWon > 0 {
			p.FreqWon = float64(won) / float64(totalWon)
		}
		if totalLost > 0 {
			p.FreqLost = float64(lost) / float64(totalLost)
		}
		p.Lift = personaLift(p.FreqWon, p.FreqLost)
		if won > 0 {
			p.AvgAmountWon = acc.wonAmount / float64(won)
		}
		if lost > 0 {
			p.AvgAmountLost = acc.lostAmount / float64(lost)
		}
		patterns = append(patterns, p)
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Lift != patterns[j].Lift {
			return patterns[i].Lift > patterns[j].Lift
		}
		return patterns[i].Key < patterns[j].Key
	})
	return patterns
}

// SignificantPersonas filters a mined pattern list down to the clusters with
// enough support for downstream use, preserving order.
func SignificantPersonas(patterns []PersonaPattern) []PersonaPattern {
	out := make([]PersonaPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Significant() {
			out = append(out, p)
		}
	}
	return out
}

// personaLift is freqWon/freqLost with the undefined cases pinned: a cluster
// never seen in losses but present in wins gets the cap, one seen in neither
// gets zero.
func personaLift(freqWon, freqLost float64) float64 {
	if freqLost == 0 {
		if freqWon > 0 {
			return liftCapNoLosses
		}
		return 0
	}
	return freqWon / freqLost
}

// confidenceTier maps distinct-deal sample size to a fixed confidence value.
// It is independent of lift magnitude.
func confidenceTier(n int) float64 {
	switch {
	case n >= 30:
		return 0.9
	case n >= 15:
		return 0.7
	case n >= 5:
		return 0.5
	default:
		return 0.3
	}
}

//Personal.AI order the ending
