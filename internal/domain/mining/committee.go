package mining

import (
	"sort"

	"github.com/dealsense/icp-engine/internal/domain/features"
)

// ─────────────────────────────────────────────────────────────────────────────
// Committee combo mining
// ─────────────────────────────────────────────────────────────────────────────

const (
	// comboMinSupport is the minimum total deal support for a pair to be kept.
	comboMinSupport = 5
	// comboLimit bounds the output regardless of corpus size.
	comboLimit = 10
)

// CommitteeCombo is an unordered pair of significant persona keys that
// co-occurred on closed deals, with its win statistics relative to the
// corpus baseline.
type CommitteeCombo struct {
	PersonaA PersonaKey `json:"persona_a"`
	PersonaB PersonaKey `json:"persona_b"`

	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Support int `json:"support"`

	WinRate   float64 `json:"win_rate"`
	AvgAmount float64 `json:"avg_amount"`
	Lift      float64 `json:"lift"`
}

type comboKey struct{ a, b PersonaKey }

type comboAccumulator struct {
	won, lost int
	amount    float64
}

// MineCommittees enumerates, for every closed deal, all unordered pairs of
// significant personas present on that deal and aggregates win/loss counts
// per pair.  Pairs below the minimum support are discarded; the survivors are
// ranked by win rate descending with ties broken by support descending, and
// only the top entries are returned.
func MineCommittees(corpus []features.ClosedDealVector, significant []PersonaPattern) []CommitteeCombo {
	if len(corpus) == 0 || len(significant) < 2 {
		return nil
	}

	keep := make(map[PersonaKey]struct{}, len(significant))
	for _, p := range significant {
		keep[p.Key] = struct{}{}
	}

	totalWon := 0
	pairs := make(map[comboKey]*comboAccumulator)
	for _, deal := range corpus {
		if deal.Won() {
			totalWon++
		}
		present := dealPersonaSet(deal, keep)
		if len(present) < 2 {
			continue
		}
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				key := comboKey{a: present[i], b: present[j]}
				acc, ok := pairs[key]
				if !ok {
					acc = &comboAccumulator{}
					pairs[key] = acc
				}
				if deal.Won() {
					acc.won++
				} else {
					acc.lost++
				}
				acc.amount += deal.Amount
			}
		}
	}

	baseline := float64(totalWon) / float64(len(corpus))

	combos := make([]CommitteeCombo, 0, len(pairs))
	for key, acc := range pairs {
		support := acc.won + acc.lost
		if support < comboMinSupport {
			continue
		}
		c := CommitteeCombo{
			PersonaA: key.a,
			PersonaB: key.b,
			Won:      acc.won,
			Lost:     acc.lost,
			Support:  support,
			WinRate:  float64(acc.won) / float64(support),
		}
		c.AvgAmount = acc.amount / float64(support)
		if baseline > 0 {
			c.Lift = c.WinRate / baseline
		}
		combos = append(combos, c)
	}

	sort.Slice(combos, func(i, j int) bool {
		if combos[i].WinRate != combos[j].WinRate {
			return combos[i].WinRate > combos[j].WinRate
		}
		if combos[i].Support != combos[j].Support {
			return combos[i].Support > combos[j].Support
		}
		if combos[i].PersonaA != combos[j].PersonaA {
			return combos[i].PersonaA < combos[j].PersonaA
		}
		return combos[i].PersonaB < combos[j].PersonaB
	})
	if len(combos) > comboLimit {
		combos = combos[:comboLimit]
	}
	return combos
}

// dealPersonaSet returns the deal's distinct significant persona keys in
// sorted order, so pair enumeration always yields (a < b).
func dealPersonaSet(deal features.ClosedDealVector, keep map[PersonaKey]struct{}) []PersonaKey {
	set := make(map[PersonaKey]struct{}, len(deal.Contacts))
	for _, c := range deal.Contacts {
		key := NewPersonaKey(c.Seniority, c.Department)
		if _, ok := keep[key]; ok {
			set[key] = struct{}{}
		}
	}
	out := make([]PersonaKey, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

//Personal.AI order the ending
