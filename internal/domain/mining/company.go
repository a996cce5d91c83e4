package mining

import (
	"sort"

	"github.com/dealsense/icp-engine/internal/domain/features"
)

// ─────────────────────────────────────────────────────────────────────────────
// Company pattern mining
// ─────────────────────────────────────────────────────────────────────────────

const (
	// minGroupSize is the minimum deal count for any segment to be reported.
	minGroupSize = 3
	// funnelMinLeads is the minimum per-source deal count for a funnel row.
	funnelMinLeads = 5
	// sweetSpotMinDeals is the minimum support for a sweet-spot segment.
	sweetSpotMinDeals = 5
	// sweetSpotLiftFactor: a segment qualifies when its win rate exceeds this
	// multiple of the corpus baseline.
	sweetSpotLiftFactor = 1.2
	// fieldRelevanceFloor: custom fields below this externally-assigned
	// relevance score are not segmented.
	fieldRelevanceFloor = 60
)

// Company size buckets by employee count.
const (
	SizeBucket1To50      = "1-50"
	SizeBucket51To200    = "51-200"
	SizeBucket201To1000  = "201-1000"
	SizeBucket1001To5000 = "1001-5000"
	SizeBucket5000Plus   = "5000+"
)

// SegmentStat is the win/loss aggregate for one segment of the closed corpus.
type SegmentStat struct {
	Won       int     `json:"won"`
	Lost      int     `json:"lost"`
	Deals     int     `json:"deals"`
	WinRate   float64 `json:"win_rate"`
	AvgAmount float64 `json:"avg_amount"`
}

// FunnelRow is one lead source's conversion summary.
type FunnelRow struct {
	Source  string  `json:"source"`
	Leads   int     `json:"leads"`
	Won     int     `json:"won"`
	Lost    int     `json:"lost"`
	WinRate float64 `json:"win_rate"`
}

// SweetSpot is a segment whose win rate materially exceeds the baseline.
type SweetSpot struct {
	Kind    string  `json:"kind"` // "industry" or "custom_field"
	Field   string  `json:"field,omitempty"`
	Segment string  `json:"segment"`
	WinRate float64 `json:"win_rate"`
	Lift    float64 `json:"lift"`
	Deals   int     `json:"deals"`
}

// RelevantField identifies a custom field the external field-discovery step
// marked worth segmenting, with its workspace-assigned relevance score.
type RelevantField struct {
	Key        string  `json:"key"`
	EntityType string  `json:"entity_type"` // "deal" or "account"
	Relevance  float64 `json:"relevance"`
}

// CompanyProfile bundles the four company-level aggregations plus the
// derived sweet-spot list.
type CompanyProfile struct {
	BaselineWinRate float64                       `json:"baseline_win_rate"`
	Industries      map[string]SegmentStat        `json:"industries"`
	SizeBuckets     map[string]SegmentStat        `json:"size_buckets"`
	CustomFields    map[string]map[string]SegmentStat `json:"custom_fields"`
	Funnel          []FunnelRow                   `json:"funnel"`
	SweetSpots      []SweetSpot                   `json:"sweet_spots"`
}

// MineCompanyProfile runs the four independent aggregations over the closed
// corpus.  Custom-field segmentation is restricted to fields whose
// externally-supplied relevance clears the floor; a nil field list simply
// yields no custom-field segments.
func MineCompanyProfile(corpus []features.ClosedDealVector, fields []RelevantField) CompanyProfile {
	profile := CompanyProfile{
		Industries:   map[string]SegmentStat{},
		SizeBuckets:  map[string]SegmentStat{},
		CustomFields: map[string]map[string]SegmentStat{},
	}
	if len(corpus) == 0 {
		return profile
	}

	totalWon := 0
	industries := newSegmentTable()
	buckets := newSegmentTable()
	funnel := newSegmentTable()
	fieldTables := make(map[string]*segmentTable)
	for _, f := range fields {
		if f.Relevance >= fieldRelevanceFloor {
			fieldTables[f.Key] = newSegmentTable()
		}
	}

	for _, deal := range corpus {
		if deal.Won() {
			totalWon++
		}
		if deal.Account.Industry != "" {
			industries.add(deal.Account.Industry, deal)
		}
		if deal.Account.EmployeeCount > 0 {
			buckets.add(SizeBucketFor(deal.Account.EmployeeCount), deal)
		}
		if deal.LeadSource != "" {
			funnel.add(deal.LeadSource, deal)
		}
		for key, table := range fieldTables {
			if fv, ok := deal.FieldLookup(key); ok && !fv.IsAbsent() {
				table.add(fv.Label(), deal)
			}
		}
	}

	profile.BaselineWinRate = float64(totalWon) / float64(len(corpus))
	profile.Industries = industries.stats(minGroupSize)
	profile.SizeBuckets = buckets.stats(minGroupSize)
	for key, table := range fieldTables {
		if segs := table.stats(minGroupSize); len(segs) > 0 {
			profile.CustomFields[key] = segs
		}
	}
	profile.Funnel = funnelRows(funnel)
	profile.SweetSpots = sweetSpots(profile)
	return profile
}

// SizeBucketFor maps an employee count to its fixed size bucket.
func SizeBucketFor(employees int) string {
	switch {
	case employees <= 50:
		return SizeBucket1To50
	case employees <= 200:
		return SizeBucket51To200
	case employees <= 1000:
		return SizeBucket201To1000
	case employees <= 5000:
		return SizeBucket1001To5000
	default:
		return SizeBucket5000Plus
	}
}

// sweetSpots collects industry and custom-field segments beating the baseline
// by the fixed factor with enough support, sorted by lift descending.
func sweetSpots(profile CompanyProfile) []SweetSpot {
	if profile.BaselineWinRate <= 0 {
		return nil
	}
	threshold := sweetSpotLiftFactor * profile.BaselineWinRate

	var spots []SweetSpot
	for industry, stat := range profile.Industries {
		if stat.Deals >= sweetSpotMinDeals && stat.WinRate > threshold {
			spots = append(spots, SweetSpot{
				Kind:    "industry",
				Segment: industry,
				WinRate: stat.WinRate,
				Lift:    stat.WinRate / profile.BaselineWinRate,
				Deals:   stat.Deals,
			})
		}
	}
	for field, segments := range profile.CustomFields {
		for value, stat := range segments {
			if stat.Deals >= sweetSpotMinDeals && stat.WinRate > threshold {
				spots = append(spots, SweetSpot{
					Kind:    "custom_field",
					Field:   field,
					Segment: value,
					WinRate: stat.WinRate,
					Lift:    stat.WinRate / profile.BaselineWinRate,
					Deals:   stat.Deals,
				})
			}
		}
	}

	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Lift != spots[j].Lift {
			return spots[i].Lift > spots[j].Lift
		}
		if spots[i].Segment != spots[j].Segment {
			return spots[i].Segment < spots[j].Segment
		}
		return spots[i].Field < spots[j].Field
	})
	return spots
}

func funnelRows(table *segmentTable) []FunnelRow {
	rows := make([]FunnelRow, 0, len(table.groups))
	for source, g := range table.groups {
		leads := g.won + g.lost
		if leads < funnelMinLeads {
			continue
		}
		rows = append(rows, FunnelRow{
			Source:  source,
			Leads:   leads,
			Won:     g.won,
			Lost:    g.lost,
			WinRate: float64(g.won) / float64(leads),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WinRate != rows[j].WinRate {
			return rows[i].WinRate > rows[j].WinRate
		}
		return rows[i].Source < rows[j].Source
	})
	return rows
}

// segmentTable accumulates won/lost counters per segment label.
type segmentTable struct {
	groups map[string]*segmentGroup
}

type segmentGroup struct {
	won, lost int
	amount    float64
}

func newSegmentTable() *segmentTable {
	return &segmentTable{groups: map[string]*segmentGroup{}}
}

func (t *segmentTable) add(label string, deal features.ClosedDealVector) {
	g, ok := t.groups[label]
	if !ok {
		g = &segmentGroup{}
		t.groups[label] = g
	}
	if deal.Won() {
		g.won++
	} else {
		g.lost++
	}
	g.amount += deal.Amount
}

func (t *segmentTable) stats(minSize int) map[string]SegmentStat {
	out := make(map[string]SegmentStat, len(t.groups))
	for label, g := range t.groups {
		n := g.won + g.lost
		if n < minSize {
			continue
		}
		out[label] = SegmentStat{
			Won:       g.won,
			Lost:      g.lost,
			Deals:     n,
			WinRate:   float64(g.won) / float64(n),
			AvgAmount: g.amount / float64(n),
		}
	}
	return out
}

//Personal.AI order the ending
