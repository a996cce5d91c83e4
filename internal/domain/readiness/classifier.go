// Package readiness decides which analysis mode is statistically safe for a
// workspace's closed-deal corpus before any feature extraction runs.
package readiness

import (
	"context"
	"fmt"

	"github.com/dealsense/icp-engine/pkg/types/common"
)

// Mode is the analysis mode selected for a discovery run.
type Mode string

const (
	// ModeAbort means the corpus is too small for any analysis.
	ModeAbort Mode = "abort"
	// ModeDescriptive is the heuristic lift-based mode implemented end to end.
	ModeDescriptive Mode = "descriptive"
	// ModePointBased is reserved for a future calibrated scoring mode.
	ModePointBased Mode = "point_based"
	// ModeRegression is reserved for a future statistical inference mode.
	ModeRegression Mode = "regression"
)

// Implemented reports whether the engine can actually execute the mode.
// Reserved modes are selectable by the decision policy but have no pipeline
// behind them yet.
func (m Mode) Implemented() bool { return m == ModeDescriptive }

// CorpusStats are the aggregate counts the classifier decides on.  They come
// from cheap COUNT queries, never from the feature matrix.
type CorpusStats struct {
	TotalClosed        int
	Won                int
	Lost               int
	RoleAnnotatedDeals int // closed deals with at least one contact buying role
	EnrichmentPresent  bool
}

// StatsReader supplies the aggregate corpus counts for a workspace.
type StatsReader interface {
	CorpusStats(ctx context.Context, ws common.WorkspaceID) (CorpusStats, error)
}

// Decision is the classifier's output: the selected mode plus the
// human-readable reasons behind it.  Reasons are surfaced verbatim to the
// caller on abort.
type Decision struct {
	Mode    Mode
	Stats   CorpusStats
	Reasons []string
}

// Thresholds of the decision policy.
const (
	minClosedDeals     = 30
	minRoleDeals       = 20
	pointBasedMinDeals = 100
	regressionMinDeals = 200
)

// Classify applies the decision policy in fixed order.  An abort decision is
// a hard stop for the run; callers must not degrade it into a smaller mode.
func Classify(stats CorpusStats) Decision {
	d := Decision{Stats: stats}

	if stats.TotalClosed < minClosedDeals {
		d.Mode = ModeAbort
		d.Reasons = append(d.Reasons, fmt.Sprintf(
			"only %d closed deals, need at least %d for any analysis", stats.TotalClosed, minClosedDeals))
		return d
	}

	if stats.EnrichmentPresent && stats.RoleAnnotatedDeals >= regressionMinDeals {
		d.Mode = ModeRegression
		d.Reasons = append(d.Reasons, fmt.Sprintf(
			"enrichment present with %d role-annotated deals, regression mode eligible", stats.RoleAnnotatedDeals))
		return d
	}

	if stats.EnrichmentPresent && stats.RoleAnnotatedDeals >= pointBasedMinDeals {
		d.Mode = ModePointBased
		d.Reasons = append(d.Reasons, fmt.Sprintf(
			"enrichment present with %d role-annotated deals, point-based mode eligible", stats.RoleAnnotatedDeals))
		return d
	}

	if stats.RoleAnnotatedDeals >= minRoleDeals {
		d.Mode = ModeDescriptive
		d.Reasons = append(d.Reasons, fmt.Sprintf(
			"%d closed deals with %d role-annotated, descriptive analysis eligible",
			stats.TotalClosed, stats.RoleAnnotatedDeals))
		return d
	}

	d.Mode = ModeAbort
	d.Reasons = append(d.Reasons, fmt.Sprintf(
		"only %d closed deals carry contact buying roles, need at least %d", stats.RoleAnnotatedDeals, minRoleDeals))
	return d
}

// Classifier wraps Classify with a stats source so callers hold a single
// dependency.
type Classifier struct {
	stats StatsReader
}

// NewClassifier builds a classifier over the given stats source.
func NewClassifier(stats StatsReader) *Classifier {
	return &Classifier{stats: stats}
}

// Decide loads the workspace's corpus stats and applies the decision policy.
func (c *Classifier) Decide(ctx context.Context, ws common.WorkspaceID) (Decision, error) {
	stats, err := c.stats.CorpusStats(ctx, ws)
	if err != nil {
		return Decision{}, err
	}
	return Classify(stats), nil
}

//Personal.AI order the ending
