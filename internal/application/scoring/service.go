// Package scoring orchestrates a point-based scoring run: it loads the
// workspace's active weight set, builds open-record feature vectors, scores
// deals then contacts, and upserts the results with change tracking.
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/profile"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/prometheus"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// OpenMatrixBuilder is the open-record feature-extraction dependency.
type OpenMatrixBuilder interface {
	BuildOpen(ctx context.Context, ws common.WorkspaceID) ([]features.OpenDealVector, []features.OpenContactVector, error)
}

// ProfileReader loads the weight source for a run.
type ProfileReader interface {
	GetLatest(ctx context.Context, ws common.WorkspaceID) (*profile.ICPProfile, error)
}

// Summary is what a completed scoring run reports back to its trigger.
type Summary struct {
	WorkspaceID    common.WorkspaceID `json:"workspace_id"`
	WeightsMethod  string             `json:"weights_method"`
	ProfileVersion int                `json:"profile_version"`
	DealsScored    int                `json:"deals_scored"`
	ContactsScored int                `json:"contacts_scored"`
	Degraded       bool               `json:"degraded"`
	Duration       time.Duration      `json:"duration"`
}

// Service runs the scoring pipeline.
type Service struct {
	builder  OpenMatrixBuilder
	profiles ProfileReader
	scores   scoring.ScoreRepository
	cfg      scoring.Config
	metrics  *prometheus.EngineMetrics
	logger   logging.Logger
	now      func() time.Time
}

// NewService wires the scoring pipeline.  metrics may be nil for CLI use.
func NewService(
	builder OpenMatrixBuilder,
	profiles ProfileReader,
	scores scoring.ScoreRepository,
	cfg scoring.Config,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
) *Service {
	if metrics == nil {
		metrics = prometheus.NopEngineMetrics()
	}
	return &Service{
		builder:  builder,
		profiles: profiles,
		scores:   scores,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Run scores every open deal and contact in the workspace.  A workspace with
// no discovery profile yet is scored against the default weight set and
// flagged degraded; a workspace with nothing open is an error so callers can
// distinguish "nothing to do" from "scored zero records".
func (s *Service) Run(ctx context.Context, ws common.WorkspaceID) (*Summary, error) {
	log := s.logger.With(
		logging.String("workspace_id", string(ws)),
		logging.String("run_id", uuid.NewString()))
	start := s.now()

	summary, err := s.run(ctx, ws, log, start)
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	s.metrics.ScoringRunsTotal.WithLabelValues(status).Inc()
	s.metrics.ScoringRunDuration.WithLabelValues(status).Observe(s.now().Sub(start).Seconds())
	return summary, err
}

func (s *Service) run(ctx context.Context, ws common.WorkspaceID, log logging.Logger, start time.Time) (*Summary, error) {
	weights, version, degraded, err := s.loadWeights(ctx, ws, log)
	if err != nil {
		return nil, err
	}
	if degraded {
		s.metrics.DegradedRunsTotal.WithLabelValues().Inc()
	}

	deals, contacts, err := s.builder.BuildOpen(ctx, ws)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 && len(contacts) == 0 {
		return nil, appErrors.New(appErrors.ErrCodeNoOpenRecords,
			"workspace has no open deals or contacts to score")
	}

	scorer := scoring.NewScorer(weights, s.cfg)
	scoredAt := s.now().UTC()

	// Deals first: contact scoring folds in the owning deal's fresh score.
	dealScores := make(map[common.ID]int, len(deals))
	for _, deal := range deals {
		result := scorer.ScoreDeal(deal)
		if _, err := s.scores.Upsert(ctx, ws, scoring.EntityDeal, deal.DealID,
			result.Score, result.Grade, result.Breakdown, scoredAt); err != nil {
			return nil, err
		}
		dealScores[deal.DealID] = result.Score
		s.metrics.ScoresWritten.WithLabelValues(string(scoring.EntityDeal)).Inc()
	}

	contactsScored := 0
	for _, contact := range contacts {
		dealScore, ok := dealScores[contact.DealID]
		if !ok {
			// Contact rows can reference deals filtered out of the open set
			// between queries; skip rather than score against stale data.
			log.Warn("contact references deal absent from open set, skipping",
				logging.String("contact_id", string(contact.ContactID)),
				logging.String("deal_id", string(contact.DealID)))
			continue
		}
		result := scorer.ScoreContact(contact, dealScore)
		if _, err := s.scores.Upsert(ctx, ws, scoring.EntityContact, contact.ContactID,
			result.Score, result.Grade, result.Breakdown, scoredAt); err != nil {
			return nil, err
		}
		contactsScored++
		s.metrics.ScoresWritten.WithLabelValues(string(scoring.EntityContact)).Inc()
	}

	elapsed := s.now().Sub(start)
	log.Info("scoring run complete",
		logging.String("weights_method", weights.Method),
		logging.Int("profile_version", version),
		logging.Int("deals_scored", len(deals)),
		logging.Int("contacts_scored", contactsScored),
		logging.Bool("degraded", degraded),
		logging.Duration("duration", elapsed))

	return &Summary{
		WorkspaceID:    ws,
		WeightsMethod:  weights.Method,
		ProfileVersion: version,
		DealsScored:    len(deals),
		ContactsScored: contactsScored,
		Degraded:       degraded,
		Duration:       elapsed,
	}, nil
}

// loadWeights resolves the weight set for the run: the latest profile when
// one exists, else the built-in defaults (degraded).  Any other lookup
// failure is fatal.
func (s *Service) loadWeights(ctx context.Context, ws common.WorkspaceID, log logging.Logger) (scoring.Weights, int, bool, error) {
	p, err := s.profiles.GetLatest(ctx, ws)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrCodeProfileNotFound) {
			log.Warn("no discovery profile yet, scoring with default weights")
			return scoring.DefaultWeights(), 0, true, nil
		}
		return scoring.Weights{}, 0, false, err
	}
	return p.Weights, p.Version, false, nil
}

//Personal.AI order the ending
