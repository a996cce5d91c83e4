// Package discovery orchestrates a full ICP discovery run: readiness check,
// feature extraction, the three pattern miners, weight synthesis, and the
// versioned profile insert.
package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/internal/domain/profile"
	"github.com/dealsense/icp-engine/internal/domain/readiness"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/prometheus"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// LockHandle is one acquired per-workspace lock.
type LockHandle interface {
	Unlock(ctx context.Context) error
}

// WorkspaceLocker serializes discovery runs per workspace.  A held lock means
// another run is in flight; the service rejects the trigger rather than
// queueing behind it, because both runs would compute the same next profile
// version.
type WorkspaceLocker interface {
	TryLock(ctx context.Context, workspaceID string) (LockHandle, bool, error)
}

// FieldDiscoveryReader supplies the externally-produced custom-field
// discovery result.
type FieldDiscoveryReader interface {
	RelevantFields(ctx context.Context, ws common.WorkspaceID) ([]mining.RelevantField, error)
}

// MatrixBuilder is the feature-extraction dependency.
type MatrixBuilder interface {
	BuildClosed(ctx context.Context, ws common.WorkspaceID) ([]features.ClosedDealVector, error)
}

// Summary is what a completed discovery run reports back to its trigger.
type Summary struct {
	WorkspaceID    common.WorkspaceID `json:"workspace_id"`
	Mode           readiness.Mode     `json:"mode"`
	ProfileID      common.ID          `json:"profile_id"`
	ProfileVersion int                `json:"profile_version"`
	DealsAnalyzed  int                `json:"deals_analyzed"`
	WonDeals       int                `json:"won_deals"`
	LostDeals      int                `json:"lost_deals"`
	Personas       int                `json:"personas"`
	Committees     int                `json:"committees"`
	SweetSpots     int                `json:"sweet_spots"`
	Degraded       bool               `json:"degraded"`
	Duration       time.Duration      `json:"duration"`
}

// Service runs the discovery pipeline.
type Service struct {
	locker     WorkspaceLocker
	classifier *readiness.Classifier
	builder    MatrixBuilder
	fields     FieldDiscoveryReader
	profiles   profile.Repository
	metrics    *prometheus.EngineMetrics
	logger     logging.Logger
	now        func() time.Time
}

// NewService wires the discovery pipeline.  metrics may be nil for CLI use.
func NewService(
	locker WorkspaceLocker,
	classifier *readiness.Classifier,
	builder MatrixBuilder,
	fields FieldDiscoveryReader,
	profiles profile.Repository,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
) *Service {
	if metrics == nil {
		metrics = prometheus.NopEngineMetrics()
	}
	return &Service{
		locker:     locker,
		classifier: classifier,
		builder:    builder,
		fields:     fields,
		profiles:   profiles,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one discovery run for the workspace and persists a draft
// profile.  A readiness abort, a reserved mode, a held lock, and any
// persistence failure all fail the run; only the custom-field discovery
// lookup degrades gracefully.
func (s *Service) Run(ctx context.Context, ws common.WorkspaceID) (*Summary, error) {
	log := s.logger.With(
		logging.String("workspace_id", string(ws)),
		logging.String("run_id", uuid.NewString()))
	start := s.now()

	handle, acquired, err := s.locker.TryLock(ctx, string(ws))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "acquire discovery lock")
	}
	if !acquired {
		return nil, appErrors.New(appErrors.ErrCodeDiscoveryLocked,
			"a discovery run is already in flight for this workspace")
	}
	defer func() {
		if unlockErr := handle.Unlock(context.WithoutCancel(ctx)); unlockErr != nil {
			log.Warn("failed to release discovery lock", logging.Err(unlockErr))
		}
	}()

	summary, err := s.run(ctx, ws, log, start)
	mode := readiness.ModeAbort
	if summary != nil {
		mode = summary.Mode
	}
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	s.metrics.DiscoveryRunsTotal.WithLabelValues(string(mode), status).Inc()
	return summary, err
}

func (s *Service) run(ctx context.Context, ws common.WorkspaceID, log logging.Logger, start time.Time) (*Summary, error) {
	decision, err := s.classifier.Decide(ctx, ws)
	if err != nil {
		return nil, err
	}
	log.Info("readiness decision",
		logging.String("mode", string(decision.Mode)),
		logging.Int("total_closed", decision.Stats.TotalClosed),
		logging.Int("role_annotated", decision.Stats.RoleAnnotatedDeals))

	if decision.Mode == readiness.ModeAbort {
		return nil, appErrors.New(appErrors.ErrCodeInsufficientData,
			"corpus not ready for analysis: "+strings.Join(decision.Reasons, "; "))
	}
	if !decision.Mode.Implemented() {
		return nil, appErrors.New(appErrors.ErrCodeModeNotImplemented,
			"analysis mode "+string(decision.Mode)+" is reserved and not implemented")
	}

	corpus, err := s.builder.BuildClosed(ctx, ws)
	if err != nil {
		return nil, err
	}

	personas := mining.MinePersonas(corpus)
	significant := mining.SignificantPersonas(personas)
	committees := mining.MineCommittees(corpus, significant)

	degraded := false
	relevantFields, err := s.fields.RelevantFields(ctx, ws)
	if err != nil {
		// Missing field discovery is not fatal: proceed with persona and
		// industry weights only.
		log.Warn("custom field discovery unavailable, running degraded", logging.Err(err))
		relevantFields = nil
		degraded = true
		s.metrics.DegradedRunsTotal.WithLabelValues().Inc()
	}
	company := mining.MineCompanyProfile(corpus, relevantFields)
	weights := scoring.Synthesize(significant, company)

	won, lost := 0, 0
	for _, deal := range corpus {
		if deal.Won() {
			won++
		} else {
			lost++
		}
	}

	elapsed := s.now().Sub(start)
	p := &profile.ICPProfile{
		WorkspaceID: ws,
		Personas:    significant,
		Committees:  committees,
		Company:     company,
		Weights:     weights,
		Metadata: profile.RunMetadata{
			Mode:            decision.Mode,
			DealsAnalyzed:   len(corpus),
			WonDeals:        won,
			LostDeals:       lost,
			ExecutionMillis: elapsed.Milliseconds(),
		},
	}
	if err := s.profiles.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.DiscoveryRunDuration.WithLabelValues(string(decision.Mode)).Observe(elapsed.Seconds())
	s.metrics.DiscoveryDealsScanned.WithLabelValues(string(decision.Mode)).Observe(float64(len(corpus)))
	s.metrics.PersonasDiscovered.WithLabelValues(string(decision.Mode)).Observe(float64(len(significant)))

	log.Info("discovery run complete",
		logging.String("profile_id", string(p.ID)),
		logging.Int("profile_version", p.Version),
		logging.Int("deals_analyzed", len(corpus)),
		logging.Int("personas", len(significant)),
		logging.Int("committees", len(committees)),
		logging.Bool("degraded", degraded),
		logging.Duration("duration", elapsed))

	return &Summary{
		WorkspaceID:    ws,
		Mode:           decision.Mode,
		ProfileID:      p.ID,
		ProfileVersion: p.Version,
		DealsAnalyzed:  len(corpus),
		WonDeals:       won,
		LostDeals:      lost,
		Personas:       len(significant),
		Committees:     len(committees),
		SweetSpots:     len(company.SweetSpots),
		Degraded:       degraded,
		Duration:       elapsed,
	}, nil
}

//Personal.AI order the ending
