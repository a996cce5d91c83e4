package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// ScoreRepository
// ─────────────────────────────────────────────────────────────────────────────

// ScoreRepository is the PostgreSQL implementation of scoring.ScoreRepository.
// One row exists per (workspace, entity_type, entity_id); the upsert keeps
// the prior total for delta computation.
type ScoreRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewScoreRepository constructs a ready-to-use ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool, logger logging.Logger) *ScoreRepository {
	return &ScoreRepository{pool: pool, logger: logger}
}

const scoreColumns = `
	workspace_id, entity_type, entity_id, score, grade, breakdown,
	previous_score, score_change, scored_at`

// Upsert writes one score row.  On first insert previous_score equals the new
// score and score_change is zero; on conflict the stored total becomes
// previous_score and score_change is the delta, computed inside the statement
// so concurrent retries stay consistent.
func (r *ScoreRepository) Upsert(
	ctx context.Context,
	ws common.WorkspaceID,
	entityType scoring.EntityType,
	entityID common.ID,
	score int,
	grade string,
	breakdown []scoring.BreakdownEntry,
	scoredAt time.Time,
) (scoring.LeadScore, error) {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return scoring.LeadScore{}, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal score breakdown")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_scores (`+scoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $4, 0, $7)
		ON CONFLICT (workspace_id, entity_type, entity_id) DO UPDATE SET
			previous_score = lead_scores.score,
			score_change   = EXCLUDED.score - lead_scores.score,
			score          = EXCLUDED.score,
			grade          = EXCLUDED.grade,
			breakdown      = EXCLUDED.breakdown,
			scored_at      = EXCLUDED.scored_at
		RETURNING `+scoreColumns,
		ws, entityType, entityID, score, grade, breakdownJSON, scoredAt.UTC())

	stored, err := r.scanScore(row)
	if err != nil {
		return scoring.LeadScore{}, appErrors.Wrap(err, appErrors.ErrCodeScorePersistFailed, "upsert lead score")
	}
	return stored, nil
}

// GetByEntity loads one entity's current score.
func (r *ScoreRepository) GetByEntity(ctx context.Context, ws common.WorkspaceID, entityType scoring.EntityType, entityID common.ID) (scoring.LeadScore, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+scoreColumns+`
		FROM lead_scores
		WHERE workspace_id = $1 AND entity_type = $2 AND entity_id = $3`,
		ws, entityType, entityID)

	stored, err := r.scanScore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return scoring.LeadScore{}, appErrors.New(appErrors.ErrCodeNotFound, "lead score not found")
	}
	if err != nil {
		return scoring.LeadScore{}, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "get lead score")
	}
	return stored, nil
}

// ListByWorkspace returns the workspace's scores of one entity type, highest
// first.
func (r *ScoreRepository) ListByWorkspace(ctx context.Context, ws common.WorkspaceID, entityType scoring.EntityType, limit int) ([]scoring.LeadScore, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+scoreColumns+`
		FROM lead_scores
		WHERE workspace_id = $1 AND entity_type = $2
		ORDER BY score DESC, entity_id
		LIMIT $3`, ws, entityType, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query lead scores")
	}
	defer rows.Close()

	var out []scoring.LeadScore
	for rows.Next() {
		s, err := r.scanScore(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan lead score row")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate lead score rows")
	}
	return out, nil
}

func (r *ScoreRepository) scanScore(row pgx.Row) (scoring.LeadScore, error) {
	var (
		s         scoring.LeadScore
		breakdown []byte
		scoredAt  time.Time
	)
	err := row.Scan(
		&s.WorkspaceID, &s.EntityType, &s.EntityID, &s.Score, &s.Grade, &breakdown,
		&s.PreviousScore, &s.ScoreChange, &scoredAt,
	)
	if err != nil {
		return scoring.LeadScore{}, err
	}
	if err := json.Unmarshal(breakdown, &s.Breakdown); err != nil {
		return scoring.LeadScore{}, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal score breakdown")
	}
	s.ScoredAt = common.Timestamp(scoredAt)
	return s, nil
}

//Personal.AI order the ending
