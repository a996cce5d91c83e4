package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/internal/domain/profile"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// ProfileRepository
// ─────────────────────────────────────────────────────────────────────────────

// ProfileRepository is the PostgreSQL implementation of profile.Repository.
// Profiles are write-once: Insert allocates the next version inside the
// INSERT itself, and no update path exists.
type ProfileRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewProfileRepository constructs a ready-to-use ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool, logger logging.Logger) *ProfileRepository {
	return &ProfileRepository{pool: pool, logger: logger}
}

const profileColumns = `
	id, workspace_id, version, status,
	personas, committees, company, weights, metadata, created_at`

// Insert persists a new draft profile, allocating the workspace's next
// version number in the same statement.  The allocated version and creation
// time are written back onto p.
func (r *ProfileRepository) Insert(ctx context.Context, p *profile.ICPProfile) error {
	r.logger.Debug("ProfileRepository.Insert",
		logging.String("workspace_id", string(p.WorkspaceID)))

	personas, err := json.Marshal(p.Personas)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal personas")
	}
	committees, err := json.Marshal(p.Committees)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal committees")
	}
	company, err := json.Marshal(p.Company)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal company profile")
	}
	weights, err := json.Marshal(p.Weights)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal weights")
	}
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal run metadata")
	}

	if p.ID == "" {
		p.ID = common.NewID()
	}
	now := time.Now().UTC()

	var version int
	err = r.pool.QueryRow(ctx, `
		INSERT INTO icp_profiles (`+profileColumns+`)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM icp_profiles WHERE workspace_id = $2),
			$3, $4, $5, $6, $7, $8, $9
		)
		RETURNING version`,
		p.ID, p.WorkspaceID, profile.StatusDraft,
		personas, committees, company, weights, metadata, now,
	).Scan(&version)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeScorePersistFailed, "insert icp profile")
	}

	p.Version = version
	p.Status = profile.StatusDraft
	p.CreatedAt = common.Timestamp(now)
	return nil
}

// GetByID loads one profile by id within a workspace.
func (r *ProfileRepository) GetByID(ctx context.Context, ws common.WorkspaceID, id common.ID) (*profile.ICPProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM icp_profiles
		WHERE workspace_id = $1 AND id = $2`, ws, id)
	return r.scanProfile(row)
}

// GetLatest loads the workspace's highest-version profile.
func (r *ProfileRepository) GetLatest(ctx context.Context, ws common.WorkspaceID) (*profile.ICPProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM icp_profiles
		WHERE workspace_id = $1
		ORDER BY version DESC
		LIMIT 1`, ws)
	return r.scanProfile(row)
}

// ListVersions returns profiles newest-first.
func (r *ProfileRepository) ListVersions(ctx context.Context, ws common.WorkspaceID, limit int) ([]*profile.ICPProfile, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM icp_profiles
		WHERE workspace_id = $1
		ORDER BY version DESC
		LIMIT $2`, ws, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query profile versions")
	}
	defer rows.Close()

	var out []*profile.ICPProfile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate profile rows")
	}
	return out, nil
}

func (r *ProfileRepository) scanProfile(row pgx.Row) (*profile.ICPProfile, error) {
	var (
		p          profile.ICPProfile
		personas   []byte
		committees []byte
		company    []byte
		weights    []byte
		metadata   []byte
		createdAt  time.Time
	)
	err := row.Scan(
		&p.ID, &p.WorkspaceID, &p.Version, &p.Status,
		&personas, &committees, &company, &weights, &metadata, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, appErrors.New(appErrors.ErrCodeProfileNotFound, "icp profile not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan profile row")
	}

	if err := json.Unmarshal(personas, &p.Personas); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal personas")
	}
	if err := json.Unmarshal(committees, &p.Committees); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal committees")
	}
	if err := json.Unmarshal(company, &p.Company); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal company profile")
	}
	if err := json.Unmarshal(weights, &p.Weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal weights")
	}
	if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "unmarshal run metadata")
	}

	// Empty JSON documents decode to nil maps; normalize so round-trips
	// compare equal.
	if p.Weights.Personas == nil {
		p.Weights.Personas = map[mining.PersonaKey]int{}
	}
	if p.Weights.CustomFields == nil {
		p.Weights.CustomFields = map[string]map[string]int{}
	}
	if p.Weights.Industries == nil {
		p.Weights.Industries = map[string]int{}
	}

	p.CreatedAt = common.Timestamp(createdAt)
	return &p, nil
}

//Personal.AI order the ending
