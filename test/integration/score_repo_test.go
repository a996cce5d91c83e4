//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/database/postgres/repositories"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

func TestScoreUpsertTracksChange(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewScoreRepository(pool, testLogger())
	ctx := context.Background()

	breakdown := []scoring.BreakdownEntry{
		{Dimension: "amount", Raw: common.NumberValue(50000), Points: 8, MaxWeight: 10},
	}

	first, err := repo.Upsert(ctx, "ws-scores", scoring.EntityDeal, "deal-1",
		72, "B", breakdown, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 72, first.Score)
	assert.Equal(t, 72, first.PreviousScore)
	assert.Equal(t, 0, first.ScoreChange)

	second, err := repo.Upsert(ctx, "ws-scores", scoring.EntityDeal, "deal-1",
		65, "C", breakdown, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 65, second.Score)
	assert.Equal(t, 72, second.PreviousScore)
	assert.Equal(t, -7, second.ScoreChange)

	// Rerunning with identical inputs yields a zero delta.
	third, err := repo.Upsert(ctx, "ws-scores", scoring.EntityDeal, "deal-1",
		65, "C", breakdown, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 65, third.PreviousScore)
	assert.Equal(t, 0, third.ScoreChange)
}

func TestScoreGetAndList(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewScoreRepository(pool, testLogger())
	ctx := context.Background()
	scoredAt := time.Now().UTC()

	for _, row := range []struct {
		id    common.ID
		score int
		grade string
	}{
		{"deal-a", 88, "A"},
		{"deal-b", 54, "C"},
		{"deal-c", 71, "B"},
	} {
		_, err := repo.Upsert(ctx, "ws-scores", scoring.EntityDeal, row.id,
			row.score, row.grade, nil, scoredAt)
		require.NoError(t, err)
	}
	_, err := repo.Upsert(ctx, "ws-scores", scoring.EntityContact, "contact-a",
		90, "A", nil, scoredAt)
	require.NoError(t, err)

	got, err := repo.GetByEntity(ctx, "ws-scores", scoring.EntityDeal, "deal-b")
	require.NoError(t, err)
	assert.Equal(t, 54, got.Score)
	assert.Equal(t, "C", got.Grade)

	deals, err := repo.ListByWorkspace(ctx, "ws-scores", scoring.EntityDeal, 10)
	require.NoError(t, err)
	require.Len(t, deals, 3)
	assert.Equal(t, common.ID("deal-a"), deals[0].EntityID)
	assert.Equal(t, common.ID("deal-b"), deals[2].EntityID)

	_, err = repo.GetByEntity(ctx, "ws-scores", scoring.EntityDeal, "deal-missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeNotFound))
}

//Personal.AI order the ending
