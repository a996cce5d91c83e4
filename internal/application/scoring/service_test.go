package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/internal/domain/profile"
	"github.com/dealsense/icp-engine/internal/domain/scoring"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

type fakeBuilder struct {
	deals    []features.OpenDealVector
	contacts []features.OpenContactVector
	err      error
}

func (f *fakeBuilder) BuildOpen(ctx context.Context, ws common.WorkspaceID) ([]features.OpenDealVector, []features.OpenContactVector, error) {
	return f.deals, f.contacts, f.err
}

type fakeProfiles struct {
	latest *profile.ICPProfile
	err    error
}

func (f *fakeProfiles) GetLatest(ctx context.Context, ws common.WorkspaceID) (*profile.ICPProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

type upsertCall struct {
	entityType scoring.EntityType
	entityID   common.ID
	score      int
	grade      string
}

type fakeScores struct {
	calls []upsertCall
	err   error
}

func (f *fakeScores) Upsert(ctx context.Context, ws common.WorkspaceID, entityType scoring.EntityType, entityID common.ID,
	score int, grade string, breakdown []scoring.BreakdownEntry, scoredAt time.Time) (scoring.LeadScore, error) {
	if f.err != nil {
		return scoring.LeadScore{}, f.err
	}
	f.calls = append(f.calls, upsertCall{entityType: entityType, entityID: entityID, score: score, grade: grade})
	return scoring.LeadScore{
		WorkspaceID: ws,
		EntityType:  entityType,
		EntityID:    entityID,
		Score:       score,
		Grade:       grade,
	}, nil
}

func (f *fakeScores) GetByEntity(ctx context.Context, ws common.WorkspaceID, entityType scoring.EntityType, entityID common.ID) (scoring.LeadScore, error) {
	return scoring.LeadScore{}, appErrors.New(appErrors.ErrCodeNotFound, "not found")
}

func (f *fakeScores) ListByWorkspace(ctx context.Context, ws common.WorkspaceID, entityType scoring.EntityType, limit int) ([]scoring.LeadScore, error) {
	return nil, nil
}

func profileWithWeights() *profile.ICPProfile {
	return &profile.ICPProfile{
		ID:          "prof-1",
		WorkspaceID: "ws-1",
		Version:     2,
		Status:      profile.StatusDraft,
		Weights: scoring.Weights{
			Method: "descriptive_heuristic",
			Personas: map[mining.PersonaKey]int{
				"vp:engineering": 8,
			},
			Industries: map[string]int{"SaaS": 7},
		},
	}
}

func openDeal(id common.ID) features.OpenDealVector {
	close := time.Now().Add(20 * 24 * time.Hour)
	return features.OpenDealVector{
		DealID:      id,
		Amount:      80000,
		Probability: 60,
		Stage:       "evaluation",
		Account:     features.AccountFeatures{Industry: "SaaS", EmployeeCount: 150},
		Contacts: []features.ContactFeature{{
			ContactID:  "c-1",
			Seniority:  features.SeniorityVP,
			Department: features.DeptEngineering,
			BuyingRole: features.RoleChampion,
		}},
		RolesPresent: map[string]bool{features.RoleChampion: true},
		Activity:     features.ActivitySummary{Emails: 12, Calls: 3, Meetings: 2, Total: 17},
		CloseDate:    &close,
		CreatedAt:    time.Now().Add(-30 * 24 * time.Hour),

		DaysSinceCreation: 30,
		DaysUntilClose:    20,
		DaysSinceActivity: 2,
	}
}

func openContact(id, dealID common.ID) features.OpenContactVector {
	return features.OpenContactVector{
		ContactID:        id,
		DealID:           dealID,
		Seniority:        features.SeniorityVP,
		Department:       features.DeptEngineering,
		BuyingRole:       features.RoleChampion,
		EmailsExchanged:  10,
		MeetingsAttended: 2,
		DaysSinceContact: 3,
	}
}

func newTestService(builder *fakeBuilder, profiles *fakeProfiles, scores *fakeScores) *Service {
	return NewService(builder, profiles, scores, scoring.Config{}, nil, logging.NewNopLogger())
}

func TestRunScoresDealsThenContacts(t *testing.T) {
	builder := &fakeBuilder{
		deals:    []features.OpenDealVector{openDeal("d-1"), openDeal("d-2")},
		contacts: []features.OpenContactVector{openContact("c-1", "d-1"), openContact("c-2", "d-2")},
	}
	scores := &fakeScores{}
	svc := newTestService(builder, &fakeProfiles{latest: profileWithWeights()}, scores)

	summary, err := svc.Run(context.Background(), "ws-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DealsScored)
	assert.Equal(t, 2, summary.ContactsScored)
	assert.Equal(t, 2, summary.ProfileVersion)
	assert.Equal(t, "descriptive_heuristic", summary.WeightsMethod)
	assert.False(t, summary.Degraded)

	require.Len(t, scores.calls, 4)
	assert.Equal(t, scoring.EntityDeal, scores.calls[0].entityType)
	assert.Equal(t, scoring.EntityDeal, scores.calls[1].entityType)
	assert.Equal(t, scoring.EntityContact, scores.calls[2].entityType)
	assert.Equal(t, scoring.EntityContact, scores.calls[3].entityType)
	for _, call := range scores.calls {
		assert.GreaterOrEqual(t, call.score, 0)
		assert.LessOrEqual(t, call.score, 100)
		assert.NotEmpty(t, call.grade)
	}
}

func TestRunFallsBackToDefaultWeights(t *testing.T) {
	builder := &fakeBuilder{deals: []features.OpenDealVector{openDeal("d-1")}}
	profiles := &fakeProfiles{err: appErrors.New(appErrors.ErrCodeProfileNotFound, "no profile")}
	scores := &fakeScores{}
	svc := newTestService(builder, profiles, scores)

	summary, err := svc.Run(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.True(t, summary.Degraded)
	assert.Equal(t, "default", summary.WeightsMethod)
	assert.Equal(t, 0, summary.ProfileVersion)
	assert.Len(t, scores.calls, 1)
}

func TestRunFailsOnOtherProfileErrors(t *testing.T) {
	builder := &fakeBuilder{deals: []features.OpenDealVector{openDeal("d-1")}}
	profiles := &fakeProfiles{err: appErrors.New(appErrors.ErrCodeDatabaseError, "connection refused")}
	svc := newTestService(builder, profiles, &fakeScores{})

	_, err := svc.Run(context.Background(), "ws-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

func TestRunErrorsWhenNothingOpen(t *testing.T) {
	svc := newTestService(&fakeBuilder{}, &fakeProfiles{latest: profileWithWeights()}, &fakeScores{})

	_, err := svc.Run(context.Background(), "ws-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeNoOpenRecords))
}

func TestRunSkipsContactsWithMissingDeal(t *testing.T) {
	builder := &fakeBuilder{
		deals:    []features.OpenDealVector{openDeal("d-1")},
		contacts: []features.OpenContactVector{openContact("c-1", "d-1"), openContact("c-9", "d-gone")},
	}
	scores := &fakeScores{}
	svc := newTestService(builder, &fakeProfiles{latest: profileWithWeights()}, scores)

	summary, err := svc.Run(context.Background(), "ws-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ContactsScored)
	assert.Len(t, scores.calls, 2)
}

func TestRunStopsOnUpsertFailure(t *testing.T) {
	builder := &fakeBuilder{deals: []features.OpenDealVector{openDeal("d-1")}}
	scores := &fakeScores{err: appErrors.New(appErrors.ErrCodeDatabaseError, "write failed")}
	svc := newTestService(builder, &fakeProfiles{latest: profileWithWeights()}, scores)

	_, err := svc.Run(context.Background(), "ws-1")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}

//Personal.AI order the ending
