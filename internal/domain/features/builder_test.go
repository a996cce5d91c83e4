package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealsense/icp-engine/pkg/types/common"
)

type fakeReaders struct {
	closed    []DealRecord
	open      []DealRecord
	roles     map[common.ID][]ContactRoleRecord
	activity  map[common.ID]ActivityCounts
	overrides map[string]string

	activityErr error
}

func (f *fakeReaders) ClosedDeals(_ context.Context, _ common.WorkspaceID) ([]DealRecord, error) {
	return f.closed, nil
}

func (f *fakeReaders) OpenDeals(_ context.Context, _ common.WorkspaceID) ([]DealRecord, error) {
	return f.open, nil
}

func (f *fakeReaders) RolesByDeal(_ context.Context, _ common.WorkspaceID, ids []common.ID) (map[common.ID][]ContactRoleRecord, error) {
	out := make(map[common.ID][]ContactRoleRecord)
	for _, id := range ids {
		if rs, ok := f.roles[id]; ok {
			out[id] = rs
		}
	}
	return out, nil
}

func (f *fakeReaders) CountsByDeal(_ context.Context, _ common.WorkspaceID, ids []common.ID) (map[common.ID]ActivityCounts, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	out := make(map[common.ID]ActivityCounts)
	for _, id := range ids {
		if a, ok := f.activity[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeReaders) DepartmentOverrides(_ context.Context, _ common.WorkspaceID) (map[string]string, error) {
	return f.overrides, nil
}

func newTestBuilder(f *fakeReaders, opts ...BuilderOption) *Builder {
	return NewBuilder(f, f, f, f, f, nil, opts...)
}

func TestBuilder_BuildClosed(t *testing.T) {
	ws := common.WorkspaceID("ws-1")
	dealID := common.NewID()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := created.AddDate(0, 0, 45)
	lastActivity := closed.AddDate(0, 0, -2)

	f := &fakeReaders{
		closed: []DealRecord{{
			DealID:        dealID,
			Outcome:       OutcomeWon,
			Amount:        48000,
			OwnerID:       "owner-1",
			Industry:      "SaaS",
			EmployeeCount: 180,
			LeadSource:    "referral",
			CreatedAt:     created,
			ClosedAt:      &closed,
		}},
		roles: map[common.ID][]ContactRoleRecord{
			dealID: {
				{DealID: dealID, ContactID: common.NewID(), Title: "VP of Engineering", BuyingRole: RoleChampion},
				{DealID: dealID, ContactID: common.NewID(), Title: "Chief Financial Officer", BuyingRole: RoleEconomicBuyer},
			},
		},
		activity: map[common.ID]ActivityCounts{
			dealID: {Emails: 20, Calls: 4, Meetings: 3, ActiveDays: 12, LastActivityAt: &lastActivity},
		},
	}

	vectors, err := newTestBuilder(f).BuildClosed(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	v := vectors[0]
	assert.True(t, v.Won())
	assert.Equal(t, 45, v.CycleDays)
	assert.Equal(t, 27, v.Activity.Total)
	assert.True(t, v.RolesPresent[RoleChampion])
	assert.True(t, v.RolesPresent[RoleEconomicBuyer])

	require.Len(t, v.Contacts, 2)
	assert.Equal(t, SeniorityVP, v.Contacts[0].Seniority)
	assert.Equal(t, DeptEngineering, v.Contacts[0].Department)
	assert.Equal(t, SeniorityCLevel, v.Contacts[1].Seniority)
	assert.Equal(t, DeptFinance, v.Contacts[1].Department)
}

func TestBuilder_BuildOpen_DerivedTemporalFields(t *testing.T) {
	ws := common.WorkspaceID("ws-1")
	dealID := common.NewID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -30)
	closeDate := now.AddDate(0, 0, 14)
	lastActivity := now.AddDate(0, 0, -9)
	lastContact := now.AddDate(0, 0, -4)

	f := &fakeReaders{
		open: []DealRecord{{
			DealID:      dealID,
			Amount:      12000,
			Probability: 60,
			Stage:       "proposal",
			CreatedAt:   created,
			CloseDate:   &closeDate,
		}},
		roles: map[common.ID][]ContactRoleRecord{
			dealID: {{
				DealID:           dealID,
				ContactID:        common.NewID(),
				Title:            "Director of Operations",
				EmailsExchanged:  8,
				MeetingsAttended: 2,
				LastContactedAt:  &lastContact,
			}},
		},
		activity: map[common.ID]ActivityCounts{
			dealID: {Emails: 5, LastActivityAt: &lastActivity},
		},
	}

	deals, contacts, err := newTestBuilder(f, WithClock(func() time.Time { return now })).BuildOpen(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	require.Len(t, contacts, 1)

	assert.Equal(t, 30, deals[0].DaysSinceCreation)
	assert.Equal(t, 14, deals[0].DaysUntilClose)
	assert.Equal(t, 9, deals[0].DaysSinceActivity)

	assert.Equal(t, SeniorityDirector, contacts[0].Seniority)
	assert.Equal(t, DeptOperations, contacts[0].Department)
	assert.Equal(t, 4, contacts[0].DaysSinceContact)
}

func TestBuilder_BuildOpen_NoActivityFallsBackToAge(t *testing.T) {
	ws := common.WorkspaceID("ws-1")
	dealID := common.NewID()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	f := &fakeReaders{
		open: []DealRecord{{DealID: dealID, Stage: "qualification", CreatedAt: now.AddDate(0, 0, -21)}},
	}

	deals, _, err := newTestBuilder(f, WithClock(func() time.Time { return now })).BuildOpen(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, 21, deals[0].DaysSinceActivity)
	assert.Zero(t, deals[0].Activity.Total)
}

func TestBuilder_ActivityReadErrorDegradesToZero(t *testing.T) {
	ws := common.WorkspaceID("ws-1")
	dealID := common.NewID()

	f := &fakeReaders{
		closed: []DealRecord{{
			DealID:    dealID,
			Outcome:   OutcomeLost,
			CreatedAt: time.Now().AddDate(0, 0, -10),
		}},
		activityErr: errors.New("relation calls does not exist"),
	}

	vectors, err := newTestBuilder(f).BuildClosed(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Zero(t, vectors[0].Activity.Total)
	assert.Nil(t, vectors[0].Activity.LastActivityAt)
}

func TestBuilder_ChunkedFetchCoversAllDeals(t *testing.T) {
	ws := common.WorkspaceID("ws-1")
	f := &fakeReaders{roles: map[common.ID][]ContactRoleRecord{}, activity: map[common.ID]ActivityCounts{}}
	for i := 0; i < 25; i++ {
		id := common.NewID()
		f.closed = append(f.closed, DealRecord{DealID: id, Outcome: OutcomeWon, CreatedAt: time.Now()})
		f.roles[id] = []ContactRoleRecord{{DealID: id, ContactID: common.NewID(), Title: "CEO"}}
		f.activity[id] = ActivityCounts{Emails: 1}
	}

	vectors, err := newTestBuilder(f, WithChunkSize(4), WithFetchConcurrency(2)).BuildClosed(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, vectors, 25)
	for _, v := range vectors {
		assert.Len(t, v.Contacts, 1)
		assert.Equal(t, 1, v.Activity.Total)
	}
}

//Personal.AI order the ending
