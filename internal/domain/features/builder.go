package features

import (
	"context"
	"math"
	"time"

	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Feature matrix builder
// ─────────────────────────────────────────────────────────────────────────────

// Builder assembles per-deal feature vectors from the raw CRM readers.  It
// issues one batched read per feature category and joins everything in
// memory, so a run touches the store a constant number of times regardless of
// corpus size.
type Builder struct {
	closed    ClosedDealReader
	open      OpenDealReader
	roles     ContactRoleReader
	activity  ActivityReader
	overrides DepartmentOverrideReader

	chunkSize   int
	concurrency int
	now         func() time.Time
	logger      logging.Logger
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the time source, used by tests to fix derived temporal
// fields such as DaysSinceActivity.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// WithFetchConcurrency bounds how many batched sub-reads run in parallel when
// the deal-id set is chunked.
func WithFetchConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithChunkSize caps how many deal ids a single batched read carries.
func WithChunkSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// NewBuilder constructs a feature matrix builder over the given readers.
func NewBuilder(
	closed ClosedDealReader,
	open OpenDealReader,
	roles ContactRoleReader,
	activity ActivityReader,
	overrides DepartmentOverrideReader,
	logger logging.Logger,
	opts ...BuilderOption,
) *Builder {
	b := &Builder{
		closed:      closed,
		open:        open,
		roles:       roles,
		activity:    activity,
		overrides:   overrides,
		chunkSize:   500,
		concurrency: 8,
		now:         time.Now,
		logger:      logger,
	}
	if b.logger == nil {
		b.logger = logging.NewNopLogger()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildClosed loads every closed deal in the workspace and materialises one
// ClosedDealVector per deal, with contact roles classified and activity
// counters attached.
func (b *Builder) BuildClosed(ctx context.Context, ws common.WorkspaceID) ([]ClosedDealVector, error) {
	records, err := b.closed.ClosedDeals(ctx, ws)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "load closed deals")
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := dealIDs(records)
	roleMap, activityMap, classifier, err := b.loadJoins(ctx, ws, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ClosedDealVector, 0, len(records))
	for _, rec := range records {
		contacts, present := b.contactFeatures(classifier, roleMap[rec.DealID])
		v := ClosedDealVector{
			DealID:        rec.DealID,
			Outcome:       rec.Outcome,
			Amount:        rec.Amount,
			OwnerID:       rec.OwnerID,
			LeadSource:    rec.LeadSource,
			Account:       accountFeatures(rec),
			Contacts:      contacts,
			RolesPresent:  present,
			Activity:      activitySummary(activityMap[rec.DealID]),
			DealFields:    rec.DealFields,
			AccountFields: rec.AccountFields,
		}
		if rec.ClosedAt != nil {
			v.CycleDays = daysBetween(rec.CreatedAt, *rec.ClosedAt)
		}
		out = append(out, v)
	}
	return out, nil
}

// BuildOpen loads every open deal in the workspace and materialises one
// OpenDealVector per deal plus one OpenContactVector per associated contact.
func (b *Builder) BuildOpen(ctx context.Context, ws common.WorkspaceID) ([]OpenDealVector, []OpenContactVector, error) {
	records, err := b.open.OpenDeals(ctx, ws)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "load open deals")
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	ids := dealIDs(records)
	roleMap, activityMap, classifier, err := b.loadJoins(ctx, ws, ids)
	if err != nil {
		return nil, nil, err
	}

	now := b.now()
	deals := make([]OpenDealVector, 0, len(records))
	var contacts []OpenContactVector
	for _, rec := range records {
		feats, present := b.contactFeatures(classifier, roleMap[rec.DealID])
		act := activitySummary(activityMap[rec.DealID])

		v := OpenDealVector{
			DealID:            rec.DealID,
			Amount:            rec.Amount,
			Probability:       rec.Probability,
			Stage:             rec.Stage,
			OwnerID:           rec.OwnerID,
			LeadSource:        rec.LeadSource,
			CreatedAt:         rec.CreatedAt,
			Account:           accountFeatures(rec),
			Contacts:          feats,
			RolesPresent:      present,
			Activity:          act,
			DealFields:        rec.DealFields,
			AccountFields:     rec.AccountFields,
			DaysSinceCreation: daysBetween(rec.CreatedAt, now),
		}
		if rec.CloseDate != nil {
			v.CloseDate = rec.CloseDate
			v.DaysUntilClose = daysBetween(now, *rec.CloseDate)
		}
		if act.LastActivityAt != nil {
			v.DaysSinceActivity = daysBetween(*act.LastActivityAt, now)
		} else {
			v.DaysSinceActivity = v.DaysSinceCreation
		}
		deals = append(deals, v)

		for _, cr := range roleMap[rec.DealID] {
			oc := OpenContactVector{
				ContactID:        cr.ContactID,
				DealID:           rec.DealID,
				Title:            cr.Title,
				BuyingRole:       cr.BuyingRole,
				EmailsExchanged:  cr.EmailsExchanged,
				MeetingsAttended: cr.MeetingsAttended,
			}
			oc.Seniority, oc.Department = resolveTitle(classifier, cr)
			if cr.LastContactedAt != nil {
				oc.DaysSinceContact = daysBetween(*cr.LastContactedAt, now)
			} else {
				oc.DaysSinceContact = v.DaysSinceCreation
			}
			contacts = append(contacts, oc)
		}
	}
	return deals, contacts, nil
}

// loadJoins fetches contact roles and activity counters for the deal-id set,
// chunked and bounded by the configured concurrency, and prepares the title
// classifier with workspace overrides.  A failing activity read degrades to
// zero counters instead of aborting the run: the call platform join is
// optional per workspace.
func (b *Builder) loadJoins(
	ctx context.Context,
	ws common.WorkspaceID,
	ids []common.ID,
) (map[common.ID][]ContactRoleRecord, map[common.ID]ActivityCounts, *TitleClassifier, error) {
	overrides, err := b.overrides.DepartmentOverrides(ctx, ws)
	if err != nil {
		b.logger.Warn("department overrides unavailable, using defaults",
			logging.String("workspace_id", string(ws)), logging.Err(err))
		overrides = nil
	}
	classifier := NewTitleClassifier(overrides)

	roleMap := make(map[common.ID][]ContactRoleRecord, len(ids))
	activityMap := make(map[common.ID]ActivityCounts, len(ids))

	chunks := chunkIDs(ids, b.chunkSize)
	sem := make(chan struct{}, b.concurrency)
	type result struct {
		roles    map[common.ID][]ContactRoleRecord
		activity map[common.ID]ActivityCounts
		err      error
	}
	results := make(chan result, len(chunks))

	for _, chunk := range chunks {
		chunk := chunk
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			var r result
			r.roles, r.err = b.roles.RolesByDeal(ctx, ws, chunk)
			if r.err != nil {
				results <- r
				return
			}
			acts, actErr := b.activity.CountsByDeal(ctx, ws, chunk)
			if actErr != nil {
				b.logger.Warn("activity counters unavailable, treating as zero",
					logging.String("workspace_id", string(ws)), logging.Err(actErr))
			} else {
				r.activity = acts
			}
			results <- r
		}()
	}

	for range chunks {
		r := <-results
		if r.err != nil {
			err = r.err
			continue
		}
		for id, rs := range r.roles {
			roleMap[id] = rs
		}
		for id, a := range r.activity {
			activityMap[id] = a
		}
	}
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "load contact roles")
	}
	return roleMap, activityMap, classifier, nil
}

// contactFeatures classifies each contact row and reports which buying roles
// are present on the deal.
func (b *Builder) contactFeatures(classifier *TitleClassifier, rows []ContactRoleRecord) ([]ContactFeature, map[string]bool) {
	if len(rows) == 0 {
		return nil, nil
	}
	feats := make([]ContactFeature, 0, len(rows))
	present := make(map[string]bool, 4)
	for _, cr := range rows {
		f := ContactFeature{
			ContactID:  cr.ContactID,
			Title:      cr.Title,
			BuyingRole: cr.BuyingRole,
		}
		f.Seniority, f.Department = resolveTitle(classifier, cr)
		feats = append(feats, f)
		if cr.BuyingRole != "" {
			present[cr.BuyingRole] = true
		}
	}
	return feats, present
}

// resolveTitle prefers externally-verified seniority/department when the CRM
// carries them and falls back to title classification otherwise.
func resolveTitle(classifier *TitleClassifier, cr ContactRoleRecord) (seniority, department string) {
	seniority, department = cr.Seniority, cr.Department
	if seniority == "" || department == "" {
		s, d := classifier.Classify(cr.Title)
		if seniority == "" {
			seniority = s
		}
		if department == "" {
			department = d
		}
	}
	return seniority, department
}

func accountFeatures(rec DealRecord) AccountFeatures {
	return AccountFeatures{
		Industry:      rec.Industry,
		EmployeeCount: rec.EmployeeCount,
		AnnualRevenue: rec.AnnualRevenue,
	}
}

func activitySummary(c ActivityCounts) ActivitySummary {
	return ActivitySummary{
		Emails:         c.Emails,
		Calls:          c.Calls,
		Meetings:       c.Meetings,
		Total:          c.Emails + c.Calls + c.Meetings,
		ActiveDays:     c.ActiveDays,
		LastActivityAt: c.LastActivityAt,
	}
}

func dealIDs(records []DealRecord) []common.ID {
	ids := make([]common.ID, len(records))
	for i, rec := range records {
		ids[i] = rec.DealID
	}
	return ids
}

func chunkIDs(ids []common.ID, size int) [][]common.ID {
	if size <= 0 || len(ids) <= size {
		return [][]common.ID{ids}
	}
	chunks := make([][]common.ID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

//Personal.AI order the ending
