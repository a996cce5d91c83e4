// Package repositories provides the PostgreSQL-backed implementations of the
// engine's repository contracts: read-only access to the application's CRM
// tables, and read/write access to the engine-owned profile and score tables.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealsense/icp-engine/internal/domain/features"
	"github.com/dealsense/icp-engine/internal/domain/mining"
	"github.com/dealsense/icp-engine/internal/domain/readiness"
	"github.com/dealsense/icp-engine/internal/infrastructure/monitoring/logging"
	appErrors "github.com/dealsense/icp-engine/pkg/errors"
	"github.com/dealsense/icp-engine/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// CRMReader — read-only view over the application's CRM tables
// ─────────────────────────────────────────────────────────────────────────────

// CRMReader implements every read contract the engine's pipeline consumes:
// closed/open deals with account joins, contact roles, activity counters,
// corpus statistics, field-discovery results, and department keyword
// overrides.  All queries are parameterised and workspace-scoped.
type CRMReader struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCRMReader constructs a ready-to-use CRMReader.
func NewCRMReader(pool *pgxpool.Pool, logger logging.Logger) *CRMReader {
	return &CRMReader{pool: pool, logger: logger}
}

const dealColumns = `
	d.id, d.status, d.amount, d.owner_id, d.probability, d.stage,
	d.lead_source, d.created_at, d.closed_at, d.close_date, d.custom_fields,
	COALESCE(a.industry, ''), COALESCE(a.employee_count, 0),
	COALESCE(a.annual_revenue, 0), COALESCE(a.custom_fields, '{}'::jsonb)`

// ClosedDeals lists the workspace's won and lost deals with their account
// attributes joined in.
func (r *CRMReader) ClosedDeals(ctx context.Context, ws common.WorkspaceID) ([]features.DealRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+dealColumns+`
		FROM deals d
		LEFT JOIN accounts a ON a.id = d.account_id
		WHERE d.workspace_id = $1 AND d.status IN ('won', 'lost')`, ws)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query closed deals")
	}
	defer rows.Close()
	return r.scanDeals(rows)
}

// OpenDeals lists the workspace's currently-open deals with their account
// attributes joined in.
func (r *CRMReader) OpenDeals(ctx context.Context, ws common.WorkspaceID) ([]features.DealRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+dealColumns+`
		FROM deals d
		LEFT JOIN accounts a ON a.id = d.account_id
		WHERE d.workspace_id = $1 AND d.status = 'open'`, ws)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query open deals")
	}
	defer rows.Close()
	return r.scanDeals(rows)
}

func (r *CRMReader) scanDeals(rows pgx.Rows) ([]features.DealRecord, error) {
	var out []features.DealRecord
	for rows.Next() {
		var (
			rec            features.DealRecord
			status         string
			dealFieldsRaw  []byte
			accountFields  []byte
			closedAt       *time.Time
			closeDate      *time.Time
		)
		if err := rows.Scan(
			&rec.DealID, &status, &rec.Amount, &rec.OwnerID, &rec.Probability, &rec.Stage,
			&rec.LeadSource, &rec.CreatedAt, &closedAt, &closeDate, &dealFieldsRaw,
			&rec.Industry, &rec.EmployeeCount, &rec.AnnualRevenue, &accountFields,
		); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan deal row")
		}
		if status == "won" || status == "lost" {
			rec.Outcome = features.Outcome(status)
		}
		rec.ClosedAt = closedAt
		rec.CloseDate = closeDate
		rec.DealFields = r.decodeFieldMap(dealFieldsRaw)
		rec.AccountFields = r.decodeFieldMap(accountFields)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate deal rows")
	}
	return out, nil
}

// RolesByDeal returns every contact-role row for the given deals in one
// batched query, keyed by deal id.
func (r *CRMReader) RolesByDeal(ctx context.Context, ws common.WorkspaceID, dealIDs []common.ID) (map[common.ID][]features.ContactRoleRecord, error) {
	if len(dealIDs) == 0 {
		return map[common.ID][]features.ContactRoleRecord{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT dc.deal_id, dc.contact_id,
		       COALESCE(c.title, ''), COALESCE(dc.buying_role, ''),
		       COALESCE(c.seniority, ''), COALESCE(c.department, ''),
		       COALESCE(dc.emails_exchanged, 0), COALESCE(dc.meetings_attended, 0),
		       dc.last_contacted_at
		FROM deal_contacts dc
		JOIN contacts c ON c.id = dc.contact_id
		WHERE dc.workspace_id = $1 AND dc.deal_id = ANY($2)`, ws, dealIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query contact roles")
	}
	defer rows.Close()

	out := make(map[common.ID][]features.ContactRoleRecord, len(dealIDs))
	for rows.Next() {
		var rec features.ContactRoleRecord
		if err := rows.Scan(
			&rec.DealID, &rec.ContactID, &rec.Title, &rec.BuyingRole,
			&rec.Seniority, &rec.Department,
			&rec.EmailsExchanged, &rec.MeetingsAttended, &rec.LastContactedAt,
		); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan contact role row")
		}
		out[rec.DealID] = append(out[rec.DealID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate contact role rows")
	}
	return out, nil
}

// CountsByDeal aggregates activity rows for the given deals in one batched
// query.  Callers treat an error here as zero activity: some workspaces have
// no call-platform connection and no activities table rows at all.
func (r *CRMReader) CountsByDeal(ctx context.Context, ws common.WorkspaceID, dealIDs []common.ID) (map[common.ID]features.ActivityCounts, error) {
	if len(dealIDs) == 0 {
		return map[common.ID]features.ActivityCounts{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT deal_id,
		       COUNT(*) FILTER (WHERE activity_type = 'email'),
		       COUNT(*) FILTER (WHERE activity_type = 'call'),
		       COUNT(*) FILTER (WHERE activity_type = 'meeting'),
		       COUNT(DISTINCT occurred_at::date),
		       MAX(occurred_at)
		FROM activities
		WHERE workspace_id = $1 AND deal_id = ANY($2)
		GROUP BY deal_id`, ws, dealIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query activity counters")
	}
	defer rows.Close()

	out := make(map[common.ID]features.ActivityCounts, len(dealIDs))
	for rows.Next() {
		var (
			dealID common.ID
			counts features.ActivityCounts
		)
		if err := rows.Scan(&dealID, &counts.Emails, &counts.Calls, &counts.Meetings,
			&counts.ActiveDays, &counts.LastActivityAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan activity row")
		}
		out[dealID] = counts
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate activity rows")
	}
	return out, nil
}

// CorpusStats runs the aggregate counts the readiness classifier decides on.
func (r *CRMReader) CorpusStats(ctx context.Context, ws common.WorkspaceID) (readiness.CorpusStats, error) {
	var stats readiness.CorpusStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('won', 'lost')),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status IN ('won', 'lost') AND EXISTS (
				SELECT 1 FROM deal_contacts dc
				WHERE dc.deal_id = d.id AND dc.buying_role IS NOT NULL AND dc.buying_role <> ''
			)),
			EXISTS (SELECT 1 FROM account_enrichments e WHERE e.workspace_id = $1)
		FROM deals d
		WHERE d.workspace_id = $1`, ws).Scan(
		&stats.TotalClosed, &stats.Won, &stats.Lost,
		&stats.RoleAnnotatedDeals, &stats.EnrichmentPresent,
	)
	if err != nil {
		return readiness.CorpusStats{}, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query corpus stats")
	}
	return stats, nil
}

// RelevantFields loads the externally-produced custom-field discovery result.
// A missing table or empty result is not fatal; the caller degrades to
// persona/industry weights only.
func (r *CRMReader) RelevantFields(ctx context.Context, ws common.WorkspaceID) ([]mining.RelevantField, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT field_key, entity_type, relevance
		FROM custom_field_discoveries
		WHERE workspace_id = $1`, ws)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query custom field discoveries")
	}
	defer rows.Close()

	var out []mining.RelevantField
	for rows.Next() {
		var f mining.RelevantField
		if err := rows.Scan(&f.Key, &f.EntityType, &f.Relevance); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan field discovery row")
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate field discovery rows")
	}
	return out, nil
}

// DepartmentOverrides loads the workspace's department keyword overrides.
func (r *CRMReader) DepartmentOverrides(ctx context.Context, ws common.WorkspaceID) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT keyword, department
		FROM department_keywords
		WHERE workspace_id = $1`, ws)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "query department keywords")
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var keyword, department string
		if err := rows.Scan(&keyword, &department); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan department keyword row")
		}
		out[keyword] = department
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate department keyword rows")
	}
	return out, nil
}

// decodeFieldMap parses a JSONB custom-field document into a typed FieldMap.
// Non-scalar entries are skipped with a debug log instead of failing the
// whole row.
func (r *CRMReader) decodeFieldMap(raw []byte) common.FieldMap {
	if len(raw) == 0 {
		return nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.logger.Debug("skipping malformed custom-field document", logging.Err(err))
		return nil
	}
	if len(doc) == 0 {
		return nil
	}
	out := make(common.FieldMap, len(doc))
	for key, msg := range doc {
		var fv common.FieldValue
		if err := json.Unmarshal(msg, &fv); err != nil {
			r.logger.Debug("skipping non-scalar custom field", logging.String("key", key))
			continue
		}
		if !fv.IsAbsent() {
			out[key] = fv
		}
	}
	return out
}

//Personal.AI order the ending
