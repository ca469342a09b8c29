package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// errNoRow normalizes the two drivers' no-row sentinels so callers can turn
// a miss into a nil result.
var errNoRow = eris.New("store: no row")

// scannable is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func noRowErr(err error) bool {
	return eris.Is(err, sql.ErrNoRows) || eris.Is(err, pgx.ErrNoRows)
}

func scanUser(row scannable) (*model.User, error) {
	var u model.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CompanyName,
		&u.CreatedAt, &lastLogin, &u.IsActive)
	if noRowErr(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan user")
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func scanStoredRecommendation(row scannable) (*model.StoredRecommendation, error) {
	var rec model.StoredRecommendation
	var expectedSavings, implementationTime, toolsJSON, flowJSON sql.NullString
	var estimatedHours sql.NullInt64
	var roi sql.NullFloat64

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.Priority,
		&expectedSavings, &estimatedHours, &implementationTime, &roi,
		&toolsJSON, &flowJSON, &rec.ProcessDescription,
		&rec.AIGenerated, &rec.ExternalAIUsed, &rec.CreatedAt)
	if noRowErr(err) {
		return nil, errNoRow
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan recommendation")
	}

	rec.ExpectedSavings = expectedSavings.String
	rec.ImplementationTime = implementationTime.String
	rec.EstimatedHours = int(estimatedHours.Int64)
	rec.ROIPercentage = roi.Float64

	if toolsJSON.Valid && toolsJSON.String != "" {
		if err := json.Unmarshal([]byte(toolsJSON.String), &rec.Tools); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal tools")
		}
	}
	if flowJSON.Valid && flowJSON.String != "" {
		var flow model.FlowDiagram
		if err := json.Unmarshal([]byte(flowJSON.String), &flow); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal flow")
		}
		rec.FlowExample = &flow
	}
	return &rec, nil
}

func scanProject(row scannable) (*model.Project, error) {
	var p model.Project
	var estimatedHours, paybackMonths sql.NullInt64
	var implementationCost, monthlySavings, roi sql.NullFloat64
	var expectedSavings, toolsJSON, deadline sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Status, &p.Priority,
		&estimatedHours, &expectedSavings, &implementationCost, &monthlySavings,
		&roi, &paybackMonths, &toolsJSON, &deadline, &p.CreatedAt, &p.UpdatedAt)
	if noRowErr(err) {
		return nil, errNoRow
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan project")
	}

	if estimatedHours.Valid {
		h := int(estimatedHours.Int64)
		p.EstimatedHours = &h
	}
	if paybackMonths.Valid {
		m := int(paybackMonths.Int64)
		p.PaybackMonths = &m
	}
	if implementationCost.Valid {
		p.ImplementationCost = &implementationCost.Float64
	}
	if monthlySavings.Valid {
		p.MonthlySavings = &monthlySavings.Float64
	}
	if roi.Valid {
		p.ROIPercentage = &roi.Float64
	}
	p.ExpectedSavings = expectedSavings.String
	p.Deadline = deadline.String

	if toolsJSON.Valid && toolsJSON.String != "" {
		if err := json.Unmarshal([]byte(toolsJSON.String), &p.RecommendedTools); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal recommended tools")
		}
	}
	return &p, nil
}

func scanComment(row scannable) (*model.Comment, error) {
	var c model.Comment
	var parentID sql.NullInt64

	err := row.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Comment, &parentID,
		&c.Username, &c.CompanyName, &c.CreatedAt, &c.UpdatedAt)
	if noRowErr(err) {
		return nil, errNoRow
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan comment")
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return &c, nil
}

func scanFlow(row scannable) (*model.AutomationFlow, error) {
	var f model.AutomationFlow
	var projectID sql.NullInt64
	var description, dataJSON, toolsJSON, estimatedTime sql.NullString

	err := row.Scan(&f.ID, &f.UserID, &projectID, &f.Title, &description, &f.FlowType,
		&dataJSON, &toolsJSON, &f.Difficulty, &estimatedTime,
		&f.IsTemplate, &f.IsPublic, &f.CreatedAt, &f.UpdatedAt)
	if noRowErr(err) {
		return nil, errNoRow
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan flow")
	}

	if projectID.Valid {
		f.ProjectID = &projectID.Int64
	}
	f.Description = description.String
	f.EstimatedTime = estimatedTime.String

	if dataJSON.Valid && dataJSON.String != "" {
		if err := json.Unmarshal([]byte(dataJSON.String), &f.FlowData); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal flow data")
		}
	}
	if toolsJSON.Valid && toolsJSON.String != "" {
		if err := json.Unmarshal([]byte(toolsJSON.String), &f.ToolsUsed); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal tools used")
		}
	}
	return &f, nil
}

const auditColumns = `id, user_id, entity_type, entity_id, action, old_values,
	new_values, ip_address, user_agent, created_at`

func scanAuditEntry(row scannable) (*model.AuditEntry, error) {
	var e model.AuditEntry
	var userID sql.NullInt64
	var oldValues, newValues, ipAddress, userAgent sql.NullString

	err := row.Scan(&e.ID, &userID, &e.EntityType, &e.EntityID, &e.Action,
		&oldValues, &newValues, &ipAddress, &userAgent, &e.CreatedAt)
	if noRowErr(err) {
		return nil, errNoRow
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan audit entry")
	}

	if userID.Valid {
		e.UserID = &userID.Int64
	}
	if oldValues.Valid {
		e.OldValues = []byte(oldValues.String)
	}
	if newValues.Valid {
		e.NewValues = []byte(newValues.String)
	}
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	return &e, nil
}

// --- Placeholders and dynamic updates ---

type placeholderFunc func(idx int) string

func placeholderQuestion(int) string { return "?" }

func placeholderDollar(idx int) string { return fmt.Sprintf("$%d", idx) }

// projectUpdateClauses builds SET clauses for the non-nil fields of upd.
// Placeholders are numbered from 1 in clause order.
func projectUpdateClauses(upd *model.ProjectUpdate, ph placeholderFunc) ([]string, []any, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = "+ph(len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Priority != nil {
		add("priority", string(*upd.Priority))
	}
	if upd.EstimatedHours != nil {
		add("estimated_hours", *upd.EstimatedHours)
	}
	if upd.ExpectedSavings != nil {
		add("expected_savings", *upd.ExpectedSavings)
	}
	if upd.ImplementationCost != nil {
		add("implementation_cost", *upd.ImplementationCost)
	}
	if upd.MonthlySavings != nil {
		add("monthly_savings", *upd.MonthlySavings)
	}
	if upd.ROIPercentage != nil {
		add("roi_percentage", *upd.ROIPercentage)
	}
	if upd.PaybackMonths != nil {
		add("payback_months", *upd.PaybackMonths)
	}
	if upd.RecommendedTools != nil {
		toolsJSON, err := json.Marshal(*upd.RecommendedTools)
		if err != nil {
			return nil, nil, eris.Wrap(err, "store: marshal recommended tools")
		}
		add("recommended_tools", string(toolsJSON))
	}
	if upd.Deadline != nil {
		add("deadline", *upd.Deadline)
	}
	return sets, args, nil
}

func joinClauses(sets []string) string {
	return strings.Join(sets, ", ")
}

// nullableString maps empty byte slices to NULL.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// nullEmpty maps empty strings to NULL.
func nullEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// marshalStrings serializes a string slice for a JSON text column, NULL when
// the slice is empty.
func marshalStrings(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
