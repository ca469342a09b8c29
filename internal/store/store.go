// Package store provides the persistence layer: a Store interface with
// SQLite (primary) and Postgres implementations selected by configuration.
package store

import (
	"context"
	"time"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// StatusCount is one (status, count) aggregation row.
type StatusCount struct {
	Status model.ProjectStatus `json:"status"`
	Count  int                 `json:"count"`
}

// FlowFilter narrows flow listings.
type FlowFilter struct {
	TemplatesOnly bool
	ProjectID     *int64
}

// Store defines the persistence operations used by the application.
type Store interface {
	// Users
	CreateUser(ctx context.Context, username, email, passwordHash, companyName string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	TouchLastLogin(ctx context.Context, userID int64) error

	// Sessions
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error)
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Recommendations. One row is appended per record; rows are never
	// mutated or deduplicated. SaveRecommendations returns the id of the
	// last row inserted.
	SaveRecommendations(ctx context.Context, userID int64, description string, records []model.RecommendationRecord) (int64, error)
	ListRecommendations(ctx context.Context, userID int64, limit int) ([]model.StoredRecommendation, error)
	GetRecommendation(ctx context.Context, userID, id int64) (*model.StoredRecommendation, error)
	DeleteRecommendation(ctx context.Context, userID, id int64) (bool, error)
	DeleteAllRecommendations(ctx context.Context, userID int64) (int, error)

	// Projects
	CreateProject(ctx context.Context, p *model.Project) (*model.Project, error)
	ListProjects(ctx context.Context, userID int64) ([]model.Project, error)
	GetProject(ctx context.Context, userID, id int64) (*model.Project, error)
	UpdateProject(ctx context.Context, userID, id int64, upd *model.ProjectUpdate) (bool, error)
	DeleteProject(ctx context.Context, userID, id int64) (bool, error)

	// Comments
	AddComment(ctx context.Context, projectID, userID int64, text string, parentID *int64) (*model.Comment, error)
	ListComments(ctx context.Context, projectID int64) ([]model.Comment, error)

	// Tags
	ListTags(ctx context.Context) ([]model.Tag, error)
	SeedTags(ctx context.Context, createdBy int64) error

	// Audit
	AppendAudit(ctx context.Context, entry *model.AuditEntry) error
	ListAudit(ctx context.Context, userID int64, limit int) ([]model.AuditEntry, error)

	// Automation flows
	CreateFlow(ctx context.Context, f *model.AutomationFlow) (*model.AutomationFlow, error)
	ListFlows(ctx context.Context, userID int64, filter FlowFilter) ([]model.AutomationFlow, error)
	GetFlow(ctx context.Context, userID, id int64) (*model.AutomationFlow, error)
	UpdateFlow(ctx context.Context, userID int64, f *model.AutomationFlow) (bool, error)
	DeleteFlow(ctx context.Context, userID, id int64) (bool, error)

	// Analytics
	CountRecommendations(ctx context.Context, userID int64) (int, error)
	CountProjects(ctx context.Context, userID int64) (int, error)
	ProjectsByStatus(ctx context.Context, userID int64) ([]StatusCount, error)
	AverageROI(ctx context.Context, userID int64) (float64, error)
	TotalMonthlySavings(ctx context.Context, userID int64) (float64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
