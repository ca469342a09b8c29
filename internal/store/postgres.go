package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// implements it too, which is what the tests inject.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT UNIQUE NOT NULL,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	company_name  TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_login    TIMESTAMPTZ,
	is_active     BOOLEAN NOT NULL DEFAULT true
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS user_recommendations (
	id                  BIGSERIAL PRIMARY KEY,
	user_id             BIGINT NOT NULL REFERENCES users(id),
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	priority            TEXT NOT NULL DEFAULT 'Média',
	expected_savings    TEXT,
	estimated_hours     INTEGER,
	implementation_time TEXT,
	roi_percentage      DOUBLE PRECISION,
	tools               JSONB,
	flow_example        JSONB,
	process_description TEXT NOT NULL,
	ai_generated        BOOLEAN NOT NULL DEFAULT false,
	external_ai_used    BOOLEAN NOT NULL DEFAULT false,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_projects (
	id                  BIGSERIAL PRIMARY KEY,
	user_id             BIGINT NOT NULL REFERENCES users(id),
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'Pendente',
	priority            TEXT NOT NULL DEFAULT 'Média',
	estimated_hours     INTEGER,
	expected_savings    TEXT,
	implementation_cost DOUBLE PRECISION,
	monthly_savings     DOUBLE PRECISION,
	roi_percentage      DOUBLE PRECISION,
	payback_months      INTEGER,
	recommended_tools   JSONB,
	deadline            TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_comments (
	id         BIGSERIAL PRIMARY KEY,
	project_id BIGINT NOT NULL REFERENCES user_projects(id),
	user_id    BIGINT NOT NULL REFERENCES users(id),
	comment    TEXT NOT NULL,
	parent_id  BIGINT REFERENCES project_comments(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	is_deleted BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS tags (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT UNIQUE NOT NULL,
	color       TEXT NOT NULL DEFAULT '#007bff',
	description TEXT,
	created_by  BIGINT REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_tags (
	id         BIGSERIAL PRIMARY KEY,
	project_id BIGINT NOT NULL REFERENCES user_projects(id),
	tag_id     BIGINT NOT NULL REFERENCES tags(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(project_id, tag_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT REFERENCES users(id),
	entity_type TEXT NOT NULL,
	entity_id   BIGINT NOT NULL,
	action      TEXT NOT NULL,
	old_values  JSONB,
	new_values  JSONB,
	ip_address  TEXT,
	user_agent  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS automation_flows (
	id               BIGSERIAL PRIMARY KEY,
	user_id          BIGINT NOT NULL REFERENCES users(id),
	project_id       BIGINT REFERENCES user_projects(id),
	title            TEXT NOT NULL,
	description      TEXT,
	flow_type        TEXT NOT NULL,
	flow_data        JSONB NOT NULL,
	tools_used       JSONB,
	difficulty_level TEXT NOT NULL DEFAULT 'Médio',
	estimated_time   TEXT,
	is_template      BOOLEAN NOT NULL DEFAULT false,
	is_public        BOOLEAN NOT NULL DEFAULT false,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
CREATE INDEX IF NOT EXISTS idx_user_recommendations_user_id ON user_recommendations(user_id);
CREATE INDEX IF NOT EXISTS idx_user_projects_user_id ON user_projects(user_id);
CREATE INDEX IF NOT EXISTS idx_user_projects_status ON user_projects(status);
CREATE INDEX IF NOT EXISTS idx_project_comments_project_id ON project_comments(project_id);
CREATE INDEX IF NOT EXISTS idx_project_tags_tag_id ON project_tags(tag_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_automation_flows_user_id ON automation_flows(user_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, username, email, passwordHash, companyName string) (*model.User, error) {
	now := time.Now().UTC()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, company_name, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		username, email, passwordHash, companyName, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert user %s", username)
	}
	return &model.User{
		ID:          id,
		Username:    username,
		Email:       email,
		CompanyName: companyName,
		CreatedAt:   now,
		IsActive:    true,
	}, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return eris.Wrapf(err, "postgres: touch last login %d", userID)
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert session")
	}
	return sess, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.pool.QueryRow(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if noRowErr(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get session")
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return eris.Wrap(err, "postgres: delete session")
}

func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired sessions")
	}
	return int(tag.RowsAffected()), nil
}

// --- Recommendations ---

func (s *PostgresStore) SaveRecommendations(ctx context.Context, userID int64, description string, records []model.RecommendationRecord) (int64, error) {
	now := time.Now().UTC()
	var lastID int64
	for _, rec := range records {
		toolsJSON, err := json.Marshal(rec.Tools)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal tools")
		}
		var flowJSON []byte
		if rec.FlowExample != nil {
			flowJSON, err = json.Marshal(rec.FlowExample)
			if err != nil {
				return 0, eris.Wrap(err, "postgres: marshal flow")
			}
		}

		err = s.pool.QueryRow(ctx,
			`INSERT INTO user_recommendations
			 (user_id, title, description, priority, expected_savings, estimated_hours,
			  implementation_time, roi_percentage, tools, flow_example,
			  process_description, ai_generated, external_ai_used, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 RETURNING id`,
			userID, rec.Title, rec.Description, string(rec.Priority), rec.ExpectedSavings,
			rec.EstimatedHours, rec.ImplementationTime, rec.ROIPercentage,
			string(toolsJSON), nullableString(flowJSON), description,
			true, rec.Provenance == model.ProvenanceExternalAI, now,
		).Scan(&lastID)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: insert recommendation")
		}
	}
	return lastID, nil
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, userID int64, limit int) ([]model.StoredRecommendation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recommendations")
	}
	defer rows.Close()

	var recs []model.StoredRecommendation
	for rows.Next() {
		r, err := scanStoredRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list recommendations iterate")
}

func (s *PostgresStore) GetRecommendation(ctx context.Context, userID, id int64) (*model.StoredRecommendation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	rec, err := scanStoredRecommendation(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return rec, err
}

func (s *PostgresStore) DeleteRecommendation(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_recommendations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete recommendation %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteAllRecommendations(ctx context.Context, userID int64) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_recommendations WHERE user_id = $1`, userID)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete all recommendations")
	}
	return int(tag.RowsAffected()), nil
}

// --- Projects ---

func (s *PostgresStore) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	if p.Priority == "" {
		p.Priority = model.PriorityMedium
	}
	toolsJSON, err := marshalStrings(p.RecommendedTools)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal recommended tools")
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO user_projects
		 (user_id, title, description, status, priority, estimated_hours, expected_savings,
		  implementation_cost, monthly_savings, roi_percentage, payback_months,
		  recommended_tools, deadline, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id`,
		p.UserID, p.Title, p.Description, string(p.Status), string(p.Priority),
		p.EstimatedHours, p.ExpectedSavings, p.ImplementationCost, p.MonthlySavings,
		p.ROIPercentage, p.PaybackMonths, toolsJSON, nullEmpty(p.Deadline), now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert project")
	}

	out := *p
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, userID int64) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM user_projects WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list projects iterate")
}

func (s *PostgresStore) GetProject(ctx context.Context, userID, id int64) (*model.Project, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM user_projects WHERE id = $1 AND user_id = $2`, id, userID)
	p, err := scanProject(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return p, err
}

func (s *PostgresStore) UpdateProject(ctx context.Context, userID, id int64, upd *model.ProjectUpdate) (bool, error) {
	sets, args, err := projectUpdateClauses(upd, placeholderDollar)
	if err != nil {
		return false, err
	}
	if len(sets) == 0 {
		return false, nil
	}

	query := `UPDATE user_projects SET ` + joinClauses(sets) +
		`, updated_at = ` + placeholderDollar(len(args)+1) +
		` WHERE id = ` + placeholderDollar(len(args)+2) +
		` AND user_id = ` + placeholderDollar(len(args)+3)
	args = append(args, time.Now().UTC(), id, userID)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update project %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteProject(ctx context.Context, userID, id int64) (bool, error) {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM project_comments WHERE project_id = $1`, id); err != nil {
		return false, eris.Wrapf(err, "postgres: delete project comments %d", id)
	}
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM project_tags WHERE project_id = $1`, id); err != nil {
		return false, eris.Wrapf(err, "postgres: delete project tags %d", id)
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete project %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

// --- Comments ---

func (s *PostgresStore) AddComment(ctx context.Context, projectID, userID int64, text string, parentID *int64) (*model.Comment, error) {
	now := time.Now().UTC()
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO project_comments (project_id, user_id, comment, parent_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		projectID, userID, text, parentID, now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert comment")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT pc.id, pc.project_id, pc.user_id, pc.comment, pc.parent_id,
		        u.username, u.company_name, pc.created_at, pc.updated_at
		 FROM project_comments pc JOIN users u ON pc.user_id = u.id
		 WHERE pc.id = $1`, id)
	return scanComment(row)
}

func (s *PostgresStore) ListComments(ctx context.Context, projectID int64) ([]model.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT pc.id, pc.project_id, pc.user_id, pc.comment, pc.parent_id,
		        u.username, u.company_name, pc.created_at, pc.updated_at
		 FROM project_comments pc JOIN users u ON pc.user_id = u.id
		 WHERE pc.project_id = $1 AND pc.is_deleted = false
		 ORDER BY pc.created_at ASC, pc.id ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list comments")
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, eris.Wrap(rows.Err(), "postgres: list comments iterate")
}

// --- Tags ---

func (s *PostgresStore) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.name, t.color, t.description, t.created_by, u.username,
		        COUNT(pt.project_id) AS usage_count, t.created_at
		 FROM tags t
		 LEFT JOIN users u ON t.created_by = u.id
		 LEFT JOIN project_tags pt ON t.id = pt.tag_id
		 GROUP BY t.id, u.username
		 ORDER BY t.name ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tags")
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		var desc, username *string
		var createdBy *int64
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &desc, &createdBy, &username, &t.UsageCount, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tag")
		}
		if desc != nil {
			t.Description = *desc
		}
		if username != nil {
			t.CreatedByUsername = *username
		}
		t.CreatedBy = createdBy
		tags = append(tags, t)
	}
	return tags, eris.Wrap(rows.Err(), "postgres: list tags iterate")
}

func (s *PostgresStore) SeedTags(ctx context.Context, createdBy int64) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count); err != nil {
		return eris.Wrap(err, "postgres: count tags")
	}
	if count > 0 {
		return nil
	}
	for _, t := range defaultTags {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO tags (name, color, description, created_by) VALUES ($1, $2, $3, $4)`,
			t.Name, t.Color, t.Description, createdBy,
		); err != nil {
			return eris.Wrapf(err, "postgres: seed tag %s", t.Name)
		}
	}
	return nil
}

// --- Audit ---

func (s *PostgresStore) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_log (user_id, entity_type, entity_id, action, old_values, new_values, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.UserID, entry.EntityType, entry.EntityID, entry.Action,
		nullableString(entry.OldValues), nullableString(entry.NewValues),
		nullEmpty(entry.IPAddress), nullEmpty(entry.UserAgent), time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: append audit")
}

func (s *PostgresStore) ListAudit(ctx context.Context, userID int64, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit")
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit entry")
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list audit rows")
}

// --- Automation flows ---

func (s *PostgresStore) CreateFlow(ctx context.Context, f *model.AutomationFlow) (*model.AutomationFlow, error) {
	now := time.Now().UTC()
	if f.Difficulty == "" {
		f.Difficulty = model.DifficultyMedium
	}
	dataJSON, err := json.Marshal(f.FlowData)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal flow data")
	}
	toolsJSON, err := marshalStrings(f.ToolsUsed)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal tools used")
	}

	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO automation_flows
		 (user_id, project_id, title, description, flow_type, flow_data, tools_used,
		  difficulty_level, estimated_time, is_template, is_public, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		f.UserID, f.ProjectID, f.Title, nullEmpty(f.Description), f.FlowType,
		string(dataJSON), toolsJSON, string(f.Difficulty), nullEmpty(f.EstimatedTime),
		f.IsTemplate, f.IsPublic, now, now,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert flow")
	}

	out := *f
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (s *PostgresStore) ListFlows(ctx context.Context, userID int64, filter FlowFilter) ([]model.AutomationFlow, error) {
	query := `SELECT ` + flowColumns + ` FROM automation_flows WHERE (user_id = $1 OR is_public = true)`
	args := []any{userID}
	if filter.TemplatesOnly {
		query += ` AND is_template = true`
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += ` AND project_id = ` + placeholderDollar(len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list flows")
	}
	defer rows.Close()

	var flows []model.AutomationFlow
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, *f)
	}
	return flows, eris.Wrap(rows.Err(), "postgres: list flows iterate")
}

func (s *PostgresStore) GetFlow(ctx context.Context, userID, id int64) (*model.AutomationFlow, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+flowColumns+` FROM automation_flows WHERE id = $1 AND (user_id = $2 OR is_public = true)`,
		id, userID,
	)
	f, err := scanFlow(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return f, err
}

func (s *PostgresStore) UpdateFlow(ctx context.Context, userID int64, f *model.AutomationFlow) (bool, error) {
	dataJSON, err := json.Marshal(f.FlowData)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal flow data")
	}
	toolsJSON, err := marshalStrings(f.ToolsUsed)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal tools used")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE automation_flows SET title = $1, description = $2, flow_type = $3, flow_data = $4,
		 tools_used = $5, difficulty_level = $6, estimated_time = $7, is_template = $8, is_public = $9,
		 updated_at = $10
		 WHERE id = $11 AND user_id = $12`,
		f.Title, nullEmpty(f.Description), f.FlowType, string(dataJSON), toolsJSON,
		string(f.Difficulty), nullEmpty(f.EstimatedTime), f.IsTemplate, f.IsPublic,
		time.Now().UTC(), f.ID, userID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update flow %d", f.ID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteFlow(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM automation_flows WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete flow %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

// --- Analytics ---

func (s *PostgresStore) CountRecommendations(ctx context.Context, userID int64) (int, error) {
	return s.countQuery(ctx, `SELECT COUNT(*) FROM user_recommendations WHERE user_id = $1`, userID)
}

func (s *PostgresStore) CountProjects(ctx context.Context, userID int64) (int, error) {
	return s.countQuery(ctx, `SELECT COUNT(*) FROM user_projects WHERE user_id = $1`, userID)
}

func (s *PostgresStore) ProjectsByStatus(ctx context.Context, userID int64) ([]StatusCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM user_projects WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: projects by status")
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status count")
		}
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "postgres: projects by status iterate")
}

func (s *PostgresStore) AverageROI(ctx context.Context, userID int64) (float64, error) {
	var avg *float64
	err := s.pool.QueryRow(ctx,
		`SELECT AVG(roi_percentage) FROM user_projects WHERE user_id = $1 AND roi_percentage IS NOT NULL`,
		userID,
	).Scan(&avg)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: average roi")
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (s *PostgresStore) TotalMonthlySavings(ctx context.Context, userID int64) (float64, error) {
	var total *float64
	err := s.pool.QueryRow(ctx,
		`SELECT SUM(monthly_savings) FROM user_projects WHERE user_id = $1 AND monthly_savings IS NOT NULL`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: total monthly savings")
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (s *PostgresStore) countQuery(ctx context.Context, query string, userID int64) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count")
	}
	return n, nil
}
