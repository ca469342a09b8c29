package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT UNIQUE NOT NULL,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	company_name  TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	last_login    DATETIME,
	is_active     BOOLEAN NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS user_recommendations (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id             INTEGER NOT NULL REFERENCES users(id),
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	priority            TEXT NOT NULL DEFAULT 'Média',
	expected_savings    TEXT,
	estimated_hours     INTEGER,
	implementation_time TEXT,
	roi_percentage      REAL,
	tools               TEXT,
	flow_example        TEXT,
	process_description TEXT NOT NULL,
	ai_generated        BOOLEAN NOT NULL DEFAULT 0,
	external_ai_used    BOOLEAN NOT NULL DEFAULT 0,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS user_projects (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id             INTEGER NOT NULL REFERENCES users(id),
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'Pendente',
	priority            TEXT NOT NULL DEFAULT 'Média',
	estimated_hours     INTEGER,
	expected_savings    TEXT,
	implementation_cost REAL,
	monthly_savings     REAL,
	roi_percentage      REAL,
	payback_months      INTEGER,
	recommended_tools   TEXT,
	deadline            TEXT,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS project_comments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL REFERENCES user_projects(id),
	user_id    INTEGER NOT NULL REFERENCES users(id),
	comment    TEXT NOT NULL,
	parent_id  INTEGER REFERENCES project_comments(id),
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	is_deleted BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tags (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT UNIQUE NOT NULL,
	color       TEXT NOT NULL DEFAULT '#007bff',
	description TEXT,
	created_by  INTEGER REFERENCES users(id),
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS project_tags (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL REFERENCES user_projects(id),
	tag_id     INTEGER NOT NULL REFERENCES tags(id),
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(project_id, tag_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER REFERENCES users(id),
	entity_type TEXT NOT NULL,
	entity_id   INTEGER NOT NULL,
	action      TEXT NOT NULL,
	old_values  TEXT,
	new_values  TEXT,
	ip_address  TEXT,
	user_agent  TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS automation_flows (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER NOT NULL REFERENCES users(id),
	project_id       INTEGER REFERENCES user_projects(id),
	title            TEXT NOT NULL,
	description      TEXT,
	flow_type        TEXT NOT NULL,
	flow_data        TEXT NOT NULL,
	tools_used       TEXT,
	difficulty_level TEXT NOT NULL DEFAULT 'Médio',
	estimated_time   TEXT,
	is_template      BOOLEAN NOT NULL DEFAULT 0,
	is_public        BOOLEAN NOT NULL DEFAULT 0,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash, companyName string) (*model.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, company_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, passwordHash, companyName, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert user %s", username)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: user last insert id")
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

const userColumns = `id, username, email, password_hash, company_name, created_at, last_login, is_active`

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), userID)
	return eris.Wrapf(err, "sqlite: touch last login %d", userID)
}

// --- Sessions ---

func (s *SQLiteStore) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert session")
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`, token)

	var sess model.Session
	err := row.Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get session")
	}
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return eris.Wrap(err, "sqlite: delete session")
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired sessions")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// --- Recommendations ---

func (s *SQLiteStore) SaveRecommendations(ctx context.Context, userID int64, description string, records []model.RecommendationRecord) (int64, error) {
	now := time.Now().UTC()
	var lastID int64
	for _, rec := range records {
		toolsJSON, err := json.Marshal(rec.Tools)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal tools")
		}
		var flowJSON []byte
		if rec.FlowExample != nil {
			flowJSON, err = json.Marshal(rec.FlowExample)
			if err != nil {
				return 0, eris.Wrap(err, "sqlite: marshal flow")
			}
		}

		res, err := s.db.ExecContext(ctx,
			`INSERT INTO user_recommendations
			 (user_id, title, description, priority, expected_savings, estimated_hours,
			  implementation_time, roi_percentage, tools, flow_example,
			  process_description, ai_generated, external_ai_used, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, rec.Title, rec.Description, string(rec.Priority), rec.ExpectedSavings,
			rec.EstimatedHours, rec.ImplementationTime, rec.ROIPercentage,
			string(toolsJSON), nullableString(flowJSON), description,
			true, rec.Provenance == model.ProvenanceExternalAI, now,
		)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: insert recommendation")
		}
		lastID, err = res.LastInsertId()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: recommendation last insert id")
		}
	}
	return lastID, nil
}

const recommendationColumns = `id, user_id, title, description, priority, expected_savings,
	estimated_hours, implementation_time, roi_percentage, tools, flow_example,
	process_description, ai_generated, external_ai_used, created_at`

func (s *SQLiteStore) ListRecommendations(ctx context.Context, userID int64, limit int) ([]model.StoredRecommendation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recommendations")
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
	return recs, eris.Wrap(rows.Err(), "sqlite: list recommendations iterate")
}

func (s *SQLiteStore) GetRecommendation(ctx context.Context, userID, id int64) (*model.StoredRecommendation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recommendationColumns+` FROM user_recommendations WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	rec, err := scanStoredRecommendation(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) DeleteRecommendation(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_recommendations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete recommendation %d", id)
	}
	n, err := res.RowsAffected()
	return n > 0, eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) DeleteAllRecommendations(ctx context.Context, userID int64) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_recommendations WHERE user_id = ?`, userID)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete all recommendations")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// --- Projects ---

const projectColumns = `id, user_id, title, description, status, priority, estimated_hours,
	expected_savings, implementation_cost, monthly_savings, roi_percentage,
	payback_months, recommended_tools, deadline, created_at, updated_at`

func (s *SQLiteStore) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = model.StatusPending
	}
	if p.Priority == "" {
		p.Priority = model.PriorityMedium
	}
	toolsJSON, err := marshalStrings(p.RecommendedTools)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal recommended tools")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_projects
		 (user_id, title, description, status, priority, estimated_hours, expected_savings,
		  implementation_cost, monthly_savings, roi_percentage, payback_months,
		  recommended_tools, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Title, p.Description, string(p.Status), string(p.Priority),
		p.EstimatedHours, p.ExpectedSavings, p.ImplementationCost, p.MonthlySavings,
		p.ROIPercentage, p.PaybackMonths, toolsJSON, nullEmpty(p.Deadline), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: project last insert id")
	}

	out := *p
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, userID int64) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM user_projects WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
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
	return projects, eris.Wrap(rows.Err(), "sqlite: list projects iterate")
}

func (s *SQLiteStore) GetProject(ctx context.Context, userID, id int64) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM user_projects WHERE id = ? AND user_id = ?`, id, userID)
	p, err := scanProject(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return p, err
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, userID, id int64, upd *model.ProjectUpdate) (bool, error) {
	sets, args, err := projectUpdateClauses(upd, placeholderQuestion)
	if err != nil {
		return false, err
	}
	if len(sets) == 0 {
		return false, nil
	}

	query := `UPDATE user_projects SET ` + joinClauses(sets) + `, updated_at = ? WHERE id = ? AND user_id = ?`
	args = append(args, time.Now().UTC(), id, userID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update project %d", id)
	}
	n, err := res.RowsAffected()
	return n > 0, eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, userID, id int64) (bool, error) {
	// Comments and tag links go first to keep the FK constraints satisfied.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM project_comments WHERE project_id = ?`, id); err != nil {
		return false, eris.Wrapf(err, "sqlite: delete project comments %d", id)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM project_tags WHERE project_id = ?`, id); err != nil {
		return false, eris.Wrapf(err, "sqlite: delete project tags %d", id)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete project %d", id)
	}
	n, err := res.RowsAffected()
	return n > 0, eris.Wrap(err, "sqlite: rows affected")
}

// --- Comments ---

func (s *SQLiteStore) AddComment(ctx context.Context, projectID, userID int64, text string, parentID *int64) (*model.Comment, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO project_comments (project_id, user_id, comment, parent_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, userID, text, parentID, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert comment")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: comment last insert id")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT pc.id, pc.project_id, pc.user_id, pc.comment, pc.parent_id,
		        u.username, u.company_name, pc.created_at, pc.updated_at
		 FROM project_comments pc JOIN users u ON pc.user_id = u.id
		 WHERE pc.id = ?`, id)
	return scanComment(row)
}

func (s *SQLiteStore) ListComments(ctx context.Context, projectID int64) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pc.id, pc.project_id, pc.user_id, pc.comment, pc.parent_id,
		        u.username, u.company_name, pc.created_at, pc.updated_at
		 FROM project_comments pc JOIN users u ON pc.user_id = u.id
		 WHERE pc.project_id = ? AND pc.is_deleted = 0
		 ORDER BY pc.created_at ASC, pc.id ASC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list comments")
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
	return comments, eris.Wrap(rows.Err(), "sqlite: list comments iterate")
}

// --- Tags ---

func (s *SQLiteStore) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.color, t.description, t.created_by, u.username,
		        COUNT(pt.project_id) AS usage_count, t.created_at
		 FROM tags t
		 LEFT JOIN users u ON t.created_by = u.id
		 LEFT JOIN project_tags pt ON t.id = pt.tag_id
		 GROUP BY t.id
		 ORDER BY t.name ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tags")
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		var desc, username sql.NullString
		var createdBy sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &desc, &createdBy, &username, &t.UsageCount, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tag")
		}
		t.Description = desc.String
		t.CreatedByUsername = username.String
		if createdBy.Valid {
			t.CreatedBy = &createdBy.Int64
		}
		tags = append(tags, t)
	}
	return tags, eris.Wrap(rows.Err(), "sqlite: list tags iterate")
}

// defaultTags are seeded once for a fresh database.
var defaultTags = []model.Tag{
	{Name: "automação", Color: "#007bff", Description: "Projetos de automação"},
	{Name: "ia", Color: "#28a745", Description: "Inteligência artificial"},
	{Name: "roi", Color: "#dc3545", Description: "Alto retorno sobre investimento"},
	{Name: "urgente", Color: "#ffc107", Description: "Prioridade alta"},
	{Name: "inovação", Color: "#17a2b8", Description: "Projetos inovadores"},
}

func (s *SQLiteStore) SeedTags(ctx context.Context, createdBy int64) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count); err != nil {
		return eris.Wrap(err, "sqlite: count tags")
	}
	if count > 0 {
		return nil
	}
	for _, t := range defaultTags {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO tags (name, color, description, created_by) VALUES (?, ?, ?, ?)`,
			t.Name, t.Color, t.Description, createdBy,
		); err != nil {
			return eris.Wrapf(err, "sqlite: seed tag %s", t.Name)
		}
	}
	return nil
}

// --- Audit ---

func (s *SQLiteStore) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (user_id, entity_type, entity_id, action, old_values, new_values, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.EntityType, entry.EntityID, entry.Action,
		nullableString(entry.OldValues), nullableString(entry.NewValues),
		nullEmpty(entry.IPAddress), nullEmpty(entry.UserAgent), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: append audit")
}

func (s *SQLiteStore) ListAudit(ctx context.Context, userID int64, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit")
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit entry")
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list audit rows")
}

// --- Automation flows ---

const flowColumns = `id, user_id, project_id, title, description, flow_type, flow_data,
	tools_used, difficulty_level, estimated_time, is_template, is_public, created_at, updated_at`

func (s *SQLiteStore) CreateFlow(ctx context.Context, f *model.AutomationFlow) (*model.AutomationFlow, error) {
	now := time.Now().UTC()
	if f.Difficulty == "" {
		f.Difficulty = model.DifficultyMedium
	}
	dataJSON, err := json.Marshal(f.FlowData)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal flow data")
	}
	toolsJSON, err := marshalStrings(f.ToolsUsed)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal tools used")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO automation_flows
		 (user_id, project_id, title, description, flow_type, flow_data, tools_used,
		  difficulty_level, estimated_time, is_template, is_public, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.UserID, f.ProjectID, f.Title, nullEmpty(f.Description), f.FlowType,
		string(dataJSON), toolsJSON, string(f.Difficulty), nullEmpty(f.EstimatedTime),
		f.IsTemplate, f.IsPublic, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert flow")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: flow last insert id")
	}

	out := *f
	out.ID = id
	out.CreatedAt = now
	out.UpdatedAt = now
	return &out, nil
}

func (s *SQLiteStore) ListFlows(ctx context.Context, userID int64, filter FlowFilter) ([]model.AutomationFlow, error) {
	query := `SELECT ` + flowColumns + ` FROM automation_flows WHERE (user_id = ? OR is_public = 1)`
	args := []any{userID}
	if filter.TemplatesOnly {
		query += ` AND is_template = 1`
	}
	if filter.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *filter.ProjectID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list flows")
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
	return flows, eris.Wrap(rows.Err(), "sqlite: list flows iterate")
}

func (s *SQLiteStore) GetFlow(ctx context.Context, userID, id int64) (*model.AutomationFlow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+flowColumns+` FROM automation_flows WHERE id = ? AND (user_id = ? OR is_public = 1)`,
		id, userID,
	)
	f, err := scanFlow(row)
	if eris.Is(err, errNoRow) {
		return nil, nil
	}
	return f, err
}

func (s *SQLiteStore) UpdateFlow(ctx context.Context, userID int64, f *model.AutomationFlow) (bool, error) {
	dataJSON, err := json.Marshal(f.FlowData)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal flow data")
	}
	toolsJSON, err := marshalStrings(f.ToolsUsed)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal tools used")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE automation_flows SET title = ?, description = ?, flow_type = ?, flow_data = ?,
		 tools_used = ?, difficulty_level = ?, estimated_time = ?, is_template = ?, is_public = ?,
		 updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		f.Title, nullEmpty(f.Description), f.FlowType, string(dataJSON), toolsJSON,
		string(f.Difficulty), nullEmpty(f.EstimatedTime), f.IsTemplate, f.IsPublic,
		time.Now().UTC(), f.ID, userID,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update flow %d", f.ID)
	}
	n, err := res.RowsAffected()
	return n > 0, eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) DeleteFlow(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM automation_flows WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete flow %d", id)
	}
	n, err := res.RowsAffected()
	return n > 0, eris.Wrap(err, "sqlite: rows affected")
}

// --- Analytics ---

func (s *SQLiteStore) CountRecommendations(ctx context.Context, userID int64) (int, error) {
	return s.countQuery(ctx, `SELECT COUNT(*) FROM user_recommendations WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) CountProjects(ctx context.Context, userID int64) (int, error) {
	return s.countQuery(ctx, `SELECT COUNT(*) FROM user_projects WHERE user_id = ?`, userID)
}

func (s *SQLiteStore) ProjectsByStatus(ctx context.Context, userID int64) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM user_projects WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: projects by status")
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status count")
		}
		counts = append(counts, sc)
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: projects by status iterate")
}

func (s *SQLiteStore) AverageROI(ctx context.Context, userID int64) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(roi_percentage) FROM user_projects WHERE user_id = ? AND roi_percentage IS NOT NULL`,
		userID,
	).Scan(&avg)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: average roi")
	}
	return avg.Float64, nil
}

func (s *SQLiteStore) TotalMonthlySavings(ctx context.Context, userID int64) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(monthly_savings) FROM user_projects WHERE user_id = ? AND monthly_savings IS NOT NULL`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: total monthly savings")
	}
	return total.Float64, nil
}

func (s *SQLiteStore) countQuery(ctx context.Context, query string, userID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count")
	}
	return n, nil
}
