package model

import "time"

// AutomationFlow is a saved node/edge automation diagram, optionally linked
// to a project. Template flows (IsTemplate) are listed for reuse.
type AutomationFlow struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"-"`
	ProjectID     *int64     `json:"project_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	FlowType      string     `json:"flow_type"`
	FlowData      FlowData   `json:"flow_data"`
	ToolsUsed     []string   `json:"tools_used,omitempty"`
	Difficulty    Difficulty `json:"difficulty_level"`
	EstimatedTime string     `json:"estimated_time,omitempty"`
	IsTemplate    bool       `json:"is_template"`
	IsPublic      bool       `json:"is_public"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
