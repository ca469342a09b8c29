package model

import "time"

// Comment is a threaded comment on a project. Username and CompanyName are
// joined from the author row on read.
type Comment struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	UserID      int64     `json:"user_id"`
	Comment     string    `json:"comment"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	Username    string    `json:"username"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
