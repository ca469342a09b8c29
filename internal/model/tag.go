package model

import "time"

// Tag is a global label that can be attached to projects.
type Tag struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Color             string    `json:"color"`
	Description       string    `json:"description,omitempty"`
	CreatedBy         *int64    `json:"created_by,omitempty"`
	CreatedByUsername string    `json:"created_by_username,omitempty"`
	UsageCount        int       `json:"usage_count"`
	CreatedAt         time.Time `json:"created_at"`
}
