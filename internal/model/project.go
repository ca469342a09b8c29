package model

import "time"

// ProjectStatus is the workflow state of an improvement project.
type ProjectStatus string

const (
	StatusPending    ProjectStatus = "Pendente"
	StatusInProgress ProjectStatus = "Em Andamento"
	StatusComplete   ProjectStatus = "Concluído"
	StatusCanceled   ProjectStatus = "Cancelado"
)

// Project is an automation improvement project tracked by a user.
type Project struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"-"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Status             ProjectStatus `json:"status"`
	Priority           Priority      `json:"priority"`
	EstimatedHours     *int          `json:"estimated_hours,omitempty"`
	ExpectedSavings    string        `json:"expected_savings,omitempty"`
	ImplementationCost *float64      `json:"implementation_cost,omitempty"`
	MonthlySavings     *float64      `json:"monthly_savings,omitempty"`
	ROIPercentage      *float64      `json:"roi_percentage,omitempty"`
	PaybackMonths      *int          `json:"payback_months,omitempty"`
	RecommendedTools   []string      `json:"recommended_tools,omitempty"`
	Deadline           string        `json:"deadline,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// ProjectUpdate carries the mutable project fields for a partial update.
// Nil pointers mean "leave unchanged".
type ProjectUpdate struct {
	Title              *string        `json:"title,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Status             *ProjectStatus `json:"status,omitempty"`
	Priority           *Priority      `json:"priority,omitempty"`
	EstimatedHours     *int           `json:"estimated_hours,omitempty"`
	ExpectedSavings    *string        `json:"expected_savings,omitempty"`
	ImplementationCost *float64       `json:"implementation_cost,omitempty"`
	MonthlySavings     *float64       `json:"monthly_savings,omitempty"`
	ROIPercentage      *float64       `json:"roi_percentage,omitempty"`
	PaybackMonths      *int           `json:"payback_months,omitempty"`
	RecommendedTools   *[]string      `json:"recommended_tools,omitempty"`
	Deadline           *string        `json:"deadline,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u *ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.EstimatedHours == nil && u.ExpectedSavings == nil &&
		u.ImplementationCost == nil && u.MonthlySavings == nil &&
		u.ROIPercentage == nil && u.PaybackMonths == nil &&
		u.RecommendedTools == nil && u.Deadline == nil
}
