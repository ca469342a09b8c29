package model

import "time"

// Priority levels used across recommendations and projects. Values are the
// Portuguese labels stored in the database and returned by the API.
type Priority string

const (
	PriorityHigh   Priority = "Alta"
	PriorityMedium Priority = "Média"
	PriorityLow    Priority = "Baixa"
)

// Provenance indicates which path produced a recommendation.
type Provenance string

const (
	// ProvenanceExternalAI marks records parsed from a syntactically valid
	// external generation response.
	ProvenanceExternalAI Provenance = "external_ai"
	// ProvenanceFallback marks records produced by the local keyword-rule
	// generator.
	ProvenanceFallback Provenance = "fallback_simulation"
)

// CostClass classifies a tool's cost.
type CostClass string

const (
	CostFree CostClass = "Gratuito"
	CostPaid CostClass = "Pago"
)

// Difficulty classifies a tool's adoption difficulty.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Fácil"
	DifficultyMedium   Difficulty = "Médio"
	DifficultyAdvanced Difficulty = "Avançado"
)

// Tool is one recommended automation tool. No uniqueness constraint applies
// across the tools of a single recommendation.
type Tool struct {
	Name        string     `json:"name" yaml:"name"`
	Category    string     `json:"category" yaml:"category"`
	Description string     `json:"description" yaml:"description"`
	Cost        CostClass  `json:"cost" yaml:"cost"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Website     string     `json:"website" yaml:"website"`
	Pricing     string     `json:"pricing" yaml:"pricing"`
	SetupTime   string     `json:"setup_time" yaml:"setup_time"`
}

// RecommendationRecord is the unit produced by either generation path.
// Ordinal IDs are unique within one response, 1-based, in emission order.
type RecommendationRecord struct {
	ID                 int          `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Priority           Priority     `json:"priority"`
	EstimatedHours     int          `json:"estimated_hours,omitempty"`
	ExpectedSavings    string       `json:"expected_savings,omitempty"`
	ImplementationTime string       `json:"implementation_time,omitempty"`
	ROIPercentage      float64      `json:"roi_percentage,omitempty"`
	Tools              []Tool       `json:"tools"`
	FlowExample        *FlowDiagram `json:"flow_example,omitempty"`
	Provenance         Provenance   `json:"-"`
}

// StoredRecommendation is a persisted recommendation row, keyed by an
// auto-incrementing id and owned by a user.
type StoredRecommendation struct {
	ID                 int64        `json:"id"`
	UserID             int64        `json:"-"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Priority           Priority     `json:"priority"`
	EstimatedHours     int          `json:"estimated_hours,omitempty"`
	ExpectedSavings    string       `json:"expected_savings,omitempty"`
	ImplementationTime string       `json:"implementation_time,omitempty"`
	ROIPercentage      float64      `json:"roi_percentage,omitempty"`
	Tools              []Tool       `json:"tools"`
	FlowExample        *FlowDiagram `json:"flow_example,omitempty"`
	ProcessDescription string       `json:"process_description"`
	AIGenerated        bool         `json:"ai_generated"`
	ExternalAIUsed     bool         `json:"external_ai_used"`
	CreatedAt          time.Time    `json:"created_at"`
}
