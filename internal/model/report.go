package model

import "time"

// RecommendationType classifies a recommendation
type RecommendationType string

const (
	TypeOpenSource          RecommendationType = "open_source"
	TypeFreeTier            RecommendationType = "free_tier"
	TypeRightSizing         RecommendationType = "right_sizing"
	TypeOptimization        RecommendationType = "optimization"
	TypeAlternativeProvider RecommendationType = "alternative_provider"
	TypeNetworkOptimization RecommendationType = "network_optimization"
)

// Level is a low/medium/high rating used for effort and risk
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Recommendation is one suggested cost-reduction action. Values are taken
// from model output as-is; enums are not validated.
type Recommendation struct {
	Title                string             `json:"title"`
	Service              string             `json:"service"`
	CurrentCost          Amount             `json:"current_cost"`
	PotentialSavings     Amount             `json:"potential_savings"`
	RecommendationType   RecommendationType `json:"recommendation_type"`
	Description          string             `json:"description"`
	ImplementationEffort Level              `json:"implementation_effort"`
	RiskLevel            Level              `json:"risk_level"`
	Steps                StringList         `json:"steps"`
	CloudProviders       StringList         `json:"cloud_providers"`
}

// MonthlyCost is the billed total for one month
type MonthlyCost struct {
	Month       string `json:"month"`
	Cost        Amount `json:"cost"`
	RecordCount int    `json:"record_count"`
}

// Analysis is the locally computed budget breakdown of a billing set
type Analysis struct {
	TotalMonthlyCost Amount            `json:"total_monthly_cost"`
	Budget           Amount            `json:"budget"`
	BudgetVariance   Amount            `json:"budget_variance"`
	IsOverBudget     bool              `json:"is_over_budget"`
	ServiceCosts     map[string]Amount `json:"service_costs"`
	HighCostServices map[string]Amount `json:"high_cost_services"`
	MonthlyCosts     []MonthlyCost     `json:"monthly_costs,omitempty"`
}

// Summary totals the recommendations against the analysis
type Summary struct {
	TotalPotentialSavings     Amount `json:"total_potential_savings"`
	SavingsPercentage         Amount `json:"savings_percentage"`
	RecommendationsCount      int    `json:"recommendations_count"`
	HighImpactRecommendations int    `json:"high_impact_recommendations"`
}

// Report is the final artifact of the recommendation stage
type Report struct {
	ProjectName     string           `json:"project_name"`
	Analysis        Analysis         `json:"analysis"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`

	ReportID     string    `json:"report_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Model        string    `json:"model,omitempty"`
	InputsDigest string    `json:"inputs_digest,omitempty"`
}
