package model

// ProjectProfile is the structured description of a software project,
// produced by the profile stage and read by the billing and
// recommendation stages.
type ProjectProfile struct {
	Name                      string     `json:"name"`
	BudgetINRPerMonth         Amount     `json:"budget_inr_per_month"`
	Description               string     `json:"description"`
	TechStack                 TechStack  `json:"tech_stack"`
	NonFunctionalRequirements StringList `json:"non_functional_requirements"`
}

// DisplayName returns the project name, or a placeholder when the model
// left it blank
func (p *ProjectProfile) DisplayName() string {
	if p == nil || p.Name == "" {
		return "Unknown Project"
	}
	return p.Name
}
