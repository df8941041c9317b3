package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/zhaobenny/costopt/internal/model"
)

const profilePromptTemplate = `Return ONLY valid JSON.
Do not include explanations, markdown, or comments.

Produce a JSON object with exactly this shape:

{
  "name": "",
  "budget_inr_per_month": 0,
  "description": "",
  "tech_stack": {
    "frontend": "",
    "backend": "",
    "database": "",
    "proxy": "",
    "hosting": ""
  },
  "non_functional_requirements": []
}

Project Description:
%s
`

const billingPromptTemplate = `You simulate cloud billing exports.

Generate 12 to 14 realistic synthetic cloud billing records for the project
profile below.

Rules:
- Output ONLY valid JSON
- The output must be a JSON array of objects
- Stay cloud-agnostic: do not name AWS, Azure or GCP
- Total cost should roughly respect the monthly budget
- Use realistic services: compute, database, storage, bandwidth, load balancer
- Use realistic region codes such as ap-south-1, us-east-1, eu-west-1
- Spread the records across several months
- All costs are in INR

Every record must follow this format exactly:

{
  "month": "YYYY-MM",
  "service": "Compute",
  "resource_id": "vm-example-01",
  "region": "ap-south-1",
  "usage_type": "Linux (on-demand)",
  "usage_quantity": 720,
  "unit": "hours",
  "cost_inr": 900,
  "desc": "Short description"
}

Project Profile:
%s
`

const recommendationPromptTemplate = `You are a cloud cost optimization expert.

Generate 6 to 8 cost optimization recommendations as JSON objects.

Rules:
- Output ONLY valid JSON
- The output must be a JSON array of objects
- Every recommendation must follow this schema exactly:

{
  "title": "",
  "service": "",
  "current_cost": 0,
  "potential_savings": 0,
  "recommendation_type": "open_source | free_tier | right_sizing | optimization | alternative_provider | network_optimization",
  "description": "",
  "implementation_effort": "low | medium | high",
  "risk_level": "low | medium | high",
  "steps": ["", "", ""],
  "cloud_providers": ["AWS", "Azure", "GCP"]
}

Guidelines:
- Recommendations must work across multiple clouds
- Include open-source and free-tier options where they apply
- Prioritize the high-cost services
- Keep savings realistic: potential_savings must not exceed current_cost
- No markdown, no explanations, no extra text

Project Profile:
%s

Billing Summary:
Total Cost: %s
Service Costs:
%s
`

func profilePrompt(description string) string {
	return fmt.Sprintf(profilePromptTemplate, description)
}

func billingPrompt(p *model.ProjectProfile) (string, error) {
	profile, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(billingPromptTemplate, profile), nil
}

func recommendationPrompt(p *model.ProjectProfile, a model.Analysis) (string, error) {
	profile, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	costs, err := json.MarshalIndent(a.ServiceCosts, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(recommendationPromptTemplate, profile, a.TotalMonthlyCost.String(), costs), nil
}
