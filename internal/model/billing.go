package model

// BillingRecord is one synthetic line item of cloud spend
type BillingRecord struct {
	Month         string `json:"month"` // YYYY-MM
	Service       string `json:"service"`
	ResourceID    string `json:"resource_id"`
	Region        string `json:"region"`
	UsageType     string `json:"usage_type"`
	UsageQuantity Amount `json:"usage_quantity"`
	Unit          string `json:"unit"`
	CostINR       Amount `json:"cost_inr"`
	Desc          string `json:"desc"`
}

// ServiceName returns the record's service, grouping unnamed records
// under "Unknown"
func (r BillingRecord) ServiceName() string {
	if r.Service == "" {
		return "Unknown"
	}
	return r.Service
}
