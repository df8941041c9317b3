package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zhaobenny/costopt/internal/model"
)

// highImpactRatio is the share of the average service cost a single
// recommendation must save to count as high impact
const highImpactRatio = 0.5

// Result is a budget analysis plus the threshold values derived from it
type Result struct {
	model.Analysis
	Total          decimal.Decimal
	AvgServiceCost decimal.Decimal
}

// ByService sums costs per service and returns the per-service totals and
// the grand total
func ByService(records []model.BillingRecord) (map[string]decimal.Decimal, decimal.Decimal) {
	costs := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, r := range records {
		key := r.ServiceName()
		costs[key] = costs[key].Add(r.CostINR.Decimal)
		total = total.Add(r.CostINR.Decimal)
	}

	return costs, total
}

// ByMonth sums costs per billing month, oldest first
func ByMonth(records []model.BillingRecord) []model.MonthlyCost {
	grouped := make(map[string]*model.MonthlyCost)

	for _, r := range records {
		key := r.Month
		if key == "" {
			key = "unknown"
		}

		if _, ok := grouped[key]; !ok {
			grouped[key] = &model.MonthlyCost{Month: key}
		}

		agg := grouped[key]
		agg.Cost = model.NewAmount(agg.Cost.Add(r.CostINR.Decimal))
		agg.RecordCount++
	}

	var results []model.MonthlyCost
	for _, agg := range grouped {
		results = append(results, *agg)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Month < results[j].Month
	})

	return results
}

// Analyze computes the budget analysis for a billing set. Services whose
// total is at or above the mean per-service cost are high cost.
func Analyze(records []model.BillingRecord, budget model.Amount) Result {
	costs, total := ByService(records)

	variance := total.Sub(budget.Decimal)

	n := int64(len(costs))
	if n < 1 {
		n = 1
	}
	avg := total.Div(decimal.NewFromInt(n))

	serviceCosts := make(map[string]model.Amount, len(costs))
	highCost := make(map[string]model.Amount)
	for s, c := range costs {
		serviceCosts[s] = model.NewAmount(c)
		if c.GreaterThanOrEqual(avg) {
			highCost[s] = model.NewAmount(c)
		}
	}

	return Result{
		Analysis: model.Analysis{
			TotalMonthlyCost: model.NewAmount(total),
			Budget:           model.NewAmount(budget.Decimal),
			BudgetVariance:   model.NewAmount(variance),
			IsOverBudget:     variance.IsPositive(),
			ServiceCosts:     serviceCosts,
			HighCostServices: highCost,
			MonthlyCosts:     ByMonth(records),
		},
		Total:          total,
		AvgServiceCost: avg,
	}
}

// Summarize totals recommendation savings against an analysis.
// The savings percentage is rounded to two decimal places and is zero when
// nothing was billed.
func Summarize(recs []model.Recommendation, res Result) model.Summary {
	savings := decimal.Zero
	highImpact := 0
	threshold := res.AvgServiceCost.Mul(decimal.NewFromFloat(highImpactRatio))

	for _, r := range recs {
		savings = savings.Add(r.PotentialSavings.Decimal)
		if r.PotentialSavings.GreaterThanOrEqual(threshold) {
			highImpact++
		}
	}

	pct := decimal.Zero
	if res.Total.IsPositive() {
		pct = savings.Div(res.Total).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return model.Summary{
		TotalPotentialSavings:     model.NewAmount(savings),
		SavingsPercentage:         model.NewAmount(pct),
		RecommendationsCount:      len(recs),
		HighImpactRecommendations: highImpact,
	}
}

// TopServices returns service names ordered by cost, highest first.
// Ties are broken by name so the order is stable.
func TopServices(costs map[string]model.Amount) []string {
	names := make([]string, 0, len(costs))
	for s := range costs {
		names = append(names, s)
	}

	sort.Slice(names, func(i, j int) bool {
		ci, cj := costs[names[i]], costs[names[j]]
		if !ci.Equal(cj.Decimal) {
			return ci.GreaterThan(cj.Decimal)
		}
		return names[i] < names[j]
	})

	return names
}
