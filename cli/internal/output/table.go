package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zhaobenny/costopt/internal/aggregator"
	"github.com/zhaobenny/costopt/internal/model"
)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
}

// shouldUseCompact determines if compact mode should be used
func shouldUseCompact(w io.Writer, opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return terminalWidth(w) < compactThreshold
}

// FormatNumber formats a number with thousand separators
func FormatNumber(n int64) string {
	if n == 0 {
		return "0"
	}

	str := fmt.Sprintf("%d", n)
	negative := n < 0
	if negative {
		str = str[1:]
	}

	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}

	if negative {
		return "-" + result
	}
	return result
}

// FormatINR formats an amount as rupees with two decimals
func FormatINR(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}

	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s₹%s.%02d", sign, FormatNumber(whole.IntPart()), cents)
}

// FormatPercent formats a percentage value with two decimals
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// PrintBilling prints billing records as a table
func PrintBilling(w io.Writer, records []model.BillingRecord, opts TableOptions) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No billing records.")
		return
	}

	compact := shouldUseCompact(w, opts)

	serviceWidth := len("Service")
	for _, r := range records {
		if n := len([]rune(r.ServiceName())); n > serviceWidth {
			serviceWidth = n
		}
	}
	if serviceWidth > 20 {
		serviceWidth = 20
	}

	fmt.Fprintln(w)

	if compact {
		// Compact: Month, Service, Cost
		fmt.Fprintf(w, "%-8s  %-*s  %14s\n", "Month", serviceWidth, "Service", "Cost")
		fmt.Fprintln(w, strings.Repeat("─", 8+2+serviceWidth+2+14))
		for _, r := range records {
			fmt.Fprintf(w, "%-8s  %-*s  %14s\n",
				r.Month, serviceWidth, truncate(r.ServiceName(), serviceWidth), FormatINR(r.CostINR.Decimal))
		}
	} else {
		// Full: Month, Service, Region, Usage, Unit, Cost
		fmt.Fprintf(w, "%-8s  %-*s  %-14s  %12s  %-10s  %14s\n",
			"Month", serviceWidth, "Service", "Region", "Usage", "Unit", "Cost")
		fmt.Fprintln(w, strings.Repeat("─", 8+2+serviceWidth+2+14+2+12+2+10+2+14))
		for _, r := range records {
			fmt.Fprintf(w, "%-8s  %-*s  %-14s  %12s  %-10s  %14s\n",
				r.Month,
				serviceWidth, truncate(r.ServiceName(), serviceWidth),
				truncate(r.Region, 14),
				r.UsageQuantity.String(),
				truncate(r.Unit, 10),
				FormatINR(r.CostINR.Decimal))
		}
	}

	fmt.Fprintln(w)
}

// PrintReport prints the report analysis, recommendations and summary
func PrintReport(w io.Writer, report *model.Report, opts TableOptions) {
	compact := shouldUseCompact(w, opts)
	a := report.Analysis

	fmt.Fprintf(w, "\nCost Optimization Report: %s\n", report.ProjectName)
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated %s", report.GeneratedAt.Format("2006-01-02 15:04 MST"))
		if report.Model != "" {
			fmt.Fprintf(w, " with %s", report.Model)
		}
		fmt.Fprintln(w)
	}

	// Service breakdown, highest cost first
	services := aggregator.TopServices(a.ServiceCosts)
	keyWidth := len("Service")
	for _, s := range services {
		if n := len([]rune(s)); n > keyWidth {
			keyWidth = n
		}
	}
	if keyWidth > 24 {
		keyWidth = 24
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-*s  %14s  %7s  %s\n", keyWidth, "Service", "Cost", "Share", "")
	fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+14+2+7+2+4))
	for _, s := range services {
		cost := a.ServiceCosts[s].Decimal
		share := decimal.Zero
		if a.TotalMonthlyCost.IsPositive() {
			share = cost.Div(a.TotalMonthlyCost.Decimal).Mul(decimal.NewFromInt(100))
		}
		marker := ""
		if _, ok := a.HighCostServices[s]; ok {
			marker = "high"
		}
		fmt.Fprintf(w, "%-*s  %14s  %7s  %s\n",
			keyWidth, truncate(s, keyWidth), FormatINR(cost), FormatPercent(share), marker)
	}
	fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+14+2+7+2+4))
	fmt.Fprintf(w, "%-*s  %14s\n", keyWidth, "Total", FormatINR(a.TotalMonthlyCost.Decimal))
	fmt.Fprintf(w, "%-*s  %14s\n", keyWidth, "Budget", FormatINR(a.Budget.Decimal))

	status := "within budget"
	if a.IsOverBudget {
		status = "over budget"
	}
	fmt.Fprintf(w, "%-*s  %14s  %s\n", keyWidth, "Variance", FormatINR(a.BudgetVariance.Decimal), status)

	if !compact && len(a.MonthlyCosts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-8s  %14s  %7s\n", "Month", "Cost", "Records")
		fmt.Fprintln(w, strings.Repeat("─", 8+2+14+2+7))
		for _, m := range a.MonthlyCosts {
			fmt.Fprintf(w, "%-8s  %14s  %7d\n", m.Month, FormatINR(m.Cost.Decimal), m.RecordCount)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintln(w)
		if compact {
			// Compact: Title, Savings
			titleWidth := 40
			fmt.Fprintf(w, "%-*s  %14s\n", titleWidth, "Recommendation", "Savings")
			fmt.Fprintln(w, strings.Repeat("─", titleWidth+2+14))
			for _, r := range report.Recommendations {
				fmt.Fprintf(w, "%-*s  %14s\n",
					titleWidth, truncate(r.Title, titleWidth), FormatINR(r.PotentialSavings.Decimal))
			}
		} else {
			// Full: Title, Service, Type, Savings, Effort, Risk
			titleWidth := 40
			fmt.Fprintf(w, "%-*s  %-16s  %-20s  %14s  %-6s  %-6s\n",
				titleWidth, "Recommendation", "Service", "Type", "Savings", "Effort", "Risk")
			fmt.Fprintln(w, strings.Repeat("─", titleWidth+2+16+2+20+2+14+2+6+2+6))
			for _, r := range report.Recommendations {
				fmt.Fprintf(w, "%-*s  %-16s  %-20s  %14s  %-6s  %-6s\n",
					titleWidth, truncate(r.Title, titleWidth),
					truncate(r.Service, 16),
					truncate(string(r.RecommendationType), 20),
					FormatINR(r.PotentialSavings.Decimal),
					r.ImplementationEffort,
					r.RiskLevel)
			}
		}
	}

	s := report.Summary
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Potential savings: %s (%s of total cost)\n",
		FormatINR(s.TotalPotentialSavings.Decimal), FormatPercent(s.SavingsPercentage.Decimal))
	fmt.Fprintf(w, "Recommendations: %d (%d high impact)\n", s.RecommendationsCount, s.HighImpactRecommendations)

	if compact {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "(Compact mode - expand terminal for full view)")
	}
	fmt.Fprintln(w)
}
