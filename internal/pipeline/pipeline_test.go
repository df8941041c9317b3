package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhaobenny/costopt/internal/extract"
	"github.com/zhaobenny/costopt/internal/llm"
	"github.com/zhaobenny/costopt/internal/model"
	"github.com/zhaobenny/costopt/internal/store"
)

// fakeClient replays canned replies in order and records prompts
type fakeClient struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("fakeClient: no reply queued")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

const profileReply = "Here you go:\n```json\n" + `{
  "name": "ShopKart",
  "budget_inr_per_month": 1000,
  "description": "Grocery delivery",
  "tech_stack": {"frontend": "React", "backend": "Go", "database": "Postgres", "proxy": "nginx", "hosting": "VM"},
  "non_functional_requirements": ["99.9% uptime"]
}` + "\n```"

const billingReply = `[
  {"month": "2024-01", "service": "A", "resource_id": "vm-1", "region": "ap-south-1", "usage_type": "on-demand", "usage_quantity": 720, "unit": "hours", "cost_inr": 900, "desc": "app"},
  {"month": "2024-01", "service": "B", "resource_id": "db-1", "region": "ap-south-1", "usage_type": "storage", "usage_quantity": 50, "unit": "GB-month", "cost_inr": 100, "desc": "db"},
  {"month": "2024-02", "service": "A", "resource_id": "vm-1", "region": "ap-south-1", "usage_type": "on-demand", "usage_quantity": 400, "unit": "hours", "cost_inr": "500", "desc": "app"}
]`

const recommendationReply = `Recommendations:
[
  {"title": "Right-size A", "service": "A", "current_cost": 1400, "potential_savings": 500, "recommendation_type": "right_sizing", "description": "smaller VMs", "implementation_effort": "low", "risk_level": "low", "steps": ["measure", "resize"], "cloud_providers": ["AWS", "GCP"]},
  {"title": "Free tier B", "service": "B", "current_cost": 100, "potential_savings": 100, "recommendation_type": "free_tier", "description": "move to free tier", "implementation_effort": "medium", "risk_level": "medium", "steps": ["migrate"], "cloud_providers": ["Azure"]}
]`

var fixedTime = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func newRunner(t *testing.T, client llm.Client) (*Runner, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	r := New(client, st, zerolog.Nop(),
		WithModelName("test-model"),
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "report-1" }),
	)
	return r, st
}

func TestDescribe(t *testing.T) {
	client := &fakeClient{replies: []string{profileReply}}
	r, st := newRunner(t, client)

	input := "Grocery delivery app for Pune, budget 1000 INR"
	profile, err := r.Describe(context.Background(), input)
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if profile.Name != "ShopKart" || profile.TechStack["backend"] != "Go" {
		t.Errorf("profile = %+v", profile)
	}

	raw, err := os.ReadFile(st.Path(store.DescriptionFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != input {
		t.Errorf("description file = %q, want %q", raw, input)
	}
	if !strings.Contains(client.prompts[0], input) {
		t.Error("prompt does not embed the description")
	}

	saved, err := st.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if saved.BudgetINRPerMonth.IntPart() != 1000 {
		t.Errorf("saved budget = %s", saved.BudgetINRPerMonth)
	}
}

func TestDescribeAcceptsLooseSchema(t *testing.T) {
	reply := `Here you go:
{"name": "ShopKart", "budget_inr_per_month": "₹1,000", "tech_stack": {"database": ["Postgres", "Redis"]}, "non_functional_requirements": "high availability"}`
	r, st := newRunner(t, &fakeClient{replies: []string{reply}})

	profile, err := r.Describe(context.Background(), "Grocery delivery app")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if profile.TechStack["database"] != "Postgres, Redis" {
		t.Errorf("tech_stack = %q", profile.TechStack)
	}
	if len(profile.NonFunctionalRequirements) != 1 || profile.NonFunctionalRequirements[0] != "high availability" {
		t.Errorf("non_functional_requirements = %q", profile.NonFunctionalRequirements)
	}

	saved, err := st.LoadProfile()
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if saved.BudgetINRPerMonth.IntPart() != 1000 || saved.TechStack["database"] != "Postgres, Redis" {
		t.Errorf("saved profile = %+v", saved)
	}
}

func TestDescribeRejectsEmpty(t *testing.T) {
	client := &fakeClient{}
	r, st := newRunner(t, client)

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := r.Describe(context.Background(), in)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Describe(%q) error = %v, want *ValidationError", in, err)
		}
	}
	if len(client.prompts) != 0 {
		t.Error("model should not be called for empty input")
	}
	if _, err := st.LoadDescription(); !errors.Is(err, store.ErrNotFound) {
		t.Error("empty input should not be persisted")
	}
}

func TestDescribeFailureKeepsPreviousProfile(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		wantErr any
	}{
		{"network", &fakeClient{err: &llm.NetworkError{Provider: "gemini", Cause: errors.New("dial")}}, new(*llm.NetworkError)},
		{"api", &fakeClient{err: &llm.APIError{Provider: "gemini", StatusCode: 500}}, new(*llm.APIError)},
		{"no json", &fakeClient{replies: []string{"Sorry, I can't do that."}}, new(*extract.ExtractionError)},
		{"bad json", &fakeClient{replies: []string{`{"name": "x",,}`}}, new(*extract.ParseError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, st := newRunner(t, tt.client)
			previous := &model.ProjectProfile{Name: "Previous"}
			if err := st.SaveProfile(previous); err != nil {
				t.Fatal(err)
			}

			_, err := r.Describe(context.Background(), "new description")
			if err == nil {
				t.Fatal("Describe() should fail")
			}
			if !errors.As(err, tt.wantErr) {
				t.Errorf("Describe() error = %T %v, want %T", err, err, tt.wantErr)
			}

			got, err := st.LoadProfile()
			if err != nil || got.Name != "Previous" {
				t.Errorf("previous profile overwritten: %+v, %v", got, err)
			}
			desc, _ := st.LoadDescription()
			if desc != "new description" {
				t.Errorf("description checkpoint = %q", desc)
			}
		})
	}
}

func TestBillingRequiresProfile(t *testing.T) {
	client := &fakeClient{}
	r, _ := newRunner(t, client)

	_, err := r.Billing(context.Background())
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Billing() error = %v, want *MissingInputError", err)
	}
	if missing.File != store.ProfileFile {
		t.Errorf("File = %q, want %q", missing.File, store.ProfileFile)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Error("MissingInputError should wrap store.ErrNotFound")
	}
	if len(client.prompts) != 0 {
		t.Error("model should not be called without a profile")
	}
}

func TestBillingCorruptProfile(t *testing.T) {
	r, st := newRunner(t, &fakeClient{})
	if err := os.WriteFile(st.Path(store.ProfileFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := r.Billing(context.Background())
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("Billing() error = %v, want *MissingInputError", err)
	}
	if !strings.Contains(err.Error(), "unreadable") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBilling(t *testing.T) {
	client := &fakeClient{replies: []string{profileReply, billingReply}}
	r, st := newRunner(t, client)

	if _, err := r.Describe(context.Background(), "desc"); err != nil {
		t.Fatal(err)
	}
	records, err := r.Billing(context.Background())
	if err != nil {
		t.Fatalf("Billing() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[2].CostINR.IntPart() != 500 {
		t.Errorf("string cost not decoded: %s", records[2].CostINR)
	}
	if !strings.Contains(client.prompts[1], `"name": "ShopKart"`) {
		t.Error("billing prompt does not embed the profile")
	}

	saved, err := st.LoadBilling()
	if err != nil || len(saved) != 3 {
		t.Errorf("LoadBilling() = %d records, %v", len(saved), err)
	}
}

func TestRecommendRequiresInputs(t *testing.T) {
	t.Run("no profile", func(t *testing.T) {
		r, st := newRunner(t, &fakeClient{})
		if err := st.SaveBilling([]model.BillingRecord{{Service: "A"}}); err != nil {
			t.Fatal(err)
		}
		_, err := r.Recommend(context.Background())
		var missing *MissingInputError
		if !errors.As(err, &missing) || missing.File != store.ProfileFile {
			t.Errorf("Recommend() error = %v, want missing %s", err, store.ProfileFile)
		}
	})

	t.Run("no billing", func(t *testing.T) {
		r, st := newRunner(t, &fakeClient{})
		if err := st.SaveProfile(&model.ProjectProfile{Name: "x"}); err != nil {
			t.Fatal(err)
		}
		_, err := r.Recommend(context.Background())
		var missing *MissingInputError
		if !errors.As(err, &missing) || missing.File != store.BillingFile {
			t.Errorf("Recommend() error = %v, want missing %s", err, store.BillingFile)
		}
	})
}

func runAll(t *testing.T) (*Runner, *store.Store, *fakeClient, *model.Report) {
	t.Helper()
	client := &fakeClient{replies: []string{profileReply, billingReply, recommendationReply}}
	r, st := newRunner(t, client)
	ctx := context.Background()

	if _, err := r.Describe(ctx, "desc"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Billing(ctx); err != nil {
		t.Fatal(err)
	}
	report, err := r.Recommend(ctx)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	return r, st, client, report
}

func TestRecommend(t *testing.T) {
	_, st, client, report := runAll(t)

	if report.ProjectName != "ShopKart" {
		t.Errorf("ProjectName = %q", report.ProjectName)
	}
	a := report.Analysis
	if a.TotalMonthlyCost.String() != "1500" || a.Budget.String() != "1000" || a.BudgetVariance.String() != "500" || !a.IsOverBudget {
		t.Errorf("analysis = total %s budget %s variance %s over %v",
			a.TotalMonthlyCost, a.Budget, a.BudgetVariance, a.IsOverBudget)
	}
	if len(a.HighCostServices) != 1 || a.HighCostServices["A"].String() != "1400" {
		t.Errorf("HighCostServices = %v", a.HighCostServices)
	}

	s := report.Summary
	if s.TotalPotentialSavings.String() != "600" || s.SavingsPercentage.String() != "40" {
		t.Errorf("summary savings = %s (%s%%)", s.TotalPotentialSavings, s.SavingsPercentage)
	}
	if s.RecommendationsCount != 2 || s.HighImpactRecommendations != 1 {
		t.Errorf("summary counts = %d / %d", s.RecommendationsCount, s.HighImpactRecommendations)
	}

	if report.ReportID != "report-1" || !report.GeneratedAt.Equal(fixedTime) || report.Model != "test-model" {
		t.Errorf("metadata = %q %v %q", report.ReportID, report.GeneratedAt, report.Model)
	}
	if len(report.InputsDigest) != 64 {
		t.Errorf("InputsDigest = %q", report.InputsDigest)
	}

	prompt := client.prompts[2]
	if !strings.Contains(prompt, "Total Cost: 1500") || !strings.Contains(prompt, `"A": 1400`) {
		t.Errorf("recommendation prompt missing billing summary:\n%s", prompt)
	}

	raw, err := os.ReadFile(st.Path(store.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	for _, key := range []string{"project_name", "analysis", "recommendations", "summary"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}

func TestRecommendIsIdempotent(t *testing.T) {
	r, _, client, first := runAll(t)

	client.replies = []string{`[{"title": "Different wording", "potential_savings": 50}]`}
	second, err := r.Recommend(context.Background())
	if err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}

	a, _ := json.Marshal(first.Analysis)
	b, _ := json.Marshal(second.Analysis)
	if string(a) != string(b) {
		t.Errorf("analysis changed between runs:\n%s\n%s", a, b)
	}
	if first.InputsDigest != second.InputsDigest {
		t.Error("inputs digest changed for unchanged inputs")
	}
}

func TestRecommendParseFailureKeepsPreviousReport(t *testing.T) {
	r, st, client, first := runAll(t)

	client.replies = []string{"no recommendations today"}
	if _, err := r.Recommend(context.Background()); err == nil {
		t.Fatal("Recommend() should fail without a JSON array")
	}

	saved, err := st.LoadReport()
	if err != nil {
		t.Fatal(err)
	}
	if saved.ReportID != first.ReportID || saved.Summary.RecommendationsCount != 2 {
		t.Errorf("previous report overwritten: %+v", saved.Summary)
	}
}
