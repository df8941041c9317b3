// Package pipeline runs the three model-backed stages: profile extraction,
// billing synthesis and recommendation generation. Each stage reads the
// previous stage's artifact from the store, calls the model once, extracts
// JSON from the reply and only then overwrites its own artifact.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zhaobenny/costopt/internal/aggregator"
	"github.com/zhaobenny/costopt/internal/extract"
	"github.com/zhaobenny/costopt/internal/llm"
	"github.com/zhaobenny/costopt/internal/model"
	"github.com/zhaobenny/costopt/internal/store"
)

const (
	profileHint = "capture a project description (option 1)"
	billingHint = "synthesize billing data (option 2)"
)

// Expected record counts requested from the model. Counts outside the
// range are logged, not rejected.
const (
	minBillingRecords = 12
	maxBillingRecords = 14
)

// Runner executes pipeline stages against one artifact store
type Runner struct {
	client    llm.Client
	store     *store.Store
	log       zerolog.Logger
	modelName string
	now       func() time.Time
	newID     func() string
}

// Option configures a Runner
type Option func(*Runner)

// WithModelName records the model name in generated reports
func WithModelName(name string) Option {
	return func(r *Runner) {
		r.modelName = name
	}
}

// WithClock overrides the report timestamp source
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator overrides the report ID source
func WithIDGenerator(newID func() string) Option {
	return func(r *Runner) {
		r.newID = newID
	}
}

// New creates a Runner
func New(client llm.Client, st *store.Store, log zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		client: client,
		store:  st,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Describe persists the raw description, asks the model to structure it and
// saves the resulting profile
func (r *Runner) Describe(ctx context.Context, description string) (*model.ProjectProfile, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ValidationError{Field: "project description", Message: "cannot be empty"}
	}

	// Checkpoint the user's text before the model call so it survives failures
	if err := r.store.SaveDescription(description); err != nil {
		return nil, fmt.Errorf("save %s: %w", store.DescriptionFile, err)
	}
	r.log.Debug().Int("chars", len(description)).Msg("description saved")

	text, err := r.client.Generate(ctx, profilePrompt(description))
	if err != nil {
		return nil, err
	}

	var profile model.ProjectProfile
	if err := extract.Object(text, &profile); err != nil {
		return nil, err
	}

	if err := r.store.SaveProfile(&profile); err != nil {
		return nil, fmt.Errorf("save %s: %w", store.ProfileFile, err)
	}
	r.log.Info().Str("project", profile.DisplayName()).Msg("profile generated")

	return &profile, nil
}

// Billing generates synthetic billing records for the saved profile
func (r *Runner) Billing(ctx context.Context) ([]model.BillingRecord, error) {
	profile, err := r.loadProfile()
	if err != nil {
		return nil, err
	}

	prompt, err := billingPrompt(profile)
	if err != nil {
		return nil, err
	}

	text, err := r.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var records []model.BillingRecord
	if err := extract.Array(text, &records); err != nil {
		return nil, err
	}
	if n := len(records); n < minBillingRecords || n > maxBillingRecords {
		r.log.Warn().Int("records", n).Msgf("expected %d-%d billing records", minBillingRecords, maxBillingRecords)
	}

	if err := r.store.SaveBilling(records); err != nil {
		return nil, fmt.Errorf("save %s: %w", store.BillingFile, err)
	}
	r.log.Info().Int("records", len(records)).Msg("billing generated")

	return records, nil
}

// Recommend analyzes the saved billing against the profile budget, asks the
// model for recommendations and writes the final report
func (r *Runner) Recommend(ctx context.Context) (*model.Report, error) {
	profile, err := r.loadProfile()
	if err != nil {
		return nil, err
	}
	records, err := r.store.LoadBilling()
	if err != nil {
		return nil, &MissingInputError{File: store.BillingFile, Hint: billingHint, Cause: err}
	}

	digest, err := r.store.Digest(store.ProfileFile, store.BillingFile)
	if err != nil {
		return nil, fmt.Errorf("digest inputs: %w", err)
	}

	res := aggregator.Analyze(records, profile.BudgetINRPerMonth)
	r.log.Debug().
		Str("total", res.Total.String()).
		Str("avg_service_cost", res.AvgServiceCost.String()).
		Int("services", len(res.ServiceCosts)).
		Msg("billing analyzed")

	prompt, err := recommendationPrompt(profile, res.Analysis)
	if err != nil {
		return nil, err
	}

	text, err := r.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var recs []model.Recommendation
	if err := extract.Array(text, &recs); err != nil {
		return nil, err
	}

	report := &model.Report{
		ProjectName:     profile.DisplayName(),
		Analysis:        res.Analysis,
		Recommendations: recs,
		Summary:         aggregator.Summarize(recs, res),
		ReportID:        r.newID(),
		GeneratedAt:     r.now().UTC().Truncate(time.Second),
		Model:           r.modelName,
		InputsDigest:    digest,
	}

	if err := r.store.SaveReport(report); err != nil {
		return nil, fmt.Errorf("save %s: %w", store.ReportFile, err)
	}
	r.log.Info().
		Str("report_id", report.ReportID).
		Int("recommendations", len(recs)).
		Str("savings_pct", report.Summary.SavingsPercentage.String()).
		Msg("report generated")

	return report, nil
}

func (r *Runner) loadProfile() (*model.ProjectProfile, error) {
	profile, err := r.store.LoadProfile()
	if err != nil {
		return nil, &MissingInputError{File: store.ProfileFile, Hint: profileHint, Cause: err}
	}
	return profile, nil
}
