// Package menu implements the interactive numbered menu that drives the
// three pipeline stages.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhaobenny/costopt/cli/internal/output"
	"github.com/zhaobenny/costopt/internal/model"
)

// Stages is the pipeline as seen by the menu
type Stages interface {
	Describe(ctx context.Context, description string) (*model.ProjectProfile, error)
	Billing(ctx context.Context) ([]model.BillingRecord, error)
	Recommend(ctx context.Context) (*model.Report, error)
}

const banner = `
Cloud Cost Optimizer
1. Enter project description
2. Generate mock billing
3. Generate cost optimization report
4. Exit`

// Menu reads choices from in and writes results to out
type Menu struct {
	in     *bufio.Reader
	out    io.Writer
	stages Stages
	log    zerolog.Logger
	table  output.TableOptions
}

// New creates a Menu
func New(in io.Reader, out io.Writer, stages Stages, log zerolog.Logger, table output.TableOptions) *Menu {
	return &Menu{
		in:     bufio.NewReader(in),
		out:    out,
		stages: stages,
		log:    log,
		table:  table,
	}
}

// Run loops until the user exits or input ends. Stage failures are printed
// and the menu is shown again.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out, banner)

		choice, err := m.prompt("Choose an option: ")
		if errors.Is(err, io.EOF) && choice == "" {
			fmt.Fprintln(m.out)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read choice: %w", err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			text, err := m.prompt("Enter project description: ")
			if errors.Is(err, io.EOF) && text == "" {
				fmt.Fprintln(m.out)
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("read description: %w", err)
			}
			m.report(m.describe(ctx, text))
		case "2":
			m.report(m.billing(ctx))
		case "3":
			m.report(m.recommend(ctx))
		case "4":
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice. Enter a number from 1 to 4.")
		}
	}
}

func (m *Menu) report(err error) {
	if err != nil {
		m.log.Debug().Err(err).Msg("stage failed")
		output.PrintError(m.out, err)
	}
}

func (m *Menu) describe(ctx context.Context, text string) error {
	fmt.Fprintln(m.out, "Extracting project profile...")
	profile, err := m.stages.Describe(ctx, text)
	if err != nil {
		return err
	}

	fmt.Fprintf(m.out, "Project profile saved for %s:\n", profile.DisplayName())
	return output.PrintJSON(m.out, profile)
}

func (m *Menu) billing(ctx context.Context) error {
	fmt.Fprintln(m.out, "Generating mock billing...")
	records, err := m.stages.Billing(ctx)
	if err != nil {
		return err
	}

	output.PrintBilling(m.out, records, m.table)
	fmt.Fprintf(m.out, "Total records generated: %d\n", len(records))
	return nil
}

func (m *Menu) recommend(ctx context.Context) error {
	fmt.Fprintln(m.out, "Generating cost optimization report...")
	report, err := m.stages.Recommend(ctx)
	if err != nil {
		return err
	}

	output.PrintReport(m.out, report, m.table)
	return nil
}

// prompt prints label and returns one input line without its line ending
func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	line, err := m.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
