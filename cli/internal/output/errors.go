package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/zhaobenny/costopt/internal/extract"
	"github.com/zhaobenny/costopt/internal/llm"
	"github.com/zhaobenny/costopt/internal/pipeline"
)

// PrintError writes a one-line diagnostic for a failed stage. Parse failures
// also print the raw model reply so the user can see what went wrong.
func PrintError(w io.Writer, err error) {
	var (
		validation *pipeline.ValidationError
		missing    *pipeline.MissingInputError
		network    *llm.NetworkError
		api        *llm.APIError
		response   *llm.ResponseError
		extraction *extract.ExtractionError
		parse      *extract.ParseError
	)

	switch {
	case errors.As(err, &validation):
		fmt.Fprintf(w, "Error: %v\n", validation)
	case errors.As(err, &missing):
		fmt.Fprintf(w, "Error: %v\n", missing)
	case errors.As(err, &network):
		fmt.Fprintf(w, "Network error: %v\n", network)
	case errors.As(err, &api):
		fmt.Fprintf(w, "API error: %v\n", api)
	case errors.As(err, &response):
		fmt.Fprintf(w, "Unexpected response: %v\n", response)
	case errors.As(err, &extraction):
		fmt.Fprintf(w, "Error: %v\n", extraction)
	case errors.As(err, &parse):
		fmt.Fprintf(w, "Could not parse model reply: %v\n", parse.Cause)
		fmt.Fprintln(w, "Raw response:")
		fmt.Fprintln(w, parse.Raw)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}
