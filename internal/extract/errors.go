package extract

import "fmt"

// ExtractionError means no candidate JSON span was found in the text
type ExtractionError struct {
	Kind   Kind
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no JSON %s in model output: %s", e.Kind, e.Reason)
}

// ParseError means a candidate span was found but did not decode.
// Raw holds the full model output for display.
type ParseError struct {
	Kind  Kind
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON %s in model output: %v", e.Kind, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
