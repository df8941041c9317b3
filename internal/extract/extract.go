// Package extract pulls a JSON payload out of free-form model output.
//
// Model replies often wrap the payload in prose or markdown fences. The
// extractor takes the span from the first opening bracket of the requested
// kind to the last closing bracket of the same kind and decodes it. Brackets
// inside string literals are not special-cased, so trailing bracket text after
// the intended payload can make the slice invalid.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects the bracket pair to search for
type Kind int

const (
	// KindObject matches {...}
	KindObject Kind = iota
	// KindArray matches [...]
	KindArray
)

func (k Kind) brackets() (opening, closing byte) {
	if k == KindArray {
		return '[', ']'
	}
	return '{', '}'
}

func (k Kind) String() string {
	if k == KindArray {
		return "array"
	}
	return "object"
}

// slice returns the candidate JSON text for kind without decoding it
func slice(text string, kind Kind) (string, error) {
	opening, closing := kind.brackets()

	start := strings.IndexByte(text, opening)
	if start < 0 {
		return "", &ExtractionError{Kind: kind, Reason: fmt.Sprintf("no opening %q found", opening)}
	}
	end := strings.LastIndexByte(text, closing)
	if end < start {
		return "", &ExtractionError{Kind: kind, Reason: fmt.Sprintf("no closing %q after offset %d", closing, start)}
	}
	return text[start : end+1], nil
}

func decode(text string, kind Kind, v any) error {
	payload, err := slice(text, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &ParseError{Kind: kind, Raw: text, Cause: err}
	}
	return nil
}

// Object extracts the first top-level JSON object from text and decodes it
// into v
func Object(text string, v any) error {
	return decode(text, KindObject, v)
}

// Array extracts the first top-level JSON array from text and decodes it
// into v
func Array(text string, v any) error {
	return decode(text, KindArray, v)
}
