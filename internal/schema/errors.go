package schema

import "strings"

// FieldError is one structural failure, annotated with the path of the field
// that caused it (e.g. "variants.2.price").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every structural failure of one payload or query
// instead of stopping at the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return strings.Join(parts, "\n")
}

func (e *ValidationError) add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// RangeError is a cross-field refinement failure (ordered ranges, price
// bounds). It is scoped to the field that opens the range.
type RangeError struct {
	Path    string
	Message string
}

func (e *RangeError) Error() string { return e.Path + ": " + e.Message }
