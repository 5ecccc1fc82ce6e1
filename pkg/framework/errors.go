package framework

import "strings"

// AggregatedError collects the errors of multiple Runnables into one.
type AggregatedError struct {
	Errors []error
}

// Add records non-nil errors.
func (e *AggregatedError) Add(errs ...error) {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
}

// Aggregate returns nil when nothing was recorded, the sole error when
// there was one, and the aggregate otherwise.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// Error implements error.
func (e *AggregatedError) Error() string {
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, err := range e.Errors {
		b.WriteString("\n")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the recorded errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}
