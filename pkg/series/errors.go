package series

import (
	"errors"
	"fmt"
)

// ErrUnknownSeries is wrapped by every error returned for a series name that
// was not declared at schema construction. Match with errors.Is.
var ErrUnknownSeries = errors.New("unknown series")

// ErrMergeMismatch is wrapped by Merge errors when the two containers do not
// declare the same series set, or a series' value sequences differ in length.
var ErrMergeMismatch = errors.New("merge shape mismatch")

// UnknownSeriesError reports a reference to an undeclared series name.
// Schema mistakes are programmer errors and surface immediately — they are
// never recorded in the error log.
type UnknownSeriesError struct {
	Name string
}

func (e *UnknownSeriesError) Error() string {
	return fmt.Sprintf("series %q: %s", e.Name, ErrUnknownSeries)
}

func (e *UnknownSeriesError) Unwrap() error { return ErrUnknownSeries }

// MergeMismatchError reports a Merge between containers of incompatible
// shape. Series is empty when the declared series sets differ; otherwise it
// names the series whose value sequences have different lengths.
type MergeMismatchError struct {
	Series string
	Detail string
}

func (e *MergeMismatchError) Error() string {
	if e.Series == "" {
		return fmt.Sprintf("%s: %s", ErrMergeMismatch, e.Detail)
	}
	return fmt.Sprintf("%s: series %q: %s", ErrMergeMismatch, e.Series, e.Detail)
}

func (e *MergeMismatchError) Unwrap() error { return ErrMergeMismatch }
