package session

import (
	"errors"
	"fmt"

	"github.com/stuttgart-things/sealer/internal/editor"
)

// SelectionError is the failure of one selection of a multi-selection
// operation.
type SelectionError struct {
	Index int
	Range editor.Range
	Err   error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selection %d %s: %v", e.Index+1, e.Range, e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// SelectionErrors lists the per-selection failures contained in err.
func SelectionErrors(err error) []*SelectionError {
	var out []*SelectionError

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		var se *SelectionError
		if errors.As(err, &se) {
			out = append(out, se)
		}
		return out
	}

	for _, e := range joined.Unwrap() {
		var se *SelectionError
		if errors.As(e, &se) {
			out = append(out, se)
		}
	}
	return out
}
