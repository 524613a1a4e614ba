package collector

import (
	"context"
	"fmt"

	"github.com/stuttgart-things/sealer/internal/sealing"
)

// acceptPrompter answers every prompt with its pre-filled value. It fails
// instead of re-prompting when that value is invalid.
type acceptPrompter struct{}

func (acceptPrompter) SelectScope(_ context.Context, _ Prompt, current sealing.Scope) (sealing.Scope, Signal, error) {
	if !current.IsSet() {
		return sealing.ScopeStrict, Submit, nil
	}
	if !current.Valid() {
		return "", Cancel, fmt.Errorf("%w %q", sealing.ErrUnknownScope, string(current))
	}
	return current, Submit, nil
}

func (acceptPrompter) Input(_ context.Context, _ Prompt, current string, validate func(string) error) (string, Signal, error) {
	if err := validate(current); err != nil {
		return "", Cancel, err
	}
	return current, Submit, nil
}

// NewStatic returns a collector for non-interactive use. It walks the same
// steps as the interactive flow, accepting the seeded values and failing
// with the usual validation message on the first one that is missing.
func NewStatic() *Collector {
	return New(acceptPrompter{})
}
