// Package collector gathers sealing parameters from the user in a short,
// scope-dependent sequence of prompts.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/stuttgart-things/sealer/internal/sealing"
)

// ErrCancelled is returned by Collect when the user abandons the flow.
var ErrCancelled = errors.New("parameter collection cancelled")

// Step identifies one prompt of the flow.
type Step int

const (
	StepScope Step = iota
	StepName
	StepNamespace
	StepCertificate
	stepDone
)

func (s Step) String() string {
	switch s {
	case StepScope:
		return "scope"
	case StepName:
		return "name"
	case StepNamespace:
		return "namespace"
	case StepCertificate:
		return "certificate"
	}
	return "done"
}

// Title is the prompt heading of the step.
func (s Step) Title() string {
	switch s {
	case StepScope:
		return "Sealing scope"
	case StepName:
		return "Secret name"
	case StepNamespace:
		return "Namespace"
	case StepCertificate:
		return "Certificate path"
	}
	return ""
}

// Signal is how the user left a prompt.
type Signal int

const (
	Submit Signal = iota
	Back
	Cancel
)

// Prompt describes the prompt currently shown.
type Prompt struct {
	Step  Step
	Index int
	Total int
}

// Heading renders the title with its progress counter, e.g. "Secret name (2/4)".
func (p Prompt) Heading() string {
	return fmt.Sprintf("%s (%d/%d)", p.Step.Title(), p.Index, p.Total)
}

// Prompter shows a single prompt and reports the entered value together with
// the way the prompt was left. A Prompter returns an error only when it cannot
// prompt at all; user navigation is expressed through the Signal.
type Prompter interface {
	SelectScope(ctx context.Context, p Prompt, current sealing.Scope) (sealing.Scope, Signal, error)
	Input(ctx context.Context, p Prompt, current string, validate func(string) error) (string, Signal, error)
}

// Collector runs the prompt sequence.
type Collector struct {
	Prompter   Prompter
	FileExists func(path string) bool
}

// New returns a collector that prompts through p.
func New(p Prompter) *Collector {
	return &Collector{Prompter: p, FileExists: FileExists}
}

// path lists the steps visited for scope. An unset scope is laid out like
// strict, the pre-selected choice of the scope picker.
func path(scope sealing.Scope, useLocalCertificate bool) []Step {
	var steps []Step
	switch scope {
	case sealing.ScopeNamespaceWide:
		steps = []Step{StepScope, StepNamespace}
	case sealing.ScopeClusterWide:
		steps = []Step{StepScope}
	default:
		steps = []Step{StepScope, StepName, StepNamespace}
	}
	if useLocalCertificate {
		steps = append(steps, StepCertificate)
	}
	return steps
}

// Progress returns the 1-based position of step and the number of steps on
// the branch selected by scope.
func Progress(scope sealing.Scope, step Step, useLocalCertificate bool) (int, int) {
	steps := path(scope, useLocalCertificate)
	for i, s := range steps {
		if s == step {
			return i + 1, len(steps)
		}
	}
	return len(steps), len(steps)
}

func next(scope sealing.Scope, step Step, useLocalCertificate bool) Step {
	steps := path(scope, useLocalCertificate)
	for i, s := range steps {
		if s == step && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return stepDone
}

// Collect prompts for the parameters of one sealing operation, pre-filling
// every prompt from seed. Values entered on a branch that is later abandoned
// through Back are kept as pre-fills but are not part of the result.
func (c *Collector) Collect(ctx context.Context, seed sealing.Parameters, useLocalCertificate bool) (sealing.Parameters, error) {
	exists := c.FileExists
	if exists == nil {
		exists = FileExists
	}

	working := seed
	var history []Step
	step := StepScope

	for step != stepDone {
		if err := ctx.Err(); err != nil {
			return sealing.Parameters{}, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		index, total := Progress(working.Scope, step, useLocalCertificate)
		prompt := Prompt{Step: step, Index: index, Total: total}

		var (
			signal Signal
			err    error
		)

		switch step {
		case StepScope:
			var scope sealing.Scope
			scope, signal, err = c.Prompter.SelectScope(ctx, prompt, working.Scope)
			if err == nil && signal == Submit {
				if !scope.Valid() {
					continue
				}
				working.Scope = scope
			}
		default:
			validate := validatorFor(step, exists)
			current, _ := fieldOf(&working, step).Get()

			var value string
			value, signal, err = c.Prompter.Input(ctx, prompt, current, validate)
			if err == nil && signal == Submit {
				if validate(value) != nil {
					continue
				}
				*fieldOf(&working, step) = sealing.Some(value)
			}
		}

		if err != nil {
			return sealing.Parameters{}, fmt.Errorf("%s: %w", step, err)
		}

		switch signal {
		case Cancel:
			return sealing.Parameters{}, ErrCancelled
		case Back:
			if len(history) > 0 {
				step = history[len(history)-1]
				history = history[:len(history)-1]
			}
		case Submit:
			history = append(history, step)
			step = next(working.Scope, step, useLocalCertificate)
		}
	}

	result := seed
	result.Scope = working.Scope
	for _, s := range history {
		if f := fieldOf(&working, s); f != nil {
			*fieldOf(&result, s) = *f
		}
	}
	return result, nil
}

func fieldOf(p *sealing.Parameters, step Step) *sealing.Optional[string] {
	switch step {
	case StepName:
		return &p.Name
	case StepNamespace:
		return &p.Namespace
	case StepCertificate:
		return &p.CertificatePath
	}
	return nil
}
