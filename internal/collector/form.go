package collector

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/stuttgart-things/sealer/internal/sealing"
)

var hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// FormPrompter renders each prompt as a single-field huh form. Esc goes back
// one step and ctrl+c cancels the flow.
type FormPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewFormPrompter prompts on the terminal, drawing to stderr so that stdout
// stays free for sealed output.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{In: os.Stdin, Out: os.Stderr}
}

func (p *FormPrompter) SelectScope(ctx context.Context, prompt Prompt, current sealing.Scope) (sealing.Scope, Signal, error) {
	value := current
	if !value.Valid() {
		value = sealing.ScopeStrict
	}

	options := make([]huh.Option[sealing.Scope], 0, len(sealing.Scopes))
	for _, s := range sealing.Scopes {
		options = append(options, huh.NewOption(fmt.Sprintf("%-14s %s", s, s.Description()), s))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[sealing.Scope]().
				Title(prompt.Heading()).
				Description("Who may decrypt the sealed secret").
				Options(options...).
				Filtering(false).
				Value(&value),
		),
	)

	signal, err := p.run(ctx, form)
	return value, signal, err
}

func (p *FormPrompter) Input(ctx context.Context, prompt Prompt, current string, validate func(string) error) (string, Signal, error) {
	value := current

	input := huh.NewInput().
		Title(prompt.Heading()).
		Value(&value).
		Validate(validate)

	switch prompt.Step {
	case StepName:
		input.Description("metadata.name of the secret").Placeholder("my-app-secret")
	case StepNamespace:
		input.Description("metadata.namespace of the secret").Placeholder("default")
	case StepCertificate:
		input.Description("Public key of the sealed-secrets controller").Placeholder("sealed-secrets/nonprod.pem")
	}

	form := huh.NewForm(huh.NewGroup(input))

	signal, err := p.run(ctx, form)
	return value, signal, err
}

func (p *FormPrompter) run(ctx context.Context, form *huh.Form) (Signal, error) {
	form.SubmitCmd = tea.Quit
	form.CancelCmd = tea.Quit

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(&stepModel{form: form}, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return Cancel, nil
		}
		return Cancel, err
	}

	m, ok := final.(*stepModel)
	if !ok {
		return Cancel, fmt.Errorf("unexpected prompt model %T", final)
	}
	return m.signal(), nil
}

// stepModel wraps a huh form and adds the Back key, which huh forms do not
// have across separate forms.
type stepModel struct {
	form *huh.Form
	back bool
}

func (m *stepModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.back = true
		return m, tea.Quit
	}

	model, cmd := m.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State != huh.StateNormal {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *stepModel) View() string {
	if m.form.State != huh.StateNormal || m.back {
		return ""
	}
	return m.form.View() + "\n" + hintStyle.Render("esc back • ctrl+c cancel") + "\n"
}

func (m *stepModel) signal() Signal {
	switch {
	case m.back:
		return Back
	case m.form.State == huh.StateCompleted:
		return Submit
	}
	return Cancel
}
