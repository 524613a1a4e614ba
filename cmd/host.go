package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/stuttgart-things/sealer/internal/editor"
	"github.com/stuttgart-things/sealer/internal/sealing"
	"github.com/stuttgart-things/sealer/internal/session"
)

const untitledSource = "stdin"

type saver interface {
	Save() error
	SaveAs(path string) error
}

// cliHost is the session host of the command line: documents are files and
// sealed output is written next to them.
type cliHost struct {
	interactive bool
	saveAs      string
	output      OutputConfig
	stderr      io.Writer

	// promptPath asks where to save an untitled document; nil uses a form.
	promptPath func(ctx context.Context) (string, error)

	results SealResults
}

func (h *cliHost) errOut() io.Writer {
	if h.stderr == nil {
		return os.Stderr
	}
	return h.stderr
}

func (h *cliHost) Save(ctx context.Context, doc editor.Document) (string, error) {
	s, ok := doc.(saver)
	if !ok {
		return "", fmt.Errorf("document %s cannot be saved", doc.Path())
	}

	if !doc.IsUntitled() {
		if err := s.Save(); err != nil {
			return "", err
		}
		return doc.Path(), nil
	}

	path := h.saveAs
	if path == "" {
		if !h.interactive {
			return "", fmt.Errorf("standard input has to be saved to a file before sealing: use --save-as")
		}
		prompt := h.promptPath
		if prompt == nil {
			prompt = promptSavePath
		}
		var err error
		if path, err = prompt(ctx); err != nil {
			return "", err
		}
	}

	if err := s.SaveAs(path); err != nil {
		return "", err
	}
	fmt.Fprintf(h.errOut(), "Saved: %s\n", doc.Path())
	return doc.Path(), nil
}

func (h *cliHost) ShowBeside(_ context.Context, source editor.Document, sealed string, params sealing.Parameters) error {
	info := sourceInfo(source)
	info.Name = params.Name.Or(info.Source)
	info.Namespace = params.Namespace.Or("")

	output := h.output
	if output.Directory == "" && !source.IsUntitled() {
		output.Directory = filepath.Dir(source.Path())
	}

	path, err := WriteSealed(sealed, info, output)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintln(h.errOut(), successStyle.Render("Sealed: "+path))
	}

	h.results.Results = append(h.results.Results, SealResult{
		Name:       info.Name,
		Namespace:  info.Namespace,
		Scope:      params.Scope,
		OutputPath: path,
		Content:    sealed,
	})
	return nil
}

func sourceInfo(doc editor.Document) FileInfo {
	if doc.IsUntitled() || doc.Path() == "" {
		return FileInfo{Source: untitledSource}
	}
	base := filepath.Base(doc.Path())
	return FileInfo{Source: strings.TrimSuffix(base, filepath.Ext(base))}
}

// promptSavePath asks whether to save an untitled document and where.
func promptSavePath(ctx context.Context) (string, error) {
	save := true
	var path string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("The document has not been saved yet. Save it before sealing?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&save),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Save as").
				Placeholder("secret.yaml").
				Value(&path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("please specify a file name")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !save }),
	).WithOutput(os.Stderr)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", session.ErrSaveDeclined
		}
		return "", err
	}
	if !save {
		return "", session.ErrSaveDeclined
	}
	return strings.TrimSpace(path), nil
}

// openDocument reads the document at path, or standard input for -.
func openDocument(path string, stdin io.Reader) (*editor.Buffer, error) {
	if path == "-" {
		return editor.ReadUntitled(stdin)
	}
	return editor.Open(path)
}
