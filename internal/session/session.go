// Package session runs the sealing operations and owns the state that is
// carried from one operation to the next.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/stuttgart-things/sealer/internal/collector"
	"github.com/stuttgart-things/sealer/internal/config"
	"github.com/stuttgart-things/sealer/internal/defaults"
	"github.com/stuttgart-things/sealer/internal/editor"
	"github.com/stuttgart-things/sealer/internal/sealing"
)

var (
	ErrToolPathUnset = errors.New("kubeseal executable path is not configured (set executablePath or SEALER_EXECUTABLE_PATH)")
	ErrToolNotFound  = errors.New("kubeseal executable not found")
	ErrSaveDeclined  = errors.New("document was not saved")
)

// bundledTool is the kubeseal binary shipped next to sealer on Windows.
var bundledTool = filepath.Join("bin", "kubeseal.exe")

// overridable in tests
var (
	goos       = runtime.GOOS
	executable = os.Executable
)

// Sealer seals secret payloads with the external tool.
type Sealer interface {
	SealRaw(ctx context.Context, plainText string, params sealing.Parameters) (string, error)
	SealFile(ctx context.Context, filePath string, params sealing.Parameters) (string, error)
	SealManifest(ctx context.Context, manifest []byte, params sealing.Parameters) (string, error)
}

// Collector turns seeded parameters into final ones.
type Collector interface {
	Collect(ctx context.Context, seed sealing.Parameters, useLocalCertificate bool) (sealing.Parameters, error)
}

// Host is the surface the operations read documents from and show results on.
type Host interface {
	// Save persists doc and returns the path it now lives at. It returns
	// ErrSaveDeclined when the user chose not to save.
	Save(ctx context.Context, doc editor.Document) (string, error)
	// ShowBeside presents the sealed manifest produced from source.
	ShowBeside(ctx context.Context, source editor.Document, sealed string, params sealing.Parameters) error
}

// State is carried across operations for the lifetime of the session.
type State struct {
	ToolPath            string
	LastUsedParameters  *sealing.Parameters
	UseLocalCertificate bool

	toolErr error
}

// ToolError is the reason ToolPath is unusable, if any.
func (s State) ToolError() error { return s.toolErr }

// Session runs sealing operations against one Host.
type Session struct {
	// Overrides are applied on top of the derived defaults before the
	// collector runs, e.g. values given as command-line flags.
	Overrides sealing.Parameters
	NewSealer func(toolPath string, useLocalCertificate bool) Sealer

	state       State
	collector   Collector
	host        Host
	logger      *slog.Logger
	unsubscribe func()
}

// New creates a session that follows the configuration in store.
func New(store *config.Store, c Collector, host Host, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		collector: c,
		host:      host,
		logger:    logger,
	}
	s.NewSealer = func(toolPath string, useLocalCertificate bool) Sealer {
		return sealing.NewExecutor(toolPath, useLocalCertificate, s.logger)
	}

	s.Refresh(store.Current())
	s.unsubscribe = store.OnChange(s.Refresh)
	return s
}

// Close stops following configuration changes.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// State returns a copy of the current session state.
func (s *Session) State() State {
	st := s.state
	if st.LastUsedParameters != nil {
		last := *st.LastUsedParameters
		st.LastUsedParameters = &last
	}
	return st
}

// Refresh re-derives the tool path and certificate mode from cfg. An
// unusable tool path is remembered and reported by the next operation.
func (s *Session) Refresh(cfg config.Config) {
	s.state.UseLocalCertificate = cfg.UseLocalCertificate
	s.state.ToolPath, s.state.toolErr = resolveToolPath(cfg.ExecutablePath)

	if s.state.toolErr != nil {
		s.logger.Warn("sealing tool unavailable", "error", s.state.toolErr)
		return
	}
	s.logger.Debug("sealing tool resolved", "path", s.state.ToolPath, "useLocalCertificate", cfg.UseLocalCertificate)
}

func resolveToolPath(configured string) (string, error) {
	if configured == "" {
		if goos != "windows" {
			return "", ErrToolPathUnset
		}
		exe, err := executable()
		if err != nil {
			return "", fmt.Errorf("locating bundled kubeseal: %w", err)
		}
		configured = filepath.Join(filepath.Dir(exe), bundledTool)
	}

	if !strings.ContainsAny(configured, `/\`) {
		if found, err := exec.LookPath(configured); err == nil {
			return found, nil
		}
	}

	info, err := os.Stat(configured)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, configured)
	}
	return configured, nil
}

func (s *Session) sealer() (Sealer, error) {
	if s.state.toolErr != nil {
		return nil, s.state.toolErr
	}
	if s.state.ToolPath == "" {
		return nil, ErrToolPathUnset
	}
	return s.NewSealer(s.state.ToolPath, s.state.UseLocalCertificate), nil
}

// parameters resolves defaults for doc, seeded with the last used values,
// lets the collector finalize them and remembers the outcome.
func (s *Session) parameters(ctx context.Context, doc editor.Document) (sealing.Parameters, error) {
	seed := defaults.Resolve(doc, s.state.LastUsedParameters).Merge(s.Overrides)
	s.logger.Debug("resolved defaults",
		"scope", seed.Scope,
		"name", seed.Name.Value,
		"namespace", seed.Namespace.Value,
		"certificate", seed.CertificatePath.Value,
	)

	params, err := s.collector.Collect(ctx, seed, s.state.UseLocalCertificate)
	if err != nil {
		return sealing.Parameters{}, err
	}

	last := params
	s.state.LastUsedParameters = &last
	return params, nil
}

// SealFile seals the whole document as a Secret manifest and hands the
// resulting SealedSecret to the host. Unsaved documents are saved first; a
// declined save ends the operation with ErrSaveDeclined.
func (s *Session) SealFile(ctx context.Context, doc editor.Document) error {
	sealer, err := s.sealer()
	if err != nil {
		return err
	}

	path := doc.Path()
	if doc.IsUntitled() || doc.IsDirty() {
		path, err = s.host.Save(ctx, doc)
		if err != nil {
			return err
		}
	}

	params, err := s.parameters(ctx, doc)
	if err != nil {
		return err
	}

	sealed, err := sealer.SealFile(ctx, path, params)
	if err != nil {
		return err
	}

	return s.host.ShowBeside(ctx, doc, sealed, params)
}

// SealManifest seals an in-memory Secret manifest such as one generated by
// the CLI. The document is never saved; its text is streamed to the tool.
func (s *Session) SealManifest(ctx context.Context, doc editor.Document) error {
	sealer, err := s.sealer()
	if err != nil {
		return err
	}

	params, err := s.parameters(ctx, doc)
	if err != nil {
		return err
	}

	sealed, err := sealer.SealManifest(ctx, []byte(doc.Text()), params)
	if err != nil {
		return err
	}

	return s.host.ShowBeside(ctx, doc, sealed, params)
}

// SealSelections seals the text of every selection of doc in raw mode and
// replaces it with the ciphertext. Selections are handled one after another
// in their given order; a failing selection is reported as a SelectionError
// and the remaining ones are still processed. Cancelling the parameter
// prompt stops the whole operation.
func (s *Session) SealSelections(ctx context.Context, doc editor.Editable) error {
	sealer, err := s.sealer()
	if err != nil {
		return err
	}

	var errs []error
	count := len(doc.Selections())

	for i := 0; i < count; i++ {
		r := doc.Selections()[i]

		params, err := s.parameters(ctx, doc)
		if err != nil {
			errs = append(errs, &SelectionError{Index: i, Range: r, Err: err})
			if errors.Is(err, collector.ErrCancelled) {
				break
			}
			continue
		}

		plainText, err := doc.SelectedText(i)
		if err != nil {
			errs = append(errs, &SelectionError{Index: i, Range: r, Err: err})
			continue
		}
		sealed, err := sealer.SealRaw(ctx, plainText, params)
		if err != nil {
			s.logger.Debug("sealing selection failed", "index", i, "error", err)
			errs = append(errs, &SelectionError{Index: i, Range: r, Err: err})
			continue
		}

		if err := doc.Replace(i, sealed); err != nil {
			errs = append(errs, &SelectionError{Index: i, Range: r, Err: err})
		}
	}

	return errors.Join(errs...)
}
