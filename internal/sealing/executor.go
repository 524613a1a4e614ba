package sealing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecError is returned when the sealing tool could not be started or exited
// with a non-zero status. Its message is the tool's own diagnostic text.
type ExecError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("execution of %s failed: %s", filepath.Base(e.Tool), msg)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Executor runs the external sealing tool.
type Executor struct {
	ToolPath            string
	UseLocalCertificate bool
	// TempDir holds the plaintext files of raw sealing. Empty means os.TempDir().
	TempDir string
	Logger  *slog.Logger
}

// NewExecutor creates an executor for the tool at toolPath.
func NewExecutor(toolPath string, useLocalCertificate bool, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		ToolPath:            toolPath,
		UseLocalCertificate: useLocalCertificate,
		Logger:              logger,
	}
}

// SealRaw seals plainText and returns the ciphertext. The plaintext is
// written to a temporary file that is removed before SealRaw returns.
func (e *Executor) SealRaw(ctx context.Context, plainText string, params Parameters) (string, error) {
	// Fail on incomplete parameters before anything touches the disk.
	if _, err := BuildArgs(ModeRaw, params, e.UseLocalCertificate, "placeholder"); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp(e.TempDir, "sealer-raw-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(plainText); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	args, err := BuildArgs(ModeRaw, params, e.UseLocalCertificate, tmpFile.Name())
	if err != nil {
		return "", err
	}

	return e.run(ctx, args, nil)
}

// SealFile reads the Secret manifest at filePath and returns the sealed
// SealedSecret document.
func (e *Executor) SealFile(ctx context.Context, filePath string, params Parameters) (string, error) {
	if _, err := BuildArgs(ModeManifest, params, e.UseLocalCertificate, ""); err != nil {
		return "", err
	}

	manifest, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("reading secret file: %w", err)
	}

	return e.SealManifest(ctx, manifest, params)
}

// SealManifest seals an in-memory Secret manifest, streaming it to the
// tool's standard input.
func (e *Executor) SealManifest(ctx context.Context, manifest []byte, params Parameters) (string, error) {
	args, err := BuildArgs(ModeManifest, params, e.UseLocalCertificate, "")
	if err != nil {
		return "", err
	}

	return e.run(ctx, args, bytes.NewReader(manifest))
}

func (e *Executor) run(ctx context.Context, args []string, stdin io.Reader) (string, error) {
	if e.ToolPath == "" {
		return "", fmt.Errorf("sealing tool path is not configured")
	}

	e.Logger.Debug("running sealing tool", "tool", e.ToolPath, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.ToolPath, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		execErr := &ExecError{
			Tool:     e.ToolPath,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			execErr.Err = ctxErr
		}
		e.Logger.Debug("sealing tool failed", "exitCode", execErr.ExitCode, "stderr", strings.TrimSpace(execErr.Stderr))
		return "", execErr
	}

	return stdout.String(), nil
}
