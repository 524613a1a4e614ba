package sealing

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects between raw and manifest sealing.
type Mode int

const (
	// ModeRaw seals a single value read from a file and prints ciphertext only.
	ModeRaw Mode = iota
	// ModeManifest seals a Secret manifest read from stdin and prints a
	// SealedSecret document.
	ModeManifest
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeManifest:
		return "manifest"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ClusterWidePlaceholderNamespace is passed as --namespace for cluster-wide
// sealing. kubeseal refuses to run cluster-wide without a namespace even
// though it does not use it.
const ClusterWidePlaceholderNamespace = "default"

// BuildArgs returns the kubeseal arguments for one sealing call. fromFile is
// the plaintext file used in raw mode and ignored in manifest mode.
func BuildArgs(mode Mode, params Parameters, useLocalCertificate bool, fromFile string) ([]string, error) {
	binding, err := params.Binding()
	if err != nil {
		return nil, err
	}

	var args []string
	switch mode {
	case ModeRaw:
		if fromFile == "" {
			return nil, fmt.Errorf("raw sealing requires an input file")
		}
		args = append(args, "--raw", "--from-file="+filepath.ToSlash(fromFile))
	case ModeManifest:
	default:
		return nil, fmt.Errorf("internal error: unknown sealing mode %v", mode)
	}

	switch b := binding.(type) {
	case StrictBinding:
		args = append(args, "--namespace="+b.Namespace, "--name="+b.Name)
	case NamespaceBinding:
		args = append(args, "--namespace="+b.Namespace, "--scope=namespace-wide")
	case ClusterBinding:
		args = append(args, "--namespace="+ClusterWidePlaceholderNamespace, "--scope=cluster-wide")
	default:
		return nil, fmt.Errorf("internal error: %w %T", ErrUnknownScope, binding)
	}

	if mode == ModeManifest {
		args = append(args, "--format=yaml")
	}

	if useLocalCertificate {
		cert, _ := params.CertificatePath.Get()
		if cert == "" {
			return nil, ErrMissingCertificate
		}
		certURL, err := certificateURL(cert)
		if err != nil {
			return nil, err
		}
		args = append(args, "--cert="+certURL)
	}

	return args, nil
}

// certificateURL turns a local path into the file:// URL form kubeseal
// expects, with forward slashes on every platform.
func certificateURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving certificate path: %w", err)
	}
	return "file://" + strings.ReplaceAll(filepath.ToSlash(abs), `\`, "/"), nil
}
