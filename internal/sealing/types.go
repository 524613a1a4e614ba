package sealing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownScope       = errors.New("unknown scope")
	ErrMissingName        = errors.New("name is required for strict scope")
	ErrMissingNamespace   = errors.New("namespace is required")
	ErrMissingCertificate = errors.New("certificate path is required when using a local certificate")
)

// Scope is the binding strength of a sealed secret to its name and namespace.
// The zero value means no scope has been chosen yet.
type Scope string

const (
	ScopeStrict        Scope = "strict"
	ScopeNamespaceWide Scope = "namespaceWide"
	ScopeClusterWide   Scope = "clusterWide"
)

// Scopes lists every valid scope in presentation order.
var Scopes = []Scope{ScopeStrict, ScopeNamespaceWide, ScopeClusterWide}

// ParseScope accepts both the camel-case names and the kubeseal flag spelling
// (namespace-wide, cluster-wide).
func ParseScope(s string) (Scope, error) {
	switch strings.TrimSpace(s) {
	case "strict":
		return ScopeStrict, nil
	case "namespaceWide", "namespace-wide":
		return ScopeNamespaceWide, nil
	case "clusterWide", "cluster-wide":
		return ScopeClusterWide, nil
	}
	return "", fmt.Errorf("%w: %q (valid values: strict, namespaceWide, clusterWide)", ErrUnknownScope, s)
}

// IsSet reports whether a scope has been chosen.
func (s Scope) IsSet() bool { return s != "" }

// Valid reports whether s is one of the three known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeStrict, ScopeNamespaceWide, ScopeClusterWide:
		return true
	}
	return false
}

func (s Scope) String() string { return string(s) }

// Description is the one-line explanation shown next to the scope in pickers.
func (s Scope) Description() string {
	switch s {
	case ScopeStrict:
		return "bound to exactly this name and namespace"
	case ScopeNamespaceWide:
		return "any name within the namespace may decrypt"
	case ScopeClusterWide:
		return "any name in any namespace may decrypt"
	}
	return ""
}

// Optional is a value with explicit presence.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Or returns the value when present and def otherwise.
func (o Optional[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

// Parameters are the inputs of one sealing operation. Fields are filled in
// stages: the defaults resolver seeds them, the collector refines them and
// the executor only reads them.
type Parameters struct {
	CertificatePath Optional[string]
	Name            Optional[string]
	Namespace       Optional[string]
	Scope           Scope
}

// Merge returns p with every field that is present in overlay replaced.
func (p Parameters) Merge(overlay Parameters) Parameters {
	if overlay.CertificatePath.Set {
		p.CertificatePath = overlay.CertificatePath
	}
	if overlay.Name.Set {
		p.Name = overlay.Name
	}
	if overlay.Namespace.Set {
		p.Namespace = overlay.Namespace
	}
	if overlay.Scope.IsSet() {
		p.Scope = overlay.Scope
	}
	return p
}

// Binding is the scope-dependent subset of Parameters that a sealing command
// needs. Callers switch on the concrete type instead of reading optional
// fields directly.
type Binding interface {
	Scope() Scope
}

// StrictBinding binds the secret to one name in one namespace.
type StrictBinding struct {
	Name      string
	Namespace string
}

func (StrictBinding) Scope() Scope { return ScopeStrict }

// NamespaceBinding lets any name in Namespace decrypt the secret.
type NamespaceBinding struct {
	Namespace string
}

func (NamespaceBinding) Scope() Scope { return ScopeNamespaceWide }

// ClusterBinding lets any name in any namespace decrypt the secret.
type ClusterBinding struct{}

func (ClusterBinding) Scope() Scope { return ScopeClusterWide }

// Binding checks the fields required by p.Scope and returns the matching
// binding. An unset or unknown scope yields ErrUnknownScope.
func (p Parameters) Binding() (Binding, error) {
	switch p.Scope {
	case ScopeStrict:
		name, _ := p.Name.Get()
		if name == "" {
			return nil, ErrMissingName
		}
		namespace, _ := p.Namespace.Get()
		if namespace == "" {
			return nil, ErrMissingNamespace
		}
		return StrictBinding{Name: name, Namespace: namespace}, nil
	case ScopeNamespaceWide:
		namespace, _ := p.Namespace.Get()
		if namespace == "" {
			return nil, ErrMissingNamespace
		}
		return NamespaceBinding{Namespace: namespace}, nil
	case ScopeClusterWide:
		return ClusterBinding{}, nil
	}
	return nil, fmt.Errorf("internal error: %w %q", ErrUnknownScope, string(p.Scope))
}

// Validate reports whether p is complete enough to seal with.
func (p Parameters) Validate(useLocalCertificate bool) error {
	if _, err := p.Binding(); err != nil {
		return err
	}
	if useLocalCertificate {
		if cert, _ := p.CertificatePath.Get(); cert == "" {
			return ErrMissingCertificate
		}
	}
	return nil
}
