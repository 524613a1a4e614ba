package registry

import "github.com/stuttgart-things/sealer/internal/sealing"

const SealedSecretKind = "SealedSecret"

// Entry is one SealedSecret document found on disk
type Entry struct {
	Name      string        `json:"name"`
	Namespace string        `json:"namespace,omitempty"`
	Scope     sealing.Scope `json:"scope"`
	Keys      []string      `json:"keys"`
	Path      string        `json:"path"`
}
