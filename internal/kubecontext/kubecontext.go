// Package kubecontext reports which cluster kubeseal talks to when it fetches
// the sealing certificate itself.
package kubecontext

import (
	"errors"
	"fmt"

	"k8s.io/client-go/tools/clientcmd"
)

var ErrNoCurrentContext = errors.New("kubeconfig has no current context")

// Info describes the current kubeconfig context.
type Info struct {
	Context   string
	Cluster   string
	Server    string
	Namespace string
}

func (i Info) String() string {
	if i.Server == "" {
		return fmt.Sprintf("context %q (cluster %q)", i.Context, i.Cluster)
	}
	return fmt.Sprintf("context %q (cluster %q at %s)", i.Context, i.Cluster, i.Server)
}

// Current reads the current context from the kubeconfig at path, or from the
// default loading rules ($KUBECONFIG, ~/.kube/config) when path is empty.
func Current(path string) (Info, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}

	raw, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).RawConfig()
	if err != nil {
		return Info{}, fmt.Errorf("loading kubeconfig: %w", err)
	}

	if raw.CurrentContext == "" {
		return Info{}, ErrNoCurrentContext
	}

	info := Info{Context: raw.CurrentContext}
	kctx, ok := raw.Contexts[raw.CurrentContext]
	if !ok {
		return Info{}, fmt.Errorf("current context %q is not defined", raw.CurrentContext)
	}
	info.Cluster = kctx.Cluster
	info.Namespace = kctx.Namespace

	if cluster, ok := raw.Clusters[kctx.Cluster]; ok {
		info.Server = cluster.Server
	}

	return info, nil
}
