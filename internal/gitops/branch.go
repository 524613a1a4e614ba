package gitops

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// SwitchBranch checks out branch name, creating it from HEAD when create is
// set. Untracked files such as freshly sealed manifests are kept.
func (g *GitOps) SwitchBranch(name string, create bool) error {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(name)

	if create {
		headRef, err := g.repo.Head()
		if err != nil {
			return fmt.Errorf("getting HEAD: %w", err)
		}
		ref := plumbing.NewHashReference(branchRef, headRef.Hash())
		if err := g.repo.Storer.SetReference(ref); err != nil {
			return fmt.Errorf("creating branch: %w", err)
		}
	}

	if err := worktree.Checkout(&git.CheckoutOptions{
		Branch: branchRef,
		Keep:   true,
	}); err != nil {
		return fmt.Errorf("checking out branch %s: %w", name, err)
	}

	return nil
}

// CurrentBranch returns the name of the current branch
func (g *GitOps) CurrentBranch() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Name().Short(), nil
}
