package gitops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	DefaultRemote      = "origin"
	defaultAuthorName  = "sealer"
	defaultAuthorEmail = "sealer@automated"
)

// GitOps stages, commits and pushes sealed manifests in an existing
// repository.
type GitOps struct {
	RepoPath string
	repo     *git.Repository
	auth     *http.BasicAuth
}

// Config holds git-related configuration
type Config struct {
	Commit       bool
	Push         bool
	Branch       string
	CreateBranch bool
	Remote       string
	User         string
	Token        string
	Message      string
}

// Enabled reports whether any git operation was requested.
func (c *Config) Enabled() bool {
	return c != nil && (c.Commit || c.Push)
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string, creds Credentials) (*GitOps, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	g := &GitOps{
		RepoPath: worktree.Filesystem.Root(),
		repo:     repo,
	}

	if creds.Complete() {
		g.auth = &http.BasicAuth{
			Username: creds.User,
			Password: creds.Token,
		}
	}

	return g, nil
}

// AddFiles stages files for commit
func (g *GitOps) AddFiles(files []string) error {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	for _, f := range files {
		absPath, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}

		// Verify file exists on disk before staging
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", absPath)
		}

		relPath, err := filepath.Rel(g.RepoPath, absPath)
		if err != nil || strings.HasPrefix(relPath, "..") {
			return fmt.Errorf("%s is outside the repository %s", f, g.RepoPath)
		}

		if _, err := worktree.Add(filepath.ToSlash(relPath)); err != nil {
			return fmt.Errorf("staging %s: %w", relPath, err)
		}
	}

	return nil
}

// Commit creates a commit with the staged changes and returns its hash
func (g *GitOps) Commit(message, authorName, authorEmail string) (string, error) {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	if authorName == "" {
		authorName = defaultAuthorName
	}
	if authorEmail == "" {
		authorEmail = defaultAuthorEmail
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}

	return hash.String(), nil
}

// Push pushes to remote
func (g *GitOps) Push(remote string) error {
	if g.auth == nil {
		return fmt.Errorf("git credentials required for push")
	}
	if remote == "" {
		remote = DefaultRemote
	}

	err := g.repo.Push(&git.PushOptions{
		RemoteName: remote,
		Auth:       g.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing: %w", err)
	}

	return nil
}
