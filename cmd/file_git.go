package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stuttgart-things/sealer/internal/gitops"
)

// executeGitOperations performs git commit and push if configured
func executeGitOperations(results *SealResults, config *gitops.Config) error {
	if !config.Enabled() {
		return nil
	}

	filePaths := results.WrittenPaths()
	if len(filePaths) == 0 {
		return fmt.Errorf("no files to commit: git operations need written files (drop --dry-run and --output -)")
	}

	// Resolve credentials, only required when pushing
	var creds gitops.Credentials
	if config.Push {
		var err error
		creds, err = gitops.RequireCredentials(config.User, config.Token)
		if err != nil {
			return err
		}
	} else {
		creds = gitops.LookupCredentials(config.User, config.Token)
	}

	g, err := gitops.Open(filepath.Dir(filePaths[0]), creds)
	if err != nil {
		return fmt.Errorf("output directory is not in a git repository: %w", err)
	}

	if config.Branch != "" {
		if config.CreateBranch {
			fmt.Fprintf(os.Stderr, "Creating branch: %s\n", config.Branch)
		} else {
			fmt.Fprintf(os.Stderr, "Checking out branch: %s\n", config.Branch)
		}
		if err := g.SwitchBranch(config.Branch, config.CreateBranch); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, "Staging files...")
	if err := g.AddFiles(filePaths); err != nil {
		return err
	}

	message := config.Message
	if message == "" {
		message = commitMessage(results.Results)
	}

	fmt.Fprintf(os.Stderr, "Committing: %s\n", message)
	hash, err := g.Commit(message, creds.User, "")
	if err != nil {
		return err
	}
	results.GitCommit = hash
	fmt.Fprintln(os.Stderr, successStyle.Render("Committed "+shortHash(hash)))

	if config.Push {
		remote := config.Remote
		if remote == "" {
			remote = gitops.DefaultRemote
		}
		fmt.Fprintf(os.Stderr, "Pushing to %s...\n", remote)
		if err := g.Push(remote); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, successStyle.Render("Pushed successfully"))
	}

	return nil
}

// commitMessage describes the sealed secrets of a commit.
func commitMessage(results []SealResult) string {
	var names []string
	for _, r := range results {
		if r.OutputPath == "" {
			continue
		}
		if r.Namespace != "" {
			names = append(names, r.Namespace+"/"+r.Name)
		} else {
			names = append(names, r.Name)
		}
	}

	switch len(names) {
	case 0:
		return "Update sealed secrets"
	case 1:
		return "Add sealed secret " + names[0]
	}
	return "Add sealed secrets: " + strings.Join(names, ", ")
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
