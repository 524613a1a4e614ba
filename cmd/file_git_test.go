package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/stuttgart-things/sealer/internal/gitops"
)

func TestCommitMessage(t *testing.T) {
	tests := []struct {
		name    string
		results []SealResult
		want    string
	}{
		{
			name:    "single secret",
			results: []SealResult{{Name: "db", Namespace: "team-db", OutputPath: "db.yaml"}},
			want:    "Add sealed secret team-db/db",
		},
		{
			name:    "cluster-wide without namespace",
			results: []SealResult{{Name: "shared", OutputPath: "shared.yaml"}},
			want:    "Add sealed secret shared",
		},
		{
			name: "several secrets",
			results: []SealResult{
				{Name: "db", Namespace: "team-db", OutputPath: "db.yaml"},
				{Name: "api", Namespace: "team-api", OutputPath: "api.yaml"},
			},
			want: "Add sealed secrets: team-db/db, team-api/api",
		},
		{
			name:    "nothing written",
			results: []SealResult{{Name: "db"}},
			want:    "Update sealed secrets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commitMessage(tt.results); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExecuteGitOperations_Disabled(t *testing.T) {
	if err := executeGitOperations(&SealResults{}, &gitops.Config{}); err != nil {
		t.Errorf("expected no error when git is disabled, got %v", err)
	}
}

func TestExecuteGitOperations_NothingWritten(t *testing.T) {
	results := &SealResults{Results: []SealResult{{Name: "db"}}}
	if err := executeGitOperations(results, &gitops.Config{Commit: true}); err == nil {
		t.Error("expected error when no files were written")
	}
}

func TestExecuteGitOperations_Commit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, _ := repo.Worktree()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "t", Email: "t@t", When: time.Now()}}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	sealed := filepath.Join(dir, "apps", "db-sealed.yaml")
	if err := os.MkdirAll(filepath.Dir(sealed), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(sealed, []byte("kind: SealedSecret\n"), 0444); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("GIT_USER", "")
	t.Setenv("GIT_TOKEN", "")
	t.Setenv("GITHUB_USER", "")
	t.Setenv("GITHUB_TOKEN", "")

	results := &SealResults{Results: []SealResult{{Name: "db", Namespace: "team-db", OutputPath: sealed}}}
	config := &gitops.Config{Commit: true, Branch: "secrets/db", CreateBranch: true}

	if err := executeGitOperations(results, config); err != nil {
		t.Fatalf("executeGitOperations: %v", err)
	}
	if results.GitCommit == "" {
		t.Fatal("expected commit hash to be recorded")
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Name().Short() != "secrets/db" {
		t.Errorf("expected branch secrets/db, got %s", head.Name().Short())
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("commit object: %v", err)
	}
	if commit.Message != "Add sealed secret team-db/db" {
		t.Errorf("unexpected message %q", commit.Message)
	}
	if _, err := commit.File("apps/db-sealed.yaml"); err != nil {
		t.Errorf("sealed file not in commit: %v", err)
	}
}

func TestExecuteGitOperations_PushNeedsCredentials(t *testing.T) {
	for _, key := range []string{"GIT_USER", "GIT_TOKEN", "GITHUB_USER", "GITHUB_TOKEN"} {
		t.Setenv(key, "")
	}
	results := &SealResults{Results: []SealResult{{Name: "db", OutputPath: filepath.Join(t.TempDir(), "db.yaml")}}}

	if err := executeGitOperations(results, &gitops.Config{Commit: true, Push: true}); err == nil {
		t.Error("expected credentials error")
	}
}
