package gitops_test

import (
	"testing"

	"github.com/stuttgart-things/sealer/internal/gitops"
)

func TestSwitchBranch(t *testing.T) {
	repoPath := initTestRepo(t)

	g, err := gitops.Open(repoPath, gitops.Credentials{})
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}

	original, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("failed to get current branch: %v", err)
	}

	tests := []struct {
		name       string
		branchName string
		create     bool
		wantErr    bool
	}{
		{
			name:       "create branch with slash",
			branchName: "secrets/add-db",
			create:     true,
		},
		{
			name:       "create branch with simple name",
			branchName: "rotate-api",
			create:     true,
		},
		{
			name:       "checkout existing branch",
			branchName: original,
		},
		{
			name:       "checkout missing branch",
			branchName: "does-not-exist",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.SwitchBranch(tt.branchName, tt.create)
			if (err != nil) != tt.wantErr {
				t.Errorf("SwitchBranch() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			current, err := g.CurrentBranch()
			if err != nil {
				t.Fatalf("failed to get current branch: %v", err)
			}
			if current != tt.branchName {
				t.Errorf("expected branch %s, got %s", tt.branchName, current)
			}
		})
	}
}
