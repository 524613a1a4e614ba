package gitops

import (
	"fmt"
	"os"
)

// Credentials authenticate pushes over HTTPS.
type Credentials struct {
	User  string
	Token string
}

// Complete reports whether both user and token are known.
func (c Credentials) Complete() bool {
	return c.User != "" && c.Token != ""
}

// LookupCredentials fills whatever is missing from user and token with
// GIT_USER/GIT_TOKEN or GITHUB_USER/GITHUB_TOKEN. Missing values are fine
// for local commits.
func LookupCredentials(user, token string) Credentials {
	return Credentials{
		User:  firstNonEmpty(user, os.Getenv("GIT_USER"), os.Getenv("GITHUB_USER")),
		Token: firstNonEmpty(token, os.Getenv("GIT_TOKEN"), os.Getenv("GITHUB_TOKEN")),
	}
}

// RequireCredentials is LookupCredentials for operations that push.
func RequireCredentials(user, token string) (Credentials, error) {
	creds := LookupCredentials(user, token)
	if !creds.Complete() {
		return Credentials{}, fmt.Errorf("git credentials required:\nset --git-user/--git-token or GIT_USER/GIT_TOKEN (or GITHUB_USER/GITHUB_TOKEN) environment variables")
	}
	return creds, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
