// Package githubauth resolves an optional GitHub token and applies it to outgoing API requests.
package githubauth

import (
	"context"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// Environment variables consulted for an optional GitHub token, in preference order.
const (
	EnvMirrorGitHubToken = "GHMIRROR_GITHUB_TOKEN"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitHubCLIToken    = "GH_TOKEN"
)

var tokenPreference = []string{
	EnvMirrorGitHubToken,
	EnvGitHubToken,
	EnvGitHubCLIToken,
}

// EnvironmentLookup matches os.LookupEnv.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the first non-blank token from the preferred variables.
// A nil lookup reads the process environment.
func ResolveToken(lookup EnvironmentLookup) (string, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
			return trimmedValue, true
		}
	}
	return "", false
}

// AuthenticatedClient returns an oauth2 client that sends token on every request, layered over baseClient's
// transport. Listing public repositories works without a token; it only lifts the anonymous rate limit.
// A blank token returns baseClient unchanged.
func AuthenticatedClient(baseClient *http.Client, token string) *http.Client {
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return baseClient
	}
	clientContext := context.Background()
	if baseClient != nil {
		clientContext = context.WithValue(clientContext, oauth2.HTTPClient, baseClient)
	}
	return oauth2.NewClient(clientContext, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken}))
}
