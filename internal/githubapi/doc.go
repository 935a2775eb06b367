// Package githubapi lists public repositories of a GitHub account through the
// GitHub REST API using go-github. Only the first page of up to 100 entries is
// requested.
package githubapi
