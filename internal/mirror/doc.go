// Package mirror copies the public repositories of a GitHub account into
// subdirectories of one GitLab repository.
//
// A run collects the destination settings interactively, lists and selects
// source repositories, provisions the destination working copy, imports each
// selection as a single commit under github_repos/<name>, publishes with a
// branch fallback chain, and reports a summary. Service orchestrates those
// stages; CommandBuilder wires it into the CLI.
package mirror
