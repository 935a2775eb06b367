// Package gitrepo contains helpers for manipulating the local Git repositories
// of a mirror run.
//
// RepositoryManager drives the git executable through execshell for clone,
// commit, remote, and push operations. CountCommits reads repository history
// in-process through go-git, and the remote URL helpers derive destination
// remotes and credential-store entries from configured base URLs.
package gitrepo
