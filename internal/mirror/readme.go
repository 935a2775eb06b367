package mirror

import (
	"fmt"
	"time"
)

const (
	readmeFileNameConstant   = "README.md"
	readmeDateLayoutConstant = "2006-01-02"
	readmeTemplateConstant   = `# %[1]s

This repository mirrors the public GitHub repositories of **%[2]s**.

Each repository is imported as a snapshot of its files, without its commit
history, and recorded as a single commit.

## Structure

- ` + "`%[3]s/`" + `: one subdirectory per imported repository, named after the source repository

## Source

- GitHub user: https://github.com/%[2]s
- Generated: %[4]s
`
)

// ReadmeContent describes the generated README of a freshly initialized destination.
type ReadmeContent struct {
	RepositoryName  string
	SourceAccount   string
	ImportDirectory string
	GeneratedAt     time.Time
}

// Render produces the README markdown.
func (content ReadmeContent) Render() string {
	return fmt.Sprintf(readmeTemplateConstant,
		content.RepositoryName,
		content.SourceAccount,
		content.ImportDirectory,
		content.GeneratedAt.Format(readmeDateLayoutConstant),
	)
}
