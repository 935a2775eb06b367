package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	openRepositoryErrorTemplateConstant = "open repository %s: %w"
	readHistoryErrorTemplateConstant    = "read history of %s: %w"
)

// CountCommits returns the number of commits reachable from HEAD. A repository without commits yields zero.
func CountCommits(repositoryPath string) (int, error) {
	repository, openError := git.PlainOpen(repositoryPath)
	if openError != nil {
		return 0, fmt.Errorf(openRepositoryErrorTemplateConstant, repositoryPath, openError)
	}

	headReference, headError := repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf(readHistoryErrorTemplateConstant, repositoryPath, headError)
	}

	commitIterator, logError := repository.Log(&git.LogOptions{From: headReference.Hash()})
	if logError != nil {
		return 0, fmt.Errorf(readHistoryErrorTemplateConstant, repositoryPath, logError)
	}
	defer commitIterator.Close()

	commitCount := 0
	iterationError := commitIterator.ForEach(func(*object.Commit) error {
		commitCount++
		return nil
	})
	if iterationError != nil {
		return 0, fmt.Errorf(readHistoryErrorTemplateConstant, repositoryPath, iterationError)
	}

	return commitCount, nil
}
