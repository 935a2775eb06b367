package mirror

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/ghmirror/internal/githubapi"
)

const (
	selectionSeparatorConstant            = ","
	listingHeadingTemplateConstant        = "Public repositories of %s:"
	listingLineTemplateConstant           = "  %d. %s"
	migrateAllPromptConstant              = "Migrate all repositories? (y/n) "
	selectionPromptConstant               = "Enter repository numbers separated by commas (e.g. 1,3,5)"
	selectedCountTemplateConstant         = "Selected %d of %d repositories"
	noRepositoriesSelectedMessageConstant = "No repositories selected; only the destination repository will be published"
)

// SourceRepository is one entry of the source listing.
type SourceRepository struct {
	Name     string
	CloneURL string
}

func sourceRepositoriesFromListing(listing []githubapi.Repository) []SourceRepository {
	repositories := make([]SourceRepository, 0, len(listing))
	for _, listed := range listing {
		repositories = append(repositories, SourceRepository{Name: listed.Name, CloneURL: listed.CloneURL})
	}
	return repositories
}

// ParseSelection resolves comma-separated 1-based ordinals against the listing.
// Tokens are trimmed; non-numeric and out-of-range tokens are skipped; order and duplicates are kept as given.
func ParseSelection(input string, listing []SourceRepository) []SourceRepository {
	selected := make([]SourceRepository, 0)
	for _, token := range strings.Split(input, selectionSeparatorConstant) {
		ordinal, parseError := strconv.Atoi(strings.TrimSpace(token))
		if parseError != nil {
			continue
		}
		if ordinal < 1 || ordinal > len(listing) {
			continue
		}
		selected = append(selected, listing[ordinal-1])
	}
	return selected
}

// RepositorySelector prints the listing and asks which repositories to import.
type RepositorySelector struct {
	prompter Prompter
	reporter StatusReporter
}

// NewRepositorySelector constructs a RepositorySelector.
func NewRepositorySelector(prompter Prompter, reporter StatusReporter) *RepositorySelector {
	return &RepositorySelector{prompter: prompter, reporter: reporter}
}

// Select prints the 1-indexed listing and returns "all" or the ordinal selection.
func (selector *RepositorySelector) Select(account string, listing []SourceRepository) ([]SourceRepository, error) {
	selector.reporter.Heading(fmt.Sprintf(listingHeadingTemplateConstant, account))
	for repositoryIndex, repository := range listing {
		selector.reporter.Info(fmt.Sprintf(listingLineTemplateConstant, repositoryIndex+1, repository.Name))
	}

	migrateAll, confirmError := selector.prompter.Confirm(migrateAllPromptConstant)
	if confirmError != nil {
		return nil, confirmError
	}
	if migrateAll {
		return append([]SourceRepository{}, listing...), nil
	}

	selectionInput, askError := selector.prompter.Ask(selectionPromptConstant, "")
	if askError != nil {
		return nil, askError
	}

	selected := ParseSelection(selectionInput, listing)
	if len(selected) == 0 {
		selector.reporter.Warning(noRepositoriesSelectedMessageConstant)
	} else {
		selector.reporter.Info(fmt.Sprintf(selectedCountTemplateConstant, len(selected), len(listing)))
	}
	return selected, nil
}
