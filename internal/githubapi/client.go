package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v45/github"

	"github.com/temirov/ghmirror/internal/githubauth"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com/"

	// DefaultPageSize is the single-page listing size requested from GitHub.
	DefaultPageSize = 100

	publicRepositoryTypeConstant                = "public"
	firstPageNumberConstant                     = 1
	pathSeparatorConstant                       = "/"
	accountFieldNameConstant                    = "account"
	requiredValueMessageConstant                = "value required"
	invalidInputErrorTemplateConstant           = "%s: %s"
	invalidBaseURLErrorTemplateConstant         = "invalid GitHub API base URL %q: %w"
	operationErrorTemplateConstant              = "%s operation failed: %v"
	operationWithStatusErrorTemplateConstant    = "%s operation failed with status %d: %v"
	listPublicRepositoriesOperationNameConstant = OperationName("ListPublicRepositories")
)

// OperationName identifies a GitHub API workflow supported by the client.
type OperationName string

// Repository describes a listed source repository.
type Repository struct {
	Name     string
	CloneURL string
}

// ClientOptions configures the GitHub API client.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
	Token      string
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures returned by the GitHub API.
type OperationError struct {
	Operation  OperationName
	StatusCode int
	Cause      error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.StatusCode > 0 {
		return fmt.Sprintf(operationWithStatusErrorTemplateConstant, operationError.Operation, operationError.StatusCode, operationError.Cause)
	}
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Client lists repositories through the GitHub REST API.
type Client struct {
	client   *github.Client
	pageSize int
}

// NewClient constructs a Client. Empty options fall back to the public API and http.DefaultClient.
func NewClient(options ClientOptions) (*Client, error) {
	githubClient := github.NewClient(githubauth.AuthenticatedClient(options.HTTPClient, options.Token))

	baseURL := strings.TrimSpace(options.BaseURL)
	if len(baseURL) == 0 {
		baseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(baseURL, pathSeparatorConstant) {
		baseURL += pathSeparatorConstant
	}

	parsedBaseURL, parseError := url.Parse(baseURL)
	if parseError != nil {
		return nil, fmt.Errorf(invalidBaseURLErrorTemplateConstant, baseURL, parseError)
	}
	githubClient.BaseURL = parsedBaseURL

	pageSize := options.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	return &Client{client: githubClient, pageSize: pageSize}, nil
}

// ListPublicRepositories returns the account's public repositories in response order.
// Only the first page is requested; accounts with more repositories are truncated.
func (client *Client) ListPublicRepositories(executionContext context.Context, account string) ([]Repository, error) {
	trimmedAccount := strings.TrimSpace(account)
	if len(trimmedAccount) == 0 {
		return nil, InvalidInputError{FieldName: accountFieldNameConstant, Message: requiredValueMessageConstant}
	}

	listOptions := &github.RepositoryListOptions{
		Type: publicRepositoryTypeConstant,
		ListOptions: github.ListOptions{
			Page:    firstPageNumberConstant,
			PerPage: client.pageSize,
		},
	}

	repositories, response, listError := client.client.Repositories.List(executionContext, trimmedAccount, listOptions)
	if listError != nil {
		if errors.Is(listError, context.Canceled) || errors.Is(listError, context.DeadlineExceeded) {
			return nil, listError
		}
		operationError := OperationError{Operation: listPublicRepositoriesOperationNameConstant, Cause: listError}
		if response != nil {
			operationError.StatusCode = response.StatusCode
		}
		return nil, operationError
	}

	listed := make([]Repository, 0, len(repositories))
	for _, repository := range repositories {
		repositoryName := strings.TrimSpace(repository.GetName())
		if len(repositoryName) == 0 {
			continue
		}
		listed = append(listed, Repository{
			Name:     repositoryName,
			CloneURL: repository.GetCloneURL(),
		})
	}

	return listed, nil
}
