// Package gitlabapi talks to the GitLab REST API v4 to locate, create, and
// probe the destination project of a mirror run.
package gitlabapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	privateTokenHeaderConstant            = "PRIVATE-TOKEN"
	projectsPathConstant                  = "/api/v4/projects"
	repositoryTreePathConstant            = "/api/v4/projects/{project}/repository/tree"
	projectPathParameterConstant          = "project"
	searchQueryParameterConstant          = "search"
	ownedQueryParameterConstant           = "owned"
	ownedOnlyValueConstant                = "true"
	nameBodyFieldConstant                 = "name"
	pathBodyFieldConstant                 = "path"
	descriptionBodyFieldConstant          = "description"
	trailingSlashConstant                 = "/"
	defaultTimeoutConstant                = 30 * time.Second
	baseURLMissingMessageConstant         = "GitLab base URL not configured"
	tokenMissingMessageConstant           = "GitLab access token not configured"
	projectPathMissingMessageConstant     = "GitLab project path required"
	responseErrorTemplateConstant         = "GitLab %s request failed with status %d"
	responseErrorWithBodyTemplateConstant = "GitLab %s request failed with status %d: %s"
	requestErrorTemplateConstant          = "GitLab %s request failed: %w"
	findProjectOperationConstant          = OperationName("project search")
	createProjectOperationConstant        = OperationName("project creation")
	repositoryContentOperationConstant    = OperationName("repository tree probe")
)

// OperationName labels a GitLab API request in errors.
type OperationName string

var (
	// ErrBaseURLMissing indicates the client was configured without a GitLab URL.
	ErrBaseURLMissing = errors.New(baseURLMissingMessageConstant)
	// ErrTokenMissing indicates the client was configured without an access token.
	ErrTokenMissing = errors.New(tokenMissingMessageConstant)
	// ErrProjectPathMissing indicates a project lookup without a path.
	ErrProjectPathMissing = errors.New(projectPathMissingMessageConstant)
)

// Project is the subset of a GitLab project resource used by the mirror.
type Project struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	WebURL            string `json:"web_url"`
}

// CreateProjectRequest describes a project to create.
type CreateProjectRequest struct {
	Name        string
	Path        string
	Description string
}

// ClientOptions configures the GitLab client.
type ClientOptions struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// ResponseError reports a non-success HTTP response.
type ResponseError struct {
	Operation  OperationName
	StatusCode int
	Body       string
}

// Error describes the failed response.
func (responseError ResponseError) Error() string {
	trimmedBody := strings.TrimSpace(responseError.Body)
	if len(trimmedBody) == 0 {
		return fmt.Sprintf(responseErrorTemplateConstant, responseError.Operation, responseError.StatusCode)
	}
	return fmt.Sprintf(responseErrorWithBodyTemplateConstant, responseError.Operation, responseError.StatusCode, trimmedBody)
}

// Client issues GitLab API requests authenticated with a personal access token.
type Client struct {
	restClient *resty.Client
}

// NewClient validates options and builds a Client.
func NewClient(options ClientOptions) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(options.BaseURL), trailingSlashConstant)
	if len(baseURL) == 0 {
		return nil, ErrBaseURLMissing
	}
	token := strings.TrimSpace(options.Token)
	if len(token) == 0 {
		return nil, ErrTokenMissing
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeoutConstant
	}

	restClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader(privateTokenHeaderConstant, token).
		SetTimeout(timeout)
	if options.Transport != nil {
		restClient.SetTransport(options.Transport)
	}

	return &Client{restClient: restClient}, nil
}

// FindProject searches the projects owned by the token's user and returns the one whose path equals
// projectPath exactly. Projects of other namespaces with the same path are never returned.
func (client *Client) FindProject(executionContext context.Context, projectPath string) (Project, bool, error) {
	trimmedPath := strings.TrimSpace(projectPath)
	if len(trimmedPath) == 0 {
		return Project{}, false, ErrProjectPathMissing
	}

	var projects []Project
	response, requestError := client.restClient.R().
		SetContext(executionContext).
		SetQueryParam(searchQueryParameterConstant, trimmedPath).
		SetQueryParam(ownedQueryParameterConstant, ownedOnlyValueConstant).
		SetResult(&projects).
		Get(projectsPathConstant)
	if requestError != nil {
		return Project{}, false, fmt.Errorf(requestErrorTemplateConstant, findProjectOperationConstant, requestError)
	}
	if response.IsError() {
		return Project{}, false, newResponseError(findProjectOperationConstant, response)
	}

	for _, project := range projects {
		if project.Path == trimmedPath {
			return project, true, nil
		}
	}

	return Project{}, false, nil
}

// CreateProject creates a project owned by the token's user.
func (client *Client) CreateProject(executionContext context.Context, request CreateProjectRequest) (Project, error) {
	if len(strings.TrimSpace(request.Path)) == 0 {
		return Project{}, ErrProjectPathMissing
	}

	projectName := request.Name
	if len(strings.TrimSpace(projectName)) == 0 {
		projectName = request.Path
	}

	var project Project
	response, requestError := client.restClient.R().
		SetContext(executionContext).
		SetBody(map[string]string{
			nameBodyFieldConstant:        projectName,
			pathBodyFieldConstant:        request.Path,
			descriptionBodyFieldConstant: request.Description,
		}).
		SetResult(&project).
		Post(projectsPathConstant)
	if requestError != nil {
		return Project{}, fmt.Errorf(requestErrorTemplateConstant, createProjectOperationConstant, requestError)
	}
	if response.IsError() {
		return Project{}, newResponseError(createProjectOperationConstant, response)
	}

	return project, nil
}

// HasRepositoryContent reports whether the project repository tree responds with 200.
// projectReference is either a numeric project identifier or a project path; paths are escaped.
func (client *Client) HasRepositoryContent(executionContext context.Context, projectReference string) (bool, error) {
	trimmedReference := strings.TrimSpace(projectReference)
	if len(trimmedReference) == 0 {
		return false, ErrProjectPathMissing
	}

	response, requestError := client.restClient.R().
		SetContext(executionContext).
		SetPathParam(projectPathParameterConstant, trimmedReference).
		Head(repositoryTreePathConstant)
	if requestError != nil {
		return false, fmt.Errorf(requestErrorTemplateConstant, repositoryContentOperationConstant, requestError)
	}

	return response.StatusCode() == http.StatusOK, nil
}

// ProjectReference returns the identifier used in project-scoped API paths.
func ProjectReference(project Project, fallbackPath string) string {
	if project.ID > 0 {
		return strconv.Itoa(project.ID)
	}
	if len(project.PathWithNamespace) > 0 {
		return project.PathWithNamespace
	}
	return fallbackPath
}

func newResponseError(operation OperationName, response *resty.Response) ResponseError {
	return ResponseError{
		Operation:  operation,
		StatusCode: response.StatusCode(),
		Body:       response.String(),
	}
}
