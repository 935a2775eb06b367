package gitlabapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmirror/internal/gitlabapi"
)

const (
	testBaseURLConstant         = "https://gitlab.test"
	testTokenConstant           = "glpat-secret"
	testProjectsURLConstant     = "https://gitlab.test/api/v4/projects"
	testTreeURLByIDConstant     = "https://gitlab.test/api/v4/projects/42/repository/tree"
	testTreeURLByNameConstant   = "https://gitlab.test/api/v4/projects/mirror/repository/tree"
	testProjectPathConstant     = "mirror"
	testRemoteURLConstant       = "https://gitlab.test/alice/mirror.git"
	testDescriptionConstant     = "Mirror of public GitHub repositories"
	testPrivateTokenHeader      = "PRIVATE-TOKEN"
	testForbiddenMessage        = `{"message":"403 Forbidden"}`
	testProjectNameFieldName    = "name"
	testProjectPathFieldName    = "path"
	testDescriptionFieldName    = "description"
	testSearchQueryParameterKey = "search"
	testOwnedQueryParameterKey  = "owned"
)

func newTestClient(testInstance *testing.T, transport *httpmock.MockTransport) *gitlabapi.Client {
	testInstance.Helper()
	client, clientError := gitlabapi.NewClient(gitlabapi.ClientOptions{
		BaseURL:   testBaseURLConstant + "/",
		Token:     testTokenConstant,
		Transport: transport,
	})
	require.NoError(testInstance, clientError)
	return client
}

func TestFindProjectMatchesPathExactly(testInstance *testing.T) {
	testCases := []struct {
		name            string
		projects        []map[string]any
		expectedFound   bool
		expectedProject gitlabapi.Project
	}{
		{
			name: "exact_path_present",
			projects: []map[string]any{
				{"id": 7, "path": "mirror-old", "http_url_to_repo": "https://gitlab.test/alice/mirror-old.git"},
				{"id": 42, "path": testProjectPathConstant, "http_url_to_repo": testRemoteURLConstant},
			},
			expectedFound:   true,
			expectedProject: gitlabapi.Project{ID: 42, Path: testProjectPathConstant, HTTPURLToRepo: testRemoteURLConstant},
		},
		{
			name: "only_partial_matches",
			projects: []map[string]any{
				{"id": 7, "path": "mirror-old"},
			},
			expectedFound: false,
		},
		{
			name:          "empty_search",
			projects:      []map[string]any{},
			expectedFound: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder(http.MethodGet, testProjectsURLConstant, func(request *http.Request) (*http.Response, error) {
				require.Equal(subTest, testTokenConstant, request.Header.Get(testPrivateTokenHeader))
				require.Equal(subTest, testProjectPathConstant, request.URL.Query().Get(testSearchQueryParameterKey))
				require.Equal(subTest, "true", request.URL.Query().Get(testOwnedQueryParameterKey))
				return httpmock.NewJsonResponse(http.StatusOK, testCase.projects)
			})

			project, found, findError := newTestClient(subTest, transport).FindProject(context.Background(), testProjectPathConstant)

			require.NoError(subTest, findError)
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedProject, project)
		})
	}
}

func TestCreateProjectSendsNamePathAndDescription(testInstance *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, testProjectsURLConstant, func(request *http.Request) (*http.Response, error) {
		var payload map[string]string
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&payload))
		require.Equal(testInstance, testProjectPathConstant, payload[testProjectNameFieldName])
		require.Equal(testInstance, testProjectPathConstant, payload[testProjectPathFieldName])
		require.Equal(testInstance, testDescriptionConstant, payload[testDescriptionFieldName])
		return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{"id": 42, "path": testProjectPathConstant, "http_url_to_repo": testRemoteURLConstant})
	})

	project, createError := newTestClient(testInstance, transport).CreateProject(context.Background(), gitlabapi.CreateProjectRequest{
		Path:        testProjectPathConstant,
		Description: testDescriptionConstant,
	})

	require.NoError(testInstance, createError)
	require.Equal(testInstance, 42, project.ID)
	require.Equal(testInstance, testRemoteURLConstant, project.HTTPURLToRepo)
}

func TestCreateProjectReturnsResponseError(testInstance *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodPost, testProjectsURLConstant, httpmock.NewStringResponder(http.StatusForbidden, testForbiddenMessage))

	_, createError := newTestClient(testInstance, transport).CreateProject(context.Background(), gitlabapi.CreateProjectRequest{Path: testProjectPathConstant})

	var responseError gitlabapi.ResponseError
	require.ErrorAs(testInstance, createError, &responseError)
	require.Equal(testInstance, http.StatusForbidden, responseError.StatusCode)
	require.Contains(testInstance, responseError.Error(), "403 Forbidden")
}

func TestHasRepositoryContentUsesStatusCode(testInstance *testing.T) {
	testCases := []struct {
		name            string
		url             string
		reference       string
		status          int
		expectedContent bool
	}{
		{name: "populated_by_id", url: testTreeURLByIDConstant, reference: "42", status: http.StatusOK, expectedContent: true},
		{name: "empty_repository", url: testTreeURLByIDConstant, reference: "42", status: http.StatusNotFound, expectedContent: false},
		{name: "populated_by_name", url: testTreeURLByNameConstant, reference: testProjectPathConstant, status: http.StatusOK, expectedContent: true},
		{name: "unauthorized", url: testTreeURLByNameConstant, reference: testProjectPathConstant, status: http.StatusUnauthorized, expectedContent: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder(http.MethodHead, testCase.url, httpmock.NewStringResponder(testCase.status, ""))

			hasContent, probeError := newTestClient(subTest, transport).HasRepositoryContent(context.Background(), testCase.reference)

			require.NoError(subTest, probeError)
			require.Equal(subTest, testCase.expectedContent, hasContent)
			require.Equal(subTest, 1, transport.GetTotalCallCount())
		})
	}
}

func TestNewClientRequiresBaseURLAndToken(testInstance *testing.T) {
	_, missingURLError := gitlabapi.NewClient(gitlabapi.ClientOptions{Token: testTokenConstant})
	require.ErrorIs(testInstance, missingURLError, gitlabapi.ErrBaseURLMissing)

	_, missingTokenError := gitlabapi.NewClient(gitlabapi.ClientOptions{BaseURL: testBaseURLConstant})
	require.ErrorIs(testInstance, missingTokenError, gitlabapi.ErrTokenMissing)
}

func TestProjectReferencePrefersIdentifier(testInstance *testing.T) {
	require.Equal(testInstance, "42", gitlabapi.ProjectReference(gitlabapi.Project{ID: 42, PathWithNamespace: "alice/mirror"}, testProjectPathConstant))
	require.Equal(testInstance, "alice/mirror", gitlabapi.ProjectReference(gitlabapi.Project{PathWithNamespace: "alice/mirror"}, testProjectPathConstant))
	require.Equal(testInstance, testProjectPathConstant, gitlabapi.ProjectReference(gitlabapi.Project{}, testProjectPathConstant))
}
