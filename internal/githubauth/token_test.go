package githubauth_test

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmirror/internal/githubauth"
)

func TestResolveTokenPreference(testInstance *testing.T) {
	testCases := []struct {
		name          string
		environment   map[string]string
		expectedToken string
		expectedFound bool
	}{
		{name: "mirror_variable_wins", environment: map[string]string{githubauth.EnvMirrorGitHubToken: "a", githubauth.EnvGitHubToken: "b"}, expectedToken: "a", expectedFound: true},
		{name: "blank_values_skipped", environment: map[string]string{githubauth.EnvMirrorGitHubToken: "  ", githubauth.EnvGitHubCLIToken: " c "}, expectedToken: "c", expectedFound: true},
		{name: "absent", environment: map[string]string{}, expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			token, found := githubauth.ResolveToken(func(key string) (string, bool) {
				value, exists := testCase.environment[key]
				return value, exists
			})
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedToken, token)
		})
	}
}

func TestAuthenticatedClientAddsBearerHeader(testInstance *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://api.github.test/users/alice/repos", func(request *http.Request) (*http.Response, error) {
		require.Equal(testInstance, "Bearer ghp-token", request.Header.Get("Authorization"))
		return httpmock.NewStringResponse(http.StatusOK, "[]"), nil
	})
	baseClient := &http.Client{Transport: transport}

	wrapped := githubauth.AuthenticatedClient(baseClient, "ghp-token")
	response, requestError := wrapped.Get("https://api.github.test/users/alice/repos")

	require.NoError(testInstance, requestError)
	require.NoError(testInstance, response.Body.Close())
	require.Equal(testInstance, 1, transport.GetTotalCallCount())
	require.Same(testInstance, transport, baseClient.Transport)
}

func TestAuthenticatedClientWithoutTokenReturnsOriginal(testInstance *testing.T) {
	baseClient := &http.Client{}
	require.Same(testInstance, baseClient, githubauth.AuthenticatedClient(baseClient, " "))
}
