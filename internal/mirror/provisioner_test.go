package mirror_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ghmirror/internal/gitlabapi"
	"github.com/temirov/ghmirror/internal/mirror"
)

var testGeneratedAt = time.Date(2026, time.March, 4, 15, 6, 7, 0, time.UTC)

type provisionerFixture struct {
	provisioner     *mirror.Provisioner
	manager         *fakeRepositoryManager
	reporter        *recordingReporter
	credentialStore *mirror.CredentialStore
	logs            *observer.ObservedLogs
	workspaceRoot   string
}

func newProvisionerFixture(testInstance *testing.T) provisionerFixture {
	testInstance.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	fixture := provisionerFixture{
		manager:         newFakeRepositoryManager(),
		reporter:        &recordingReporter{},
		credentialStore: newTestCredentialStore(testInstance),
		logs:            logs,
		workspaceRoot:   testInstance.TempDir(),
	}

	provisioner, provisionerError := mirror.NewProvisioner(mirror.ProvisionerDependencies{
		Logger:            zap.New(core),
		Reporter:          fixture.reporter,
		RepositoryManager: fixture.manager,
		CredentialStore:   fixture.credentialStore,
		Clock:             func() time.Time { return testGeneratedAt },
	})
	require.NoError(testInstance, provisionerError)
	fixture.provisioner = provisioner
	return fixture
}

func TestProvisionerInitializesFreshRepository(testInstance *testing.T) {
	fixture := newProvisionerFixture(testInstance)
	client := &stubDestinationClient{}

	result, provisionError := fixture.provisioner.Provision(context.Background(), client, testRunConfiguration(), fixture.workspaceRoot)

	require.NoError(testInstance, provisionError)
	workingCopyPath := filepath.Join(fixture.workspaceRoot, testDestinationRepositoryConstant)
	require.Equal(testInstance, mirror.ProvisionResult{
		WorkingCopyPath: workingCopyPath,
		RemoteURL:       "https://gitlab.test/alice/mirror.git",
		ProjectCreated:  true,
		Initialized:     true,
	}, result)

	require.Len(testInstance, client.createdRequests, 1)
	require.Equal(testInstance, gitlabapi.CreateProjectRequest{
		Name:        testDestinationRepositoryConstant,
		Path:        testDestinationRepositoryConstant,
		Description: "Mirror of public GitHub repositories",
	}, client.createdRequests[0])
	require.Equal(testInstance, "42", client.probedReference)

	readme, readError := os.ReadFile(filepath.Join(workingCopyPath, "README.md"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(readme), "# mirror")
	require.Contains(testInstance, string(readme), "github_repos/")
	require.Contains(testInstance, string(readme), "https://github.com/alice")
	require.Contains(testInstance, string(readme), "2026-03-04")

	var operations []string
	for _, call := range fixture.manager.calls {
		operations = append(operations, call.operation)
	}
	require.Equal(testInstance, []string{"init", "add", "commit", "branch", "remote"}, operations)
	require.Equal(testInstance, []string{"Initial commit: add README"}, fixture.manager.commitMessages)
	require.Equal(testInstance, []string{"main"}, fixture.manager.operations("branch")[0].arguments)
	require.Equal(testInstance, []string{"origin", "https://gitlab.test/alice/mirror.git"}, fixture.manager.operations("remote")[0].arguments)
	require.Equal(testInstance, []string{"Preparing GitLab repository mirror... done"}, fixture.reporter.lines)
}

func TestProvisionerClonesRepositoryWithContent(testInstance *testing.T) {
	fixture := newProvisionerFixture(testInstance)
	client := &stubDestinationClient{
		projectExists:   true,
		existingProject: gitlabapi.Project{ID: 7, Path: testDestinationRepositoryConstant, PathWithNamespace: "alice/mirror", HTTPURLToRepo: "https://gitlab.test/alice/mirror.git"},
		hasContent:      true,
	}

	result, provisionError := fixture.provisioner.Provision(context.Background(), client, testRunConfiguration(), fixture.workspaceRoot)

	require.NoError(testInstance, provisionError)
	require.True(testInstance, result.ProjectFound)
	require.True(testInstance, result.HadContent)
	require.False(testInstance, result.Initialized)
	require.Empty(testInstance, client.createdRequests)
	require.Equal(testInstance, "7", client.probedReference)

	clones := fixture.manager.operations("clone-with-credentials")
	require.Len(testInstance, clones, 1)
	require.Equal(testInstance, []string{"https://gitlab.test/alice/mirror.git", fixture.credentialStore.Path()}, clones[0].arguments)
	require.Equal(testInstance, []string{testExpectedCredentialLine}, fixture.manager.credentialSnapshots)
	require.NoFileExists(testInstance, fixture.credentialStore.Path())
	require.Empty(testInstance, fixture.manager.operations("init"))

	foundEntries := fixture.logs.FilterMessage("Destination project found").All()
	require.Len(testInstance, foundEntries, 1)
	require.Equal(testInstance, "alice/mirror", foundEntries[0].ContextMap()["path_with_namespace"])
}

func TestProvisionerContinuesAfterCreationFailure(testInstance *testing.T) {
	fixture := newProvisionerFixture(testInstance)
	client := &stubDestinationClient{createError: errTestFailure}

	result, provisionError := fixture.provisioner.Provision(context.Background(), client, testRunConfiguration(), fixture.workspaceRoot)

	require.NoError(testInstance, provisionError)
	require.True(testInstance, result.CreationFailed)
	require.True(testInstance, result.Initialized)
	require.Equal(testInstance, "https://gitlab.test/mirror.git", result.RemoteURL)
	require.Equal(testInstance, testDestinationRepositoryConstant, client.probedReference)
	require.Equal(testInstance, []string{
		"Preparing GitLab repository mirror... done",
		"Could not create GitLab project mirror; continuing as if it exists",
	}, fixture.reporter.lines)
	require.Equal(testInstance, 1, fixture.logs.FilterMessage("Destination project creation failed; continuing").Len())
}

func TestProvisionerTreatsProbeFailureAsEmpty(testInstance *testing.T) {
	fixture := newProvisionerFixture(testInstance)
	client := &stubDestinationClient{
		projectExists:   true,
		existingProject: gitlabapi.Project{ID: 7, Path: testDestinationRepositoryConstant},
		probeError:      errTestFailure,
	}

	result, provisionError := fixture.provisioner.Provision(context.Background(), client, testRunConfiguration(), fixture.workspaceRoot)

	require.NoError(testInstance, provisionError)
	require.False(testInstance, result.HadContent)
	require.True(testInstance, result.Initialized)
	require.Equal(testInstance, 1, fixture.logs.FilterMessage("Destination content probe failed; treating repository as empty").Len())
}
